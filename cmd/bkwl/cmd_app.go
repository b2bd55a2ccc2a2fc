package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	ucclu "github.com/bkpaas/workloads/usecase/cluster"
	uclog "github.com/bkpaas/workloads/usecase/logcollector"
)

func newCmdApp() *cobra.Command {
	cmd := &cobra.Command{Use: "app", Short: "Manage app cluster bindings and network exposure", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdAppBind(), newCmdAppProvision(), newCmdAppAddresses(), newCmdAppExposedURL(), newCmdAppLogConfig(), newCmdAppMonitor())
	return cmd
}

func newCmdAppBind() *cobra.Command {
	var clusterName, region, username string
	c := &cobra.Command{Use: "bind <app>", Short: "Bind an app environment to a cluster", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.Bind(ctx, &ucclu.BindInput{
			AppName:     args[0],
			ClusterName: clusterName,
			Region:      region,
			Username:    username,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Config)
	}}
	c.Flags().StringVar(&clusterName, "cluster", "", "Target cluster; empty lets the allocation policy pick")
	c.Flags().StringVar(&region, "region", "", "Region fed to the allocation policy")
	c.Flags().StringVar(&username, "username", "", "Acting user fed to the allocation policy")
	return c
}

func newCmdAppProvision() *cobra.Command {
	return &cobra.Command{Use: "provision <app>", Short: "Refresh the app's addresses and sync its ingresses", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildNetworkUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return u.Provision(ctx, args[0])
	}}
}

func newCmdAppAddresses() *cobra.Command {
	return &cobra.Command{Use: "addresses <app>", Short: "List the app's reachable addresses", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildNetworkUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		addrs, err := u.ListAddresses(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, a := range addrs {
			if err := enc.Encode(a); err != nil {
				return err
			}
		}
		return nil
	}}
}

func newCmdAppExposedURL() *cobra.Command {
	return &cobra.Command{Use: "exposed-url <app>", Short: "Print the app's preferred public URL", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildNetworkUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		url, err := u.ExposedURL(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	}}
}

func newCmdAppLogConfig() *cobra.Command {
	var apiURL, apiToken string
	var paths []string
	c := &cobra.Command{Use: "log-config <app>", Short: "Reconcile the app's log collection config", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := buildRepos(cmd)
		if err != nil {
			return err
		}
		u := uclog.New(&uclog.Repos{
			App:     repos.App,
			Cluster: repos.Cluster,
		}, uclog.NewAPIClient(apiURL, apiToken))
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		cfg, err := u.Reconcile(ctx, args[0], paths)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "log collection disabled on the bound cluster")
			return nil
		}
		return printJSON(cmd, cfg)
	}}
	c.Flags().StringVar(&apiURL, "api-url", "", "Log platform API base URL")
	c.Flags().StringVar(&apiToken, "api-token", "", "Log platform API token")
	c.Flags().StringArrayVar(&paths, "path", nil, "Log path to collect (repeatable)")
	_ = c.MarkFlagRequired("api-url")
	return c
}

func newCmdAppMonitor() *cobra.Command {
	var interval string
	var remove bool
	c := &cobra.Command{Use: "monitor <app>", Short: "Sync or remove the app's ServiceMonitor", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildNetworkUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if remove {
			return u.RemoveServiceMonitor(ctx, args[0])
		}
		return u.SyncServiceMonitor(ctx, args[0], interval)
	}}
	c.Flags().StringVar(&interval, "interval", "60s", "Scrape interval")
	c.Flags().BoolVar(&remove, "remove", false, "Remove the ServiceMonitor instead of syncing it")
	return c
}
