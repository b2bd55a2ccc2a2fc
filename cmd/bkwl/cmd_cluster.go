package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain/model"
	uc "github.com/bkpaas/workloads/usecase/cluster"
)

func newCmdCluster() *cobra.Command {
	cmd := &cobra.Command{Use: "cluster", Short: "Manage cluster registrations and allocation policies", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdClusterList(), newCmdClusterGet(), newCmdClusterCreate(), newCmdClusterUpdate(), newCmdClusterDelete(), newCmdClusterAllocate(), newCmdClusterPolicy())
	return cmd
}

// readSpec loads a YAML spec from path (or stdin when "-") into out.
// Specs share the JSON field names of the use case inputs.
func readSpec(cmd *cobra.Command, path string, out any) error {
	if path == "" {
		return errors.New("spec file required (-f)")
	}
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCmdClusterList() *cobra.Command {
	var tenant string
	c := &cobra.Command{Use: "list", Short: "List clusters", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.List(ctx, &uc.ListInput{TenantID: tenant})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, it := range out.Clusters {
			if err := enc.Encode(it); err != nil {
				return err
			}
		}
		return nil
	}}
	c.Flags().StringVar(&tenant, "tenant", "", "Keep only clusters available to this tenant")
	return c
}

func newCmdClusterGet() *cobra.Command {
	return &cobra.Command{Use: "get <name>", Short: "Get a cluster", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.Get(ctx, &uc.GetInput{Name: args[0]})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Cluster)
	}}
}

func newCmdClusterCreate() *cobra.Command {
	var file string
	c := &cobra.Command{Use: "create", Short: "Register a cluster (from spec file)", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		var in uc.CreateInput
		if err := readSpec(cmd, file, &in); err != nil {
			return err
		}
		settings, err := buildSettings(cmd)
		if err != nil {
			return err
		}
		applyClusterBootstrap(&in, &settings.Cluster)
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.Create(ctx, &in)
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Cluster)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to cluster spec (YAML), or '-' for stdin")
	_ = c.MarkFlagRequired("file")
	return c
}

// applyClusterBootstrap fills in registration fields the spec file left
// empty from the platform bootstrap settings.
func applyClusterBootstrap(in *uc.CreateInput, b *config.ClusterBootstrap) {
	if len(in.DefaultNodeSelector) == 0 {
		in.DefaultNodeSelector = b.NodeSelector
	}
	if len(in.DefaultTolerations) == 0 {
		in.DefaultTolerations = b.Tolerations
	}
	if len(in.APIServers) == 0 {
		for _, u := range b.APIServerURLs {
			in.APIServers = append(in.APIServers, uc.APIServerInput{Host: u})
		}
	}
}

func newCmdClusterUpdate() *cobra.Command {
	var file string
	c := &cobra.Command{Use: "update", Short: "Replace a cluster registration (from spec file)", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		var spec model.Cluster
		if err := readSpec(cmd, file, &spec); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.Update(ctx, &uc.UpdateInput{Cluster: &spec})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Cluster)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to cluster spec (YAML), or '-' for stdin")
	_ = c.MarkFlagRequired("file")
	return c
}

func newCmdClusterDelete() *cobra.Command {
	return &cobra.Command{Use: "delete <name>", Short: "Delete a cluster registration", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		return u.Delete(ctx, &uc.DeleteInput{Name: args[0]})
	}}
}

func newCmdClusterAllocate() *cobra.Command {
	var tenant, region, env, username string
	c := &cobra.Command{Use: "allocate", Short: "Evaluate the allocation policy for a context", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		out, err := u.Allocate(ctx, &uc.AllocateInput{
			TenantID:    tenant,
			Region:      region,
			Environment: env,
			Username:    username,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Clusters)
	}}
	c.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	c.Flags().StringVar(&region, "region", "", "Region")
	c.Flags().StringVar(&env, "env", "", "Environment (stag|prod)")
	c.Flags().StringVar(&username, "username", "", "Acting user, matched against rule-based policies")
	_ = c.MarkFlagRequired("tenant")
	_ = c.MarkFlagRequired("env")
	return c
}

func newCmdClusterPolicy() *cobra.Command {
	var file string
	c := &cobra.Command{Use: "policy", Short: "Upsert the allocation policy of a tenant (from spec file)", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildClusterUseCase(cmd)
		if err != nil {
			return err
		}
		var spec model.AllocationPolicy
		if err := readSpec(cmd, file, &spec); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		return u.SavePolicy(ctx, &uc.SavePolicyInput{Policy: &spec})
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to policy spec (YAML), or '-' for stdin")
	_ = c.MarkFlagRequired("file")
	return c
}
