package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/bkpaas/workloads/domain/model"
	uccn "github.com/bkpaas/workloads/usecase/cnative"
	ucrel "github.com/bkpaas/workloads/usecase/release"
)

func newCmdCNative() *cobra.Command {
	cmd := &cobra.Command{Use: "cnative", Short: "Manage cloud-native app models and releases", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdCNativeImport(), newCmdCNativeImportEnv(), newCmdCNativeDeploy())
	return cmd
}

// readManifest loads a BkApp manifest from path (or stdin when "-") and
// normalises it to JSON.
func readManifest(cmd *cobra.Command, path string) (string, error) {
	if path == "" {
		return "", errors.New("manifest file required (-f)")
	}
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	j, err := yaml.YAMLToJSON(b)
	if err != nil {
		return "", fmt.Errorf("invalid manifest: %w", err)
	}
	return string(j), nil
}

func newCmdCNativeImport() *cobra.Command {
	var file, tenant string
	c := &cobra.Command{Use: "import <app-code> <module>", Short: "Import a BkApp manifest as the module's current model", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildCNativeUseCase(cmd)
		if err != nil {
			return err
		}
		manifest, err := readManifest(cmd, file)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		out, err := u.ImportManifest(ctx, &uccn.ImportManifestInput{
			TenantID:   tenant,
			AppCode:    args[0],
			ModuleName: args[1],
			Manifest:   manifest,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Resource)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to BkApp manifest (YAML), or '-' for stdin")
	c.Flags().StringVar(&tenant, "tenant", "", "Tenant owning the module")
	_ = c.MarkFlagRequired("file")
	return c
}

func newCmdCNativeImportEnv() *cobra.Command {
	return &cobra.Command{Use: "import-env <app-code> <module>", Short: "Extract manifest env vars into config var rows", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildCNativeUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		n, err := u.ImportEnvVars(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d env vars\n", n)
		return nil
	}}
}

func newCmdCNativeDeploy() *cobra.Command {
	var file, tenant string
	c := &cobra.Command{Use: "deploy <app>", Short: "Apply a BkApp manifest and watch it from the worker", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		cn, err := buildCNativeUseCase(cmd)
		if err != nil {
			return err
		}
		manifest, err := readManifest(cmd, file)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		app, err := u.Repos.App.GetByName(ctx, args[0])
		if err != nil {
			return err
		}
		imported, err := cn.ImportManifest(ctx, &uccn.ImportManifestInput{
			TenantID:   tenant,
			AppCode:    app.AppCode,
			ModuleName: app.ModuleName,
			Manifest:   manifest,
		})
		if err != nil {
			return err
		}
		deploy := &model.AppModelDeploy{
			ResourceUUID: imported.Resource.UUID,
			RevisionUUID: imported.Revision.UUID,
			Environment:  app.Environment,
			Status:       model.AppModelDeployPending,
		}
		if err := u.Repos.AppModel.CreateDeploy(ctx, deploy); err != nil {
			return err
		}
		res, err := uccn.DecodeManifest(imported.Resource.Manifest)
		if err != nil {
			return err
		}
		out, err := u.ReleaseCloudNative(ctx, &ucrel.CloudNativeReleaseInput{
			AppName:    args[0],
			Resource:   res,
			DeployUUID: deploy.UUID,
		})
		if err != nil {
			return err
		}
		sched, err := buildScheduler(cmd)
		if err != nil {
			return err
		}
		sched.Register(ucrel.TaskKindCNativePoll, &ucrel.CNativeHandler{UseCase: u})
		if err := u.EnqueueCNativePoll(ctx, sched, out.PollState); err != nil {
			return err
		}
		return printJSON(cmd, deploy)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to BkApp manifest (YAML), or '-' for stdin")
	c.Flags().StringVar(&tenant, "tenant", "", "Tenant owning the module")
	_ = c.MarkFlagRequired("file")
	return c
}
