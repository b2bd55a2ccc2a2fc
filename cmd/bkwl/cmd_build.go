package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkpaas/workloads/domain/model"
	uc "github.com/bkpaas/workloads/usecase/build"
)

func newCmdBuild() *cobra.Command {
	cmd := &cobra.Command{Use: "build", Short: "Run source builds", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdBuildStart())
	return cmd
}

// parseEnvs turns repeated KEY=VALUE flags into a map.
func parseEnvs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	envs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid env %q, expected KEY=VALUE", p)
		}
		envs[k] = v
	}
	return envs, nil
}

func newCmdBuildStart() *cobra.Command {
	var runtime, sourceTar, branch, revision string
	var tarPath, putPath, cachePath string
	var image, slugURL, buildpacksFile string
	var envPairs []string
	c := &cobra.Command{Use: "start <app>", Short: "Launch a builder pod and watch it from the worker", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildBuildUseCase(cmd)
		if err != nil {
			return err
		}
		envs, err := parseEnvs(envPairs)
		if err != nil {
			return err
		}
		var buildpacks []model.Buildpack
		if buildpacksFile != "" {
			if err := readSpec(cmd, buildpacksFile, &buildpacks); err != nil {
				return err
			}
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		out, err := u.StartBuild(ctx, &uc.StartBuildInput{
			AppName:       args[0],
			RuntimeType:   runtime,
			SourceTarPath: sourceTar,
			Branch:        branch,
			Revision:      revision,
			Buildpacks:    buildpacks,
			AppEnvs:       envs,
			Paths:         uc.BlobStorePaths{TarPath: tarPath, PutPath: putPath, CachePath: cachePath},
		})
		if err != nil {
			return err
		}
		app, err := u.Repos.App.GetByName(ctx, args[0])
		if err != nil {
			return err
		}
		cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
		if err != nil {
			return err
		}
		sched, err := buildScheduler(cmd)
		if err != nil {
			return err
		}
		sched.Register(uc.TaskKindBuildPoll, &uc.PollHandler{UseCase: u})
		if err := u.EnqueuePoll(ctx, sched, &uc.PollState{
			BuildProcessUUID: out.BuildProcess.UUID,
			AppUUID:          app.UUID,
			ClusterName:      cfg.ClusterName,
			Namespace:        out.Template.Namespace,
			PodName:          out.Template.Name,
			Image:            image,
			SlugURL:          slugURL,
			UseCNB:           runtime == uc.RuntimeCNB,
		}); err != nil {
			return err
		}
		return printJSON(cmd, out.BuildProcess)
	}}
	c.Flags().StringVar(&runtime, "runtime", uc.RuntimeBuildpack, "Build runtime (buildpack|cnb)")
	c.Flags().StringVar(&sourceTar, "source-tar", "", "Blob store path of the source tarball")
	c.Flags().StringVar(&branch, "branch", "", "Source branch")
	c.Flags().StringVar(&revision, "revision", "", "Source revision")
	c.Flags().StringVar(&tarPath, "tar-path", "", "Builder fetch path for the source tarball")
	c.Flags().StringVar(&putPath, "put-path", "", "Builder upload path for the finished slug")
	c.Flags().StringVar(&cachePath, "cache-path", "", "Build cache path")
	c.Flags().StringVar(&image, "image", "", "Artifact image reference recorded on success")
	c.Flags().StringVar(&slugURL, "slug-url", "", "Artifact slug URL recorded on success")
	c.Flags().StringVar(&buildpacksFile, "buildpacks", "", "Path to a YAML buildpack list")
	c.Flags().StringArrayVar(&envPairs, "env", nil, "App env var KEY=VALUE (repeatable)")
	_ = c.MarkFlagRequired("source-tar")
	return c
}
