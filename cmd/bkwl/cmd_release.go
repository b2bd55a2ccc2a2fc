package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	uc "github.com/bkpaas/workloads/usecase/release"
)

func newCmdRelease() *cobra.Command {
	cmd := &cobra.Command{Use: "release", Short: "Drive deployments through their phases", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdReleaseInit(), newCmdReleaseRun(), newCmdReleaseInterrupt(), newCmdReleaseOffline())
	return cmd
}

func newCmdReleaseInit() *cobra.Command {
	var runtime, sourceType, sourceName, revision string
	var hook []string
	var hookEnabled bool
	c := &cobra.Command{Use: "init <app>", Short: "Create a deployment record and take the release lock", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		out, err := u.Initialize(ctx, &uc.InitializeInput{
			AppName:           args[0],
			RuntimeType:       runtime,
			SourceVersionType: sourceType,
			SourceVersionName: sourceName,
			SourceRevision:    revision,
			PreReleaseHook:    hook,
			HookEnabled:       hookEnabled,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.Deployment)
	}}
	c.Flags().StringVar(&runtime, "runtime", uc.RuntimeBuildpack, "App runtime (buildpack|custom_image)")
	c.Flags().StringVar(&sourceType, "source-type", uc.VersionTypeBranch, "Source version type (branch|tag|image)")
	c.Flags().StringVar(&sourceName, "source-name", "", "Source version name")
	c.Flags().StringVar(&revision, "revision", "", "Source revision")
	c.Flags().StringArrayVar(&hook, "hook", nil, "Pre-release hook command word (repeatable)")
	c.Flags().BoolVar(&hookEnabled, "hook-enabled", false, "Run the pre-release hook during release")
	return c
}

func newCmdReleaseRun() *cobra.Command {
	var deployID, buildID string
	var envPairs []string
	c := &cobra.Command{Use: "run <app>", Short: "Execute the release phase of a deployment", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		envs, err := parseEnvs(envPairs)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out, err := u.Release(ctx, &uc.ReleaseInput{
			DeployID: deployID,
			AppName:  args[0],
			BuildID:  buildID,
			Envs:     envs,
		})
		if err != nil {
			return err
		}
		sched, err := buildScheduler(cmd)
		if err != nil {
			return err
		}
		sched.Register(uc.TaskKindReleasePoll, &uc.PollHandler{UseCase: u})
		if err := u.EnqueuePoll(ctx, sched, out.PollState); err != nil {
			return err
		}
		return printJSON(cmd, out.Release)
	}}
	c.Flags().StringVar(&deployID, "deploy-id", "", "Deployment record created by 'release init'")
	c.Flags().StringVar(&buildID, "build-id", "", "Build artifact to release")
	c.Flags().StringArrayVar(&envPairs, "env", nil, "Process env var KEY=VALUE (repeatable)")
	_ = c.MarkFlagRequired("deploy-id")
	_ = c.MarkFlagRequired("build-id")
	return c
}

func newCmdReleaseInterrupt() *cobra.Command {
	return &cobra.Command{Use: "interrupt <deploy-id>", Short: "Interrupt a running deployment", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		return u.Interrupt(ctx, args[0])
	}}
}

func newCmdReleaseOffline() *cobra.Command {
	return &cobra.Command{Use: "offline <app>", Short: "Scale the app's processes to zero and wait for pods to drain", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		state, err := u.Offline(ctx, args[0])
		if err != nil {
			return err
		}
		sched, err := buildScheduler(cmd)
		if err != nil {
			return err
		}
		sched.Register(uc.TaskKindArchivePoll, &uc.ArchiveHandler{UseCase: u})
		return u.EnqueueArchivePoll(ctx, sched, state)
	}}
}
