package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	uc "github.com/bkpaas/workloads/usecase/sandbox"
)

func newCmdSandbox() *cobra.Command {
	cmd := &cobra.Command{Use: "sandbox", Short: "Manage dev sandboxes", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdSandboxCreate(), newCmdSandboxGet(), newCmdSandboxDelete())
	return cmd
}

func newCmdSandboxCreate() *cobra.Command {
	var image string
	var command, envPairs []string
	c := &cobra.Command{Use: "create <app> <sandbox-id>", Short: "Provision a dev sandbox", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildSandboxUseCase(cmd)
		if err != nil {
			return err
		}
		envs, err := parseEnvs(envPairs)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		out, err := u.Create(ctx, &uc.CreateInput{
			AppName:   args[0],
			SandboxID: args[1],
			Image:     image,
			Command:   command,
			Envs:      envs,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	}}
	c.Flags().StringVar(&image, "image", "", "Sandbox container image")
	c.Flags().StringArrayVar(&command, "command", nil, "Container command word (repeatable)")
	c.Flags().StringArrayVar(&envPairs, "env", nil, "Env var KEY=VALUE (repeatable)")
	_ = c.MarkFlagRequired("image")
	return c
}

func newCmdSandboxGet() *cobra.Command {
	return &cobra.Command{Use: "get <app> <sandbox-id>", Short: "Show a sandbox's status", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildSandboxUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		detail, err := u.GetDetail(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, detail)
	}}
}

func newCmdSandboxDelete() *cobra.Command {
	return &cobra.Command{Use: "delete <app> <sandbox-id>", Short: "Tear down a sandbox", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildSandboxUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return u.Delete(ctx, args[0], args[1])
	}}
}
