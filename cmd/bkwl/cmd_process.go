package main

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	uc "github.com/bkpaas/workloads/usecase/process"
)

func newCmdProcess() *cobra.Command {
	cmd := &cobra.Command{Use: "process", Short: "Inspect and scale app processes", RunE: func(cmd *cobra.Command, args []string) error { return cmd.Help() }, SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newCmdProcessList(), newCmdProcessScale(), newCmdProcessStart(), newCmdProcessStop(), newCmdProcessWatch())
	return cmd
}

func newCmdProcessList() *cobra.Command {
	return &cobra.Command{Use: "list <app>", Short: "List processes and their instances", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProcessUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		info, err := u.List(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, info.Processes)
	}}
}

func newCmdProcessScale() *cobra.Command {
	return &cobra.Command{Use: "scale <app> <process> <replicas>", Short: "Scale a process to a replica count", Args: cobra.ExactArgs(3), RunE: func(cmd *cobra.Command, args []string) error {
		replicas, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		u, err := buildProcessUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return u.Scale(ctx, &uc.ScaleInput{AppName: args[0], ProcessType: args[1], Replicas: replicas})
	}}
}

func newCmdProcessStart() *cobra.Command {
	return &cobra.Command{Use: "start <app> <process>", Short: "Start a stopped process", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProcessUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return u.Start(ctx, args[0], args[1])
	}}
}

func newCmdProcessStop() *cobra.Command {
	return &cobra.Command{Use: "stop <app> <process>", Short: "Stop a process, keeping its spec", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProcessUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return u.Stop(ctx, args[0], args[1])
	}}
}

func newCmdProcessWatch() *cobra.Command {
	return &cobra.Command{Use: "watch <app>", Short: "Stream process and instance events until interrupted", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProcessUseCase(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		info, err := u.List(ctx, args[0])
		if err != nil {
			return err
		}
		events, err := u.Watch(ctx, &uc.WatchInput{AppName: args[0], RVProc: info.RVProc, RVInst: info.RVInst})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for evt := range events {
			if err := enc.Encode(evt); err != nil {
				return err
			}
		}
		return nil
	}}
}
