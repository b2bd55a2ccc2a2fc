package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkpaas/workloads/internal/logging"
	ucbuild "github.com/bkpaas/workloads/usecase/build"
	ucrel "github.com/bkpaas/workloads/usecase/release"
)

// newCmdWorker runs the poll loop driving builds, releases, archives and
// cloud-native deploys to their terminal states. Commands that enqueue
// tasks expect one worker running on the same KV store.
func newCmdWorker() *cobra.Command {
	var interval time.Duration
	c := &cobra.Command{Use: "worker", Short: "Run the background poll loop", RunE: func(cmd *cobra.Command, args []string) error {
		bu, err := buildBuildUseCase(cmd)
		if err != nil {
			return err
		}
		ru, err := buildReleaseUseCase(cmd)
		if err != nil {
			return err
		}
		sched, err := buildScheduler(cmd)
		if err != nil {
			return err
		}
		if interval > 0 {
			sched.Interval = interval
		}
		sched.Register(ucbuild.TaskKindBuildPoll, &ucbuild.PollHandler{UseCase: bu})
		sched.Register(ucrel.TaskKindReleasePoll, &ucrel.PollHandler{UseCase: ru})
		sched.Register(ucrel.TaskKindArchivePoll, &ucrel.ArchiveHandler{UseCase: ru})
		sched.Register(ucrel.TaskKindCNativePoll, &ucrel.CNativeHandler{UseCase: ru})

		ctx := cmd.Context()
		logging.FromContext(ctx).Info(ctx, "worker started", "interval", sched.Interval.String())
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}}
	c.Flags().DurationVar(&interval, "interval", 0, "Poll interval; 0 keeps the scheduler default")
	return c
}
