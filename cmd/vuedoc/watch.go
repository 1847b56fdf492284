package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vuedoc/internal/pipeline"
	"vuedoc/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and update the documentation as files change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		sync, err := pipeline.NewIncrementalSync(cfg, logger, os.Stdout)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Bring the store up to date before following changes.
		res, err := sync.Sync(ctx, nil, false)
		if err != nil {
			return err
		}
		printResult(res)

		w, err := watcher.NewWatcher(cfg.Watch.Debounce, sync.Filter(), logger, func(paths []string) {
			fmt.Printf("%d files changed\n", len(paths))
			res, err := sync.SyncFiles(ctx, paths)
			if err != nil {
				if ctx.Err() == nil {
					errorColor.Fprintln(os.Stderr, err)
				}
				return
			}
			printResult(res)
		})
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.Watch(ctx, []string{sync.Root()}); err != nil {
			return err
		}
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", sync.Root())

		select {
		case <-ctx.Done():
		case <-w.Done():
		}
		if ctx.Err() == context.Canceled {
			fmt.Println("Stopped.")
		}
		return nil
	},
}
