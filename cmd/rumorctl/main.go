// Command rumorctl runs ingestion and prints rankings from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rumorboard/internal/adapters/render"
	app "github.com/okian/rumorboard/internal/app"
	"github.com/okian/rumorboard/internal/config"
	"github.com/okian/rumorboard/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "rumorctl",
		Short:         "Trade rumor leaderboard operator CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.AddCommand(ingestCmd(), rankCmd(), playerCmd())
	return root
}

// withService loads configuration, builds the service and closes it after fn.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	svc, err := app.FromConfig(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(ctx, svc)
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch rumor pages and rewrite the record store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				r, err := svc.Ingest(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d pages (%s), %d fragments, %d mentions, %d duplicates, %d stored in %s\n",
					r.RunID, r.Pages, r.StopReason, r.Fragments, r.Extracted, r.Duplicates, r.Stored, r.Duration().Round(time.Millisecond))
				return nil
			})
		},
	}
}

func rankCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the recency-weighted leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				lb, err := svc.Leaderboard(ctx, limit)
				if err != nil {
					return err
				}
				return render.Leaderboard(cmd.OutOrStdout(), lb)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Number of players to print (0 for all)")
	return cmd
}

func playerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <name-or-slug>",
		Short: "Print one player's score and mention history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				d, err := svc.Player(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return render.Player(cmd.OutOrStdout(), d)
			})
		},
	}
}
