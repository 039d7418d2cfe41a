package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/rec"
	"hashira/internal/share"

	"github.com/spf13/cobra"
)

var solveJobs int

var solveCmd = &cobra.Command{
	Use:   "solve file...",
	Short: "Recover the secret of each dataset file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve(cmd.Context(), cmd, args)
	},
}

func init() {
	solveCmd.Flags().IntVarP(&solveJobs, "jobs", "j", runtime.GOMAXPROCS(0), "maximum number of datasets solved at once")
}

func runSolve(ctx context.Context, cmd *cobra.Command, files []string) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	results, err := share.SolveAll(ctx, files, solveJobs)
	if err != nil {
		return err
	}

	if config.DB.Enabled() {
		logger.Info("opening db")
		db.Open(config.DB)
		defer ctxlog.Close(ctx, "db", db.Closer())

		now := time.Now().UTC()
		for _, r := range results {
			if err := db.PutSecret(r.Digest, r.Record(now)); err != nil {
				return fmt.Errorf("store %q: %w", r.Name, err)
			}
		}
	}

	for _, r := range results {
		logger.Info("secret recovered", "dataset", r.Name, "k", r.K, "points", r.Points, "mismatches", len(r.Mismatches))
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Name, r.Secret)
	}
	return nil
}
