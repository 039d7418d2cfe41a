package main

import (
	"context"
	"errors"
	"fmt"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/rec"

	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "List stored secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSecrets(cmd.Context(), cmd)
	},
}

func runSecrets(ctx context.Context, cmd *cobra.Command) (err error) {
	defer rec.Error(&err)

	if !config.DB.Enabled() {
		return errors.New("secrets: db.file is required")
	}

	db.Open(config.DB)
	defer ctxlog.Close(ctx, "db", db.Closer())

	for id, r := range db.All() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", id, r.SolvedAt.Format("2006-01-02T15:04:05Z07:00"), r.Name, r.Secret)
	}
	return nil
}
