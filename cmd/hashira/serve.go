package main

import (
	"context"
	"errors"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/rec"
	"hashira/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recovery API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	if !config.DB.Enabled() {
		return errors.New("serve: db.file is required")
	}

	logger.Info("opening db")
	db.Open(config.DB)
	defer ctxlog.Close(ctx, "db", db.Closer())

	logger.Info("starting server")
	srv := server.New(config.Server)

	err = srv.Run(ctx)
	if err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
	} else {
		logger.Info("server gracefully stopped")
	}
	return err
}
