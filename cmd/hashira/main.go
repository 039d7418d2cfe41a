package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hashira/internal/ctxlog"

	"github.com/spf13/cobra"
)

var (
	configFile string
	config     Config
)

var rootCmd = &cobra.Command{
	Use:           "hashira",
	Short:         "Recover polynomial secrets from base-encoded points",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		config = c

		cmd.SetContext(ctxlog.Setup(cmd.Context(), "hashira", config.Log))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(solveCmd, serveCmd, secretsCmd, decodeCmd, encodeCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ctxlog.Get(ctx).Error("command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
