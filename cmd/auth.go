package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to Telegram and save the session file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("auth"); err != nil {
			return err
		}

		client, err := connectTelegram(ctx, cmd)
		if err != nil {
			return err
		}
		if err := client.Disconnect(ctx); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", cfg.Telegram.SessionFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
