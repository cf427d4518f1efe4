package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/pkg/telegram"
)

// connectTelegram opens a session and signs in, prompting on the command's
// stdin when the stored session is missing or expired.
func connectTelegram(ctx context.Context, cmd *cobra.Command) (*telegram.Client, error) {
	client := telegram.New(telegram.Config{
		AppID:       cfg.Telegram.APIID,
		AppHash:     cfg.Telegram.APIHash,
		SessionFile: cfg.Telegram.SessionFile,
		Buffer:      cfg.Ingest.LiveBuffer,
	}, zap.L())

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	err := client.Authenticate(ctx, cfg.Telegram.Phone,
		codePrompt(cmd.InOrStdin(), cmd.OutOrStdout()),
		passwordPrompt(cfg.Telegram.Password, cmd.OutOrStdout()),
	)
	if err != nil {
		client.Disconnect(context.WithoutCancel(ctx)) //nolint:errcheck
		return nil, err
	}
	return client, nil
}
