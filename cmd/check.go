package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/oracle"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured LLM oracle is reachable and has its model",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("check"); err != nil {
			return err
		}
		provider, err := oracle.New(cfg)
		if err != nil {
			return err
		}
		if err := checkOracle(cmd.Context(), provider); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Oracle %s is ready\n", provider.Name())
		return nil
	},
}

// checkOracle runs the readiness probe with a short deadline.
func checkOracle(ctx context.Context, p oracle.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := p.Ready(ctx); err != nil {
		zap.L().Error("oracle not ready", zap.String("provider", p.Name()), zap.Error(err))
		return err
	}
	zap.L().Info("oracle ready", zap.String("provider", p.Name()))
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
