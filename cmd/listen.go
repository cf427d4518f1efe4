package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/classify"
	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/ingest"
	"github.com/sells-group/leadscout/internal/join"
	"github.com/sells-group/leadscout/internal/lead"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/oracle"
	"github.com/sells-group/leadscout/internal/store"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Join sources, optionally backfill history, then watch for new leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("listen"); err != nil {
			return err
		}
		metrics.Register()

		provider, err := oracle.New(cfg)
		if err != nil {
			return err
		}
		if err := checkOracle(ctx, provider); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cache := dedup.New()
		if err := warmUp(ctx, st, cache); err != nil {
			return err
		}

		client, err := connectTelegram(ctx, cmd)
		if err != nil {
			return err
		}

		ctrl := ingest.New(
			client,
			join.New(client, ms(cfg.Ingest.JoinDelayMs), time.Duration(cfg.Ingest.FloodWaitFallbackSecs)*time.Second),
			classify.New(oracle.Guarded(provider, cfg.Oracle)),
			lead.NewPersister(cache, st),
			ingest.Options{
				Sources:          cfg.Ingest.Channels,
				AnalyzeHistory:   cfg.Ingest.AnalyzeHistory,
				HistoryLimit:     cfg.Ingest.HistoryLimit,
				MinMessageLength: cfg.Ingest.MinMessageLength,
				HistoryDelay:     ms(cfg.Ingest.HistoryDelayMs),
				ChannelDelay:     ms(cfg.Ingest.ChannelDelayMs),
			},
		)

		zap.L().Info("starting lead scout",
			zap.String("oracle", provider.Name()),
			zap.String("store", cfg.Store.Driver),
			zap.Strings("channels", cfg.Ingest.Channels),
			zap.Bool("analyze_history", cfg.Ingest.AnalyzeHistory),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return ctrl.Run(gctx)
		})
		if cfg.Metrics.Addr != "" {
			g.Go(func() error {
				return serveStatus(gctx, cfg.Metrics.Addr, ctrl)
			})
		}
		return g.Wait()
	},
}

// openStore opens and migrates the configured lead store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// warmUp seeds the dedup cache from everything already stored.
func warmUp(ctx context.Context, st store.Store, cache *dedup.Cache) error {
	leads, err := st.LoadLeads(ctx)
	if err != nil {
		return err
	}
	n, err := cache.WarmUp(leads)
	if err != nil {
		return err
	}
	zap.L().Info("loaded existing leads into dedup cache", zap.Int("leads", n))
	return nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
