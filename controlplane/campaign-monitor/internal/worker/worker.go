package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/controlplane/campaign-monitor/internal/balance"
	"github.com/malbeclabs/crowdfunding/controlplane/campaign-monitor/internal/campaigns"
	"golang.org/x/sync/errgroup"
)

type Watcher interface {
	Name() string
	Run(ctx context.Context) error
}

type Worker struct {
	log *slog.Logger
	cfg *Config

	watchers []Watcher
}

func New(cfg *Config) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	campaignsMetrics := campaigns.NewMetrics()
	campaignsMetrics.Register(cfg.Registerer)
	campaignsWatcher, err := campaigns.NewCampaignsWatcher(&campaigns.Config{
		Logger:       cfg.Logger,
		Client:       cfg.Crowdfunding,
		Metrics:      campaignsMetrics,
		Interval:     cfg.Interval,
		Clock:        cfg.Clock,
		InfluxWriter: cfg.InfluxWriter,
		Env:          cfg.Env,
	})
	if err != nil {
		return nil, err
	}

	watchers := []Watcher{
		campaignsWatcher,
	}

	if len(cfg.BalanceAccounts) > 0 {
		balanceMetrics := balance.NewMetrics()
		balanceMetrics.Register(cfg.Registerer)
		balanceWatcher, err := balance.NewBalanceWatcher(&balance.Config{
			Logger:            cfg.Logger,
			Interval:          cfg.BalanceInterval,
			Client:            cfg.Crowdfunding,
			Metrics:           balanceMetrics,
			Clock:             cfg.Clock,
			Accounts:          cfg.BalanceAccounts,
			ThresholdLamports: uint64(cfg.BalanceThreshold * float64(solana.LAMPORTS_PER_SOL)),
		})
		if err != nil {
			return nil, err
		}
		watchers = append(watchers, balanceWatcher)
	}

	return &Worker{
		log:      cfg.Logger,
		cfg:      cfg,
		watchers: watchers,
	}, nil
}

// Run starts every watcher and blocks until ctx is done or a watcher fails. A failing watcher
// stops the others and its error is returned.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting worker", "watchers", len(w.watchers))

	g, ctx := errgroup.WithContext(ctx)
	for _, watcher := range w.watchers {
		g.Go(func() error {
			name := watcher.Name()
			w.log.Info("Starting watcher", "name", name)
			if err := watcher.Run(ctx); err != nil {
				w.log.Error("Failed to run watcher", "name", name, "error", err)
				return fmt.Errorf("watcher %s: %w", name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	w.log.Info("Shutting down worker")
	return err
}
