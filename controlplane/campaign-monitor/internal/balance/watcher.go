package balance

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/gagliardetto/solana-go"
)

const watcherName = "balance"

// BalanceWatcher exports the balances of a fixed set of wallets.
type BalanceWatcher struct {
	log    *slog.Logger
	cfg    *Config
	labels []string
}

func NewBalanceWatcher(cfg *Config) (*BalanceWatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BalanceWatcher{
		log:    cfg.Logger.With("watcher", watcherName),
		cfg:    cfg,
		labels: slices.Sorted(maps.Keys(cfg.Accounts)),
	}, nil
}

func (w *BalanceWatcher) Name() string {
	return watcherName
}

func (w *BalanceWatcher) Run(ctx context.Context) error {
	ticker := w.cfg.Clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		w.Tick(ctx)
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping")
			return nil
		case <-ticker.Chan():
		}
	}
}

// Tick refreshes every tracked wallet. A failed lookup is counted and leaves that wallet's
// gauges at their last value.
func (w *BalanceWatcher) Tick(ctx context.Context) {
	for _, label := range w.labels {
		pubkey := w.cfg.Accounts[label]
		lamports, err := w.cfg.Client.GetBalance(ctx, pubkey)
		if err != nil {
			w.cfg.Metrics.Errors.WithLabelValues(label, pubkey.String()).Inc()
			w.log.Warn("Failed to get balance", "account", label, "pubkey", pubkey, "error", err)
			continue
		}
		w.record(label, pubkey, lamports)
	}
}

func (w *BalanceWatcher) record(label string, pubkey solana.PublicKey, lamports uint64) {
	labels := []string{label, pubkey.String()}
	sol := float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
	w.cfg.Metrics.BalanceLamports.WithLabelValues(labels...).Set(float64(lamports))
	w.cfg.Metrics.BalanceSOL.WithLabelValues(labels...).Set(sol)

	low := w.cfg.ThresholdLamports > 0 && lamports < w.cfg.ThresholdLamports
	if low {
		w.cfg.Metrics.BelowThreshold.WithLabelValues(labels...).Set(1)
		w.log.Warn("Balance below threshold", "account", label, "pubkey", pubkey, "lamports", lamports, "threshold", w.cfg.ThresholdLamports)
		return
	}
	w.cfg.Metrics.BelowThreshold.WithLabelValues(labels...).Set(0)
	w.log.Debug("Balance", "account", label, "pubkey", pubkey, "lamports", lamports, "sol", sol)
}
