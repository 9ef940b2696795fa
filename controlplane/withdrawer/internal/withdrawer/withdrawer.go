package withdrawer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/controlplane/withdrawer/internal/metrics"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
)

// Withdrawer sweeps the balance of the owner's expired campaigns back to the owner.
type Withdrawer struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Withdrawer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Withdrawer{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

func (w *Withdrawer) Run(ctx context.Context) error {
	w.log.Info("Starting withdrawer",
		"interval", w.cfg.Interval,
		"owner", w.cfg.Owner,
		"minBalanceLamports", w.cfg.MinBalanceLamports,
	)

	ticker := w.cfg.Clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.Tick(ctx); err != nil {
			w.log.Error("Failed to run withdrawer tick", "error", err)
		}

		select {
		case <-ctx.Done():
			w.log.Info("Withdrawer stopped by context", "error", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// Tick withdraws every expired campaign owned by the configured owner and returns how many
// were withdrawn.
func (w *Withdrawer) Tick(ctx context.Context) (int, error) {
	balance, err := w.cfg.Client.GetBalance(ctx, w.cfg.Owner)
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(metrics.ErrorTypeGetOwnerBalance).Inc()
		return 0, fmt.Errorf("failed to get owner balance: %w", err)
	}
	w.cfg.Metrics.OwnerBalanceSOL.Set(float64(balance) / float64(solana.LAMPORTS_PER_SOL))
	if balance < w.cfg.MinBalanceLamports {
		w.cfg.Metrics.Errors.WithLabelValues(metrics.ErrorTypeOwnerBalanceBelowMinimum).Inc()
		return 0, fmt.Errorf("owner balance %d is below minimum %d", balance, w.cfg.MinBalanceLamports)
	}

	campaigns, err := w.cfg.Client.ListCampaigns(ctx)
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(metrics.ErrorTypeListCampaigns).Inc()
		return 0, fmt.Errorf("failed to list campaigns: %w", err)
	}

	now := w.cfg.Clock.Now().Unix()
	withdrawn := 0
	for i := range campaigns {
		info := &campaigns[i]
		if info.Closed() || !info.Campaign.Owner.Equals(w.cfg.Owner) {
			continue
		}
		if info.State(now) != crowdfunding.CampaignStateExpired {
			w.log.Debug("Campaign still active", "campaign", info.Address, "deadline", info.Campaign.Deadline)
			continue
		}

		ok, err := w.withdraw(ctx, info)
		if err != nil {
			w.cfg.Metrics.Errors.WithLabelValues(metrics.ErrorTypeWithdraw).Inc()
			w.log.Error("Failed to withdraw campaign", "campaign", info.Address, "title", info.Campaign.Title, "error", err)
			continue
		}
		if ok {
			withdrawn++
		}
	}
	return withdrawn, nil
}

// withdraw reports whether lamports were moved. A campaign that is already gone or whose
// deadline has not passed on chain yet is not an error.
func (w *Withdrawer) withdraw(ctx context.Context, info *crowdfunding.CampaignInfo) (bool, error) {
	bo := backoff.NewConstantBackOff(w.cfg.RetryInterval)
	sig, err := backoff.Retry(ctx, func() (solana.Signature, error) {
		sig, _, err := w.cfg.Client.Withdraw(ctx, info.Address)
		if err != nil {
			var perr *crowdfunding.ProgramError
			var txErr *crowdfunding.TransactionError
			if errors.As(err, &perr) || errors.As(err, &txErr) || errors.Is(err, crowdfunding.ErrFeePayerNotFound) {
				return sig, backoff.Permanent(err)
			}
			return sig, err
		}
		return sig, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(w.cfg.MaxAttempts))

	switch {
	case errors.Is(err, crowdfunding.ErrAccountNotFound):
		w.cfg.Metrics.Withdrawals.WithLabelValues(metrics.ResultAlreadyClosed).Inc()
		w.log.Info("Campaign already withdrawn", "campaign", info.Address)
		return false, nil
	case errors.Is(err, crowdfunding.ErrDeadlineNotReached):
		// The cluster clock lags the local one.
		w.cfg.Metrics.Withdrawals.WithLabelValues(metrics.ResultNotReady).Inc()
		w.log.Info("Campaign deadline not reached on chain yet", "campaign", info.Address, "deadline", info.Campaign.Deadline)
		return false, nil
	case err != nil:
		return false, err
	}

	w.cfg.Metrics.Withdrawals.WithLabelValues(metrics.ResultWithdrawn).Inc()
	w.cfg.Metrics.SweptLamports.Add(float64(info.Lamports))
	w.log.Info("Withdrew campaign", "campaign", info.Address, "title", info.Campaign.Title, "lamports", info.Lamports, "signature", sig)
	return true, nil
}
