package balance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

var (
	ErrLoggerRequired   = errors.New("logger is required")
	ErrIntervalRequired = errors.New("interval must be greater than 0")
	ErrClientRequired   = errors.New("client is required")
	ErrMetricsRequired  = errors.New("metrics is required")
	ErrNoAccounts       = errors.New("at least one account is required")
)

type BalanceClient interface {
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

type Config struct {
	Logger   *slog.Logger
	Interval time.Duration
	Client   BalanceClient
	Metrics  *Metrics
	Clock    clockwork.Clock

	// Accounts maps a label to the wallet it tracks, typically campaign owners paying fees.
	Accounts map[string]solana.PublicKey

	// ThresholdLamports flags an account as low once its balance drops below it. Zero disables.
	ThresholdLamports uint64
}

func (c *Config) Validate() error {
	switch {
	case c.Logger == nil:
		return ErrLoggerRequired
	case c.Interval <= 0:
		return ErrIntervalRequired
	case c.Client == nil:
		return ErrClientRequired
	case c.Metrics == nil:
		return ErrMetricsRequired
	case len(c.Accounts) == 0:
		return ErrNoAccounts
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}
