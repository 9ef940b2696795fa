package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/crowdfunding/controlplane/campaign-monitor/internal/campaigns"
	"github.com/prometheus/client_golang/prometheus"
)

type CrowdfundingClient interface {
	campaigns.CrowdfundingClient
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

type Config struct {
	Logger       *slog.Logger
	Crowdfunding CrowdfundingClient
	Interval     time.Duration
	Clock        clockwork.Clock
	InfluxWriter campaigns.InfluxWriter
	Env          string

	// Registerer receives the watcher collectors; defaults to the prometheus default registry.
	Registerer prometheus.Registerer

	BalanceAccounts  map[string]solana.PublicKey
	BalanceThreshold float64 // SOL
	BalanceInterval  time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Crowdfunding == nil {
		return errors.New("crowdfunding client is required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if len(c.BalanceAccounts) > 0 && c.BalanceInterval <= 0 {
		return errors.New("balance interval must be greater than 0")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return nil
}
