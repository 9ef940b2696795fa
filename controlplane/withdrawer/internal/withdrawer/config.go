package withdrawer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/crowdfunding/controlplane/withdrawer/internal/metrics"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
)

var (
	ErrLoggerRequired   = errors.New("logger is required")
	ErrClientRequired   = errors.New("crowdfunding client is required")
	ErrMetricsRequired  = errors.New("metrics is required")
	ErrOwnerRequired    = errors.New("owner is required")
	ErrIntervalRequired = errors.New("interval is required")
)

const (
	defaultMinBalanceLamports = 100_000
	defaultMaxAttempts        = 3
	defaultRetryInterval      = 2 * time.Second
)

type CrowdfundingClient interface {
	ListCampaigns(ctx context.Context) ([]crowdfunding.CampaignInfo, error)
	Withdraw(ctx context.Context, campaign solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error)
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

type Config struct {
	Logger  *slog.Logger
	Client  CrowdfundingClient
	Metrics *metrics.Metrics
	Clock   clockwork.Clock

	// Owner is the public key of the client's signer; only its campaigns are withdrawn.
	Owner    solana.PublicKey
	Interval time.Duration

	// MinBalanceLamports is the owner balance below which a tick is skipped, since every
	// withdraw pays a transaction fee before any lamports come back.
	MinBalanceLamports uint64

	// MaxAttempts bounds retries of a single withdraw on transport errors.
	MaxAttempts   uint
	RetryInterval time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return ErrLoggerRequired
	}
	if c.Client == nil {
		return ErrClientRequired
	}
	if c.Metrics == nil {
		return ErrMetricsRequired
	}
	if c.Owner.IsZero() {
		return ErrOwnerRequired
	}
	if c.Interval <= 0 {
		return ErrIntervalRequired
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.MinBalanceLamports == 0 {
		c.MinBalanceLamports = defaultMinBalanceLamports
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRetryInterval
	}
	return nil
}
