package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Worker_Config(t *testing.T) {
	t.Parallel()

	valid := &Config{
		Logger:       newTestLogger(t),
		Crowdfunding: &mockCrowdfundingClient{},
		Interval:     50 * time.Millisecond,
		Registerer:   prometheus.NewRegistry(),
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		c := *valid
		require.NoError(t, c.Validate())
		require.NotNil(t, c.Clock)
	})

	t.Run("missing logger fails", func(t *testing.T) {
		t.Parallel()
		c := *valid
		c.Logger = nil
		require.Error(t, c.Validate())
	})

	t.Run("missing crowdfunding client fails", func(t *testing.T) {
		t.Parallel()
		c := *valid
		c.Crowdfunding = nil
		require.Error(t, c.Validate())
	})

	t.Run("non-positive interval fails", func(t *testing.T) {
		t.Parallel()
		c := *valid
		c.Interval = 0
		require.Error(t, c.Validate())
	})

	t.Run("balance accounts need an interval", func(t *testing.T) {
		t.Parallel()
		c := *valid
		c.BalanceAccounts = map[string]solana.PublicKey{"owner": solana.NewWallet().PublicKey()}
		require.Error(t, c.Validate())
		c.BalanceInterval = time.Second
		require.NoError(t, c.Validate())
	})

	t.Run("registerer defaults", func(t *testing.T) {
		t.Parallel()
		c := *valid
		c.Registerer = nil
		require.NoError(t, c.Validate())
		require.Equal(t, prometheus.DefaultRegisterer, c.Registerer)
	})
}

func newTestLogger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})).With("test", t.Name())
}

type mockCrowdfundingClient struct {
	ListCampaignsFunc      func(context.Context) ([]crowdfunding.CampaignInfo, error)
	ActualContributionFunc func(context.Context, *crowdfunding.CampaignInfo) (uint64, error)
	GetBalanceFunc         func(context.Context, solana.PublicKey) (uint64, error)
}

func (m *mockCrowdfundingClient) ListCampaigns(ctx context.Context) ([]crowdfunding.CampaignInfo, error) {
	if m.ListCampaignsFunc == nil {
		return nil, nil
	}
	return m.ListCampaignsFunc(ctx)
}

func (m *mockCrowdfundingClient) ActualContribution(ctx context.Context, info *crowdfunding.CampaignInfo) (uint64, error) {
	if m.ActualContributionFunc == nil {
		return 0, nil
	}
	return m.ActualContributionFunc(ctx, info)
}

func (m *mockCrowdfundingClient) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	if m.GetBalanceFunc == nil {
		return 0, nil
	}
	return m.GetBalanceFunc(ctx, address)
}
