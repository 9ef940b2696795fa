package balance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type mockBalanceClient struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
	failing  map[solana.PublicKey]bool
}

func (m *mockBalanceClient) GetBalance(_ context.Context, address solana.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing[address] {
		return 0, errors.New("rpc error")
	}
	return m.balances[address], nil
}

func (m *mockBalanceClient) set(address solana.PublicKey, lamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[address] = lamports
}

func newTestLogger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil)).With("test", t.Name())
}

func TestMonitor_Balance_Tick(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	broken := solana.NewWallet().PublicKey()
	metrics := NewMetrics()

	watcher, err := NewBalanceWatcher(&Config{
		Logger:   newTestLogger(t),
		Interval: time.Second,
		Client: &mockBalanceClient{
			balances: map[solana.PublicKey]uint64{owner: 500_000_000, treasury: 2_000_000_000},
			failing:  map[solana.PublicKey]bool{broken: true},
		},
		Metrics:           metrics,
		Accounts:          map[string]solana.PublicKey{"owner": owner, "treasury": treasury, "broken": broken},
		ThresholdLamports: solana.LAMPORTS_PER_SOL,
	})
	require.NoError(t, err)

	watcher.Tick(t.Context())

	require.Equal(t, float64(500_000_000), testutil.ToFloat64(metrics.BalanceLamports.WithLabelValues("owner", owner.String())))
	require.Equal(t, 0.5, testutil.ToFloat64(metrics.BalanceSOL.WithLabelValues("owner", owner.String())))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.BelowThreshold.WithLabelValues("owner", owner.String())))

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.BalanceSOL.WithLabelValues("treasury", treasury.String())))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.BelowThreshold.WithLabelValues("treasury", treasury.String())))

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Errors.WithLabelValues("broken", broken.String())))
	require.Equal(t, 2, testutil.CollectAndCount(metrics.BalanceLamports))
}

func TestMonitor_Balance_Tick_NoThreshold(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	metrics := NewMetrics()
	watcher, err := NewBalanceWatcher(&Config{
		Logger:   newTestLogger(t),
		Interval: time.Second,
		Client:   &mockBalanceClient{balances: map[solana.PublicKey]uint64{owner: 0}},
		Metrics:  metrics,
		Accounts: map[string]solana.PublicKey{"owner": owner},
	})
	require.NoError(t, err)

	watcher.Tick(t.Context())
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.BelowThreshold.WithLabelValues("owner", owner.String())))
}

func TestMonitor_Balance_Run_TicksOnClock(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	client := &mockBalanceClient{balances: map[solana.PublicKey]uint64{owner: 1}}
	clock := clockwork.NewFakeClock()
	metrics := NewMetrics()

	watcher, err := NewBalanceWatcher(&Config{
		Logger:   newTestLogger(t),
		Interval: time.Minute,
		Client:   client,
		Metrics:  metrics,
		Clock:    clock,
		Accounts: map[string]solana.PublicKey{"owner": owner},
	})
	require.NoError(t, err)
	gauge := metrics.BalanceLamports.WithLabelValues("owner", owner.String())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool { return testutil.ToFloat64(gauge) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	client.set(owner, 7)
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool { return testutil.ToFloat64(gauge) == 7 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestMonitor_Balance_Config_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Logger:   newTestLogger(t),
			Interval: time.Second,
			Client:   &mockBalanceClient{},
			Metrics:  NewMetrics(),
			Accounts: map[string]solana.PublicKey{"owner": solana.NewWallet().PublicKey()},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing logger", mutate: func(c *Config) { c.Logger = nil }, wantErr: ErrLoggerRequired},
		{name: "zero interval", mutate: func(c *Config) { c.Interval = 0 }, wantErr: ErrIntervalRequired},
		{name: "missing client", mutate: func(c *Config) { c.Client = nil }, wantErr: ErrClientRequired},
		{name: "missing metrics", mutate: func(c *Config) { c.Metrics = nil }, wantErr: ErrMetricsRequired},
		{name: "no accounts", mutate: func(c *Config) { c.Accounts = nil }, wantErr: ErrNoAccounts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg.Clock)
		})
	}
}
