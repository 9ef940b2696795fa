package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Worker(t *testing.T) {
	t.Parallel()

	validCfg := &Config{
		Logger: newTestLogger(t),
		Crowdfunding: &mockCrowdfundingClient{
			ListCampaignsFunc: func(context.Context) ([]crowdfunding.CampaignInfo, error) {
				return []crowdfunding.CampaignInfo{}, nil
			},
		},
		Interval:   10 * time.Millisecond,
		Registerer: prometheus.NewRegistry(),
	}

	t.Run("New_setsUpCampaignsWatcher", func(t *testing.T) {
		t.Parallel()
		c := *validCfg
		c.Registerer = prometheus.NewRegistry()
		w, err := New(&c)
		require.NoError(t, err)
		require.NotNil(t, w)
		require.Len(t, w.watchers, 1)
		require.Equal(t, "campaigns", w.watchers[0].Name())
	})

	t.Run("New_addsBalanceWatcher", func(t *testing.T) {
		t.Parallel()
		c := *validCfg
		c.Registerer = prometheus.NewRegistry()
		c.BalanceAccounts = map[string]solana.PublicKey{"owner": solana.NewWallet().PublicKey()}
		c.BalanceInterval = 10 * time.Millisecond
		w, err := New(&c)
		require.NoError(t, err)
		require.Len(t, w.watchers, 2)
		require.Equal(t, "balance", w.watchers[1].Name())
	})

	t.Run("New_failsOnBadConfig", func(t *testing.T) {
		t.Parallel()
		c := *validCfg
		c.Logger = nil
		w, err := New(&c)
		require.Error(t, err)
		require.Nil(t, w)
	})

}

func TestMonitor_Worker_Run(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	tests := []struct {
		name     string
		watchers func(started *atomic.Int32) []Watcher
		cancel   bool
		wantErr  error
	}{
		{
			name: "watcher error stops the others",
			watchers: func(started *atomic.Int32) []Watcher {
				return []Watcher{
					blockingWatcher("campaigns", started),
					&mockWatcher{NameFunc: func() string { return "balance" }, RunFunc: func(context.Context) error {
						started.Add(1)
						return errBoom
					}},
				}
			},
			wantErr: errBoom,
		},
		{
			name: "parent cancel stops all watchers",
			watchers: func(started *atomic.Int32) []Watcher {
				return []Watcher{blockingWatcher("campaigns", started), blockingWatcher("balance", started)}
			},
			cancel: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var started atomic.Int32
			w := &Worker{log: newTestLogger(t), watchers: tt.watchers(&started)}

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- w.Run(ctx) }()

			require.Eventually(t, func() bool { return started.Load() == 2 }, time.Second, time.Millisecond)
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					require.Contains(t, err.Error(), "watcher balance")
				} else {
					require.NoError(t, err)
				}
			case <-time.After(time.Second):
				t.Fatal("worker did not exit")
			}
		})
	}
}

func blockingWatcher(name string, started *atomic.Int32) Watcher {
	return &mockWatcher{
		NameFunc: func() string { return name },
		RunFunc: func(ctx context.Context) error {
			started.Add(1)
			<-ctx.Done()
			return nil
		},
	}
}

type mockWatcher struct {
	NameFunc func() string
	RunFunc  func(ctx context.Context) error
}

func (m *mockWatcher) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}
func (m *mockWatcher) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}
