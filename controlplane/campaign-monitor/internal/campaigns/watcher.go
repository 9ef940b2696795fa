package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gagliardetto/solana-go"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
)

const (
	watcherName = "campaigns"

	influxMeasurement = "campaign"
)

type snapshot struct {
	state crowdfunding.CampaignState
	title string
}

type CampaignsWatcher struct {
	log *slog.Logger
	cfg *Config

	// last observed state per campaign address; nil until the first successful tick.
	cache map[solana.PublicKey]snapshot
}

func NewCampaignsWatcher(cfg *Config) (*CampaignsWatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CampaignsWatcher{
		log: cfg.Logger.With("watcher", watcherName),
		cfg: cfg,
	}, nil
}

func (w *CampaignsWatcher) Name() string {
	return watcherName
}

func (w *CampaignsWatcher) Run(ctx context.Context) error {
	ticker := w.cfg.Clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	if w.cfg.InfluxWriter != nil {
		go func() {
			for err := range w.cfg.InfluxWriter.Errors() {
				w.log.Error("influx write error", "error", err)
			}
		}()
	}

	if err := w.Tick(ctx); err != nil {
		w.log.Error("failed to tick", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("context done, stopping")
			return nil
		case <-ticker.Chan():
			if err := w.Tick(ctx); err != nil {
				w.log.Error("failed to tick", "error", err)
			}
		}
	}
}

func (w *CampaignsWatcher) Tick(ctx context.Context) error {
	infos, err := w.cfg.Client.ListCampaigns(ctx)
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeListCampaigns).Inc()
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	now := w.cfg.Clock.Now()
	counts := map[crowdfunding.CampaignState]int{
		crowdfunding.CampaignStateActive:  0,
		crowdfunding.CampaignStateExpired: 0,
		crowdfunding.CampaignStateClosed:  0,
	}

	// Per-campaign series are rebuilt every tick so withdrawn campaigns drop out.
	w.cfg.Metrics.TotalContribution.Reset()
	w.cfg.Metrics.ActualContribution.Reset()

	current := make(map[solana.PublicKey]snapshot, len(infos))
	for i := range infos {
		info := &infos[i]
		state := info.State(now.Unix())
		counts[state]++

		snap := snapshot{state: state}
		if prev, ok := w.cache[info.Address]; ok {
			snap.title = prev.title
		}
		if info.Closed() {
			current[info.Address] = snap
			continue
		}
		snap.title = info.Campaign.Title
		current[info.Address] = snap

		actual, err := w.cfg.Client.ActualContribution(ctx, info)
		if err != nil {
			w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeActualContribution).Inc()
			w.log.Warn("failed to compute actual contribution", "campaign", info.Address, "error", err)
			continue
		}

		labels := []string{info.Address.String(), info.Campaign.Title}
		w.cfg.Metrics.TotalContribution.WithLabelValues(labels...).Set(float64(info.Campaign.TotalContribution))
		w.cfg.Metrics.ActualContribution.WithLabelValues(labels...).Set(float64(actual))

		if w.cfg.InfluxWriter != nil {
			w.cfg.InfluxWriter.WritePoint(influxdb2.NewPoint(influxMeasurement,
				map[string]string{
					"pubkey": info.Address.String(),
					"owner":  info.Campaign.Owner.String(),
					"title":  info.Campaign.Title,
					"state":  string(state),
					"env":    w.cfg.Env,
				},
				map[string]any{
					"deadline":            info.Campaign.Deadline,
					"total_contribution":  info.Campaign.TotalContribution,
					"actual_contribution": actual,
					"lamports":            info.Lamports,
				},
				now,
			))
		}
	}
	if w.cfg.InfluxWriter != nil {
		w.cfg.InfluxWriter.Flush()
	}

	for state, n := range counts {
		w.cfg.Metrics.Campaigns.WithLabelValues(string(state)).Set(float64(n))
	}
	w.cfg.Metrics.DanglingEntries.Set(float64(counts[crowdfunding.CampaignStateClosed]))

	w.detectTransitions(current)
	w.cache = current

	w.log.Debug("campaigns", "active", counts[crowdfunding.CampaignStateActive],
		"expired", counts[crowdfunding.CampaignStateExpired], "closed", counts[crowdfunding.CampaignStateClosed])
	return nil
}

func (w *CampaignsWatcher) detectTransitions(current map[solana.PublicKey]snapshot) {
	// nothing to compare against on the first tick
	if w.cache == nil {
		return
	}

	for address, snap := range current {
		prev, ok := w.cache[address]
		if !ok {
			w.log.Info("campaign created", "campaign", address, "title", snap.title, "state", snap.state)
			continue
		}
		if prev.state != snap.state {
			w.transition(address, snap.title, prev.state, snap.state)
		}
	}

	// Entries removed from the registry were withdrawn with compaction enabled.
	for address, prev := range w.cache {
		if _, ok := current[address]; ok || prev.state == crowdfunding.CampaignStateClosed {
			continue
		}
		w.transition(address, prev.title, prev.state, crowdfunding.CampaignStateClosed)
	}
}

func (w *CampaignsWatcher) transition(address solana.PublicKey, title string, from, to crowdfunding.CampaignState) {
	w.cfg.Metrics.Transitions.WithLabelValues(string(from), string(to)).Inc()
	w.log.Info("campaign state changed", "campaign", address, "title", strconv.Quote(title), "from", from, "to", to)
}
