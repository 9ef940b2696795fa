package campaigns

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Metric names.
	MetricNameCampaigns          = "crowdfunding_campaigns"
	MetricNameTotalContribution  = "crowdfunding_campaign_total_contribution_lamports"
	MetricNameActualContribution = "crowdfunding_campaign_actual_contribution_lamports"
	MetricNameDanglingEntries    = "crowdfunding_global_state_dangling_entries"
	MetricNameTransitions        = "crowdfunding_campaign_transitions_total"
	MetricNameErrors             = "crowdfunding_monitor_campaigns_errors_total"

	// Labels.
	MetricLabelState     = "state"
	MetricLabelCampaign  = "campaign"
	MetricLabelTitle     = "title"
	MetricLabelFrom      = "from"
	MetricLabelTo        = "to"
	MetricLabelErrorType = "error_type"

	// Error types.
	MetricErrorTypeListCampaigns      = "list_campaigns"
	MetricErrorTypeActualContribution = "actual_contribution"
)

type Metrics struct {
	Campaigns          *prometheus.GaugeVec
	TotalContribution  *prometheus.GaugeVec
	ActualContribution *prometheus.GaugeVec
	DanglingEntries    prometheus.Gauge
	Transitions        *prometheus.CounterVec
	Errors             *prometheus.CounterVec
}

// NewMetrics creates the collectors but does not auto-register them.
func NewMetrics() *Metrics {
	return &Metrics{
		Campaigns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameCampaigns,
				Help: "Number of campaigns in the global state by lifecycle state",
			},
			[]string{MetricLabelState},
		),
		TotalContribution: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameTotalContribution,
				Help: "Lamports recorded through contribute instructions",
			},
			[]string{MetricLabelCampaign, MetricLabelTitle},
		),
		ActualContribution: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameActualContribution,
				Help: "Campaign balance above its rent-exempt reserve",
			},
			[]string{MetricLabelCampaign, MetricLabelTitle},
		),
		DanglingEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricNameDanglingEntries,
				Help: "Global state entries whose campaign account no longer exists",
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameTransitions,
				Help: "Number of observed campaign lifecycle transitions",
			},
			[]string{MetricLabelFrom, MetricLabelTo},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameErrors,
				Help: "Number of errors encountered",
			},
			[]string{MetricLabelErrorType},
		),
	}
}

func (m *Metrics) Register(r prometheus.Registerer) {
	r.MustRegister(m.Campaigns, m.TotalContribution, m.ActualContribution, m.DanglingEntries, m.Transitions, m.Errors)
}
