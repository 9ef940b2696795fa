package balance

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameBalanceLamports = "crowdfunding_monitor_balance_lamports"
	MetricNameBalanceSOL      = "crowdfunding_monitor_balance_sol"
	MetricNameBelowThreshold  = "crowdfunding_monitor_balance_below_threshold"
	MetricNameErrors          = "crowdfunding_monitor_balance_errors_total"

	MetricLabelAccount = "account"
	MetricLabelPubkey  = "pubkey"
)

type Metrics struct {
	BalanceLamports *prometheus.GaugeVec
	BalanceSOL      *prometheus.GaugeVec
	BelowThreshold  *prometheus.GaugeVec
	Errors          *prometheus.CounterVec
}

// NewMetrics creates the collectors but does not register them.
func NewMetrics() *Metrics {
	labels := []string{MetricLabelAccount, MetricLabelPubkey}
	return &Metrics{
		BalanceLamports: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricNameBalanceLamports,
			Help: "Balance of a tracked wallet in lamports",
		}, labels),
		BalanceSOL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricNameBalanceSOL,
			Help: "Balance of a tracked wallet in SOL",
		}, labels),
		BelowThreshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricNameBelowThreshold,
			Help: "1 when a tracked wallet is below the configured threshold, 0 otherwise",
		}, labels),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNameErrors,
			Help: "Number of failed balance lookups",
		}, labels),
	}
}

func (m *Metrics) Register(r prometheus.Registerer) {
	r.MustRegister(m.BalanceLamports, m.BalanceSOL, m.BelowThreshold, m.Errors)
}
