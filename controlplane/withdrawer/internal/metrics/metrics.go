package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameBuildInfo       = "crowdfunding_withdrawer_build_info"
	MetricNameErrors          = "crowdfunding_withdrawer_errors_total"
	MetricNameWithdrawals     = "crowdfunding_withdrawer_withdrawals_total"
	MetricNameSweptLamports   = "crowdfunding_withdrawer_swept_lamports_total"
	MetricNameOwnerBalanceSOL = "crowdfunding_withdrawer_owner_balance_sol"

	// Labels.
	LabelVersion   = "version"
	LabelCommit    = "commit"
	LabelDate      = "date"
	LabelErrorType = "error_type"
	LabelResult    = "result"

	// Error types.
	ErrorTypeListCampaigns            = "list_campaigns"
	ErrorTypeGetOwnerBalance          = "get_owner_balance"
	ErrorTypeOwnerBalanceBelowMinimum = "owner_balance_below_minimum"
	ErrorTypeWithdraw                 = "withdraw"

	// Withdrawal results.
	ResultWithdrawn     = "withdrawn"
	ResultAlreadyClosed = "already_closed"
	ResultNotReady      = "not_ready"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameBuildInfo,
			Help: "Build information of the withdrawer",
		},
		[]string{LabelVersion, LabelCommit, LabelDate},
	)
)

type Metrics struct {
	Errors          *prometheus.CounterVec
	Withdrawals     *prometheus.CounterVec
	SweptLamports   prometheus.Counter
	OwnerBalanceSOL prometheus.Gauge
}

// New creates the collectors but does not auto-register them.
func New() *Metrics {
	return &Metrics{
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameErrors,
				Help: "Number of errors encountered",
			},
			[]string{LabelErrorType},
		),
		Withdrawals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameWithdrawals,
				Help: "Number of withdraw attempts on expired campaigns by result",
			},
			[]string{LabelResult},
		),
		SweptLamports: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricNameSweptLamports,
				Help: "Lamports moved from campaign accounts to the owner",
			},
		),
		OwnerBalanceSOL: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricNameOwnerBalanceSOL,
				Help: "The balance of the campaign owner in SOL",
			},
		),
	}
}

func (m *Metrics) Register(r prometheus.Registerer) {
	r.MustRegister(m.Errors, m.Withdrawals, m.SweptLamports, m.OwnerBalanceSOL)
}
