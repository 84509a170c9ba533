package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Transfers        *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	TransferDuration prometheus.Histogram
	TransferAmount   prometheus.Histogram
	Retries          prometheus.Counter
}

// New creates the transfer metrics and registers them on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotransfer_transfers_total",
				Help: "Total number of transfer attempts by result",
			},
			[]string{"result"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotransfer_transfer_rejections_total",
				Help: "Total number of rejected transfers by reason",
			},
			[]string{"kind"},
		),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gotransfer_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gotransfer_transfer_amount",
			Help:    "Amounts of successful transfers in minor units",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "gotransfer_transfer_retries_total",
			Help: "Total number of transaction retries after storage conflicts",
		}),
	}
}

// ObserveTransfer records one finished transfer attempt.
func (m *Metrics) ObserveTransfer(result string, kind domain.ErrorKind, amount int64, duration time.Duration) {
	m.Transfers.WithLabelValues(result).Inc()
	m.TransferDuration.Observe(duration.Seconds())

	if kind != "" {
		m.Rejections.WithLabelValues(string(kind)).Inc()
		return
	}

	if result == usecase.ResultSuccess {
		m.TransferAmount.Observe(float64(amount))
	}
}

// IncRetries counts a re-run of the transfer transaction.
func (m *Metrics) IncRetries() {
	m.Retries.Inc()
}
