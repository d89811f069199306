package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the analyzer.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal        *prometheus.CounterVec
	solanaRPCCallDuration      *prometheus.HistogramVec
	solanaRPCSignaturesPerPage *prometheus.HistogramVec

	// Transaction Processing Metrics
	transactionsFetchedTotal *prometheus.CounterVec
	transactionsSkippedTotal *prometheus.CounterVec

	// Analysis Metrics
	analysisDuration *prometheus.HistogramVec
	reportsWritten   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		solanaRPCSignaturesPerPage: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_signatures_per_page",
				Help:    "Number of signatures returned per GetSignaturesForAddress page",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
			},
			[]string{"endpoint"},
		),

		// Transaction Processing Metrics
		transactionsFetchedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_fetched_total",
				Help: "Total number of transactions fetched from Solana",
			},
			[]string{"wallet_address"},
		),
		transactionsSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_skipped_total",
				Help: "Total number of transactions skipped",
			},
			[]string{"wallet_address", "reason"},
		),

		// Analysis Metrics
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_duration_seconds",
				Help:    "Duration of a full analysis run in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"wallet_address", "status"},
		),
		reportsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_written_total",
				Help: "Total number of report files written",
			},
			[]string{"kind", "status"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordSignaturesPerPage records the size of one signature listing page.
func (m *Metrics) RecordSignaturesPerPage(endpoint string, count float64) {
	m.solanaRPCSignaturesPerPage.WithLabelValues(endpoint).Observe(count)
}

// Transaction processing metric helpers

// RecordTransactionsFetched records transactions fetched from Solana.
func (m *Metrics) RecordTransactionsFetched(walletAddress string, count int) {
	m.transactionsFetchedTotal.WithLabelValues(walletAddress).Add(float64(count))
}

// RecordTransactionsSkipped records transactions skipped.
func (m *Metrics) RecordTransactionsSkipped(walletAddress, reason string, count int) {
	m.transactionsSkippedTotal.WithLabelValues(walletAddress, reason).Add(float64(count))
}

// Analysis metric helpers

// RecordAnalysisDuration records a full analysis run.
func (m *Metrics) RecordAnalysisDuration(walletAddress, status string, duration float64) {
	m.analysisDuration.WithLabelValues(walletAddress, status).Observe(duration)
}

// RecordReportWritten records one report file write attempt.
func (m *Metrics) RecordReportWritten(kind, status string) {
	m.reportsWritten.WithLabelValues(kind, status).Inc()
}
