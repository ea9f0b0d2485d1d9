package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolcatalog/internal/domain"
)

type PrometheusMetrics struct {
	transactions        *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	readFaults          *prometheus.CounterVec
	records             *prometheus.GaugeVec
	httpRequests        *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolcatalog_store_transactions_total",
				Help: "Total number of catalog store write transactions",
			},
			[]string{"backend", "op", "status"},
		),
		transactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolcatalog_store_transaction_duration_seconds",
				Help:    "Duration of catalog store write transactions in seconds, lock wait included",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"backend", "op"},
		),
		readFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolcatalog_store_read_faults_total",
				Help: "Total number of store reads that degraded to an empty catalog",
			},
			[]string{"backend", "reason"},
		),
		records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toolcatalog_store_records",
				Help: "Number of records seen by the latest store read or committed transaction",
			},
			[]string{"backend"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolcatalog_http_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"route", "status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveTransaction(metric domain.TransactionMetric) {
	p.transactions.WithLabelValues(metric.Backend, metric.Op, string(metric.Status)).Inc()
	p.transactionDuration.WithLabelValues(metric.Backend, metric.Op).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveReadFault(backend string, reason domain.ReadFaultReason) {
	p.readFaults.WithLabelValues(backend, string(reason)).Inc()
}

func (p *PrometheusMetrics) SetRecords(backend string, count int) {
	p.records.WithLabelValues(backend).Set(float64(count))
}

func (p *PrometheusMetrics) ObserveHTTPRequest(route string, status int) {
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
