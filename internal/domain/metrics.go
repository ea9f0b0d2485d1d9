package domain

import "time"

// TransactionStatus labels the outcome of a store transaction.
type TransactionStatus string

const (
	TransactionCommitted TransactionStatus = "committed"
	TransactionAborted   TransactionStatus = "aborted"
	TransactionFailed    TransactionStatus = "failed"
)

// ReadFaultReason describes why a store read degraded to an empty collection.
type ReadFaultReason string

const (
	ReadFaultIO     ReadFaultReason = "read"
	ReadFaultDecode ReadFaultReason = "decode"
	ReadFaultShape  ReadFaultReason = "shape"
)

// TransactionMetric captures a single write transaction.
type TransactionMetric struct {
	Backend  string
	Op       string
	Status   TransactionStatus
	Duration time.Duration
}

// Metrics records operational metrics for the catalog store and its HTTP surface.
type Metrics interface {
	ObserveTransaction(metric TransactionMetric)
	ObserveReadFault(backend string, reason ReadFaultReason)
	SetRecords(backend string, count int)
	ObserveHTTPRequest(route string, status int)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveTransaction(TransactionMetric)     {}
func (NoopMetrics) ObserveReadFault(string, ReadFaultReason) {}
func (NoopMetrics) SetRecords(string, int)                   {}
func (NoopMetrics) ObserveHTTPRequest(string, int)           {}

var _ Metrics = NoopMetrics{}
