// Package metrics exposes Prometheus instrumentation for the certificate
// lifecycle operations.
package metrics

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "operation" label.
const (
	OpUpload   = "upload"
	OpMint     = "mint"
	OpIssue    = "issue"
	OpActivity = "activity"
	OpApprove  = "approve"
	OpFetch    = "fetch"
)

// Metrics counts lifecycle operations by outcome and times them. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	records    prometheus.Counter
	fallbacks  prometheus.Counter
}

// New registers the collectors with registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "akashi_operations_total",
			Help: "Lifecycle operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "akashi_operation_duration_seconds",
			Help:    "Duration of lifecycle operations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		records: factory.NewCounter(prometheus.CounterOpts{
			Name: "akashi_activity_records_total",
			Help: "Certificate records returned by activity listings",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "akashi_enrichment_fallbacks_total",
			Help: "Activity records built from transaction arguments because the object could not be read",
		}),
	}
}

// Observe records one finished operation.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Records counts listed records and how many of them fell back to raw
// transaction arguments.
func (m *Metrics) Records(total, fallbacks int) {
	if m == nil {
		return
	}
	m.records.Add(float64(total))
	m.fallbacks.Add(float64(fallbacks))
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrTimeout):
		return "timeout"
	case errors.Is(err, common.ErrNotConnected):
		return "not_connected"
	case errors.Is(err, common.ErrSignatureRejected):
		return "rejected"
	case errors.Is(err, common.ErrUploadFailed):
		return "upload_failed"
	case errors.Is(err, common.ErrTransactionFailed):
		return "tx_failed"
	case errors.Is(err, common.ErrQueryFailed):
		return "query_failed"
	case errors.Is(err, common.ErrInvalidDraft):
		return "invalid"
	case errors.Is(err, common.ErrActionInProgress):
		return "busy"
	}
	return "error"
}
