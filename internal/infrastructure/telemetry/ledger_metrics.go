package telemetry

import (
	"context"
	"time"

	"github.com/pharmaops/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrOperation = attribute.Key("operation")
	AttrOutcome   = attribute.Key("outcome")
	AttrCode      = attribute.Key("code")
	AttrAction    = attribute.Key("action")
	AttrReport    = attribute.Key("report")
)

// LedgerMetrics counts stock mutations, rejected stock checks, ledger syncs
// and report cache hits. A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	mutations   metric.Int64Counter
	rejections  metric.Int64Counter
	ledgerSyncs metric.Int64Counter
	cacheLookup metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error
	if m.mutations, err = meter.Int64Counter("stock_mutations_total",
		metric.WithDescription("Committed and failed stock mutations"),
		metric.WithUnit("{mutation}")); err != nil {
		return nil, err
	}
	if m.rejections, err = meter.Int64Counter("stock_rejections_total",
		metric.WithDescription("Mutations rejected by a stock or batch check"),
		metric.WithUnit("{mutation}")); err != nil {
		return nil, err
	}
	if m.ledgerSyncs, err = meter.Int64Counter("ledger_syncs_total",
		metric.WithDescription("Ledger entries created, updated or deleted by mutations"),
		metric.WithUnit("{entry}")); err != nil {
		return nil, err
	}
	if m.cacheLookup, err = meter.Int64Counter("report_cache_lookups_total",
		metric.WithDescription("Report cache lookups by outcome"),
		metric.WithUnit("{lookup}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("stock_mutation_duration_seconds",
		metric.WithDescription("Duration of stock mutation units of work"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5)); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordMutation counts one mutation and its duration. Stock and batch
// rejections are additionally counted by error code.
func (m *LedgerMetrics) RecordMutation(ctx context.Context, operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "committed"
	if err != nil {
		outcome = "failed"
	}
	attrs := metric.WithAttributes(AttrOperation.String(operation), AttrOutcome.String(outcome))
	m.mutations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)

	switch {
	case shared.HasCode(err, shared.CodeInsufficientStock):
		m.rejections.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrCode.String(shared.CodeInsufficientStock)))
	case shared.HasCode(err, shared.CodeInsufficientBatchQuantity):
		m.rejections.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrCode.String(shared.CodeInsufficientBatchQuantity)))
	}
}

// RecordLedgerSync counts a ledger sync outcome
func (m *LedgerMetrics) RecordLedgerSync(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.ledgerSyncs.Add(ctx, 1, metric.WithAttributes(AttrAction.String(action)))
}

// RecordCacheLookup counts a report cache hit or miss
func (m *LedgerMetrics) RecordCacheLookup(ctx context.Context, report string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookup.Add(ctx, 1, metric.WithAttributes(AttrReport.String(report), AttrOutcome.String(outcome)))
}

// ErrMeterNil is returned when NewLedgerMetrics gets no meter
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failed instrument setup
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
