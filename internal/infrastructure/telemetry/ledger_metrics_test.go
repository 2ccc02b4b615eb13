package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestLedgerMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordMutation(ctx, "sale.create", 5*time.Millisecond, nil)
	m.RecordMutation(ctx, "sale.create", time.Millisecond, shared.NewDomainError(shared.CodeInsufficientStock, "short"))
	m.RecordMutation(ctx, "sale.update", time.Millisecond, errors.New("db down"))
	m.RecordLedgerSync(ctx, "CREATED")
	m.RecordCacheLookup(ctx, "inventory_summary", true)
	m.RecordCacheLookup(ctx, "inventory_summary", false)

	sums := collect(t, reader)
	assert.Equal(t, int64(3), sums["stock_mutations_total"])
	assert.Equal(t, int64(1), sums["stock_rejections_total"])
	assert.Equal(t, int64(1), sums["ledger_syncs_total"])
	assert.Equal(t, int64(2), sums["report_cache_lookups_total"])
}

func TestLedgerMetrics_NilSafe(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.RecordMutation(context.Background(), "purchase.create", time.Second, nil)
		m.RecordLedgerSync(context.Background(), "DELETED")
		m.RecordCacheLookup(context.Background(), "x", true)
	})
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := NewMeterProvider(ctx, ExporterConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, ExporterConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, 0))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	assert.NoError(t, p.Register(nil))
}

func TestLedgerViews(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithView(LedgerViews()...))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)
	m.RecordMutation(context.Background(), "sale.create", 3*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "stock_mutation_duration_seconds" {
				continue
			}
			hist, ok := metric.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)
			assert.Equal(t, mutationBuckets, hist.DataPoints[0].Bounds)
			found = true
		}
	}
	assert.True(t, found)
}
