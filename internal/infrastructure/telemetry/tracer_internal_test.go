package telemetry

import (
	"context"
	"testing"

	"github.com/pharmaops/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestPharmacySpanProcessor(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(pharmacySpanProcessor{}),
		sdktrace.WithSpanProcessor(recorder),
	)
	tracer := provider.Tracer("test")

	ctx := logger.WithPharmacyID(context.Background(), "ph-42")
	_, span := tracer.Start(ctx, "sale.create")
	span.End()
	_, anonymous := tracer.Start(context.Background(), "health")
	anonymous.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	var tagged string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == AttrPharmacyID {
			tagged = kv.Value.AsString()
		}
	}
	assert.Equal(t, "ph-42", tagged)
	assert.Empty(t, spans[1].Attributes())
}

func TestNewResource_DefaultsVersion(t *testing.T) {
	res, err := newResource(ExporterConfig{ServiceName: "pharmaops"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "pharmaops", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])
}
