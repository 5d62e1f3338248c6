package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	petmemory "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/memory"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/application"
	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
)

func newInstrumented(t *testing.T) (ports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	svc := New(application.NewService(petmemory.NewStore()),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	return svc, recorder, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestCreatePet_RecordsSpanAndCounters(t *testing.T) {
	svc, recorder, reader := newInstrumented(t)

	result, err := svc.CreatePet(context.Background(), pettypes.CreatePetInput{
		Name:   "Rex",
		Age:    1,
		Weight: 2,
		Group:  pettypes.GroupInput{ScientificName: "Canis lupus"},
		Traits: []pettypes.TraitInput{{Name: "Fluffy"}, {Name: "loud"}},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pet)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "Service.CreatePet", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)

	require.Equal(t, int64(1), counterValue(t, reader, "pets.service.created"))
	require.Equal(t, int64(1), counterValue(t, reader, "pets.service.groups_created"))
	require.Equal(t, int64(2), counterValue(t, reader, "pets.service.traits_created"))
}

func TestGetPet_MarksSpanOnError(t *testing.T) {
	svc, recorder, _ := newInstrumented(t)

	_, err := svc.GetPet(context.Background(), pettypes.PetIdentifier{ID: 42})
	require.ErrorIs(t, err, ports.ErrNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "Service.GetPet", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
}

func TestDeletePet_CountsDeletions(t *testing.T) {
	svc, _, reader := newInstrumented(t)
	ctx := context.Background()

	result, err := svc.CreatePet(ctx, pettypes.CreatePetInput{
		Name:  "Rex",
		Group: pettypes.GroupInput{ScientificName: "Canis lupus"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePet(ctx, pettypes.PetIdentifier{ID: result.Pet.ID}))
	require.Error(t, svc.DeletePet(ctx, pettypes.PetIdentifier{ID: result.Pet.ID}))

	require.Equal(t, int64(1), counterValue(t, reader, "pets.service.deleted"))
}
