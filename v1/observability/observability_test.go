package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	seen []OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx OperationContext) {
	r.seen = append(r.seen, ctx)
}

func TestMultiObserverFansOut(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	multi := MultiObserver{a, nil, b}

	multi.ObserveOperation(OperationContext{Component: "arcadedb", Operation: "query"})

	require.Len(t, a.seen, 1)
	require.Len(t, b.seen, 1)
	assert.Equal(t, "query", a.seen[0].Operation)
}

func TestPrometheusObserverCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewPrometheusObserver(reg, "testns")
	require.NoError(t, err)

	obs.ObserveOperation(OperationContext{
		Component: "arcadedb",
		Operation: "query",
		Duration:  5 * time.Millisecond,
		Size:      128,
	})
	obs.ObserveOperation(OperationContext{
		Component: "arcadedb",
		Operation: "query",
		Duration:  2 * time.Millisecond,
		Error:     errors.New("boom"),
	})

	ok := testutil.ToFloat64(obs.operations.WithLabelValues("arcadedb", "query", "ok"))
	failed := testutil.ToFloat64(obs.operations.WithLabelValues("arcadedb", "query", "error"))
	assert.Equal(t, 1.0, ok)
	assert.Equal(t, 1.0, failed)
}

func TestPrometheusObserverDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusObserver(reg, "testns")
	require.NoError(t, err)

	_, err = NewPrometheusObserver(reg, "testns")
	assert.Error(t, err)
}
