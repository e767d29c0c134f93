package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveNode(StatusMatched, 4, 0)
	r.ObserveNode(StatusMatched, 2, 1e-8)
	r.ObserveNode(StatusFallback, 0, 0.3)
	r.ObserveNode(StatusOutOfEnvelope, 0, 0)
	r.ObserveTree(20*time.Millisecond, 7, 40, 300)
	r.ObserveInterpolation(time.Second)

	assert.Equal(t, 2., testutil.ToFloat64(r.NodesTotal.WithLabelValues(StatusMatched)))
	assert.Equal(t, 1., testutil.ToFloat64(r.NodesTotal.WithLabelValues(StatusFallback)))
	assert.Equal(t, 1., testutil.ToFloat64(r.NodesTotal.WithLabelValues(StatusOutOfEnvelope)))
	assert.Equal(t, 0., testutil.ToFloat64(r.NodesTotal.WithLabelValues(StatusUnmatched)))
	assert.Equal(t, 7., testutil.ToFloat64(r.TreeDepth))
	assert.Equal(t, 40., testutil.ToFloat64(r.TreeLeaves))
	assert.Equal(t, 300., testutil.ToFloat64(r.SourceTriangles))
	assert.Equal(t, 1., testutil.ToFloat64(r.InterpolationsTotal))

	n, err := testutil.GatherAndCount(reg, "adbinterp_candidates_per_query", "adbinterp_match_distance")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second recorder on the same registry collides
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveNode(StatusMatched, 1, 0)
		r.ObserveTree(time.Second, 1, 1, 1)
		r.ObserveInterpolation(time.Second)
	})
}
