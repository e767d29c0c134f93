package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Node outcome labels
const (
	StatusMatched       = "matched"
	StatusFallback      = "fallback"
	StatusUnmatched     = "unmatched"
	StatusOutOfEnvelope = "out_of_envelope"
)

// Recorder holds the interpolation metrics for one registry. A nil Recorder
// records nothing.
type Recorder struct {
	NodesTotal          *prometheus.CounterVec
	CandidatesPerQuery  prometheus.Histogram
	MatchDistance       prometheus.Histogram
	TreeBuildSeconds    prometheus.Histogram
	InterpolateSeconds  prometheus.Histogram
	TreeDepth           prometheus.Gauge
	TreeLeaves          prometheus.Gauge
	SourceTriangles     prometheus.Gauge
	InterpolationsTotal prometheus.Counter
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		NodesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbinterp_nodes_total",
				Help: "Target nodes processed by outcome",
			},
			[]string{"status"},
		),
		CandidatesPerQuery: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adbinterp_candidates_per_query",
				Help:    "Donor triangles returned by the tree search for one target node",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
			},
		),
		MatchDistance: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adbinterp_match_distance",
				Help:    "Distance between a target node and its interpolation point, in mesh units",
				Buckets: []float64{0, 1e-9, 1e-6, 1e-4, 1e-3, 1e-2, 0.1, 1, 10},
			},
		),
		TreeBuildSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adbinterp_tree_build_duration_seconds",
				Help:    "Duration of the spatial tree build",
				Buckets: prometheus.DefBuckets,
			},
		),
		InterpolateSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adbinterp_interpolate_duration_seconds",
				Help:    "Duration of a whole mesh interpolation",
				Buckets: prometheus.DefBuckets,
			},
		),
		TreeDepth: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "adbinterp_tree_depth",
				Help: "Depth of the most recent spatial tree",
			},
		),
		TreeLeaves: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "adbinterp_tree_leaves",
				Help: "Terminal leaves of the most recent spatial tree",
			},
		),
		SourceTriangles: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "adbinterp_source_triangles",
				Help: "Triangles in the most recent source mesh",
			},
		),
		InterpolationsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "adbinterp_interpolations_total",
				Help: "Completed mesh interpolations",
			},
		),
	}
}

func (r *Recorder) ObserveNode(status string, candidates int, distance float64) {
	if r == nil {
		return
	}
	r.NodesTotal.WithLabelValues(status).Inc()
	r.CandidatesPerQuery.Observe(float64(candidates))
	if status != StatusOutOfEnvelope {
		r.MatchDistance.Observe(distance)
	}
}

func (r *Recorder) ObserveTree(d time.Duration, depth, leaves, triangles int) {
	if r == nil {
		return
	}
	r.TreeBuildSeconds.Observe(d.Seconds())
	r.TreeDepth.Set(float64(depth))
	r.TreeLeaves.Set(float64(leaves))
	r.SourceTriangles.Set(float64(triangles))
}

func (r *Recorder) ObserveInterpolation(d time.Duration) {
	if r == nil {
		return
	}
	r.InterpolateSeconds.Observe(d.Seconds())
	r.InterpolationsTotal.Inc()
}
