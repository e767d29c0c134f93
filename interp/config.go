package interp

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/adbinterp/metrics"
	"github.com/notargets/adbinterp/search"
)

// Config is the immutable policy for one interpolation run. Zero valued
// tolerances are derived from the source mesh.
type Config struct {
	Symmetry            bool // Mirror the source half model through y=0
	CmToMeters          bool // Source coordinates are in centimeters
	SwapNormals         bool // Reverse the source triangle winding
	AnchorFile          bool // Target keeps its own reference quantities
	IgnoreBoundingBox   bool
	StrictInterpolation bool
	IgnoreNormals       bool

	SearchTolerance float64
	NormalTolerance float64
	AreaSlack       float64
	NormalAlignment float64

	MaxLeafSize    int
	ParallelDegree int // Zero uses every CPU
}

// Tolerance returns the search tolerances for a source mesh with the given
// triangle areas. The characteristic length is the root of the mean area.
func (cfg Config) Tolerance(areas []float64) (tol search.Tolerance) {
	var h float64
	if len(areas) != 0 {
		h = math.Sqrt(stat.Mean(areas, nil))
	}
	tol = search.Tolerance{
		Search:          0.5 * h,
		Normal:          0.25 * h,
		AreaSlack:       search.DefaultAreaSlack,
		NormalAlignment: cfg.NormalAlignment,
	}
	if cfg.SearchTolerance > 0 {
		tol.Search = cfg.SearchTolerance
	}
	if cfg.NormalTolerance > 0 {
		tol.Normal = cfg.NormalTolerance
	}
	if cfg.AreaSlack > 0 {
		tol.AreaSlack = cfg.AreaSlack
	}
	return
}

type Interpolator struct {
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Recorder
}

type Option func(*Interpolator)

func WithLogger(logger zerolog.Logger) Option {
	return func(ip *Interpolator) { ip.log = logger }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(ip *Interpolator) { ip.metrics = rec }
}

func New(cfg Config, opts ...Option) (ip *Interpolator) {
	ip = &Interpolator{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ip)
	}
	return
}

func (ip *Interpolator) Config() Config { return ip.cfg }
