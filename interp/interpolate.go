package interp

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/adbinterp/metrics"
	"github.com/notargets/adbinterp/search"
	"github.com/notargets/adbinterp/utils"
)

type MatchStatus uint8

const (
	Matched MatchStatus = iota
	FallbackMatched
	Unmatched
	OutOfEnvelope
)

func (ms MatchStatus) String() string {
	switch ms {
	case Matched:
		return metrics.StatusMatched
	case FallbackMatched:
		return metrics.StatusFallback
	case Unmatched:
		return metrics.StatusUnmatched
	default:
		return metrics.StatusOutOfEnvelope
	}
}

// Match is the correspondence found for one target node
type Match struct {
	Node           int
	Status         MatchStatus
	DonorTri       int // -1 when excluded
	DonorNodes     [3]int
	Weights        [3]float64
	XYZBest        r3.Vec
	Distance       float64
	NormalDistance float64
	Candidates     int
}

type Summary struct {
	TotalNodes      int
	Matched         int
	FallbackMatched int
	Unmatched       int
	OutOfEnvelope   int
	MaxDistance     float64
	AvgDistance     float64
	WorstNode       int
	TreeDepth       int
	TreeLeaves      int
}

// Rejected counts every node that received no containing donor
func (s Summary) Rejected() int { return s.Unmatched + s.OutOfEnvelope }

func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("total", s.TotalNodes).
		Int("matched", s.Matched).
		Int("fallback", s.FallbackMatched).
		Int("unmatched", s.Unmatched).
		Int("out_of_envelope", s.OutOfEnvelope).
		Float64("max_distance", s.MaxDistance).
		Float64("avg_distance", s.AvgDistance).
		Int("worst_node", s.WorstNode).
		Int("tree_depth", s.TreeDepth).
		Int("tree_leaves", s.TreeLeaves)
}

type Result struct {
	Mesh      *Mesh // Target mesh with interpolated fields
	Matches   []Match
	Summary   Summary
	Tolerance search.Tolerance
}

// Interpolate transfers the source solution onto the target mesh. Neither
// input is modified. In strict mode an unmatched target node stops the run
// with an *UnmatchedError naming the lowest such node.
func (ip *Interpolator) Interpolate(ctx context.Context, src, tgt *Mesh) (res *Result, err error) {
	start := time.Now()
	if err = src.Validate(); err != nil {
		return
	}
	if err = tgt.Validate(); err != nil {
		return
	}
	if len(src.Tris) == 0 {
		err = ErrEmptyMesh
		return
	}
	var s *Mesh
	if s, err = ip.prepareSource(src); err != nil {
		return
	}
	out := tgt.Clone()
	out.ComputeGeometry()
	if err = out.ComputeNodeNormals(); err != nil {
		return
	}

	tb := time.Now()
	tree := search.BuildTree(s.SurfaceNodes(), search.TreeOptions{MaxLeafSize: ip.cfg.MaxLeafSize})
	st := tree.Stats()
	ip.metrics.ObserveTree(time.Since(tb), st.Depth, st.Leaves, st.Samples)
	tol := ip.cfg.Tolerance(s.areas())
	ip.log.Debug().
		Int("triangles", st.Samples).
		Int("depth", st.Depth).
		Int("leaves", st.Leaves).
		Float64("mean_fill", st.MeanFill).
		Float64("search_tol", tol.Search).
		Float64("normal_tol", tol.Normal).
		Dur("elapsed", time.Since(tb)).
		Str("memory", utils.GetMemUsage()).
		Msg("built source tree")

	res = &Result{
		Mesh:      out,
		Matches:   make([]Match, len(out.Nodes)),
		Tolerance: tol,
	}
	if err = ip.matchNodes(ctx, tree, s, res); err != nil {
		res = nil
		return
	}
	if len(out.Tris) != 0 {
		if err = out.ComputeCentroidValues(); err != nil {
			res = nil
			return
		}
	}
	out.ValueLocation = NodeValues
	if !ip.cfg.AnchorFile {
		out.copyMetadata(s)
	}
	if out.NumVariables == 0 {
		out.NumVariables = s.NumVariables
	}
	res.Summary = summarize(res.Matches, st)
	ip.metrics.ObserveInterpolation(time.Since(start))
	ip.log.Info().
		EmbedObject(res.Summary).
		Dur("elapsed", time.Since(start)).
		Msg("interpolation complete")
	return
}

// prepareSource applies the source side policies to a copy of src
func (ip *Interpolator) prepareSource(src *Mesh) (s *Mesh, err error) {
	s = src.Clone()
	s.ComputeGeometry()
	if ip.cfg.SwapNormals {
		s.SwapNormals()
	}
	if err = s.ResolveValues(); err != nil {
		return
	}
	if ip.cfg.Symmetry {
		s.FoldSymmetry()
	} else if n := s.OpenPlaneEdges(); n > 0 {
		ip.log.Warn().Int("edges", n).Msg("source has open edges on the y=0 plane, it may be a half model")
	}
	if ip.cfg.CmToMeters {
		s.ScaleLength(0.01)
	}
	return
}

func (ip *Interpolator) matchNodes(ctx context.Context, tree *search.Tree, s *Mesh, res *Result) error {
	var (
		out      = res.Mesh
		N        = len(out.Nodes)
		pm       = utils.NewPartitionMap(utils.ParallelDegree(ip.cfg.ParallelDegree, N), N)
		envelope = s.Box.Expand(res.Tolerance.Search)
		// Buckets hold ascending node ranges and each stops at its first
		// strict failure, so the earliest failing bucket names the lowest
		// failing node
		failed   = make([]error, pm.ParallelDegree)
		firstBad atomic.Int64
	)
	firstBad.Store(int64(pm.ParallelDegree))
	g, gctx := errgroup.WithContext(ctx)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		kMin, kMax := pm.GetBucketRange(bn)
		g.Go(func() error {
			for k := kMin; k < kMax; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if firstBad.Load() < int64(bn) {
					return nil
				}
				nd := &out.Nodes[k]
				tn := search.NewTestNode(k, nd.XYZ, nd.Normal)
				tn.IgnoreNormals = ip.cfg.IgnoreNormals
				m, err := ip.matchNode(tree, tn, envelope.Contains(nd.XYZ), res.Tolerance)
				if err != nil {
					failed[bn] = err
					for cur := firstBad.Load(); cur > int64(bn); cur = firstBad.Load() {
						if firstBad.CompareAndSwap(cur, int64(bn)) {
							break
						}
					}
					return nil
				}
				res.Matches[k] = m
				nd.Variable = [search.MaxVariables]float64{}
				if m.Status != OutOfEnvelope {
					nd.Variable = limitValues(tn, s)
				}
				ip.metrics.ObserveNode(m.Status.String(), m.Candidates, m.Distance)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range failed {
		if err != nil {
			return err
		}
	}
	return nil
}

// matchNode applies the per node policy: envelope rejection, tree search,
// then either a strict failure or the exhaustive fallback
func (ip *Interpolator) matchNode(tree *search.Tree, tn *search.TestNode, inEnvelope bool, tol search.Tolerance) (m Match, err error) {
	m = Match{Node: tn.Node, DonorTri: -1, DonorNodes: [3]int{-1, -1, -1}, Distance: math.Inf(1)}
	if !inEnvelope && !ip.cfg.IgnoreBoundingBox {
		m.Status = OutOfEnvelope
		if ip.cfg.StrictInterpolation {
			err = &UnmatchedError{Node: tn.Node, XYZ: tn.XYZ, Distance: math.Inf(1), Reason: ErrOutOfEnvelope}
		}
		return
	}
	m.Candidates = tree.Locate(tn, tol)
	switch {
	case tn.Found:
		m.Status = Matched
	case ip.cfg.StrictInterpolation:
		_, d := tree.Nearest(tn, tol)
		err = &UnmatchedError{Node: tn.Node, XYZ: tn.XYZ, Distance: d}
		return
	default:
		// The exhaustive pass widens the normal bound to the search
		// tolerance and keeps the alignment check
		fb := tol
		fb.Normal = math.Max(tol.Normal, tol.Search)
		if tree.SearchList(tn, fb) {
			m.Status = FallbackMatched
		} else {
			m.Status = Unmatched
		}
	}
	m.DonorTri = tn.DonorTri
	m.DonorNodes = tn.InterpNode
	m.Weights = tn.InterpWeight
	m.XYZBest = tn.XYZBest
	m.Distance = tn.Distance
	m.NormalDistance = tn.NormalDistance
	return
}

// limitValues bounds each interpolated field by its donor corner values
func limitValues(tn *search.TestNode, s *Mesh) (vars [search.MaxVariables]float64) {
	vars = tn.Variable
	if tn.InterpNode[0] < 0 {
		return
	}
	var (
		n1 = &s.Nodes[tn.InterpNode[0]]
		n2 = &s.Nodes[tn.InterpNode[1]]
		n3 = &s.Nodes[tn.InterpNode[2]]
	)
	for v := range vars {
		vars[v] = search.Limiter2D(vars[v], n1.Variable[v], n2.Variable[v], n3.Variable[v])
	}
	return
}

func summarize(matches []Match, st search.TreeStats) (s Summary) {
	var (
		dist  []float64
		nodes []int
	)
	s = Summary{
		TotalNodes: len(matches),
		WorstNode:  -1,
		TreeDepth:  st.Depth,
		TreeLeaves: st.Leaves,
	}
	for i := range matches {
		switch matches[i].Status {
		case Matched:
			s.Matched++
		case FallbackMatched:
			s.FallbackMatched++
		case Unmatched:
			s.Unmatched++
		case OutOfEnvelope:
			s.OutOfEnvelope++
			continue
		}
		dist = append(dist, matches[i].Distance)
		nodes = append(nodes, matches[i].Node)
	}
	if len(dist) != 0 {
		idx := floats.MaxIdx(dist)
		s.MaxDistance, s.WorstNode = dist[idx], nodes[idx]
		s.AvgDistance = stat.Mean(dist, nil)
	}
	return
}
