package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/geometry3D"
	"github.com/notargets/adbinterp/utils"
)

const DefaultAreaSlack = 1.e-5

// Tolerance controls the containment test. Search and Normal are lengths,
// AreaSlack is relative to the donor triangle area.
type Tolerance struct {
	Search          float64 // Envelope added around the query point for the tree search
	Normal          float64 // Largest accepted point to plane distance
	AreaSlack       float64
	NormalAlignment float64 // Smallest accepted cosine between query and donor normals
}

// StencilArea holds the signed sub-triangle areas, Sub[i] being the one
// opposite corner i, measured in the donor plane
type StencilArea struct {
	Sub            [3]float64
	Total          float64
	Scale          float64 // Longest donor edge squared
	NormalDistance float64
	Projected      r3.Vec
}

// Degenerate reports a donor whose area is negligible against its longest
// edge, so the test holds at any mesh scale
func (area StencilArea) Degenerate() bool {
	return area.Total <= utils.NODETOL*area.Scale
}

func stencilArea(sn *SurfaceNode, p r3.Vec) (area StencilArea) {
	var (
		n       = sn.Normal
		a, b, c = sn.Corner[0].XYZ, sn.Corner[1].XYZ, sn.Corner[2].XYZ
	)
	area.NormalDistance = r3.Dot(r3.Sub(p, sn.XYZ), n)
	pp := r3.Sub(p, r3.Scale(area.NormalDistance, n))
	area.Projected = pp
	area.Sub[0] = geometry3D.SignedArea(pp, b, c, n)
	area.Sub[1] = geometry3D.SignedArea(a, pp, c, n)
	area.Sub[2] = geometry3D.SignedArea(a, b, pp, n)
	area.Total = geometry3D.SignedArea(a, b, c, n)
	for _, e := range [3]r3.Vec{r3.Sub(b, a), r3.Sub(c, b), r3.Sub(a, c)} {
		area.Scale = math.Max(area.Scale, r3.Norm2(e))
	}
	return
}

// aligned reports whether the donor faces the query. Queries ignoring
// normals or carrying none align with every donor.
func (tn *TestNode) aligned(sn *SurfaceNode, tol Tolerance) bool {
	if tn.IgnoreNormals || tn.Normal == (r3.Vec{}) {
		return true
	}
	return r3.Dot(tn.Normal, sn.Normal) >= tol.NormalAlignment
}

// TestStencil projects the query onto the donor plane and reports whether the
// projection falls inside the triangle. Degenerate triangles never contain.
func TestStencil(sn *SurfaceNode, tn *TestNode, tol Tolerance) (inside bool, area StencilArea) {
	area = stencilArea(sn, tn.XYZ)
	if !tn.IgnoreNormals && math.Abs(area.NormalDistance) > tol.Normal {
		return
	}
	if !tn.aligned(sn, tol) || area.Degenerate() {
		return
	}
	var (
		T      = area.Total
		slack  = tol.AreaSlack * T
		absSum float64
	)
	for _, a := range area.Sub {
		if a < -slack {
			return
		}
		absSum += math.Abs(a)
	}
	inside = math.Abs(absSum-T) <= 6*slack
	return
}

// Interpolate writes the area weighted donor values into the query and
// returns the weights and donor node indices
func Interpolate(sn *SurfaceNode, tn *TestNode, area StencilArea) (w [3]float64, donors [3]int) {
	var (
		best r3.Vec
		vars [MaxVariables]float64
	)
	w = AreaWeights(area)
	for i := 0; i < 3; i++ {
		cn := &sn.Corner[i]
		donors[i] = cn.Node
		best = r3.Add(best, r3.Scale(w[i], cn.XYZ))
		for k := range vars {
			vars[k] += w[i] * cn.Variable[k]
		}
	}
	tn.XYZBest = best
	tn.Distance = r3.Norm(r3.Sub(tn.XYZ, best))
	tn.NormalDistance = area.NormalDistance
	tn.Variable = vars
	tn.InterpWeight = w
	tn.InterpNode = donors
	tn.DonorArea = sn.Area
	tn.DonorTri = sn.Tri
	return
}

// AreaWeights divides each sub-area by the total and passes the result
// through the limiter. A degenerate triangle gets equal weights.
func AreaWeights(area StencilArea) (w [3]float64) {
	if area.Degenerate() {
		return [3]float64{1. / 3., 1. / 3., 1. / 3.}
	}
	for i := range w {
		w[i] = area.Sub[i] / area.Total
	}
	return LimitWeights(w)
}

// LimitWeights clamps weights into [0,1] and renormalizes them to sum to one.
// Weights already inside the unit interval are returned unchanged.
func LimitWeights(w [3]float64) [3]float64 {
	var (
		out bool
		sum float64
	)
	for _, wi := range w {
		if wi < 0 || wi > 1 || math.IsNaN(wi) {
			out = true
		}
	}
	if !out {
		return w
	}
	for i, wi := range w {
		switch {
		case math.IsNaN(wi) || wi < 0:
			w[i] = 0
		case wi > 1:
			w[i] = 1
		}
		sum += w[i]
	}
	if sum == 0 {
		return [3]float64{1. / 3., 1. / 3., 1. / 3.}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// Limiter2D bounds an interpolated value by the values it came from
func Limiter2D(value, val1, val2, val3 float64) float64 {
	lo := math.Min(val1, math.Min(val2, val3))
	hi := math.Max(val1, math.Max(val2, val3))
	return math.Max(lo, math.Min(hi, value))
}

// Evaluate tests sn as a donor and keeps it when it contains the query and
// beats the current donor: smaller normal distance, then smaller area, then
// lower triangle index.
func (tn *TestNode) Evaluate(sn *SurfaceNode, tol Tolerance) bool {
	inside, area := TestStencil(sn, tn, tol)
	if !inside {
		return false
	}
	if tn.Found && !tn.isBetterDonor(sn, area.NormalDistance) {
		return false
	}
	Interpolate(sn, tn, area)
	tn.Found = true
	return true
}

func (tn *TestNode) isBetterDonor(sn *SurfaceNode, normalDistance float64) bool {
	d0, d1 := math.Abs(tn.NormalDistance), math.Abs(normalDistance)
	if math.Abs(d1-d0) > utils.NODETOL {
		return d1 < d0
	}
	if sn.Area != tn.DonorArea {
		return sn.Area < tn.DonorArea
	}
	return sn.Tri < tn.DonorTri
}

// nearestPoint is the limiter clamped projection of p onto the donor
func nearestPoint(sn *SurfaceNode, p r3.Vec) (q r3.Vec, area StencilArea) {
	area = stencilArea(sn, p)
	w := AreaWeights(area)
	for i := 0; i < 3; i++ {
		q = r3.Add(q, r3.Scale(w[i], sn.Corner[i].XYZ))
	}
	return
}
