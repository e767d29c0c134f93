package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/geometry3D"
)

// Search returns the samples whose boxes come within tol of the query. The
// side of each split holding the query is visited first.
func (t *Tree) Search(tn *TestNode, tol float64) (candidates []*SurfaceNode) {
	if len(t.Leaves) == 0 {
		return
	}
	return t.searchTree(0, tn, tn.QueryBox(tol), nil)
}

func (t *Tree) searchTree(li int, tn *TestNode, qb geometry3D.BBox, out []*SurfaceNode) []*SurfaceNode {
	leaf := &t.Leaves[li]
	if !leaf.Box.Overlaps(qb) {
		return out
	}
	if leaf.IsTerminal() {
		for _, id := range t.Order[leaf.Start:leaf.End] {
			if sn := &t.Nodes[id]; sn.Box.Overlaps(qb) {
				out = append(out, sn)
			}
		}
		return out
	}
	near, far := leaf.Left, leaf.Right
	if leaf.Axis.Coord(tn.XYZ) > leaf.CutOff {
		near, far = far, near
	}
	out = t.searchTree(near, tn, qb, out)
	// Triangles straddle split planes, so the far side is pruned by its box
	// rather than by the distance to the cut
	return t.searchTree(far, tn, qb, out)
}

// Locate evaluates every tree candidate as a donor and returns how many
// candidates were examined
func (t *Tree) Locate(tn *TestNode, tol Tolerance) (nCandidates int) {
	candidates := t.Search(tn, tol.Search)
	for _, sn := range candidates {
		tn.Evaluate(sn, tol)
	}
	return len(candidates)
}

// SearchList is the exhaustive fallback. Every sample is stencil tested; if
// none contains the query, the Nearest sample is written into the query as a
// best effort value and false is returned.
func (t *Tree) SearchList(tn *TestNode, tol Tolerance) (found bool) {
	for i := range t.Nodes {
		tn.Evaluate(&t.Nodes[i], tol)
	}
	if tn.Found {
		return true
	}
	if best, _ := t.Nearest(tn, tol); best >= 0 {
		sn := &t.Nodes[best]
		Interpolate(sn, tn, stencilArea(sn, tn.XYZ))
	}
	return false
}

// Nearest returns the sample whose limiter clamped projection lies closest to
// the query and its distance, leaving the query untouched. Samples facing the
// query win over closer ones that do not. best is -1 for an empty tree.
func (t *Tree) Nearest(tn *TestNode, tol Tolerance) (best int, dist float64) {
	var bestAligned bool
	best, dist = -1, math.Inf(1)
	for i := range t.Nodes {
		sn := &t.Nodes[i]
		al := tn.aligned(sn, tol)
		if bestAligned && !al {
			continue
		}
		q, _ := nearestPoint(sn, tn.XYZ)
		if d := r3.Norm(r3.Sub(tn.XYZ, q)); d < dist || (al && !bestAligned) {
			best, dist, bestAligned = i, d, al
		}
	}
	return
}
