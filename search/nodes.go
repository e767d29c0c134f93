package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/geometry3D"
)

// MaxVariables is the capacity of the per corner field vector. The first
// three slots carry the aerodynamic solution, the rest are reserved and are
// interpolated along with it.
const MaxVariables = 8

const (
	VarCp = iota
	VarCpUnsteady
	VarGamma
)

// TriNode is one corner of a source triangle
type TriNode struct {
	Node     int
	XYZ      r3.Vec
	Variable [MaxVariables]float64
}

// SurfaceNode summarizes one source triangle for the tree. It is immutable
// once handed to BuildTree.
type SurfaceNode struct {
	Tri    int    // Index of the triangle in the source mesh
	XYZ    r3.Vec // Centroid
	Normal r3.Vec // Unit outward normal
	Area   float64
	Corner [3]TriNode
	Box    geometry3D.BBox
}

// NewSurfaceNode fills the centroid, normal, area and box from the corners
func NewSurfaceNode(tri int, corners [3]TriNode) (sn SurfaceNode) {
	a, b, c := corners[0].XYZ, corners[1].XYZ, corners[2].XYZ
	sn = SurfaceNode{
		Tri:    tri,
		XYZ:    geometry3D.TriCentroid(a, b, c),
		Corner: corners,
		Box:    geometry3D.BoxOfPoints(a, b, c),
	}
	sn.Normal, sn.Area = geometry3D.TriNormal(a, b, c)
	return
}

// TestNode is a target point looking for a donor triangle. The result fields
// are written only by the goroutine that owns the query.
type TestNode struct {
	Node   int // Index of the target node
	Box    geometry3D.BBox
	XYZ    r3.Vec
	Normal r3.Vec
	Area   float64

	XYZBest        r3.Vec
	Distance       float64
	NormalDistance float64
	Variable       [MaxVariables]float64
	InterpWeight   [3]float64
	InterpNode     [3]int
	DonorArea      float64
	DonorTri       int
	Found          bool

	IgnoreNormals bool
	SearchRadius  float64
}

func NewTestNode(node int, xyz, normal r3.Vec) (tn *TestNode) {
	tn = &TestNode{
		Node:   node,
		XYZ:    xyz,
		Normal: normal,
		Box:    geometry3D.BoxOfPoints(xyz),
	}
	tn.Reset()
	return
}

// Reset returns every result field to the unmatched sentinel state
func (tn *TestNode) Reset() {
	tn.XYZBest = r3.Vec{}
	tn.Distance = math.Inf(1)
	tn.NormalDistance = math.Inf(1)
	tn.Variable = [MaxVariables]float64{}
	tn.InterpWeight = [3]float64{}
	tn.InterpNode = [3]int{-1, -1, -1}
	tn.DonorArea = 0
	tn.DonorTri = -1
	tn.Found = false
}

// QueryBox is the query point's bounding volume grown by the search envelope
func (tn *TestNode) QueryBox(tol float64) geometry3D.BBox {
	return tn.Box.Expand(math.Max(tol, tn.SearchRadius))
}
