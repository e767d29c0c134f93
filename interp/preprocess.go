package interp

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/geometry3D"
	"github.com/notargets/adbinterp/search"
	"github.com/notargets/adbinterp/types"
	"github.com/notargets/adbinterp/utils"
)

// ComputeGeometry fills the bounding box and the triangle centroids, unit
// normals and areas
func (m *Mesh) ComputeGeometry() {
	m.Box = geometry3D.EmptyBBox()
	for i := range m.Nodes {
		m.Box = m.Box.Add(m.Nodes[i].XYZ)
	}
	for k := range m.Tris {
		tri := &m.Tris[k]
		a, b, c := m.corners(tri)
		tri.Centroid = geometry3D.TriCentroid(a, b, c)
		tri.Normal, tri.Area = geometry3D.TriNormal(a, b, c)
	}
}

func (m *Mesh) corners(tri *Tri) (a, b, c r3.Vec) {
	return m.Nodes[tri.Node[0]].XYZ, m.Nodes[tri.Node[1]].XYZ, m.Nodes[tri.Node[2]].XYZ
}

func (m *Mesh) areas() (area []float64) {
	area = make([]float64, len(m.Tris))
	for k := range m.Tris {
		area[k] = m.Tris[k].Area
	}
	return
}

func (m *Mesh) cornerList() (tris [][3]int) {
	tris = make([][3]int, len(m.Tris))
	for k := range m.Tris {
		tris[k] = m.Tris[k].Node
	}
	return
}

func (m *Mesh) incidence() (*utils.Incidence, error) {
	return utils.NewIncidence(len(m.Nodes), m.cornerList(), m.areas())
}

// Valence is the number of triangles using each node as a corner. Mid edge
// nodes have none.
func (m *Mesh) Valence() ([]int, error) {
	inc, err := m.incidence()
	if err != nil {
		return nil, err
	}
	return inc.Valence(), nil
}

// SwapNormals reverses the winding, and with it the normal, of every triangle
func (m *Mesh) SwapNormals() {
	for k := range m.Tris {
		reverseWinding(&m.Tris[k])
		m.Tris[k].Normal = r3.Scale(-1, m.Tris[k].Normal)
	}
}

// reverseWinding swaps corners 1 and 2, which maps edge 0 onto edge 2
func reverseWinding(tri *Tri) {
	tri.Node[1], tri.Node[2] = tri.Node[2], tri.Node[1]
	if tri.HasMidEdge() {
		tri.MidEdge[0], tri.MidEdge[2] = tri.MidEdge[2], tri.MidEdge[0]
	}
}

// ComputeNodalValues fills node fields with the area weighted average of the
// incident triangle fields
func (m *Mesh) ComputeNodalValues() (err error) {
	var inc *utils.Incidence
	if inc, err = m.incidence(); err != nil {
		return
	}
	tv := make([]float64, len(m.Tris))
	for v := 0; v < search.MaxVariables; v++ {
		for k := range m.Tris {
			tv[k] = m.Tris[k].Variable[v]
		}
		nv := inc.NodalAverage(tv)
		for i := range m.Nodes {
			m.Nodes[i].Variable[v] = nv[i]
		}
	}
	return
}

// ComputeCentroidValues fills triangle fields with the mean of their corners
func (m *Mesh) ComputeCentroidValues() (err error) {
	var inc *utils.Incidence
	if inc, err = m.incidence(); err != nil {
		return
	}
	nv := make([]float64, len(m.Nodes))
	for v := 0; v < search.MaxVariables; v++ {
		for i := range m.Nodes {
			nv[i] = m.Nodes[i].Variable[v]
		}
		tv := inc.CentroidAverage(nv)
		for k := range m.Tris {
			m.Tris[k].Variable[v] = tv[k]
		}
	}
	return
}

// ResolveValues derives the non authoritative field location from the other
func (m *Mesh) ResolveValues() error {
	if m.ValueLocation == CentroidValues {
		return m.ComputeNodalValues()
	}
	return m.ComputeCentroidValues()
}

// ComputeNodeNormals sets each node normal to the normalized area weighted
// sum of its triangle normals. Isolated nodes get a zero normal.
func (m *Mesh) ComputeNodeNormals() (err error) {
	if len(m.Tris) == 0 {
		for i := range m.Nodes {
			m.Nodes[i].Normal = r3.Vec{}
		}
		return
	}
	var inc *utils.Incidence
	if inc, err = m.incidence(); err != nil {
		return
	}
	var comp [3][]float64
	for d := range comp {
		tv := make([]float64, len(m.Tris))
		for k := range m.Tris {
			tv[k] = geometry3D.Axis(d).Coord(m.Tris[k].Normal)
		}
		comp[d] = inc.NodalAverage(tv)
	}
	for i := range m.Nodes {
		n := r3.Vec{X: comp[0][i], Y: comp[1][i], Z: comp[2][i]}
		if r3.Norm(n) <= utils.NODETOL {
			m.Nodes[i].Normal = r3.Vec{}
			continue
		}
		m.Nodes[i].Normal = r3.Unit(n)
	}
	return
}

// FoldSymmetry mirrors a half model through the y=0 plane. Nodes on the
// plane are shared by both halves, mirrored triangles have reversed winding
// so their normals keep pointing out of the body.
func (m *Mesh) FoldSymmetry() {
	var (
		nn       = len(m.Nodes)
		nt       = len(m.Tris)
		planeTol = m.planeTolerance()
		mirror   = make([]int, nn)
		maxID    int
	)
	for i := range m.Nodes {
		maxID = max(maxID, m.Nodes[i].ID)
	}
	for i := 0; i < nn; i++ {
		nd := m.Nodes[i]
		if math.Abs(nd.XYZ.Y) <= planeTol {
			mirror[i] = i
			continue
		}
		mirror[i] = len(m.Nodes)
		maxID++
		nd.ID = maxID
		nd.XYZ = geometry3D.MirrorY(nd.XYZ)
		nd.Normal = geometry3D.MirrorY(nd.Normal)
		m.Nodes = append(m.Nodes, nd)
	}
	for k := 0; k < nt; k++ {
		tri := m.Tris[k]
		onPlane := true
		for i := range tri.Node {
			onPlane = onPlane && mirror[tri.Node[i]] == tri.Node[i]
			tri.Node[i] = mirror[tri.Node[i]]
		}
		if onPlane {
			continue
		}
		if tri.HasMidEdge() {
			for i := range tri.MidEdge {
				tri.MidEdge[i] = mirror[tri.MidEdge[i]]
			}
		}
		reverseWinding(&tri)
		m.Tris = append(m.Tris, tri)
	}
	m.Symmetry = false
	m.ComputeGeometry()
}

func (m *Mesh) planeTolerance() float64 {
	return math.Max(utils.NODETOL, 1.e-9*m.Box.Diagonal())
}

// Edges counts the triangles sharing each corner edge
func (m *Mesh) Edges() types.EdgeCount {
	return types.CountEdges(m.cornerList())
}

// OpenPlaneEdges counts the open edges lying on the y=0 plane, the cut of a
// half model. ComputeGeometry must have been called.
func (m *Mesh) OpenPlaneEdges() (n int) {
	tol := m.planeTolerance()
	for _, ek := range m.Edges().Open() {
		v := ek.GetVertices()
		if math.Abs(m.Nodes[v[0]].XYZ.Y) <= tol && math.Abs(m.Nodes[v[1]].XYZ.Y) <= tol {
			n++
		}
	}
	return
}

// ScaleLength multiplies every length by s and every area by s squared
func (m *Mesh) ScaleLength(s float64) {
	for i := range m.Nodes {
		m.Nodes[i].XYZ = r3.Scale(s, m.Nodes[i].XYZ)
	}
	m.Reference.Area *= s * s
	m.Reference.Chord *= s
	m.Reference.Span *= s
	m.Reference.MomentPoint = r3.Scale(s, m.Reference.MomentPoint)
	if m.ScaleFactor == 0 {
		m.ScaleFactor = 1
	}
	m.ScaleFactor *= s
	m.ComputeGeometry()
}

// SurfaceNodes builds the tree samples, one per triangle, carrying the node
// fields at the corners
func (m *Mesh) SurfaceNodes() (samples []search.SurfaceNode) {
	samples = make([]search.SurfaceNode, len(m.Tris))
	for k := range m.Tris {
		var corners [3]search.TriNode
		for i, n := range m.Tris[k].Node {
			corners[i] = search.TriNode{
				Node:     n,
				XYZ:      m.Nodes[n].XYZ,
				Variable: m.Nodes[n].Variable,
			}
		}
		samples[k] = search.NewSurfaceNode(k, corners)
	}
	return
}
