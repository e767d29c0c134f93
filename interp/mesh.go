package interp

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/geometry3D"
	"github.com/notargets/adbinterp/search"
	"github.com/notargets/adbinterp/utils"
)

type ValueLocation uint8

const (
	NodeValues     ValueLocation = iota // Node fields are authoritative
	CentroidValues                      // Triangle fields are authoritative
)

func (vl ValueLocation) String() string {
	if vl == CentroidValues {
		return "centroid"
	}
	return "node"
}

type Node struct {
	ID       int
	XYZ      r3.Vec
	Normal   r3.Vec // Area weighted unit normal, filled by ComputeNodeNormals
	Variable [search.MaxVariables]float64
}

type Tri struct {
	Node    [3]int
	MidEdge [3]int // MidEdge[i] sits on edge Node[i]-Node[(i+1)%3], -1 when absent

	ID         int
	SurfaceID  int
	MaterialID int
	Emissivity float64
	Group      string // Element group name, shared by the group's triangles

	Centroid r3.Vec
	Normal   r3.Vec
	Area     float64
	Variable [search.MaxVariables]float64
}

// HasMidEdge reports whether the triangle is quadratic
func (t *Tri) HasMidEdge() bool { return t.MidEdge[0] >= 0 }

type Reference struct {
	Area, Chord, Span float64
	MomentPoint       r3.Vec
}

type Freestream struct {
	DynamicPressure float64
	Pressure        float64
}

type ControlSurface struct {
	Name        string
	Deflections []float64
}

// Mesh is a triangulated surface with its aerodynamic solution and the
// provenance carried through to the load tools
type Mesh struct {
	Name  string
	Nodes []Node
	Tris  []Tri

	ValueLocation ValueLocation
	NumVariables  int // Meaningful entries of each Variable vector

	Reference   Reference
	Freestream  Freestream
	ScaleFactor float64

	Mach, Bars, Alpha, Beta []float64
	ControlSurfaces         []ControlSurface

	StagnationTri        int
	Planet               int
	Symmetry             bool // Only the y >= 0 half is meshed
	WriteOutHalfGeometry bool

	Box geometry3D.BBox
}

// Validate checks that every node has a position and every triangle
// references existing nodes
func (m *Mesh) Validate() error {
	nn := len(m.Nodes)
	for i := range m.Nodes {
		if p := m.Nodes[i].XYZ; utils.IsNan(p.X, p.Y, p.Z) {
			return fmt.Errorf("%s mesh: node %d (id %d): %w", m.Name, i, m.Nodes[i].ID, ErrNaNCoordinate)
		}
	}
	for k := range m.Tris {
		tri := &m.Tris[k]
		for i, n := range tri.Node {
			if n < 0 || n >= nn {
				return &LinkageError{Mesh: m.Name, Tri: k, Corner: i, Node: n, NumNodes: nn}
			}
		}
		if !tri.HasMidEdge() {
			continue
		}
		for i, n := range tri.MidEdge {
			if n < 0 || n >= nn {
				return &LinkageError{Mesh: m.Name, Tri: k, Corner: i + 3, Node: n, NumNodes: nn}
			}
		}
	}
	return nil
}

// Clone returns a deep copy
func (m *Mesh) Clone() (c *Mesh) {
	cp := *m
	c = &cp
	c.Nodes = append([]Node(nil), m.Nodes...)
	c.Tris = append([]Tri(nil), m.Tris...)
	c.copyMetadata(m)
	return
}

// copyMetadata carries the reference quantities and provenance of src
func (m *Mesh) copyMetadata(src *Mesh) {
	m.Reference = src.Reference
	m.Freestream = src.Freestream
	m.ScaleFactor = src.ScaleFactor
	m.Mach = append([]float64(nil), src.Mach...)
	m.Bars = append([]float64(nil), src.Bars...)
	m.Alpha = append([]float64(nil), src.Alpha...)
	m.Beta = append([]float64(nil), src.Beta...)
	m.ControlSurfaces = nil
	for _, cs := range src.ControlSurfaces {
		m.ControlSurfaces = append(m.ControlSurfaces, ControlSurface{
			Name:        cs.Name,
			Deflections: append([]float64(nil), cs.Deflections...),
		})
	}
	m.Planet = src.Planet
}
