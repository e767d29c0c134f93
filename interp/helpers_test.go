package interp

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/search"
)

func linearField(p r3.Vec) float64 { return 1 + 2*p.X - 3*p.Y }

// gridMesh triangulates [x0,x0+w]x[y0,y0+h] in the z=0 plane with nx by ny
// cells and counter clockwise triangles, node values from field
func gridMesh(nx, ny int, x0, y0, w, h float64, field func(r3.Vec) float64) (m *Mesh) {
	m = &Mesh{Name: "grid", NumVariables: 3}
	id := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			p := r3.Vec{X: x0 + w*float64(i)/float64(nx), Y: y0 + h*float64(j)/float64(ny)}
			nd := Node{ID: id(i, j) + 1, XYZ: p}
			if field != nil {
				nd.Variable[search.VarCp] = field(p)
				nd.Variable[search.VarGamma] = 2 * field(p)
			}
			m.Nodes = append(m.Nodes, nd)
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			for _, tri := range [][3]int{
				{id(i, j), id(i+1, j), id(i+1, j+1)},
				{id(i, j), id(i+1, j+1), id(i, j+1)},
			} {
				m.Tris = append(m.Tris, Tri{Node: tri, MidEdge: [3]int{-1, -1, -1}, ID: len(m.Tris) + 1})
			}
		}
	}
	return
}

func unitGrid(n int) *Mesh { return gridMesh(n, n, 0, 0, 1, 1, linearField) }

// pointCloud is a target made of bare nodes
func pointCloud(pts ...r3.Vec) (m *Mesh) {
	m = &Mesh{Name: "points"}
	for i, p := range pts {
		m.Nodes = append(m.Nodes, Node{ID: i + 1, XYZ: p})
	}
	return
}

// squareMesh is the unit square split along the (0,0)-(1,1) diagonal with 10
// at the origin and 0 at the opposite corner
func squareMesh() (m *Mesh) {
	m = &Mesh{Name: "square", NumVariables: 1}
	for i, p := range []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}} {
		nd := Node{ID: i + 1, XYZ: p}
		nd.Variable[search.VarCp] = [4]float64{10, 5, 0, 5}[i]
		m.Nodes = append(m.Nodes, nd)
	}
	m.Tris = []Tri{
		{Node: [3]int{0, 1, 2}, MidEdge: [3]int{-1, -1, -1}},
		{Node: [3]int{0, 2, 3}, MidEdge: [3]int{-1, -1, -1}},
	}
	return
}
