package types

import (
	"fmt"
	"math"
	"sort"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// Two 32 bit unsigned indices, the smaller in the low word
	for _, vert := range verts {
		if vert < 0 || vert > math.MaxUint32 {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	i1, i2 := verts[0], verts[1]
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	packed = EdgeKey(uint64(i1) | uint64(i2)<<32)
	return
}

func (ek EdgeKey) GetVertices() (verts [2]int) {
	verts[0] = int(ek & math.MaxUint32)
	verts[1] = int(ek >> 32)
	return
}

// EdgeCount is the number of triangles sharing each edge of a surface
type EdgeCount map[EdgeKey]int

func CountEdges(tris [][3]int) (ec EdgeCount) {
	ec = make(EdgeCount, 3*len(tris)/2)
	for _, tri := range tris {
		for i := 0; i < 3; i++ {
			ec[NewEdgeKey([2]int{tri[i], tri[(i+1)%3]})]++
		}
	}
	return
}

// Open returns the edges used by a single triangle in ascending order. A
// closed surface has none, a half model has its cut along the symmetry plane.
func (ec EdgeCount) Open() (edges []EdgeKey) {
	for ek, n := range ec {
		if n == 1 {
			edges = append(edges, ek)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })
	return
}

// NonManifold returns the edges shared by more than two triangles
func (ec EdgeCount) NonManifold() (edges []EdgeKey) {
	for ek, n := range ec {
		if n > 2 {
			edges = append(edges, ek)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })
	return
}
