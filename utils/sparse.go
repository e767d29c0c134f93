package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Incidence is the node by triangle connectivity of a surface mesh. Entry
// (n,k) is one when node n is a corner of triangle k.
type Incidence struct {
	M           *sparse.CSR
	Nodes, Tris int
	Area        []float64 // Triangle areas used as averaging weights
	weightSum   []float64
}

// NewIncidence assembles the incidence matrix from triangle corner lists.
// Corners repeated within a triangle are counted once.
func NewIncidence(nNodes int, tris [][3]int, area []float64) (inc *Incidence, err error) {
	if len(area) != len(tris) {
		err = fmt.Errorf("have %d triangle areas for %d triangles", len(area), len(tris))
		return
	}
	if nNodes == 0 || len(tris) == 0 {
		err = fmt.Errorf("empty mesh: %d nodes, %d triangles", nNodes, len(tris))
		return
	}
	var (
		indptr = make([]int, nNodes+1)
		corner = make([][3]int, len(tris))
		unique = make([]int, len(tris))
	)
	for k, tri := range tris {
		for i, n := range tri {
			if n < 0 || n >= nNodes {
				err = fmt.Errorf("triangle %d references node %d, have %d nodes", k, n, nNodes)
				return
			}
			if (i > 0 && n == tri[0]) || (i > 1 && n == tri[1]) {
				continue
			}
			corner[k][unique[k]] = n
			unique[k]++
			indptr[n+1]++
		}
	}
	for n := 0; n < nNodes; n++ {
		indptr[n+1] += indptr[n]
	}
	// Rows are filled in triangle order so the columns of each row ascend and
	// every reduction over a row sums in the same order
	var (
		nnz  = indptr[nNodes]
		ind  = make([]int, nnz)
		data = make([]float64, nnz)
		next = append([]int(nil), indptr[:nNodes]...)
	)
	for k := range tris {
		for _, n := range corner[k][:unique[k]] {
			ind[next[n]] = k
			data[next[n]] = 1
			next[n]++
		}
	}
	inc = &Incidence{
		M:         sparse.NewCSR(nNodes, len(tris), indptr, ind, data),
		Nodes:     nNodes,
		Tris:      len(tris),
		Area:      area,
		weightSum: make([]float64, nNodes),
	}
	inc.M.DoNonZero(func(i, j int, v float64) {
		inc.weightSum[i] += inc.Area[j]
	})
	return
}

// NodalAverage returns the area weighted average of the triangle values
// incident on each node. A node touching only zero area triangles takes their
// plain average, a node touching none gets zero.
func (inc *Incidence) NodalAverage(triValues []float64) (nodeValues []float64) {
	var (
		count = make([]int, inc.Nodes)
		plain = make([]float64, inc.Nodes)
	)
	nodeValues = make([]float64, inc.Nodes)
	inc.M.DoNonZero(func(i, j int, v float64) {
		nodeValues[i] += inc.Area[j] * triValues[j]
		plain[i] += triValues[j]
		count[i]++
	})
	for i := range nodeValues {
		switch {
		case inc.weightSum[i] > NODETOL:
			nodeValues[i] /= inc.weightSum[i]
		case count[i] > 0:
			nodeValues[i] = plain[i] / float64(count[i])
		default:
			nodeValues[i] = 0
		}
	}
	return
}

// CentroidAverage returns the mean of each triangle's corner node values
func (inc *Incidence) CentroidAverage(nodeValues []float64) (triValues []float64) {
	var count = make([]int, inc.Tris)
	triValues = make([]float64, inc.Tris)
	inc.M.DoNonZero(func(i, j int, v float64) {
		triValues[j] += nodeValues[i]
		count[j]++
	})
	for j := range triValues {
		if count[j] > 0 {
			triValues[j] /= float64(count[j])
		}
	}
	return
}

// Valence is the number of triangles touching each node
func (inc *Incidence) Valence() (valence []int) {
	valence = make([]int, inc.Nodes)
	inc.M.DoNonZero(func(i, j int, v float64) {
		valence[i]++
	})
	return
}
