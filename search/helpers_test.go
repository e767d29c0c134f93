package search

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

func newSample(tri int, pts [3]r3.Vec, vals [3]float64) SurfaceNode {
	var corners [3]TriNode
	for i := range corners {
		corners[i] = TriNode{Node: 3*tri + i, XYZ: pts[i]}
		corners[i].Variable[VarCp] = vals[i]
	}
	return NewSurfaceNode(tri, corners)
}

// gridSamples triangulates the unit square in the z=0 plane with nx by ny
// cells, two triangles per cell, carrying field(x,y) at the corners
func gridSamples(nx, ny int, field func(p r3.Vec) float64) (samples []SurfaceNode) {
	node := func(i, j int) r3.Vec {
		return r3.Vec{X: float64(i) / float64(nx), Y: float64(j) / float64(ny)}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			p00, p10, p11, p01 := node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)
			for _, tri := range [][3]r3.Vec{{p00, p10, p11}, {p00, p11, p01}} {
				samples = append(samples, newSample(len(samples), tri,
					[3]float64{field(tri[0]), field(tri[1]), field(tri[2])}))
			}
		}
	}
	return
}

// randomSamples scatters small triangles in the unit cube. With quantize set
// the centroids snap to a coarse lattice so many coordinates tie.
func randomSamples(n int, seed int64, quantize bool) (samples []SurfaceNode) {
	r := rand.New(rand.NewSource(seed))
	coord := func() float64 {
		if quantize {
			return float64(r.Intn(8)) / 8.
		}
		return r.Float64()
	}
	for i := 0; i < n; i++ {
		c := r3.Vec{X: coord(), Y: coord(), Z: coord()}
		var pts [3]r3.Vec
		for k := range pts {
			off := r3.Vec{X: 0.02 * (r.Float64() - 0.5), Y: 0.02 * (r.Float64() - 0.5), Z: 0.02 * (r.Float64() - 0.5)}
			pts[k] = r3.Add(c, off)
		}
		samples = append(samples, newSample(i, pts, [3]float64{1, 2, 3}))
	}
	return
}

func linearField(p r3.Vec) float64 { return 1 + 2*p.X - 3*p.Y }
