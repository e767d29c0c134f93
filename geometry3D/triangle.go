package geometry3D

import (
	"gonum.org/v1/gonum/spatial/r3"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// Coord returns the component of v along the axis
func (a Axis) Coord(v r3.Vec) float64 {
	switch a {
	case XAxis:
		return v.X
	case YAxis:
		return v.Y
	default:
		return v.Z
	}
}

func TriCentroid(a, b, c r3.Vec) r3.Vec {
	return r3.Scale(1./3., r3.Add(a, r3.Add(b, c)))
}

// TriNormal returns the unit normal following the a->b->c winding and the
// planar area. A degenerate triangle returns a zero normal.
func TriNormal(a, b, c r3.Vec) (n r3.Vec, area float64) {
	cr := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	twoA := r3.Norm(cr)
	area = 0.5 * twoA
	if twoA == 0 {
		return
	}
	n = r3.Scale(1./twoA, cr)
	return
}

// SignedArea is the area of a-b-c projected along the unit normal n, positive
// when the winding is counter clockwise viewed from the tip of n.
func SignedArea(a, b, c, n r3.Vec) float64 {
	return 0.5 * r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)), n)
}

// MirrorY reflects a point through the y=0 plane
func MirrorY(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: -v.Y, Z: v.Z}
}

func TriArea(a, b, c r3.Vec) float64 {
	_, area := TriNormal(a, b, c)
	return area
}
