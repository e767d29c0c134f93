package geometry3D

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BBox is an axis aligned bounding volume. Unlike r3.Box a BBox with zero
// thickness in one or more directions is valid, which is the normal case for
// a planar triangle lying in a coordinate plane.
type BBox struct {
	Min, Max r3.Vec
}

// EmptyBBox returns an inverted box that acts as the identity for Union and Add
func EmptyBBox() BBox {
	inf := math.Inf(1)
	return BBox{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewBBox returns a cube of half width hw centered on p
func NewBBox(p r3.Vec, hw float64) BBox {
	hw = math.Abs(hw)
	d := r3.Vec{X: hw, Y: hw, Z: hw}
	return BBox{Min: r3.Sub(p, d), Max: r3.Add(p, d)}
}

func BoxOfPoints(pts ...r3.Vec) (b BBox) {
	b = EmptyBBox()
	for _, p := range pts {
		b = b.Add(p)
	}
	return
}

func (b BBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Add grows the box to include p
func (b BBox) Add(p r3.Vec) BBox {
	return BBox{
		Min: r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Add(o.Min).Add(o.Max)
}

// Expand pads every face of the box outward by d
func (b BBox) Expand(d float64) BBox {
	if b.IsEmpty() {
		return b
	}
	pad := r3.Vec{X: d, Y: d, Z: d}
	return BBox{Min: r3.Sub(b.Min, pad), Max: r3.Add(b.Max, pad)}
}

// Overlaps is true when the two closed boxes share at least one point
func (b BBox) Overlaps(o BBox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

func (b BBox) Contains(p r3.Vec) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

func (b BBox) Size() r3.Vec {
	if b.IsEmpty() {
		return r3.Vec{}
	}
	return r3.Sub(b.Max, b.Min)
}

func (b BBox) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

func (b BBox) Diagonal() float64 {
	return r3.Norm(b.Size())
}

// Scale multiplies both corners by s, used for unit conversion
func (b BBox) Scale(s float64) BBox {
	if b.IsEmpty() {
		return b
	}
	return BoxOfPoints(r3.Scale(s, b.Min), r3.Scale(s, b.Max))
}
