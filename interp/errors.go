package interp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrUnmatchedNode    = errors.New("target node has no donor triangle")
	ErrOutOfEnvelope    = errors.New("target node is outside the source mesh envelope")
	ErrMalformedLinkage = errors.New("triangle references a node outside the mesh")
	ErrEmptyMesh        = errors.New("source mesh has no triangles")
	ErrNaNCoordinate    = errors.New("node coordinate is NaN")
)

// LinkageError names the triangle corner holding an invalid node index
type LinkageError struct {
	Mesh     string
	Tri      int
	Corner   int // 0-2 for corners, 3-5 for mid edge nodes
	Node     int
	NumNodes int
}

func (e *LinkageError) Error() string {
	return fmt.Sprintf("%s mesh: triangle %d corner %d references node %d, have %d nodes",
		e.Mesh, e.Tri, e.Corner, e.Node, e.NumNodes)
}

func (e *LinkageError) Unwrap() error { return ErrMalformedLinkage }

// UnmatchedError is returned in strict mode for the first target node that
// could not be interpolated
type UnmatchedError struct {
	Node     int
	XYZ      r3.Vec
	Distance float64 // Nearest donor distance, +Inf when no search was made
	Reason   error   // ErrOutOfEnvelope or nil
}

func (e *UnmatchedError) Error() string {
	msg := fmt.Sprintf("target node %d at (%g, %g, %g) unmatched, nearest donor distance %g",
		e.Node, e.XYZ.X, e.XYZ.Y, e.XYZ.Z, e.Distance)
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

func (e *UnmatchedError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrUnmatchedNode, e.Reason}
	}
	return []error{ErrUnmatchedNode}
}
