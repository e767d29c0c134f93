package search

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/adbinterp/geometry3D"
)

const DefaultMaxLeafSize = 8

type TreeOptions struct {
	MaxLeafSize int // Largest sample count stored in a terminal leaf
}

// Leaf is one entry of the tree arena. Internal entries split their subtree
// at CutOff along Axis: samples with a coordinate <= CutOff live under Left,
// the rest under Right. Every entry's samples occupy Order[Start:End].
type Leaf struct {
	Axis        geometry3D.Axis
	CutOff      float64
	Left, Right int // Arena indices, -1 for a terminal leaf
	Start, End  int
	Level       int
	Box         geometry3D.BBox // Union of the subtree's sample boxes
}

func (l *Leaf) IsTerminal() bool { return l.Left < 0 }

func (l *Leaf) NumberOfNodes() int { return l.End - l.Start }

// Tree is a binary space partition over source triangles, stored as an arena
// so it can be shared read-only across query goroutines once built.
type Tree struct {
	Nodes       []SurfaceNode // Samples in input order
	Order       []int         // Sample indices grouped by terminal leaf
	Leaves      []Leaf        // Leaves[0] is the root
	MaxLeafSize int
	Depth       int
}

type treeBuilder struct {
	t    *Tree
	mark []bool
}

// BuildTree sorts the samples once along each axis, then recursively splits
// at the median of the widest axis. The two lists not being split are
// partitioned in order with a marking pass, so no level is ever resorted.
func BuildTree(samples []SurfaceNode, opts TreeOptions) (t *Tree) {
	var (
		N     = len(samples)
		lists [3][]int
	)
	t = &Tree{
		Nodes:       samples,
		Order:       make([]int, 0, N),
		MaxLeafSize: opts.MaxLeafSize,
	}
	if t.MaxLeafSize < 1 {
		t.MaxLeafSize = DefaultMaxLeafSize
	}
	for a := range lists {
		axis := geometry3D.Axis(a)
		l := make([]int, N)
		for i := range l {
			l[i] = i
		}
		// Stable so equal coordinates keep input order
		sort.SliceStable(l, func(i, j int) bool {
			return axis.Coord(samples[l[i]].XYZ) < axis.Coord(samples[l[j]].XYZ)
		})
		lists[a] = l
	}
	tb := &treeBuilder{t: t, mark: make([]bool, N)}
	tb.build(lists, 0)
	return
}

func (tb *treeBuilder) build(lists [3][]int, level int) (li int) {
	var (
		t = tb.t
		n = len(lists[0])
	)
	li = len(t.Leaves)
	t.Leaves = append(t.Leaves, Leaf{
		Left:  -1,
		Right: -1,
		Start: len(t.Order),
		Level: level,
		Box:   geometry3D.EmptyBBox(),
	})
	if level > t.Depth {
		t.Depth = level
	}
	axis, spread := tb.chooseAxis(lists, level)
	if n <= t.MaxLeafSize || n < 2 || spread <= 0 {
		leaf := &t.Leaves[li]
		leaf.Axis = axis
		for _, id := range lists[0] {
			leaf.Box = leaf.Box.Union(t.Nodes[id].Box)
		}
		t.Order = append(t.Order, lists[0]...)
		leaf.End = len(t.Order)
		return
	}
	k, cutOff := tb.split(lists[axis], axis)
	left, right := tb.partition(lists, axis, k)
	t.Leaves[li].Axis, t.Leaves[li].CutOff = axis, cutOff
	l := tb.build(left, level+1)
	r := tb.build(right, level+1)
	// The arena may have moved during the recursion
	leaf := &t.Leaves[li]
	leaf.Left, leaf.Right = l, r
	leaf.Box = t.Leaves[l].Box.Union(t.Leaves[r].Box)
	leaf.End = len(t.Order)
	return
}

// chooseAxis picks the axis with the widest centroid spread, read off the
// ends of the sorted lists. Ties go to the first axis tried, starting at
// level%3.
func (tb *treeBuilder) chooseAxis(lists [3][]int, level int) (axis geometry3D.Axis, spread float64) {
	n := len(lists[0])
	axis = geometry3D.Axis(level % 3)
	if n == 0 {
		return
	}
	spread = -1
	for i := 0; i < 3; i++ {
		a := geometry3D.Axis((level + i) % 3)
		l := lists[a]
		s := a.Coord(tb.t.Nodes[l[n-1]].XYZ) - a.Coord(tb.t.Nodes[l[0]].XYZ)
		if s > spread {
			axis, spread = a, s
		}
	}
	return
}

// split returns the count of samples going left and the cut off value. The
// median element sets the cut, moved past runs of equal coordinates so both
// sides are non-empty; requires a positive spread along the axis.
func (tb *treeBuilder) split(list []int, axis geometry3D.Axis) (k int, cutOff float64) {
	var (
		n     = len(list)
		m     = (n - 1) / 2
		coord = func(i int) float64 { return axis.Coord(tb.t.Nodes[list[i]].XYZ) }
	)
	cutOff = coord(m)
	for k = m + 1; k < n && coord(k) == cutOff; k++ {
	}
	if k == n {
		// The median run reaches the maximum, cut just below the run instead
		for k = m; k > 0 && coord(k-1) == cutOff; k-- {
		}
		cutOff = coord(k - 1)
	}
	return
}

func (tb *treeBuilder) partition(lists [3][]int, axis geometry3D.Axis, k int) (left, right [3][]int) {
	split := lists[axis]
	for _, id := range split[:k] {
		tb.mark[id] = true
	}
	for a := range lists {
		if geometry3D.Axis(a) == axis {
			left[a], right[a] = split[:k], split[k:]
			continue
		}
		l := make([]int, 0, k)
		r := make([]int, 0, len(split)-k)
		for _, id := range lists[a] {
			if tb.mark[id] {
				l = append(l, id)
			} else {
				r = append(r, id)
			}
		}
		left[a], right[a] = l, r
	}
	for _, id := range split[:k] {
		tb.mark[id] = false
	}
	return
}

// LeafNodes returns the sample indices under arena entry li
func (t *Tree) LeafNodes(li int) []int {
	leaf := &t.Leaves[li]
	return t.Order[leaf.Start:leaf.End]
}

// Walk visits the arena depth first, parents before children, stopping the
// descent below any entry for which fn returns false
func (t *Tree) Walk(fn func(li int, leaf *Leaf) bool) {
	if len(t.Leaves) == 0 {
		return
	}
	stack := []int{0}
	for len(stack) != 0 {
		li := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		leaf := &t.Leaves[li]
		if !fn(li, leaf) || leaf.IsTerminal() {
			continue
		}
		stack = append(stack, leaf.Right, leaf.Left)
	}
}

func (t *Tree) Box() geometry3D.BBox {
	if len(t.Leaves) == 0 {
		return geometry3D.EmptyBBox()
	}
	return t.Leaves[0].Box
}

type TreeStats struct {
	Samples, Leaves, Internal, Depth int
	MinFill, MaxFill                 int
	MeanFill                         float64
}

func (t *Tree) Stats() (st TreeStats) {
	var fills []float64
	st.Samples = len(t.Nodes)
	st.Depth = t.Depth
	for i := range t.Leaves {
		if t.Leaves[i].IsTerminal() {
			fills = append(fills, float64(t.Leaves[i].NumberOfNodes()))
		} else {
			st.Internal++
		}
	}
	st.Leaves = len(fills)
	if len(fills) != 0 {
		st.MinFill, st.MaxFill = int(floats.Min(fills)), int(floats.Max(fills))
		st.MeanFill = stat.Mean(fills, nil)
	}
	return
}
