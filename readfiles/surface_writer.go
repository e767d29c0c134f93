package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/adbinterp/interp"
)

func WriteSurfaceFile(filename string, m *interp.Mesh) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteSurface(file, m); err != nil {
		_ = file.Close()
		return
	}
	return file.Close()
}

// WriteSurface writes the mesh and its node solution. With
// WriteOutHalfGeometry set only the triangles whose centroid has y >= 0 are
// written, along with the nodes they use.
func WriteSurface(w io.Writer, m *interp.Mesh) error {
	var (
		bw          = bufio.NewWriter(w)
		tris, nodes = selectGeometry(m)
		renumber    = make(map[int]int, len(nodes))
	)
	for i, n := range nodes {
		renumber[n] = i
	}
	fmt.Fprintf(bw, "%% surface mesh written by adbinterp\n")
	fmt.Fprintf(bw, "NDIME= 3\n")
	if m.Name != "" {
		fmt.Fprintf(bw, "NAME= %s\n", m.Name)
	}
	fmt.Fprintf(bw, "NPOIN= %d\n", len(nodes))
	for _, n := range nodes {
		p := m.Nodes[n].XYZ
		fmt.Fprintf(bw, "%s %s %s %d\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z), m.Nodes[n].ID)
	}
	fmt.Fprintf(bw, "NELEM= %d\n", len(tris))
	for _, k := range tris {
		tri := &m.Tris[k]
		if tri.HasMidEdge() {
			fmt.Fprintf(bw, "%d %d %d %d %d %d %d", ELType_QuadraticTriangle,
				renumber[tri.Node[0]], renumber[tri.Node[1]], renumber[tri.Node[2]],
				renumber[tri.MidEdge[0]], renumber[tri.MidEdge[1]], renumber[tri.MidEdge[2]])
		} else {
			fmt.Fprintf(bw, "%d %d %d %d", ELType_Triangle,
				renumber[tri.Node[0]], renumber[tri.Node[1]], renumber[tri.Node[2]])
		}
		fmt.Fprintf(bw, " %d %d %d %s\n", tri.ID, tri.SurfaceID, tri.MaterialID, ftoa(tri.Emissivity))
	}
	writeGroups(bw, m, tris)
	writeMetadata(bw, m)
	if nv := m.NumVariables; nv > 0 {
		fmt.Fprintf(bw, "NVAR= %d\n", nv)
		fmt.Fprintf(bw, "NODE_SOLUTION= %d\n", len(nodes))
		for _, n := range nodes {
			fmt.Fprintln(bw, floatLine(m.Nodes[n].Variable[:nv]))
		}
	}
	return bw.Flush()
}

// selectGeometry returns the triangle and node indices to write, nodes in
// their original order
func selectGeometry(m *interp.Mesh) (tris, nodes []int) {
	if !m.WriteOutHalfGeometry {
		tris = make([]int, len(m.Tris))
		for k := range tris {
			tris[k] = k
		}
		nodes = make([]int, len(m.Nodes))
		for i := range nodes {
			nodes[i] = i
		}
		return
	}
	used := make([]bool, len(m.Nodes))
	for k := range m.Tris {
		tri := &m.Tris[k]
		var y float64
		for _, n := range tri.Node {
			y += m.Nodes[n].XYZ.Y
		}
		if y < 0 {
			continue
		}
		tris = append(tris, k)
		for _, n := range tri.Node {
			used[n] = true
		}
		if tri.HasMidEdge() {
			for _, n := range tri.MidEdge {
				used[n] = true
			}
		}
	}
	for i, u := range used {
		if u {
			nodes = append(nodes, i)
		}
	}
	return
}

// writeGroups emits one GROUP block per run of consecutive written
// triangles sharing a group name
func writeGroups(bw *bufio.Writer, m *interp.Mesh, tris []int) {
	for first := 0; first < len(tris); {
		name := m.Tris[tris[first]].Group
		last := first + 1
		for last < len(tris) && m.Tris[tris[last]].Group == name {
			last++
		}
		if name != "" {
			fmt.Fprintf(bw, "GROUP= %s\n%d %d\n", name, first, last-first)
		}
		first = last
	}
}

func writeMetadata(bw *bufio.Writer, m *interp.Mesh) {
	r := m.Reference
	fmt.Fprintf(bw, "REFERENCE= %s\n", floatLine([]float64{r.Area, r.Chord, r.Span,
		r.MomentPoint.X, r.MomentPoint.Y, r.MomentPoint.Z}))
	fmt.Fprintf(bw, "FREESTREAM= %s %s\n", ftoa(m.Freestream.DynamicPressure), ftoa(m.Freestream.Pressure))
	if m.ScaleFactor != 0 {
		fmt.Fprintf(bw, "SCALE= %s\n", ftoa(m.ScaleFactor))
	}
	for _, l := range []struct {
		key  string
		vals []float64
	}{{"MACH", m.Mach}, {"BARS", m.Bars}, {"ALPHA", m.Alpha}, {"BETA", m.Beta}} {
		if len(l.vals) == 0 {
			continue
		}
		fmt.Fprintf(bw, "%s= %d\n%s\n", l.key, len(l.vals), floatLine(l.vals))
	}
	if len(m.ControlSurfaces) != 0 {
		fmt.Fprintf(bw, "CONTROL_SURFACES= %d\n", len(m.ControlSurfaces))
		for _, cs := range m.ControlSurfaces {
			fmt.Fprintf(bw, "%s %d", cs.Name, len(cs.Deflections))
			if len(cs.Deflections) != 0 {
				fmt.Fprintf(bw, " %s", floatLine(cs.Deflections))
			}
			fmt.Fprintln(bw)
		}
	}
	fmt.Fprintf(bw, "STAGNATION_TRI= %d\n", m.StagnationTri)
	fmt.Fprintf(bw, "PLANET= %d\n", m.Planet)
	fmt.Fprintf(bw, "SYMMETRY= %d\n", btoi(m.Symmetry))
	fmt.Fprintf(bw, "HALF_GEOMETRY= %d\n", btoi(m.WriteOutHalfGeometry))
}

func floatLine(v []float64) string {
	s := make([]string, len(v))
	for i, f := range v {
		s[i] = ftoa(f)
	}
	return strings.Join(s, " ")
}

// ftoa keeps every bit so files round trip exactly
func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
