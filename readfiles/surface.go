package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/adbinterp/interp"
	"github.com/notargets/adbinterp/search"
)

// Surface files follow the SU2 keyword layout: https://su2code.github.io/docs_v7/Mesh-File/
// The point block carries 3D coordinates and the element block triangles,
// followed by optional solution and provenance blocks.
type SU2ElementType uint8

const (
	ELType_Triangle          SU2ElementType = 5
	ELType_QuadraticTriangle SU2ElementType = 22 // Corners then mid edge nodes
)

// maxPrealloc caps the capacity reserved from a block count
const maxPrealloc = 1 << 16

// parseError is raised by the line helpers and recovered at the API boundary
type parseError struct{ err error }

func fail(format string, args ...any) {
	panic(parseError{fmt.Errorf(format, args...)})
}

func ReadSurfaceFile(filename string) (m *interp.Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadSurface(file); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// ReadSurface parses a surface mesh with its solution
func ReadSurface(r io.Reader) (m *interp.Mesh, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pe, ok := rec.(parseError)
			if !ok {
				panic(rec)
			}
			m, err = nil, pe.err
		}
	}()
	reader := bufio.NewReader(r)
	m = &interp.Mesh{StagnationTri: -1}
	if dim := readNumber(reader); dim != 3 {
		fail("surface files are 3 dimensional, have NDIME= %d", dim)
	}
	for {
		key, value, ok := nextKeyword(reader)
		if !ok {
			break
		}
		readBlock(reader, m, key, value)
	}
	if m.Nodes == nil && m.Tris == nil {
		fail("no NPOIN or NELEM block found")
	}
	return
}

func readBlock(reader *bufio.Reader, m *interp.Mesh, key, value string) {
	switch key {
	case "NAME":
		m.Name = value
	case "NPOIN":
		m.Nodes = readVertices(reader, count(key, value))
	case "NELEM":
		m.Tris = readElements(reader, count(key, value))
	case "GROUP":
		readGroup(reader, m, value)
	case "REFERENCE":
		v := floatList(key, value, 6)
		m.Reference = interp.Reference{Area: v[0], Chord: v[1], Span: v[2]}
		m.Reference.MomentPoint.X, m.Reference.MomentPoint.Y, m.Reference.MomentPoint.Z = v[3], v[4], v[5]
	case "FREESTREAM":
		v := floatList(key, value, 2)
		m.Freestream = interp.Freestream{DynamicPressure: v[0], Pressure: v[1]}
	case "SCALE":
		m.ScaleFactor = floatList(key, value, 1)[0]
	case "MACH":
		m.Mach = readList(reader, key, count(key, value))
	case "BARS":
		m.Bars = readList(reader, key, count(key, value))
	case "ALPHA":
		m.Alpha = readList(reader, key, count(key, value))
	case "BETA":
		m.Beta = readList(reader, key, count(key, value))
	case "CONTROL_SURFACES":
		m.ControlSurfaces = readControlSurfaces(reader, count(key, value))
	case "STAGNATION_TRI":
		m.StagnationTri = atoi(key, value)
	case "PLANET":
		m.Planet = atoi(key, value)
	case "SYMMETRY":
		m.Symmetry = atoi(key, value) != 0
	case "HALF_GEOMETRY":
		m.WriteOutHalfGeometry = atoi(key, value) != 0
	case "NVAR":
		if m.NumVariables = atoi(key, value); m.NumVariables < 0 || m.NumVariables > search.MaxVariables {
			fail("NVAR= %d, at most %d variables are carried", m.NumVariables, search.MaxVariables)
		}
	case "NODE_SOLUTION":
		n := count(key, value)
		if n != len(m.Nodes) {
			fail("NODE_SOLUTION= %d for %d points", n, len(m.Nodes))
		}
		for i := range m.Nodes {
			m.Nodes[i].Variable = readSolution(reader, m.NumVariables)
		}
		m.ValueLocation = interp.NodeValues
	case "TRI_SOLUTION":
		n := count(key, value)
		if n != len(m.Tris) {
			fail("TRI_SOLUTION= %d for %d elements", n, len(m.Tris))
		}
		for k := range m.Tris {
			m.Tris[k].Variable = readSolution(reader, m.NumVariables)
		}
		m.ValueLocation = interp.CentroidValues
	default:
		fail("unknown block %s=", key)
	}
}

func readVertices(reader *bufio.Reader, Nv int) (nodes []interp.Node) {
	nodes = make([]interp.Node, 0, min(Nv, maxPrealloc))
	for i := 0; i < Nv; i++ {
		f := strings.Fields(getLineNoComments(reader))
		if len(f) < 3 {
			fail("unable to read coordinates of point %d", i)
		}
		nodes = append(nodes, interp.Node{})
		nd := &nodes[i]
		nd.XYZ.X, nd.XYZ.Y, nd.XYZ.Z = atof(f[0]), atof(f[1]), atof(f[2])
		nd.ID = i
		if len(f) > 3 {
			nd.ID = atoi("point id", f[3])
		}
	}
	return
}

// readElements reads "type n0 n1 n2 [m0 m1 m2] [id surface material emissivity]"
func readElements(reader *bufio.Reader, K int) (tris []interp.Tri) {
	tris = make([]interp.Tri, 0, min(K, maxPrealloc))
	for k := 0; k < K; k++ {
		f := strings.Fields(getLineNoComments(reader))
		if len(f) == 0 {
			fail("empty element line %d", k)
		}
		tris = append(tris, interp.Tri{})
		var (
			nType = SU2ElementType(atoi("element type", f[0]))
			nv    int
			tri   = &tris[k]
		)
		switch nType {
		case ELType_Triangle:
			nv = 3
		case ELType_QuadraticTriangle:
			nv = 6
		default:
			fail("element %d has type %d, only triangles are supported", k, nType)
		}
		if len(f) < nv+1 {
			fail("element %d lists %d of %d nodes", k, len(f)-1, nv)
		}
		tri.MidEdge = [3]int{-1, -1, -1}
		for i := 0; i < 3; i++ {
			tri.Node[i] = atoi("element node", f[1+i])
			if nv == 6 {
				tri.MidEdge[i] = atoi("element node", f[4+i])
			}
		}
		tri.ID = k
		attrs := f[1+nv:]
		if len(attrs) > 0 {
			tri.ID = atoi("element id", attrs[0])
		}
		if len(attrs) > 1 {
			tri.SurfaceID = atoi("surface id", attrs[1])
		}
		if len(attrs) > 2 {
			tri.MaterialID = atoi("material id", attrs[2])
		}
		if len(attrs) > 3 {
			tri.Emissivity = atof(attrs[3])
		}
	}
	return
}

// readGroup names the element range on the following "first count" line
func readGroup(reader *bufio.Reader, m *interp.Mesh, name string) {
	var first, count int
	line := getLineNoComments(reader)
	if _, err := fmt.Sscanf(line, "%d %d", &first, &count); err != nil {
		fail("unable to read range of group %s: %v", name, err)
	}
	if first < 0 || count < 0 || first+count > len(m.Tris) {
		fail("group %s range [%d,%d) outside %d elements", name, first, first+count, len(m.Tris))
	}
	for k := first; k < first+count; k++ {
		m.Tris[k].Group = name
	}
}

func readControlSurfaces(reader *bufio.Reader, n int) (cs []interp.ControlSurface) {
	cs = make([]interp.ControlSurface, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		f := strings.Fields(getLineNoComments(reader))
		if len(f) < 2 {
			fail("unable to read control surface %d", i)
		}
		nd := count("deflection count", f[1])
		if len(f) != nd+2 {
			fail("control surface %s lists %d of %d deflections", f[0], len(f)-2, nd)
		}
		c := interp.ControlSurface{Name: f[0]}
		for _, s := range f[2:] {
			c.Deflections = append(c.Deflections, atof(s))
		}
		cs = append(cs, c)
	}
	return
}

func readList(reader *bufio.Reader, key string, n int) (v []float64) {
	if n == 0 {
		return
	}
	v = floatList(key, getLineNoComments(reader), n)
	return
}

func readSolution(reader *bufio.Reader, nvar int) (vars [search.MaxVariables]float64) {
	if nvar == 0 {
		fail("solution block before NVAR=")
	}
	v := floatList("solution", getLineNoComments(reader), nvar)
	copy(vars[:], v)
	return
}

func floatList(key, line string, n int) (v []float64) {
	f := strings.Fields(line)
	if len(f) != n {
		fail("%s: want %d values, have %d", key, n, len(f))
	}
	v = make([]float64, n)
	for i, s := range f {
		v[i] = atof(s)
	}
	return
}

func atoi(key, s string) (n int) {
	var err error
	if n, err = strconv.Atoi(strings.TrimSpace(s)); err != nil {
		fail("unable to read number for %s from [%s]", key, s)
	}
	return
}

// count reads a block length. Blocks are read line by line, so a length
// beyond the data fails at the end of file rather than in the allocator.
func count(key, s string) (n int) {
	if n = atoi(key, s); n < 0 {
		fail("%s= %d, counts cannot be negative", key, n)
	}
	return
}

func atof(s string) (f float64) {
	var err error
	if f, err = strconv.ParseFloat(s, 64); err != nil {
		fail("unable to read value from [%s]", s)
	}
	return
}

// nextKeyword returns the next "KEY= value" line, ok is false at end of file
func nextKeyword(reader *bufio.Reader) (key, value string, ok bool) {
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			fail("%v", err)
		}
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "%") {
			ind := strings.Index(line, "=")
			if ind < 0 {
				fail("badly formed input line [%s], should have an =", line)
			}
			return strings.TrimSpace(line[:ind]), strings.TrimSpace(line[ind+1:]), true
		}
		if err == io.EOF {
			return
		}
	}
}

func getToken(reader *bufio.Reader) (token string) {
	line := getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		fail("badly formed input line [%s], should have an =", line)
	}
	token = line[ind+1:]
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	token := getToken(reader)
	return atoi("token", token)
}

func getLine(reader *bufio.Reader) (line string) {
	var err error
	line, err = reader.ReadString('\n')
	if err != nil {
		if err != io.EOF || line == "" {
			fail("early end of file")
		}
	}
	line = strings.TrimRight(line, "\r\n")
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.TrimSpace(getLine(reader))
		if line != "" && !strings.HasPrefix(line, "%") {
			return
		}
	}
}
