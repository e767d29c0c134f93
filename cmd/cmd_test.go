package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/adbinterp/interp"
	"github.com/notargets/adbinterp/readfiles"
	"github.com/notargets/adbinterp/search"
)

func surface(name string, pts []r3.Vec, tris [][3]int, field func(p r3.Vec) float64) *interp.Mesh {
	m := &interp.Mesh{Name: name, StagnationTri: -1}
	for i, p := range pts {
		nd := interp.Node{ID: i + 1, XYZ: p}
		if field != nil {
			nd.Variable[search.VarCp] = field(p)
		}
		m.Nodes = append(m.Nodes, nd)
	}
	for k, t := range tris {
		m.Tris = append(m.Tris, interp.Tri{Node: t, MidEdge: [3]int{-1, -1, -1}, ID: k})
	}
	if field != nil {
		m.NumVariables = 1
	}
	return m
}

// writeCase writes a unit square source carrying Cp = x and a smaller
// target triangle inside it
func writeCase(t *testing.T) (dir string) {
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("ADBINTERP_LOG_FORMAT", "json")
	t.Setenv("ADBINTERP_LOG_LEVEL", "info")
	src := surface("cfd",
		[]r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		func(p r3.Vec) float64 { return p.X })
	src.Reference = interp.Reference{Area: 4, Chord: 1, Span: 4}
	tgt := surface("fem",
		[]r3.Vec{{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.25}, {X: 0.75, Y: 0.75}},
		[][3]int{{0, 1, 2}}, nil)
	require.NoError(t, readfiles.WriteSurfaceFile(filepath.Join(dir, "cfd.su2"), src))
	require.NoError(t, readfiles.WriteSurfaceFile(filepath.Join(dir, "fem.su2"), tgt))
	return
}

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env", ""))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestInterpCommand(t *testing.T) {
	dir := writeCase(t)
	var (
		output  = filepath.Join(dir, "loads.su2")
		table   = filepath.Join(dir, "matches.parquet")
		metrics = filepath.Join(dir, "metrics.prom")
	)
	stdout, stderr, err := execute("interp",
		"-S", filepath.Join(dir, "cfd.su2"),
		"-T", filepath.Join(dir, "fem.su2"),
		"-O", output,
		"--match-table", table,
		"--metrics-file", metrics,
		"-p", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 nodes: 3 matched, 0 fallback, 0 unmatched, 0 outside the source")
	assert.Contains(t, stderr, `"message":"interpolation complete"`)

	m, err := readfiles.ReadSurfaceFile(output)
	require.NoError(t, err)
	require.Len(t, m.Nodes, 3)
	assert.Equal(t, "fem", m.Name)
	assert.Equal(t, 1, m.NumVariables)
	assert.Equal(t, 4., m.Reference.Area)
	for i, want := range []float64{0.25, 0.75, 0.75} {
		assert.InDelta(t, want, m.Nodes[i].Variable[search.VarCp], 1e-12)
	}

	data, err := os.ReadFile(table)
	require.NoError(t, err)
	rows, err := readfiles.ReadMatchTable(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(3), rows[2].NodeID)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `adbinterp_nodes_total{status="matched"} 3`)
}

func TestInterpParametersFile(t *testing.T) {
	dir := writeCase(t)
	params := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(params, []byte(`
Title: anchored
SourceFile: `+filepath.Join(dir, "cfd.su2")+`
TargetFile: `+filepath.Join(dir, "fem.su2")+`
OutputFile: `+filepath.Join(dir, "out.su2")+`
AnchorFile: true
StrictInterpolation: true
`), 0o644))
	stdout, _, err := execute("interp", "-I", params, "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "AnchorFile")
	assert.Contains(t, stdout, "StrictInterpolation")

	m, err := readfiles.ReadSurfaceFile(filepath.Join(dir, "out.su2"))
	require.NoError(t, err)
	assert.Equal(t, 0., m.Reference.Area)
}

func TestInterpFlagsOverrideParameters(t *testing.T) {
	dir := writeCase(t)
	params := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(params, []byte(`
SourceFile: `+filepath.Join(dir, "cfd.su2")+`
TargetFile: `+filepath.Join(dir, "fem.su2")+`
OutputFile: `+filepath.Join(dir, "out.su2")+`
StrictInterpolation: true
NormalAlignment: -1
`), 0o644))
	{ // The file alone
		stdout, _, err := execute("interp", "-I", params, "-v")
		require.NoError(t, err)
		assert.Contains(t, stdout, "StrictInterpolation")
		assert.Contains(t, stdout, "-1.00000\t\t= Normal Alignment")
	}
	{ // False and zero flags win over the file
		stdout, _, err := execute("interp", "-I", params, "-v", "--strict=false", "--normal-alignment", "0")
		require.NoError(t, err)
		assert.NotContains(t, stdout, "StrictInterpolation")
		assert.Contains(t, stdout, " 0.00000\t\t= Normal Alignment")
	}
	{ // So do environment variables
		t.Setenv("ADBINTERP_STRICT", "false")
		stdout, _, err := execute("interp", "-I", params, "-v")
		require.NoError(t, err)
		assert.NotContains(t, stdout, "StrictInterpolation")
	}
}

func TestInterpErrors(t *testing.T) {
	dir := writeCase(t)
	_, _, err := execute("interp", "-S", filepath.Join(dir, "cfd.su2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target file")
	assert.Contains(t, err.Error(), "output file")

	_, _, err = execute("interp",
		"-S", filepath.Join(dir, "cfd.su2"),
		"-T", filepath.Join(dir, "fem.su2"),
		"-O", filepath.Join(dir, "out.su2"),
		"--profile", "gpu")
	assert.Error(t, err)

	_, _, err = execute("interp",
		"-S", filepath.Join(dir, "missing.su2"),
		"-T", filepath.Join(dir, "fem.su2"),
		"-O", filepath.Join(dir, "out.su2"))
	assert.Error(t, err)

	t.Setenv("ADBINTERP_LOG_LEVEL", "chatty")
	_, _, err = execute("inspect", filepath.Join(dir, "cfd.su2"))
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	dir := writeCase(t)
	stdout, _, err := execute("inspect", filepath.Join(dir, "cfd.su2"), "--max-leaf-size", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"cfd\"")
	assert.Contains(t, stdout, "[2]\t\t\t= Triangles")
	assert.Contains(t, stdout, "= Tree Depth")
	assert.Contains(t, stdout, "[0/2]\t\t\t= Nodes off corners/Max valence")
	assert.Contains(t, stdout, "[5/4/0]\t\t= Edges Total/Open/Non-manifold")
	assert.Contains(t, stdout, "[1]\t\t\t= Open Edges on y=0")
	assert.Contains(t, stdout, "split 0")
	assert.Contains(t, stdout, "leaf")

	_, _, err = execute("inspect")
	assert.Error(t, err)
}
