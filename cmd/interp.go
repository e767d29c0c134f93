/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/notargets/adbinterp/InputParameters"
	"github.com/notargets/adbinterp/interp"
	"github.com/notargets/adbinterp/metrics"
	"github.com/notargets/adbinterp/readfiles"
)

const exampleFile = `
########################################
Title: "Wing body loads"
SourceFile: cfd.su2
TargetFile: fem.su2
OutputFile: loads.su2
MatchTable: matches.parquet # Optional
Symmetry: true              # Source is a half model
CmToMeters: false
SwapNormals: false
StrictInterpolation: false
NormalAlignment: 0          # -1 accepts opposed normals
########################################
`

func newInterpCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "interp",
		Short: "Interpolate a source surface solution onto a target surface mesh",
		Long: `
Reads the source and target surface files, transfers the source solution onto
every target node and writes the target with its new solution.

Values set by flag, ADBINTERP_ environment variable or config file override
the parameters file.` + "\n" + exampleFile,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return a.v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := a.interpParameters()
			if err != nil {
				return err
			}
			if a.v.GetBool("verbose") {
				ip.Print(cmd.OutOrStdout())
			}
			return a.runInterp(cmd, ip)
		},
	}
	f := c.Flags()
	f.StringP("parameters", "I", "", "YAML parameters file")
	f.StringP("source", "S", "", "source surface file carrying the solution")
	f.StringP("target", "T", "", "target surface file")
	f.StringP("output", "O", "", "output surface file")
	f.String("match-table", "", "parquet file for the per node correspondence")
	f.String("metrics-file", "", "write the run metrics in Prometheus text format")
	f.String("profile", "", "profile the run: cpu or mem")
	f.String("profile-dir", ".", "directory for profile output")
	f.BoolP("verbose", "v", false, "print the resolved parameters")
	f.Bool("symmetry", false, "mirror the source half model through y=0")
	f.Bool("cm-to-meters", false, "source lengths are in centimeters")
	f.Bool("swap-normals", false, "reverse the source triangle orientation")
	f.Bool("anchor-file", false, "keep the target reference quantities")
	f.Bool("ignore-bounding-box", false, "search target nodes outside the source envelope")
	f.Bool("strict", false, "fail on the first target node without a containing donor")
	f.Bool("ignore-normals", false, "skip the normal checks on the first pass")
	f.Float64("search-tolerance", 0, "tangential search tolerance, 0 derives it from the source")
	f.Float64("normal-tolerance", 0, "normal distance tolerance, 0 derives it from the source")
	f.Float64("area-slack", 0, "relative area slack of the containment test")
	f.Float64("normal-alignment", 0, "minimum cosine between target and donor normals")
	f.Int("max-leaf-size", 0, "largest triangle count of a tree leaf")
	f.IntP("parallel", "p", 0, "number of worker goroutines, 0 uses every CPU")
	return c
}

// parameterKeys maps parameters file fields to their flag names
var parameterKeys = map[string]string{
	"SourceFile":          "source",
	"TargetFile":          "target",
	"OutputFile":          "output",
	"MatchTable":          "match-table",
	"Symmetry":            "symmetry",
	"CmToMeters":          "cm-to-meters",
	"SwapNormals":         "swap-normals",
	"AnchorFile":          "anchor-file",
	"IgnoreBoundingBox":   "ignore-bounding-box",
	"StrictInterpolation": "strict",
	"IgnoreNormals":       "ignore-normals",
	"SearchTolerance":     "search-tolerance",
	"NormalTolerance":     "normal-tolerance",
	"AreaSlack":           "area-slack",
	"NormalAlignment":     "normal-alignment",
	"MaxLeafSize":         "max-leaf-size",
	"ParallelDegree":      "parallel",
}

// interpParameters resolves the parameters file against the flags, config
// file and environment
func (a *app) interpParameters() (ip *InputParameters.InterpParameters, err error) {
	ip = &InputParameters.InterpParameters{}
	if fn := a.v.GetString("parameters"); fn != "" {
		var data []byte
		if data, err = os.ReadFile(fn); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fn, err)
		}
	}
	ip.Merge(&InputParameters.InterpParameters{
		SourceFile:          a.v.GetString("source"),
		TargetFile:          a.v.GetString("target"),
		OutputFile:          a.v.GetString("output"),
		MatchTable:          a.v.GetString("match-table"),
		Symmetry:            a.v.GetBool("symmetry"),
		CmToMeters:          a.v.GetBool("cm-to-meters"),
		SwapNormals:         a.v.GetBool("swap-normals"),
		AnchorFile:          a.v.GetBool("anchor-file"),
		IgnoreBoundingBox:   a.v.GetBool("ignore-bounding-box"),
		StrictInterpolation: a.v.GetBool("strict"),
		IgnoreNormals:       a.v.GetBool("ignore-normals"),
		SearchTolerance:     a.v.GetFloat64("search-tolerance"),
		NormalTolerance:     a.v.GetFloat64("normal-tolerance"),
		AreaSlack:           a.v.GetFloat64("area-slack"),
		NormalAlignment:     a.v.GetFloat64("normal-alignment"),
		MaxLeafSize:         a.v.GetInt("max-leaf-size"),
		ParallelDegree:      a.v.GetInt("parallel"),
	}, func(field string) bool {
		key, ok := parameterKeys[field]
		return ok && a.v.IsSet(key)
	})
	var missing []error
	if ip.SourceFile == "" {
		missing = append(missing, errors.New("must supply a source file (-S, --source)"))
	}
	if ip.TargetFile == "" {
		missing = append(missing, errors.New("must supply a target file (-T, --target)"))
	}
	if ip.OutputFile == "" {
		missing = append(missing, errors.New("must supply an output file (-O, --output)"))
	}
	if err = errors.Join(missing...); err != nil {
		return nil, err
	}
	return
}

func (a *app) runInterp(cmd *cobra.Command, ip *InputParameters.InterpParameters) (err error) {
	switch a.v.GetString("profile") {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(a.v.GetString("profile-dir")),
			profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(a.v.GetString("profile-dir")),
			profile.NoShutdownHook, profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q, want cpu or mem", a.v.GetString("profile"))
	}
	var src, tgt *interp.Mesh
	if src, err = readfiles.ReadSurfaceFile(ip.SourceFile); err != nil {
		return
	}
	if tgt, err = readfiles.ReadSurfaceFile(ip.TargetFile); err != nil {
		return
	}
	a.log.Info().
		Str("source", ip.SourceFile).
		Int("source_nodes", len(src.Nodes)).
		Int("source_triangles", len(src.Tris)).
		Str("target", ip.TargetFile).
		Int("target_nodes", len(tgt.Nodes)).
		Msg("read surfaces")

	reg := prometheus.NewRegistry()
	ipr := interp.New(ip.Config(),
		interp.WithLogger(a.log),
		interp.WithMetrics(metrics.NewRecorder(reg)))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var res *interp.Result
	if res, err = ipr.Interpolate(ctx, src, tgt); err != nil {
		return
	}
	if err = readfiles.WriteSurfaceFile(ip.OutputFile, res.Mesh); err != nil {
		return
	}
	if ip.MatchTable != "" {
		if err = readfiles.WriteMatchTableFile(ip.MatchTable, res); err != nil {
			return
		}
	}
	if fn := a.v.GetString("metrics-file"); fn != "" {
		if err = prometheus.WriteToTextfile(fn, reg); err != nil {
			return
		}
	}
	s := res.Summary
	fmt.Fprintf(cmd.OutOrStdout(), "%d nodes: %d matched, %d fallback, %d unmatched, %d outside the source\n",
		s.TotalNodes, s.Matched, s.FallbackMatched, s.Unmatched, s.OutOfEnvelope)
	if s.WorstNode >= 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "max distance %g at node %d, mean %g\n",
			s.MaxDistance, res.Mesh.Nodes[s.WorstNode].ID, s.AvgDistance)
	}
	return
}
