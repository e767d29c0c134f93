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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/adbinterp/interp"
	"github.com/notargets/adbinterp/readfiles"
	"github.com/notargets/adbinterp/search"
)

func newInspectCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "inspect <surface file>",
		Short: "Print the mesh summary and search tree of a surface file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var (
				m      *interp.Mesh
				levels int
				out    = cmd.OutOrStdout()
			)
			if levels, err = cmd.Flags().GetInt("levels"); err != nil {
				return
			}
			leafSize, _ := cmd.Flags().GetInt("max-leaf-size")
			if m, err = readfiles.ReadSurfaceFile(args[0]); err != nil {
				return
			}
			if err = m.Validate(); err != nil {
				return
			}
			m.ComputeGeometry()
			fmt.Fprintf(out, "\"%s\"\t\t= Name\n", m.Name)
			fmt.Fprintf(out, "[%d]\t\t\t= Nodes\n", len(m.Nodes))
			fmt.Fprintf(out, "[%d]\t\t\t= Triangles\n", len(m.Tris))
			fmt.Fprintf(out, "[%d]\t\t\t= Variables\n", m.NumVariables)
			fmt.Fprintf(out, "%v .. %v\t= Bounding Box\n", m.Box.Min, m.Box.Max)
			if len(m.Tris) == 0 {
				return
			}
			var valence []int
			if valence, err = m.Valence(); err != nil {
				return
			}
			var isolated, maxValence int
			for _, v := range valence {
				if v == 0 {
					isolated++
				}
				maxValence = max(maxValence, v)
			}
			fmt.Fprintf(out, "[%d/%d]\t\t\t= Nodes off corners/Max valence\n", isolated, maxValence)
			ec := m.Edges()
			fmt.Fprintf(out, "[%d/%d/%d]\t\t= Edges Total/Open/Non-manifold\n",
				len(ec), len(ec.Open()), len(ec.NonManifold()))
			if n := m.OpenPlaneEdges(); n > 0 {
				fmt.Fprintf(out, "[%d]\t\t\t= Open Edges on y=0, a half model for --symmetry\n", n)
			}
			tree := search.BuildTree(m.SurfaceNodes(), search.TreeOptions{MaxLeafSize: leafSize})
			st := tree.Stats()
			fmt.Fprintf(out, "[%d]\t\t\t= Tree Depth\n", st.Depth)
			fmt.Fprintf(out, "[%d/%d]\t\t\t= Leaves/Internal\n", st.Leaves, st.Internal)
			fmt.Fprintf(out, "[%d,%d] %8.3f\t= Leaf Fill min,max mean\n", st.MinFill, st.MaxFill, st.MeanFill)
			a.log.Debug().Str("file", args[0]).Int("depth", st.Depth).Msg("built tree")
			tree.Walk(func(li int, leaf *search.Leaf) bool {
				if leaf.Level >= levels {
					return false
				}
				indent := strings.Repeat("  ", leaf.Level)
				if leaf.IsTerminal() {
					fmt.Fprintf(out, "%sleaf %d: %d triangles\n", indent, li, leaf.NumberOfNodes())
				} else {
					fmt.Fprintf(out, "%ssplit %d: axis %v at %g, %d triangles\n",
						indent, li, leaf.Axis, leaf.CutOff, leaf.NumberOfNodes())
				}
				return true
			})
			return
		},
	}
	c.Flags().IntP("levels", "l", 3, "tree levels to print")
	c.Flags().Int("max-leaf-size", 0, "largest triangle count of a tree leaf")
	return c
}
