package InputParameters

import (
	"fmt"
	"io"

	"github.com/ghodss/yaml"

	"github.com/notargets/adbinterp/interp"
)

// Parameters obtained from the YAML input file
type InterpParameters struct {
	Title               string  `json:"Title"`
	SourceFile          string  `json:"SourceFile"`
	TargetFile          string  `json:"TargetFile"`
	OutputFile          string  `json:"OutputFile"`
	MatchTable          string  `json:"MatchTable"` // Parquet correspondence table, optional
	Symmetry            bool    `json:"Symmetry"`
	CmToMeters          bool    `json:"CmToMeters"`
	SwapNormals         bool    `json:"SwapNormals"`
	AnchorFile          bool    `json:"AnchorFile"`
	IgnoreBoundingBox   bool    `json:"IgnoreBoundingBox"`
	StrictInterpolation bool    `json:"StrictInterpolation"`
	IgnoreNormals       bool    `json:"IgnoreNormals"`
	SearchTolerance     float64 `json:"SearchTolerance"`
	NormalTolerance     float64 `json:"NormalTolerance"`
	AreaSlack           float64 `json:"AreaSlack"`
	NormalAlignment     float64 `json:"NormalAlignment"`
	MaxLeafSize         int     `json:"MaxLeafSize"`
	ParallelDegree      int     `json:"ParallelDegree"`
}

func (ip *InterpParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InterpParameters) Config() interp.Config {
	return interp.Config{
		Symmetry:            ip.Symmetry,
		CmToMeters:          ip.CmToMeters,
		SwapNormals:         ip.SwapNormals,
		AnchorFile:          ip.AnchorFile,
		IgnoreBoundingBox:   ip.IgnoreBoundingBox,
		StrictInterpolation: ip.StrictInterpolation,
		IgnoreNormals:       ip.IgnoreNormals,
		SearchTolerance:     ip.SearchTolerance,
		NormalTolerance:     ip.NormalTolerance,
		AreaSlack:           ip.AreaSlack,
		NormalAlignment:     ip.NormalAlignment,
		MaxLeafSize:         ip.MaxLeafSize,
		ParallelDegree:      ip.ParallelDegree,
	}
}

func (ip *InterpParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t= Source\n", ip.SourceFile)
	fmt.Fprintf(w, "[%s]\t\t= Target\n", ip.TargetFile)
	fmt.Fprintf(w, "[%s]\t\t= Output\n", ip.OutputFile)
	if ip.MatchTable != "" {
		fmt.Fprintf(w, "[%s]\t\t= Match Table\n", ip.MatchTable)
	}
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"Symmetry", ip.Symmetry},
		{"CmToMeters", ip.CmToMeters},
		{"SwapNormals", ip.SwapNormals},
		{"AnchorFile", ip.AnchorFile},
		{"IgnoreBoundingBox", ip.IgnoreBoundingBox},
		{"StrictInterpolation", ip.StrictInterpolation},
		{"IgnoreNormals", ip.IgnoreNormals},
	} {
		if f.on {
			fmt.Fprintf(w, "%s\t\t= on\n", f.name)
		}
	}
	fmt.Fprintf(w, "%8.5f\t\t= Search Tolerance (0 = derived)\n", ip.SearchTolerance)
	fmt.Fprintf(w, "%8.5f\t\t= Normal Tolerance (0 = derived)\n", ip.NormalTolerance)
	fmt.Fprintf(w, "%8.5f\t\t= Normal Alignment\n", ip.NormalAlignment)
}

// Merge copies the fields of over that set reports as given, set being
// called with the parameters file name of each field
func (ip *InterpParameters) Merge(over *InterpParameters, set func(field string) bool) {
	merge(set, "Title", &ip.Title, over.Title)
	merge(set, "SourceFile", &ip.SourceFile, over.SourceFile)
	merge(set, "TargetFile", &ip.TargetFile, over.TargetFile)
	merge(set, "OutputFile", &ip.OutputFile, over.OutputFile)
	merge(set, "MatchTable", &ip.MatchTable, over.MatchTable)
	merge(set, "Symmetry", &ip.Symmetry, over.Symmetry)
	merge(set, "CmToMeters", &ip.CmToMeters, over.CmToMeters)
	merge(set, "SwapNormals", &ip.SwapNormals, over.SwapNormals)
	merge(set, "AnchorFile", &ip.AnchorFile, over.AnchorFile)
	merge(set, "IgnoreBoundingBox", &ip.IgnoreBoundingBox, over.IgnoreBoundingBox)
	merge(set, "StrictInterpolation", &ip.StrictInterpolation, over.StrictInterpolation)
	merge(set, "IgnoreNormals", &ip.IgnoreNormals, over.IgnoreNormals)
	merge(set, "SearchTolerance", &ip.SearchTolerance, over.SearchTolerance)
	merge(set, "NormalTolerance", &ip.NormalTolerance, over.NormalTolerance)
	merge(set, "AreaSlack", &ip.AreaSlack, over.AreaSlack)
	merge(set, "NormalAlignment", &ip.NormalAlignment, over.NormalAlignment)
	merge(set, "MaxLeafSize", &ip.MaxLeafSize, over.MaxLeafSize)
	merge(set, "ParallelDegree", &ip.ParallelDegree, over.ParallelDegree)
}

func merge[T any](set func(string) bool, field string, dst *T, v T) {
	if set(field) {
		*dst = v
	}
}
