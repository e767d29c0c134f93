package readfiles

import (
	"bytes"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/notargets/adbinterp/interp"
)

// MatchRecord is one row of the correspondence table handed to the load
// tools: which source triangle and corners feed each target node
type MatchRecord struct {
	Node           int32   `parquet:"node"`
	NodeID         int32   `parquet:"node_id"`
	Status         string  `parquet:"status"`
	DonorTri       int32   `parquet:"donor_tri"`
	Donor0         int32   `parquet:"donor_0"`
	Donor1         int32   `parquet:"donor_1"`
	Donor2         int32   `parquet:"donor_2"`
	Weight0        float64 `parquet:"weight_0"`
	Weight1        float64 `parquet:"weight_1"`
	Weight2        float64 `parquet:"weight_2"`
	Distance       float64 `parquet:"distance"`
	NormalDistance float64 `parquet:"normal_distance"`
	Candidates     int32   `parquet:"candidates"`
}

func NewMatchRecords(res *interp.Result) (rows []MatchRecord) {
	rows = make([]MatchRecord, len(res.Matches))
	for i, m := range res.Matches {
		rows[i] = MatchRecord{
			Node:           int32(m.Node),
			NodeID:         int32(res.Mesh.Nodes[m.Node].ID),
			Status:         m.Status.String(),
			DonorTri:       int32(m.DonorTri),
			Donor0:         int32(m.DonorNodes[0]),
			Donor1:         int32(m.DonorNodes[1]),
			Donor2:         int32(m.DonorNodes[2]),
			Weight0:        m.Weights[0],
			Weight1:        m.Weights[1],
			Weight2:        m.Weights[2],
			Distance:       m.Distance,
			NormalDistance: m.NormalDistance,
			Candidates:     int32(m.Candidates),
		}
	}
	return
}

// WriteMatchTable writes the per node correspondence of an interpolation as
// a zstd compressed parquet file
func WriteMatchTable(w io.Writer, res *interp.Result) (err error) {
	pw := parquet.NewGenericWriter[MatchRecord](w, parquet.Compression(&parquet.Zstd))
	if _, err = pw.Write(NewMatchRecords(res)); err != nil {
		_ = pw.Close()
		return
	}
	return pw.Close()
}

func WriteMatchTableFile(filename string, res *interp.Result) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteMatchTable(file, res); err != nil {
		_ = file.Close()
		return
	}
	return file.Close()
}

func ReadMatchTable(data []byte) (rows []MatchRecord, err error) {
	var pf *parquet.File
	if pf, err = parquet.OpenFile(bytes.NewReader(data), int64(len(data))); err != nil {
		return
	}
	pr := parquet.NewGenericReader[MatchRecord](pf)
	defer pr.Close()
	rows = make([]MatchRecord, pr.NumRows())
	for n := 0; n < len(rows); {
		var k int
		k, err = pr.Read(rows[n:])
		n += k
		if err == io.EOF {
			return rows[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}
