package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/chainsim/internal/chainbinom"
)

// ExportData is the JSON form of a run; States is indexed [time][compartment][replica].
type ExportData struct {
	RunMetadata
	Times  []float64     `json:"times"`
	States [][][]float64 `json:"states"`
}

func NewExportData(meta RunMetadata, traj *chainbinom.Trajectory) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       traj.Times,
		States:      make([][][]float64, len(traj.States)),
	}
	for i, x := range traj.States {
		rows, _ := x.Dims()
		data.States[i] = make([][]float64, rows)
		for c := 0; c < rows; c++ {
			data.States[i][c] = append([]float64(nil), x.RawRowView(c)...)
		}
	}
	return data
}

func ExportJSON(w io.Writer, meta RunMetadata, traj *chainbinom.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, traj))
}
