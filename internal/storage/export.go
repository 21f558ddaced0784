package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/ventsim/internal/config"
	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/metrics"
)

// Columns is the header of every series file.
var Columns = []string{"time", "v_in", "dv_in", "p_single", "v_d", "v_e", "v_total", "p", "flow_d", "flow_e", "leak_d", "leak_e"}

func columns(res *experiment.Result) []dynamo.Series {
	return []dynamo.Series{
		res.Times, res.VIn, res.DVIn, res.PSingle,
		res.VD, res.VE, res.VTotal, res.Pressure(),
		res.Right.Flow, res.Left.Flow, res.Right.LeakFlow, res.Left.LeakFlow,
	}
}

func WriteCSV(w io.Writer, res *experiment.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}

	cols := columns(res)
	row := make([]string, len(cols))
	for i := 0; i < res.SampleCount(); i++ {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(c[i], 'g', 10, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Params  *config.Config           `json:"params"`
	Steps   int                      `json:"steps"`
	Series  map[string]dynamo.Series `json:"series"`
	Metrics map[string]float64       `json:"metrics"`
}

// NewExportData collects every series, the parameters and the summary of
// res in one document.
func NewExportData(res *experiment.Result) *ExportData {
	data := &ExportData{
		Params:  config.FromParams(res.Params),
		Steps:   res.SampleCount(),
		Series:  make(map[string]dynamo.Series, len(Columns)),
		Metrics: metrics.Summarize(res).Map(),
	}
	for i, c := range columns(res) {
		data.Series[Columns[i]] = c
	}
	return data
}

func WriteJSON(w io.Writer, res *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(res))
}
