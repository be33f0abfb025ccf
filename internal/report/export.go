package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/ibsim/internal/beam"
)

var csvHeader = []string{"t", "ex", "ey", "sigs"}

// ErrMalformedCSV is returned by ReadCSV for unexpected headers or values.
var ErrMalformedCSV = errors.New("report: malformed trajectory csv")

// WriteCSV writes one row per sample, truncated to the shortest series.
func WriteCSV(w io.Writer, tr *beam.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	n := tr.MinLen()
	for i := 0; i < n; i++ {
		row := []string{
			strconv.FormatFloat(tr.T[i], 'g', -1, 64),
			strconv.FormatFloat(tr.Ex[i], 'g', -1, 64),
			strconv.FormatFloat(tr.Ey[i], 'g', -1, 64),
			strconv.FormatFloat(tr.Sigs[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV. The energy spread is not stored
// and reads back empty; see RestoreEnergySpread.
func ReadCSV(r io.Reader) (*beam.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 || records[0][0] != csvHeader[0] {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}

	tr := &beam.Trajectory{}
	cols := []*[]float64{&tr.T, &tr.Ex, &tr.Ey, &tr.Sigs}
	for line, rec := range records[1:] {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line+2, err)
			}
			*cols[j] = append(*cols[j], v)
		}
	}
	return tr, nil
}

// RestoreEnergySpread fills tr.Sige from tr.Sigs. Every sample of a run
// lies on the same linear bucket mapping, so one sample with both values
// (usually the final one) fixes it. Nothing is filled when ref does not
// carry a usable ratio.
func RestoreEnergySpread(tr *beam.Trajectory, ref beam.Point) bool {
	ratio := ref.Sige / ref.Sigs
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return false
	}
	tr.Sige = make([]float64, len(tr.Sigs))
	for i, s := range tr.Sigs {
		tr.Sige[i] = s * ratio
	}
	return true
}

// Export is the JSON document written by WriteJSON.
type Export struct {
	ID         string             `json:"id,omitempty"`
	Model      string             `json:"model"`
	Scheme     string             `json:"scheme"`
	Steps      int                `json:"steps"`
	Budget     int                `json:"budget"`
	Converged  bool               `json:"converged"`
	Valid      bool               `json:"valid"`
	Constants  beam.Constants     `json:"constants"`
	FinalRates beam.Rates         `json:"final_rates"`
	Trajectory *beam.Trajectory   `json:"trajectory"`
	Sige2      []float64          `json:"sige2"`
	Invalid    []beam.Violation   `json:"invalid,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func NewExport(model string, res *beam.Result) Export {
	return Export{
		Model:      model,
		Scheme:     res.Scheme,
		Steps:      res.Steps,
		Budget:     res.Budget,
		Converged:  res.Converged,
		Valid:      res.Valid,
		Constants:  res.Constants,
		FinalRates: res.FinalRates,
		Trajectory: res.Trajectory,
		Sige2:      res.Trajectory.Sige2(),
		Invalid:    res.Invalid,
		Metrics:    res.Metrics,
	}
}

func WriteJSON(w io.Writer, e Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
