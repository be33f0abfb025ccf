package viz

import (
	"errors"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ibsim/internal/beam"
)

var ErrUnknownQuantity = errors.New("viz: unknown quantity")

// Quantities lists the plottable series names.
var Quantities = []string{"ex", "ey", "sigs", "sige"}

// Series returns the named trajectory series.
func Series(tr *beam.Trajectory, name string) ([]float64, error) {
	switch name {
	case "ex":
		return tr.Ex, nil
	case "ey":
		return tr.Ey, nil
	case "sigs":
		return tr.Sigs, nil
	case "sige":
		return tr.Sige, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
}

type PlotOptions struct {
	Width  int
	Height int
	// Log plots log10 of the values.
	Log bool
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 15
	}
	return o
}

// PlotTrajectory renders one quantity as a terminal line chart.
func PlotTrajectory(tr *beam.Trajectory, quantity string, opts PlotOptions) (string, error) {
	data, err := Series(tr, quantity)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrUnknownQuantity, quantity)
	}
	opts = opts.withDefaults()

	caption := quantity + " vs step"
	if opts.Log {
		data = log10(data)
		caption = "log10 " + caption
	}

	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	), nil
}

// PlotGrowth renders ex, ey and sigs relative to their seed values in one
// chart.
func PlotGrowth(tr *beam.Trajectory, opts PlotOptions) string {
	opts = opts.withDefaults()
	n := tr.MinLen()
	if n == 0 {
		return ""
	}

	series := make([][]float64, 0, 3)
	for _, xs := range [][]float64{tr.Ex[:n], tr.Ey[:n], tr.Sigs[:n]} {
		rel := make([]float64, n)
		for i, v := range xs {
			rel[i] = v / xs[0]
		}
		series = append(series, rel)
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.SeriesLegends("ex/ex0", "ey/ey0", "sigs/sigs0"),
		asciigraph.Caption("growth relative to seed"),
	)
}

func log10(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = math.Log10(v)
	}
	return out
}
