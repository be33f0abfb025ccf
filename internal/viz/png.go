package viz

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/ibsim/internal/beam"
)

// SavePNG writes one panel per quantity against time. Panels of strictly
// positive series get a logarithmic y axis.
func SavePNG(path string, tr *beam.Trajectory, quantities []string, title string) error {
	if len(quantities) == 0 {
		quantities = []string{"ex", "ey", "sigs"}
	}
	n := tr.MinLen()
	if n == 0 {
		return fmt.Errorf("%w: empty trajectory", ErrUnknownQuantity)
	}

	plots := make([][]*plot.Plot, len(quantities))
	for i, q := range quantities {
		ys, err := Series(tr, q)
		if err != nil {
			return err
		}
		if len(ys) == 0 {
			return fmt.Errorf("%w: %s is empty", ErrUnknownQuantity, q)
		}
		p, err := linePlot(tr.T[:n], ys[:min(n, len(ys))], q)
		if err != nil {
			return err
		}
		if i == 0 {
			p.Title.Text = title
		}
		plots[i] = []*plot.Plot{p}
	}

	return savePlots(plots, path, 8, 3*float64(len(quantities)))
}

func linePlot(ts, ys []float64, name string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = name
	if floats.Min(ys) > 0 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i].X = ts[i]
		pts[i].Y = ys[i]
	}
	if err := plotutil.AddLines(p, name, pts); err != nil {
		return nil, err
	}
	return p, nil
}

func savePlots(plots [][]*plot.Plot, filename string, widthIn, heightIn float64) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	dc := draw.New(c)
	tiles := draw.Tiles{Rows: len(plots), Cols: 1}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
