package lattice

import (
	"fmt"
	"sort"
)

// Optics column names.
const (
	ColLength = "L"
	ColBetX   = "BETX"
	ColBetY   = "BETY"
	ColAlfX   = "ALFX"
	ColAlfY   = "ALFY"
	ColDX     = "DX"
	ColDPX    = "DPX"
	ColDY     = "DY"
	ColDPY    = "DPY"
	ColAngle  = "ANGLE"
	ColK1L    = "K1L"
)

// Columns lists every column the radiation and IBS packages read.
var Columns = []string{
	ColLength, ColBetX, ColBetY, ColAlfX, ColAlfY, ColDX, ColDPX, ColDY, ColDPY, ColAngle, ColK1L,
}

// Element is one row of the optics table.
type Element struct {
	L     float64
	BetX  float64
	BetY  float64
	AlfX  float64
	AlfY  float64
	DX    float64
	DPX   float64
	DY    float64
	DPY   float64
	Angle float64
	K1L   float64
}

// GammaX returns the horizontal twiss gamma (1+α²)/β.
func (e Element) GammaX() float64 { return (1 + e.AlfX*e.AlfX) / e.BetX }

func (e Element) GammaY() float64 { return (1 + e.AlfY*e.AlfY) / e.BetY }

// HX is the horizontal dispersion invariant γD² + 2αDD' + βD'².
func (e Element) HX() float64 {
	return e.GammaX()*e.DX*e.DX + 2*e.AlfX*e.DX*e.DPX + e.BetX*e.DPX*e.DPX
}

func (e Element) HY() float64 {
	return e.GammaY()*e.DY*e.DY + 2*e.AlfY*e.DY*e.DPY + e.BetY*e.DPY*e.DPY
}

// PhiX is D' + αD/β.
func (e Element) PhiX() float64 { return e.DPX + e.AlfX*e.DX/e.BetX }

func (e Element) PhiY() float64 { return e.DPY + e.AlfY*e.DY/e.BetY }

// Optics maps a quantity name to one value per lattice element.
type Optics struct {
	cols map[string][]float64
	n    int
}

func NewOptics(cols map[string][]float64) (*Optics, error) {
	o := &Optics{cols: make(map[string][]float64, len(cols)), n: -1}
	for name, v := range cols {
		c := make([]float64, len(v))
		copy(c, v)
		o.cols[name] = c
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Optics) Validate() error {
	o.n = -1
	for _, name := range Columns {
		v, ok := o.cols[name]
		if !ok {
			return fmt.Errorf("%w: missing column %s", ErrInvalidOptics, name)
		}
		if o.n < 0 {
			o.n = len(v)
		} else if len(v) != o.n {
			return fmt.Errorf("%w: column %s has %d rows, want %d", ErrInvalidOptics, name, len(v), o.n)
		}
	}
	if o.n == 0 {
		return fmt.Errorf("%w: no elements", ErrInvalidOptics)
	}
	return nil
}

// Get returns the column for name, or nil if absent.
func (o *Optics) Get(name string) []float64 {
	return o.cols[name]
}

func (o *Optics) Len() int { return o.n }

func (o *Optics) Names() []string {
	names := make([]string, 0, len(o.cols))
	for k := range o.cols {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (o *Optics) Element(i int) Element {
	return Element{
		L:     o.cols[ColLength][i],
		BetX:  o.cols[ColBetX][i],
		BetY:  o.cols[ColBetY][i],
		AlfX:  o.cols[ColAlfX][i],
		AlfY:  o.cols[ColAlfY][i],
		DX:    o.cols[ColDX][i],
		DPX:   o.cols[ColDPX][i],
		DY:    o.cols[ColDY][i],
		DPY:   o.cols[ColDPY][i],
		Angle: o.cols[ColAngle][i],
		K1L:   o.cols[ColK1L][i],
	}
}

// Elements materialises every row.
func (o *Optics) Elements() []Element {
	out := make([]Element, o.n)
	for i := range out {
		out[i] = o.Element(i)
	}
	return out
}

// TotalLength sums the element lengths.
func (o *Optics) TotalLength() float64 {
	sum := 0.0
	for _, l := range o.cols[ColLength] {
		sum += l
	}
	return sum
}
