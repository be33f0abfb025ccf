package ibs

import "gonum.org/v1/gonum/integrate/quad"

const gaussOrder = 8

var gaussX, gaussW = legendreNodes(gaussOrder)

func legendreNodes(n int) (x, w []float64) {
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return x, w
}

// integrateUniform integrates f over [lo, hi] split into unit-width
// segments, each with a fixed Gauss-Legendre rule.
func integrateUniform(f func(float64) float64, lo, hi float64) float64 {
	segments := int(hi-lo) + 1
	h := (hi - lo) / float64(segments)
	var total float64
	for s := 0; s < segments; s++ {
		a := lo + float64(s)*h
		mid, half := a+h/2, h/2
		for k, xk := range gaussX {
			total += half * gaussW[k] * f(mid+half*xk)
		}
	}
	return total
}
