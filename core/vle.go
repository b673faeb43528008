package core

import (
	"errors"
	"fmt"
	"math"
)

// VLESolver computes the bubble-point temperature of the overhead product for
// a given benzene mole fraction. It is the optional higher-fidelity path for
// the column's overhead temperature; any failure is non-fatal and the caller
// falls back to the clamped correlation.
type VLESolver interface {
	BubblePointC(xBenzene float64) (float64, error)
}

var ErrVLENoSolution = errors.New("vle: no bubble point in search window")

// antoine holds Antoine coefficients for log10(Psat[mmHg]) = A - B/(C+T[degC]).
type antoine struct {
	A, B, C float64
}

func (a antoine) psatMmHg(tC float64) float64 {
	return math.Pow(10, a.A-a.B/(a.C+tC))
}

// AntoineVLE solves the benzene/toluene bubble point at atmospheric pressure
// by bisection with a fixed iteration budget.
type AntoineVLE struct {
	MaxIter int

	benzene antoine
	toluene antoine
}

// NewAntoineVLE returns a solver with published Antoine coefficients for
// benzene and toluene.
func NewAntoineVLE() *AntoineVLE {
	return &AntoineVLE{
		MaxIter: 60,
		benzene: antoine{A: 6.90565, B: 1211.033, C: 220.790},
		toluene: antoine{A: 6.95464, B: 1344.800, C: 219.480},
	}
}

// BubblePointC finds T such that x*PsatB(T) + (1-x)*PsatT(T) = 760 mmHg.
func (s *AntoineVLE) BubblePointC(x float64) (float64, error) {
	if x < 0 || x > 1 || math.IsNaN(x) {
		return 0, fmt.Errorf("vle: benzene fraction %g out of range", x)
	}

	const pTotal = 760.0
	residual := func(t float64) float64 {
		return x*s.benzene.psatMmHg(t) + (1-x)*s.toluene.psatMmHg(t) - pTotal
	}

	// Pure benzene boils near 80 C, pure toluene near 111 C; the window
	// covers both with margin.
	lo, hi := 60.0, 130.0
	fLo, fHi := residual(lo), residual(hi)
	if fLo > 0 || fHi < 0 {
		return 0, ErrVLENoSolution
	}

	iters := s.MaxIter
	if iters <= 0 {
		iters = 60
	}
	for i := 0; i < iters; i++ {
		mid := 0.5 * (lo + hi)
		if residual(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
