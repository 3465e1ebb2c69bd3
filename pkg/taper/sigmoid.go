package taper

import "math"

// SigmoidParams shape the three-sigmoid taper ratio. Centers and widths are
// fractions of the taper length; weights should sum to 1.
type SigmoidParams struct {
	Center1, Center2, Center3 float64
	Width1, Width2, Width3    float64
	Weight1, Weight2, Weight3 float64
}

// DefaultSigmoidParams returns the standard three-sigmoid shape: a slow
// onset, a steep middle transition and a slow tail.
func DefaultSigmoidParams() SigmoidParams {
	return SigmoidParams{
		Center1: 0.33, Center2: 0.5, Center3: 0.67,
		Width1: 1.0 / 6, Width2: 1.0 / 10, Width3: 1.0 / 6,
		Weight1: 0.1, Weight2: 0.8, Weight3: 0.1,
	}
}

func sigmoid(x, center, width float64) float64 {
	return 1 / (1 + math.Exp(-(x-center)/width))
}

// ratio evaluates the raw weighted sigmoid combination at z for a taper of
// the given length. The result lies in (0, 1) but does not reach the bounds
// exactly.
func (p SigmoidParams) ratio(z, length float64) float64 {
	s1 := sigmoid(z, length*p.Center1, length*p.Width1)
	s2 := sigmoid(z, length*p.Center2, length*p.Width2)
	s3 := sigmoid(z, length*p.Center3, length*p.Width3)
	return p.Weight1*s1 + p.Weight2*s2 + p.Weight3*s3
}

// Ratio evaluates the sigmoid taper ratio at z, normalized so that it is
// exactly 0 at z = 0 and exactly 1 at z = length. The normalization keeps
// the profile compatible with the endpoint continuity check in Custom.
func (p SigmoidParams) Ratio(z, length float64) float64 {
	lo := p.ratio(0, length)
	hi := p.ratio(length, length)
	if hi == lo {
		return 0
	}
	return (p.ratio(z, length) - lo) / (hi - lo)
}

// SigmoidProfile returns a ProfileFunc interpolating between the bound radii
// along the normalized sigmoid ratio. Use with Custom to obtain a validated
// sigmoid taper:
//
//	spec, err := taper.Custom("cap", 0, length, r0, r1,
//	    taper.SigmoidProfile(taper.DefaultSigmoidParams()))
func SigmoidProfile(p SigmoidParams) ProfileFunc {
	return func(z, zStart, zEnd, rStart, rEnd float64) float64 {
		t := p.Ratio(z-zStart, zEnd-zStart)
		return rStart + (rEnd-rStart)*t
	}
}
