// Package taper models the axial variation of waveguide geometry and
// refractive index along a photonic lantern.
//
// A Spec maps a position on the propagation axis to a radius and an index at
// that position. Linear interpolation is built in; arbitrary profiles can be
// registered as pure functions and are validated at registration time so a
// discontinuous profile cannot silently break the geometry of neighbouring
// segments. Evaluation outside the axial domain clamps to the nearest bound.
package taper

import (
	"math"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// endpointTolerance bounds the allowed disagreement between a custom profile
// and the declared start/end radii.
const endpointTolerance = 1e-9

// ProfileFunc computes the radius at axial position z for a profile spanning
// [zStart, zEnd] with radii rStart and rEnd at the bounds. Implementations
// must be pure and continuous on the domain.
type ProfileFunc func(z, zStart, zEnd, rStart, rEnd float64) float64

// Spec is a named taper strategy over a bounded axial domain.
// Radius and index evaluation share the domain and its clamping rule but are
// otherwise independent, so cores and cladding can taper at different rates
// within one structure.
type Spec struct {
	name       string
	zStart     float64
	zEnd       float64
	rStart     float64
	rEnd       float64
	indexStart float64
	indexEnd   float64
	radiusFn   ProfileFunc // nil means linear
	indexFn    ProfileFunc // nil means linear
}

// Point is the evaluated geometry at one axial position.
type Point struct {
	Radius float64
	Index  float64
}

// Linear creates a linearly interpolating taper between (zStart, rStart) and
// (zEnd, rEnd). It fails with an INVALID_TAPER error when the axial bounds
// are not strictly ordered.
func Linear(name string, zStart, zEnd, rStart, rEnd float64) (*Spec, error) {
	if zStart >= zEnd {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"taper %q: start position %g must be before end position %g", name, zStart, zEnd)
	}
	return &Spec{
		name:   name,
		zStart: zStart,
		zEnd:   zEnd,
		rStart: rStart,
		rEnd:   rEnd,
	}, nil
}

// Custom creates a taper driven by fn. The function is validated at
// registration: it must reproduce rStart at zStart and rEnd at zEnd within a
// small tolerance, otherwise registration fails with an INVALID_TAPER error.
func Custom(name string, zStart, zEnd, rStart, rEnd float64, fn ProfileFunc) (*Spec, error) {
	s, err := Linear(name, zStart, zEnd, rStart, rEnd)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "taper %q: profile function is nil", name)
	}
	if got := fn(zStart, zStart, zEnd, rStart, rEnd); math.Abs(got-rStart) > endpointTolerance {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"taper %q: profile yields %g at start, want %g", name, got, rStart)
	}
	if got := fn(zEnd, zStart, zEnd, rStart, rEnd); math.Abs(got-rEnd) > endpointTolerance {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"taper %q: profile yields %g at end, want %g", name, got, rEnd)
	}
	s.radiusFn = fn
	return s, nil
}

// WithIndex sets the refractive indices at the axial bounds. Index evaluation
// interpolates linearly unless WithIndexProfile installs a custom function.
func (s *Spec) WithIndex(indexStart, indexEnd float64) *Spec {
	s.indexStart = indexStart
	s.indexEnd = indexEnd
	return s
}

// WithIndexProfile installs a custom index profile over the same axial
// domain. The function is validated against the declared bound indices like
// a custom radius profile.
func (s *Spec) WithIndexProfile(fn ProfileFunc) (*Spec, error) {
	if fn == nil {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "taper %q: index profile function is nil", s.name)
	}
	if got := fn(s.zStart, s.zStart, s.zEnd, s.indexStart, s.indexEnd); math.Abs(got-s.indexStart) > endpointTolerance {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"taper %q: index profile yields %g at start, want %g", s.name, got, s.indexStart)
	}
	if got := fn(s.zEnd, s.zStart, s.zEnd, s.indexStart, s.indexEnd); math.Abs(got-s.indexEnd) > endpointTolerance {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"taper %q: index profile yields %g at end, want %g", s.name, got, s.indexEnd)
	}
	s.indexFn = fn
	return s, nil
}

// Name returns the taper's name.
func (s *Spec) Name() string { return s.name }

// Domain returns the axial bounds of the taper.
func (s *Spec) Domain() (zStart, zEnd float64) { return s.zStart, s.zEnd }

// Radii returns the radii at the axial bounds.
func (s *Spec) Radii() (rStart, rEnd float64) { return s.rStart, s.rEnd }

// Evaluate returns the radius and index at axial position z.
// Positions outside [zStart, zEnd] clamp to the nearest bound value.
func (s *Spec) Evaluate(z float64) Point {
	return Point{Radius: s.Radius(z), Index: s.Index(z)}
}

// Radius returns the radius at axial position z, clamped to the domain.
func (s *Spec) Radius(z float64) float64 {
	z = clamp(z, s.zStart, s.zEnd)
	if s.radiusFn != nil {
		return s.radiusFn(z, s.zStart, s.zEnd, s.rStart, s.rEnd)
	}
	return lerp(z, s.zStart, s.zEnd, s.rStart, s.rEnd)
}

// Index returns the refractive index at axial position z, clamped to the
// domain.
func (s *Spec) Index(z float64) float64 {
	z = clamp(z, s.zStart, s.zEnd)
	if s.indexFn != nil {
		return s.indexFn(z, s.zStart, s.zEnd, s.indexStart, s.indexEnd)
	}
	return lerp(z, s.zStart, s.zEnd, s.indexStart, s.indexEnd)
}

func clamp(z, lo, hi float64) float64 {
	if z < lo {
		return lo
	}
	if z > hi {
		return hi
	}
	return z
}

func lerp(z, z0, z1, v0, v1 float64) float64 {
	return v0 + (v1-v0)*(z-z0)/(z1-z0)
}

// Properties reports closed-form diagnostics for a linear taper between two
// diameters: the diameter at the given position, the rate of change per unit
// length, and the start/end diameter ratio. Position must lie within
// [0, length].
func Properties(position, startDia, endDia, length float64) (diameter, rate, factor float64, err error) {
	if length <= 0 {
		return 0, 0, 0, errors.New(errors.ErrCodeInvalidTaper, "taper length must be positive, got %g", length)
	}
	if position < 0 || position > length {
		return 0, 0, 0, errors.New(errors.ErrCodeInvalidTaper,
			"position %g outside taper length [0, %g]", position, length)
	}
	rate = (endDia - startDia) / length
	diameter = startDia + rate*position
	if endDia == 0 {
		factor = math.Inf(1)
	} else {
		factor = startDia / endDia
	}
	return diameter, rate, factor, nil
}
