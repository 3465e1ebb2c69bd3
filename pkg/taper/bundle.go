package taper

import (
	"math"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// BundleParams describe the physical structure whose taper is modelled:
// a bundle of fibres inside a shrinking capillary. Lengths and diameters are
// in microns.
type BundleParams struct {
	Points           int           // number of samples along the z axis
	TaperLength      float64       // axial extent of the taper
	CladdingDiameter float64       // fibre cladding diameter at z = 0
	FinalCladdingDia float64       // fibre cladding diameter at z = length; 0 derives it from FinalCapillaryID
	CapillaryID      float64       // capillary inner diameter at z = 0 (the bundle diameter)
	FinalCapillaryID float64       // capillary inner diameter at z = length
	CapillaryOD      float64       // capillary outer diameter at z = 0
	ProfileParams    SigmoidParams // sigmoid shape, zero value selects the defaults
	Sigmoid          bool          // interpolate along the sigmoid ratio instead of linearly
}

// BundleModel is a discretized model of the whole lantern taper: per-z fibre
// diameters, fibre positions scaled into the shrinking capillary, and the
// capillary's inner and outer diameters.
type BundleModel struct {
	Z              []float64
	FiberDiameter  []float64      // one shared cladding diameter per z sample
	FiberPositions [][][2]float64 // [z sample][fibre index]{x, y}
	CapillaryInner []float64
	CapillaryOuter []float64
	Labels         []string
}

// Endpoint carries the geometry of a structure at the far end of the taper,
// keyed by the segment property names used in the circuit model.
type Endpoint struct {
	X, Y, Z       float64
	Height, Width float64
}

// ModelBundle computes the taper model for fibres at the given initial
// positions (generation order is preserved; labels parallel positions).
// The taper ratio runs from 0 at z = 0 to 1 at z = TaperLength, linearly by
// default or along the normalized sigmoid when Sigmoid is set.
func ModelBundle(params BundleParams, labels []string, positions [][2]float64) (*BundleModel, error) {
	if len(labels) != len(positions) {
		return nil, errors.New(errors.ErrCodeInvalidTaper,
			"label count %d does not match position count %d", len(labels), len(positions))
	}
	if len(positions) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "bundle model requires at least one fibre")
	}
	if params.Points < 2 {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "bundle model requires at least 2 z samples, got %d", params.Points)
	}
	if params.TaperLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "taper length must be positive, got %g", params.TaperLength)
	}
	if params.CapillaryID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidTaper, "capillary inner diameter must be positive, got %g", params.CapillaryID)
	}

	finalCladding := params.FinalCladdingDia
	if finalCladding == 0 {
		// Derive a final cladding diameter that keeps the bundle packed
		// inside the final capillary bore.
		n := float64(len(positions))
		if len(positions) > 1 {
			finalCladding = params.FinalCapillaryID / (1 + 2/math.Sqrt(n))
		} else {
			finalCladding = params.FinalCapillaryID / 3
		}
	}

	m := &BundleModel{
		Z:              make([]float64, params.Points),
		FiberDiameter:  make([]float64, params.Points),
		FiberPositions: make([][][2]float64, params.Points),
		CapillaryInner: make([]float64, params.Points),
		CapillaryOuter: make([]float64, params.Points),
		Labels:         append([]string(nil), labels...),
	}

	sig := params.ProfileParams
	if sig == (SigmoidParams{}) {
		sig = DefaultSigmoidParams()
	}
	var profile ProfileFunc
	if params.Sigmoid {
		profile = SigmoidProfile(sig)
	}
	newSpec := func(name string, d0, d1 float64) (*Spec, error) {
		if profile != nil {
			return Custom(name, 0, params.TaperLength, d0, d1, profile)
		}
		return Linear(name, 0, params.TaperLength, d0, d1)
	}
	innerSpec, err := newSpec("capillary_inner", params.CapillaryID, params.FinalCapillaryID)
	if err != nil {
		return nil, err
	}
	// The outer wall thins in proportion to the bore.
	outerSpec, err := newSpec("capillary_outer", params.CapillaryOD,
		params.CapillaryOD*params.FinalCapillaryID/params.CapillaryID)
	if err != nil {
		return nil, err
	}
	claddingSpec, err := newSpec("fiber_cladding", params.CladdingDiameter, finalCladding)
	if err != nil {
		return nil, err
	}

	initialAvailable := params.CapillaryID/2 - params.CladdingDiameter/2
	for i := 0; i < params.Points; i++ {
		z := params.TaperLength * float64(i) / float64(params.Points-1)

		inner := innerSpec.Radius(z)
		outer := outerSpec.Radius(z)
		dia := claddingSpec.Radius(z)

		// Fibre centres scale with the free radius inside the bore, so the
		// bundle contracts with the capillary.
		scale := 0.0
		if initialAvailable > 0 {
			scale = (inner/2 - dia/2) / initialAvailable
		}

		pts := make([][2]float64, len(positions))
		for j, p := range positions {
			pts[j] = [2]float64{p[0] * scale, p[1] * scale}
		}

		m.Z[i] = z
		m.FiberDiameter[i] = dia
		m.FiberPositions[i] = pts
		m.CapillaryInner[i] = inner
		m.CapillaryOuter[i] = outer
	}

	return m, nil
}

// CladdingEndpoints returns, per fibre label, the cladding geometry at the
// far end of the taper.
func (m *BundleModel) CladdingEndpoints() map[string]Endpoint {
	last := len(m.Z) - 1
	out := make(map[string]Endpoint, len(m.Labels))
	for i, label := range m.Labels {
		p := m.FiberPositions[last][i]
		out[label] = Endpoint{
			X: p[0], Y: p[1], Z: m.Z[last],
			Height: m.FiberDiameter[last], Width: m.FiberDiameter[last],
		}
	}
	return out
}

// CoreEndpoints returns per-fibre core geometry at the far end of the taper.
// Core diameters shrink by the same ratio as the cladding; initial core
// diameters are supplied per label.
func (m *BundleModel) CoreEndpoints(coreDiameters map[string]float64, initialCladding float64) map[string]Endpoint {
	last := len(m.Z) - 1
	ratio := m.FiberDiameter[last] / initialCladding
	out := make(map[string]Endpoint, len(m.Labels))
	for i, label := range m.Labels {
		p := m.FiberPositions[last][i]
		d := coreDiameters[label] * ratio
		out[label] = Endpoint{
			X: p[0], Y: p[1], Z: m.Z[last],
			Height: d, Width: d,
		}
	}
	return out
}

// CapillaryEndpoint returns the capillary bore geometry at the far end of the
// taper. The capillary stays centred on the axis.
func (m *BundleModel) CapillaryEndpoint() Endpoint {
	last := len(m.Z) - 1
	return Endpoint{
		Z:      m.Z[last],
		Height: m.CapillaryInner[last],
		Width:  m.CapillaryInner[last],
	}
}
