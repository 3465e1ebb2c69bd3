package taper

import (
	"math"
	"testing"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

const tol = 1e-9

func TestLinearEvaluate(t *testing.T) {
	s, err := Linear("cladding", 0, 80000, 62.5, 10)
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	s.WithIndex(1.44692, 1.4345)

	tests := []struct {
		z          float64
		wantRadius float64
	}{
		{0, 62.5},
		{80000, 10},
		{40000, 36.25},
		{20000, 49.375},
		// Clamped outside the domain.
		{-5, 62.5},
		{90000, 10},
	}

	for _, tt := range tests {
		if got := s.Radius(tt.z); math.Abs(got-tt.wantRadius) > tol {
			t.Errorf("Radius(%g) = %.9f, want %.9f", tt.z, got, tt.wantRadius)
		}
	}

	// Index shares domain and clamping but interpolates independently.
	if got := s.Index(0); math.Abs(got-1.44692) > tol {
		t.Errorf("Index(0) = %.9f, want 1.44692", got)
	}
	if got := s.Index(1e9); math.Abs(got-1.4345) > tol {
		t.Errorf("Index(clamped) = %.9f, want 1.4345", got)
	}
	mid := (1.44692 + 1.4345) / 2
	if got := s.Index(40000); math.Abs(got-mid) > tol {
		t.Errorf("Index(mid) = %.9f, want %.9f", got, mid)
	}
}

func TestLinearInvalidDomain(t *testing.T) {
	if _, err := Linear("bad", 10, 10, 1, 2); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("equal bounds: err = %v, want INVALID_TAPER", err)
	}
	if _, err := Linear("bad", 20, 10, 1, 2); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("reversed bounds: err = %v, want INVALID_TAPER", err)
	}
}

func TestCustomValidation(t *testing.T) {
	quadratic := func(z, z0, z1, r0, r1 float64) float64 {
		t := (z - z0) / (z1 - z0)
		return r0 + (r1-r0)*t*t
	}

	s, err := Custom("quad", 0, 100, 50, 10, quadratic)
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	if got := s.Radius(50); math.Abs(got-(50+(10-50)*0.25)) > tol {
		t.Errorf("Radius(50) = %.9f", got)
	}

	// A profile that misses the declared end radius must be rejected at
	// registration, not at evaluation.
	broken := func(z, z0, z1, r0, r1 float64) float64 { return r0 }
	if _, err := Custom("broken", 0, 100, 50, 10, broken); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("discontinuous profile: err = %v, want INVALID_TAPER", err)
	}

	if _, err := Custom("nil", 0, 100, 50, 10, nil); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("nil profile: err = %v, want INVALID_TAPER", err)
	}
}

func TestCustomIndexProfile(t *testing.T) {
	s, err := Linear("core", 0, 100, 5.2, 1)
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	s.WithIndex(1.45213, 1.44692)

	if _, err := s.WithIndexProfile(func(z, z0, z1, v0, v1 float64) float64 { return v0 }); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("bad index profile: err = %v, want INVALID_TAPER", err)
	}

	if _, err := s.WithIndexProfile(SigmoidProfile(DefaultSigmoidParams())); err != nil {
		t.Fatalf("sigmoid index profile rejected: %v", err)
	}
}

func TestSigmoidProfile(t *testing.T) {
	p := DefaultSigmoidParams()

	// Normalized ratio hits the bounds exactly.
	if got := p.Ratio(0, 80000); math.Abs(got) > tol {
		t.Errorf("Ratio(0) = %g, want 0", got)
	}
	if got := p.Ratio(80000, 80000); math.Abs(got-1) > tol {
		t.Errorf("Ratio(L) = %g, want 1", got)
	}

	// Monotonic over the domain.
	prev := -1.0
	for i := 0; i <= 100; i++ {
		z := 80000 * float64(i) / 100
		r := p.Ratio(z, 80000)
		if r < prev {
			t.Fatalf("Ratio not monotonic at z=%g: %g < %g", z, r, prev)
		}
		prev = r
	}

	// Usable as a validated custom radius profile.
	s, err := Custom("sigmoid", 0, 80000, 62.5, 10, SigmoidProfile(p))
	if err != nil {
		t.Fatalf("Custom(sigmoid): %v", err)
	}
	if got := s.Radius(0); math.Abs(got-62.5) > tol {
		t.Errorf("Radius(0) = %g, want 62.5", got)
	}
	if got := s.Radius(80000); math.Abs(got-10) > tol {
		t.Errorf("Radius(L) = %g, want 10", got)
	}
}

func TestProperties(t *testing.T) {
	dia, rate, factor, err := Properties(40000, 250, 31.25, 50000)
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	wantRate := (31.25 - 250) / 50000
	if math.Abs(rate-wantRate) > tol {
		t.Errorf("rate = %g, want %g", rate, wantRate)
	}
	if math.Abs(dia-(250+wantRate*40000)) > tol {
		t.Errorf("diameter = %g", dia)
	}
	if math.Abs(factor-8) > tol {
		t.Errorf("factor = %g, want 8", factor)
	}

	if _, _, _, err := Properties(-1, 250, 31.25, 50000); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("negative position: err = %v, want INVALID_TAPER", err)
	}
	if _, _, _, err := Properties(60000, 250, 31.25, 50000); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("past end: err = %v, want INVALID_TAPER", err)
	}
}

func TestModelBundle(t *testing.T) {
	positions := [][2]float64{{0, 0}, {125, 0}, {-125, 0}}
	labels := []string{"LP01", "LP11a", "LP11b"}

	m, err := ModelBundle(BundleParams{
		Points:           101,
		TaperLength:      80000,
		CladdingDiameter: 125,
		CapillaryID:      375,
		FinalCapillaryID: 40,
		CapillaryOD:      900,
	}, labels, positions)
	if err != nil {
		t.Fatalf("ModelBundle: %v", err)
	}

	if len(m.Z) != 101 {
		t.Fatalf("len(Z) = %d, want 101", len(m.Z))
	}
	if m.Z[0] != 0 || math.Abs(m.Z[100]-80000) > tol {
		t.Errorf("Z bounds = [%g, %g]", m.Z[0], m.Z[100])
	}

	// Capillary bore shrinks monotonically from ID to final ID.
	if math.Abs(m.CapillaryInner[0]-375) > tol {
		t.Errorf("CapillaryInner[0] = %g, want 375", m.CapillaryInner[0])
	}
	if math.Abs(m.CapillaryInner[100]-40) > tol {
		t.Errorf("CapillaryInner[end] = %g, want 40", m.CapillaryInner[100])
	}
	for i := 1; i < len(m.CapillaryInner); i++ {
		if m.CapillaryInner[i] > m.CapillaryInner[i-1]+tol {
			t.Fatalf("capillary bore grows at sample %d", i)
		}
	}

	// Fibre centres contract toward the axis with the bundle.
	startR := math.Hypot(m.FiberPositions[0][1][0], m.FiberPositions[0][1][1])
	endR := math.Hypot(m.FiberPositions[100][1][0], m.FiberPositions[100][1][1])
	if endR >= startR {
		t.Errorf("fibre did not move inward: start %g, end %g", startR, endR)
	}

	// Endpoint extraction matches the final sample.
	clad := m.CladdingEndpoints()
	if ep := clad["LP11a"]; math.Abs(ep.Z-80000) > tol || math.Abs(ep.Height-m.FiberDiameter[100]) > tol {
		t.Errorf("cladding endpoint = %+v", ep)
	}
	capEnd := m.CapillaryEndpoint()
	if math.Abs(capEnd.Height-40) > tol || capEnd.X != 0 || capEnd.Y != 0 {
		t.Errorf("capillary endpoint = %+v", capEnd)
	}

	cores := m.CoreEndpoints(map[string]float64{"LP01": 10.4, "LP11a": 10.4, "LP11b": 10.4}, 125)
	ratio := m.FiberDiameter[100] / 125
	if ep := cores["LP01"]; math.Abs(ep.Height-10.4*ratio) > tol {
		t.Errorf("core endpoint height = %g, want %g", ep.Height, 10.4*ratio)
	}
}

func TestModelBundleValidation(t *testing.T) {
	params := BundleParams{Points: 10, TaperLength: 100, CladdingDiameter: 125, CapillaryID: 375, FinalCapillaryID: 40, CapillaryOD: 900}

	if _, err := ModelBundle(params, []string{"a"}, nil); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("mismatched labels: err = %v", err)
	}
	if _, err := ModelBundle(params, nil, nil); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("empty bundle: err = %v", err)
	}

	bad := params
	bad.Points = 1
	if _, err := ModelBundle(bad, []string{"a"}, [][2]float64{{0, 0}}); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("single sample: err = %v", err)
	}

	bad = params
	bad.TaperLength = 0
	if _, err := ModelBundle(bad, []string{"a"}, [][2]float64{{0, 0}}); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("zero length: err = %v", err)
	}

	bad = params
	bad.CapillaryID = 0
	if _, err := ModelBundle(bad, []string{"a"}, [][2]float64{{0, 0}}); !errors.Is(err, errors.ErrCodeInvalidTaper) {
		t.Errorf("zero bore: err = %v", err)
	}
}

func TestModelBundleMatchesSpecs(t *testing.T) {
	params := BundleParams{
		Points:           11,
		TaperLength:      100,
		CladdingDiameter: 125,
		CapillaryID:      375,
		FinalCapillaryID: 40,
		CapillaryOD:      900,
	}
	m, err := ModelBundle(params, []string{"a"}, [][2]float64{{125, 0}})
	if err != nil {
		t.Fatalf("ModelBundle: %v", err)
	}

	inner, err := Linear("capillary_inner", 0, 100, 375, 40)
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	outer, err := Linear("capillary_outer", 0, 100, 900, 900*40/375.0)
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	for i, z := range m.Z {
		if got, want := m.CapillaryInner[i], inner.Radius(z); math.Abs(got-want) > tol {
			t.Errorf("CapillaryInner[%d] = %g, want %g", i, got, want)
		}
		if got, want := m.CapillaryOuter[i], outer.Radius(z); math.Abs(got-want) > tol {
			t.Errorf("CapillaryOuter[%d] = %g, want %g", i, got, want)
		}
	}

	// The sigmoid variant follows the normalized sigmoid ratio per sample.
	sig := params
	sig.Sigmoid = true
	sm, err := ModelBundle(sig, []string{"a"}, [][2]float64{{125, 0}})
	if err != nil {
		t.Fatalf("ModelBundle(sigmoid): %v", err)
	}
	sp, err := Custom("capillary_inner", 0, 100, 375, 40, SigmoidProfile(DefaultSigmoidParams()))
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	for i, z := range sm.Z {
		if got, want := sm.CapillaryInner[i], sp.Radius(z); math.Abs(got-want) > tol {
			t.Errorf("sigmoid CapillaryInner[%d] = %g, want %g", i, got, want)
		}
	}
}
