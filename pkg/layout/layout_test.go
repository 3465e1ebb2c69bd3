package layout

import (
	"math"
	"testing"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

const tol = 1e-9

func TestCircularPacking(t *testing.T) {
	tests := []struct {
		name      string
		diameter  float64
		coreCount int
		wantR     float64
	}{
		{name: "TwoCores", diameter: 125, coreCount: 2, wantR: 62.5},
		{name: "ThreeCores", diameter: 125, coreCount: 3, wantR: 125 / (2 * math.Sin(math.Pi/3))},
		{name: "FiveCores", diameter: 125, coreCount: 5, wantR: 125 / (2 * math.Sin(math.Pi/5))},
		{name: "SevenCores", diameter: 80, coreCount: 7, wantR: 80 / (2 * math.Sin(math.Pi/7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Circular(tt.diameter, tt.coreCount)
			if err != nil {
				t.Fatalf("Circular: %v", err)
			}
			if math.Abs(l.R()-tt.wantR) > tol {
				t.Errorf("R = %.9f, want %.9f", l.R(), tt.wantR)
			}
			if got := l.CoreCount(); got != tt.coreCount {
				t.Errorf("CoreCount = %d, want %d", got, tt.coreCount)
			}

			// All cores at identical radius, equal angular spacing.
			step := 2 * math.Pi / float64(tt.coreCount)
			for k, c := range l.Cores() {
				r := math.Hypot(c.X, c.Y)
				if math.Abs(r-tt.wantR) > tol {
					t.Errorf("core %d radius = %.9f, want %.9f", k, r, tt.wantR)
				}
				angle := math.Atan2(c.Y, c.X)
				want := float64(k) * step
				if want > math.Pi {
					want -= 2 * math.Pi
				}
				if math.Abs(angle-want) > 1e-9 {
					t.Errorf("core %d angle = %.9f, want %.9f", k, angle, want)
				}
			}

			if want := tt.wantR + tt.diameter/2; math.Abs(l.CapillaryRadius()-want) > tol {
				t.Errorf("CapillaryRadius = %.9f, want %.9f", l.CapillaryRadius(), want)
			}
		})
	}
}

// The five-core 125 micron layout is the reference scenario for the packing
// formula: R = 125 / (2 sin(36 degrees)) which is approximately 106.3.
func TestCircularReferenceScenario(t *testing.T) {
	l, err := Circular(125, 5)
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	if math.Abs(l.R()-106.33) > 0.5 {
		t.Errorf("R = %.3f, want about 106.3", l.R())
	}
	first := l.Cores()[0]
	if math.Abs(first.Y) > tol || first.X < 0 {
		t.Errorf("first core not on positive x axis: (%.3f, %.3f)", first.X, first.Y)
	}
}

func TestCircularMonotonicity(t *testing.T) {
	// R grows with cladding diameter.
	prev := 0.0
	for _, d := range []float64{60, 80, 100, 125, 250} {
		l, err := Circular(d, 5)
		if err != nil {
			t.Fatalf("Circular(%g, 5): %v", d, err)
		}
		if l.R() <= prev {
			t.Errorf("R not increasing in diameter: R(%g) = %.3f <= %.3f", d, l.R(), prev)
		}
		prev = l.R()
	}

	// R grows with core count.
	prev = 0.0
	for n := 2; n <= 12; n++ {
		l, err := Circular(125, n)
		if err != nil {
			t.Fatalf("Circular(125, %d): %v", n, err)
		}
		if l.R() <= prev {
			t.Errorf("R not increasing in core count: R(%d) = %.3f <= %.3f", n, l.R(), prev)
		}
		prev = l.R()
	}
}

func TestCircularSingleCore(t *testing.T) {
	l, err := Circular(125, 1)
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	if l.R() != 0 {
		t.Errorf("R = %g, want 0", l.R())
	}
	if l.CoreCount() != 1 {
		t.Fatalf("CoreCount = %d, want 1", l.CoreCount())
	}
	c := l.Cores()[0]
	if c.Role != RoleCenter || c.X != 0 || c.Y != 0 {
		t.Errorf("single core = %+v, want center core at origin", c)
	}
	if want := 62.5; math.Abs(l.CapillaryRadius()-want) > tol {
		t.Errorf("CapillaryRadius = %g, want %g", l.CapillaryRadius(), want)
	}
}

func TestInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Layout, error)
	}{
		{"ZeroCores", func() (*Layout, error) { return Circular(125, 0) }},
		{"NegativeCores", func() (*Layout, error) { return Circular(125, -3) }},
		{"ZeroDiameter", func() (*Layout, error) { return Circular(0, 5) }},
		{"UnknownArrangement", func() (*Layout, error) { return Compute(125, 5, Arrangement("square")) }},
		{"HexIncompleteShell", func() (*Layout, error) { return Hexagonal(125, 10) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("err = %v, want INVALID_LAYOUT", err)
			}
		})
	}
}

func TestHexagonalShells(t *testing.T) {
	for _, n := range []int{1, 7, 19, 37} {
		l, err := Hexagonal(125, n)
		if err != nil {
			t.Fatalf("Hexagonal(125, %d): %v", n, err)
		}
		if l.CoreCount() != n {
			t.Errorf("CoreCount = %d, want %d", l.CoreCount(), n)
		}
	}

	// Shell radii are whole multiples of the cladding diameter.
	l, err := Hexagonal(125, 19)
	if err != nil {
		t.Fatalf("Hexagonal: %v", err)
	}
	if math.Abs(l.R()-250) > tol {
		t.Errorf("outer shell radius = %g, want 250", l.R())
	}
	center := l.CenterCore()
	if center == nil || center.X != 0 || center.Y != 0 {
		t.Errorf("missing center core: %+v", center)
	}
	// Corner cores of shell 1 sit exactly one diameter out.
	first := l.Cores()[1]
	if math.Abs(math.Hypot(first.X, first.Y)-125) > tol {
		t.Errorf("shell-1 corner radius = %g, want 125", math.Hypot(first.X, first.Y))
	}
}

func TestHexagonalPartialShell(t *testing.T) {
	l, err := Hexagonal(125, 10, WithPartialShell())
	if err != nil {
		t.Fatalf("Hexagonal partial: %v", err)
	}
	if l.CoreCount() != 10 {
		t.Fatalf("CoreCount = %d, want 10", l.CoreCount())
	}
	// 1 center + 6 on shell 1 + 3 evenly spread on shell 2.
	outer := 0
	for _, c := range l.Cores() {
		if c.Ring == 2 {
			outer++
		}
	}
	if outer != 3 {
		t.Errorf("outer shell cores = %d, want 3", outer)
	}
}

func TestCenterCoreRing(t *testing.T) {
	l, err := Circular(125, 6, WithCenterCore())
	if err != nil {
		t.Fatalf("Circular with center: %v", err)
	}
	if l.CoreCount() != 6 {
		t.Fatalf("CoreCount = %d, want 6", l.CoreCount())
	}
	if c := l.CenterCore(); c == nil {
		t.Fatal("no center core")
	}
	if len(l.RingCores()) != 5 {
		t.Errorf("ring cores = %d, want 5", len(l.RingCores()))
	}
	// Ring radius is at least one diameter so the ring clears the center.
	if l.R() < 125-tol {
		t.Errorf("ring radius %.3f leaves ring cores overlapping the center core", l.R())
	}
}

func TestAngularOffset(t *testing.T) {
	l, err := Circular(125, 4, WithAngularOffset(45))
	if err != nil {
		t.Fatalf("Circular: %v", err)
	}
	first := l.Cores()[0]
	want := math.Pi / 4
	if got := math.Atan2(first.Y, first.X); math.Abs(got-want) > tol {
		t.Errorf("first core angle = %.6f, want %.6f", got, want)
	}
}

func TestDeterminism(t *testing.T) {
	a, err := Compute(125, 7, ArrangementHexagonal)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(125, 7, ArrangementHexagonal)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range a.Cores() {
		if a.Cores()[i] != b.Cores()[i] {
			t.Fatalf("core %d differs between identical runs", i)
		}
	}
}

func TestRingsPlacement(t *testing.T) {
	l, err := Rings(125, []int{1, 5})
	if err != nil {
		t.Fatalf("Rings: %v", err)
	}
	if l.CoreCount() != 6 {
		t.Fatalf("CoreCount = %d, want 6", l.CoreCount())
	}
	// Ring 1 touches the center core: radius equals the cladding diameter
	// since the pure packing radius for five cores is smaller.
	if math.Abs(l.R()-125) > tol {
		t.Errorf("ring radius = %.3f, want 125", l.R())
	}

	l2, err := Rings(125, []int{1, 5, 11})
	if err != nil {
		t.Fatalf("Rings: %v", err)
	}
	if math.Abs(l2.R()-250) > tol {
		t.Errorf("outer ring radius = %.3f, want 250", l2.R())
	}
}
