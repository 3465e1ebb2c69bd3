// Package modes implements LP-mode bookkeeping for mode-selective photonic
// lanterns: the fixed cutoff-frequency ranking of LP modes, expansion of
// degenerate mode orientations, assignment of modes to physical cores, and
// the closed-form V-number computation from fibre-optics mode theory.
package modes

import (
	"math"
	"strings"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/layout"
)

// Mode is one entry of the LP-mode ranking table. Labels follow the LPlm
// convention: l is the azimuthal number, m the radial number.
type Mode struct {
	Label     string
	Azimuthal int
	Radial    int
	Cutoff    float64 // normalized cutoff frequency (Bessel zero)
}

// ranking is the fixed cutoff-frequency ordering of LP modes. The order is a
// domain constant, not derived at runtime; modes sharing a cutoff (such as
// LP21/LP02) keep their conventional relative order.
var ranking = []Mode{
	{"LP01", 0, 1, 0.000},
	{"LP11", 1, 1, 2.405},
	{"LP21", 2, 1, 3.832},
	{"LP02", 0, 2, 3.832},
	{"LP31", 3, 1, 5.136},
	{"LP12", 1, 2, 5.520},
	{"LP41", 4, 1, 6.380},
	{"LP22", 2, 2, 7.016},
	{"LP03", 0, 3, 7.016},
	{"LP51", 5, 1, 7.588},
	{"LP32", 3, 2, 8.417},
	{"LP13", 1, 3, 8.654},
	{"LP61", 6, 1, 8.772},
	{"LP42", 4, 2, 9.761},
	{"LP71", 7, 1, 9.936},
	{"LP23", 2, 3, 10.174},
	{"LP04", 0, 4, 10.174},
	{"LP52", 5, 2, 11.065},
	{"LP81", 8, 1, 11.086},
	{"LP33", 3, 3, 11.620},
	{"LP14", 1, 4, 11.792},
	{"LP91", 9, 1, 12.225},
	{"LP62", 6, 2, 12.339},
	{"LP43", 4, 3, 13.015},
	{"LP24", 2, 4, 13.324},
	{"LP05", 0, 5, 13.324},
}

// Ranking returns a copy of the LP-mode ranking table in cutoff order.
func Ranking() []Mode {
	return append([]Mode(nil), ranking...)
}

// Lookup finds a ranked mode by label. Degenerate orientation suffixes
// ("a"/"b") are ignored, so both "LP11" and "LP11a" resolve to LP11.
func Lookup(label string) (Mode, bool) {
	base := strings.TrimSuffix(strings.TrimSuffix(label, "a"), "b")
	for _, m := range ranking {
		if m.Label == base {
			return m, true
		}
	}
	return Mode{}, false
}

// Supported returns the ordered sequence of mode labels supported by a
// lantern whose highest mode is highest. Every ranked mode with a cutoff at
// or below the highest mode's cutoff is included, in ranking order; modes
// with azimuthal number greater than zero expand into their two degenerate
// orientations, "a" before "b". Fails with INVALID_MODE_CONFIG when highest
// is not in the ranking table.
func Supported(highest string) ([]string, error) {
	h, ok := Lookup(highest)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidModeConfig, "mode %q is not in the cutoff ranking table", highest)
	}
	var out []string
	for _, m := range ranking {
		if m.Cutoff > h.Cutoff {
			break
		}
		if m.Azimuthal > 0 {
			out = append(out, m.Label+"a", m.Label+"b")
		} else {
			out = append(out, m.Label)
		}
	}
	return out, nil
}

// RequiredCores returns the number of physical cores needed to support every
// mode at or below highest: one core per supported mode label.
func RequiredCores(highest string) (int, error) {
	seq, err := Supported(highest)
	if err != nil {
		return 0, err
	}
	return len(seq), nil
}

// RingPlan returns the per-ring core counts for a mode-selective layout and
// the mode labels in the layout's generation order. The fundamental LP01
// takes the center core; the remaining supported modes are grouped by radial
// number, one concentric ring per group with higher radial numbers closer to
// the axis. Within a ring, modes follow ranking order and each mode with
// azimuthal number above zero contributes both degenerate orientations.
func RingPlan(highest string) (counts []int, sequence []string, err error) {
	h, ok := Lookup(highest)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeInvalidModeConfig,
			"mode %q is not in the cutoff ranking table", highest)
	}

	counts = []int{1}
	sequence = []string{"LP01"}

	groups := make(map[int][]Mode)
	maxRadial := 0
	for _, m := range ranking {
		if m.Cutoff > h.Cutoff {
			break
		}
		if m.Label == "LP01" {
			continue
		}
		groups[m.Radial] = append(groups[m.Radial], m)
		if m.Radial > maxRadial {
			maxRadial = m.Radial
		}
	}

	for r := maxRadial; r >= 1; r-- {
		n := 0
		for _, m := range groups[r] {
			if m.Azimuthal > 0 {
				sequence = append(sequence, m.Label+"a", m.Label+"b")
				n += 2
			} else {
				sequence = append(sequence, m.Label)
				n++
			}
		}
		if n > 0 {
			counts = append(counts, n)
		}
	}
	return counts, sequence, nil
}

// NumericalAperture computes NA from the core and cladding refractive
// indices.
func NumericalAperture(coreIndex, claddingIndex float64) float64 {
	return math.Sqrt(coreIndex*coreIndex - claddingIndex*claddingIndex)
}

// VNumber computes the normalized frequency of a fibre:
//
//	V = pi * d * NA / lambda
//
// with the core diameter d and wavelength in the same length unit.
func VNumber(coreDiameter, na, wavelength float64) float64 {
	return math.Pi * coreDiameter * na / wavelength
}

// Guided reports whether a mode with the given normalized cutoff is guided
// in a fibre with normalized frequency v. The fundamental mode (cutoff 0)
// is always guided.
func Guided(cutoff, v float64) bool {
	return cutoff < v
}

// Fiber carries the optical parameters used for per-core cutoff computation.
// Lengths are in microns.
type Fiber struct {
	CoreDiameter  float64
	CoreIndex     float64
	CladdingIndex float64
	Wavelength    float64
}

// Assignment records one mode-to-core binding with its cutoff parameters.
type Assignment struct {
	Label   string
	CoreID  string
	X, Y    float64
	Cutoff  float64 // normalized cutoff of the underlying LP mode
	VNumber float64 // normalized frequency of the assigned core
	Guided  bool
}

// Map is the result of mode assignment: an ordered mapping from mode label
// to its assigned core. Labels are unique within a map.
type Map struct {
	order   []string
	entries map[string]Assignment
	launch  string
}

// Labels returns the supported mode labels in assignment order.
func (m *Map) Labels() []string { return append([]string(nil), m.order...) }

// Get returns the assignment for a mode label.
func (m *Map) Get(label string) (Assignment, bool) {
	a, ok := m.entries[label]
	return a, ok
}

// Launch returns the launch mode label.
func (m *Map) Launch() string { return m.launch }

// Len returns the number of assigned modes.
func (m *Map) Len() int { return len(m.order) }

// Assign binds every supported mode at or below highest to a physical core
// of the layout. The center core takes the fundamental LP01 mode; ring cores
// take the remaining labels in RingPlan order, matched to ring positions in
// the layout's generation order (the deterministic tie-break for degenerate
// orientations). The assignment mutates the layout's cores to carry their
// mode labels, the only point where a layout changes after construction.
//
// Fails with INVALID_MODE_CONFIG when highest is unranked, when launch is
// not in the supported sequence, or when the layout's core count differs
// from the number of supported modes.
func Assign(highest, launch string, l *layout.Layout, fiber Fiber) (*Map, error) {
	seq, err := Supported(highest)
	if err != nil {
		return nil, err
	}

	launchOK := false
	for _, label := range seq {
		if label == launch {
			launchOK = true
			break
		}
	}
	if !launchOK {
		return nil, errors.New(errors.ErrCodeInvalidModeConfig,
			"launch mode %q is not in the supported sequence for highest mode %q", launch, highest)
	}

	if l.CoreCount() != len(seq) {
		return nil, errors.New(errors.ErrCodeInvalidModeConfig,
			"layout has %d cores but %d modes are supported up to %s", l.CoreCount(), len(seq), highest)
	}

	// Order the physical cores: center first when present, then ring cores
	// in generation order. The ring plan sequence parallels this ordering:
	// LP01 first, then ring labels inner to outer.
	cores := make([]*layout.Core, 0, l.CoreCount())
	if c := l.CenterCore(); c != nil {
		cores = append(cores, c)
	}
	for i := 0; i < l.CoreCount(); i++ {
		if c := l.Core(i); c.Role == layout.RoleRing {
			cores = append(cores, c)
		}
	}
	_, genSeq, err := RingPlan(highest)
	if err != nil {
		return nil, err
	}

	na := NumericalAperture(fiber.CoreIndex, fiber.CladdingIndex)
	m := &Map{
		order:   make([]string, 0, len(seq)),
		entries: make(map[string]Assignment, len(seq)),
		launch:  launch,
	}
	for i, label := range genSeq {
		core := cores[i]
		core.Mode = label

		dia := fiber.CoreDiameter
		v := VNumber(dia, na, fiber.Wavelength)
		ranked, _ := Lookup(label)

		m.entries[label] = Assignment{
			Label:   label,
			CoreID:  core.ID,
			X:       core.X,
			Y:       core.Y,
			Cutoff:  ranked.Cutoff,
			VNumber: v,
			Guided:  Guided(ranked.Cutoff, v),
		}
	}
	// Labels iterate in cutoff ranking order regardless of ring placement.
	m.order = append(m.order, seq...)

	return m, nil
}
