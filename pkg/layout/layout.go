// Package layout computes the physical arrangement of fibre cores in a
// photonic lantern cross-section.
//
// A layout places N cladding circles of a given diameter either evenly around
// a reference circle (circular packing) or on successive hexagonal shells
// around a center core (hexagonal packing), and derives the capillary radius
// enclosing the bundle. Layout computation is pure and deterministic: the
// same inputs always produce bit-identical coordinates.
package layout

import (
	"fmt"
	"math"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// Arrangement selects the packing strategy for a layout.
type Arrangement string

const (
	// ArrangementCircular places cores evenly on a single reference circle.
	ArrangementCircular Arrangement = "circular"
	// ArrangementHexagonal places cores on hexagonal shells around a center core.
	ArrangementHexagonal Arrangement = "hexagonal"
)

// Role distinguishes the center core from ring cores.
type Role string

const (
	RoleCenter Role = "center"
	RoleRing   Role = "ring"
)

// overlapTolerance absorbs floating-point noise in the centre-distance check.
const overlapTolerance = 1e-9

// Core is a physical waveguide core within a layout. Identity (ID, Role,
// Ring, RingIndex, coordinates) is fixed at construction; the mode label is
// the only field mutated afterwards, by the mode assignment engine.
type Core struct {
	ID        string  // unique within a layout, e.g. "core-3"
	Role      Role    // center or ring
	Ring      int     // ring number, 0 for the center core
	RingIndex int     // angular position index within its ring
	Mode      string  // assigned LP mode label, empty until assigned
	Diameter  float64 // cladding diameter in microns
	Index     float64 // refractive index at the reference plane
	X, Y      float64 // centre coordinates at z = 0 in microns
}

// Layout is the geometric result of packing core positions.
// Ring cores lie at distance R from the origin with equal angular spacing
// per ring; no two cores overlap.
type Layout struct {
	cores            []Core
	r                float64 // distance from origin to outermost ring-core centres
	capillaryRadius  float64
	claddingDiameter float64
	arrangement      Arrangement
}

// options collects optional layout parameters.
type options struct {
	angularOffset float64 // radians added to every ring angle
	spacing       float64 // centre-spacing multiple of the cladding diameter
	partialShell  bool    // hexagonal: allow an incomplete outermost shell
	centerCore    bool    // circular: reserve position 0 for a center core
}

// Option configures layout computation.
type Option func(*options)

// WithAngularOffset rotates all ring positions by the given angle in degrees.
func WithAngularOffset(degrees float64) Option {
	return func(o *options) { o.angularOffset = degrees * math.Pi / 180 }
}

// WithSpacing sets the centre-to-centre spacing as a multiple of the cladding
// diameter. The default of 1.0 packs adjacent claddings edge to edge.
func WithSpacing(factor float64) Option {
	return func(o *options) { o.spacing = factor }
}

// WithPartialShell allows hexagonal layouts whose core count does not fill
// whole shells; the remaining cores are placed evenly on the final shell.
func WithPartialShell() Option {
	return func(o *options) { o.partialShell = true }
}

// WithCenterCore places one core at the origin and the remaining cores on a
// surrounding ring. Only meaningful for circular arrangements.
func WithCenterCore() Option {
	return func(o *options) { o.centerCore = true }
}

// Compute builds a layout of coreCount cores of the given cladding diameter
// using the requested arrangement. It fails with an INVALID_LAYOUT error when
// coreCount <= 0, when the diameter is not positive, or when the arrangement
// cannot place coreCount cores.
func Compute(claddingDiameter float64, coreCount int, arrangement Arrangement, opts ...Option) (*Layout, error) {
	switch arrangement {
	case ArrangementCircular:
		return Circular(claddingDiameter, coreCount, opts...)
	case ArrangementHexagonal:
		return Hexagonal(claddingDiameter, coreCount, opts...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown arrangement: %q", arrangement)
	}
}

// Circular places coreCount cores evenly around a reference circle whose
// radius satisfies the packing constraint that adjacent cladding edges touch:
//
//	R = d / (2 sin(pi/n))
//
// A single core sits at the origin with R = 0. With WithCenterCore, one core
// sits at the origin and the remaining coreCount-1 cores form the ring; the
// ring radius is then at least the cladding diameter so ring cores clear the
// center core.
func Circular(claddingDiameter float64, coreCount int, opts ...Option) (*Layout, error) {
	o := applyOptions(opts)
	if err := validateRequest(claddingDiameter, coreCount); err != nil {
		return nil, err
	}

	l := &Layout{
		claddingDiameter: claddingDiameter,
		arrangement:      ArrangementCircular,
	}

	ringCount := coreCount
	if o.centerCore {
		l.appendCore(RoleCenter, 0, 0, 0, 0)
		ringCount = coreCount - 1
	} else if coreCount == 1 {
		l.appendCore(RoleCenter, 0, 0, 0, 0)
		l.capillaryRadius = claddingDiameter / 2
		return l, nil
	}

	if ringCount > 0 {
		radius := packingRadius(claddingDiameter*o.spacing, ringCount)
		if o.centerCore && radius < claddingDiameter*o.spacing {
			// Ring cores must also clear the center core.
			radius = claddingDiameter * o.spacing
		}
		l.placeRing(1, ringCount, radius, o.angularOffset)
		l.r = radius
	}

	l.capillaryRadius = l.r + claddingDiameter/2
	if err := l.checkOverlap(); err != nil {
		return nil, err
	}
	return l, nil
}

// Hexagonal places cores on successive hexagonal shells around a center core.
// Shell s holds 6s cores at radius s*d; valid core counts fill whole shells
// (1, 7, 19, 37, ...). With WithPartialShell the remaining cores are placed
// evenly on the final shell instead.
func Hexagonal(claddingDiameter float64, coreCount int, opts ...Option) (*Layout, error) {
	o := applyOptions(opts)
	if err := validateRequest(claddingDiameter, coreCount); err != nil {
		return nil, err
	}

	l := &Layout{
		claddingDiameter: claddingDiameter,
		arrangement:      ArrangementHexagonal,
	}
	l.appendCore(RoleCenter, 0, 0, 0, 0)

	spacing := claddingDiameter * o.spacing
	remaining := coreCount - 1
	for shell := 1; remaining > 0; shell++ {
		shellRadius := float64(shell) * spacing
		capacity := 6 * shell
		if remaining >= capacity {
			l.placeHexShell(shell, shellRadius, o.angularOffset)
			remaining -= capacity
		} else {
			if !o.partialShell {
				return nil, errors.New(errors.ErrCodeInvalidLayout,
					"core count %d does not fill whole hexagonal shells (want %d or %d)",
					coreCount, coreCount-remaining, coreCount-remaining+capacity)
			}
			l.placeRing(shell, remaining, shellRadius, o.angularOffset)
			remaining = 0
		}
		l.r = shellRadius
	}

	l.capillaryRadius = l.r + claddingDiameter/2
	if err := l.checkOverlap(); err != nil {
		return nil, err
	}
	return l, nil
}

// Rings places concentric rings of cores with the given per-ring counts,
// innermost first. A leading count of 1 becomes the center core; each
// subsequent ring sits one cladding diameter further out than the previous
// one, the densest arrangement where each ring touches its neighbour.
// This is the placement used for mode-selective radial groups.
func Rings(claddingDiameter float64, counts []int, opts ...Option) (*Layout, error) {
	o := applyOptions(opts)
	if len(counts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "at least one ring count required")
	}
	total := 0
	for i, n := range counts {
		if n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "ring %d has non-positive count %d", i, n)
		}
		total += n
	}
	if err := validateRequest(claddingDiameter, total); err != nil {
		return nil, err
	}

	l := &Layout{
		claddingDiameter: claddingDiameter,
		arrangement:      ArrangementCircular,
	}

	spacing := claddingDiameter * o.spacing
	previous := 0.0
	ring := 0
	for i, n := range counts {
		if i == 0 && n == 1 {
			l.appendCore(RoleCenter, 0, 0, 0, 0)
			continue
		}
		ring++
		var radius float64
		if previous == 0 {
			radius = packingRadius(spacing, n)
			if len(l.cores) > 0 && radius < spacing {
				radius = spacing
			}
		} else {
			radius = previous + spacing
		}
		l.placeRing(ring, n, radius, o.angularOffset)
		previous = radius
		l.r = radius
	}

	l.capillaryRadius = l.r + claddingDiameter/2
	if err := l.checkOverlap(); err != nil {
		return nil, err
	}
	return l, nil
}

// packingRadius solves the circular packing constraint for n circles of
// diameter d placed with adjacent edges touching.
func packingRadius(d float64, n int) float64 {
	if n < 2 {
		return 0
	}
	return d / (2 * math.Sin(math.Pi/float64(n)))
}

func applyOptions(opts []Option) options {
	o := options{spacing: 1.0}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func validateRequest(claddingDiameter float64, coreCount int) error {
	if coreCount <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "core count must be positive, got %d", coreCount)
	}
	if claddingDiameter <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "cladding diameter must be positive, got %g", claddingDiameter)
	}
	return nil
}

func (l *Layout) appendCore(role Role, ring, ringIndex int, x, y float64) {
	l.cores = append(l.cores, Core{
		ID:        fmt.Sprintf("core-%d", len(l.cores)),
		Role:      role,
		Ring:      ring,
		RingIndex: ringIndex,
		Diameter:  l.claddingDiameter,
		X:         x,
		Y:         y,
	})
}

// placeRing places n ring cores evenly on a circle of the given radius,
// starting at angle offset and increasing counter-clockwise.
func (l *Layout) placeRing(ring, n int, radius, offset float64) {
	for k := 0; k < n; k++ {
		angle := offset + 2*math.Pi*float64(k)/float64(n)
		l.appendCore(RoleRing, ring, k, radius*math.Cos(angle), radius*math.Sin(angle))
	}
}

// placeHexShell places the 6*shell cores of a complete hexagonal shell by
// walking its six corners and interpolating along each side.
func (l *Layout) placeHexShell(shell int, radius, offset float64) {
	idx := 0
	for side := 0; side < 6; side++ {
		angle := offset + math.Pi/3*float64(side)
		nextAngle := offset + math.Pi/3*float64((side+1)%6)
		cornerX, cornerY := radius*math.Cos(angle), radius*math.Sin(angle)
		nextX, nextY := radius*math.Cos(nextAngle), radius*math.Sin(nextAngle)
		for j := 0; j < shell; j++ {
			t := float64(j) / float64(shell)
			l.appendCore(RoleRing, shell, idx, cornerX+t*(nextX-cornerX), cornerY+t*(nextY-cornerY))
			idx++
		}
	}
}

// checkOverlap verifies the non-overlap invariant: every pair of core
// centres must be at least one cladding diameter apart.
func (l *Layout) checkOverlap() error {
	min := l.claddingDiameter - overlapTolerance
	for i := 0; i < len(l.cores); i++ {
		for j := i + 1; j < len(l.cores); j++ {
			dx := l.cores[i].X - l.cores[j].X
			dy := l.cores[i].Y - l.cores[j].Y
			if math.Hypot(dx, dy) < min {
				return errors.New(errors.ErrCodeInvalidLayout,
					"cores %s and %s overlap (centre distance %.3f < diameter %.3f)",
					l.cores[i].ID, l.cores[j].ID, math.Hypot(dx, dy), l.claddingDiameter)
			}
		}
	}
	return nil
}

// Cores returns the layout's cores in generation order: center core first,
// then each ring inner to outer with angles ascending from the offset.
// The returned slice is the layout's own storage; callers must not reorder it.
func (l *Layout) Cores() []Core { return l.cores }

// Core returns a pointer to the core with the given generation index,
// or nil when out of range. The pointer allows the mode assignment engine
// to set the core's mode label in place.
func (l *Layout) Core(i int) *Core {
	if i < 0 || i >= len(l.cores) {
		return nil
	}
	return &l.cores[i]
}

// CoreCount returns the number of cores in the layout.
func (l *Layout) CoreCount() int { return len(l.cores) }

// RingCores returns the ring cores in generation order.
func (l *Layout) RingCores() []Core {
	out := make([]Core, 0, len(l.cores))
	for _, c := range l.cores {
		if c.Role == RoleRing {
			out = append(out, c)
		}
	}
	return out
}

// CenterCore returns a pointer to the center core, or nil when the layout
// has no core at the origin.
func (l *Layout) CenterCore() *Core {
	for i := range l.cores {
		if l.cores[i].Role == RoleCenter {
			return &l.cores[i]
		}
	}
	return nil
}

// R returns the distance from the origin to the outermost ring-core centres.
func (l *Layout) R() float64 { return l.r }

// CapillaryRadius returns the radius of the outer boundary enclosing all
// cladding circles: R + claddingDiameter/2.
func (l *Layout) CapillaryRadius() float64 { return l.capillaryRadius }

// CapillaryDiameter returns twice the capillary radius.
func (l *Layout) CapillaryDiameter() float64 { return 2 * l.capillaryRadius }

// CladdingDiameter returns the cladding diameter used for packing.
func (l *Layout) CladdingDiameter() float64 { return l.claddingDiameter }

// Arrangement returns the packing strategy that produced the layout.
func (l *Layout) Arrangement() Arrangement { return l.arrangement }
