package lantern

import (
	"strconv"
	"strings"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/layout"
	"github.com/bongkokwei/rsoft-cad/pkg/modes"
)

// Port is one single-mode fibre position in the bundle cross section,
// identified by the label its strategy assigns.
type Port struct {
	Label string
	X, Y  float64
}

// Placement is the result of laying out the bundle: ports in a stable
// order, the capillary bore that encloses them, and the label a launch
// field targets when the caller does not pick one.
type Placement struct {
	Ports             []Port
	CapillaryDiameter float64
	DefaultLaunch     string
	Modes             *modes.Map // nil unless the strategy is mode based
}

// PlaceRequest carries the inputs a strategy needs to lay out the bundle.
type PlaceRequest struct {
	CladdingDiameter float64
	Fiber            modes.Fiber
	Launch           string // empty selects the strategy default
}

// ModeStrategy decides how many fibres the lantern has, where they sit,
// and what each one is called.
type ModeStrategy interface {
	Kind() string
	FilePrefix() string
	Place(req PlaceRequest) (*Placement, error)
}

// IndexedStrategy packs fibres in concentric rings and labels them by
// generation index: "0", "1", and so on. Layers lists the core count per
// ring from the centre out; a leading 1 places a core on the axis.
type IndexedStrategy struct {
	Layers []int
}

// Kind returns the registry name of the strategy.
func (s IndexedStrategy) Kind() string { return KindPhotonic }

// FilePrefix returns the output filename prefix.
func (s IndexedStrategy) FilePrefix() string { return "photonic_lantern" }

// Place packs the rings and labels cores by generation order.
func (s IndexedStrategy) Place(req PlaceRequest) (*Placement, error) {
	if len(s.Layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "indexed lantern needs at least one layer")
	}
	l, err := layout.Rings(req.CladdingDiameter, s.Layers)
	if err != nil {
		return nil, err
	}
	p := &Placement{
		CapillaryDiameter: l.CapillaryDiameter(),
		DefaultLaunch:     "0",
	}
	for i, c := range l.Cores() {
		p.Ports = append(p.Ports, Port{Label: strconv.Itoa(i), X: c.X, Y: c.Y})
	}
	if req.Launch != "" {
		if _, ok := findPort(p.Ports, req.Launch); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"launch port %q is not in the bundle", req.Launch)
		}
		p.DefaultLaunch = req.Launch
	}
	return p, nil
}

// ModeSelectiveStrategy dedicates one fibre per guided LP mode up to and
// including Highest. LP01 sits on the axis; the remaining modes fill
// concentric rings grouped by radial number, higher radial numbers closer
// to the axis, in cutoff order within each ring.
type ModeSelectiveStrategy struct {
	Highest string
}

// Kind returns the registry name of the strategy.
func (s ModeSelectiveStrategy) Kind() string { return KindModeSelective }

// FilePrefix returns the output filename prefix.
func (s ModeSelectiveStrategy) FilePrefix() string { return "mspl" }

// Place builds the layout for the supported mode set and assigns modes to
// cores.
func (s ModeSelectiveStrategy) Place(req PlaceRequest) (*Placement, error) {
	counts, _, err := modes.RingPlan(s.Highest)
	if err != nil {
		return nil, err
	}
	l, err := layout.Rings(req.CladdingDiameter, counts)
	if err != nil {
		return nil, err
	}

	launch := req.Launch
	if launch == "" {
		launch = "LP01"
	}
	am, err := modes.Assign(s.Highest, launch, l, req.Fiber)
	if err != nil {
		return nil, err
	}

	p := &Placement{
		CapillaryDiameter: l.CapillaryDiameter(),
		DefaultLaunch:     launch,
		Modes:             am,
	}
	for _, label := range am.Labels() {
		a, _ := am.Get(label)
		p.Ports = append(p.Ports, Port{Label: a.Label, X: a.X, Y: a.Y})
	}
	return p, nil
}

func findPort(ports []Port, label string) (Port, bool) {
	for _, p := range ports {
		if p.Label == label {
			return p, true
		}
	}
	return Port{}, false
}

// parseLayers parses a comma-separated ring specification such as "1,6,12".
func parseLayers(arg string) ([]int, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty layer specification")
	}
	var layers []int
	for _, field := range strings.Split(arg, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"invalid layer count %q in %q", field, arg)
		}
		layers = append(layers, n)
	}
	return layers, nil
}
