// Package lantern builds photonic lantern designs. A Builder pairs a mode
// strategy, which decides how many fibres the bundle has and what each one
// is called, with a circuit model that accumulates the segments, pathways,
// monitors and launch fields of the design. Write serializes the finished
// circuit to a .ind file the external CAD tool opens directly.
package lantern

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bongkokwei/rsoft-cad/pkg/circuit"
	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/modes"
	"github.com/bongkokwei/rsoft-cad/pkg/taper"
)

// State tracks the builder lifecycle. Operations are only legal in the
// state that precedes them; anything else fails with a lifecycle error.
type State int

const (
	StateNew State = iota
	StatePopulated
	StateWritten
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePopulated:
		return "populated"
	case StateWritten:
		return "written"
	}
	return "unknown"
}

// FiberProps are the per-fibre physical parameters, in microns and
// refractive index units.
type FiberProps struct {
	CoreDia       float64
	CladdingDia   float64
	CoreIndex     float64
	CladdingIndex float64
	BgIndex       float64
	TaperFactor   float64
	TaperLength   float64
}

// DefaultFiberProps returns SMF-28 like fibre parameters in a silica
// capillary.
func DefaultFiberProps() FiberProps {
	return FiberProps{
		CoreDia:       10.4,
		CladdingDia:   125.0,
		CoreIndex:     1.45213,
		CladdingIndex: 1.44692,
		BgIndex:       1.4345,
		TaperFactor:   1,
		TaperLength:   80000,
	}
}

// Params configure one CreateLantern call. Zero values select the
// defaults noted per field; the per-label maps override single fibres.
type Params struct {
	Launch           string  // launch label for mode placement; strategy default when empty
	TaperFactor      float64 // 1 means no tapering
	TaperLength      float64 // microns; default 80000
	CapillaryOD      float64 // microns; default 900
	FinalCapillaryID float64 // bore diameter at the tapered end; default 40
	Points           int     // z samples in the taper model; default 100
	SigmoidTaper     bool    // shape the taper along the sigmoid profile

	CoreDiameters     map[string]float64
	CladdingDiameters map[string]float64
	CoreIndices       map[string]float64
	CladdingIndices   map[string]float64
	BgIndices         map[string]float64

	Monitor    circuit.MonitorType // default MONITOR_FIBER_POWER
	LaunchKind circuit.LaunchType  // default LAUNCH_GAUSSIAN
	UserTaper  string              // profile data file; referenced instead of TAPER_LINEAR
	FemNev     int                 // eigenmodes to solve for; default 1
	SimParams  *circuit.Properties // extra global parameters
	Wavelength float64             // microns; default 1.55
}

func (p *Params) applyDefaults() {
	if p.TaperFactor == 0 {
		p.TaperFactor = 1
	}
	if p.TaperLength == 0 {
		p.TaperLength = 80000
	}
	if p.CapillaryOD == 0 {
		p.CapillaryOD = 900
	}
	if p.FinalCapillaryID == 0 {
		p.FinalCapillaryID = 40
	}
	if p.Points == 0 {
		p.Points = 100
	}
	if p.Monitor == "" {
		p.Monitor = circuit.MonitorFiberPower
	}
	if p.LaunchKind == "" {
		p.LaunchKind = circuit.LaunchGaussian
	}
	if p.FemNev == 0 {
		p.FemNev = 1
	}
	if p.Wavelength == 0 {
		p.Wavelength = 1.55
	}
}

// Builder assembles one lantern design. It is not safe for concurrent use.
type Builder struct {
	strategy ModeStrategy
	state    State
	circuit  *circuit.Model
	defaults FiberProps
	logger   *log.Logger
	runID    string

	placement  *Placement
	fibers     map[string]FiberProps
	pathways   map[string]circuit.PathwayID
	launches   int
	launchKind circuit.LaunchType
	userTaper  circuit.UserTaperID
	bundle     *taper.BundleModel
	templates  Templates
}

// Templates hold per-segment parameter overlays, typically converted from
// the segment groups of a config file. Non-nil blocks are applied on top of
// the computed properties of the matching segment; expression strings pass
// through to the written file for the CAD tool to evaluate. Position keys
// always stay computed so a template cannot move a fibre.
type Templates struct {
	CenterCore     *circuit.Properties
	CenterCladding *circuit.Properties
	Core           *circuit.Properties
	Cladding       *circuit.Properties
	Capillary      *circuit.Properties
	Launch         *circuit.Properties
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger attaches a structured logger; the default discards output.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithFiberDefaults replaces the baseline fibre parameters applied to
// every port before per-label overrides.
func WithFiberDefaults(p FiberProps) Option {
	return func(b *Builder) { b.defaults = p }
}

// WithTemplates installs segment templates overlaid onto the computed
// segments and launch fields.
func WithTemplates(t Templates) Option {
	return func(b *Builder) { b.templates = t }
}

// NewBuilder creates a builder around the given strategy.
func NewBuilder(strategy ModeStrategy, opts ...Option) *Builder {
	b := &Builder{
		strategy: strategy,
		circuit:  circuit.New(),
		defaults: DefaultFiberProps(),
		logger:   log.New(io.Discard),
		runID:    uuid.NewString(),
		fibers:   make(map[string]FiberProps),
		pathways: make(map[string]circuit.PathwayID),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.circuit.SetGlobalParams(baseGlobals(b.defaults.BgIndex))
	return b
}

func baseGlobals(bgIndex float64) *circuit.Properties {
	p := circuit.NewProperties()
	p.Set("structure", string(circuit.StructFiber))
	p.Set("cad_aspectratio_x", 50)
	p.Set("cad_aspectratio_y", 50)
	p.Set("background_index", bgIndex)
	p.Set("grid_size", 1)
	p.Set("grid_size_y", 1)
	p.Set("fem_nev", 1)
	p.Set("sim_tool", string(circuit.SimBeamProp))
	p.Set("slice_display_mode", "DISPLAY_CONTOURMAPXZ")
	return p
}

// Kind returns the builder's registry kind.
func (b *Builder) Kind() string { return b.strategy.Kind() }

// State returns the current lifecycle state.
func (b *Builder) State() State { return b.state }

// RunID returns the unique identifier of this build.
func (b *Builder) RunID() string { return b.runID }

// Ports returns the bundle ports after CreateLantern.
func (b *Builder) Ports() []Port {
	if b.placement == nil {
		return nil
	}
	return append([]Port(nil), b.placement.Ports...)
}

// ModeMap returns the mode assignment, or nil for index-labelled lanterns
// or before CreateLantern.
func (b *Builder) ModeMap() *modes.Map {
	if b.placement == nil {
		return nil
	}
	return b.placement.Modes
}

// Bundle returns the taper model computed by CreateLantern.
func (b *Builder) Bundle() *taper.BundleModel { return b.bundle }

// CreateLantern lays out the bundle and populates the circuit: one core and
// one cladding segment per fibre, each core with its own pathway and
// monitor, plus the capillary that encloses the bundle. It moves the
// builder from new to populated and may only be called once.
func (b *Builder) CreateLantern(p Params) error {
	if b.state != StateNew {
		return errors.New(errors.ErrCodeLifecycle,
			"CreateLantern called in state %q, want new", b.state)
	}
	p.applyDefaults()
	b.launchKind = p.LaunchKind
	if err := errors.ValidatePositive("taper factor", p.TaperFactor); err != nil {
		return err
	}
	if err := errors.ValidatePositive("taper length", p.TaperLength); err != nil {
		return err
	}

	placement, err := b.strategy.Place(PlaceRequest{
		CladdingDiameter: b.defaults.CladdingDia,
		Fiber: modes.Fiber{
			CoreDiameter:  b.defaults.CoreDia,
			CoreIndex:     b.defaults.CoreIndex,
			CladdingIndex: b.defaults.CladdingIndex,
			Wavelength:    p.Wavelength,
		},
		Launch: p.Launch,
	})
	if err != nil {
		return err
	}
	b.placement = placement
	b.logger.Info("bundle laid out",
		"kind", b.strategy.Kind(),
		"ports", len(placement.Ports),
		"capillary_id", placement.CapillaryDiameter)

	for _, port := range placement.Ports {
		fp := b.defaults
		fp.TaperFactor = p.TaperFactor
		fp.TaperLength = p.TaperLength
		applyOverride(&fp.CoreDia, p.CoreDiameters, port.Label)
		applyOverride(&fp.CladdingDia, p.CladdingDiameters, port.Label)
		applyOverride(&fp.CoreIndex, p.CoreIndices, port.Label)
		applyOverride(&fp.CladdingIndex, p.CladdingIndices, port.Label)
		applyOverride(&fp.BgIndex, p.BgIndices, port.Label)
		b.fibers[port.Label] = fp
	}

	if p.UserTaper != "" {
		id, err := b.circuit.AddUserTaper(p.UserTaper)
		if err != nil {
			return err
		}
		b.userTaper = id
	}

	if err := b.modelBundle(p); err != nil {
		return err
	}
	if err := b.populateCircuit(p); err != nil {
		return err
	}

	sim := circuit.NewProperties()
	sim.Set("grid_size", 1)
	sim.Set("grid_size_y", 1)
	sim.Set("fem_nev", p.FemNev)
	sim.Set("free_space_wavelength", p.Wavelength)
	sim.Set("slice_display_mode", "DISPLAY_CONTOURMAPXY")
	sim.SetAll(p.SimParams)
	if err := b.circuit.SetGlobalParams(sim); err != nil {
		return err
	}

	b.state = StatePopulated
	return nil
}

func applyOverride(dst *float64, overrides map[string]float64, label string) {
	if v, ok := overrides[label]; ok {
		*dst = v
	}
}

func (b *Builder) modelBundle(p Params) error {
	labels := make([]string, len(b.placement.Ports))
	positions := make([][2]float64, len(b.placement.Ports))
	for i, port := range b.placement.Ports {
		labels[i] = port.Label
		positions[i] = [2]float64{port.X, port.Y}
	}
	model, err := taper.ModelBundle(taper.BundleParams{
		Points:           p.Points,
		TaperLength:      p.TaperLength,
		CladdingDiameter: b.defaults.CladdingDia,
		CapillaryID:      b.placement.CapillaryDiameter,
		FinalCapillaryID: p.FinalCapillaryID,
		CapillaryOD:      p.CapillaryOD,
		Sigmoid:          p.SigmoidTaper,
	}, labels, positions)
	if err != nil {
		return err
	}
	b.bundle = model
	return nil
}

// AddLaunchField adds a launch field excited from the fibre holding the
// given label, or from the strategy's default port when label is empty.
// Extra launch properties may override the derived ones.
func (b *Builder) AddLaunchField(label string, overrides *circuit.Properties) error {
	if b.state != StatePopulated {
		return errors.New(errors.ErrCodeLifecycle,
			"AddLaunchField called in state %q, want populated", b.state)
	}
	if label == "" {
		label = b.placement.DefaultLaunch
	}
	port, ok := findPort(b.placement.Ports, label)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput,
			"launch port %q is not in the bundle", label)
	}
	fp := b.fibers[label]

	props := circuit.NewProperties()
	props.Set("launch_type", string(b.launchKind))
	props.Set("launch_tilt", 0)
	props.Set("launch_pathway", b.circuit.PathwayCount())
	props.Set("launch_width", fp.CoreDia)
	props.Set("launch_height", fp.CoreDia)
	props.Set("launch_position", port.X)
	props.Set("launch_position_y", port.Y)
	overlayTemplate(props, b.templates.Launch)
	props.SetAll(overrides)

	if _, err := b.circuit.AddLaunchField(props); err != nil {
		return err
	}
	b.launches++
	b.logger.Debug("launch field added", "port", label)
	return nil
}

// Write serializes the design into dir. The filename combines the strategy
// prefix, the core count and tag; an empty tag uses the run identifier. A
// design without at least one launch field is incomplete and is not
// written.
func (b *Builder) Write(dir, tag string) (*Design, error) {
	if b.state != StatePopulated {
		return nil, errors.New(errors.ErrCodeLifecycle,
			"Write called in state %q, want populated", b.state)
	}
	if b.launches == 0 {
		return nil, errors.New(errors.ErrCodeIncompleteDesign,
			"design has no launch fields")
	}
	if tag == "" {
		tag = b.runID[:8]
	}
	filename := fmt.Sprintf("%s_%d_cores_%s.ind",
		b.strategy.FilePrefix(), len(b.placement.Ports), tag)
	if err := errors.ValidateDesignFilename(filename); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, filename)
	if err := b.circuit.Freeze().WriteFile(path); err != nil {
		return nil, err
	}
	b.state = StateWritten
	b.logger.Info("design written", "path", path, "run_id", b.runID)

	coreMap := make(map[string][2]float64, len(b.placement.Ports))
	for _, port := range b.placement.Ports {
		coreMap[port.Label] = [2]float64{port.X, port.Y}
	}
	return &Design{
		Path:              path,
		Filename:          filename,
		RunID:             b.runID,
		Kind:              b.strategy.Kind(),
		CoreMap:           coreMap,
		CapillaryDiameter: b.placement.CapillaryDiameter,
	}, nil
}

// Design is the immutable record of a written lantern.
type Design struct {
	Path              string
	Filename          string
	RunID             string
	Kind              string
	CoreMap           map[string][2]float64
	CapillaryDiameter float64
}
