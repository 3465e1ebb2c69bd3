// Package circuit models a photonic circuit as an ordered collection of
// global parameters, segments, pathways, monitors, user tapers and launch
// fields, and serializes it to the .ind CAD text format. Indices in the
// serialized output are 1-based and derive from insertion order, so two
// models built by the same sequence of calls always produce identical bytes.
package circuit

import (
	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// SegmentID is an opaque handle for a segment. It is valid only for the
// model that issued it.
type SegmentID int

// PathwayID is an opaque handle for a pathway.
type PathwayID int

// MonitorID is an opaque handle for a monitor.
type MonitorID int

// LaunchID is an opaque handle for a launch field.
type LaunchID int

// UserTaperID is an opaque handle for a user taper block.
type UserTaperID int

type segment struct {
	props *Properties
}

type pathway struct {
	segments []SegmentID
}

type monitor struct {
	pathway PathwayID
	props   *Properties
}

type launchField struct {
	props *Properties
}

type userTaper struct {
	props *Properties
}

// Model is a mutable photonic circuit. Entries of each kind are kept in
// insertion order. After Freeze the model rejects further mutation.
type Model struct {
	params     *Properties
	segments   []segment
	pathways   []pathway
	monitors   []monitor
	launches   []launchField
	userTapers []userTaper
	frozen     bool
}

// DefaultGlobalParams returns the baseline global parameter block. The k0
// and lambda entries are expressions evaluated by the external tool, not by
// this package.
func DefaultGlobalParams() *Properties {
	p := NewProperties()
	p.Set("alpha", 0)
	p.Set("background_index", 1)
	p.Set("cad_aspectratio", 1)
	p.Set("delta", 0.1)
	p.Set("dimension", 3)
	p.Set("eim", 0)
	p.Set("free_space_wavelength", 1.55)
	p.Set("height", 1)
	p.Set("k0", "(2 * pi) / free_space_wavelength")
	p.Set("lambda", "free_space_wavelength")
	p.Set("launch_tilt", 1)
	p.Set("sim_tool", string(SimBeamProp))
	p.Set("structure", string(StructChannel))
	p.Set("width", 1)
	return p
}

// DefaultSegmentProps returns the baseline property block for a fiber
// segment spanning begin and end cross sections.
func DefaultSegmentProps() *Properties {
	p := NewProperties()
	p.Set("structure", string(StructFiber))
	p.Set("comp_name", "CORE")
	p.Set("begin.x", 0)
	p.Set("begin.y", 0)
	p.Set("begin.z", 0)
	p.Set("begin.height", 0)
	p.Set("begin.width", 0)
	p.Set("begin.delta", 0)
	p.Set("end.x", 0)
	p.Set("end.y", 0)
	p.Set("end.z", 0)
	p.Set("end.height", 0)
	p.Set("end.width", 0)
	p.Set("end.delta", 0)
	return p
}

// DefaultLaunchProps returns the baseline property block for a launch field.
func DefaultLaunchProps() *Properties {
	p := NewProperties()
	p.Set("launch_pathway", 1)
	p.Set("launch_type", string(LaunchGaussian))
	p.Set("launch_random_set", 69)
	p.Set("launch_align_file", 1)
	p.Set("launch_width", 0)
	p.Set("launch_height", 0)
	p.Set("launch_position", 0)
	p.Set("launch_position_y", 0)
	p.Set("launch_polarizer", 2)
	p.Set("launch_polarizer_angle", 45)
	return p
}

// New returns an empty model seeded with the default global parameters.
func New() *Model {
	return &Model{params: DefaultGlobalParams()}
}

func (m *Model) mutable() error {
	if m.frozen {
		return errors.New(errors.ErrCodeLifecycle, "circuit model is frozen")
	}
	return nil
}

// SetGlobalParams merges props into the global parameter block, preserving
// the block's existing key order.
func (m *Model) SetGlobalParams(props *Properties) error {
	if err := m.mutable(); err != nil {
		return err
	}
	m.params.SetAll(props)
	return nil
}

// SetGlobalParam sets one global parameter.
func (m *Model) SetGlobalParam(key string, value any) error {
	if err := m.mutable(); err != nil {
		return err
	}
	m.params.Set(key, value)
	return nil
}

// AddSegment appends a segment built from the default segment properties
// merged with props, and returns its handle.
func (m *Model) AddSegment(props *Properties) (SegmentID, error) {
	if err := m.mutable(); err != nil {
		return 0, err
	}
	p := DefaultSegmentProps().SetAll(props)
	m.segments = append(m.segments, segment{props: p})
	return SegmentID(len(m.segments)), nil
}

// SetSegmentProps merges props into an existing segment's property block.
func (m *Model) SetSegmentProps(id SegmentID, props *Properties) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if err := m.checkSegment(id); err != nil {
		return err
	}
	m.segments[id-1].props.SetAll(props)
	return nil
}

// AddPathway appends a pathway traversing the given segments in order.
// Every referenced segment must already exist; on failure the model is
// unchanged.
func (m *Model) AddPathway(segments ...SegmentID) (PathwayID, error) {
	if err := m.mutable(); err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "pathway needs at least one segment")
	}
	for _, id := range segments {
		if err := m.checkSegment(id); err != nil {
			return 0, err
		}
	}
	m.pathways = append(m.pathways, pathway{segments: append([]SegmentID(nil), segments...)})
	return PathwayID(len(m.pathways)), nil
}

// AddMonitor appends a monitor observing the given pathway. The pathway
// must already exist; on failure the model is unchanged.
func (m *Model) AddMonitor(pw PathwayID, props *Properties) (MonitorID, error) {
	if err := m.mutable(); err != nil {
		return 0, err
	}
	if err := m.checkPathway(pw); err != nil {
		return 0, err
	}
	p := NewProperties()
	p.Set("pathway", int(pw))
	p.Set("monitor_type", string(MonitorWGPower))
	p.Set("monitor_component", string(ComponentBoth))
	p.SetAll(props)
	m.monitors = append(m.monitors, monitor{pathway: pw, props: p})
	return MonitorID(len(m.monitors)), nil
}

// AddLaunchField appends a launch field built from the default launch
// properties merged with props. The merged properties are also folded into
// the global parameter block, matching how the external tool resolves
// launch settings. A negative launch_power is rejected.
func (m *Model) AddLaunchField(props *Properties) (LaunchID, error) {
	if err := m.mutable(); err != nil {
		return 0, err
	}
	p := DefaultLaunchProps().SetAll(props)
	if power, ok := p.Float("launch_power"); ok && power < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"launch_power must be non-negative, got %g", power)
	}
	m.params.SetAll(p)
	m.launches = append(m.launches, launchField{props: p})
	return LaunchID(len(m.launches)), nil
}

// AddUserTaper appends a user taper block reading its profile from a data
// file. Segments reference it through UserTaperRef.
func (m *Model) AddUserTaper(filename string) (UserTaperID, error) {
	if err := m.mutable(); err != nil {
		return 0, err
	}
	if filename == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "user taper filename is empty")
	}
	p := NewProperties()
	p.Set("type", "UF_DATAFILE")
	p.Set("filename", filename)
	m.userTapers = append(m.userTapers, userTaper{props: p})
	return UserTaperID(len(m.userTapers)), nil
}

// SegmentCount returns the number of segments.
func (m *Model) SegmentCount() int { return len(m.segments) }

// PathwayCount returns the number of pathways.
func (m *Model) PathwayCount() int { return len(m.pathways) }

// MonitorCount returns the number of monitors.
func (m *Model) MonitorCount() int { return len(m.monitors) }

// LaunchCount returns the number of launch fields.
func (m *Model) LaunchCount() int { return len(m.launches) }

// GlobalParam returns the value of one global parameter.
func (m *Model) GlobalParam(key string) (any, bool) { return m.params.Get(key) }

// SegmentProps returns a copy of a segment's property block.
func (m *Model) SegmentProps(id SegmentID) (*Properties, error) {
	if err := m.checkSegment(id); err != nil {
		return nil, err
	}
	return m.segments[id-1].props.Clone(), nil
}

// Freeze marks the model read-only and returns the view the serializer
// consumes. Further mutation attempts fail with a lifecycle error.
func (m *Model) Freeze() *View {
	m.frozen = true
	return &View{m: m}
}

func (m *Model) checkSegment(id SegmentID) error {
	if id < 1 || int(id) > len(m.segments) {
		return errors.New(errors.ErrCodeDanglingRef, "segment %d does not exist", id)
	}
	return nil
}

func (m *Model) checkPathway(id PathwayID) error {
	if id < 1 || int(id) > len(m.pathways) {
		return errors.New(errors.ErrCodeDanglingRef, "pathway %d does not exist", id)
	}
	return nil
}

// View is a read-only snapshot of a frozen model.
type View struct {
	m *Model
}

// SegmentCount returns the number of segments.
func (v *View) SegmentCount() int { return v.m.SegmentCount() }

// PathwayCount returns the number of pathways.
func (v *View) PathwayCount() int { return v.m.PathwayCount() }

// MonitorCount returns the number of monitors.
func (v *View) MonitorCount() int { return v.m.MonitorCount() }

// LaunchCount returns the number of launch fields.
func (v *View) LaunchCount() int { return v.m.LaunchCount() }

// GlobalParam returns the value of one global parameter.
func (v *View) GlobalParam(key string) (any, bool) { return v.m.params.Get(key) }
