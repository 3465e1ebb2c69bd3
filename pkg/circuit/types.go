package circuit

import "fmt"

// Structure identifies the geometric primitive a segment instantiates.
type Structure string

const (
	StructFiber   Structure = "STRUCT_FIBER"
	StructChannel Structure = "STRUCT_CHANNEL"
)

// SimTool selects the simulation backend named in the global parameters.
type SimTool string

const (
	SimBeamProp SimTool = "ST_BEAMPROP"
	SimFemSim   SimTool = "ST_FEMSIM"
)

// MonitorType selects what a monitor records along its pathway.
type MonitorType string

const (
	MonitorWGPower    MonitorType = "MONITOR_WG_POWER"
	MonitorFiberPower MonitorType = "MONITOR_FIBER_POWER"
	MonitorFieldNeff  MonitorType = "MONITOR_FIELD_NEFF"
	MonitorPartial    MonitorType = "MONITOR_PARTIAL_POWER"
	MonitorFieldPhase MonitorType = "MONITOR_FIELD_PHASE"
)

// MonitorComponent selects the field component a monitor samples.
type MonitorComponent string

const (
	ComponentBoth  MonitorComponent = "COMPONENT_BOTH"
	ComponentMajor MonitorComponent = "COMPONENT_MAJOR"
	ComponentMinor MonitorComponent = "COMPONENT_MINOR"
)

// LaunchType selects the excitation profile of a launch field.
type LaunchType string

const (
	LaunchGaussian  LaunchType = "LAUNCH_GAUSSIAN"
	LaunchWGMode    LaunchType = "LAUNCH_WGMODE"
	LaunchMultimode LaunchType = "LAUNCH_MULTIMODE"
	LaunchFile      LaunchType = "LAUNCH_FILE"
)

// TaperType names a built-in taper shape for segment width/height profiles.
type TaperType string

const (
	TaperLinear TaperType = "TAPER_LINEAR"
	TaperQuad   TaperType = "TAPER_QUADRATIC"
)

// UserTaperRef returns the symbolic name a segment uses to reference the
// nth user taper block, for example "TAPER_USER_1".
func UserTaperRef(n int) string {
	return fmt.Sprintf("TAPER_USER_%d", n)
}

// RelativeDist renders an expression that positions a coordinate relative to
// the start of a segment, for example "Taper_Length rel begin segment 1".
func RelativeDist(expr string, segment SegmentID) string {
	return fmt.Sprintf("%s rel begin segment %d", expr, segment)
}
