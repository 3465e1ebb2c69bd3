package config

// Default returns the baseline five-core lantern configuration. Most
// geometric quantities are expressions over the pl_params group so the CAD
// tool re-derives them when a single parameter changes.
func Default() *Config {
	cfg := empty()

	cfg.PLParams.
		Set("Num_Cores_Ring", 5).
		Set("Angular_Sep", "360 / Num_Cores_Ring").
		Set("Rotate_View", 0).
		Set("Taper_Length", 55000).
		Set("Taper_Slope", 14.9).
		Set("Diameter_MM", 10).
		Set("Diameter_SM_Clad", 125).
		Set("Core_Ring_Radius", "Diameter_SM_Clad / (2 * sin(180 / Num_Cores_Ring))").
		Set("Core_Ring_Diameter", "2 * Core_Ring_Radius").
		Set("Diameter_Center_Clad", "Core_Ring_Diameter-Diameter_SM_Clad").
		Set("Capillary_Diameter", "Core_Ring_Diameter+Diameter_SM_Clad").
		Set("Diameter_SM_Core", 8.2).
		Set("Index_Capillary", 1.4345).
		Set("Index_SM1500G80_Clad_1550", 1.44399).
		Set("Index_SM1500G80_Core_1550", 1.45636).
		Set("Index_SMF28_Clad_1550", 1.44692).
		Set("Index_SMF28_Core_1550", 1.45213).
		Set("Delta_Centre_Clad", "Index_SM1500G80_Clad_1550 - Index_Capillary").
		Set("Delta_Centre_Core", "Index_SM1500G80_Core_1550 - Index_Capillary").
		Set("Delta_Clad", "Index_SMF28_Clad_1550 - Index_Capillary").
		Set("Delta_Core", "Index_SMF28_Core_1550 - Index_Capillary")

	cfg.CenterCore.
		Set("structure", "STRUCT_FIBER").
		Set("comp_name", "CENTER_CORE").
		Set("width_taper", "TAPER_LINEAR").
		Set("height_taper", "TAPER_LINEAR").
		Set("begin.x", 0).
		Set("begin.z", 0).
		Set("begin.height", "Diameter_SM_Core").
		Set("begin.width", "Diameter_SM_Core").
		Set("begin.delta", "Delta_Centre_Core").
		Set("end.x", 0).
		Set("end.height", "Diameter_SM_Core / Taper_Slope").
		Set("end.width", "Diameter_SM_Core / Taper_Slope").
		Set("end.delta", "Delta_Centre_Core")

	cfg.CenterCladding.
		Set("structure", "STRUCT_FIBER").
		Set("comp_name", "CENTER_CLADDING").
		Set("width_taper", "TAPER_LINEAR").
		Set("height_taper", "TAPER_LINEAR").
		Set("begin.x", 0).
		Set("begin.z", 0).
		Set("begin.height", "Diameter_Center_Clad").
		Set("begin.width", "Diameter_Center_Clad").
		Set("begin.delta", "Delta_Centre_Clad").
		Set("end.x", 0).
		Set("end.height", "Diameter_Center_Clad / Taper_Slope").
		Set("end.width", "Diameter_Center_Clad / Taper_Slope").
		Set("end.delta", "Delta_Centre_Clad")

	cfg.Core.
		Set("structure", "STRUCT_FIBER").
		Set("comp_name", "_CORE").
		Set("width_taper", "TAPER_LINEAR").
		Set("height_taper", "TAPER_LINEAR").
		Set("position_y_taper", "TAPER_LINEAR").
		Set("position_taper", "TAPER_LINEAR").
		Set("begin.x", 0).
		Set("begin.y", 0).
		Set("begin.z", 0).
		Set("begin.height", "Diameter_SM_Core").
		Set("begin.width", "Diameter_SM_Core").
		Set("begin.delta", "Delta_Core").
		Set("end.x", 0).
		Set("end.y", 0).
		Set("end.height", "Diameter_SM_Core / Taper_Slope").
		Set("end.width", "Diameter_SM_Core / Taper_Slope").
		Set("end.delta", "Delta_Core")

	cfg.Cladding.
		Set("structure", "STRUCT_FIBER").
		Set("comp_name", "_CLADDING").
		Set("width_taper", "TAPER_LINEAR").
		Set("height_taper", "TAPER_LINEAR").
		Set("position_y_taper", "TAPER_LINEAR").
		Set("position_taper", "TAPER_LINEAR").
		Set("begin.x", 0).
		Set("begin.y", 0).
		Set("begin.z", 0).
		Set("begin.height", "Diameter_SM_Clad").
		Set("begin.width", "Diameter_SM_Clad").
		Set("begin.delta", "Delta_Clad").
		Set("end.x", 0).
		Set("end.y", 0).
		Set("end.height", "Diameter_SM_Clad / Taper_Slope").
		Set("end.width", "Diameter_SM_Clad / Taper_Slope").
		Set("end.delta", "Delta_Clad")

	cfg.Capillary.
		Set("structure", "STRUCT_FIBER").
		Set("comp_name", "CAPILLARY").
		Set("width_taper", "TAPER_LINEAR").
		Set("height_taper", "TAPER_LINEAR").
		Set("begin.x", 0).
		Set("begin.z", 0).
		Set("begin.height", "Capillary_Diameter").
		Set("begin.width", "Capillary_Diameter").
		Set("begin.delta", 0).
		Set("end.x", 0).
		Set("end.height", "Capillary_Diameter / Taper_Slope").
		Set("end.width", "Capillary_Diameter / Taper_Slope").
		Set("end.delta", 0)

	cfg.LaunchField.
		Set("launch_type", "LAUNCH_GAUSSIAN").
		Set("launch_width", "Diameter_SM_Core").
		Set("launch_height", "Diameter_SM_Core")

	return cfg
}
