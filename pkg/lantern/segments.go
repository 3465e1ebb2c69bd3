package lantern

import (
	"fmt"
	"strings"

	"github.com/bongkokwei/rsoft-cad/pkg/circuit"
	"github.com/bongkokwei/rsoft-cad/pkg/taper"
)

// populateCircuit adds every physical structure to the circuit model: core
// segments first, then cladding segments, then the capillary. Core and
// capillary segments each get a pathway and a monitor; claddings do not.
// The segment end geometry comes from the taper model rather than from a
// plain division by the taper factor, so sigmoid bundles serialize with
// their modelled endpoints.
func (b *Builder) populateCircuit(p Params) error {
	coreDia := make(map[string]float64, len(b.fibers))
	for label, fp := range b.fibers {
		coreDia[label] = fp.CoreDia
	}
	coreEnds := b.bundle.CoreEndpoints(coreDia, b.defaults.CladdingDia)
	cladEnds := b.bundle.CladdingEndpoints()

	if err := b.addFiberSegments("core", p, coreEnds); err != nil {
		return err
	}
	if err := b.addFiberSegments("cladding", p, cladEnds); err != nil {
		return err
	}
	return b.addCapillarySegment(p)
}

// positionKeys are always derived from the layout and taper model, so a
// template cannot move a segment.
var positionKeys = map[string]bool{
	"comp_name": true,
	"begin.x":   true, "begin.y": true, "begin.z": true,
	"end.x": true, "end.y": true, "end.z": true,
}

// overlayTemplate copies template parameters onto computed segment
// properties, skipping position keys. Expression strings survive as-is and
// are resolved by the CAD tool against the global parameter table.
func overlayTemplate(props, tpl *circuit.Properties) {
	if tpl == nil {
		return
	}
	for _, k := range tpl.Keys() {
		if positionKeys[k] {
			continue
		}
		if v, ok := tpl.Get(k); ok {
			props.Set(k, v)
		}
	}
}

func (b *Builder) addFiberSegments(kind string, p Params, ends map[string]taper.Endpoint) error {
	for _, port := range b.placement.Ports {
		fp := b.fibers[port.Label]

		dia := fp.CoreDia
		index := fp.CoreIndex
		if kind == "cladding" {
			dia = fp.CladdingDia
			index = fp.CladdingIndex
		}
		delta := index - fp.BgIndex
		end := ends[port.Label]

		props := circuit.NewProperties()
		props.Set("comp_name", fmt.Sprintf("%s_%s", port.Label, strings.ToUpper(kind)))
		props.Set("begin.x", port.X)
		props.Set("begin.y", port.Y)
		props.Set("begin.z", 0)
		props.Set("begin.height", dia)
		props.Set("begin.width", dia)
		props.Set("begin.delta", delta)
		props.Set("end.x", end.X)
		props.Set("end.y", end.Y)
		props.Set("end.z", end.Z)
		props.Set("end.height", end.Height)
		props.Set("end.width", end.Width)
		props.Set("end.delta", delta)
		tpl := b.templates.Core
		if kind == "cladding" {
			tpl = b.templates.Cladding
		}
		if port.X == 0 && port.Y == 0 {
			if kind == "core" && b.templates.CenterCore != nil {
				tpl = b.templates.CenterCore
			} else if kind == "cladding" && b.templates.CenterCladding != nil {
				tpl = b.templates.CenterCladding
			}
		}
		overlayTemplate(props, tpl)
		if fp.TaperFactor > 1 || p.SigmoidTaper {
			b.setTaperProps(props, p)
		}

		seg, err := b.circuit.AddSegment(props)
		if err != nil {
			return err
		}
		if kind != "core" {
			continue
		}
		pw, err := b.circuit.AddPathway(seg)
		if err != nil {
			return err
		}
		b.pathways[port.Label] = pw
		monProps := circuit.NewProperties().Set("monitor_type", string(p.Monitor))
		if _, err := b.circuit.AddMonitor(pw, monProps); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addCapillarySegment(p Params) error {
	end := b.bundle.CapillaryEndpoint()
	capDia := b.placement.CapillaryDiameter

	props := circuit.NewProperties()
	props.Set("comp_name", "CAPILLARY")
	props.Set("begin.x", 0)
	props.Set("begin.y", 0)
	props.Set("begin.z", 0)
	props.Set("begin.height", capDia)
	props.Set("begin.width", capDia)
	props.Set("begin.delta", 0)
	props.Set("end.x", end.X)
	props.Set("end.y", end.Y)
	props.Set("end.z", end.Z)
	props.Set("end.height", end.Height)
	props.Set("end.width", end.Width)
	props.Set("end.delta", 0)
	overlayTemplate(props, b.templates.Capillary)
	b.setTaperProps(props, p)

	seg, err := b.circuit.AddSegment(props)
	if err != nil {
		return err
	}
	pw, err := b.circuit.AddPathway(seg)
	if err != nil {
		return err
	}
	b.pathways["capillary"] = pw
	monProps := circuit.NewProperties().Set("monitor_type", string(circuit.MonitorPartial))
	_, err = b.circuit.AddMonitor(pw, monProps)
	return err
}

// setTaperProps marks every tapered dimension of a segment with the active
// taper reference: a user taper block when one was registered, else the
// built-in linear taper.
func (b *Builder) setTaperProps(props *circuit.Properties, p Params) {
	ref := string(circuit.TaperLinear)
	if p.UserTaper != "" {
		ref = circuit.UserTaperRef(int(b.userTaper))
	}
	props.Set("width_taper", ref)
	props.Set("height_taper", ref)
	props.Set("position_taper", ref)
	props.Set("position_y_taper", ref)
}
