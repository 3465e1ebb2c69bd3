package circuit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// Serialize renders the circuit in the .ind text format. The output starts
// with the global parameter block, followed by optional sections for
// segments, user tapers, pathways, monitors and launch fields. Entries carry
// 1-based indices derived from insertion order, so serializing the same
// frozen view twice yields identical bytes.
func (v *View) Serialize(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Global parameters\n")
	v.m.params.each(func(key string, value any) {
		fmt.Fprintf(&b, "%s = %s\n", key, formatValue(value))
	})
	b.WriteString("\n")

	if len(v.m.segments) > 0 {
		b.WriteString("# Segments\n")
		for i, seg := range v.m.segments {
			fmt.Fprintf(&b, "segment %d\n", i+1)
			seg.props.each(func(key string, value any) {
				fmt.Fprintf(&b, "\t%s = %s\n", key, formatValue(value))
			})
			b.WriteString("end segment\n\n")
		}
	}

	if len(v.m.userTapers) > 0 {
		b.WriteString("# User Tapers\n")
		for i, ut := range v.m.userTapers {
			fmt.Fprintf(&b, "user_taper %d\n", i+1)
			ut.props.each(func(key string, value any) {
				fmt.Fprintf(&b, "\t%s = %s\n", key, formatValue(value))
			})
			b.WriteString("end user_taper\n\n")
		}
	}

	if len(v.m.pathways) > 0 {
		b.WriteString("# Pathways\n")
		for i, pw := range v.m.pathways {
			fmt.Fprintf(&b, "pathway %d\n", i+1)
			for _, seg := range pw.segments {
				if err := v.m.checkSegment(seg); err != nil {
					return errors.Wrap(errors.ErrCodeSerialization, err,
						"pathway %d references a missing segment", i+1)
				}
				fmt.Fprintf(&b, "\t%d\n", seg)
			}
			b.WriteString("end pathway\n\n")
		}
	}

	if len(v.m.monitors) > 0 {
		b.WriteString("# Monitors\n")
		for i, mon := range v.m.monitors {
			if err := v.m.checkPathway(mon.pathway); err != nil {
				return errors.Wrap(errors.ErrCodeSerialization, err,
					"monitor %d references a missing pathway", i+1)
			}
			fmt.Fprintf(&b, "monitor %d\n", i+1)
			mon.props.each(func(key string, value any) {
				fmt.Fprintf(&b, "\t%s = %s\n", key, formatValue(value))
			})
			b.WriteString("end monitor\n\n")
		}
	}

	if len(v.m.launches) > 0 {
		b.WriteString("# Launch Fields\n")
		for i, lf := range v.m.launches {
			fmt.Fprintf(&b, "launch_field %d\n", i+1)
			lf.props.each(func(key string, value any) {
				fmt.Fprintf(&b, "\t%s = %s\n", key, formatValue(value))
			})
			b.WriteString("end launch_field\n\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "writing circuit")
	}
	return nil
}

// Bytes renders the circuit to a byte slice.
func (v *View) Bytes() ([]byte, error) {
	var b strings.Builder
	if err := v.Serialize(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// WriteFile renders the circuit to path, creating parent directories as
// needed. A partially written file is removed on failure.
func (v *View) WriteFile(path string) error {
	data, err := v.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeSerialization, err, "creating output directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		os.Remove(path)
		return errors.Wrap(errors.ErrCodeSerialization, err, "writing circuit file")
	}
	return nil
}
