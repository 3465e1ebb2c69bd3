package circuit

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

func TestPropertiesOrder(t *testing.T) {
	p := NewProperties()
	p.Set("b", 1)
	p.Set("a", 2)
	p.Set("c", 3)
	p.Set("a", 9)

	got := p.Keys()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if v, _ := p.Get("a"); v != 9 {
		t.Errorf("Get(a) = %v, want 9", v)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0, "0"},
		{0.1, "0.1"},
		{1.55, "1.55"},
		{55000.0, "55000"},
		{"free_space_wavelength", "free_space_wavelength"},
		{int64(7), "7"},
		{true, "1"},
		// Unhandled types fall through to their default rendering rather
		// than an empty value.
		{uint(3), "3"},
		{[]int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultSegmentPropsZeroGeometry(t *testing.T) {
	p := DefaultSegmentProps()
	for _, key := range []string{
		"begin.height", "begin.width", "begin.delta",
		"end.height", "end.width", "end.delta",
	} {
		if v, _ := p.Get(key); v != 0 {
			t.Errorf("%s = %v, want 0", key, v)
		}
	}
}

func TestDefaultGlobalParamOrder(t *testing.T) {
	want := []string{
		"alpha", "background_index", "cad_aspectratio", "delta", "dimension",
		"eim", "free_space_wavelength", "height", "k0", "lambda",
		"launch_tilt", "sim_tool", "structure", "width",
	}
	got := DefaultGlobalParams().Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddPathwayDanglingRef(t *testing.T) {
	m := New()
	if _, err := m.AddPathway(1); !errors.Is(err, errors.ErrCodeDanglingRef) {
		t.Fatalf("AddPathway(1) on empty model: got %v, want DANGLING_REF", err)
	}
	if m.PathwayCount() != 0 {
		t.Errorf("failed AddPathway left %d pathways", m.PathwayCount())
	}

	seg, err := m.AddSegment(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddPathway(seg, seg+1); !errors.Is(err, errors.ErrCodeDanglingRef) {
		t.Fatalf("AddPathway with one bad id: got %v, want DANGLING_REF", err)
	}
	if m.PathwayCount() != 0 {
		t.Errorf("partially valid AddPathway left %d pathways", m.PathwayCount())
	}
}

func TestAddMonitorDanglingRef(t *testing.T) {
	m := New()
	if _, err := m.AddMonitor(1, nil); !errors.Is(err, errors.ErrCodeDanglingRef) {
		t.Fatalf("AddMonitor(1) on empty model: got %v, want DANGLING_REF", err)
	}
	if m.MonitorCount() != 0 {
		t.Errorf("failed AddMonitor left %d monitors", m.MonitorCount())
	}
}

func TestLaunchPowerValidation(t *testing.T) {
	m := New()
	props := NewProperties().Set("launch_power", -0.5)
	if _, err := m.AddLaunchField(props); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("negative launch_power: got %v, want INVALID_INPUT", err)
	}
	if m.LaunchCount() != 0 {
		t.Errorf("rejected launch field was stored")
	}
}

func TestLaunchFoldsIntoGlobals(t *testing.T) {
	m := New()
	props := NewProperties().
		Set("launch_type", string(LaunchWGMode)).
		Set("launch_mode", 1)
	if _, err := m.AddLaunchField(props); err != nil {
		t.Fatal(err)
	}
	if v, ok := m.GlobalParam("launch_type"); !ok || v != string(LaunchWGMode) {
		t.Errorf("global launch_type = %v, want LAUNCH_WGMODE", v)
	}
	if v, ok := m.GlobalParam("launch_mode"); !ok || v != 1 {
		t.Errorf("global launch_mode = %v, want 1", v)
	}
	// Defaults the caller did not override fold in too.
	if v, ok := m.GlobalParam("launch_random_set"); !ok || v != 69 {
		t.Errorf("global launch_random_set = %v, want 69", v)
	}
}

func TestFreezeRejectsMutation(t *testing.T) {
	m := New()
	if _, err := m.AddSegment(nil); err != nil {
		t.Fatal(err)
	}
	m.Freeze()

	if _, err := m.AddSegment(nil); !errors.Is(err, errors.ErrCodeLifecycle) {
		t.Errorf("AddSegment after Freeze: got %v, want LIFECYCLE", err)
	}
	if _, err := m.AddPathway(1); !errors.Is(err, errors.ErrCodeLifecycle) {
		t.Errorf("AddPathway after Freeze: got %v, want LIFECYCLE", err)
	}
	if err := m.SetGlobalParam("width", 2); !errors.Is(err, errors.ErrCodeLifecycle) {
		t.Errorf("SetGlobalParam after Freeze: got %v, want LIFECYCLE", err)
	}
}

func buildSmallCircuit(t *testing.T) *Model {
	t.Helper()
	m := New()
	segProps := NewProperties().
		Set("comp_name", "CORE_0").
		Set("begin.width", 8.2).
		Set("end.z", 50000)
	seg, err := m.AddSegment(segProps)
	if err != nil {
		t.Fatal(err)
	}
	pw, err := m.AddPathway(seg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddMonitor(pw, nil); err != nil {
		t.Fatal(err)
	}
	lfProps := NewProperties().Set("launch_pathway", int(pw))
	if _, err := m.AddLaunchField(lfProps); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSerializeSections(t *testing.T) {
	v := buildSmallCircuit(t).Freeze()
	data, err := v.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# Global parameters\nalpha = 0\n") {
		t.Errorf("output does not start with global parameter block:\n%s", out)
	}
	for _, section := range []string{
		"# Segments\nsegment 1\n",
		"# Pathways\npathway 1\n\t1\nend pathway\n",
		"# Monitors\nmonitor 1\n\tpathway = 1\n",
		"# Launch Fields\nlaunch_field 1\n\tlaunch_pathway = 1\n",
	} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing %q", section)
		}
	}
	// Overrides land in place of the defaults they replace.
	if !strings.Contains(out, "\tcomp_name = CORE_0\n") {
		t.Errorf("segment override comp_name missing:\n%s", out)
	}
	if !strings.Contains(out, "\tend.z = 50000\n") {
		t.Errorf("segment override end.z missing")
	}
	// Launch properties folded into the global block render there too.
	head := out[:strings.Index(out, "# Segments")]
	if !strings.Contains(head, "launch_type = LAUNCH_GAUSSIAN\n") {
		t.Errorf("global block missing folded launch_type:\n%s", head)
	}
}

func TestSerializeIdempotent(t *testing.T) {
	v := buildSmallCircuit(t).Freeze()
	first, err := v.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	second, err := v.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two serializations of the same frozen view differ")
	}
}

func TestSerializeEmptySectionsOmitted(t *testing.T) {
	v := New().Freeze()
	data, err := v.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, header := range []string{"# Segments", "# Pathways", "# Monitors", "# Launch Fields", "# User Tapers"} {
		if strings.Contains(out, header) {
			t.Errorf("empty circuit rendered section %q", header)
		}
	}
}

func TestUserTaperBlock(t *testing.T) {
	m := New()
	id, err := m.AddUserTaper("taper_profile.dat")
	if err != nil {
		t.Fatal(err)
	}
	if ref := UserTaperRef(int(id)); ref != "TAPER_USER_1" {
		t.Errorf("UserTaperRef = %q, want TAPER_USER_1", ref)
	}
	data, err := m.Freeze().Bytes()
	if err != nil {
		t.Fatal(err)
	}
	want := "# User Tapers\nuser_taper 1\n\ttype = UF_DATAFILE\n\tfilename = taper_profile.dat\nend user_taper\n"
	if !strings.Contains(string(data), want) {
		t.Errorf("output missing user taper block:\n%s", data)
	}
}

func TestRelativeDist(t *testing.T) {
	got := RelativeDist("Taper_Length", 1)
	if got != "Taper_Length rel begin segment 1" {
		t.Errorf("RelativeDist = %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/nested/out.ind"
	v := buildSmallCircuit(t).Freeze()
	if err := v.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := v.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(onDisk, data) {
		t.Error("file contents differ from Bytes output")
	}
}
