// Package config loads, edits and saves lantern parameter files. A file is
// TOML with one table per parameter group. Values are numbers or opaque
// expression strings that the CAD tool evaluates, so key order inside each
// group is preserved from the source file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bongkokwei/rsoft-cad/pkg/circuit"
	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// Group is an insertion-ordered set of parameters.
type Group struct {
	keys []string
	vals map[string]any
}

// NewGroup returns an empty parameter group.
func NewGroup() *Group {
	return &Group{vals: make(map[string]any)}
}

// Set stores value under key, keeping the key's original position when it
// already exists. It returns the receiver for chaining.
func (g *Group) Set(key string, value any) *Group {
	if _, ok := g.vals[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.vals[key] = value
	return g
}

// Get returns the value stored under key.
func (g *Group) Get(key string) (any, bool) {
	v, ok := g.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (g *Group) Keys() []string { return append([]string(nil), g.keys...) }

// Len returns the number of parameters.
func (g *Group) Len() int { return len(g.keys) }

// Clone returns an independent copy preserving order.
func (g *Group) Clone() *Group {
	c := NewGroup()
	for _, k := range g.keys {
		c.Set(k, g.vals[k])
	}
	return c
}

// Properties converts the group into a circuit property block, preserving
// key order.
func (g *Group) Properties() *circuit.Properties {
	p := circuit.NewProperties()
	for _, k := range g.keys {
		p.Set(k, g.vals[k])
	}
	return p
}

// Config holds every parameter group a lantern build consumes.
type Config struct {
	PLParams       *Group
	CenterCore     *Group
	CenterCladding *Group
	Core           *Group
	Cladding       *Group
	Capillary      *Group
	LaunchField    *Group
}

// groupNames maps TOML table names to config fields, in file-layout order.
var groupNames = []string{
	"pl_params",
	"center_core_segment",
	"center_cladding_segment",
	"core_segment",
	"cladding_segment",
	"capillary_segment",
	"launch_field_config",
}

func (c *Config) group(name string) (*Group, bool) {
	switch name {
	case "pl_params":
		return c.PLParams, true
	case "center_core_segment":
		return c.CenterCore, true
	case "center_cladding_segment":
		return c.CenterCladding, true
	case "core_segment":
		return c.Core, true
	case "cladding_segment":
		return c.Cladding, true
	case "capillary_segment":
		return c.Capillary, true
	case "launch_field_config":
		return c.LaunchField, true
	}
	return nil, false
}

// empty returns a config with all groups present but unpopulated.
func empty() *Config {
	return &Config{
		PLParams:       NewGroup(),
		CenterCore:     NewGroup(),
		CenterCladding: NewGroup(),
		Core:           NewGroup(),
		Cladding:       NewGroup(),
		Capillary:      NewGroup(),
		LaunchField:    NewGroup(),
	}
}

// Load parses a TOML parameter file. Unknown tables are rejected so typos
// surface instead of silently configuring nothing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config file")
	}
	return Parse(string(data))
}

// Parse parses TOML text into a config, preserving key order per group.
func Parse(text string) (*Config, error) {
	var raw map[string]map[string]toml.Primitive
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config")
	}

	cfg := empty()
	for _, key := range md.Keys() {
		parts := key
		if len(parts) != 2 {
			continue
		}
		g, ok := cfg.group(parts[0])
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config group %q", parts[0])
		}
		var v any
		if err := md.PrimitiveDecode(raw[parts[0]][parts[1]], &v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decoding %s.%s", parts[0], parts[1])
		}
		g.Set(parts[1], v)
	}
	return cfg, nil
}

// Set updates one parameter addressed by a dotted path such as
// "pl_params.Num_Cores_Ring". When the existing value is numeric and the
// new value is a string, the string is coerced to match; a string that does
// not parse stays a string, since it may be an expression.
func (c *Config) Set(path string, value any) error {
	if err := errors.ValidateParamPath(path); err != nil {
		return err
	}
	parts := strings.SplitN(path, ".", 2)
	g, ok := c.group(parts[0])
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config group %q", parts[0])
	}
	key := parts[1]
	if old, exists := g.Get(key); exists {
		value = coerce(old, value)
	}
	g.Set(key, value)
	return nil
}

// coerce converts a string value to the numeric type of old when possible.
func coerce(old, value any) any {
	s, isString := value.(string)
	if !isString {
		return value
	}
	switch old.(type) {
	case int, int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return value
}

// List renders every parameter as "group.key = value" lines, groups in
// layout order, keys in insertion order.
func (c *Config) List() []string {
	var lines []string
	for _, name := range groupNames {
		g, _ := c.group(name)
		for _, k := range g.Keys() {
			v, _ := g.Get(k)
			lines = append(lines, fmt.Sprintf("%s.%s = %v", name, k, v))
		}
	}
	return lines
}

// Save writes the config as TOML, creating parent directories as needed.
// Group and key order match what List reports.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "creating config directory")
		}
	}
	if err := os.WriteFile(path, []byte(c.Encode()), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "writing config file")
	}
	return nil
}

// Encode renders the config as TOML text with stable ordering.
func (c *Config) Encode() string {
	var b strings.Builder
	first := true
	for _, name := range groupNames {
		g, _ := c.group(name)
		if g.Len() == 0 {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		fmt.Fprintf(&b, "[%s]\n", name)
		for _, k := range g.Keys() {
			v, _ := g.Get(k)
			fmt.Fprintf(&b, "%s = %s\n", encodeKey(k), encodeValue(v))
		}
	}
	return b.String()
}

func encodeKey(k string) string {
	for _, r := range k {
		if !(r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return strconv.Quote(k)
		}
	}
	return k
}

func encodeValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(x)
	default:
		return strconv.Quote(fmt.Sprintf("%v", x))
	}
}

// GroupNames returns the recognized group names sorted alphabetically.
func GroupNames() []string {
	names := append([]string(nil), groupNames...)
	sort.Strings(names)
	return names
}
