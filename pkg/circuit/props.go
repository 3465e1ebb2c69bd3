package circuit

import (
	"fmt"
	"strconv"
)

// Properties is an insertion-ordered key=value list. The .ind grammar is
// order-sensitive: keys render in the order they were first set, and setting
// an existing key updates its value in place. Values may be numbers or
// opaque expression strings that the external tool evaluates itself.
type Properties struct {
	keys []string
	vals map[string]any
}

// NewProperties creates an empty property list.
func NewProperties() *Properties {
	return &Properties{vals: make(map[string]any)}
}

// Set stores a value under key, preserving the key's original position when
// it already exists. It returns the receiver for chaining.
func (p *Properties) Set(key string, value any) *Properties {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
	return p
}

// SetAll stores every pair from other in iteration order.
func (p *Properties) SetAll(other *Properties) *Properties {
	if other == nil {
		return p
	}
	for _, k := range other.keys {
		p.Set(k, other.vals[k])
	}
	return p
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Float returns the value under key as a float64 when it is numeric.
func (p *Properties) Float(key string) (float64, bool) {
	switch v := p.vals[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Len returns the number of keys.
func (p *Properties) Len() int { return len(p.keys) }

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string { return append([]string(nil), p.keys...) }

// Clone returns an independent copy preserving insertion order.
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	for _, k := range p.keys {
		c.Set(k, p.vals[k])
	}
	return c
}

// each calls fn for every key/value pair in insertion order.
func (p *Properties) each(fn func(key string, value any)) {
	for _, k := range p.keys {
		fn(k, p.vals[k])
	}
}

// formatValue renders a property value in the textual form the external tool
// expects: numbers in shortest decimal notation, strings verbatim.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", x)
	}
}
