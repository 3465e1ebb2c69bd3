package lantern

import (
	"sort"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// Registry kind names.
const (
	KindPhotonic      = "photonic"
	KindModeSelective = "mode_selective"
)

// kindFactories maps a kind name to a constructor taking that kind's
// argument: a comma-separated ring specification for photonic lanterns, an
// LP mode label for mode-selective ones.
var kindFactories = map[string]func(arg string) (ModeStrategy, error){
	KindPhotonic: func(arg string) (ModeStrategy, error) {
		layers, err := parseLayers(arg)
		if err != nil {
			return nil, err
		}
		return IndexedStrategy{Layers: layers}, nil
	},
	KindModeSelective: func(arg string) (ModeStrategy, error) {
		if err := errors.ValidateModeLabel(arg); err != nil {
			return nil, err
		}
		return ModeSelectiveStrategy{Highest: arg}, nil
	},
}

// Kinds returns the registered kind names, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kindFactories))
	for name := range kindFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a builder for the named kind. The argument format depends on
// the kind; see the kind constants.
func New(kind, arg string, opts ...Option) (*Builder, error) {
	factory, ok := kindFactories[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidKind,
			"unknown lantern kind %q, known kinds: %v", kind, Kinds())
	}
	strategy, err := factory(arg)
	if err != nil {
		return nil, err
	}
	return NewBuilder(strategy, opts...), nil
}

// NewPhotonic creates a builder for an index-labelled lantern with the
// given ring layer counts.
func NewPhotonic(layers []int, opts ...Option) *Builder {
	return NewBuilder(IndexedStrategy{Layers: layers}, opts...)
}

// NewModeSelective creates a builder for a mode-selective lantern
// supporting every LP mode up to highest.
func NewModeSelective(highest string, opts ...Option) *Builder {
	return NewBuilder(ModeSelectiveStrategy{Highest: highest}, opts...)
}
