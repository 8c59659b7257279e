package env

import (
	_ "embed"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

//go:embed stdlib.yaml
var stdlibYAML []byte

// Function declares one callable: a free function when Receiver is empty,
// otherwise a method on the named type.
type Function struct {
	Receiver  string   `yaml:"receiver,omitempty"`
	Namespace []string `yaml:"namespace,omitempty"`
	Name      string   `yaml:"name"`
	Params    int      `yaml:"params"`
}

// QualifiedName joins the namespace segments and the name with "::".
// A namespace whose last segment is empty is treated as global.
func (f Function) QualifiedName() string {
	ns := f.Namespace
	if len(ns) == 0 || ns[len(ns)-1] == "" {
		return f.Name
	}

	return strings.Join(ns, "::") + "::" + f.Name
}

// Environment is the set of functions known before a document is analyzed.
type Environment struct {
	Functions []Function `yaml:"functions"`
}

// Default returns the Silex standard library environment.
func Default() (*Environment, error) {
	e, err := Parse(stdlibYAML)
	if err != nil {
		return nil, &LoadError{Path: "stdlib.yaml", Cause: err}
	}

	return e, nil
}

// MustDefault is like Default but panics on error.
func MustDefault() *Environment {
	e, err := Default()
	if err != nil {
		panic(err)
	}

	return e
}

// Parse decodes and validates an environment description.
func Parse(data []byte) (*Environment, error) {
	var e Environment

	err := yaml.Unmarshal(data, &e)
	if err != nil {
		return nil, errors.Errorf("%w: %w", ErrParseError, err)
	}

	for i, f := range e.Functions {
		if f.Name == "" {
			return nil, errors.Errorf("%w: entry %d has no name", ErrInvalidFunction, i)
		}

		if f.Params < 0 {
			return nil, errors.Errorf("%w: %s has negative parameter count %d", ErrInvalidFunction, f.QualifiedName(), f.Params)
		}
	}

	return &e, nil
}

// Merge returns a new environment holding the functions of e followed by those of others.
func (e *Environment) Merge(others ...*Environment) *Environment {
	merged := &Environment{Functions: slices.Clone(e.Functions)}

	for _, o := range others {
		if o != nil {
			merged.Functions = append(merged.Functions, o.Functions...)
		}
	}

	return merged
}

// ByReceiver groups declarations by receiver type, mirroring how the registry buckets them.
func (e *Environment) ByReceiver() map[string][]Function {
	grouped := make(map[string][]Function)

	for _, f := range e.Functions {
		grouped[f.Receiver] = append(grouped[f.Receiver], f)
	}

	return grouped
}
