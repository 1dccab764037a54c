package scape

import (
	"errors"
	"fmt"
	"slices"

	"neuroflight/internal/scapeid"
)

var ErrUnknownScape = errors.New("unknown scape")

var builtins = []Scape{
	XORScape{},
	RegressionMimicScape{},
}

// Lookup resolves a scape by name or alias, e.g. "xor", "XOR_SIM" or
// "regression_mimic".
func Lookup(name string) (Scape, error) {
	canonical := scapeid.Normalize(name)
	for _, s := range builtins {
		if s.Name() == canonical {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScape, name)
}

// Names lists the built-in scapes in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, s := range builtins {
		names = append(names, s.Name())
	}
	slices.Sort(names)
	return names
}
