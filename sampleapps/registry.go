package sampleapps

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var registry = map[string]func() Factory{ //nolint:gochecknoglobals
	"echo":     Echo,
	"upper":    Upper,
	"greeter":  Greeter,
	"fault":    Fault,
	"idle":     Idle,
	"stubborn": Stubborn,
	"panic":    Panicky,
	"lifespan": Lifespan,
}

// Names returns the names of all sample applications in alphabetical order.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// Lookup returns the factory for a sample application by name.
func Lookup(name string) (Factory, error) {
	makeFactory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown application %q (available: %v)", name, Names())
	}
	return makeFactory(), nil
}
