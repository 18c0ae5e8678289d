package profile

import (
	"fmt"

	"github.com/lox/qifparse/internal/qif"
	"golang.org/x/exp/slices"
)

// Profile describes the date conventions of a QIF exporter
type Profile struct {
	// Name is the registry key, e.g. "quicken-us"
	Name        string
	Description string
	Dates       qif.DateOptions
}

// Options returns parser options for the profile
func (p Profile) Options() []qif.Option {
	return []qif.Option{qif.WithDateOptions(p.Dates)}
}

// Registry maintains the known exporter profiles
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]Profile),
	}
}

// Default returns a registry holding the built-in profiles
func Default() *Registry {
	r := NewRegistry()
	r.Register(Profile{
		Name:        "quicken-us",
		Description: "Quicken with US dates (month/day/year)",
		Dates:       qif.DateOptions{MonthBeforeDay: true},
	})
	r.Register(Profile{
		Name:        "quicken-eu",
		Description: "Quicken with day/month/year dates",
		Dates:       qif.DateOptions{},
	})
	r.Register(Profile{
		Name:        "banktivity",
		Description: "Banktivity for macOS, two-digit years below 69 are 20xx",
		Dates:       qif.DateOptions{MonthBeforeDay: true, Y2KRule: true},
	})
	return r
}

// Register adds a profile, replacing any with the same name
func (r *Registry) Register(p Profile) {
	r.profiles[p.Name] = p
}

// Get returns a profile by name
func (r *Registry) Get(name string) (Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Lookup returns a profile by name or an error listing the known names
func (r *Registry) Lookup(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, r.List())
	}
	return p, nil
}

// List returns the registered profile names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
