// Package profile provides named constraint presets for upload controls.
// Each presentation variant of the frontend (document list, image grid,
// avatar) maps to a profile carrying its default mode and constraint set.
package profile

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mediboard/backend/internal/picker"
)

// Profile is a named upload-control preset.
type Profile struct {
	Name        string             `yaml:"-"`
	Mode        picker.Mode        `yaml:"mode"`
	Constraints picker.Constraints `yaml:",inline"`
}

// Registry holds all known profiles and provides lookup by name.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

const (
	mb = 1 << 20
)

// NewRegistry returns a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range []Profile{
		{
			Name: "documents",
			Mode: picker.ModeMultiple,
			Constraints: picker.Constraints{
				MaxSizeBytes: 50 * mb,
				MaxFiles:     20,
			},
		},
		{
			Name: "images",
			Mode: picker.ModeMultiple,
			Constraints: picker.Constraints{
				Accept:       []string{"image/*"},
				MaxSizeBytes: 10 * mb,
				MaxFiles:     12,
			},
		},
		{
			Name: "avatar",
			Mode: picker.ModeSingle,
			Constraints: picker.Constraints{
				Accept:       []string{"image/*"},
				MaxSizeBytes: 5 * mb,
				MaxFiles:     1,
			},
		},
	} {
		r.profiles[p.Name] = p
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) error {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Mode == "" {
		p.Mode = picker.ModeMultiple
	}
	if p.Mode != picker.ModeSingle && p.Mode != picker.ModeMultiple {
		return fmt.Errorf("profile %s: unknown mode %q", name, p.Mode)
	}
	p.Name = name
	r.mu.Lock()
	r.profiles[name] = p
	r.mu.Unlock()
	return nil
}

// Get returns a profile by name.
func (r *Registry) Get(name string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("profile not found: %s", name)
	}
	return p, nil
}

// Names returns the registered profile names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	return names
}

// profilesFile mirrors the on-disk YAML layout.
type profilesFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadFile merges profile overrides from a YAML file into the registry.
// A missing file is not an error; built-ins stay as shipped.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return r.loadReader(f)
}

func (r *Registry) loadReader(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing profiles: %w", err)
	}

	for name, p := range file.Profiles {
		p.Name = name
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}
