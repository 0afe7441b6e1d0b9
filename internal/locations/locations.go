// Package locations resolves user-specified destinations into canonical
// location names and gives access to the known locations directory.
//
// This package does one job: text from the user -> canonical location plus
// metadata. "take me to room a201" resolves to "A201", "reception" to
// "Info Desk". The directory lives in a JSON file and is cached in memory;
// reload is an explicit operation, never automatic.
package locations

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/util"
)

// Directory is a read-only view of the known locations, keyed by canonical
// name. Safe to share across concurrent turns.
type Directory struct {
	Locations map[string]models.Location `json:"locations"`
}

// FindByName matches text against canonical names and synonyms,
// case-insensitively, and returns the matching location.
func (d *Directory) FindByName(text string) (models.Location, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return models.Location{}, false
	}
	for _, loc := range d.Locations {
		for _, name := range loc.AllNamesLower() {
			if name == needle {
				return loc, true
			}
		}
	}
	return models.Location{}, false
}

// Get returns the location for a canonical name.
func (d *Directory) Get(canonicalName string) (models.Location, bool) {
	loc, ok := d.Locations[canonicalName]
	return loc, ok
}

// CanonicalNames returns all canonical names, sorted.
func (d *Directory) CanonicalNames() []string {
	names := make([]string, 0, len(d.Locations))
	for name := range d.Locations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a short one-line listing of known places, suitable for
// prompt context and "what places can you guide me to?" answers.
func (d *Directory) Summary() string {
	names := d.CanonicalNames()
	if len(names) == 0 {
		return "No known locations are configured."
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		loc := d.Locations[name]
		if loc.DisplayName != "" && loc.DisplayName != name {
			parts = append(parts, fmt.Sprintf("%s (%s)", name, loc.DisplayName))
		} else {
			parts = append(parts, name)
		}
	}
	return "Known locations: " + strings.Join(parts, ", ")
}

// Resolver owns the cached directory loaded from a JSON file. Population of
// the cache is the resolver's responsibility, not the caller's.
type Resolver struct {
	path string

	mu  sync.RWMutex
	dir *Directory
}

// NewResolver creates a resolver backed by the directory file at path. The
// file is read lazily on first use.
func NewResolver(path string) *Resolver {
	return &Resolver{path: path}
}

// Resolve maps a free-form phrase to a canonical location name. Returns ""
// when nothing matches; callers must not assume every guess resolves.
func (r *Resolver) Resolve(phrase string) string {
	if strings.TrimSpace(phrase) == "" {
		return ""
	}
	loc, ok := r.Directory().FindByName(phrase)
	if !ok {
		return ""
	}
	return loc.CanonicalName
}

// Directory returns the cached directory, loading it from disk on first use.
func (r *Resolver) Directory() *Directory {
	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir != nil {
		return dir
	}
	return r.load()
}

// Reload forces a re-read of the directory file. Used after the location
// data is edited on disk.
func (r *Resolver) Reload() *Directory {
	return r.load()
}

// load reads the directory file. A missing or corrupt file yields an empty
// directory with a warning; location lookup degrades, the turn does not.
func (r *Resolver) load() *Directory {
	dir := &Directory{Locations: make(map[string]models.Location)}
	if util.ReadJSONSafely(r.path, dir) {
		if dir.Locations == nil {
			dir.Locations = make(map[string]models.Location)
		}
		slog.Info("Resolver.load: loaded known locations", "path", r.path, "count", len(dir.Locations))
	} else {
		slog.Warn("Resolver.load: no usable locations file, starting empty", "path", r.path)
	}
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()
	return dir
}
