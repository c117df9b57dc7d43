// Package dataset maps dataset names to directories and discovers stereo image pairs in them.
package dataset

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"stereovisionagri/fileio"
)

// UnknownDatasetError is returned by Registry.Get for names that were never registered.
type UnknownDatasetError struct {
	Name  string
	Known []string
}

func (e *UnknownDatasetError) Error() string {
	known := "none"
	if len(e.Known) > 0 {
		known = strings.Join(e.Known, ", ")
	}
	return fmt.Sprintf("unknown dataset %q; known datasets: %s", e.Name, known)
}

// Is makes an UnknownDatasetError match fileio.ErrNotFound.
func (e *UnknownDatasetError) Is(target error) bool {
	return target == fileio.ErrNotFound
}

// Registry lets scripts and components refer to dataset roots by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]string{}}
}

// Register stores the resolved form of root under name, replacing any previous entry.
// The filesystem is not checked.
func (r *Registry) Register(name, root string) {
	resolved := fileio.ResolvePath(root)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = resolved
}

// Get returns the root registered under name.
func (r *Registry) Get(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root, ok := r.entries[name]
	if !ok {
		return "", &UnknownDatasetError{Name: name, Known: r.namesLocked()}
	}
	return root, nil
}

// Items returns a copy of every (name, root) entry. Iteration order is the map's.
func (r *Registry) Items() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
