package dispatch

import (
	"sort"
	"strings"
)

// Registry maps backend names to adapters. It is built once and never
// mutated, so concurrent lookups need no locking.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry copies adapters into a registry keyed by normalized name.
// Nil adapters and blank names are skipped.
func NewRegistry(adapters map[string]Adapter) *Registry {
	table := make(map[string]Adapter, len(adapters))
	for name, adapter := range adapters {
		name = NormalizeName(name)
		if name == "" || adapter == nil {
			continue
		}
		table[name] = adapter
	}
	return &Registry{adapters: table}
}

// Resolve looks a backend up by case-insensitive exact name.
func (r *Registry) Resolve(name string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[NormalizeName(name)]
	return adapter, ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeBackends trims names, drops blanks, and collapses duplicates
// case-insensitively. The first spelling of each name wins and is the key
// the result is reported under.
func NormalizeBackends(backends []string) []string {
	seen := make(map[string]struct{}, len(backends))
	out := make([]string, 0, len(backends))
	for _, raw := range backends {
		name := strings.TrimSpace(raw)
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
