package dispatch

import (
	"sort"
	"sync"
)

// Result is the joined aggregate of one dispatch. Backends keeps the
// normalized request order; renderers iterate it instead of the map.
type Result struct {
	prompt   string
	backends []string

	mu       sync.Mutex
	outcomes map[string]Outcome
}

func newResult(prompt string, backends []string) *Result {
	return &Result{
		prompt:   prompt,
		backends: backends,
		outcomes: make(map[string]Outcome, len(backends)),
	}
}

// FromTexts rebuilds a Result from persisted texts, e.g. a history entry.
// Names in order without a text are dropped; texts not named in order are
// appended sorted by name.
func FromTexts(prompt string, order []string, texts map[string]string) *Result {
	names := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, name := range order {
		if _, ok := texts[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range sortedKeys(texts) {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}

	r := newResult(prompt, names)
	for _, name := range names {
		r.outcomes[name] = Success(texts[name])
	}
	return r
}

func (r *Result) set(name string, out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[name] = out
}

func (r *Result) Prompt() string {
	if r == nil {
		return ""
	}
	return r.prompt
}

// Backends returns the backend names in request order.
func (r *Result) Backends() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.backends...)
}

func (r *Result) Outcome(name string) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if out, ok := r.outcomes[name]; ok {
		return out, true
	}
	key := NormalizeName(name)
	for stored, out := range r.outcomes {
		if NormalizeName(stored) == key {
			return out, true
		}
	}
	return Outcome{}, false
}

// Text returns the result text for name, or "" when absent.
func (r *Result) Text(name string) string {
	out, _ := r.Outcome(name)
	return out.String()
}

func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

// Texts flattens the result into backend name -> result text.
func (r *Result) Texts() map[string]string {
	texts := map[string]string{}
	if r == nil {
		return texts
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, out := range r.outcomes {
		texts[name] = out.String()
	}
	return texts
}

// Failures lists, in request order, the backends whose outcome failed.
func (r *Result) Failures() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []string
	for _, name := range r.backends {
		if out, ok := r.outcomes[name]; ok && out.Failed() {
			failed = append(failed, name)
		}
	}
	return failed
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
