package importapp

import "sync"

// WorkingSet is the list of external ids still offered for import from one
// provider listing. Successful imports are removed so the same listing can
// not import an id twice. It is safe for concurrent use.
type WorkingSet struct {
	mu       sync.Mutex
	provider string
	order    []string
	ids      map[string]struct{}
}

// NewWorkingSet creates a working set for provider holding ids in order
func NewWorkingSet(provider string, ids ...string) *WorkingSet {
	ws := &WorkingSet{provider: provider, ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := ws.ids[id]; dup || id == "" {
			continue
		}
		ws.ids[id] = struct{}{}
		ws.order = append(ws.order, id)
	}
	return ws
}

// Provider returns the provider the ids belong to
func (w *WorkingSet) Provider() string {
	return w.provider
}

// Remove drops id and reports whether it was present
func (w *WorkingSet) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.ids[id]; !ok {
		return false
	}
	delete(w.ids, id)
	return true
}

// Contains reports whether id is still offered
func (w *WorkingSet) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.ids[id]
	return ok
}

// Remaining returns the ids still offered, in their original order
func (w *WorkingSet) Remaining() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.ids))
	for _, id := range w.order {
		if _, ok := w.ids[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of ids still offered
func (w *WorkingSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ids)
}
