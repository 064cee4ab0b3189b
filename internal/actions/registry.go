package actions

import (
	"slices"
	"sync"

	"github.com/rendis/actionrules/pkg/schema"
)

// Registry owns the action catalog and the per-action enabler lists.
// It is safe for concurrent use; callers should still finish loading a
// ruleset before issuing queries.
type Registry struct {
	mu          sync.RWMutex
	initialized bool
	actions     map[ActionID]*Action
	enablers    map[ActionID][]*Enabler
	generation  uint64
}

// NewRegistry creates an uninitialized Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Initialize creates one Action per action kind and an empty enabler list
// for each. Display names are left empty, so the registry is not ready
// until SetUIName has been called for every action.
func (r *Registry) Initialize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = make(map[ActionID]*Action, ActionCount)
	r.enablers = make(map[ActionID][]*Enabler, ActionCount)
	for id := range ActionCount {
		r.actions[id] = newAction(id)
		r.enablers[id] = nil
	}
	r.initialized = true
	r.generation++
}

// Teardown drops every enabler and action and clears the initialized flag.
// Enablers already handed out by Enablers stay intact; callers evaluating
// them concurrently keep a consistent view.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enablers = nil
	r.actions = nil
	r.initialized = false
	r.generation++
}

// IsInitialized reports whether Initialize has run since the last Teardown.
func (r *Registry) IsInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// IsReady reports whether the registry is initialized and every action has
// a display name.
func (r *Registry) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return false
	}
	for id := range ActionCount {
		if a := r.actions[id]; a == nil || a.UIName == "" {
			return false
		}
	}
	return true
}

// Lookup returns the action for id. Ids outside the closed set and an
// uninitialized registry are errors. A missing entry in an initialized
// registry is a registry bug and panics.
func (r *Registry) Lookup(id ActionID) (*Action, error) {
	if !id.Valid() {
		return nil, schema.NewErrorf(schema.ErrCodeUnknownAction, "invalid action id %d", int(id))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return nil, schema.NewError(schema.ErrCodeNotFound, "action registry is not initialized").
			WithAction(id.String())
	}
	a, ok := r.actions[id]
	if !ok || a == nil {
		schema.Invariantf("action %q missing from initialized registry", id.String())
	}
	return a, nil
}

// ByRuleName looks up an action by its rule name.
func (r *Registry) ByRuleName(name string) (*Action, error) {
	id, err := ParseActionID(name)
	if err != nil {
		return nil, err
	}
	return r.Lookup(id)
}

// Actions returns every registered action in id order.
func (r *Registry) Actions() []*Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Action, 0, len(r.actions))
	for id := range ActionCount {
		if a, ok := r.actions[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// SetUIName assigns the display-name template of an action.
func (r *Registry) SetUIName(id ActionID, uiName string) error {
	if !id.Valid() {
		return schema.NewErrorf(schema.ErrCodeUnknownAction, "invalid action id %d", int(id))
	}
	if uiName == "" {
		return schema.NewError(schema.ErrCodeValidation, "ui name is empty").WithAction(id.String())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.actions[id]
	if !r.initialized || !ok {
		return schema.NewError(schema.ErrCodeNotFound, "action registry is not initialized").
			WithAction(id.String())
	}
	a.UIName = uiName
	return nil
}

// AddEnabler appends e to its action's enabler list. It returns false
// without changes when e is nil, its action id is invalid or the registry
// is not initialized.
func (r *Registry) AddEnabler(e *Enabler) bool {
	if e == nil || !e.Action.Valid() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return false
	}
	r.enablers[e.Action] = append(r.enablers[e.Action], e)
	r.generation++
	return true
}

// RemoveEnabler removes e from its action's enabler list, keeping the order
// of the remaining enablers. It reports whether e was found.
func (r *Registry) RemoveEnabler(e *Enabler) bool {
	if e == nil || !e.Action.Valid() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.enablers[e.Action]
	idx := slices.Index(list, e)
	if idx < 0 {
		return false
	}
	r.enablers[e.Action] = slices.Delete(list, idx, idx+1)
	r.generation++
	return true
}

// Enablers returns a copy of the enabler list of id.
func (r *Registry) Enablers(id ActionID) []*Enabler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.enablers[id])
}

// EnablerCount returns the total number of registered enablers.
func (r *Registry) EnablerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, list := range r.enablers {
		n += len(list)
	}
	return n
}

// Generation changes whenever the catalog or an enabler list changes.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}
