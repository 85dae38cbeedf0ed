package reflection

import "github.com/marmos91/frtrpc/internal/frt/value"

// Manager is a name -> Method registry. Lookup is O(1) via a map; a
// parallel slice preserves insertion order so documentation listings
// (getMethodList/getMethodInfo) are stable, matching the original's
// chained-hash-table-plus-insertion-list design without hand-rolling a
// hash table Go's map already gives us for free.
type Manager struct {
	byName map[string]*Method
	order  []*Method
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*Method)}
}

// Reset discards every registered method.
func (m *Manager) Reset() {
	m.byName = make(map[string]*Method)
	m.order = nil
}

// AddMethod registers method, replacing the wildcard fast path for
// re-registration: a method registered twice under the same name keeps
// only the most recent registration in lookup, but both remain in the
// insertion-ordered list (matching the original, which never
// deduplicates on re-add).
func (m *Manager) AddMethod(method *Method) {
	m.byName[method.name] = method
	m.order = append(m.order, method)
}

// LookupMethod returns the method registered under name, or nil if none
// is registered (or name is empty).
func (m *Manager) LookupMethod(name string) *Method {
	if name == "" {
		return nil
	}
	return m.byName[name]
}

// NumMethods returns the number of methods in insertion order, including
// duplicate registrations under the same name (matching DumpMethodList's
// original semantics, which walks the raw insertion list).
func (m *Manager) NumMethods() int { return len(m.order) }

// DumpMethodList appends three parallel string arrays (names, param
// specs, return specs), one entry per method in insertion order, to
// target. Used by frt.rpc.getMethodList.
func (m *Manager) DumpMethodList(target *value.Values) {
	names := make([]string, len(m.order))
	params := make([]string, len(m.order))
	rets := make([]string, len(m.order))
	for i, method := range m.order {
		names[i] = method.name
		params[i] = method.paramSpec
		rets[i] = method.returnSpec
	}
	target.AddStringArray(names)
	target.AddStringArray(params)
	target.AddStringArray(rets)
}
