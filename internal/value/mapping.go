package value

import (
	"strings"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

type mapEntry struct {
	key, val Value
}

// Map is the bounded, insertion-ordered mapping container (spec.md §4.3).
type Map struct {
	cfg       *config.Config
	order     []string
	entries   map[string]mapEntry
	cachedLen int
}

func NewMap(cfg *config.Config) *Map {
	return &Map{cfg: cfg, entries: make(map[string]mapEntry)}
}

func (*Map) TypeName() string { return "dict" }

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range m.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		e := m.entries[k]
		sb.WriteString(e.key.String())
		sb.WriteString(": ")
		sb.WriteString(e.val.String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (m *Map) ApproxLen() int         { return m.cachedLen }
func (m *Map) Len() int               { return len(m.order) }
func (m *Map) Config() *config.Config { return m.cfg }

func (m *Map) Get(key Value) (Value, bool) {
	k, ok := hashKey(key)
	if !ok {
		return nil, false
	}
	e, found := m.entries[k]
	if !found {
		return nil, false
	}
	return e.val, true
}

// GetStr looks up a string key, used by the `d.key` attribute sugar
// (spec.md §4.3).
func (m *Map) GetStr(key string) (Value, bool) {
	return m.Get(&Str{v: key})
}

// Set inserts or overwrites key->val, checking growth first.
func (m *Map) Set(key, val Value) error {
	k, ok := hashKey(key)
	if !ok {
		return errtrace.Raise(errtrace.KindValueError, unhashableError(key))
	}
	added := ApproxLen(val, nil)
	existing, found := m.entries[k]
	if found {
		added -= ApproxLen(existing.val, nil)
	}
	if m.cachedLen+added > m.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "This dict is too large")
	}
	if !found {
		m.order = append(m.order, k)
	}
	m.entries[k] = mapEntry{key: key, val: val}
	m.cachedLen += added
	return nil
}

// Delete removes key, returning false if absent.
func (m *Map) Delete(key Value) bool {
	k, ok := hashKey(key)
	if !ok {
		return false
	}
	e, found := m.entries[k]
	if !found {
		return false
	}
	delete(m.entries, k)
	for i, kk := range m.order {
		if kk == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.cachedLen -= ApproxLen(e.val, nil)
	return true
}

// Pop removes key and returns its value.
func (m *Map) Pop(key Value) (Value, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	m.Delete(key)
	return v, true
}

func (m *Map) Clear() {
	m.order = nil
	m.entries = make(map[string]mapEntry)
	m.cachedLen = 0
}

// Keys, Values, Items return slices in insertion order.
func (m *Map) Keys() []Value {
	out := make([]Value, len(m.order))
	for i, k := range m.order {
		out[i] = m.entries[k].key
	}
	return out
}

func (m *Map) Values() []Value {
	out := make([]Value, len(m.order))
	for i, k := range m.order {
		out[i] = m.entries[k].val
	}
	return out
}

func (m *Map) Items() []*Tuple {
	out := make([]*Tuple, len(m.order))
	for i, k := range m.order {
		e := m.entries[k]
		out[i] = &Tuple{Elems: []Value{e.key, e.val}}
	}
	return out
}

// Update merges other into m, checking combined growth first.
func (m *Map) Update(other *Map) error {
	added := 0
	for _, k := range other.order {
		e := other.entries[k]
		if existing, found := m.entries[k]; found {
			added += ApproxLen(e.val, nil) - ApproxLen(existing.val, nil)
		} else {
			added += ApproxLen(e.val, nil)
		}
	}
	if m.cachedLen+added > m.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "This dict is too large")
	}
	for _, k := range other.order {
		e := other.entries[k]
		if _, found := m.entries[k]; !found {
			m.order = append(m.order, k)
		}
		m.entries[k] = e
	}
	m.cachedLen += added
	return nil
}

// Or returns a new Map equal to m updated with other (the `|` operator).
func (m *Map) Or(other *Map) (*Map, error) {
	out := NewMap(m.cfg)
	if err := out.Update(m); err != nil {
		return nil, err
	}
	if err := out.Update(other); err != nil {
		return nil, err
	}
	return out, nil
}
