package shareddoc

import (
	"maps"
	"slices"
)

type mapEntry struct {
	id      ID
	value   any
	deleted bool
}

// Map is a last-writer-wins map from string keys to scalars or nested
// containers.
type Map struct {
	doc     *Doc
	id      ContainerID
	entries map[string]*mapEntry
}

func newMap(d *Doc, id ContainerID) *Map {
	return &Map{doc: d, id: id, entries: make(map[string]*mapEntry)}
}

func (m *Map) containerID() ContainerID { return m.id }

func (m *Map) ID() ContainerID { return m.id }

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	e, ok := m.entries[key]
	if !ok || e.deleted {
		return nil, false
	}
	return e.value, true
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// String returns the string under key. Other types report false.
func (m *Map) String(key string) (string, bool) {
	v, _ := m.Get(key)
	s, ok := v.(string)
	return s, ok
}

func (m *Map) Float(key string) (float64, bool) {
	v, _ := m.Get(key)
	f, ok := v.(float64)
	return f, ok
}

func (m *Map) Bool(key string) (bool, bool) {
	v, _ := m.Get(key)
	b, ok := v.(bool)
	return b, ok
}

func (m *Map) Map(key string) (*Map, bool) {
	v, _ := m.Get(key)
	c, ok := v.(*Map)
	return c, ok
}

func (m *Map) Array(key string) (*Array, bool) {
	v, _ := m.Get(key)
	c, ok := v.(*Array)
	return c, ok
}

// IsUnset reports whether key holds the Unset marker.
func (m *Map) IsUnset(key string) bool {
	v, _ := m.Get(key)
	_, ok := v.(UnsetValue)
	return ok
}

// Keys returns the live keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, k := range slices.Sorted(maps.Keys(m.entries)) {
		if !m.entries[k].deleted {
			keys = append(keys, k)
		}
	}
	return keys
}

func (m *Map) Len() int {
	n := 0
	for _, e := range m.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}

// Set writes a scalar: nil, Unset, string, bool or a number. Other types
// panic.
func (m *Map) Set(tx *Txn, key string, v any) {
	m.write(tx, key, mustScalar(v), false)
}

// SetMap replaces key with a new empty map and returns it.
func (m *Map) SetMap(tx *Txn, key string) *Map {
	id := tx.doc.tick()
	child := newMap(tx.doc, ContainerID{Op: id})
	tx.doc.register(child)
	m.writeID(tx, id, key, child, false)
	return child
}

// SetArray replaces key with a new empty array and returns it.
func (m *Map) SetArray(tx *Txn, key string) *Array {
	id := tx.doc.tick()
	child := newArray(tx.doc, ContainerID{Op: id})
	tx.doc.register(child)
	m.writeID(tx, id, key, child, false)
	return child
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Map) Delete(tx *Txn, key string) {
	if !m.Has(key) {
		return
	}
	m.write(tx, key, nil, true)
}

func (m *Map) write(tx *Txn, key string, v any, deleted bool) ID {
	id := tx.doc.tick()
	m.writeID(tx, id, key, v, deleted)
	return id
}

func (m *Map) writeID(tx *Txn, id ID, key string, v any, deleted bool) {
	var prev *mapEntry
	if e, ok := m.entries[key]; ok {
		cp := *e
		prev = &cp
	}
	m.entries[key] = &mapEntry{id: id, value: v, deleted: deleted}
	op := Op{ID: id, Target: m.id, Key: key}
	if deleted {
		op.Kind = OpMapDelete
	} else {
		op.Kind = OpMapSet
		val := encodeValue(v)
		op.Value = &val
	}
	tx.record(op, change{kind: changeMapWrite, target: m.id, key: key, id: id, prev: prev})
}

// integrate applies a remote write. The write wins only if its stamp is
// newer than the current entry's.
func (m *Map) integrate(id ID, key string, v any, deleted bool) bool {
	if cur, ok := m.entries[key]; ok && id.Compare(cur.id) <= 0 {
		return false
	}
	m.entries[key] = &mapEntry{id: id, value: v, deleted: deleted}
	return true
}
