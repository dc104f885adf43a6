package codec

import "github.com/the-dev-tools/contextmap/pkg/shareddoc"

// SetOptional writes an optional field. nil is stored as shareddoc.Unset so
// an absent value survives a round trip and stays distinct from "".
func SetOptional[T ~string](tx *shareddoc.Txn, m *shareddoc.Map, key string, v *T) {
	if v == nil {
		m.Set(tx, key, shareddoc.Unset)
		return
	}
	m.Set(tx, key, string(*v))
}

// Optional reads a field written by SetOptional. Unset, missing and
// non-string values all read as nil.
func Optional[T ~string](m *shareddoc.Map, key string) *T {
	s, ok := m.String(key)
	if !ok {
		return nil
	}
	v := T(s)
	return &v
}

func str(m *shareddoc.Map, key string) string {
	s, _ := m.String(key)
	return s
}

func num(m *shareddoc.Map, key string) float64 {
	f, _ := m.Float(key)
	return f
}

func setNumber(tx *shareddoc.Txn, m *shareddoc.Map, key string, v float64) bool {
	if cur, ok := m.Float(key); ok && cur == v {
		return false
	}
	m.Set(tx, key, v)
	return true
}

func boolean(m *shareddoc.Map, key string) bool {
	b, _ := m.Bool(key)
	return b
}

// SetStrings replaces the content of a into ids.
func SetStrings(tx *shareddoc.Txn, a *shareddoc.Array, ids []string) {
	if n := a.Len(); n > 0 {
		a.Delete(tx, 0, n)
	}
	for _, id := range ids {
		a.Push(tx, id)
	}
}

func stringList(m *shareddoc.Map, key string) []string {
	a, ok := m.Array(key)
	if !ok {
		return []string{}
	}
	return a.Strings()
}

// entries returns the nested maps of a collection in key order.
func entries(c *shareddoc.Map) []*shareddoc.Map {
	var out []*shareddoc.Map
	for _, k := range c.Keys() {
		if m, ok := c.Map(k); ok {
			out = append(out, m)
		}
	}
	return out
}
