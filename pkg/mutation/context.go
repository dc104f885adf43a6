// Package mutation is the only write path into a shared project document.
//
// Every method runs exactly one transaction tagged with the context's
// origin, so observers see one change per logical operation. A method whose
// target entity is missing, typically because a peer deleted it
// concurrently, does nothing. Deletes cascade inside the same transaction.
package mutation

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Context writes domain operations into a document. A nil *Context is
// valid: every operation on it is a no-op.
type Context struct {
	doc    *shareddoc.Doc
	origin any
	logger *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// New creates a mutation context writing to doc with transactions tagged
// origin.
func New(doc *shareddoc.Doc, origin any, opts ...Option) *Context {
	c := &Context{doc: doc, origin: origin}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Context) Doc() *shareddoc.Doc {
	if c == nil {
		return nil
	}
	return c.doc
}

func (c *Context) Origin() any {
	if c == nil {
		return nil
	}
	return c.origin
}

func (c *Context) transact(fn func(tx *shareddoc.Txn)) {
	if c == nil {
		return
	}
	c.doc.Transact(c.origin, fn)
}

func (c *Context) root(name string) *shareddoc.Map {
	return c.doc.GetMap(name)
}

// entity returns the field map of id in collection root.
func (c *Context) entity(root, id string) (*shareddoc.Map, bool) {
	m, ok := c.root(root).Map(id)
	if !ok {
		c.logger.Debug("mutation: entity not found", "collection", root, "id", id)
	}
	return m, ok
}

func (c *Context) exists(root, id string) bool {
	_, ok := c.root(root).Map(id)
	return ok
}

// deleteWhere removes every entity of root whose field key equals value and
// tracks a cascade event for each.
func (c *Context) deleteWhere(tx *shareddoc.Txn, root string, entity EntityType, value string, keys ...string) {
	collection := c.root(root)
	for _, id := range collection.Keys() {
		m, ok := collection.Map(id)
		if !ok {
			continue
		}
		for _, key := range keys {
			if v, _ := m.String(key); v == value {
				collection.Delete(tx, id)
				track(tx, Event{Entity: entity, Op: OpDelete, ID: id, Cascade: true})
				break
			}
		}
	}
}

// removeValue deletes every occurrence of v from a.
func removeValue(tx *shareddoc.Txn, a *shareddoc.Array, v string) bool {
	removed := false
	for i := a.Index(v); i >= 0; i = a.Index(v) {
		a.Delete(tx, i, 1)
		removed = true
	}
	return removed
}

func stringArray(tx *shareddoc.Txn, m *shareddoc.Map, key string) *shareddoc.Array {
	if a, ok := m.Array(key); ok {
		return a
	}
	return m.SetArray(tx, key)
}

func childMap(tx *shareddoc.Txn, m *shareddoc.Map, key string) *shareddoc.Map {
	if child, ok := m.Map(key); ok {
		return child
	}
	return m.SetMap(tx, key)
}

func sortedIDs[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
