package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// AddRelationship is a no-op unless both contexts exist.
func (c *Context) AddRelationship(r mproject.Relationship) {
	c.transact(func(tx *shareddoc.Txn) {
		if !c.exists(codec.RootContexts, r.FromContextID) || !c.exists(codec.RootContexts, r.ToContextID) {
			c.logger.Debug("mutation: relationship endpoint missing", "id", r.ID)
			return
		}
		codec.WriteRelationship(tx, c.root(codec.RootRelationships).SetMap(tx, r.ID), r)
		track(tx, Event{Entity: EntityRelationship, Op: OpInsert, ID: r.ID})
	})
}

func (c *Context) UpdateRelationship(id string, p patch.RelationshipPatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootRelationships, id)
		if !ok {
			return
		}
		if p.Pattern.HasValue() {
			m.Set(tx, codec.KeyPattern, string(*p.Pattern.Value()))
		}
		setOptional(tx, m, codec.KeyCommunication, p.Communication)
		setOptional(tx, m, codec.KeyDescription, p.Description)
		track(tx, Event{Entity: EntityRelationship, Op: OpUpdate, ID: id})
	})
}

func (c *Context) DeleteRelationship(id string) {
	c.deleteEntity(codec.RootRelationships, EntityRelationship, id)
}
