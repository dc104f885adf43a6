package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

func (c *Context) AddGroup(g mproject.Group) {
	c.transact(func(tx *shareddoc.Txn) {
		codec.WriteGroup(tx, c.root(codec.RootGroups).SetMap(tx, g.ID), g)
		track(tx, Event{Entity: EntityGroup, Op: OpInsert, ID: g.ID})
	})
}

func (c *Context) UpdateGroup(id string, p patch.GroupPatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootGroups, id)
		if !ok {
			return
		}
		if p.Label.HasValue() {
			m.Set(tx, codec.KeyLabel, *p.Label.Value())
		}
		setOptional(tx, m, codec.KeyColor, p.Color)
		setOptional(tx, m, codec.KeyNotes, p.Notes)
		track(tx, Event{Entity: EntityGroup, Op: OpUpdate, ID: id})
	})
}

// DeleteGroup removes the group only. Its member contexts stay.
func (c *Context) DeleteGroup(id string) {
	c.deleteEntity(codec.RootGroups, EntityGroup, id)
}

// AddContextToGroup appends contextID to the group's members. It is a no-op
// if either side is missing or the context is already a member.
func (c *Context) AddContextToGroup(groupID, contextID string) {
	c.transact(func(tx *shareddoc.Txn) {
		g, ok := c.entity(codec.RootGroups, groupID)
		if !ok || !c.exists(codec.RootContexts, contextID) {
			return
		}
		members := stringArray(tx, g, codec.KeyContextIDs)
		if members.Index(contextID) >= 0 {
			return
		}
		members.Push(tx, contextID)
		track(tx, Event{Entity: EntityGroupMember, Op: OpInsert, ID: contextID, ParentID: groupID})
	})
}

func (c *Context) RemoveContextFromGroup(groupID, contextID string) {
	c.transact(func(tx *shareddoc.Txn) {
		g, ok := c.entity(codec.RootGroups, groupID)
		if !ok {
			return
		}
		members, ok := g.Array(codec.KeyContextIDs)
		if !ok || !removeValue(tx, members, contextID) {
			return
		}
		track(tx, Event{Entity: EntityGroupMember, Op: OpDelete, ID: contextID, ParentID: groupID})
	})
}
