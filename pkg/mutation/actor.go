package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

func (c *Context) AddActor(a mproject.Actor) {
	c.transact(func(tx *shareddoc.Txn) {
		codec.WriteActor(tx, c.root(codec.RootActors).SetMap(tx, a.ID), a)
		track(tx, Event{Entity: EntityActor, Op: OpInsert, ID: a.ID})
	})
}

func (c *Context) UpdateActor(id string, p patch.ActorPatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootActors, id)
		if !ok {
			return
		}
		if p.Name.HasValue() {
			m.Set(tx, codec.KeyName, *p.Name.Value())
		}
		setOptional(tx, m, codec.KeyDescription, p.Description)
		track(tx, Event{Entity: EntityActor, Op: OpUpdate, ID: id})
	})
}

// DeleteActor removes an actor with its actor and actor-need connections.
func (c *Context) DeleteActor(id string) {
	c.transact(func(tx *shareddoc.Txn) {
		if _, ok := c.entity(codec.RootActors, id); !ok {
			return
		}
		c.root(codec.RootActors).Delete(tx, id)
		track(tx, Event{Entity: EntityActor, Op: OpDelete, ID: id})
		c.deleteWhere(tx, codec.RootActorConnections, EntityActorConnection, id, codec.KeyActorID)
		c.deleteWhere(tx, codec.RootActorNeedConnections, EntityActorNeedConnection, id, codec.KeyActorID)
	})
}

func (c *Context) UpdateActorPosition(id string, position float64) {
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootActors, id)
		if !ok {
			return
		}
		m.Set(tx, codec.KeyPosition, position)
		track(tx, Event{Entity: EntityActor, Op: OpUpdate, ID: id})
	})
}

func (c *Context) AddUserNeed(n mproject.UserNeed) {
	c.transact(func(tx *shareddoc.Txn) {
		codec.WriteUserNeed(tx, c.root(codec.RootUserNeeds).SetMap(tx, n.ID), n)
		track(tx, Event{Entity: EntityUserNeed, Op: OpInsert, ID: n.ID})
	})
}

func (c *Context) UpdateUserNeed(id string, p patch.UserNeedPatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootUserNeeds, id)
		if !ok {
			return
		}
		if p.Name.HasValue() {
			m.Set(tx, codec.KeyName, *p.Name.Value())
		}
		if p.Visible.HasValue() {
			m.Set(tx, codec.KeyVisible, *p.Visible.Value())
		}
		setOptional(tx, m, codec.KeyDescription, p.Description)
		track(tx, Event{Entity: EntityUserNeed, Op: OpUpdate, ID: id})
	})
}

// DeleteUserNeed removes a need with its actor-need and need-context
// connections.
func (c *Context) DeleteUserNeed(id string) {
	c.transact(func(tx *shareddoc.Txn) {
		if _, ok := c.entity(codec.RootUserNeeds, id); !ok {
			return
		}
		c.root(codec.RootUserNeeds).Delete(tx, id)
		track(tx, Event{Entity: EntityUserNeed, Op: OpDelete, ID: id})
		c.deleteWhere(tx, codec.RootActorNeedConnections, EntityActorNeedConnection, id, codec.KeyUserNeedID)
		c.deleteWhere(tx, codec.RootNeedContextConnections, EntityNeedContextConnection, id, codec.KeyUserNeedID)
	})
}

func (c *Context) UpdateUserNeedPosition(id string, position float64) {
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootUserNeeds, id)
		if !ok {
			return
		}
		m.Set(tx, codec.KeyPosition, position)
		track(tx, Event{Entity: EntityUserNeed, Op: OpUpdate, ID: id})
	})
}
