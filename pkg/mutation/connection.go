package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Connections are only added when both endpoints exist.

func (c *Context) AddActorConnection(conn mproject.ActorConnection) {
	c.transact(func(tx *shareddoc.Txn) {
		if !c.exists(codec.RootActors, conn.ActorID) || !c.exists(codec.RootContexts, conn.ContextID) {
			return
		}
		codec.WriteActorConnection(tx, c.root(codec.RootActorConnections).SetMap(tx, conn.ID), conn)
		track(tx, Event{Entity: EntityActorConnection, Op: OpInsert, ID: conn.ID})
	})
}

func (c *Context) DeleteActorConnection(id string) {
	c.deleteEntity(codec.RootActorConnections, EntityActorConnection, id)
}

func (c *Context) AddActorNeedConnection(conn mproject.ActorNeedConnection) {
	c.transact(func(tx *shareddoc.Txn) {
		if !c.exists(codec.RootActors, conn.ActorID) || !c.exists(codec.RootUserNeeds, conn.UserNeedID) {
			return
		}
		codec.WriteActorNeedConnection(tx, c.root(codec.RootActorNeedConnections).SetMap(tx, conn.ID), conn)
		track(tx, Event{Entity: EntityActorNeedConnection, Op: OpInsert, ID: conn.ID})
	})
}

func (c *Context) DeleteActorNeedConnection(id string) {
	c.deleteEntity(codec.RootActorNeedConnections, EntityActorNeedConnection, id)
}

func (c *Context) AddNeedContextConnection(conn mproject.NeedContextConnection) {
	c.transact(func(tx *shareddoc.Txn) {
		if !c.exists(codec.RootUserNeeds, conn.UserNeedID) || !c.exists(codec.RootContexts, conn.ContextID) {
			return
		}
		codec.WriteNeedContextConnection(tx, c.root(codec.RootNeedContextConnections).SetMap(tx, conn.ID), conn)
		track(tx, Event{Entity: EntityNeedContextConnection, Op: OpInsert, ID: conn.ID})
	})
}

func (c *Context) DeleteNeedContextConnection(id string) {
	c.deleteEntity(codec.RootNeedContextConnections, EntityNeedContextConnection, id)
}

func (c *Context) deleteEntity(root string, entity EntityType, id string) {
	c.transact(func(tx *shareddoc.Txn) {
		if _, ok := c.entity(root, id); !ok {
			return
		}
		c.root(root).Delete(tx, id)
		track(tx, Event{Entity: entity, Op: OpDelete, ID: id})
	})
}
