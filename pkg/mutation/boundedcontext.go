package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

func (c *Context) AddContext(ctx mproject.BoundedContext) {
	c.transact(func(tx *shareddoc.Txn) {
		codec.WriteContext(tx, c.root(codec.RootContexts).SetMap(tx, ctx.ID), ctx)
		track(tx, Event{Entity: EntityContext, Op: OpInsert, ID: ctx.ID})
	})
}

func (c *Context) UpdateContext(id string, p patch.ContextPatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootContexts, id)
		if !ok {
			return
		}
		if p.Name.HasValue() {
			m.Set(tx, codec.KeyName, *p.Name.Value())
		}
		if p.IsLegacy.HasValue() {
			m.Set(tx, codec.KeyIsLegacy, *p.IsLegacy.Value())
		}
		setOptional(tx, m, codec.KeyPurpose, p.Purpose)
		setOptional(tx, m, codec.KeyStrategicClassification, p.StrategicClassification)
		setOptional(tx, m, codec.KeyOwnership, p.Ownership)
		setOptional(tx, m, codec.KeyBoundaryIntegrity, p.BoundaryIntegrity)
		setOptional(tx, m, codec.KeyBoundaryNotes, p.BoundaryNotes)
		setOptional(tx, m, codec.KeyEvolutionStage, p.EvolutionStage)
		setOptional(tx, m, codec.KeyCodeSize, p.CodeSize)
		setOptional(tx, m, codec.KeyNotes, p.Notes)
		setOptional(tx, m, codec.KeyTeamID, p.TeamID)
		track(tx, Event{Entity: EntityContext, Op: OpUpdate, ID: id})
	})
}

// DeleteContext removes a context and everything that references it:
// relationships, group memberships, actor and need connections, keyframe
// positions and keyframe active ids.
func (c *Context) DeleteContext(id string) {
	c.transact(func(tx *shareddoc.Txn) {
		if _, ok := c.entity(codec.RootContexts, id); !ok {
			return
		}
		c.root(codec.RootContexts).Delete(tx, id)
		track(tx, Event{Entity: EntityContext, Op: OpDelete, ID: id})

		c.deleteWhere(tx, codec.RootRelationships, EntityRelationship, id, codec.KeyFromContextID, codec.KeyToContextID)

		groups := c.root(codec.RootGroups)
		for _, gid := range groups.Keys() {
			g, ok := groups.Map(gid)
			if !ok {
				continue
			}
			if members, ok := g.Array(codec.KeyContextIDs); ok && removeValue(tx, members, id) {
				track(tx, Event{Entity: EntityGroupMember, Op: OpDelete, ID: id, ParentID: gid, Cascade: true})
			}
		}

		c.deleteWhere(tx, codec.RootActorConnections, EntityActorConnection, id, codec.KeyContextID)
		c.deleteWhere(tx, codec.RootNeedContextConnections, EntityNeedContextConnection, id, codec.KeyContextID)

		keyframes := c.root(codec.RootKeyframes)
		for _, kid := range keyframes.Keys() {
			k, ok := keyframes.Map(kid)
			if !ok {
				continue
			}
			if positions, ok := k.Map(codec.KeyPositions); ok && positions.Has(id) {
				positions.Delete(tx, id)
				track(tx, Event{Entity: EntityKeyframePosition, Op: OpDelete, ID: id, ParentID: kid, Cascade: true})
			}
			if active, ok := k.Array(codec.KeyActiveContextIDs); ok && removeValue(tx, active, id) {
				track(tx, Event{Entity: EntityKeyframe, Op: OpUpdate, ID: kid, Cascade: true})
			}
		}
	})
}

func (c *Context) UpdateContextPosition(id string, pos mproject.Positions) {
	c.transact(func(tx *shareddoc.Txn) {
		c.writePosition(tx, id, pos)
	})
}

// UpdateContextPositions moves several contexts in one transaction, e.g.
// when a whole group is dragged. Contexts that no longer exist are skipped.
func (c *Context) UpdateContextPositions(positions map[string]mproject.Positions) {
	c.transact(func(tx *shareddoc.Txn) {
		for _, id := range sortedIDs(positions) {
			c.writePosition(tx, id, positions[id])
		}
	})
}

func (c *Context) writePosition(tx *shareddoc.Txn, id string, pos mproject.Positions) {
	m, ok := c.entity(codec.RootContexts, id)
	if !ok {
		return
	}
	if codec.UpdatePositions(tx, childMap(tx, m, codec.KeyPositions), pos) {
		track(tx, Event{Entity: EntityContextPosition, Op: OpUpdate, ID: id})
	}
}

func setOptional[T ~string](tx *shareddoc.Txn, m *shareddoc.Map, key string, o patch.Optional[T]) {
	if o.IsSet() {
		codec.SetOptional(tx, m, key, o.Value())
	}
}
