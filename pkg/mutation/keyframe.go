package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// AddKeyframe adds a keyframe. A project without a temporal block gets an
// enabled one in the same transaction.
func (c *Context) AddKeyframe(k mproject.Keyframe) {
	c.transact(func(tx *shareddoc.Txn) {
		temporal := c.root(codec.RootTemporal)
		if !temporal.Has(codec.KeyEnabled) {
			temporal.Set(tx, codec.KeyEnabled, true)
		}
		codec.WriteKeyframe(tx, c.root(codec.RootKeyframes).SetMap(tx, k.ID), k)
		track(tx, Event{Entity: EntityKeyframe, Op: OpInsert, ID: k.ID})
	})
}

func (c *Context) UpdateKeyframe(id string, p patch.KeyframePatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, ok := c.entity(codec.RootKeyframes, id)
		if !ok {
			return
		}
		if p.Date.HasValue() {
			m.Set(tx, codec.KeyDate, *p.Date.Value())
		}
		setOptional(tx, m, codec.KeyLabel, p.Label)
		if p.ActiveContextIDs.HasValue() {
			codec.SetStrings(tx, stringArray(tx, m, codec.KeyActiveContextIDs), *p.ActiveContextIDs.Value())
		}
		track(tx, Event{Entity: EntityKeyframe, Op: OpUpdate, ID: id})
	})
}

func (c *Context) DeleteKeyframe(id string) {
	c.deleteEntity(codec.RootKeyframes, EntityKeyframe, id)
}

// UpdateKeyframeContextPosition sets the position override of contextID in
// a keyframe. It is a no-op unless both exist.
func (c *Context) UpdateKeyframeContextPosition(keyframeID, contextID string, pos mproject.KeyframePosition) {
	c.transact(func(tx *shareddoc.Txn) {
		k, ok := c.entity(codec.RootKeyframes, keyframeID)
		if !ok || !c.exists(codec.RootContexts, contextID) {
			return
		}
		positions := childMap(tx, k, codec.KeyPositions)
		if codec.UpdateKeyframePosition(tx, childMap(tx, positions, contextID), pos) {
			track(tx, Event{Entity: EntityKeyframePosition, Op: OpUpdate, ID: contextID, ParentID: keyframeID})
		}
	})
}
