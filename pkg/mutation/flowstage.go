package mutation

import (
	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Flow stages live in a sequence and are addressed by their unique name, so
// a concurrent insert that shifts indices cannot redirect an edit to the
// wrong stage. Name and position uniqueness is checked by callers.

// AddFlowStage appends a stage.
func (c *Context) AddFlowStage(stage mproject.FlowStage) {
	c.transact(func(tx *shareddoc.Txn) {
		codec.WriteFlowStage(tx, c.doc.GetArray(codec.RootFlowStages).PushMap(tx), stage)
		track(tx, Event{Entity: EntityFlowStage, Op: OpInsert, ID: stage.Name})
	})
}

func (c *Context) UpdateFlowStage(name string, p patch.FlowStagePatch) {
	if !p.HasChanges() {
		return
	}
	c.transact(func(tx *shareddoc.Txn) {
		m, _, ok := c.stage(name)
		if !ok {
			return
		}
		if p.Name.HasValue() {
			m.Set(tx, codec.KeyName, *p.Name.Value())
		}
		if p.Position.HasValue() {
			m.Set(tx, codec.KeyPosition, *p.Position.Value())
		}
		setOptional(tx, m, codec.KeyDescription, p.Description)
		track(tx, Event{Entity: EntityFlowStage, Op: OpUpdate, ID: name})
	})
}

func (c *Context) DeleteFlowStage(name string) {
	c.transact(func(tx *shareddoc.Txn) {
		_, i, ok := c.stage(name)
		if !ok {
			return
		}
		c.doc.GetArray(codec.RootFlowStages).Delete(tx, i, 1)
		track(tx, Event{Entity: EntityFlowStage, Op: OpDelete, ID: name})
	})
}

// stage returns the stage map called name and its current index.
func (c *Context) stage(name string) (*shareddoc.Map, int, bool) {
	for i, v := range c.doc.GetArray(codec.RootFlowStages).Values() {
		m, ok := v.(*shareddoc.Map)
		if !ok {
			continue
		}
		if n, _ := m.String(codec.KeyName); n == name {
			return m, i, true
		}
	}
	c.logger.Debug("mutation: flow stage not found", "name", name)
	return nil, -1, false
}
