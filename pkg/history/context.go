package history

import (
	"maps"
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

type AddContext struct {
	Context mproject.BoundedContext
}

func (AddContext) Kind() Kind { return KindAddContext }

func (c AddContext) undo(p *mproject.Project) { contexts.remove(p, c.Context.ID) }
func (c AddContext) redo(p *mproject.Project) { contexts.put(p, c.Context) }

type UpdateContext struct {
	Before, After mproject.BoundedContext
}

func (UpdateContext) Kind() Kind { return KindUpdateContext }

func (c UpdateContext) undo(p *mproject.Project) { contexts.put(p, c.Before) }
func (c UpdateContext) redo(p *mproject.Project) { contexts.put(p, c.After) }

type membership struct {
	GroupID string
	Index   int
}

type keyframePosition struct {
	KeyframeID string
	Position   mproject.KeyframePosition
}

type keyframeActive struct {
	KeyframeID string
	Index      int
}

// DeleteContext stores the context and everything its deletion removed, with
// the list positions needed to put memberships back in place.
type DeleteContext struct {
	Context                mproject.BoundedContext
	Relationships          []mproject.Relationship
	Memberships            []membership
	ActorConnections       []mproject.ActorConnection
	NeedContextConnections []mproject.NeedContextConnection
	KeyframePositions      []keyframePosition
	KeyframeActive         []keyframeActive
}

func (DeleteContext) Kind() Kind { return KindDeleteContext }

func (c DeleteContext) undo(p *mproject.Project) {
	id := c.Context.ID
	contexts.put(p, c.Context)
	relationships.putAll(p, c.Relationships)
	for _, m := range c.Memberships {
		if g, ok := p.Group(m.GroupID); ok {
			g.ContextIDs = insertAt(g.ContextIDs, m.Index, id)
		}
	}
	actorConnections.putAll(p, c.ActorConnections)
	needContextConnections.putAll(p, c.NeedContextConnections)
	for _, kp := range c.KeyframePositions {
		if k, ok := p.Keyframe(kp.KeyframeID); ok {
			if k.Positions == nil {
				k.Positions = map[string]mproject.KeyframePosition{}
			}
			k.Positions[id] = kp.Position
		}
	}
	for _, ka := range c.KeyframeActive {
		if k, ok := p.Keyframe(ka.KeyframeID); ok {
			k.ActiveContextIDs = insertAt(k.ActiveContextIDs, ka.Index, id)
		}
	}
}

func (c DeleteContext) redo(p *mproject.Project) {
	deleteContext(p, c.Context.ID)
}

// deleteContext removes a context with its cascade and returns the command
// that restores it.
func deleteContext(p *mproject.Project, id string) DeleteContext {
	ctx, _ := contexts.get(p, id)
	cmd := DeleteContext{Context: ctx}
	contexts.remove(p, id)

	cmd.Relationships = relationships.removeWhere(p, func(r mproject.Relationship) bool {
		return r.FromContextID == id || r.ToContextID == id
	})
	for i := range p.Groups {
		g := &p.Groups[i]
		if idx := slices.Index(g.ContextIDs, id); idx >= 0 {
			cmd.Memberships = append(cmd.Memberships, membership{GroupID: g.ID, Index: idx})
			g.ContextIDs = slices.DeleteFunc(g.ContextIDs, func(s string) bool { return s == id })
		}
	}
	cmd.ActorConnections = actorConnections.removeWhere(p, func(c mproject.ActorConnection) bool {
		return c.ContextID == id
	})
	cmd.NeedContextConnections = needContextConnections.removeWhere(p, func(c mproject.NeedContextConnection) bool {
		return c.ContextID == id
	})
	if p.Temporal != nil {
		for i := range p.Temporal.Keyframes {
			k := &p.Temporal.Keyframes[i]
			if pos, ok := k.Positions[id]; ok {
				cmd.KeyframePositions = append(cmd.KeyframePositions, keyframePosition{KeyframeID: k.ID, Position: pos})
				delete(k.Positions, id)
			}
			if idx := slices.Index(k.ActiveContextIDs, id); idx >= 0 {
				cmd.KeyframeActive = append(cmd.KeyframeActive, keyframeActive{KeyframeID: k.ID, Index: idx})
				k.ActiveContextIDs = slices.DeleteFunc(k.ActiveContextIDs, func(s string) bool { return s == id })
			}
		}
	}
	return cmd
}

type MoveContext struct {
	ID       string
	Old, New mproject.Positions
}

func (MoveContext) Kind() Kind { return KindMoveContext }

func (c MoveContext) undo(p *mproject.Project) { setPositions(p, c.ID, c.Old) }
func (c MoveContext) redo(p *mproject.Project) { setPositions(p, c.ID, c.New) }

// MoveContextGroup moves several contexts at once, e.g. a dragged group.
type MoveContextGroup struct {
	Old, New map[string]mproject.Positions
}

func (MoveContextGroup) Kind() Kind { return KindMoveContextGroup }

func (c MoveContextGroup) undo(p *mproject.Project) {
	for id, pos := range c.Old {
		setPositions(p, id, pos)
	}
}

func (c MoveContextGroup) redo(p *mproject.Project) {
	for id, pos := range c.New {
		setPositions(p, id, pos)
	}
}

func setPositions(p *mproject.Project, id string, pos mproject.Positions) {
	if c, ok := p.Context(id); ok {
		c.Positions = pos
	}
}

func insertAt(s []string, i int, v string) []string {
	i = min(max(i, 0), len(s))
	return slices.Insert(s, i, v)
}

func AddContextAction(p mproject.Project, ctx mproject.BoundedContext) (mproject.Project, Command, error) {
	return forward(p, AddContext{Context: ctx})
}

func UpdateContextAction(p mproject.Project, id string, pt patch.ContextPatch) (mproject.Project, Command, error) {
	before, ok := contexts.get(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	return forward(p, UpdateContext{Before: before, After: pt.Apply(before)})
}

func DeleteContextAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	if _, ok := contexts.get(&p, id); !ok {
		return p, nil, nil
	}
	out := p.Clone()
	cmd := deleteContext(&out, id)
	out.Normalize()
	return out, cmd, nil
}

func UpdateContextPositionAction(p mproject.Project, id string, pos mproject.Positions) (mproject.Project, Command, error) {
	ctx, ok := contexts.get(&p, id)
	if !ok || ctx.Positions == pos {
		return p, nil, nil
	}
	return forward(p, MoveContext{ID: id, Old: ctx.Positions, New: pos})
}

// UpdateContextPositionsAction moves every listed context that exists and
// is not already in place.
func UpdateContextPositionsAction(p mproject.Project, positions map[string]mproject.Positions) (mproject.Project, Command, error) {
	cmd := MoveContextGroup{Old: map[string]mproject.Positions{}, New: map[string]mproject.Positions{}}
	for _, id := range slices.Sorted(maps.Keys(positions)) {
		ctx, ok := contexts.get(&p, id)
		if !ok || ctx.Positions == positions[id] {
			continue
		}
		cmd.Old[id] = ctx.Positions
		cmd.New[id] = positions[id]
	}
	if len(cmd.New) == 0 {
		return p, nil, nil
	}
	return forward(p, cmd)
}
