// Package history is the undo stack used while no collaboration session is
// active.
//
// Every edit is a forward action: a function that takes a project and
// returns the edited copy together with a Command holding what is needed to
// revert and reapply it. Commands are a closed set of variants; each one
// implements both directions, so adding a kind without its inverse does not
// compile.
package history

import "github.com/the-dev-tools/contextmap/pkg/model/mproject"

type Kind string

const (
	KindAddContext                  Kind = "add-context"
	KindUpdateContext               Kind = "update-context"
	KindDeleteContext               Kind = "delete-context"
	KindMoveContext                 Kind = "move-context"
	KindMoveContextGroup            Kind = "move-context-group"
	KindAddRelationship             Kind = "add-relationship"
	KindUpdateRelationship          Kind = "update-relationship"
	KindDeleteRelationship          Kind = "delete-relationship"
	KindAddGroup                    Kind = "add-group"
	KindUpdateGroup                 Kind = "update-group"
	KindDeleteGroup                 Kind = "delete-group"
	KindAddGroupMember              Kind = "add-group-member"
	KindRemoveGroupMember           Kind = "remove-group-member"
	KindAddActor                    Kind = "add-actor"
	KindUpdateActor                 Kind = "update-actor"
	KindDeleteActor                 Kind = "delete-actor"
	KindMoveActor                   Kind = "move-actor"
	KindAddUserNeed                 Kind = "add-user-need"
	KindUpdateUserNeed              Kind = "update-user-need"
	KindDeleteUserNeed              Kind = "delete-user-need"
	KindMoveUserNeed                Kind = "move-user-need"
	KindAddActorConnection          Kind = "add-actor-connection"
	KindDeleteActorConnection       Kind = "delete-actor-connection"
	KindAddActorNeedConnection      Kind = "add-actor-need-connection"
	KindDeleteActorNeedConnection   Kind = "delete-actor-need-connection"
	KindAddNeedContextConnection    Kind = "add-need-context-connection"
	KindDeleteNeedContextConnection Kind = "delete-need-context-connection"
	KindAddFlowStage                Kind = "add-flow-stage"
	KindUpdateFlowStage             Kind = "update-flow-stage"
	KindDeleteFlowStage             Kind = "delete-flow-stage"
	KindCreateKeyframe              Kind = "create-keyframe"
	KindUpdateKeyframe              Kind = "update-keyframe"
	KindDeleteKeyframe              Kind = "delete-keyframe"
	KindMoveContextInKeyframe       Kind = "move-context-in-keyframe"
)

// Command is one reversible edit. The unexported methods seal the set of
// implementations to this package.
type Command interface {
	Kind() Kind
	undo(p *mproject.Project)
	redo(p *mproject.Project)
}

// ApplyUndo returns a copy of p with cmd reverted. p is not modified.
func ApplyUndo(p mproject.Project, cmd Command) mproject.Project {
	out := p.Clone()
	cmd.undo(&out)
	out.Normalize()
	return out
}

// ApplyRedo returns a copy of p with cmd applied again.
func ApplyRedo(p mproject.Project, cmd Command) mproject.Project {
	out := p.Clone()
	cmd.redo(&out)
	out.Normalize()
	return out
}

// forward runs a forward action on a copy of p.
func forward(p mproject.Project, cmd Command) (mproject.Project, Command, error) {
	return ApplyRedo(p, cmd), cmd, nil
}

// collection gives generic access to one ID-keyed slice of a project.
type collection[T any] struct {
	items func(p *mproject.Project) *[]T
	id    func(T) string
}

func (c collection[T]) get(p *mproject.Project, id string) (T, bool) {
	items := *c.items(p)
	i := mproject.IndexByID(items, id, c.id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

// put inserts or replaces item.
func (c collection[T]) put(p *mproject.Project, item T) {
	items := c.items(p)
	*items = mproject.InsertByID(*items, item, c.id)
}

func (c collection[T]) putAll(p *mproject.Project, items []T) {
	for _, item := range items {
		c.put(p, item)
	}
}

func (c collection[T]) remove(p *mproject.Project, id string) {
	items := c.items(p)
	*items, _ = mproject.RemoveByID(*items, id, c.id)
}

// removeWhere deletes the items matching match and returns them.
func (c collection[T]) removeWhere(p *mproject.Project, match func(T) bool) []T {
	items := c.items(p)
	var removed, kept []T
	for _, item := range *items {
		if match(item) {
			removed = append(removed, item)
		} else {
			kept = append(kept, item)
		}
	}
	*items = kept
	return removed
}

var (
	contexts = collection[mproject.BoundedContext]{
		items: func(p *mproject.Project) *[]mproject.BoundedContext { return &p.Contexts },
		id:    mproject.ContextID,
	}
	relationships = collection[mproject.Relationship]{
		items: func(p *mproject.Project) *[]mproject.Relationship { return &p.Relationships },
		id:    mproject.RelationshipID,
	}
	groups = collection[mproject.Group]{
		items: func(p *mproject.Project) *[]mproject.Group { return &p.Groups },
		id:    mproject.GroupID,
	}
	actors = collection[mproject.Actor]{
		items: func(p *mproject.Project) *[]mproject.Actor { return &p.Actors },
		id:    mproject.ActorID,
	}
	userNeeds = collection[mproject.UserNeed]{
		items: func(p *mproject.Project) *[]mproject.UserNeed { return &p.UserNeeds },
		id:    mproject.UserNeedID,
	}
	actorConnections = collection[mproject.ActorConnection]{
		items: func(p *mproject.Project) *[]mproject.ActorConnection { return &p.ActorConnections },
		id:    mproject.ActorConnectionID,
	}
	actorNeedConnections = collection[mproject.ActorNeedConnection]{
		items: func(p *mproject.Project) *[]mproject.ActorNeedConnection { return &p.ActorNeedConnections },
		id:    mproject.ActorNeedConnectionID,
	}
	needContextConnections = collection[mproject.NeedContextConnection]{
		items: func(p *mproject.Project) *[]mproject.NeedContextConnection { return &p.NeedContextConnections },
		id:    mproject.NeedContextConnectionID,
	}
)
