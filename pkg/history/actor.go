package history

import (
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

type AddActor struct {
	Actor mproject.Actor
}

func (AddActor) Kind() Kind { return KindAddActor }

func (c AddActor) undo(p *mproject.Project) { actors.remove(p, c.Actor.ID) }
func (c AddActor) redo(p *mproject.Project) { actors.put(p, c.Actor) }

type UpdateActor struct {
	Before, After mproject.Actor
}

func (UpdateActor) Kind() Kind { return KindUpdateActor }

func (c UpdateActor) undo(p *mproject.Project) { actors.put(p, c.Before) }
func (c UpdateActor) redo(p *mproject.Project) { actors.put(p, c.After) }

type DeleteActor struct {
	Actor                mproject.Actor
	ActorConnections     []mproject.ActorConnection
	ActorNeedConnections []mproject.ActorNeedConnection
}

func (DeleteActor) Kind() Kind { return KindDeleteActor }

func (c DeleteActor) undo(p *mproject.Project) {
	actors.put(p, c.Actor)
	actorConnections.putAll(p, c.ActorConnections)
	actorNeedConnections.putAll(p, c.ActorNeedConnections)
}

func (c DeleteActor) redo(p *mproject.Project) { deleteActor(p, c.Actor.ID) }

func deleteActor(p *mproject.Project, id string) DeleteActor {
	a, _ := actors.get(p, id)
	actors.remove(p, id)
	return DeleteActor{
		Actor: a,
		ActorConnections: actorConnections.removeWhere(p, func(c mproject.ActorConnection) bool {
			return c.ActorID == id
		}),
		ActorNeedConnections: actorNeedConnections.removeWhere(p, func(c mproject.ActorNeedConnection) bool {
			return c.ActorID == id
		}),
	}
}

type MoveActor struct {
	ID       string
	Old, New float64
}

func (MoveActor) Kind() Kind { return KindMoveActor }

func (c MoveActor) undo(p *mproject.Project) {
	if a, ok := p.Actor(c.ID); ok {
		a.Position = c.Old
	}
}

func (c MoveActor) redo(p *mproject.Project) {
	if a, ok := p.Actor(c.ID); ok {
		a.Position = c.New
	}
}

type AddUserNeed struct {
	UserNeed mproject.UserNeed
}

func (AddUserNeed) Kind() Kind { return KindAddUserNeed }

func (c AddUserNeed) undo(p *mproject.Project) { userNeeds.remove(p, c.UserNeed.ID) }
func (c AddUserNeed) redo(p *mproject.Project) { userNeeds.put(p, c.UserNeed) }

type UpdateUserNeed struct {
	Before, After mproject.UserNeed
}

func (UpdateUserNeed) Kind() Kind { return KindUpdateUserNeed }

func (c UpdateUserNeed) undo(p *mproject.Project) { userNeeds.put(p, c.Before) }
func (c UpdateUserNeed) redo(p *mproject.Project) { userNeeds.put(p, c.After) }

type DeleteUserNeed struct {
	UserNeed               mproject.UserNeed
	ActorNeedConnections   []mproject.ActorNeedConnection
	NeedContextConnections []mproject.NeedContextConnection
}

func (DeleteUserNeed) Kind() Kind { return KindDeleteUserNeed }

func (c DeleteUserNeed) undo(p *mproject.Project) {
	userNeeds.put(p, c.UserNeed)
	actorNeedConnections.putAll(p, c.ActorNeedConnections)
	needContextConnections.putAll(p, c.NeedContextConnections)
}

func (c DeleteUserNeed) redo(p *mproject.Project) { deleteUserNeed(p, c.UserNeed.ID) }

func deleteUserNeed(p *mproject.Project, id string) DeleteUserNeed {
	n, _ := userNeeds.get(p, id)
	userNeeds.remove(p, id)
	return DeleteUserNeed{
		UserNeed: n,
		ActorNeedConnections: actorNeedConnections.removeWhere(p, func(c mproject.ActorNeedConnection) bool {
			return c.UserNeedID == id
		}),
		NeedContextConnections: needContextConnections.removeWhere(p, func(c mproject.NeedContextConnection) bool {
			return c.UserNeedID == id
		}),
	}
}

type MoveUserNeed struct {
	ID       string
	Old, New float64
}

func (MoveUserNeed) Kind() Kind { return KindMoveUserNeed }

func (c MoveUserNeed) undo(p *mproject.Project) {
	if n, ok := p.UserNeed(c.ID); ok {
		n.Position = c.Old
	}
}

func (c MoveUserNeed) redo(p *mproject.Project) {
	if n, ok := p.UserNeed(c.ID); ok {
		n.Position = c.New
	}
}

func AddActorAction(p mproject.Project, a mproject.Actor) (mproject.Project, Command, error) {
	return forward(p, AddActor{Actor: a})
}

func UpdateActorAction(p mproject.Project, id string, pt patch.ActorPatch) (mproject.Project, Command, error) {
	before, ok := actors.get(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	return forward(p, UpdateActor{Before: before, After: pt.Apply(before)})
}

func DeleteActorAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	if _, ok := actors.get(&p, id); !ok {
		return p, nil, nil
	}
	out := p.Clone()
	cmd := deleteActor(&out, id)
	out.Normalize()
	return out, cmd, nil
}

func UpdateActorPositionAction(p mproject.Project, id string, position float64) (mproject.Project, Command, error) {
	a, ok := actors.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, MoveActor{ID: id, Old: a.Position, New: position})
}

func AddUserNeedAction(p mproject.Project, n mproject.UserNeed) (mproject.Project, Command, error) {
	return forward(p, AddUserNeed{UserNeed: n})
}

func UpdateUserNeedAction(p mproject.Project, id string, pt patch.UserNeedPatch) (mproject.Project, Command, error) {
	before, ok := userNeeds.get(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	return forward(p, UpdateUserNeed{Before: before, After: pt.Apply(before)})
}

func DeleteUserNeedAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	if _, ok := userNeeds.get(&p, id); !ok {
		return p, nil, nil
	}
	out := p.Clone()
	cmd := deleteUserNeed(&out, id)
	out.Normalize()
	return out, cmd, nil
}

func UpdateUserNeedPositionAction(p mproject.Project, id string, position float64) (mproject.Project, Command, error) {
	n, ok := userNeeds.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, MoveUserNeed{ID: id, Old: n.Position, New: position})
}
