package history

import "github.com/the-dev-tools/contextmap/pkg/model/mproject"

type AddActorConnection struct {
	Connection mproject.ActorConnection
}

func (AddActorConnection) Kind() Kind { return KindAddActorConnection }

func (c AddActorConnection) undo(p *mproject.Project) { actorConnections.remove(p, c.Connection.ID) }
func (c AddActorConnection) redo(p *mproject.Project) { actorConnections.put(p, c.Connection) }

type DeleteActorConnection struct {
	Connection mproject.ActorConnection
}

func (DeleteActorConnection) Kind() Kind { return KindDeleteActorConnection }

func (c DeleteActorConnection) undo(p *mproject.Project) { actorConnections.put(p, c.Connection) }
func (c DeleteActorConnection) redo(p *mproject.Project) { actorConnections.remove(p, c.Connection.ID) }

type AddActorNeedConnection struct {
	Connection mproject.ActorNeedConnection
}

func (AddActorNeedConnection) Kind() Kind { return KindAddActorNeedConnection }

func (c AddActorNeedConnection) undo(p *mproject.Project) {
	actorNeedConnections.remove(p, c.Connection.ID)
}

func (c AddActorNeedConnection) redo(p *mproject.Project) {
	actorNeedConnections.put(p, c.Connection)
}

type DeleteActorNeedConnection struct {
	Connection mproject.ActorNeedConnection
}

func (DeleteActorNeedConnection) Kind() Kind { return KindDeleteActorNeedConnection }

func (c DeleteActorNeedConnection) undo(p *mproject.Project) {
	actorNeedConnections.put(p, c.Connection)
}

func (c DeleteActorNeedConnection) redo(p *mproject.Project) {
	actorNeedConnections.remove(p, c.Connection.ID)
}

type AddNeedContextConnection struct {
	Connection mproject.NeedContextConnection
}

func (AddNeedContextConnection) Kind() Kind { return KindAddNeedContextConnection }

func (c AddNeedContextConnection) undo(p *mproject.Project) {
	needContextConnections.remove(p, c.Connection.ID)
}

func (c AddNeedContextConnection) redo(p *mproject.Project) {
	needContextConnections.put(p, c.Connection)
}

type DeleteNeedContextConnection struct {
	Connection mproject.NeedContextConnection
}

func (DeleteNeedContextConnection) Kind() Kind { return KindDeleteNeedContextConnection }

func (c DeleteNeedContextConnection) undo(p *mproject.Project) {
	needContextConnections.put(p, c.Connection)
}

func (c DeleteNeedContextConnection) redo(p *mproject.Project) {
	needContextConnections.remove(p, c.Connection.ID)
}

// Connections are only added when both endpoints exist.

func AddActorConnectionAction(p mproject.Project, c mproject.ActorConnection) (mproject.Project, Command, error) {
	_, hasActor := p.Actor(c.ActorID)
	_, hasContext := p.Context(c.ContextID)
	if !hasActor || !hasContext {
		return p, nil, nil
	}
	return forward(p, AddActorConnection{Connection: c})
}

func DeleteActorConnectionAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	c, ok := actorConnections.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteActorConnection{Connection: c})
}

func AddActorNeedConnectionAction(p mproject.Project, c mproject.ActorNeedConnection) (mproject.Project, Command, error) {
	_, hasActor := p.Actor(c.ActorID)
	_, hasNeed := p.UserNeed(c.UserNeedID)
	if !hasActor || !hasNeed {
		return p, nil, nil
	}
	return forward(p, AddActorNeedConnection{Connection: c})
}

func DeleteActorNeedConnectionAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	c, ok := actorNeedConnections.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteActorNeedConnection{Connection: c})
}

func AddNeedContextConnectionAction(p mproject.Project, c mproject.NeedContextConnection) (mproject.Project, Command, error) {
	_, hasNeed := p.UserNeed(c.UserNeedID)
	_, hasContext := p.Context(c.ContextID)
	if !hasNeed || !hasContext {
		return p, nil, nil
	}
	return forward(p, AddNeedContextConnection{Connection: c})
}

func DeleteNeedContextConnectionAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	c, ok := needContextConnections.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteNeedContextConnection{Connection: c})
}
