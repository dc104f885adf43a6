package action

import (
	"context"

	"github.com/the-dev-tools/contextmap/pkg/history"
	"github.com/the-dev-tools/contextmap/pkg/idwrap"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

// Add operations assign an id when the entity has none and return it.

func ensureID(id *string, kind idwrap.Kind) string {
	if *id == "" {
		*id = idwrap.NewNow(kind)
	}
	return *id
}

func (e *Editor) AddContext(ctx context.Context, c mproject.BoundedContext) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkName(c.Name); err != nil {
		return "", e.reject("add context", err)
	}
	id := ensureID(&c.ID, idwrap.KindContext)
	return id, e.apply(ctx, "add context",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.AddContextAction(p, c) },
		func(m *mutation.Context) { m.AddContext(c) })
}

func (e *Editor) UpdateContext(ctx context.Context, id string, pt patch.ContextPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkRename(pt.Name); err != nil {
		return e.reject("update context", err)
	}
	return e.apply(ctx, "update context",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateContextAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateContext(id, pt) })
}

// DeleteContext removes a context with its relationships, memberships,
// connections and keyframe data.
func (e *Editor) DeleteContext(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete context",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.DeleteContextAction(p, id) },
		func(m *mutation.Context) { m.DeleteContext(id) })
}

func (e *Editor) UpdateContextPosition(ctx context.Context, id string, pos mproject.Positions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "move context",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateContextPositionAction(p, id, pos)
		},
		func(m *mutation.Context) { m.UpdateContextPosition(id, pos) })
}

// UpdateContextPositions moves several contexts as one undo step.
func (e *Editor) UpdateContextPositions(ctx context.Context, positions map[string]mproject.Positions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "move contexts",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateContextPositionsAction(p, positions)
		},
		func(m *mutation.Context) { m.UpdateContextPositions(positions) })
}

func (e *Editor) AddRelationship(ctx context.Context, r mproject.Relationship) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkRelationship(&e.project, r); err != nil {
		return "", e.reject("add relationship", err)
	}
	id := ensureID(&r.ID, idwrap.KindRelationship)
	return id, e.apply(ctx, "add relationship",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddRelationshipAction(p, r)
		},
		func(m *mutation.Context) { m.AddRelationship(r) })
}

func (e *Editor) UpdateRelationship(ctx context.Context, id string, pt patch.RelationshipPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "update relationship",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateRelationshipAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateRelationship(id, pt) })
}

func (e *Editor) DeleteRelationship(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete relationship",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteRelationshipAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteRelationship(id) })
}

func (e *Editor) AddGroup(ctx context.Context, g mproject.Group) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkContexts(&e.project, g.ContextIDs...); err != nil {
		return "", e.reject("add group", err)
	}
	id := ensureID(&g.ID, idwrap.KindGroup)
	return id, e.apply(ctx, "add group",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.AddGroupAction(p, g) },
		func(m *mutation.Context) { m.AddGroup(g) })
}

func (e *Editor) UpdateGroup(ctx context.Context, id string, pt patch.GroupPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "update group",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateGroupAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateGroup(id, pt) })
}

func (e *Editor) DeleteGroup(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete group",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.DeleteGroupAction(p, id) },
		func(m *mutation.Context) { m.DeleteGroup(id) })
}

func (e *Editor) AddContextToGroup(ctx context.Context, groupID, contextID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "add group member",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddContextToGroupAction(p, groupID, contextID)
		},
		func(m *mutation.Context) { m.AddContextToGroup(groupID, contextID) })
}

func (e *Editor) RemoveContextFromGroup(ctx context.Context, groupID, contextID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "remove group member",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.RemoveContextFromGroupAction(p, groupID, contextID)
		},
		func(m *mutation.Context) { m.RemoveContextFromGroup(groupID, contextID) })
}

func (e *Editor) AddActor(ctx context.Context, a mproject.Actor) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkName(a.Name); err != nil {
		return "", e.reject("add actor", err)
	}
	id := ensureID(&a.ID, idwrap.KindActor)
	return id, e.apply(ctx, "add actor",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.AddActorAction(p, a) },
		func(m *mutation.Context) { m.AddActor(a) })
}

func (e *Editor) UpdateActor(ctx context.Context, id string, pt patch.ActorPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkRename(pt.Name); err != nil {
		return e.reject("update actor", err)
	}
	return e.apply(ctx, "update actor",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateActorAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateActor(id, pt) })
}

func (e *Editor) DeleteActor(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete actor",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.DeleteActorAction(p, id) },
		func(m *mutation.Context) { m.DeleteActor(id) })
}

func (e *Editor) UpdateActorPosition(ctx context.Context, id string, position float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "move actor",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateActorPositionAction(p, id, position)
		},
		func(m *mutation.Context) { m.UpdateActorPosition(id, position) })
}

func (e *Editor) AddUserNeed(ctx context.Context, n mproject.UserNeed) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkName(n.Name); err != nil {
		return "", e.reject("add user need", err)
	}
	id := ensureID(&n.ID, idwrap.KindUserNeed)
	return id, e.apply(ctx, "add user need",
		func(p mproject.Project) (mproject.Project, history.Command, error) { return history.AddUserNeedAction(p, n) },
		func(m *mutation.Context) { m.AddUserNeed(n) })
}

func (e *Editor) UpdateUserNeed(ctx context.Context, id string, pt patch.UserNeedPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkRename(pt.Name); err != nil {
		return e.reject("update user need", err)
	}
	return e.apply(ctx, "update user need",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateUserNeedAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateUserNeed(id, pt) })
}

func (e *Editor) DeleteUserNeed(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete user need",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteUserNeedAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteUserNeed(id) })
}

func (e *Editor) UpdateUserNeedPosition(ctx context.Context, id string, position float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "move user need",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateUserNeedPositionAction(p, id, position)
		},
		func(m *mutation.Context) { m.UpdateUserNeedPosition(id, position) })
}

func (e *Editor) AddActorConnection(ctx context.Context, c mproject.ActorConnection) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := firstErr(checkActor(&e.project, c.ActorID), checkContexts(&e.project, c.ContextID)); err != nil {
		return "", e.reject("add actor connection", err)
	}
	id := ensureID(&c.ID, idwrap.KindActorConnection)
	return id, e.apply(ctx, "add actor connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddActorConnectionAction(p, c)
		},
		func(m *mutation.Context) { m.AddActorConnection(c) })
}

func (e *Editor) DeleteActorConnection(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete actor connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteActorConnectionAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteActorConnection(id) })
}

func (e *Editor) AddActorNeedConnection(ctx context.Context, c mproject.ActorNeedConnection) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := firstErr(checkActor(&e.project, c.ActorID), checkUserNeed(&e.project, c.UserNeedID)); err != nil {
		return "", e.reject("add actor need connection", err)
	}
	id := ensureID(&c.ID, idwrap.KindActorNeedConnection)
	return id, e.apply(ctx, "add actor need connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddActorNeedConnectionAction(p, c)
		},
		func(m *mutation.Context) { m.AddActorNeedConnection(c) })
}

func (e *Editor) DeleteActorNeedConnection(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete actor need connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteActorNeedConnectionAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteActorNeedConnection(id) })
}

func (e *Editor) AddNeedContextConnection(ctx context.Context, c mproject.NeedContextConnection) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := firstErr(checkUserNeed(&e.project, c.UserNeedID), checkContexts(&e.project, c.ContextID)); err != nil {
		return "", e.reject("add need context connection", err)
	}
	id := ensureID(&c.ID, idwrap.KindNeedContextConnection)
	return id, e.apply(ctx, "add need context connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddNeedContextConnectionAction(p, c)
		},
		func(m *mutation.Context) { m.AddNeedContextConnection(c) })
}

func (e *Editor) DeleteNeedContextConnection(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete need context connection",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteNeedContextConnectionAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteNeedContextConnection(id) })
}

// AddFlowStage appends a stage. Names and positions must be unique.
func (e *Editor) AddFlowStage(ctx context.Context, stage mproject.FlowStage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := firstErr(checkName(stage.Name), e.project.FlowStages.CheckInsert(len(e.project.FlowStages), stage))
	if err != nil {
		return e.reject("add flow stage", err)
	}
	return e.apply(ctx, "add flow stage",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.AddFlowStageAction(p, stage)
		},
		func(m *mutation.Context) { m.AddFlowStage(stage) })
}

func (e *Editor) UpdateFlowStage(ctx context.Context, name string, pt patch.FlowStagePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkStageUpdate(&e.project, name, pt); err != nil {
		return e.reject("update flow stage", err)
	}
	return e.apply(ctx, "update flow stage",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateFlowStageAction(p, name, pt)
		},
		func(m *mutation.Context) { m.UpdateFlowStage(name, pt) })
}

func (e *Editor) DeleteFlowStage(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete flow stage",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteFlowStageAction(p, name)
		},
		func(m *mutation.Context) { m.DeleteFlowStage(name) })
}

// CreateKeyframe adds a keyframe, enabling the temporal view on a project
// that had none.
func (e *Editor) CreateKeyframe(ctx context.Context, k mproject.Keyframe) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.project.ValidateKeyframeDate(k.Date, ""); err != nil {
		return "", e.reject("create keyframe", err)
	}
	id := ensureID(&k.ID, idwrap.KindKeyframe)
	return id, e.apply(ctx, "create keyframe",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.CreateKeyframeAction(p, k)
		},
		func(m *mutation.Context) { m.AddKeyframe(k) })
}

func (e *Editor) UpdateKeyframe(ctx context.Context, id string, pt patch.KeyframePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkKeyframeUpdate(&e.project, id, pt); err != nil {
		return e.reject("update keyframe", err)
	}
	return e.apply(ctx, "update keyframe",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateKeyframeAction(p, id, pt)
		},
		func(m *mutation.Context) { m.UpdateKeyframe(id, pt) })
}

func (e *Editor) DeleteKeyframe(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "delete keyframe",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.DeleteKeyframeAction(p, id)
		},
		func(m *mutation.Context) { m.DeleteKeyframe(id) })
}

func (e *Editor) UpdateKeyframeContextPosition(ctx context.Context, keyframeID, contextID string, pos mproject.KeyframePosition) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, "move context in keyframe",
		func(p mproject.Project) (mproject.Project, history.Command, error) {
			return history.UpdateKeyframeContextPositionAction(p, keyframeID, contextID, pos)
		},
		func(m *mutation.Context) { m.UpdateKeyframeContextPosition(keyframeID, contextID, pos) })
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
