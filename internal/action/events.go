package action

import (
	"maps"
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/history"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
)

// eventsFor returns the events the mutation layer tracks for the same
// operation, without cascades, so both modes report identical telemetry.
func eventsFor(cmd history.Command) []mutation.Event {
	one := func(entity mutation.EntityType, op mutation.Operation, id string) []mutation.Event {
		return []mutation.Event{{Entity: entity, Op: op, ID: id}}
	}

	switch c := cmd.(type) {
	case history.AddContext:
		return one(mutation.EntityContext, mutation.OpInsert, c.Context.ID)
	case history.UpdateContext:
		return one(mutation.EntityContext, mutation.OpUpdate, c.After.ID)
	case history.DeleteContext:
		return one(mutation.EntityContext, mutation.OpDelete, c.Context.ID)
	case history.MoveContext:
		return one(mutation.EntityContextPosition, mutation.OpUpdate, c.ID)
	case history.MoveContextGroup:
		var out []mutation.Event
		for _, id := range slices.Sorted(maps.Keys(c.New)) {
			out = append(out, mutation.Event{Entity: mutation.EntityContextPosition, Op: mutation.OpUpdate, ID: id})
		}
		return out

	case history.AddRelationship:
		return one(mutation.EntityRelationship, mutation.OpInsert, c.Relationship.ID)
	case history.UpdateRelationship:
		return one(mutation.EntityRelationship, mutation.OpUpdate, c.After.ID)
	case history.DeleteRelationship:
		return one(mutation.EntityRelationship, mutation.OpDelete, c.Relationship.ID)

	case history.AddGroup:
		return one(mutation.EntityGroup, mutation.OpInsert, c.Group.ID)
	case history.UpdateGroup:
		return one(mutation.EntityGroup, mutation.OpUpdate, c.After.ID)
	case history.DeleteGroup:
		return one(mutation.EntityGroup, mutation.OpDelete, c.Group.ID)
	case history.AddGroupMember:
		return []mutation.Event{{Entity: mutation.EntityGroupMember, Op: mutation.OpInsert, ID: c.ContextID, ParentID: c.GroupID}}
	case history.RemoveGroupMember:
		return []mutation.Event{{Entity: mutation.EntityGroupMember, Op: mutation.OpDelete, ID: c.ContextID, ParentID: c.GroupID}}

	case history.AddActor:
		return one(mutation.EntityActor, mutation.OpInsert, c.Actor.ID)
	case history.UpdateActor:
		return one(mutation.EntityActor, mutation.OpUpdate, c.After.ID)
	case history.DeleteActor:
		return one(mutation.EntityActor, mutation.OpDelete, c.Actor.ID)
	case history.MoveActor:
		return one(mutation.EntityActor, mutation.OpUpdate, c.ID)

	case history.AddUserNeed:
		return one(mutation.EntityUserNeed, mutation.OpInsert, c.UserNeed.ID)
	case history.UpdateUserNeed:
		return one(mutation.EntityUserNeed, mutation.OpUpdate, c.After.ID)
	case history.DeleteUserNeed:
		return one(mutation.EntityUserNeed, mutation.OpDelete, c.UserNeed.ID)
	case history.MoveUserNeed:
		return one(mutation.EntityUserNeed, mutation.OpUpdate, c.ID)

	case history.AddActorConnection:
		return one(mutation.EntityActorConnection, mutation.OpInsert, c.Connection.ID)
	case history.DeleteActorConnection:
		return one(mutation.EntityActorConnection, mutation.OpDelete, c.Connection.ID)
	case history.AddActorNeedConnection:
		return one(mutation.EntityActorNeedConnection, mutation.OpInsert, c.Connection.ID)
	case history.DeleteActorNeedConnection:
		return one(mutation.EntityActorNeedConnection, mutation.OpDelete, c.Connection.ID)
	case history.AddNeedContextConnection:
		return one(mutation.EntityNeedContextConnection, mutation.OpInsert, c.Connection.ID)
	case history.DeleteNeedContextConnection:
		return one(mutation.EntityNeedContextConnection, mutation.OpDelete, c.Connection.ID)

	// Flow stage events carry the name the stage was addressed by.
	case history.AddFlowStage:
		return one(mutation.EntityFlowStage, mutation.OpInsert, c.Stage.Name)
	case history.UpdateFlowStage:
		return one(mutation.EntityFlowStage, mutation.OpUpdate, c.Before.Name)
	case history.DeleteFlowStage:
		return one(mutation.EntityFlowStage, mutation.OpDelete, c.Stage.Name)

	case history.CreateKeyframe:
		return one(mutation.EntityKeyframe, mutation.OpInsert, c.Keyframe.ID)
	case history.UpdateKeyframe:
		return one(mutation.EntityKeyframe, mutation.OpUpdate, c.After.ID)
	case history.DeleteKeyframe:
		return one(mutation.EntityKeyframe, mutation.OpDelete, c.Keyframe.ID)
	case history.MoveContextInKeyframe:
		return []mutation.Event{{Entity: mutation.EntityKeyframePosition, Op: mutation.OpUpdate, ID: c.ContextID, ParentID: c.KeyframeID}}
	}
	return nil
}
