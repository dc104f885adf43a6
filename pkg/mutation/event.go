package mutation

import "github.com/the-dev-tools/contextmap/pkg/shareddoc"

// EntityType identifies the type of entity being mutated.
type EntityType uint16

const (
	EntityProject EntityType = iota
	EntityContext
	EntityContextPosition
	EntityRelationship
	EntityGroup
	EntityGroupMember
	EntityActor
	EntityUserNeed
	EntityActorConnection
	EntityActorNeedConnection
	EntityNeedContextConnection
	EntityFlowStage
	EntityKeyframe
	EntityKeyframePosition
)

var entityNames = [...]string{
	EntityProject:               "project",
	EntityContext:               "context",
	EntityContextPosition:       "context_position",
	EntityRelationship:          "relationship",
	EntityGroup:                 "group",
	EntityGroupMember:           "group_member",
	EntityActor:                 "actor",
	EntityUserNeed:              "user_need",
	EntityActorConnection:       "actor_connection",
	EntityActorNeedConnection:   "actor_need_connection",
	EntityNeedContextConnection: "need_context_connection",
	EntityFlowStage:             "flow_stage",
	EntityKeyframe:              "keyframe",
	EntityKeyframePosition:      "keyframe_position",
}

func (e EntityType) String() string {
	if int(e) < len(entityNames) {
		return entityNames[e]
	}
	return "unknown"
}

// Operation identifies the type of mutation.
type Operation uint8

const (
	OpInsert Operation = iota
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event represents a single mutation event.
// Events are collected during a transaction and attached to it, so whoever
// observes the transaction learns what it did without diffing snapshots.
type Event struct {
	Entity EntityType
	Op     Operation
	ID     string
	// ParentID is the owning entity for members and positions, e.g. the
	// group of a membership or the keyframe of a keyframe position.
	ParentID string
	// Cascade is true for events caused by deleting another entity.
	Cascade bool
}

// Name returns the event name used for telemetry, e.g. "context.insert".
func (e Event) Name() string {
	return e.Entity.String() + "." + e.Op.String()
}

const metaEvents = "mutation.events"

func track(tx *shareddoc.Txn, evt Event) {
	events, _ := tx.Meta(metaEvents).([]Event)
	tx.SetMeta(metaEvents, append(events, evt))
}

// EventsOf returns the events recorded in tx by the mutation layer. Remote
// transactions carry none.
func EventsOf(tx *shareddoc.Txn) []Event {
	events, _ := tx.Meta(metaEvents).([]Event)
	return events
}
