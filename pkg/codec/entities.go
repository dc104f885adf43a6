package codec

import (
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Field names inside entity maps.
const (
	KeyID                      = "id"
	KeyName                    = "name"
	KeyPurpose                 = "purpose"
	KeyStrategicClassification = "strategicClassification"
	KeyOwnership               = "ownership"
	KeyBoundaryIntegrity       = "boundaryIntegrity"
	KeyBoundaryNotes           = "boundaryNotes"
	KeyEvolutionStage          = "evolutionStage"
	KeyCodeSize                = "codeSize"
	KeyIsLegacy                = "isLegacy"
	KeyNotes                   = "notes"
	KeyTeamID                  = "teamId"
	KeyPositions               = "positions"
	KeyFromContextID           = "fromContextId"
	KeyToContextID             = "toContextId"
	KeyPattern                 = "pattern"
	KeyCommunication           = "communication"
	KeyDescription             = "description"
	KeyLabel                   = "label"
	KeyColor                   = "color"
	KeyContextIDs              = "contextIds"
	KeyPosition                = "position"
	KeyVisible                 = "visible"
	KeyActorID                 = "actorId"
	KeyContextID               = "contextId"
	KeyUserNeedID              = "userNeedId"
	KeyDate                    = "date"
	KeyActiveContextIDs        = "activeContextIds"
	KeyEnabled                 = "enabled"
	KeyX                       = "x"
	KeyY                       = "y"
)

// Keys of the context positions map.
const (
	KeyFlowX         = "flowX"
	KeyStrategicX    = "strategicX"
	KeyDistillationX = "distillationX"
	KeyDistillationY = "distillationY"
	KeySharedY       = "sharedY"
)

func WriteContext(tx *shareddoc.Txn, m *shareddoc.Map, c mproject.BoundedContext) {
	m.Set(tx, KeyID, c.ID)
	m.Set(tx, KeyName, c.Name)
	SetOptional(tx, m, KeyPurpose, c.Purpose)
	SetOptional(tx, m, KeyStrategicClassification, c.StrategicClassification)
	SetOptional(tx, m, KeyOwnership, c.Ownership)
	SetOptional(tx, m, KeyBoundaryIntegrity, c.BoundaryIntegrity)
	SetOptional(tx, m, KeyBoundaryNotes, c.BoundaryNotes)
	SetOptional(tx, m, KeyEvolutionStage, c.EvolutionStage)
	SetOptional(tx, m, KeyCodeSize, c.CodeSize)
	m.Set(tx, KeyIsLegacy, c.IsLegacy)
	SetOptional(tx, m, KeyNotes, c.Notes)
	SetOptional(tx, m, KeyTeamID, c.TeamID)
	WritePositions(tx, m.SetMap(tx, KeyPositions), c.Positions)
}

func WritePositions(tx *shareddoc.Txn, m *shareddoc.Map, p mproject.Positions) {
	m.Set(tx, KeyFlowX, p.FlowX)
	m.Set(tx, KeyStrategicX, p.StrategicX)
	m.Set(tx, KeyDistillationX, p.DistillationX)
	m.Set(tx, KeyDistillationY, p.DistillationY)
	m.Set(tx, KeySharedY, p.SharedY)
}

// UpdatePositions writes only the coordinates that differ from what m
// holds, so moving a context in one view leaves a concurrent move in another
// view intact. It reports whether anything was written.
func UpdatePositions(tx *shareddoc.Txn, m *shareddoc.Map, p mproject.Positions) bool {
	changed := setNumber(tx, m, KeyFlowX, p.FlowX)
	changed = setNumber(tx, m, KeyStrategicX, p.StrategicX) || changed
	changed = setNumber(tx, m, KeyDistillationX, p.DistillationX) || changed
	changed = setNumber(tx, m, KeyDistillationY, p.DistillationY) || changed
	return setNumber(tx, m, KeySharedY, p.SharedY) || changed
}

func ReadContext(m *shareddoc.Map) (mproject.BoundedContext, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.BoundedContext{}, false
	}
	c := mproject.BoundedContext{
		ID:                      id,
		Name:                    str(m, KeyName),
		Purpose:                 Optional[string](m, KeyPurpose),
		StrategicClassification: Optional[mproject.StrategicClassification](m, KeyStrategicClassification),
		Ownership:               Optional[mproject.Ownership](m, KeyOwnership),
		BoundaryIntegrity:       Optional[mproject.BoundaryIntegrity](m, KeyBoundaryIntegrity),
		BoundaryNotes:           Optional[string](m, KeyBoundaryNotes),
		EvolutionStage:          Optional[mproject.EvolutionStage](m, KeyEvolutionStage),
		CodeSize:                Optional[mproject.CodeSize](m, KeyCodeSize),
		IsLegacy:                boolean(m, KeyIsLegacy),
		Notes:                   Optional[string](m, KeyNotes),
		TeamID:                  Optional[string](m, KeyTeamID),
	}
	if pos, ok := m.Map(KeyPositions); ok {
		c.Positions = mproject.Positions{
			FlowX:         num(pos, KeyFlowX),
			StrategicX:    num(pos, KeyStrategicX),
			DistillationX: num(pos, KeyDistillationX),
			DistillationY: num(pos, KeyDistillationY),
			SharedY:       num(pos, KeySharedY),
		}
	}
	return c, true
}

func WriteRelationship(tx *shareddoc.Txn, m *shareddoc.Map, r mproject.Relationship) {
	m.Set(tx, KeyID, r.ID)
	m.Set(tx, KeyFromContextID, r.FromContextID)
	m.Set(tx, KeyToContextID, r.ToContextID)
	m.Set(tx, KeyPattern, string(r.Pattern))
	SetOptional(tx, m, KeyCommunication, r.Communication)
	SetOptional(tx, m, KeyDescription, r.Description)
}

func ReadRelationship(m *shareddoc.Map) (mproject.Relationship, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.Relationship{}, false
	}
	return mproject.Relationship{
		ID:            id,
		FromContextID: str(m, KeyFromContextID),
		ToContextID:   str(m, KeyToContextID),
		Pattern:       mproject.RelationshipPattern(str(m, KeyPattern)),
		Communication: Optional[string](m, KeyCommunication),
		Description:   Optional[string](m, KeyDescription),
	}, true
}

func WriteGroup(tx *shareddoc.Txn, m *shareddoc.Map, g mproject.Group) {
	m.Set(tx, KeyID, g.ID)
	m.Set(tx, KeyLabel, g.Label)
	SetOptional(tx, m, KeyColor, g.Color)
	SetStrings(tx, m.SetArray(tx, KeyContextIDs), g.ContextIDs)
	SetOptional(tx, m, KeyNotes, g.Notes)
}

func ReadGroup(m *shareddoc.Map) (mproject.Group, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.Group{}, false
	}
	return mproject.Group{
		ID:         id,
		Label:      str(m, KeyLabel),
		Color:      Optional[string](m, KeyColor),
		ContextIDs: stringList(m, KeyContextIDs),
		Notes:      Optional[string](m, KeyNotes),
	}, true
}

func WriteActor(tx *shareddoc.Txn, m *shareddoc.Map, a mproject.Actor) {
	m.Set(tx, KeyID, a.ID)
	m.Set(tx, KeyName, a.Name)
	m.Set(tx, KeyPosition, a.Position)
	SetOptional(tx, m, KeyDescription, a.Description)
}

func ReadActor(m *shareddoc.Map) (mproject.Actor, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.Actor{}, false
	}
	return mproject.Actor{
		ID:          id,
		Name:        str(m, KeyName),
		Position:    num(m, KeyPosition),
		Description: Optional[string](m, KeyDescription),
	}, true
}

func WriteUserNeed(tx *shareddoc.Txn, m *shareddoc.Map, n mproject.UserNeed) {
	m.Set(tx, KeyID, n.ID)
	m.Set(tx, KeyName, n.Name)
	m.Set(tx, KeyPosition, n.Position)
	SetOptional(tx, m, KeyDescription, n.Description)
	m.Set(tx, KeyVisible, n.Visible)
}

func ReadUserNeed(m *shareddoc.Map) (mproject.UserNeed, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.UserNeed{}, false
	}
	return mproject.UserNeed{
		ID:          id,
		Name:        str(m, KeyName),
		Position:    num(m, KeyPosition),
		Description: Optional[string](m, KeyDescription),
		Visible:     boolean(m, KeyVisible),
	}, true
}

func WriteActorConnection(tx *shareddoc.Txn, m *shareddoc.Map, c mproject.ActorConnection) {
	m.Set(tx, KeyID, c.ID)
	m.Set(tx, KeyActorID, c.ActorID)
	m.Set(tx, KeyContextID, c.ContextID)
	SetOptional(tx, m, KeyNotes, c.Notes)
}

func ReadActorConnection(m *shareddoc.Map) (mproject.ActorConnection, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.ActorConnection{}, false
	}
	return mproject.ActorConnection{
		ID:        id,
		ActorID:   str(m, KeyActorID),
		ContextID: str(m, KeyContextID),
		Notes:     Optional[string](m, KeyNotes),
	}, true
}

func WriteActorNeedConnection(tx *shareddoc.Txn, m *shareddoc.Map, c mproject.ActorNeedConnection) {
	m.Set(tx, KeyID, c.ID)
	m.Set(tx, KeyActorID, c.ActorID)
	m.Set(tx, KeyUserNeedID, c.UserNeedID)
	SetOptional(tx, m, KeyNotes, c.Notes)
}

func ReadActorNeedConnection(m *shareddoc.Map) (mproject.ActorNeedConnection, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.ActorNeedConnection{}, false
	}
	return mproject.ActorNeedConnection{
		ID:         id,
		ActorID:    str(m, KeyActorID),
		UserNeedID: str(m, KeyUserNeedID),
		Notes:      Optional[string](m, KeyNotes),
	}, true
}

func WriteNeedContextConnection(tx *shareddoc.Txn, m *shareddoc.Map, c mproject.NeedContextConnection) {
	m.Set(tx, KeyID, c.ID)
	m.Set(tx, KeyUserNeedID, c.UserNeedID)
	m.Set(tx, KeyContextID, c.ContextID)
	SetOptional(tx, m, KeyNotes, c.Notes)
}

func ReadNeedContextConnection(m *shareddoc.Map) (mproject.NeedContextConnection, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.NeedContextConnection{}, false
	}
	return mproject.NeedContextConnection{
		ID:         id,
		UserNeedID: str(m, KeyUserNeedID),
		ContextID:  str(m, KeyContextID),
		Notes:      Optional[string](m, KeyNotes),
	}, true
}

func WriteFlowStage(tx *shareddoc.Txn, m *shareddoc.Map, s mproject.FlowStage) {
	m.Set(tx, KeyName, s.Name)
	m.Set(tx, KeyPosition, s.Position)
	SetOptional(tx, m, KeyDescription, s.Description)
}

// ReadFlowStage reads a stage map. Stages have no id; a map without a name
// is skipped.
func ReadFlowStage(m *shareddoc.Map) (mproject.FlowStage, bool) {
	name, ok := m.String(KeyName)
	if !ok {
		return mproject.FlowStage{}, false
	}
	return mproject.FlowStage{
		Name:        name,
		Position:    num(m, KeyPosition),
		Description: Optional[string](m, KeyDescription),
	}, true
}

func WriteKeyframe(tx *shareddoc.Txn, m *shareddoc.Map, k mproject.Keyframe) {
	m.Set(tx, KeyID, k.ID)
	m.Set(tx, KeyDate, k.Date)
	SetOptional(tx, m, KeyLabel, k.Label)
	positions := m.SetMap(tx, KeyPositions)
	for _, ctxID := range sortedKeys(k.Positions) {
		WriteKeyframePosition(tx, positions.SetMap(tx, ctxID), k.Positions[ctxID])
	}
	SetStrings(tx, m.SetArray(tx, KeyActiveContextIDs), k.ActiveContextIDs)
}

func WriteKeyframePosition(tx *shareddoc.Txn, m *shareddoc.Map, p mproject.KeyframePosition) {
	m.Set(tx, KeyX, p.X)
	m.Set(tx, KeyY, p.Y)
}

// UpdateKeyframePosition is the keyframe counterpart of UpdatePositions.
func UpdateKeyframePosition(tx *shareddoc.Txn, m *shareddoc.Map, p mproject.KeyframePosition) bool {
	changed := setNumber(tx, m, KeyX, p.X)
	return setNumber(tx, m, KeyY, p.Y) || changed
}

func ReadKeyframe(m *shareddoc.Map) (mproject.Keyframe, bool) {
	id, ok := m.String(KeyID)
	if !ok {
		return mproject.Keyframe{}, false
	}
	k := mproject.Keyframe{
		ID:               id,
		Date:             str(m, KeyDate),
		Label:            Optional[string](m, KeyLabel),
		Positions:        map[string]mproject.KeyframePosition{},
		ActiveContextIDs: stringList(m, KeyActiveContextIDs),
	}
	if positions, ok := m.Map(KeyPositions); ok {
		for _, ctxID := range positions.Keys() {
			pos, ok := positions.Map(ctxID)
			if !ok {
				continue
			}
			k.Positions[ctxID] = mproject.KeyframePosition{X: num(pos, KeyX), Y: num(pos, KeyY)}
		}
	}
	return k, true
}
