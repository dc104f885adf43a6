package mproject

import (
	"cmp"
	"slices"
)

// Normalize puts the project in canonical form: nil collections become
// empty, ID-keyed collections are sorted by id and keyframes by date then id.
// Flow stages and group membership keep their order.
func (p *Project) Normalize() {
	p.Contexts = sortByID(nonNil(p.Contexts), ContextID)
	p.Relationships = sortByID(nonNil(p.Relationships), RelationshipID)
	p.Groups = sortByID(nonNil(p.Groups), GroupID)
	for i := range p.Groups {
		p.Groups[i].ContextIDs = nonNil(p.Groups[i].ContextIDs)
	}
	p.Actors = sortByID(nonNil(p.Actors), ActorID)
	p.UserNeeds = sortByID(nonNil(p.UserNeeds), UserNeedID)
	p.ActorConnections = sortByID(nonNil(p.ActorConnections), ActorConnectionID)
	p.ActorNeedConnections = sortByID(nonNil(p.ActorNeedConnections), ActorNeedConnectionID)
	p.NeedContextConnections = sortByID(nonNil(p.NeedContextConnections), NeedContextConnectionID)
	p.FlowStages = nonNil(p.FlowStages)
	if p.Temporal != nil {
		p.Temporal.Keyframes = nonNil(p.Temporal.Keyframes)
		for i := range p.Temporal.Keyframes {
			kf := &p.Temporal.Keyframes[i]
			if kf.Positions == nil {
				kf.Positions = map[string]KeyframePosition{}
			}
			kf.ActiveContextIDs = nonNil(kf.ActiveContextIDs)
		}
		SortKeyframes(p.Temporal.Keyframes)
	}
}

// SortKeyframes orders keyframes by date, then id.
func SortKeyframes(kfs []Keyframe) {
	slices.SortStableFunc(kfs, func(a, b Keyframe) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

func sortByID[T any](items []T, id func(T) string) []T {
	slices.SortStableFunc(items, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return items
}

// InsertByID inserts item keeping items sorted by id. An item with the same
// id is replaced.
func InsertByID[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	i, found := slices.BinarySearchFunc(items, key, func(e T, k string) int { return cmp.Compare(id(e), k) })
	if found {
		items[i] = item
		return items
	}
	return slices.Insert(items, i, item)
}

// IndexByID returns the index of the item with the given id, or -1.
func IndexByID[T any](items []T, key string, id func(T) string) int {
	return slices.IndexFunc(items, func(e T) bool { return id(e) == key })
}

// RemoveByID removes the item with the given id and reports whether it existed.
func RemoveByID[T any](items []T, key string, id func(T) string) ([]T, bool) {
	i := IndexByID(items, key, id)
	if i < 0 {
		return items, false
	}
	return slices.Delete(items, i, i+1), true
}

func ContextID(c BoundedContext) string { return c.ID }
func RelationshipID(r Relationship) string { return r.ID }
func GroupID(g Group) string { return g.ID }
func ActorID(a Actor) string { return a.ID }
func UserNeedID(n UserNeed) string { return n.ID }
func ActorConnectionID(c ActorConnection) string { return c.ID }
func ActorNeedConnectionID(c ActorNeedConnection) string { return c.ID }
func NeedContextConnectionID(c NeedContextConnection) string { return c.ID }
func KeyframeID(k Keyframe) string { return k.ID }

// Context returns the context with id.
func (p *Project) Context(id string) (*BoundedContext, bool) {
	i := IndexByID(p.Contexts, id, ContextID)
	if i < 0 {
		return nil, false
	}
	return &p.Contexts[i], true
}

func (p *Project) Relationship(id string) (*Relationship, bool) {
	i := IndexByID(p.Relationships, id, RelationshipID)
	if i < 0 {
		return nil, false
	}
	return &p.Relationships[i], true
}

func (p *Project) Group(id string) (*Group, bool) {
	i := IndexByID(p.Groups, id, GroupID)
	if i < 0 {
		return nil, false
	}
	return &p.Groups[i], true
}

func (p *Project) Actor(id string) (*Actor, bool) {
	i := IndexByID(p.Actors, id, ActorID)
	if i < 0 {
		return nil, false
	}
	return &p.Actors[i], true
}

func (p *Project) UserNeed(id string) (*UserNeed, bool) {
	i := IndexByID(p.UserNeeds, id, UserNeedID)
	if i < 0 {
		return nil, false
	}
	return &p.UserNeeds[i], true
}

// Keyframe returns the keyframe with id. Projects without a temporal block
// have no keyframes.
func (p *Project) Keyframe(id string) (*Keyframe, bool) {
	if p.Temporal == nil {
		return nil, false
	}
	i := IndexByID(p.Temporal.Keyframes, id, KeyframeID)
	if i < 0 {
		return nil, false
	}
	return &p.Temporal.Keyframes[i], true
}
