package mproject

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of p.
//
// Optional fields are pointers to values that are never written through,
// so they are shared between the copies.
func (p Project) Clone() Project {
	out := p
	out.Contexts = slices.Clone(p.Contexts)
	out.Relationships = slices.Clone(p.Relationships)
	out.Groups = make([]Group, len(p.Groups))
	for i, g := range p.Groups {
		out.Groups[i] = g.Clone()
	}
	if p.Groups == nil {
		out.Groups = nil
	}
	out.Actors = slices.Clone(p.Actors)
	out.UserNeeds = slices.Clone(p.UserNeeds)
	out.ActorConnections = slices.Clone(p.ActorConnections)
	out.ActorNeedConnections = slices.Clone(p.ActorNeedConnections)
	out.NeedContextConnections = slices.Clone(p.NeedContextConnections)
	out.FlowStages = slices.Clone(p.FlowStages)
	if p.Temporal != nil {
		t := *p.Temporal
		t.Keyframes = make([]Keyframe, len(p.Temporal.Keyframes))
		for i, kf := range p.Temporal.Keyframes {
			t.Keyframes[i] = kf.Clone()
		}
		if p.Temporal.Keyframes == nil {
			t.Keyframes = nil
		}
		out.Temporal = &t
	}
	return out
}

func (g Group) Clone() Group {
	g.ContextIDs = slices.Clone(g.ContextIDs)
	return g
}

func (k Keyframe) Clone() Keyframe {
	k.Positions = maps.Clone(k.Positions)
	k.ActiveContextIDs = slices.Clone(k.ActiveContextIDs)
	return k
}
