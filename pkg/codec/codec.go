// Package codec maps a project onto a shared document and back.
//
// Each ID-keyed collection is a root map from entity id to a field map, so
// concurrent edits to different fields of one entity merge. Flow stages are a
// root array of stage maps. Optional fields absent from the project are
// written as shareddoc.Unset.
package codec

import (
	"maps"
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Root container names.
const (
	RootProject                = "project"
	RootContexts               = "contexts"
	RootRelationships          = "relationships"
	RootGroups                 = "groups"
	RootActors                 = "actors"
	RootUserNeeds              = "userNeeds"
	RootActorConnections       = "actorConnections"
	RootActorNeedConnections   = "actorNeedConnections"
	RootNeedContextConnections = "needContextConnections"
	RootKeyframes              = "keyframes"
	RootTemporal               = "temporal"
	RootFlowStages             = "flowStages"
)

// OriginInit tags the transaction that fills a new document. Undo managers
// never track it, so the initial state cannot be undone.
const OriginInit = "codec-init"

// Encode returns a new document holding p.
func Encode(p mproject.Project, opts ...shareddoc.Option) *shareddoc.Doc {
	doc := shareddoc.New(opts...)
	doc.Transact(OriginInit, func(tx *shareddoc.Txn) {
		Populate(tx, p)
	})
	return doc
}

// Populate writes every field of p into the document of tx.
func Populate(tx *shareddoc.Txn, p mproject.Project) {
	doc := tx.Doc()

	project := doc.GetMap(RootProject)
	project.Set(tx, KeyID, p.ID)
	project.Set(tx, KeyName, p.Name)

	for _, c := range p.Contexts {
		WriteContext(tx, doc.GetMap(RootContexts).SetMap(tx, c.ID), c)
	}
	for _, r := range p.Relationships {
		WriteRelationship(tx, doc.GetMap(RootRelationships).SetMap(tx, r.ID), r)
	}
	for _, g := range p.Groups {
		WriteGroup(tx, doc.GetMap(RootGroups).SetMap(tx, g.ID), g)
	}
	for _, a := range p.Actors {
		WriteActor(tx, doc.GetMap(RootActors).SetMap(tx, a.ID), a)
	}
	for _, n := range p.UserNeeds {
		WriteUserNeed(tx, doc.GetMap(RootUserNeeds).SetMap(tx, n.ID), n)
	}
	for _, c := range p.ActorConnections {
		WriteActorConnection(tx, doc.GetMap(RootActorConnections).SetMap(tx, c.ID), c)
	}
	for _, c := range p.ActorNeedConnections {
		WriteActorNeedConnection(tx, doc.GetMap(RootActorNeedConnections).SetMap(tx, c.ID), c)
	}
	for _, c := range p.NeedContextConnections {
		WriteNeedContextConnection(tx, doc.GetMap(RootNeedContextConnections).SetMap(tx, c.ID), c)
	}
	stages := doc.GetArray(RootFlowStages)
	for _, s := range p.FlowStages {
		WriteFlowStage(tx, stages.PushMap(tx), s)
	}
	if p.Temporal != nil {
		doc.GetMap(RootTemporal).Set(tx, KeyEnabled, p.Temporal.Enabled)
		for _, k := range p.Temporal.Keyframes {
			WriteKeyframe(tx, doc.GetMap(RootKeyframes).SetMap(tx, k.ID), k)
		}
	}
}

// Decode reads the project held by doc. It never fails: missing collections
// decode empty, fields of an unexpected type read as zero values and entity
// maps without an id are skipped, since a document may be observed while
// replication is still catching up.
func Decode(doc *shareddoc.Doc) mproject.Project {
	project := doc.GetMap(RootProject)
	p := mproject.Project{
		ID:   str(project, KeyID),
		Name: str(project, KeyName),
	}

	p.Contexts = readAll(doc.GetMap(RootContexts), ReadContext)
	p.Relationships = readAll(doc.GetMap(RootRelationships), ReadRelationship)
	p.Groups = readAll(doc.GetMap(RootGroups), ReadGroup)
	p.Actors = readAll(doc.GetMap(RootActors), ReadActor)
	p.UserNeeds = readAll(doc.GetMap(RootUserNeeds), ReadUserNeed)
	p.ActorConnections = readAll(doc.GetMap(RootActorConnections), ReadActorConnection)
	p.ActorNeedConnections = readAll(doc.GetMap(RootActorNeedConnections), ReadActorNeedConnection)
	p.NeedContextConnections = readAll(doc.GetMap(RootNeedContextConnections), ReadNeedContextConnection)

	stages := doc.GetArray(RootFlowStages)
	for _, v := range stages.Values() {
		m, ok := v.(*shareddoc.Map)
		if !ok {
			continue
		}
		if s, ok := ReadFlowStage(m); ok {
			p.FlowStages = append(p.FlowStages, s)
		}
	}

	temporal := doc.GetMap(RootTemporal)
	if temporal.Has(KeyEnabled) {
		p.Temporal = &mproject.Temporal{
			Enabled:   boolean(temporal, KeyEnabled),
			Keyframes: readAll(doc.GetMap(RootKeyframes), ReadKeyframe),
		}
	}

	p.Normalize()
	return p
}

func readAll[T any](c *shareddoc.Map, read func(*shareddoc.Map) (T, bool)) []T {
	var out []T
	for _, m := range entries(c) {
		if v, ok := read(m); ok {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
