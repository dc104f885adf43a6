package patch

import "github.com/the-dev-tools/contextmap/pkg/model/mproject"

// ContextPatch represents sparse updates to a bounded context.
// Positions are changed through their own operations.
type ContextPatch struct {
	Name                    Optional[string]                           `yaml:"name"`
	Purpose                 Optional[string]                           `yaml:"purpose"`
	StrategicClassification Optional[mproject.StrategicClassification] `yaml:"strategicClassification"`
	Ownership               Optional[mproject.Ownership]               `yaml:"ownership"`
	BoundaryIntegrity       Optional[mproject.BoundaryIntegrity]       `yaml:"boundaryIntegrity"`
	BoundaryNotes           Optional[string]                           `yaml:"boundaryNotes"`
	EvolutionStage          Optional[mproject.EvolutionStage]          `yaml:"evolutionStage"`
	CodeSize                Optional[mproject.CodeSize]                `yaml:"codeSize"`
	IsLegacy                Optional[bool]                             `yaml:"isLegacy"`
	Notes                   Optional[string]                           `yaml:"notes"`
	TeamID                  Optional[string]                           `yaml:"teamId"`
}

// HasChanges returns true if applying the patch can change a context.
// Unset on a required field is ignored by Apply and does not count.
func (p ContextPatch) HasChanges() bool {
	return p.Name.HasValue() || p.Purpose.IsSet() || p.StrategicClassification.IsSet() ||
		p.Ownership.IsSet() || p.BoundaryIntegrity.IsSet() || p.BoundaryNotes.IsSet() ||
		p.EvolutionStage.IsSet() || p.CodeSize.IsSet() || p.IsLegacy.HasValue() ||
		p.Notes.IsSet() || p.TeamID.IsSet()
}

// Apply returns c with the patch applied.
func (p ContextPatch) Apply(c mproject.BoundedContext) mproject.BoundedContext {
	p.Name.ApplyTo(&c.Name)
	p.Purpose.ApplyPtr(&c.Purpose)
	p.StrategicClassification.ApplyPtr(&c.StrategicClassification)
	p.Ownership.ApplyPtr(&c.Ownership)
	p.BoundaryIntegrity.ApplyPtr(&c.BoundaryIntegrity)
	p.BoundaryNotes.ApplyPtr(&c.BoundaryNotes)
	p.EvolutionStage.ApplyPtr(&c.EvolutionStage)
	p.CodeSize.ApplyPtr(&c.CodeSize)
	p.IsLegacy.ApplyTo(&c.IsLegacy)
	p.Notes.ApplyPtr(&c.Notes)
	p.TeamID.ApplyPtr(&c.TeamID)
	return c
}

type RelationshipPatch struct {
	Pattern       Optional[mproject.RelationshipPattern] `yaml:"pattern"`
	Communication Optional[string]                       `yaml:"communication"`
	Description   Optional[string]                       `yaml:"description"`
}

func (p RelationshipPatch) HasChanges() bool {
	return p.Pattern.HasValue() || p.Communication.IsSet() || p.Description.IsSet()
}

func (p RelationshipPatch) Apply(r mproject.Relationship) mproject.Relationship {
	p.Pattern.ApplyTo(&r.Pattern)
	p.Communication.ApplyPtr(&r.Communication)
	p.Description.ApplyPtr(&r.Description)
	return r
}

type GroupPatch struct {
	Label Optional[string] `yaml:"label"`
	Color Optional[string] `yaml:"color"`
	Notes Optional[string] `yaml:"notes"`
}

func (p GroupPatch) HasChanges() bool {
	return p.Label.HasValue() || p.Color.IsSet() || p.Notes.IsSet()
}

func (p GroupPatch) Apply(g mproject.Group) mproject.Group {
	p.Label.ApplyTo(&g.Label)
	p.Color.ApplyPtr(&g.Color)
	p.Notes.ApplyPtr(&g.Notes)
	return g
}

type ActorPatch struct {
	Name        Optional[string] `yaml:"name"`
	Description Optional[string] `yaml:"description"`
}

func (p ActorPatch) HasChanges() bool {
	return p.Name.HasValue() || p.Description.IsSet()
}

func (p ActorPatch) Apply(a mproject.Actor) mproject.Actor {
	p.Name.ApplyTo(&a.Name)
	p.Description.ApplyPtr(&a.Description)
	return a
}

type UserNeedPatch struct {
	Name        Optional[string] `yaml:"name"`
	Description Optional[string] `yaml:"description"`
	Visible     Optional[bool]   `yaml:"visible"`
}

func (p UserNeedPatch) HasChanges() bool {
	return p.Name.HasValue() || p.Description.IsSet() || p.Visible.HasValue()
}

func (p UserNeedPatch) Apply(n mproject.UserNeed) mproject.UserNeed {
	p.Name.ApplyTo(&n.Name)
	p.Description.ApplyPtr(&n.Description)
	p.Visible.ApplyTo(&n.Visible)
	return n
}

type FlowStagePatch struct {
	Name        Optional[string]  `yaml:"name"`
	Position    Optional[float64] `yaml:"position"`
	Description Optional[string]  `yaml:"description"`
}

func (p FlowStagePatch) HasChanges() bool {
	return p.Name.HasValue() || p.Position.HasValue() || p.Description.IsSet()
}

func (p FlowStagePatch) Apply(s mproject.FlowStage) mproject.FlowStage {
	p.Name.ApplyTo(&s.Name)
	p.Position.ApplyTo(&s.Position)
	p.Description.ApplyPtr(&s.Description)
	return s
}

// KeyframePatch changes keyframe metadata. Per-context positions have their
// own operation.
type KeyframePatch struct {
	Date             Optional[string]   `yaml:"date"`
	Label            Optional[string]   `yaml:"label"`
	ActiveContextIDs Optional[[]string] `yaml:"activeContextIds"`
}

func (p KeyframePatch) HasChanges() bool {
	return p.Date.HasValue() || p.Label.IsSet() || p.ActiveContextIDs.HasValue()
}

func (p KeyframePatch) Apply(k mproject.Keyframe) mproject.Keyframe {
	p.Date.ApplyTo(&k.Date)
	p.Label.ApplyPtr(&k.Label)
	if p.ActiveContextIDs.HasValue() {
		k.ActiveContextIDs = append([]string{}, *p.ActiveContextIDs.Value()...)
	}
	return k
}
