//nolint:revive // exported
package mproject

type StrategicClassification string

const (
	ClassificationCore       StrategicClassification = "core"
	ClassificationSupporting StrategicClassification = "supporting"
	ClassificationGeneric    StrategicClassification = "generic"
)

type Ownership string

const (
	OwnershipProject  Ownership = "project"
	OwnershipTeam     Ownership = "team"
	OwnershipExternal Ownership = "external"
)

type BoundaryIntegrity string

const (
	BoundaryStrong   BoundaryIntegrity = "strong"
	BoundaryModerate BoundaryIntegrity = "moderate"
	BoundaryWeak     BoundaryIntegrity = "weak"
)

type EvolutionStage string

const (
	EvolutionGenesis     EvolutionStage = "genesis"
	EvolutionCustomBuilt EvolutionStage = "custom-built"
	EvolutionProduct     EvolutionStage = "product"
	EvolutionCommodity   EvolutionStage = "commodity"
)

type CodeSize string

const (
	CodeSizeTiny   CodeSize = "tiny"
	CodeSizeSmall  CodeSize = "small"
	CodeSizeMedium CodeSize = "medium"
	CodeSizeLarge  CodeSize = "large"
	CodeSizeHuge   CodeSize = "huge"
)

type RelationshipPattern string

const (
	PatternCustomerSupplier    RelationshipPattern = "customer-supplier"
	PatternConformist          RelationshipPattern = "conformist"
	PatternAntiCorruptionLayer RelationshipPattern = "anti-corruption-layer"
	PatternOpenHostService     RelationshipPattern = "open-host-service"
	PatternPublishedLanguage   RelationshipPattern = "published-language"
	PatternSharedKernel        RelationshipPattern = "shared-kernel"
	PatternPartnership         RelationshipPattern = "partnership"
	PatternSeparateWays        RelationshipPattern = "separate-ways"
)

// Positions holds the coordinates of a context in each view.
// Values are percentages of the canvas (0-100).
type Positions struct {
	FlowX         float64 `json:"flowX" yaml:"flowX"`
	StrategicX    float64 `json:"strategicX" yaml:"strategicX"`
	DistillationX float64 `json:"distillationX" yaml:"distillationX"`
	DistillationY float64 `json:"distillationY" yaml:"distillationY"`
	SharedY       float64 `json:"sharedY" yaml:"sharedY"`
}

type BoundedContext struct {
	ID                      string                   `json:"id" yaml:"id"`
	Name                    string                   `json:"name" yaml:"name"`
	Purpose                 *string                  `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	StrategicClassification *StrategicClassification `json:"strategicClassification,omitempty" yaml:"strategicClassification,omitempty"`
	Ownership               *Ownership               `json:"ownership,omitempty" yaml:"ownership,omitempty"`
	BoundaryIntegrity       *BoundaryIntegrity       `json:"boundaryIntegrity,omitempty" yaml:"boundaryIntegrity,omitempty"`
	BoundaryNotes           *string                  `json:"boundaryNotes,omitempty" yaml:"boundaryNotes,omitempty"`
	EvolutionStage          *EvolutionStage          `json:"evolutionStage,omitempty" yaml:"evolutionStage,omitempty"`
	CodeSize                *CodeSize                `json:"codeSize,omitempty" yaml:"codeSize,omitempty"`
	IsLegacy                bool                     `json:"isLegacy" yaml:"isLegacy"`
	Notes                   *string                  `json:"notes,omitempty" yaml:"notes,omitempty"`
	TeamID                  *string                  `json:"teamId,omitempty" yaml:"teamId,omitempty"`
	Positions               Positions                `json:"positions" yaml:"positions"`
}

type Relationship struct {
	ID            string              `json:"id" yaml:"id"`
	FromContextID string              `json:"fromContextId" yaml:"fromContextId"`
	ToContextID   string              `json:"toContextId" yaml:"toContextId"`
	Pattern       RelationshipPattern `json:"pattern" yaml:"pattern"`
	Communication *string             `json:"communication,omitempty" yaml:"communication,omitempty"`
	Description   *string             `json:"description,omitempty" yaml:"description,omitempty"`
}

type Group struct {
	ID         string   `json:"id" yaml:"id"`
	Label      string   `json:"label" yaml:"label"`
	Color      *string  `json:"color,omitempty" yaml:"color,omitempty"`
	ContextIDs []string `json:"contextIds" yaml:"contextIds"`
	Notes      *string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type Actor struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Position    float64 `json:"position" yaml:"position"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

type UserNeed struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Position    float64 `json:"position" yaml:"position"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Visible     bool    `json:"visible" yaml:"visible"`
}

// ActorConnection links an actor to a context it uses directly.
type ActorConnection struct {
	ID        string  `json:"id" yaml:"id"`
	ActorID   string  `json:"actorId" yaml:"actorId"`
	ContextID string  `json:"contextId" yaml:"contextId"`
	Notes     *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type ActorNeedConnection struct {
	ID         string  `json:"id" yaml:"id"`
	ActorID    string  `json:"actorId" yaml:"actorId"`
	UserNeedID string  `json:"userNeedId" yaml:"userNeedId"`
	Notes      *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type NeedContextConnection struct {
	ID         string  `json:"id" yaml:"id"`
	UserNeedID string  `json:"userNeedId" yaml:"userNeedId"`
	ContextID  string  `json:"contextId" yaml:"contextId"`
	Notes      *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type FlowStage struct {
	Name        string  `json:"name" yaml:"name"`
	Position    float64 `json:"position" yaml:"position"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

type KeyframePosition struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Keyframe struct {
	ID               string                      `json:"id" yaml:"id"`
	Date             string                      `json:"date" yaml:"date"`
	Label            *string                     `json:"label,omitempty" yaml:"label,omitempty"`
	Positions        map[string]KeyframePosition `json:"positions" yaml:"positions"`
	ActiveContextIDs []string                    `json:"activeContextIds" yaml:"activeContextIds"`
}

type Temporal struct {
	Enabled   bool       `json:"enabled" yaml:"enabled"`
	Keyframes []Keyframe `json:"keyframes" yaml:"keyframes"`
}

// Project is the root aggregate edited by users.
//
// All collections are kept in canonical order (see Normalize), so two
// projects holding the same entities compare equal field by field.
type Project struct {
	ID                     string                  `json:"id" yaml:"id"`
	Name                   string                  `json:"name" yaml:"name"`
	Contexts               []BoundedContext        `json:"contexts" yaml:"contexts"`
	Relationships          []Relationship          `json:"relationships" yaml:"relationships"`
	Groups                 []Group                 `json:"groups" yaml:"groups"`
	Actors                 []Actor                 `json:"actors" yaml:"actors"`
	UserNeeds              []UserNeed              `json:"userNeeds" yaml:"userNeeds"`
	ActorConnections       []ActorConnection       `json:"actorConnections" yaml:"actorConnections"`
	ActorNeedConnections   []ActorNeedConnection   `json:"actorNeedConnections" yaml:"actorNeedConnections"`
	NeedContextConnections []NeedContextConnection `json:"needContextConnections" yaml:"needContextConnections"`
	FlowStages             FlowStages              `json:"flowStages" yaml:"flowStages"`
	Temporal               *Temporal               `json:"temporal,omitempty" yaml:"temporal,omitempty"`
}

// New returns an empty project with every collection allocated.
func New(id, name string) Project {
	p := Project{ID: id, Name: name}
	p.Normalize()
	return p
}
