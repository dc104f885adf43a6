// Package script reads YAML edit scripts and replays them through an
// action.Editor.
//
// A script is a list of steps:
//
//	steps:
//	  - op: add-context
//	    value: {id: ctx-1, name: Orders}
//	  - op: update-context
//	    id: ctx-1
//	    value: {purpose: "Take orders", notes: null}
//	  - op: add-group-member
//	    parent: grp-1
//	    id: ctx-1
//	  - op: undo
//
// id names the target entity (a flow stage by name), parent names the owning
// group or keyframe, value holds the entity, patch or position. In patches an
// explicit null clears the field.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/the-dev-tools/contextmap/internal/action"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
)

var (
	ErrUnknownOp = errors.New("script: unknown op")
	ErrNoSteps   = errors.New("script: no steps")
)

type Script struct {
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Op     string    `yaml:"op"`
	ID     string    `yaml:"id"`
	Parent string    `yaml:"parent"`
	Value  yaml.Node `yaml:"value"`
	// Line is the line of the step in the source document.
	Line int `yaml:"-"`
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line = node.Line
	return nil
}

func (s Step) decode(v any) error {
	if s.Value.IsZero() {
		return nil
	}
	if err := s.Value.Decode(v); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	return nil
}

// Ops returns the supported op names, sorted.
func Ops() []string {
	return slices.Sorted(maps.Keys(handlers))
}

// Parse decodes a script and checks every op name.
func Parse(r io.Reader) (Script, error) {
	var sc Script
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, ErrNoSteps
		}
		return Script{}, fmt.Errorf("script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return Script{}, ErrNoSteps
	}
	for _, s := range sc.Steps {
		if _, ok := handlers[s.Op]; !ok {
			return Script{}, fmt.Errorf("%w %q on line %d", ErrUnknownOp, s.Op, s.Line)
		}
	}
	return sc, nil
}

// Run applies the steps in order and stops at the first failing one.
func Run(ctx context.Context, e *action.Editor, sc Script) error {
	for i, s := range sc.Steps {
		h, ok := handlers[s.Op]
		if !ok {
			return fmt.Errorf("%w %q on line %d", ErrUnknownOp, s.Op, s.Line)
		}
		if err := h(ctx, e, s); err != nil {
			return fmt.Errorf("step %d (%s, line %d): %w", i+1, s.Op, s.Line, err)
		}
	}
	return nil
}

type handler func(ctx context.Context, e *action.Editor, s Step) error

func create[T any](fn func(*action.Editor, context.Context, T) (string, error)) handler {
	return func(ctx context.Context, e *action.Editor, s Step) error {
		var v T
		if err := s.decode(&v); err != nil {
			return err
		}
		_, err := fn(e, ctx, v)
		return err
	}
}

// withValue covers operations addressed by id that take a patch or position.
func withValue[T any](fn func(*action.Editor, context.Context, string, T) error) handler {
	return func(ctx context.Context, e *action.Editor, s Step) error {
		var v T
		if err := s.decode(&v); err != nil {
			return err
		}
		return fn(e, ctx, s.ID, v)
	}
}

func byID(fn func(*action.Editor, context.Context, string) error) handler {
	return func(ctx context.Context, e *action.Editor, s Step) error {
		return fn(e, ctx, s.ID)
	}
}

func byParent(fn func(*action.Editor, context.Context, string, string) error) handler {
	return func(ctx context.Context, e *action.Editor, s Step) error {
		return fn(e, ctx, s.Parent, s.ID)
	}
}

var handlers = map[string]handler{
	"add-context":    create((*action.Editor).AddContext),
	"update-context": withValue((*action.Editor).UpdateContext),
	"delete-context": byID((*action.Editor).DeleteContext),
	"move-context":   withValue((*action.Editor).UpdateContextPosition),
	"move-contexts": func(ctx context.Context, e *action.Editor, s Step) error {
		var positions map[string]mproject.Positions
		if err := s.decode(&positions); err != nil {
			return err
		}
		return e.UpdateContextPositions(ctx, positions)
	},

	"add-relationship":    create((*action.Editor).AddRelationship),
	"update-relationship": withValue((*action.Editor).UpdateRelationship),
	"delete-relationship": byID((*action.Editor).DeleteRelationship),

	"add-group":           create((*action.Editor).AddGroup),
	"update-group":        withValue((*action.Editor).UpdateGroup),
	"delete-group":        byID((*action.Editor).DeleteGroup),
	"add-group-member":    byParent((*action.Editor).AddContextToGroup),
	"remove-group-member": byParent((*action.Editor).RemoveContextFromGroup),

	"add-actor":    create((*action.Editor).AddActor),
	"update-actor": withValue((*action.Editor).UpdateActor),
	"delete-actor": byID((*action.Editor).DeleteActor),
	"move-actor":   withValue((*action.Editor).UpdateActorPosition),

	"add-user-need":    create((*action.Editor).AddUserNeed),
	"update-user-need": withValue((*action.Editor).UpdateUserNeed),
	"delete-user-need": byID((*action.Editor).DeleteUserNeed),
	"move-user-need":   withValue((*action.Editor).UpdateUserNeedPosition),

	"add-actor-connection":           create((*action.Editor).AddActorConnection),
	"delete-actor-connection":        byID((*action.Editor).DeleteActorConnection),
	"add-actor-need-connection":      create((*action.Editor).AddActorNeedConnection),
	"delete-actor-need-connection":   byID((*action.Editor).DeleteActorNeedConnection),
	"add-need-context-connection":    create((*action.Editor).AddNeedContextConnection),
	"delete-need-context-connection": byID((*action.Editor).DeleteNeedContextConnection),

	"add-flow-stage": func(ctx context.Context, e *action.Editor, s Step) error {
		var stage mproject.FlowStage
		if err := s.decode(&stage); err != nil {
			return err
		}
		return e.AddFlowStage(ctx, stage)
	},
	"update-flow-stage": withValue((*action.Editor).UpdateFlowStage),
	"delete-flow-stage": byID((*action.Editor).DeleteFlowStage),

	"create-keyframe": create((*action.Editor).CreateKeyframe),
	"update-keyframe": withValue((*action.Editor).UpdateKeyframe),
	"delete-keyframe": byID((*action.Editor).DeleteKeyframe),
	"move-context-in-keyframe": func(ctx context.Context, e *action.Editor, s Step) error {
		var pos mproject.KeyframePosition
		if err := s.decode(&pos); err != nil {
			return err
		}
		return e.UpdateKeyframeContextPosition(ctx, s.Parent, s.ID, pos)
	},

	"undo": func(ctx context.Context, e *action.Editor, _ Step) error {
		_, err := e.Undo(ctx)
		return err
	},
	"redo": func(ctx context.Context, e *action.Editor, _ Step) error {
		_, err := e.Redo(ctx)
		return err
	},
	"start-collaboration": func(_ context.Context, e *action.Editor, _ Step) error {
		return e.StartCollaboration()
	},
	"stop-collaboration": func(_ context.Context, e *action.Editor, _ Step) error {
		e.StopCollaboration()
		return nil
	},
}
