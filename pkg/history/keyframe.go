package history

import (
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

// CreateKeyframe adds a keyframe. CreatedTemporal is set when the project had
// no temporal block before, so undo removes it again.
type CreateKeyframe struct {
	Keyframe        mproject.Keyframe
	CreatedTemporal bool
}

func (CreateKeyframe) Kind() Kind { return KindCreateKeyframe }

func (c CreateKeyframe) undo(p *mproject.Project) {
	if c.CreatedTemporal {
		p.Temporal = nil
		return
	}
	removeKeyframe(p, c.Keyframe.ID)
}

func (c CreateKeyframe) redo(p *mproject.Project) {
	if p.Temporal == nil {
		p.Temporal = &mproject.Temporal{Enabled: true}
	}
	putKeyframe(p, c.Keyframe)
}

type UpdateKeyframe struct {
	Before, After mproject.Keyframe
}

func (UpdateKeyframe) Kind() Kind { return KindUpdateKeyframe }

func (c UpdateKeyframe) undo(p *mproject.Project) { putKeyframe(p, c.Before) }
func (c UpdateKeyframe) redo(p *mproject.Project) { putKeyframe(p, c.After) }

type DeleteKeyframe struct {
	Keyframe mproject.Keyframe
}

func (DeleteKeyframe) Kind() Kind { return KindDeleteKeyframe }

func (c DeleteKeyframe) undo(p *mproject.Project) { putKeyframe(p, c.Keyframe) }
func (c DeleteKeyframe) redo(p *mproject.Project) { removeKeyframe(p, c.Keyframe.ID) }

// MoveContextInKeyframe sets the position override of one context. A nil Old
// means the keyframe had no override for it.
type MoveContextInKeyframe struct {
	KeyframeID, ContextID string
	Old                   *mproject.KeyframePosition
	New                   mproject.KeyframePosition
}

func (MoveContextInKeyframe) Kind() Kind { return KindMoveContextInKeyframe }

func (c MoveContextInKeyframe) undo(p *mproject.Project) {
	k, ok := p.Keyframe(c.KeyframeID)
	if !ok {
		return
	}
	if c.Old == nil {
		delete(k.Positions, c.ContextID)
		return
	}
	setKeyframePosition(k, c.ContextID, *c.Old)
}

func (c MoveContextInKeyframe) redo(p *mproject.Project) {
	if k, ok := p.Keyframe(c.KeyframeID); ok {
		setKeyframePosition(k, c.ContextID, c.New)
	}
}

func setKeyframePosition(k *mproject.Keyframe, contextID string, pos mproject.KeyframePosition) {
	if k.Positions == nil {
		k.Positions = map[string]mproject.KeyframePosition{}
	}
	k.Positions[contextID] = pos
}

func putKeyframe(p *mproject.Project, k mproject.Keyframe) {
	if p.Temporal == nil {
		return
	}
	// Keyframes are ordered by date, so this appends and leaves sorting to
	// Normalize.
	if i := mproject.IndexByID(p.Temporal.Keyframes, k.ID, mproject.KeyframeID); i >= 0 {
		p.Temporal.Keyframes[i] = k.Clone()
		return
	}
	p.Temporal.Keyframes = append(p.Temporal.Keyframes, k.Clone())
}

func removeKeyframe(p *mproject.Project, id string) {
	if p.Temporal == nil {
		return
	}
	p.Temporal.Keyframes, _ = mproject.RemoveByID(p.Temporal.Keyframes, id, mproject.KeyframeID)
}

func keyframe(p *mproject.Project, id string) (mproject.Keyframe, bool) {
	k, ok := p.Keyframe(id)
	if !ok {
		return mproject.Keyframe{}, false
	}
	return k.Clone(), true
}

// CreateKeyframeAction validates the date and adds k, enabling the temporal
// view if the project had none.
func CreateKeyframeAction(p mproject.Project, k mproject.Keyframe) (mproject.Project, Command, error) {
	if err := p.ValidateKeyframeDate(k.Date, ""); err != nil {
		return p, nil, err
	}
	return forward(p, CreateKeyframe{Keyframe: k.Clone(), CreatedTemporal: p.Temporal == nil})
}

func UpdateKeyframeAction(p mproject.Project, id string, pt patch.KeyframePatch) (mproject.Project, Command, error) {
	before, ok := keyframe(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	if pt.Date.HasValue() {
		if err := p.ValidateKeyframeDate(*pt.Date.Value(), id); err != nil {
			return p, nil, err
		}
	}
	return forward(p, UpdateKeyframe{Before: before, After: pt.Apply(before.Clone())})
}

func DeleteKeyframeAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	k, ok := keyframe(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteKeyframe{Keyframe: k})
}

func UpdateKeyframeContextPositionAction(p mproject.Project, keyframeID, contextID string, pos mproject.KeyframePosition) (mproject.Project, Command, error) {
	k, ok := keyframe(&p, keyframeID)
	if !ok {
		return p, nil, nil
	}
	if _, ok := p.Context(contextID); !ok {
		return p, nil, nil
	}
	cmd := MoveContextInKeyframe{KeyframeID: keyframeID, ContextID: contextID, New: pos}
	if old, ok := k.Positions[contextID]; ok {
		if old == pos {
			return p, nil, nil
		}
		cmd.Old = &old
	}
	return forward(p, cmd)
}
