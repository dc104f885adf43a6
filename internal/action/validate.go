package action

import (
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

func checkName(name string) error {
	if name == "" {
		return mproject.ErrEmptyName
	}
	return nil
}

// checkRename rejects a patch that clears or empties a required name.
func checkRename(o patch.Optional[string]) error {
	if !o.IsSet() {
		return nil
	}
	if v := o.Value(); v == nil || *v == "" {
		return mproject.ErrEmptyName
	}
	return nil
}

func checkContexts(p *mproject.Project, ids ...string) error {
	for _, id := range ids {
		if _, ok := p.Context(id); !ok {
			return ErrUnknownReference
		}
	}
	return nil
}

func checkRelationship(p *mproject.Project, r mproject.Relationship) error {
	if r.FromContextID == r.ToContextID {
		return mproject.ErrSelfRelationship
	}
	return checkContexts(p, r.FromContextID, r.ToContextID)
}

func checkActor(p *mproject.Project, id string) error {
	if _, ok := p.Actor(id); !ok {
		return ErrUnknownReference
	}
	return nil
}

func checkUserNeed(p *mproject.Project, id string) error {
	if _, ok := p.UserNeed(id); !ok {
		return ErrUnknownReference
	}
	return nil
}

// checkStageUpdate validates the stage that an update would produce. A
// missing stage passes; the update is then a no-op.
func checkStageUpdate(p *mproject.Project, name string, pt patch.FlowStagePatch) error {
	i := p.FlowStages.IndexOf(name)
	if i < 0 {
		return nil
	}
	if err := checkRename(pt.Name); err != nil {
		return err
	}
	return p.FlowStages.CheckReplace(i, pt.Apply(p.FlowStages[i]))
}

func checkKeyframeUpdate(p *mproject.Project, id string, pt patch.KeyframePatch) error {
	if _, ok := p.Keyframe(id); !ok || !pt.Date.IsSet() {
		return nil
	}
	date := ""
	if v := pt.Date.Value(); v != nil {
		date = *v
	}
	return p.ValidateKeyframeDate(date, id)
}
