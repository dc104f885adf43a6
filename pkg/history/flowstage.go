package history

import (
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

type AddFlowStage struct {
	Index int
	Stage mproject.FlowStage
}

func (AddFlowStage) Kind() Kind { return KindAddFlowStage }

func (c AddFlowStage) undo(p *mproject.Project) { removeStage(p, c.Index) }
func (c AddFlowStage) redo(p *mproject.Project) { insertStage(p, c.Index, c.Stage) }

type UpdateFlowStage struct {
	Index         int
	Before, After mproject.FlowStage
}

func (UpdateFlowStage) Kind() Kind { return KindUpdateFlowStage }

func (c UpdateFlowStage) undo(p *mproject.Project) { replaceStage(p, c.Index, c.Before) }
func (c UpdateFlowStage) redo(p *mproject.Project) { replaceStage(p, c.Index, c.After) }

type DeleteFlowStage struct {
	Index int
	Stage mproject.FlowStage
}

func (DeleteFlowStage) Kind() Kind { return KindDeleteFlowStage }

func (c DeleteFlowStage) undo(p *mproject.Project) { insertStage(p, c.Index, c.Stage) }
func (c DeleteFlowStage) redo(p *mproject.Project) { removeStage(p, c.Index) }

func insertStage(p *mproject.Project, i int, s mproject.FlowStage) {
	i = min(max(i, 0), len(p.FlowStages))
	p.FlowStages = slices.Insert(p.FlowStages, i, s)
}

func replaceStage(p *mproject.Project, i int, s mproject.FlowStage) {
	if i >= 0 && i < len(p.FlowStages) {
		p.FlowStages[i] = s
	}
}

func removeStage(p *mproject.Project, i int) {
	if i >= 0 && i < len(p.FlowStages) {
		p.FlowStages = slices.Delete(p.FlowStages, i, i+1)
	}
}

// AddFlowStageAction appends stage. Duplicate names or positions are
// rejected.
func AddFlowStageAction(p mproject.Project, stage mproject.FlowStage) (mproject.Project, Command, error) {
	index := len(p.FlowStages)
	if err := p.FlowStages.CheckInsert(index, stage); err != nil {
		return p, nil, err
	}
	return forward(p, AddFlowStage{Index: index, Stage: stage})
}

// UpdateFlowStageAction patches the stage called name. The command keeps the
// index so undo puts the stage back in place.
func UpdateFlowStageAction(p mproject.Project, name string, pt patch.FlowStagePatch) (mproject.Project, Command, error) {
	index := p.FlowStages.IndexOf(name)
	if index < 0 || !pt.HasChanges() {
		return p, nil, nil
	}
	before := p.FlowStages[index]
	after := pt.Apply(before)
	if err := p.FlowStages.CheckReplace(index, after); err != nil {
		return p, nil, err
	}
	return forward(p, UpdateFlowStage{Index: index, Before: before, After: after})
}

func DeleteFlowStageAction(p mproject.Project, name string) (mproject.Project, Command, error) {
	index := p.FlowStages.IndexOf(name)
	if index < 0 {
		return p, nil, nil
	}
	return forward(p, DeleteFlowStage{Index: index, Stage: p.FlowStages[index]})
}
