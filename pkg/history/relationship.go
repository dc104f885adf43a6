package history

import (
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

type AddRelationship struct {
	Relationship mproject.Relationship
}

func (AddRelationship) Kind() Kind { return KindAddRelationship }

func (c AddRelationship) undo(p *mproject.Project) { relationships.remove(p, c.Relationship.ID) }
func (c AddRelationship) redo(p *mproject.Project) { relationships.put(p, c.Relationship) }

type UpdateRelationship struct {
	Before, After mproject.Relationship
}

func (UpdateRelationship) Kind() Kind { return KindUpdateRelationship }

func (c UpdateRelationship) undo(p *mproject.Project) { relationships.put(p, c.Before) }
func (c UpdateRelationship) redo(p *mproject.Project) { relationships.put(p, c.After) }

type DeleteRelationship struct {
	Relationship mproject.Relationship
}

func (DeleteRelationship) Kind() Kind { return KindDeleteRelationship }

func (c DeleteRelationship) undo(p *mproject.Project) { relationships.put(p, c.Relationship) }
func (c DeleteRelationship) redo(p *mproject.Project) { relationships.remove(p, c.Relationship.ID) }

// AddRelationshipAction requires both contexts to exist.
func AddRelationshipAction(p mproject.Project, r mproject.Relationship) (mproject.Project, Command, error) {
	if r.FromContextID == r.ToContextID {
		return p, nil, mproject.ErrSelfRelationship
	}
	if _, ok := p.Context(r.FromContextID); !ok {
		return p, nil, nil
	}
	if _, ok := p.Context(r.ToContextID); !ok {
		return p, nil, nil
	}
	return forward(p, AddRelationship{Relationship: r})
}

func UpdateRelationshipAction(p mproject.Project, id string, pt patch.RelationshipPatch) (mproject.Project, Command, error) {
	before, ok := relationships.get(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	return forward(p, UpdateRelationship{Before: before, After: pt.Apply(before)})
}

func DeleteRelationshipAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	r, ok := relationships.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteRelationship{Relationship: r})
}
