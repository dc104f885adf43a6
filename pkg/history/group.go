package history

import (
	"slices"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

type AddGroup struct {
	Group mproject.Group
}

func (AddGroup) Kind() Kind { return KindAddGroup }

func (c AddGroup) undo(p *mproject.Project) { groups.remove(p, c.Group.ID) }
func (c AddGroup) redo(p *mproject.Project) { groups.put(p, c.Group.Clone()) }

type UpdateGroup struct {
	Before, After mproject.Group
}

func (UpdateGroup) Kind() Kind { return KindUpdateGroup }

func (c UpdateGroup) undo(p *mproject.Project) { groups.put(p, c.Before.Clone()) }
func (c UpdateGroup) redo(p *mproject.Project) { groups.put(p, c.After.Clone()) }

type DeleteGroup struct {
	Group mproject.Group
}

func (DeleteGroup) Kind() Kind { return KindDeleteGroup }

func (c DeleteGroup) undo(p *mproject.Project) { groups.put(p, c.Group.Clone()) }
func (c DeleteGroup) redo(p *mproject.Project) { groups.remove(p, c.Group.ID) }

type AddGroupMember struct {
	GroupID, ContextID string
}

func (AddGroupMember) Kind() Kind { return KindAddGroupMember }

func (c AddGroupMember) undo(p *mproject.Project) {
	if g, ok := p.Group(c.GroupID); ok {
		g.ContextIDs = slices.DeleteFunc(g.ContextIDs, func(s string) bool { return s == c.ContextID })
	}
}

func (c AddGroupMember) redo(p *mproject.Project) {
	if g, ok := p.Group(c.GroupID); ok && !slices.Contains(g.ContextIDs, c.ContextID) {
		g.ContextIDs = append(g.ContextIDs, c.ContextID)
	}
}

type RemoveGroupMember struct {
	GroupID, ContextID string
	Index              int
}

func (RemoveGroupMember) Kind() Kind { return KindRemoveGroupMember }

func (c RemoveGroupMember) undo(p *mproject.Project) {
	if g, ok := p.Group(c.GroupID); ok {
		g.ContextIDs = insertAt(g.ContextIDs, c.Index, c.ContextID)
	}
}

func (c RemoveGroupMember) redo(p *mproject.Project) {
	AddGroupMember{GroupID: c.GroupID, ContextID: c.ContextID}.undo(p)
}

func AddGroupAction(p mproject.Project, g mproject.Group) (mproject.Project, Command, error) {
	return forward(p, AddGroup{Group: g.Clone()})
}

func UpdateGroupAction(p mproject.Project, id string, pt patch.GroupPatch) (mproject.Project, Command, error) {
	before, ok := groups.get(&p, id)
	if !ok || !pt.HasChanges() {
		return p, nil, nil
	}
	before = before.Clone()
	return forward(p, UpdateGroup{Before: before, After: pt.Apply(before.Clone())})
}

func DeleteGroupAction(p mproject.Project, id string) (mproject.Project, Command, error) {
	g, ok := groups.get(&p, id)
	if !ok {
		return p, nil, nil
	}
	return forward(p, DeleteGroup{Group: g.Clone()})
}

// AddContextToGroupAction appends a member. It is a no-op if either side is
// missing or the context already belongs to the group.
func AddContextToGroupAction(p mproject.Project, groupID, contextID string) (mproject.Project, Command, error) {
	g, ok := groups.get(&p, groupID)
	if !ok || slices.Contains(g.ContextIDs, contextID) {
		return p, nil, nil
	}
	if _, ok := p.Context(contextID); !ok {
		return p, nil, nil
	}
	return forward(p, AddGroupMember{GroupID: groupID, ContextID: contextID})
}

func RemoveContextFromGroupAction(p mproject.Project, groupID, contextID string) (mproject.Project, Command, error) {
	g, ok := groups.get(&p, groupID)
	if !ok {
		return p, nil, nil
	}
	idx := slices.Index(g.ContextIDs, contextID)
	if idx < 0 {
		return p, nil, nil
	}
	return forward(p, RemoveGroupMember{GroupID: groupID, ContextID: contextID, Index: idx})
}
