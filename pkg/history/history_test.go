package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

func ptr[T any](v T) *T { return &v }

func fixture() mproject.Project {
	p := mproject.New("proj-1", "Shop")
	p.Contexts = []mproject.BoundedContext{
		{ID: "ctx-1", Name: "Orders", Purpose: ptr("take orders"), Positions: mproject.Positions{FlowX: 10, SharedY: 20}},
		{ID: "ctx-2", Name: "Billing"},
		{ID: "ctx-3", Name: "Shipping"},
	}
	p.Relationships = []mproject.Relationship{
		{ID: "rel-1", FromContextID: "ctx-1", ToContextID: "ctx-2", Pattern: mproject.PatternCustomerSupplier},
		{ID: "rel-2", FromContextID: "ctx-3", ToContextID: "ctx-1", Pattern: mproject.PatternConformist},
		{ID: "rel-3", FromContextID: "ctx-2", ToContextID: "ctx-3", Pattern: mproject.PatternPartnership},
	}
	p.Groups = []mproject.Group{
		{ID: "grp-1", Label: "Core", ContextIDs: []string{"ctx-2", "ctx-1", "ctx-3"}},
		{ID: "grp-2", Label: "Other", ContextIDs: []string{"ctx-1"}},
	}
	p.Actors = []mproject.Actor{{ID: "actor-1", Name: "Customer", Position: 10}}
	p.UserNeeds = []mproject.UserNeed{{ID: "need-1", Name: "Checkout", Position: 40, Visible: true}}
	p.ActorConnections = []mproject.ActorConnection{
		{ID: "actor-conn-1", ActorID: "actor-1", ContextID: "ctx-1"},
		{ID: "actor-conn-2", ActorID: "actor-1", ContextID: "ctx-2"},
	}
	p.ActorNeedConnections = []mproject.ActorNeedConnection{{ID: "actor-need-conn-1", ActorID: "actor-1", UserNeedID: "need-1"}}
	p.NeedContextConnections = []mproject.NeedContextConnection{
		{ID: "need-ctx-conn-1", UserNeedID: "need-1", ContextID: "ctx-1"},
		{ID: "need-ctx-conn-2", UserNeedID: "need-1", ContextID: "ctx-3"},
	}
	p.FlowStages = mproject.FlowStages{{Name: "Find", Position: 10}, {Name: "Buy", Position: 60}}
	p.Temporal = &mproject.Temporal{
		Enabled: true,
		Keyframes: []mproject.Keyframe{
			{
				ID:               "kf-1",
				Date:             "2025",
				Positions:        map[string]mproject.KeyframePosition{"ctx-1": {X: 1, Y: 1}, "ctx-2": {X: 2, Y: 2}},
				ActiveContextIDs: []string{"ctx-2", "ctx-1"},
			},
			{ID: "kf-2", Date: "2026-Q1", Label: ptr("next")},
		},
	}
	p.Normalize()
	return p
}

type action func(p mproject.Project) (mproject.Project, Command, error)

func TestCommandsInvert(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		run  action
	}{
		{"add context", KindAddContext, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddContextAction(p, mproject.BoundedContext{ID: "ctx-0", Name: "New"})
		}},
		{"update context", KindUpdateContext, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextAction(p, "ctx-1", patch.ContextPatch{
				Name:     patch.NewOptional("Ordering"),
				Purpose:  patch.Unset[string](),
				IsLegacy: patch.NewOptional(true),
			})
		}},
		{"delete context", KindDeleteContext, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteContextAction(p, "ctx-1")
		}},
		{"move context", KindMoveContext, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextPositionAction(p, "ctx-1", mproject.Positions{FlowX: 90, StrategicX: 5})
		}},
		{"move context group", KindMoveContextGroup, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextPositionsAction(p, map[string]mproject.Positions{
				"ctx-1":    {FlowX: 1},
				"ctx-2":    {FlowX: 2},
				"ctx-gone": {FlowX: 3},
			})
		}},
		{"add relationship", KindAddRelationship, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddRelationshipAction(p, mproject.Relationship{ID: "rel-4", FromContextID: "ctx-3", ToContextID: "ctx-2", Pattern: mproject.PatternSeparateWays})
		}},
		{"update relationship", KindUpdateRelationship, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateRelationshipAction(p, "rel-1", patch.RelationshipPatch{Description: patch.NewOptional("sync")})
		}},
		{"delete relationship", KindDeleteRelationship, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteRelationshipAction(p, "rel-2")
		}},
		{"add group", KindAddGroup, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddGroupAction(p, mproject.Group{ID: "grp-3", Label: "New", ContextIDs: []string{"ctx-3"}})
		}},
		{"update group", KindUpdateGroup, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateGroupAction(p, "grp-1", patch.GroupPatch{Color: patch.NewOptional("#000")})
		}},
		{"delete group", KindDeleteGroup, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteGroupAction(p, "grp-1")
		}},
		{"add group member", KindAddGroupMember, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddContextToGroupAction(p, "grp-2", "ctx-3")
		}},
		{"remove group member", KindRemoveGroupMember, func(p mproject.Project) (mproject.Project, Command, error) {
			return RemoveContextFromGroupAction(p, "grp-1", "ctx-1")
		}},
		{"add actor", KindAddActor, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddActorAction(p, mproject.Actor{ID: "actor-2", Name: "Clerk", Position: 70})
		}},
		{"update actor", KindUpdateActor, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateActorAction(p, "actor-1", patch.ActorPatch{Description: patch.NewOptional("buys things")})
		}},
		{"delete actor", KindDeleteActor, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteActorAction(p, "actor-1")
		}},
		{"move actor", KindMoveActor, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateActorPositionAction(p, "actor-1", 55)
		}},
		{"add user need", KindAddUserNeed, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddUserNeedAction(p, mproject.UserNeed{ID: "need-2", Name: "Track", Visible: true})
		}},
		{"update user need", KindUpdateUserNeed, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateUserNeedAction(p, "need-1", patch.UserNeedPatch{Visible: patch.NewOptional(false)})
		}},
		{"delete user need", KindDeleteUserNeed, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteUserNeedAction(p, "need-1")
		}},
		{"move user need", KindMoveUserNeed, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateUserNeedPositionAction(p, "need-1", 12.5)
		}},
		{"add actor connection", KindAddActorConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddActorConnectionAction(p, mproject.ActorConnection{ID: "actor-conn-3", ActorID: "actor-1", ContextID: "ctx-3"})
		}},
		{"delete actor connection", KindDeleteActorConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteActorConnectionAction(p, "actor-conn-2")
		}},
		{"add actor need connection", KindAddActorNeedConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddActorNeedConnectionAction(p, mproject.ActorNeedConnection{ID: "actor-need-conn-2", ActorID: "actor-1", UserNeedID: "need-1", Notes: ptr("again")})
		}},
		{"delete actor need connection", KindDeleteActorNeedConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteActorNeedConnectionAction(p, "actor-need-conn-1")
		}},
		{"add need context connection", KindAddNeedContextConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddNeedContextConnectionAction(p, mproject.NeedContextConnection{ID: "need-ctx-conn-3", UserNeedID: "need-1", ContextID: "ctx-2"})
		}},
		{"delete need context connection", KindDeleteNeedContextConnection, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteNeedContextConnectionAction(p, "need-ctx-conn-2")
		}},
		{"add flow stage", KindAddFlowStage, func(p mproject.Project) (mproject.Project, Command, error) {
			return AddFlowStageAction(p, mproject.FlowStage{Name: "Use", Position: 90})
		}},
		{"update flow stage", KindUpdateFlowStage, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateFlowStageAction(p, "Find", patch.FlowStagePatch{Name: patch.NewOptional("Search"), Description: patch.NewOptional("d")})
		}},
		{"delete flow stage", KindDeleteFlowStage, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteFlowStageAction(p, "Find")
		}},
		{"create keyframe", KindCreateKeyframe, func(p mproject.Project) (mproject.Project, Command, error) {
			return CreateKeyframeAction(p, mproject.Keyframe{ID: "kf-3", Date: "2024-Q4"})
		}},
		{"update keyframe", KindUpdateKeyframe, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeAction(p, "kf-1", patch.KeyframePatch{
				Date:             patch.NewOptional("2030"),
				ActiveContextIDs: patch.NewOptional([]string{"ctx-3"}),
			})
		}},
		{"delete keyframe", KindDeleteKeyframe, func(p mproject.Project) (mproject.Project, Command, error) {
			return DeleteKeyframeAction(p, "kf-1")
		}},
		{"move existing context in keyframe", KindMoveContextInKeyframe, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeContextPositionAction(p, "kf-1", "ctx-1", mproject.KeyframePosition{X: 50, Y: 50})
		}},
		{"move new context in keyframe", KindMoveContextInKeyframe, func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeContextPositionAction(p, "kf-2", "ctx-3", mproject.KeyframePosition{X: 5, Y: 6})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := fixture()
			pristine := before.Clone()

			after, cmd, err := tt.run(before)
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.kind, cmd.Kind())
			assert.NotEqual(t, before, after)
			assert.Equal(t, pristine, before, "forward action must not modify its input")

			undone := ApplyUndo(after, cmd)
			assert.Equal(t, before, undone)

			redone := ApplyRedo(undone, cmd)
			assert.Equal(t, after, redone)
			assert.Equal(t, before, ApplyUndo(redone, cmd))
		})
	}
}

func TestDeleteContextCascade(t *testing.T) {
	p, cmd, err := DeleteContextAction(fixture(), "ctx-1")
	require.NoError(t, err)
	require.IsType(t, DeleteContext{}, cmd)

	del := cmd.(DeleteContext)
	assert.Len(t, del.Relationships, 2)
	assert.Len(t, del.ActorConnections, 1)
	assert.Len(t, del.NeedContextConnections, 1)
	assert.ElementsMatch(t, []membership{{GroupID: "grp-1", Index: 1}, {GroupID: "grp-2", Index: 0}}, del.Memberships)

	_, ok := p.Context("ctx-1")
	assert.False(t, ok)
	assert.Equal(t, []mproject.Relationship{{ID: "rel-3", FromContextID: "ctx-2", ToContextID: "ctx-3", Pattern: mproject.PatternPartnership}}, p.Relationships)
	assert.Equal(t, []string{"ctx-2", "ctx-3"}, p.Groups[0].ContextIDs)
	assert.Empty(t, p.Groups[1].ContextIDs)

	kf, ok := p.Keyframe("kf-1")
	require.True(t, ok)
	assert.NotContains(t, kf.Positions, "ctx-1")
	assert.Equal(t, []string{"ctx-2"}, kf.ActiveContextIDs)
}

func TestMissingEntitiesReturnNoCommand(t *testing.T) {
	p := fixture()
	actions := []action{
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextAction(p, "ctx-gone", patch.ContextPatch{Name: patch.NewOptional("x")})
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextAction(p, "ctx-1", patch.ContextPatch{})
		},
		func(p mproject.Project) (mproject.Project, Command, error) { return DeleteContextAction(p, "ctx-gone") },
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextPositionsAction(p, map[string]mproject.Positions{"ctx-gone": {}})
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return AddRelationshipAction(p, mproject.Relationship{ID: "r", FromContextID: "ctx-1", ToContextID: "ctx-gone"})
		},
		func(p mproject.Project) (mproject.Project, Command, error) { return DeleteGroupAction(p, "grp-gone") },
		func(p mproject.Project) (mproject.Project, Command, error) {
			return AddContextToGroupAction(p, "grp-1", "ctx-1")
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return AddContextToGroupAction(p, "grp-2", "ctx-gone")
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return RemoveContextFromGroupAction(p, "grp-2", "ctx-3")
		},
		func(p mproject.Project) (mproject.Project, Command, error) { return DeleteActorAction(p, "actor-gone") },
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateUserNeedPositionAction(p, "need-gone", 1)
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return AddActorConnectionAction(p, mproject.ActorConnection{ID: "c", ActorID: "actor-gone", ContextID: "ctx-1"})
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return AddNeedContextConnectionAction(p, mproject.NeedContextConnection{ID: "c", UserNeedID: "need-1", ContextID: "ctx-gone"})
		},
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateFlowStageAction(p, "Gone", patch.FlowStagePatch{Name: patch.NewOptional("x")})
		},
		func(p mproject.Project) (mproject.Project, Command, error) { return DeleteFlowStageAction(p, "Gone") },
		func(p mproject.Project) (mproject.Project, Command, error) { return DeleteKeyframeAction(p, "kf-gone") },
		func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeContextPositionAction(p, "kf-1", "ctx-gone", mproject.KeyframePosition{})
		},
	}
	for i, run := range actions {
		out, cmd, err := run(p)
		require.NoError(t, err, "action %d", i)
		assert.Nil(t, cmd, "action %d", i)
		assert.Equal(t, p, out, "action %d", i)
	}
}

// Edits that leave the project as it is push nothing to undo.
func TestNoEffectEditsReturnNoCommand(t *testing.T) {
	p := fixture()
	actions := map[string]action{
		"unset required bool": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextAction(p, "ctx-1", patch.ContextPatch{IsLegacy: patch.Unset[bool]()})
		},
		"unset relationship pattern": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateRelationshipAction(p, "rel-1", patch.RelationshipPatch{Pattern: patch.Unset[mproject.RelationshipPattern]()})
		},
		"unset need visibility": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateUserNeedAction(p, "need-1", patch.UserNeedPatch{Visible: patch.Unset[bool]()})
		},
		"unset stage position": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateFlowStageAction(p, "Find", patch.FlowStagePatch{Position: patch.Unset[float64]()})
		},
		"unset keyframe date": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeAction(p, "kf-1", patch.KeyframePatch{Date: patch.Unset[string]()})
		},
		"move context in place": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextPositionAction(p, "ctx-1", mproject.Positions{FlowX: 10, SharedY: 20})
		},
		"move group in place": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateContextPositionsAction(p, map[string]mproject.Positions{"ctx-1": {FlowX: 10, SharedY: 20}, "ctx-2": {}})
		},
		"move keyframe position in place": func(p mproject.Project) (mproject.Project, Command, error) {
			return UpdateKeyframeContextPositionAction(p, "kf-1", "ctx-1", mproject.KeyframePosition{X: 1, Y: 1})
		},
	}
	for name, run := range actions {
		t.Run(name, func(t *testing.T) {
			out, cmd, err := run(p)
			require.NoError(t, err)
			assert.Nil(t, cmd)
			assert.Equal(t, p, out)
		})
	}

	// Clearing an optional field still counts.
	_, cmd, err := UpdateContextAction(p, "ctx-1", patch.ContextPatch{Purpose: patch.Unset[string]()})
	require.NoError(t, err)
	assert.NotNil(t, cmd)
}

func TestValidationErrors(t *testing.T) {
	p := fixture()

	_, _, err := AddRelationshipAction(p, mproject.Relationship{ID: "r", FromContextID: "ctx-1", ToContextID: "ctx-1"})
	assert.ErrorIs(t, err, mproject.ErrSelfRelationship)

	_, _, err = AddFlowStageAction(p, mproject.FlowStage{Name: "Find", Position: 99})
	assert.ErrorIs(t, err, mproject.ErrDuplicateStageName)

	_, _, err = UpdateFlowStageAction(p, "Buy", patch.FlowStagePatch{Position: patch.NewOptional(10.0)})
	assert.ErrorIs(t, err, mproject.ErrDuplicateStagePosition)

	_, _, err = CreateKeyframeAction(p, mproject.Keyframe{ID: "kf-9", Date: "2025"})
	assert.ErrorIs(t, err, mproject.ErrDuplicateKeyframeDate)

	_, _, err = CreateKeyframeAction(p, mproject.Keyframe{ID: "kf-9", Date: "2025-Q5"})
	assert.ErrorIs(t, err, mproject.ErrInvalidKeyframeDate)

	_, _, err = UpdateKeyframeAction(p, "kf-2", patch.KeyframePatch{Date: patch.NewOptional("2025")})
	assert.ErrorIs(t, err, mproject.ErrDuplicateKeyframeDate)

	_, cmd, err := UpdateKeyframeAction(p, "kf-1", patch.KeyframePatch{Date: patch.NewOptional("2025")})
	require.NoError(t, err)
	assert.NotNil(t, cmd)
}

func TestCreateKeyframeEnablesTemporal(t *testing.T) {
	p := fixture()
	p.Temporal = nil

	after, cmd, err := CreateKeyframeAction(p, mproject.Keyframe{ID: "kf-1", Date: "2025"})
	require.NoError(t, err)
	require.NotNil(t, after.Temporal)
	assert.True(t, after.Temporal.Enabled)
	assert.Len(t, after.Temporal.Keyframes, 1)

	assert.Nil(t, ApplyUndo(after, cmd).Temporal)
}

func TestKeyframesStayOrderedByDate(t *testing.T) {
	p, _, err := CreateKeyframeAction(fixture(), mproject.Keyframe{ID: "kf-0", Date: "2099"})
	require.NoError(t, err)
	p, _, err = UpdateKeyframeAction(p, "kf-2", patch.KeyframePatch{Date: patch.NewOptional("2001")})
	require.NoError(t, err)

	var ids []string
	for _, k := range p.Temporal.Keyframes {
		ids = append(ids, k.ID)
	}
	assert.Equal(t, []string{"kf-2", "kf-1", "kf-0"}, ids)
}

func TestStack(t *testing.T) {
	s := NewStack(0)
	p0 := fixture()

	p, ok := s.Undo(p0)
	assert.False(t, ok)
	assert.Equal(t, p0, p)

	p1, cmd, err := UpdateActorPositionAction(p0, "actor-1", 90)
	require.NoError(t, err)
	s.Push(cmd)
	s.Push(nil)
	p2, cmd, err := DeleteContextAction(p1, "ctx-3")
	require.NoError(t, err)
	s.Push(cmd)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Undo(p2)
	require.True(t, ok)
	assert.Equal(t, p1, got)
	assert.True(t, s.CanRedo())

	got, ok = s.Undo(got)
	require.True(t, ok)
	assert.Equal(t, p0, got)
	assert.False(t, s.CanUndo())

	got, ok = s.Redo(got)
	require.True(t, ok)
	assert.Equal(t, p1, got)

	_, cmd, err = DeleteGroupAction(got, "grp-1")
	require.NoError(t, err)
	s.Push(cmd)
	assert.False(t, s.CanRedo(), "push clears redo")

	s.Clear()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestStackLimit(t *testing.T) {
	s := NewStack(3)
	p := fixture()
	for i := range 5 {
		var cmd Command
		var err error
		p, cmd, err = UpdateActorPositionAction(p, "actor-1", float64(i))
		require.NoError(t, err)
		s.Push(cmd)
	}
	assert.Equal(t, 3, s.Len())

	for s.CanUndo() {
		p, _ = s.Undo(p)
	}
	a, ok := p.Actor("actor-1")
	require.True(t, ok)
	assert.Equal(t, float64(1), a.Position, "oldest commands were dropped")
}
