package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/history"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/patch"
)

// Each case runs the same edit through the command stack and through the
// mutation layer on an encoded document; both must yield the same project.
func TestMutationParity(t *testing.T) {
	type local func(mproject.Project) (mproject.Project, history.Command, error)
	tests := []struct {
		name   string
		local  local
		shared func(*mutation.Context)
	}{
		{
			name: "delete context",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.DeleteContextAction(p, "ctx-1")
			},
			shared: func(m *mutation.Context) { m.DeleteContext("ctx-1") },
		},
		{
			name: "delete actor",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.DeleteActorAction(p, "actor-1")
			},
			shared: func(m *mutation.Context) { m.DeleteActor("actor-1") },
		},
		{
			name: "delete user need",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.DeleteUserNeedAction(p, "need-1")
			},
			shared: func(m *mutation.Context) { m.DeleteUserNeed("need-1") },
		},
		{
			name: "update context",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.UpdateContextAction(p, "ctx-1", patch.ContextPatch{
					Purpose:        patch.Unset[string](),
					EvolutionStage: patch.NewOptional(mproject.EvolutionProduct),
				})
			},
			shared: func(m *mutation.Context) {
				m.UpdateContext("ctx-1", patch.ContextPatch{
					Purpose:        patch.Unset[string](),
					EvolutionStage: patch.NewOptional(mproject.EvolutionProduct),
				})
			},
		},
		{
			name: "move context group",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.UpdateContextPositionsAction(p, map[string]mproject.Positions{"ctx-1": {FlowX: 3}, "ctx-2": {SharedY: 4}})
			},
			shared: func(m *mutation.Context) {
				m.UpdateContextPositions(map[string]mproject.Positions{"ctx-1": {FlowX: 3}, "ctx-2": {SharedY: 4}})
			},
		},
		{
			name: "group membership",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.RemoveContextFromGroupAction(p, "grp-1", "ctx-1")
			},
			shared: func(m *mutation.Context) { m.RemoveContextFromGroup("grp-1", "ctx-1") },
		},
		{
			name: "add group member",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.AddContextToGroupAction(p, "grp-2", "ctx-2")
			},
			shared: func(m *mutation.Context) { m.AddContextToGroup("grp-2", "ctx-2") },
		},
		{
			name: "update flow stage",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.UpdateFlowStageAction(p, "Buy", patch.FlowStagePatch{Position: patch.NewOptional(70.0), Description: patch.NewOptional("pay")})
			},
			shared: func(m *mutation.Context) {
				m.UpdateFlowStage("Buy", patch.FlowStagePatch{Position: patch.NewOptional(70.0), Description: patch.NewOptional("pay")})
			},
		},
		{
			name: "delete flow stage",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.DeleteFlowStageAction(p, "Find")
			},
			shared: func(m *mutation.Context) { m.DeleteFlowStage("Find") },
		},
		{
			name: "add flow stage",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.AddFlowStageAction(p, mproject.FlowStage{Name: "Use", Position: 80})
			},
			shared: func(m *mutation.Context) { m.AddFlowStage(mproject.FlowStage{Name: "Use", Position: 80}) },
		},
		{
			name: "update keyframe",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.UpdateKeyframeAction(p, "kf-1", patch.KeyframePatch{
					Label:            patch.NewOptional("then"),
					ActiveContextIDs: patch.NewOptional([]string{"ctx-3", "ctx-1"}),
				})
			},
			shared: func(m *mutation.Context) {
				m.UpdateKeyframe("kf-1", patch.KeyframePatch{
					Label:            patch.NewOptional("then"),
					ActiveContextIDs: patch.NewOptional([]string{"ctx-3", "ctx-1"}),
				})
			},
		},
		{
			name: "keyframe position",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.UpdateKeyframeContextPositionAction(p, "kf-2", "ctx-3", mproject.KeyframePosition{X: 7, Y: 8})
			},
			shared: func(m *mutation.Context) {
				m.UpdateKeyframeContextPosition("kf-2", "ctx-3", mproject.KeyframePosition{X: 7, Y: 8})
			},
		},
		{
			name: "add connections",
			local: func(p mproject.Project) (mproject.Project, history.Command, error) {
				return history.AddActorConnectionAction(p, mproject.ActorConnection{ID: "actor-conn-9", ActorID: "actor-1", ContextID: "ctx-3", Notes: ptr("n")})
			},
			shared: func(m *mutation.Context) {
				m.AddActorConnection(mproject.ActorConnection{ID: "actor-conn-9", ActorID: "actor-1", ContextID: "ctx-3", Notes: ptr("n")})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := history.Fixture()

			want, cmd, err := tt.local(p)
			require.NoError(t, err)
			require.NotNil(t, cmd)

			m := mutation.New(codec.Encode(p), "parity")
			tt.shared(m)
			assert.Equal(t, want, codec.Decode(m.Doc()))
		})
	}
}

func TestKeyframeCreationParity(t *testing.T) {
	p := history.Fixture()
	p.Temporal = nil
	k := mproject.Keyframe{ID: "kf-1", Date: "2025-Q2", ActiveContextIDs: []string{"ctx-1"}}

	want, _, err := history.CreateKeyframeAction(p, k)
	require.NoError(t, err)

	m := mutation.New(codec.Encode(p), "parity")
	m.AddKeyframe(k)
	assert.Equal(t, want, codec.Decode(m.Doc()))
}

func ptr[T any](v T) *T { return &v }
