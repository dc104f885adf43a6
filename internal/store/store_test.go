package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
)

func ptr[T any](v T) *T { return &v }

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := OpenMemory(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample() mproject.Project {
	p := mproject.New("proj-1", "Shop")
	p.Contexts = []mproject.BoundedContext{
		{ID: "ctx-1", Name: "Orders", Purpose: ptr("take orders"), Positions: mproject.Positions{FlowX: 10, SharedY: 20}},
		{ID: "ctx-2", Name: "Billing"},
	}
	p.Relationships = []mproject.Relationship{
		{ID: "rel-1", FromContextID: "ctx-1", ToContextID: "ctx-2", Pattern: mproject.RelationshipPattern("customer-supplier")},
	}
	p.FlowStages = mproject.FlowStages{{Name: "Find", Position: 10}}
	p.Temporal = &mproject.Temporal{Enabled: true, Keyframes: []mproject.Keyframe{
		{ID: "kf-1", Date: "2025", Positions: map[string]mproject.KeyframePosition{"ctx-1": {X: 1, Y: 2}}, ActiveContextIDs: []string{"ctx-1"}},
	}}
	p.Normalize()
	return p
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	p := sample()
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSaveBumpsRevision(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	p := sample()
	require.NoError(t, s.Save(ctx, p))
	p.Name = "Shop v2"
	require.NoError(t, s.Save(ctx, p))

	rev, err := s.Revision(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rev)

	got, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shop v2", got.Name)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Revision(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	require.ErrorIs(t, s.Save(ctx, mproject.Project{}), ErrMissingID)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	clock := time.UnixMilli(1_000)
	s := testStore(t, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	require.NoError(t, s.Save(ctx, mproject.New("a", "First")))
	require.NoError(t, s.Save(ctx, mproject.New("b", "Second")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.True(t, list[0].UpdatedAt.After(list[1].UpdatedAt))

	require.NoError(t, s.Delete(ctx, "a"))
	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Second", list[0].Name)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "contextmap.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	_, err = Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestEncodings(t *testing.T) {
	for name, enc := range map[string]Encoding{
		"none": EncodingNone,
		"gzip": EncodingGzip,
		"zstd": EncodingZstd,
		"br":   EncodingBr,
	} {
		t.Run(name, func(t *testing.T) {
			parsed, err := ParseEncoding(name)
			require.NoError(t, err)
			require.Equal(t, enc, parsed)

			s := testStore(t, WithEncoding(enc))
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sample()))
			got, err := s.Load(ctx, "proj-1")
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}

	_, err := ParseEncoding("lz4")
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

// Rows keep the encoding they were written with.
func TestMixedEncodings(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "contextmap.db")

	s, err := Open(ctx, path, WithEncoding(EncodingGzip))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, WithEncoding(EncodingBr))
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	require.NoError(t, s.Save(ctx, got))
	got, err = s.Load(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}
