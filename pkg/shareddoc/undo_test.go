package shareddoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "local-session"

func TestUndoRedoMapWrite(t *testing.T) {
	d := New(WithClientID(1))
	um := NewUndoManager(d, WithTrackedOrigins(session))
	m := d.GetMap("project")

	d.Transact(session, func(tx *Txn) { m.Set(tx, "name", "A") })
	d.Transact(session, func(tx *Txn) { m.Set(tx, "name", "B") })

	require.True(t, um.Undo())
	name, _ := m.String("name")
	assert.Equal(t, "A", name)

	require.True(t, um.Undo())
	assert.False(t, m.Has("name"))
	assert.False(t, um.CanUndo())
	assert.False(t, um.Undo())

	require.True(t, um.Redo())
	require.True(t, um.Redo())
	name, _ = m.String("name")
	assert.Equal(t, "B", name)
	assert.False(t, um.CanRedo())
}

func TestUndoIgnoresUntrackedOrigins(t *testing.T) {
	d := New(WithClientID(1))
	um := NewUndoManager(d, WithTrackedOrigins(session))
	m := d.GetMap("project")

	d.Transact("init", func(tx *Txn) { m.Set(tx, "name", "seed") })
	assert.False(t, um.CanUndo())
	assert.False(t, um.Undo())

	name, _ := m.String("name")
	assert.Equal(t, "seed", name)
}

func TestNewEditClearsRedo(t *testing.T) {
	d := New()
	um := NewUndoManager(d, WithTrackedOrigins(session))
	m := d.GetMap("project")

	d.Transact(session, func(tx *Txn) { m.Set(tx, "name", "A") })
	require.True(t, um.Undo())
	require.True(t, um.CanRedo())

	d.Transact(session, func(tx *Txn) { m.Set(tx, "name", "C") })
	assert.False(t, um.CanRedo())
}

func TestUndoRestoresDeletedContainer(t *testing.T) {
	d := New(WithClientID(1))
	um := NewUndoManager(d, WithTrackedOrigins(session))
	contexts := d.GetMap("contexts")

	d.Transact(session, func(tx *Txn) {
		c := contexts.SetMap(tx, "ctx-1")
		c.Set(tx, "name", "Orders")
	})
	d.Transact(session, func(tx *Txn) {
		c, _ := contexts.Map("ctx-1")
		c.Set(tx, "name", "Billing")
	})
	d.Transact(session, func(tx *Txn) { contexts.Delete(tx, "ctx-1") })

	require.True(t, um.Undo())
	c, ok := contexts.Map("ctx-1")
	require.True(t, ok)
	name, _ := c.String("name")
	assert.Equal(t, "Billing", name)

	// The rename was recorded against the deleted copy and still applies.
	require.True(t, um.Undo())
	c, _ = contexts.Map("ctx-1")
	name, _ = c.String("name")
	assert.Equal(t, "Orders", name)

	require.True(t, um.Undo())
	assert.False(t, contexts.Has("ctx-1"))

	require.True(t, um.Redo())
	c, ok = contexts.Map("ctx-1")
	require.True(t, ok)
	name, _ = c.String("name")
	assert.Equal(t, "Orders", name)
}

func TestUndoRestoresArrayElementInPlace(t *testing.T) {
	d := New()
	um := NewUndoManager(d, WithTrackedOrigins(session))
	ids := d.GetArray("ids")

	d.Transact("init", func(tx *Txn) { ids.Push(tx, "a", "b", "c") })
	d.Transact(session, func(tx *Txn) { ids.Delete(tx, 1, 1) })
	assert.Equal(t, []string{"a", "c"}, ids.Strings())

	require.True(t, um.Undo())
	assert.Equal(t, []string{"a", "b", "c"}, ids.Strings())

	require.True(t, um.Redo())
	assert.Equal(t, []string{"a", "c"}, ids.Strings())
}

func TestUndoKeepsRemoteOverwrite(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	um := NewUndoManager(a, WithTrackedOrigins(session))
	ua := capture(a)
	ub := capture(b)

	a.Transact(session, func(tx *Txn) { a.GetMap("project").Set(tx, "name", "mine") })
	b.ApplyUpdate((*ua)[0], "remote")
	b.Transact(nil, func(tx *Txn) { b.GetMap("project").Set(tx, "name", "theirs") })
	a.ApplyUpdate((*ub)[0], "remote")

	assert.False(t, um.Undo())
	name, _ := a.GetMap("project").String("name")
	assert.Equal(t, "theirs", name)
}

func TestUndoSkipsStepsWithNothingLeft(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	um := NewUndoManager(a, WithTrackedOrigins(session))
	ua := capture(a)
	ub := capture(b)

	a.Transact(session, func(tx *Txn) { a.GetMap("project").Set(tx, "purpose", "x") })
	a.Transact(session, func(tx *Txn) { a.GetMap("project").Set(tx, "name", "mine") })
	for _, u := range *ua {
		b.ApplyUpdate(u, nil)
	}
	b.Transact(nil, func(tx *Txn) { b.GetMap("project").Set(tx, "name", "theirs") })
	a.ApplyUpdate((*ub)[0], nil)

	// The name step has nothing left to revert, so the purpose step is undone.
	require.True(t, um.Undo())
	assert.False(t, a.GetMap("project").Has("purpose"))
	name, _ := a.GetMap("project").String("name")
	assert.Equal(t, "theirs", name)
}

func TestCaptureTimeoutMergesSteps(t *testing.T) {
	d := New()
	um := NewUndoManager(d, WithTrackedOrigins(session), WithCaptureTimeout(time.Second))
	now := time.Unix(100, 0)
	um.now = func() time.Time { return now }
	m := d.GetMap("project")

	d.Transact(session, func(tx *Txn) { m.Set(tx, "a", 1) })
	now = now.Add(100 * time.Millisecond)
	d.Transact(session, func(tx *Txn) { m.Set(tx, "b", 2) })
	now = now.Add(5 * time.Second)
	d.Transact(session, func(tx *Txn) { m.Set(tx, "c", 3) })

	require.True(t, um.Undo())
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	require.True(t, um.Undo())
	assert.Empty(t, m.Keys())
}

func TestDestroyIsIdempotent(t *testing.T) {
	d := New()
	um := NewUndoManager(d, WithTrackedOrigins(session))
	m := d.GetMap("project")
	d.Transact(session, func(tx *Txn) { m.Set(tx, "a", 1) })

	um.Destroy()
	um.Destroy()

	assert.False(t, um.CanUndo())
	assert.False(t, um.Undo())
	d.Transact(session, func(tx *Txn) { m.Set(tx, "b", 2) })
	assert.False(t, um.CanUndo())
}
