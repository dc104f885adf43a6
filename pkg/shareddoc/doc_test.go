package shareddoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture collects the updates produced by local transactions on d.
func capture(d *Doc) *[]Update {
	var out []Update
	d.OnAfterTransaction(func(tx *Txn) {
		if tx.Local() {
			out = append(out, tx.Update())
		}
	})
	return &out
}

func TestMapSetGet(t *testing.T) {
	d := New(WithClientID(1))
	m := d.GetMap("project")

	d.Transact("test", func(tx *Txn) {
		m.Set(tx, "name", "Shop")
		m.Set(tx, "count", 3)
		m.Set(tx, "legacy", true)
		m.Set(tx, "notes", Unset)
	})

	name, ok := m.String("name")
	require.True(t, ok)
	assert.Equal(t, "Shop", name)
	count, ok := m.Float("count")
	require.True(t, ok)
	assert.Equal(t, 3.0, count)
	legacy, _ := m.Bool("legacy")
	assert.True(t, legacy)
	assert.True(t, m.IsUnset("notes"))
	assert.Equal(t, []string{"count", "legacy", "name", "notes"}, m.Keys())

	d.Transact("test", func(tx *Txn) {
		m.Delete(tx, "count")
	})
	assert.False(t, m.Has("count"))
	assert.Equal(t, 3, m.Len())
}

func TestSetPanicsOnUnsupportedValue(t *testing.T) {
	d := New()
	m := d.GetMap("project")
	assert.Panics(t, func() {
		d.Transact(nil, func(tx *Txn) {
			m.Set(tx, "bad", []int{1})
		})
	})
}

func TestTransactionHandlers(t *testing.T) {
	d := New()
	m := d.GetMap("project")

	var calls int
	var origins []any
	unsubscribe := d.OnAfterTransaction(func(tx *Txn) {
		calls++
		origins = append(origins, tx.Origin())
	})

	d.Transact("outer", func(tx *Txn) {
		m.Set(tx, "a", 1)
		d.Transact("inner", func(tx *Txn) {
			m.Set(tx, "b", 2)
		})
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, []any{"outer"}, origins)

	// Deleting a missing key writes nothing, so no handler runs.
	d.Transact("noop", func(tx *Txn) {
		m.Delete(tx, "missing")
	})
	assert.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()
	d.Transact("after", func(tx *Txn) {
		m.Set(tx, "c", 3)
	})
	assert.Equal(t, 1, calls)
}

func TestNestedContainersReplicate(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	updates := capture(a)

	a.Transact(nil, func(tx *Txn) {
		ctx := a.GetMap("contexts").SetMap(tx, "ctx-1")
		ctx.Set(tx, "name", "Orders")
		pos := ctx.SetMap(tx, "positions")
		pos.Set(tx, "flowX", 10)
		ids := a.GetArray("ids")
		ids.Push(tx, "x", "y")
	})

	for _, u := range *updates {
		b.ApplyUpdate(u, "remote")
	}

	ctx, ok := b.GetMap("contexts").Map("ctx-1")
	require.True(t, ok)
	name, _ := ctx.String("name")
	assert.Equal(t, "Orders", name)
	pos, ok := ctx.Map("positions")
	require.True(t, ok)
	x, _ := pos.Float("flowX")
	assert.Equal(t, 10.0, x)
	assert.Equal(t, []string{"x", "y"}, b.GetArray("ids").Strings())
}

func TestApplyUpdateIsIdempotent(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	updates := capture(a)

	a.Transact(nil, func(tx *Txn) {
		a.GetArray("ids").Push(tx, "x")
		a.GetMap("project").Set(tx, "name", "P")
	})
	require.Len(t, *updates, 1)

	var remote int
	b.OnAfterTransaction(func(tx *Txn) {
		assert.False(t, tx.Local())
		remote++
	})
	b.ApplyUpdate((*updates)[0], nil)
	b.ApplyUpdate((*updates)[0], nil)

	assert.Equal(t, 1, remote)
	assert.Equal(t, []string{"x"}, b.GetArray("ids").Strings())
}

func TestConcurrentMapWritesConverge(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	ua := capture(a)
	ub := capture(b)

	a.Transact(nil, func(tx *Txn) { a.GetMap("project").Set(tx, "name", "from-a") })
	b.Transact(nil, func(tx *Txn) { b.GetMap("project").Set(tx, "name", "from-b") })

	a.ApplyUpdate((*ub)[0], nil)
	b.ApplyUpdate((*ua)[0], nil)

	na, _ := a.GetMap("project").String("name")
	nb, _ := b.GetMap("project").String("name")
	assert.Equal(t, na, nb)
	// Equal clocks: the higher client id wins.
	assert.Equal(t, "from-b", na)
}

func TestConcurrentArrayInsertsConverge(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	ua := capture(a)
	ub := capture(b)

	a.Transact(nil, func(tx *Txn) { a.GetArray("ids").Push(tx, "base") })
	b.ApplyUpdate((*ua)[0], nil)

	a.Transact(nil, func(tx *Txn) { a.GetArray("ids").Push(tx, "a1", "a2") })
	b.Transact(nil, func(tx *Txn) { b.GetArray("ids").Push(tx, "b1") })
	b.Transact(nil, func(tx *Txn) { b.GetArray("ids").Delete(tx, 0, 1) })

	a.ApplyUpdate((*ub)[0], nil)
	a.ApplyUpdate((*ub)[1], nil)
	b.ApplyUpdate((*ua)[1], nil)

	assert.Equal(t, a.GetArray("ids").Strings(), b.GetArray("ids").Strings())
	assert.Len(t, a.GetArray("ids").Strings(), 3)
	assert.Equal(t, -1, a.GetArray("ids").Index("base"))
}

// C hears about B's edit of a map before A's update that created it.
func TestOutOfOrderUpdatesAcrossReplicas(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	c := New(WithClientID(3))
	ua := capture(a)
	ub := capture(b)

	a.Transact(nil, func(tx *Txn) {
		m := a.GetMap("contexts").SetMap(tx, "ctx-1")
		m.Set(tx, "name", "Orders")
	})
	b.ApplyUpdate((*ua)[0], "remote")
	bm, ok := b.GetMap("contexts").Map("ctx-1")
	require.True(t, ok)
	b.Transact(nil, func(tx *Txn) { bm.Set(tx, "notes", "from b") })
	require.Len(t, *ub, 1)

	var changes int
	c.OnAfterTransaction(func(*Txn) { changes++ })

	c.ApplyUpdate((*ub)[0], "remote")
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, 0, changes)

	c.ApplyUpdate((*ua)[0], "remote")
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, 1, changes)

	cm, ok := c.GetMap("contexts").Map("ctx-1")
	require.True(t, ok)
	assert.Equal(t, bm.Keys(), cm.Keys())
	notes, _ := cm.String("notes")
	assert.Equal(t, "from b", notes)
}

func TestArrayDeleteBeforeInsert(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	c := New(WithClientID(3))
	ua := capture(a)
	ub := capture(b)

	a.Transact(nil, func(tx *Txn) { a.GetArray("ids").Push(tx, "x", "y") })
	b.ApplyUpdate((*ua)[0], nil)
	b.Transact(nil, func(tx *Txn) { b.GetArray("ids").Delete(tx, 0, 1) })
	b.Transact(nil, func(tx *Txn) { b.GetArray("ids").Push(tx, "z") })

	c.ApplyUpdate((*ub)[1], nil)
	c.ApplyUpdate((*ub)[0], nil)
	// Applying a held update twice does not hold it twice.
	c.ApplyUpdate((*ub)[0], nil)
	assert.Equal(t, 2, c.Pending())
	assert.Empty(t, c.GetArray("ids").Strings())

	c.ApplyUpdate((*ua)[0], nil)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, []string{"y", "z"}, c.GetArray("ids").Strings())
	assert.Equal(t, b.GetArray("ids").Strings(), c.GetArray("ids").Strings())
}

func TestStateAsUpdateCarriesHeldOps(t *testing.T) {
	a := New(WithClientID(1))
	b := New(WithClientID(2))
	c := New(WithClientID(3))
	ua := capture(a)
	ub := capture(b)

	a.Transact(nil, func(tx *Txn) { a.GetArray("ids").Push(tx, "x") })
	b.ApplyUpdate((*ua)[0], nil)
	b.Transact(nil, func(tx *Txn) { b.GetArray("ids").Push(tx, "y") })

	c.ApplyUpdate((*ub)[0], nil)
	require.Equal(t, 1, c.Pending())

	d := New(WithClientID(4))
	d.ApplyUpdate(c.StateAsUpdate(), nil)
	d.ApplyUpdate((*ua)[0], nil)
	assert.Equal(t, []string{"x", "y"}, d.GetArray("ids").Strings())
}

func TestStateAsUpdateCatchesUpNewReplica(t *testing.T) {
	a := New(WithClientID(1))
	a.Transact(nil, func(tx *Txn) {
		ctx := a.GetMap("contexts").SetMap(tx, "ctx-1")
		ctx.Set(tx, "name", "Orders")
		a.GetMap("contexts").SetMap(tx, "ctx-2")
		arr := a.GetArray("ids")
		arr.Push(tx, "x", "y", "z")
	})
	a.Transact(nil, func(tx *Txn) {
		a.GetMap("contexts").Delete(tx, "ctx-2")
		a.GetArray("ids").Delete(tx, 1, 1)
	})

	data, err := EncodeUpdate(a.StateAsUpdate())
	require.NoError(t, err)
	u, err := DecodeUpdate(data)
	require.NoError(t, err)

	b := New(WithClientID(2))
	b.ApplyUpdate(u, nil)

	assert.Equal(t, []string{"ctx-1"}, b.GetMap("contexts").Keys())
	assert.Equal(t, []string{"x", "z"}, b.GetArray("ids").Strings())

	// A late delete of an element the snapshot already removed is a no-op.
	b.ApplyUpdate(u, nil)
	assert.Equal(t, []string{"x", "z"}, b.GetArray("ids").Strings())
}

func TestDecodeUpdateRejectsGarbage(t *testing.T) {
	_, err := DecodeUpdate([]byte("{not json"))
	require.ErrorIs(t, err, ErrMalformedUpdate)
}

func TestRootTypeMismatchReturnsDetached(t *testing.T) {
	d := New()
	d.Transact(nil, func(tx *Txn) { d.GetArray("list").Push(tx, "x") })

	m := d.GetMap("list")
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, d.GetArray("list").Len())
}
