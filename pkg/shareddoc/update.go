package shareddoc

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

type OpKind string

const (
	OpMapSet      OpKind = "map.set"
	OpMapDelete   OpKind = "map.delete"
	OpArrayInsert OpKind = "array.insert"
	OpArrayDelete OpKind = "array.delete"
)

// Op is one replicated write.
type Op struct {
	Kind   OpKind      `json:"k"`
	ID     ID          `json:"id"`
	Target ContainerID `json:"tg"`
	Key    string      `json:"key,omitempty"`
	Origin ID          `json:"o"`
	Elem   ID          `json:"e"`
	Value  *Value      `json:"v,omitempty"`
}

// Update is the set of operations produced by one transaction, or a full
// state snapshot. Applying an update twice has no further effect.
type Update struct {
	Client uint64 `json:"client"`
	Ops    []Op   `json:"ops"`
}

func EncodeUpdate(u Update) ([]byte, error) {
	return json.Marshal(u)
}

func DecodeUpdate(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
	}
	return u, nil
}

// ApplyUpdate integrates operations received from another replica inside a
// single transaction tagged with origin. An operation whose container or
// array neighbour has not arrived yet is held back and retried whenever a
// later update integrates something, so updates from different replicas
// may arrive in any order.
func (d *Doc) ApplyUpdate(u Update, origin any) {
	d.transact(origin, false, func(tx *Txn) {
		progressed := false
		for _, op := range u.Ops {
			switch d.integrate(op) {
			case integrated:
				tx.ops = append(tx.ops, op)
				progressed = true
			case deferred:
				d.hold(op)
			}
		}
		for progressed && len(d.pending) > 0 {
			progressed = false
			waiting := d.pending
			d.pending = nil
			for _, op := range waiting {
				switch d.integrate(op) {
				case integrated:
					tx.ops = append(tx.ops, op)
					progressed = true
				case deferred:
					d.pending = append(d.pending, op)
				}
			}
		}
	})
}

// Pending returns the number of received operations still waiting for a
// dependency.
func (d *Doc) Pending() int { return len(d.pending) }

func (d *Doc) hold(op Op) {
	for _, p := range d.pending {
		if p.ID == op.ID && p.Kind == op.Kind {
			return
		}
	}
	d.logger.Debug("shareddoc: holding op until its dependency arrives", "target", op.Target.String(), "op", op.ID.String())
	d.pending = append(d.pending, op)
}

type integration uint8

const (
	integrated integration = iota
	// ignored ops are duplicates, lost LWW races or malformed.
	ignored
	// deferred ops reference a container or element not seen yet.
	deferred
)

func (d *Doc) integrate(op Op) integration {
	switch op.Kind {
	case OpMapSet, OpMapDelete:
		m, known := d.mapFor(op.Target)
		if !known {
			return deferred
		}
		if m == nil {
			return ignored
		}
		d.observe(op.ID)
		if op.Kind == OpMapDelete {
			return result(m.integrate(op.ID, op.Key, nil, true))
		}
		if op.Value == nil {
			return ignored
		}
		v, ok := d.decodeValue(*op.Value, op.ID)
		if !ok {
			return ignored
		}
		return result(m.integrate(op.ID, op.Key, v, false))
	case OpArrayInsert:
		a, known := d.arrayFor(op.Target)
		if !known {
			return deferred
		}
		if a == nil || op.Value == nil || a.find(op.ID) != nil {
			return ignored
		}
		if !op.Origin.IsZero() && a.find(op.Origin) == nil {
			return deferred
		}
		d.observe(op.ID)
		v, ok := d.decodeValue(*op.Value, op.ID)
		if !ok {
			return ignored
		}
		return result(a.integrateInsert(op.ID, op.Origin, v))
	case OpArrayDelete:
		a, known := d.arrayFor(op.Target)
		if !known {
			return deferred
		}
		if a == nil {
			return ignored
		}
		e := a.find(op.Elem)
		if e == nil {
			return deferred
		}
		if e.deleted {
			return ignored
		}
		d.observe(op.ID)
		e.deleted = true
		e.deleteID = op.ID
		return integrated
	default:
		return ignored
	}
}

func result(changed bool) integration {
	if changed {
		return integrated
	}
	return ignored
}

// mapFor resolves the target of a map op. known is false while a nested
// target has not been created on this replica yet.
func (d *Doc) mapFor(cid ContainerID) (m *Map, known bool) {
	if cid.Root != "" {
		if _, ok := d.containers[cid]; !ok {
			return d.GetMap(cid.Root), true
		}
	}
	c, ok := d.containers[cid]
	if !ok {
		return nil, false
	}
	m, _ = c.(*Map)
	return m, true
}

func (d *Doc) arrayFor(cid ContainerID) (a *Array, known bool) {
	if cid.Root != "" {
		if _, ok := d.containers[cid]; !ok {
			return d.GetArray(cid.Root), true
		}
	}
	c, ok := d.containers[cid]
	if !ok {
		return nil, false
	}
	a, _ = c.(*Array)
	return a, true
}

// StateAsUpdate encodes the whole document, tombstones and held back
// operations included, so a new replica can catch up with one ApplyUpdate.
func (d *Doc) StateAsUpdate() Update {
	u := Update{Client: d.clientID}
	for _, name := range d.RootNames() {
		switch c := d.containers[ContainerID{Root: name}].(type) {
		case *Map:
			u.Ops = appendMapState(u.Ops, c)
		case *Array:
			u.Ops = appendArrayState(u.Ops, c)
		}
	}
	u.Ops = append(u.Ops, d.pending...)
	return u
}

func appendMapState(ops []Op, m *Map) []Op {
	for _, key := range sortedKeys(m.entries) {
		e := m.entries[key]
		if e.deleted {
			ops = append(ops, Op{Kind: OpMapDelete, ID: e.id, Target: m.id, Key: key})
			continue
		}
		val := encodeValue(e.value)
		ops = append(ops, Op{Kind: OpMapSet, ID: e.id, Target: m.id, Key: key, Value: &val})
		ops = appendChildState(ops, e.value)
	}
	return ops
}

func appendArrayState(ops []Op, a *Array) []Op {
	for _, e := range a.elems {
		val := encodeValue(e.value)
		ops = append(ops, Op{Kind: OpArrayInsert, ID: e.id, Target: a.id, Origin: e.origin, Value: &val})
		ops = appendChildState(ops, e.value)
	}
	for _, e := range a.elems {
		if e.deleted {
			ops = append(ops, Op{Kind: OpArrayDelete, ID: e.deleteID, Target: a.id, Elem: e.id})
		}
	}
	return ops
}

func appendChildState(ops []Op, v any) []Op {
	switch c := v.(type) {
	case *Map:
		return appendMapState(ops, c)
	case *Array:
		return appendArrayState(ops, c)
	}
	return ops
}

func sortedKeys(entries map[string]*mapEntry) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// OnUpdate registers fn to receive the operations of every transaction that
// changed the document, tagged with its origin. Transports forward local
// updates to peers from here.
func (d *Doc) OnUpdate(fn func(u Update, origin any)) (unsubscribe func()) {
	return d.OnAfterTransaction(func(tx *Txn) {
		fn(tx.Update(), tx.origin)
	})
}
