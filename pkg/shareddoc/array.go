package shareddoc

type element struct {
	id ID
	// origin is the element this one was inserted after, zero for the head.
	origin   ID
	value    any
	deleted  bool
	deleteID ID
}

// Array is an RGA sequence. Elements are never removed, only tombstoned,
// so a concurrent insert next to a deleted element still finds its place.
type Array struct {
	doc   *Doc
	id    ContainerID
	elems []*element
}

func newArray(d *Doc, id ContainerID) *Array {
	return &Array{doc: d, id: id}
}

func (a *Array) containerID() ContainerID { return a.id }

func (a *Array) ID() ContainerID { return a.id }

func (a *Array) Len() int {
	n := 0
	for _, e := range a.elems {
		if !e.deleted {
			n++
		}
	}
	return n
}

// Get returns the value at visible index i.
func (a *Array) Get(i int) (any, bool) {
	e := a.visible(i)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Values returns the visible values in order.
func (a *Array) Values() []any {
	out := make([]any, 0, len(a.elems))
	for _, e := range a.elems {
		if !e.deleted {
			out = append(out, e.value)
		}
	}
	return out
}

// Strings returns the visible string values, skipping anything else.
func (a *Array) Strings() []string {
	out := make([]string, 0, len(a.elems))
	for _, v := range a.Values() {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Index returns the visible index of the first element equal to v, or -1.
func (a *Array) Index(v any) int {
	i := 0
	for _, e := range a.elems {
		if e.deleted {
			continue
		}
		if e.value == v {
			return i
		}
		i++
	}
	return -1
}

// Insert adds scalars at visible index i. Out of range indexes are clamped.
func (a *Array) Insert(tx *Txn, i int, values ...any) {
	origin := a.originFor(i)
	for _, v := range values {
		origin = a.insertAfter(tx, origin, mustScalar(v))
	}
}

func (a *Array) Push(tx *Txn, values ...any) {
	a.Insert(tx, a.Len(), values...)
}

// InsertMap adds a new empty map at visible index i and returns it.
func (a *Array) InsertMap(tx *Txn, i int) *Map {
	id := tx.doc.tick()
	child := newMap(tx.doc, ContainerID{Op: id})
	tx.doc.register(child)
	a.insertID(tx, id, a.originFor(i), child)
	return child
}

func (a *Array) PushMap(tx *Txn) *Map {
	return a.InsertMap(tx, a.Len())
}

// Delete removes count visible elements starting at i.
func (a *Array) Delete(tx *Txn, i, count int) {
	var targets []*element
	for n := 0; n < count; n++ {
		e := a.visible(i + n)
		if e == nil {
			break
		}
		targets = append(targets, e)
	}
	for _, e := range targets {
		a.deleteElem(tx, e)
	}
}

func (a *Array) deleteElem(tx *Txn, e *element) {
	id := tx.doc.tick()
	e.deleted = true
	e.deleteID = id
	tx.record(
		Op{Kind: OpArrayDelete, ID: id, Target: a.id, Elem: e.id},
		change{kind: changeArrayDelete, target: a.id, id: e.id, value: e.value},
	)
}

func (a *Array) insertAfter(tx *Txn, origin ID, v any) ID {
	id := tx.doc.tick()
	a.insertID(tx, id, origin, v)
	return id
}

func (a *Array) insertID(tx *Txn, id, origin ID, v any) {
	a.integrateInsert(id, origin, v)
	val := encodeValue(v)
	tx.record(
		Op{Kind: OpArrayInsert, ID: id, Target: a.id, Origin: origin, Value: &val},
		change{kind: changeArrayInsert, target: a.id, id: id},
	)
}

// originFor returns the stamp of the visible element before index i.
func (a *Array) originFor(i int) ID {
	if i <= 0 {
		return ID{}
	}
	seen := 0
	var last ID
	for _, e := range a.elems {
		if e.deleted {
			continue
		}
		last = e.id
		seen++
		if seen == i {
			return e.id
		}
	}
	return last
}

func (a *Array) visible(i int) *element {
	if i < 0 {
		return nil
	}
	n := 0
	for _, e := range a.elems {
		if e.deleted {
			continue
		}
		if n == i {
			return e
		}
		n++
	}
	return nil
}

func (a *Array) find(id ID) *element {
	for _, e := range a.elems {
		if e.id == id {
			return e
		}
	}
	return nil
}

func (a *Array) indexOf(id ID) int {
	for i, e := range a.elems {
		if e.id == id {
			return i
		}
	}
	return -1
}

// integrateInsert places an element right after its origin, skipping over
// elements with a newer stamp: those were inserted concurrently at the same
// place, or after such an insert, and sort first.
func (a *Array) integrateInsert(id, origin ID, v any) bool {
	if a.find(id) != nil {
		return false
	}
	pos := 0
	if !origin.IsZero() {
		i := a.indexOf(origin)
		if i < 0 {
			return false
		}
		pos = i + 1
	}
	for pos < len(a.elems) && a.elems[pos].id.Compare(id) > 0 {
		pos++
	}
	e := &element{id: id, origin: origin, value: v}
	a.elems = append(a.elems, nil)
	copy(a.elems[pos+1:], a.elems[pos:])
	a.elems[pos] = e
	return true
}
