package shareddoc

import (
	"slices"
	"time"
)

type undoItem struct {
	changes []change
}

// UndoManager keeps undo and redo stacks of local transactions. Only
// transactions whose origin is tracked are recorded, so edits made by other
// sessions on the same document, and every remote update, are never undone.
//
// Reverting a write checks that it is still the current one. A map key
// overwritten by somebody else keeps their value; an element someone else
// already removed stays removed.
type UndoManager struct {
	doc            *Doc
	tracked        map[any]struct{}
	captureTimeout time.Duration
	now            func() time.Time

	undoStack []*undoItem
	redoStack []*undoItem
	undoing   bool
	redoing   bool
	lastPush  time.Time

	unsubscribe func()
	destroyed   bool
}

type UndoOption func(*UndoManager)

// WithTrackedOrigins limits recording to transactions tagged with one of
// origins. Origins must be comparable. Without this option every local
// transaction is recorded.
func WithTrackedOrigins(origins ...any) UndoOption {
	return func(um *UndoManager) {
		for _, o := range origins {
			um.tracked[o] = struct{}{}
		}
	}
}

// WithCaptureTimeout merges transactions that follow each other within d
// into one undo step. Zero keeps every transaction separate.
func WithCaptureTimeout(d time.Duration) UndoOption {
	return func(um *UndoManager) {
		um.captureTimeout = d
	}
}

func NewUndoManager(doc *Doc, opts ...UndoOption) *UndoManager {
	um := &UndoManager{
		doc:     doc,
		tracked: make(map[any]struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(um)
	}
	um.unsubscribe = doc.OnAfterTransaction(um.afterTransaction)
	return um
}

func (um *UndoManager) afterTransaction(tx *Txn) {
	if !tx.local || len(tx.changes) == 0 {
		return
	}
	item := &undoItem{changes: slices.Clone(tx.changes)}
	switch {
	case tx.origin == any(um) && um.undoing:
		um.redoStack = append(um.redoStack, item)
	case tx.origin == any(um) && um.redoing:
		um.undoStack = append(um.undoStack, item)
	case um.tracks(tx.origin):
		now := um.now()
		if um.captureTimeout > 0 && len(um.undoStack) > 0 && now.Sub(um.lastPush) < um.captureTimeout {
			top := um.undoStack[len(um.undoStack)-1]
			top.changes = append(top.changes, item.changes...)
		} else {
			um.undoStack = append(um.undoStack, item)
		}
		um.lastPush = now
		um.redoStack = nil
	}
}

func (um *UndoManager) tracks(origin any) bool {
	if origin == any(um) {
		return false
	}
	if len(um.tracked) == 0 {
		return true
	}
	_, ok := um.tracked[origin]
	return ok
}

// Undo reverts the most recent recorded step that still changes something.
// It reports whether the document changed.
func (um *UndoManager) Undo() bool {
	if um.destroyed {
		return false
	}
	um.undoing = true
	defer func() { um.undoing = false }()
	return um.popApply(&um.undoStack)
}

// Redo reapplies the most recently undone step.
func (um *UndoManager) Redo() bool {
	if um.destroyed {
		return false
	}
	um.redoing = true
	defer func() { um.redoing = false }()
	return um.popApply(&um.redoStack)
}

func (um *UndoManager) popApply(stack *[]*undoItem) bool {
	for len(*stack) > 0 {
		item := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
		changed := false
		created := um.createdBy(item)
		um.doc.Transact(um, func(tx *Txn) {
			for _, ch := range slices.Backward(item.changes) {
				if ch.target.Root == "" {
					if _, ok := created[um.doc.resolve(ch.target.Op)]; ok {
						continue
					}
				}
				um.revert(tx, ch)
			}
			changed = tx.Changed()
		})
		if changed {
			um.lastPush = time.Time{}
			return true
		}
	}
	return false
}

// createdBy returns the containers the item's own writes created. Writes
// inside them are not reverted one by one: the container goes away with the
// write that created it, and comes back as a copy.
func (um *UndoManager) createdBy(item *undoItem) map[ID]struct{} {
	created := make(map[ID]struct{})
	for _, ch := range item.changes {
		if ch.kind == changeArrayDelete {
			continue
		}
		id := um.doc.resolve(ch.id)
		if _, ok := um.doc.containers[ContainerID{Op: id}]; ok {
			created[id] = struct{}{}
		}
	}
	return created
}

func (um *UndoManager) CanUndo() bool { return !um.destroyed && len(um.undoStack) > 0 }

func (um *UndoManager) CanRedo() bool { return !um.destroyed && len(um.redoStack) > 0 }

// StopCapturing makes the next transaction start a new undo step even
// within the capture timeout.
func (um *UndoManager) StopCapturing() { um.lastPush = time.Time{} }

func (um *UndoManager) Clear() {
	um.undoStack = nil
	um.redoStack = nil
}

// Destroy detaches the manager from the document. It is safe to call more
// than once.
func (um *UndoManager) Destroy() {
	if um.destroyed {
		return
	}
	um.destroyed = true
	um.unsubscribe()
	um.Clear()
}

func (um *UndoManager) revert(tx *Txn, ch change) {
	d := um.doc
	switch ch.kind {
	case changeMapWrite:
		m, ok := d.lookup(ch.target).(*Map)
		if !ok {
			return
		}
		cur, ok := m.entries[ch.key]
		if !ok || cur.id != d.resolve(ch.id) {
			return
		}
		if ch.prev == nil || ch.prev.deleted {
			if cur.deleted {
				return
			}
			id := m.write(tx, ch.key, nil, true)
			if ch.prev != nil {
				d.redirect[ch.prev.id] = id
			}
			return
		}
		id := um.restoreEntry(tx, m, ch.key, ch.prev.value)
		d.redirect[ch.prev.id] = id
	case changeArrayInsert:
		a, ok := d.lookup(ch.target).(*Array)
		if !ok {
			return
		}
		if e := a.find(d.resolve(ch.id)); e != nil && !e.deleted {
			a.deleteElem(tx, e)
		}
	case changeArrayDelete:
		a, ok := d.lookup(ch.target).(*Array)
		if !ok {
			return
		}
		e := a.find(d.resolve(ch.id))
		if e == nil || !e.deleted {
			return
		}
		id := um.restoreElem(tx, a, e.id, e.value)
		d.redirect[e.id] = id
	}
}

// restoreEntry writes a copy of v under key and returns the new stamp.
// Containers are copied with fresh stamps and redirects, since the original
// container is no longer reachable from the document.
func (um *UndoManager) restoreEntry(tx *Txn, m *Map, key string, v any) ID {
	switch src := v.(type) {
	case *Map:
		dst := m.SetMap(tx, key)
		um.copyMap(tx, src, dst)
		return dst.id.Op
	case *Array:
		dst := m.SetArray(tx, key)
		um.copyArray(tx, src, dst)
		return dst.id.Op
	default:
		return m.write(tx, key, v, false)
	}
}

// restoreElem inserts a copy of v right after the tombstone at origin.
func (um *UndoManager) restoreElem(tx *Txn, a *Array, origin ID, v any) ID {
	id := tx.doc.tick()
	switch src := v.(type) {
	case *Map:
		dst := newMap(tx.doc, ContainerID{Op: id})
		tx.doc.register(dst)
		a.insertID(tx, id, origin, dst)
		um.copyMap(tx, src, dst)
	case *Array:
		dst := newArray(tx.doc, ContainerID{Op: id})
		tx.doc.register(dst)
		a.insertID(tx, id, origin, dst)
		um.copyArray(tx, src, dst)
	default:
		a.insertID(tx, id, origin, v)
	}
	return id
}

func (um *UndoManager) copyMap(tx *Txn, src, dst *Map) {
	for _, key := range src.Keys() {
		e := src.entries[key]
		um.doc.redirect[e.id] = um.restoreEntry(tx, dst, key, e.value)
	}
}

func (um *UndoManager) copyArray(tx *Txn, src, dst *Array) {
	var last ID
	for _, e := range src.elems {
		if e.deleted {
			continue
		}
		last = um.restoreElem(tx, dst, last, e.value)
		um.doc.redirect[e.id] = last
	}
}
