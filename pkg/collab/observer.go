package collab

import (
	"sync/atomic"

	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Change is one committed transaction seen by an Observer.
type Change struct {
	// Project is the full document decoded after the transaction.
	Project mproject.Project
	Origin  any
	// Local is true when the transaction was made by the owning session,
	// through the mutation layer or its undo manager.
	Local bool
	// Events lists what the mutation layer did. Undo steps and remote
	// updates carry none.
	Events []mutation.Event
}

// Observer decodes the document after every transaction and hands the
// snapshot to a callback. Field writes inside one transaction produce one
// callback.
type Observer struct {
	onChange    func(Change)
	local       func(origin any) bool
	unsubscribe func()
	destroyed   atomic.Bool
}

// NewObserver starts observing doc. local decides which transaction origins
// count as the caller's own; nil treats every non-remote transaction as
// local.
func NewObserver(doc *shareddoc.Doc, onChange func(Change), local func(origin any) bool) *Observer {
	o := &Observer{onChange: onChange, local: local}
	o.unsubscribe = doc.OnAfterTransaction(o.afterTransaction)
	return o
}

func (o *Observer) afterTransaction(tx *shareddoc.Txn) {
	if o.destroyed.Load() || o.onChange == nil {
		return
	}
	local := tx.Local()
	if local && o.local != nil {
		local = o.local(tx.Origin())
	}
	o.onChange(Change{
		Project: codec.Decode(tx.Doc()),
		Origin:  tx.Origin(),
		Local:   local,
		Events:  mutation.EventsOf(tx),
	})
}

// Destroy stops callbacks, including for a transaction that is already
// notifying its handlers. It is safe to call more than once.
func (o *Observer) Destroy() {
	if !o.destroyed.CompareAndSwap(false, true) {
		return
	}
	o.unsubscribe()
}
