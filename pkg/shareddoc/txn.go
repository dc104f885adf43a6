package shareddoc

// Txn is an open transaction. Writes take a *Txn so nothing can change the
// document outside Transact or ApplyUpdate.
type Txn struct {
	doc     *Doc
	origin  any
	local   bool
	ops     []Op
	changes []change
	meta    map[string]any
}

// Origin returns the marker passed to Transact or ApplyUpdate.
func (tx *Txn) Origin() any { return tx.origin }

// Local is false for transactions created by ApplyUpdate.
func (tx *Txn) Local() bool { return tx.local }

func (tx *Txn) Doc() *Doc { return tx.doc }

// Changed reports whether the transaction wrote anything so far.
func (tx *Txn) Changed() bool { return len(tx.ops) > 0 }

// Update returns the operations applied by the transaction, ready to be
// shipped to other replicas.
func (tx *Txn) Update() Update {
	return Update{Client: tx.doc.clientID, Ops: append([]Op(nil), tx.ops...)}
}

// SetMeta attaches a value to the transaction for after-transaction handlers.
// Metadata never leaves the replica.
func (tx *Txn) SetMeta(key string, v any) {
	if tx.meta == nil {
		tx.meta = make(map[string]any)
	}
	tx.meta[key] = v
}

func (tx *Txn) Meta(key string) any {
	return tx.meta[key]
}

type changeKind uint8

const (
	changeMapWrite changeKind = iota
	changeArrayInsert
	changeArrayDelete
)

// change is what undo needs to know about one local write.
type change struct {
	kind   changeKind
	target ContainerID
	key    string
	// id is the stamp of the write for maps and of the element for arrays.
	id ID
	// prev is the entry a map write replaced, nil if the key was new.
	prev *mapEntry
	// value is the element an array delete removed.
	value any
}

func (tx *Txn) record(op Op, ch change) {
	tx.ops = append(tx.ops, op)
	if tx.local {
		tx.changes = append(tx.changes, ch)
	}
}
