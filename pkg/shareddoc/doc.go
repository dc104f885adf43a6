// Package shareddoc implements the replicated document that backs a project
// during collaboration.
//
// A Doc is a tree of containers. Maps resolve concurrent writes per key with
// last-writer-wins over (Lamport clock, client id); arrays are RGA sequences
// whose concurrent inserts at the same place are ordered by the same stamp.
// Deletes leave tombstones, so updates can arrive in any causal order and
// every replica that saw the same set of updates holds the same state.
//
// Every write happens inside Transact. Handlers registered with
// OnAfterTransaction run once per transaction that changed something, with
// the transaction's origin, so observers coalesce field writes and undo can
// tell local edits from remote ones.
//
// A Doc is not safe for concurrent use. Remote updates must be applied from
// the goroutine that owns the document.
package shareddoc

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
)

// ID stamps one operation. Clock is a Lamport clock, so comparing stamps
// gives a total order consistent with causality.
type ID struct {
	Client uint64 `json:"c"`
	Clock  uint64 `json:"t"`
}

func (a ID) IsZero() bool { return a.Clock == 0 && a.Client == 0 }

// Compare orders stamps by clock, then client.
func (a ID) Compare(b ID) int {
	if c := cmp.Compare(a.Clock, b.Clock); c != 0 {
		return c
	}
	return cmp.Compare(a.Client, b.Client)
}

func (a ID) String() string { return fmt.Sprintf("%d@%d", a.Clock, a.Client) }

// ContainerID identifies a map or array. Root containers are addressed by
// name so every replica agrees on them without an operation; nested ones by
// the operation that created them.
type ContainerID struct {
	Root string `json:"r,omitempty"`
	Op   ID     `json:"op"`
}

func (c ContainerID) String() string {
	if c.Root != "" {
		return "root:" + c.Root
	}
	return "op:" + c.Op.String()
}

type container interface {
	containerID() ContainerID
}

type handler struct {
	id int
	fn func(*Txn)
}

type Doc struct {
	clientID   uint64
	clock      uint64
	containers map[ContainerID]container
	// redirect maps the stamp of a value to the stamp of its restored copy.
	// Undo follows it so history recorded against a deleted entity still
	// applies after the entity was brought back.
	redirect map[ID]ID
	// pending holds remote ops waiting for their container or neighbour.
	pending  []Op
	txn      *Txn
	handlers []handler
	nextID   int
	logger   *slog.Logger
}

type Option func(*Doc)

// WithClientID fixes the replica id. Two replicas must never share one.
func WithClientID(id uint64) Option {
	return func(d *Doc) {
		d.clientID = id
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Doc) {
		d.logger = logger
	}
}

// New returns an empty document. Without WithClientID the replica id is
// random.
func New(opts ...Option) *Doc {
	d := &Doc{
		containers: make(map[ContainerID]container),
		redirect:   make(map[ID]ID),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.clientID == 0 {
		d.clientID = randomClientID()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

func (d *Doc) ClientID() uint64 { return d.clientID }

// GetMap returns the root map called name, creating it on first use.
// If name already holds a root array a detached empty map is returned, so
// readers of an unexpected document shape see nothing instead of failing.
func (d *Doc) GetMap(name string) *Map {
	cid := ContainerID{Root: name}
	if c, ok := d.containers[cid]; ok {
		if m, ok := c.(*Map); ok {
			return m
		}
		return newMap(d, ContainerID{Root: name + "#detached"})
	}
	m := newMap(d, cid)
	d.containers[cid] = m
	return m
}

// GetArray returns the root array called name, creating it on first use.
func (d *Doc) GetArray(name string) *Array {
	cid := ContainerID{Root: name}
	if c, ok := d.containers[cid]; ok {
		if a, ok := c.(*Array); ok {
			return a
		}
		return newArray(d, ContainerID{Root: name + "#detached"})
	}
	a := newArray(d, cid)
	d.containers[cid] = a
	return a
}

// RootNames lists the root containers present in the document.
func (d *Doc) RootNames() []string {
	var names []string
	for cid := range d.containers {
		if cid.Root != "" {
			names = append(names, cid.Root)
		}
	}
	slices.Sort(names)
	return names
}

// Transact runs fn inside a transaction tagged with origin. Calls nested in
// fn join the outer transaction. Handlers run once after the outermost
// transaction, and only if it changed the document.
func (d *Doc) Transact(origin any, fn func(tx *Txn)) {
	d.transact(origin, true, fn)
}

func (d *Doc) transact(origin any, local bool, fn func(tx *Txn)) {
	if d.txn != nil {
		fn(d.txn)
		return
	}
	tx := &Txn{doc: d, origin: origin, local: local}
	d.txn = tx
	func() {
		defer func() { d.txn = nil }()
		fn(tx)
	}()
	if len(tx.ops) == 0 {
		return
	}
	for _, h := range slices.Clone(d.handlers) {
		h.fn(tx)
	}
}

// OnAfterTransaction registers fn to run after every transaction that
// changed the document, local or remote. The returned function removes the
// handler and is safe to call more than once.
func (d *Doc) OnAfterTransaction(fn func(tx *Txn)) (unsubscribe func()) {
	d.nextID++
	id := d.nextID
	d.handlers = append(d.handlers, handler{id: id, fn: fn})
	return func() {
		d.handlers = slices.DeleteFunc(d.handlers, func(h handler) bool { return h.id == id })
	}
}

func (d *Doc) tick() ID {
	d.clock++
	return ID{Client: d.clientID, Clock: d.clock}
}

func (d *Doc) observe(id ID) {
	if id.Clock > d.clock {
		d.clock = id.Clock
	}
}

func (d *Doc) resolve(id ID) ID {
	for {
		next, ok := d.redirect[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (d *Doc) lookup(cid ContainerID) container {
	if cid.Root == "" {
		cid.Op = d.resolve(cid.Op)
	}
	return d.containers[cid]
}

func (d *Doc) register(c container) {
	d.containers[c.containerID()] = c
}
