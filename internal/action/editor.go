// Package action is the single entry point for edits to a project. Each
// operation is validated, then routed to the collaboration session when one
// is active or to the local command history otherwise.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/the-dev-tools/contextmap/pkg/collab"
	"github.com/the-dev-tools/contextmap/pkg/eventstream"
	"github.com/the-dev-tools/contextmap/pkg/eventstream/memory"
	"github.com/the-dev-tools/contextmap/pkg/history"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

var (
	ErrUnknownReference = errors.New("action: referenced entity does not exist")
	ErrNotCollaborating = errors.New("action: no collaboration session")
)

// Saver persists the latest snapshot of a project.
type Saver interface {
	Save(ctx context.Context, p mproject.Project) error
}

// Tracker receives one event per user action that originated on this
// machine.
type Tracker interface {
	Track(evt mutation.Event)
}

type noopTracker struct{}

func (noopTracker) Track(mutation.Event) {}

// Snapshot is the payload published to subscribers after every change.
type Snapshot struct {
	Project mproject.Project
	// Remote is true when the change came from a peer.
	Remote bool
}

type Editor struct {
	mu      sync.Mutex
	project mproject.Project
	dirty   bool

	ctrl     *collab.Controller
	stack    *history.Stack
	saver    Saver
	tracker  Tracker
	streamer eventstream.SyncStreamer[string, Snapshot]
	logger   *slog.Logger
}

type Option func(*Editor)

func WithSaver(s Saver) Option {
	return func(e *Editor) { e.saver = s }
}

func WithTracker(t Tracker) Option {
	return func(e *Editor) {
		if t != nil {
			e.tracker = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistoryLimit bounds the local undo stack.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.stack = history.NewStack(n) }
}

func WithController(c *collab.Controller) Option {
	return func(e *Editor) {
		if c != nil {
			e.ctrl = c
		}
	}
}

func WithStreamer(s eventstream.SyncStreamer[string, Snapshot]) Option {
	return func(e *Editor) {
		if s != nil {
			e.streamer = s
		}
	}
}

// NewEditor returns an editor in local mode holding p.
func NewEditor(p mproject.Project, opts ...Option) *Editor {
	e := &Editor{
		tracker: noopTracker{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.stack == nil {
		e.stack = history.NewStack(history.DefaultLimit)
	}
	if e.ctrl == nil {
		e.ctrl = collab.NewController(collab.WithLogger(e.logger))
	}
	if e.streamer == nil {
		e.streamer = memory.NewInMemorySyncStreamer[string, Snapshot]()
	}
	p.Normalize()
	e.project = p
	return e
}

// Project returns the current snapshot.
func (e *Editor) Project() mproject.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project
}

func (e *Editor) Controller() *collab.Controller { return e.ctrl }

func (e *Editor) Collaborating() bool { return e.ctrl.IsActive() }

// Subscribe streams a Snapshot after every change until ctx is done.
func (e *Editor) Subscribe(ctx context.Context) (<-chan eventstream.Event[string, Snapshot], error) {
	return e.streamer.Subscribe(ctx, nil)
}

// Close ends any collaboration session and closes subscriber channels.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.Deactivate()
	e.streamer.Shutdown()
}

// StartCollaboration moves the current project into a shared document.
// The local history is dropped.
func (e *Editor) StartCollaboration() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ctrl.Activate(e.project, e.onChange); err != nil {
		return err
	}
	e.stack.Clear()
	return nil
}

// JoinCollaboration replaces the current project with the state of a peer's
// document and keeps editing it collaboratively.
func (e *Editor) JoinCollaboration(ctx context.Context, state shareddoc.Update) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ctrl.Join(state, e.onChange); err != nil {
		return err
	}
	e.stack.Clear()
	e.setProject(e.ctrl.Session().Snapshot(), true)
	return e.commit(ctx)
}

// StopCollaboration returns to local mode with the last collaborative
// snapshot. Neither history carries over.
func (e *Editor) StopCollaboration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.Deactivate()
	e.stack.Clear()
}

// SwitchProject replaces the edited project. An active collaboration
// session is restarted on p.
func (e *Editor) SwitchProject(p mproject.Project) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p.Normalize()
	if e.ctrl.IsActive() {
		if err := e.ctrl.Activate(p, e.onChange); err != nil {
			return err
		}
	}
	e.stack.Clear()
	e.dirty = false
	e.setProject(p, false)
	return nil
}

// ApplyRemote integrates an update received from a peer.
func (e *Editor) ApplyRemote(ctx context.Context, u shareddoc.Update) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc := e.ctrl.Doc()
	if doc == nil {
		return ErrNotCollaborating
	}
	doc.ApplyUpdate(u, collab.RemoteOrigin)
	return e.commit(ctx)
}

func (e *Editor) Undo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl.IsActive() {
		ok := e.ctrl.UndoRedo().Undo()
		return ok, e.commit(ctx)
	}
	next, ok := e.stack.Undo(e.project)
	if !ok {
		return false, nil
	}
	e.setProject(next, false)
	e.dirty = true
	return true, e.commit(ctx)
}

func (e *Editor) Redo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl.IsActive() {
		ok := e.ctrl.UndoRedo().Redo()
		return ok, e.commit(ctx)
	}
	next, ok := e.stack.Redo(e.project)
	if !ok {
		return false, nil
	}
	e.setProject(next, false)
	e.dirty = true
	return true, e.commit(ctx)
}

func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl.IsActive() {
		return e.ctrl.UndoRedo().CanUndo()
	}
	return e.stack.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl.IsActive() {
		return e.ctrl.UndoRedo().CanRedo()
	}
	return e.stack.CanRedo()
}

// onChange runs inside a document transaction started under e.mu.
func (e *Editor) onChange(ch collab.Change) {
	e.setProject(ch.Project, !ch.Local)
	e.dirty = true
	if !ch.Local {
		return
	}
	for _, evt := range ch.Events {
		if !evt.Cascade {
			e.tracker.Track(evt)
		}
	}
}

type localAction func(mproject.Project) (mproject.Project, history.Command, error)

// apply runs one operation on whichever side is active.
func (e *Editor) apply(ctx context.Context, op string, local localAction, shared func(*mutation.Context)) error {
	if e.ctrl.IsActive() {
		shared(e.ctrl.Mutations())
		return e.commit(ctx)
	}

	next, cmd, err := local(e.project)
	if err != nil {
		return e.reject(op, err)
	}
	if cmd == nil {
		e.logger.Debug("action: nothing changed", "op", op, "project_id", e.project.ID)
		return nil
	}
	e.stack.Push(cmd)
	e.setProject(next, false)
	e.dirty = true
	for _, evt := range eventsFor(cmd) {
		e.tracker.Track(evt)
	}
	return e.commit(ctx)
}

func (e *Editor) reject(op string, err error) error {
	e.logger.Warn("action: rejected", "op", op, "project_id", e.project.ID, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (e *Editor) setProject(p mproject.Project, remote bool) {
	e.project = p
	e.streamer.Publish(p.ID, Snapshot{Project: p, Remote: remote})
}

// commit saves the latest snapshot once if anything changed since the last
// save.
func (e *Editor) commit(ctx context.Context) error {
	if !e.dirty || e.saver == nil {
		return nil
	}
	e.dirty = false
	if err := e.saver.Save(ctx, e.project); err != nil {
		return fmt.Errorf("failed to save project %s: %w", e.project.ID, err)
	}
	return nil
}
