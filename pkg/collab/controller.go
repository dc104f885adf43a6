// Package collab runs collaborative editing sessions over a shared
// document: it observes the document, scopes undo to the local session and
// switches sessions on and off.
package collab

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/the-dev-tools/contextmap/pkg/idwrap"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// RemoteOrigin tags updates received from peers.
const RemoteOrigin = "remote"

// ErrActivationInProgress is returned when Activate or Join is called from
// inside a change callback of the current session.
var ErrActivationInProgress = errors.New("collab: session change from inside a session callback")

// Controller owns at most one Session. Its zero value is not usable; use
// NewController.
type Controller struct {
	mu         sync.Mutex
	session    *Session
	dispatches atomic.Int32

	captureTimeout time.Duration
	clientID       func() uint64
	logger         *slog.Logger
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithCaptureTimeout merges local transactions closer than d into one undo
// step.
func WithCaptureTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.captureTimeout = d
	}
}

// WithClientIDs sets the source of replica ids for new sessions.
func WithClientIDs(next func() uint64) Option {
	return func(c *Controller) {
		c.clientID = next
	}
}

func NewController(opts ...Option) *Controller {
	c := &Controller{clientID: idwrap.NewClientID}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Controller) config() sessionConfig {
	return sessionConfig{
		clientID:       c.clientID(),
		captureTimeout: c.captureTimeout,
		logger:         c.logger,
	}
}

// Activate starts a session holding p. An existing session is destroyed
// first. onChange is called after every transaction on the document.
func (c *Controller) Activate(p mproject.Project, onChange func(Change)) error {
	return c.start(func(cfg sessionConfig) *Session {
		return encodeSession(p, c.dispatch(onChange), cfg)
	})
}

// Join starts a session from the full state of a peer's document, as
// returned by its StateAsUpdate.
func (c *Controller) Join(state shareddoc.Update, onChange func(Change)) error {
	return c.start(func(cfg sessionConfig) *Session {
		return joinSession(state, c.dispatch(onChange), cfg)
	})
}

func (c *Controller) start(build func(sessionConfig) *Session) error {
	if c.dispatches.Load() > 0 {
		return ErrActivationInProgress
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()
	c.session = build(c.config())
	c.logger.Info("collab: session started",
		"project_id", c.session.projectID,
		"origin", c.session.origin,
		"client_id", c.session.doc.ClientID())
	return nil
}

// dispatch wraps onChange so the controller knows when it runs inside a
// callback.
func (c *Controller) dispatch(onChange func(Change)) func(Change) {
	if onChange == nil {
		return nil
	}
	return func(ch Change) {
		c.dispatches.Add(1)
		defer c.dispatches.Add(-1)
		onChange(ch)
	}
}

// Deactivate destroys the current session. It is a no-op when inactive.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
}

func (c *Controller) teardown() {
	if c.session == nil {
		return
	}
	c.session.destroy()
	c.logger.Info("collab: session stopped", "project_id", c.session.projectID)
	c.session = nil
}

func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Mutations returns the mutation table of the active session. While
// inactive it returns nil, on which every operation is a no-op.
func (c *Controller) Mutations() *mutation.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.mutations
}

// UndoRedo returns the session undo manager, or an empty surface while
// inactive.
func (c *Controller) UndoRedo() UndoRedo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return noUndo{}
	}
	return c.session.undo
}

func (c *Controller) ProjectID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.projectID
}

// Doc returns the shared document for transport hooks, or nil.
func (c *Controller) Doc() *shareddoc.Doc {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.doc
}

// Session returns the active session, or nil.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
