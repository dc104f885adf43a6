package collab

import (
	"log/slog"
	"time"

	"github.com/the-dev-tools/contextmap/pkg/codec"
	"github.com/the-dev-tools/contextmap/pkg/idwrap"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
	"github.com/the-dev-tools/contextmap/pkg/mutation"
	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// Session binds one shared document to one project. It is created and
// destroyed by the Controller only.
type Session struct {
	projectID string
	origin    string
	doc       *shareddoc.Doc
	mutations *mutation.Context
	observer  *Observer
	undo      *UndoManager
	logger    *slog.Logger
}

type sessionConfig struct {
	clientID       uint64
	captureTimeout time.Duration
	logger         *slog.Logger
}

// newSession wires the observer and undo manager on doc. The document must
// already hold the project; nothing written before this call is undoable.
func newSession(doc *shareddoc.Doc, onChange func(Change), cfg sessionConfig) *Session {
	s := &Session{
		origin: idwrap.NewOrigin(),
		doc:    doc,
		logger: cfg.logger,
	}
	s.projectID = codec.Decode(doc).ID
	s.mutations = mutation.New(doc, s.origin, mutation.WithLogger(cfg.logger))
	s.undo = NewUndoManager(doc, s.origin, cfg.captureTimeout)
	s.observer = NewObserver(doc, onChange, s.isLocal)
	return s
}

func encodeSession(p mproject.Project, onChange func(Change), cfg sessionConfig) *Session {
	doc := codec.Encode(p, shareddoc.WithClientID(cfg.clientID), shareddoc.WithLogger(cfg.logger))
	return newSession(doc, onChange, cfg)
}

// joinSession builds a replica from a peer's full state.
func joinSession(state shareddoc.Update, onChange func(Change), cfg sessionConfig) *Session {
	doc := shareddoc.New(shareddoc.WithClientID(cfg.clientID), shareddoc.WithLogger(cfg.logger))
	doc.ApplyUpdate(state, RemoteOrigin)
	return newSession(doc, onChange, cfg)
}

func (s *Session) isLocal(origin any) bool {
	return origin == any(s.origin) || origin == s.undo.Origin()
}

func (s *Session) ProjectID() string { return s.projectID }

// Origin is the marker of every transaction this session writes.
func (s *Session) Origin() string { return s.origin }

func (s *Session) Doc() *shareddoc.Doc { return s.doc }

func (s *Session) Snapshot() mproject.Project { return codec.Decode(s.doc) }

func (s *Session) destroy() {
	s.observer.Destroy()
	s.undo.Destroy()
}
