package collab

import (
	"time"

	"github.com/the-dev-tools/contextmap/pkg/shareddoc"
)

// UndoRedo is the undo surface handed to the action layer.
type UndoRedo interface {
	Undo() bool
	Redo() bool
	CanUndo() bool
	CanRedo() bool
}

// UndoManager undoes the transactions of one session origin. Remote
// updates and other sessions' edits are never reverted.
type UndoManager struct {
	um *shareddoc.UndoManager
}

func NewUndoManager(doc *shareddoc.Doc, origin any, captureTimeout time.Duration) *UndoManager {
	return &UndoManager{
		um: shareddoc.NewUndoManager(doc,
			shareddoc.WithTrackedOrigins(origin),
			shareddoc.WithCaptureTimeout(captureTimeout),
		),
	}
}

func (u *UndoManager) Undo() bool    { return u.um.Undo() }
func (u *UndoManager) Redo() bool    { return u.um.Redo() }
func (u *UndoManager) CanUndo() bool { return u.um.CanUndo() }
func (u *UndoManager) CanRedo() bool { return u.um.CanRedo() }

// StopCapturing closes the current undo step.
func (u *UndoManager) StopCapturing() { u.um.StopCapturing() }

// Origin is the marker of the transactions run by Undo and Redo.
func (u *UndoManager) Origin() any { return u.um }

// Destroy drops all history. It is safe to call more than once.
func (u *UndoManager) Destroy() { u.um.Destroy() }

type noUndo struct{}

func (noUndo) Undo() bool    { return false }
func (noUndo) Redo() bool    { return false }
func (noUndo) CanUndo() bool { return false }
func (noUndo) CanRedo() bool { return false }
