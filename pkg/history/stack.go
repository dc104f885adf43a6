package history

import (
	"sync"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
)

const DefaultLimit = 100

// Stack is a bounded undo/redo history of commands.
type Stack struct {
	mu    sync.Mutex
	limit int
	undo  []Command
	redo  []Command
}

// NewStack returns a stack keeping at most limit commands. A limit below one
// uses DefaultLimit.
func NewStack(limit int) *Stack {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Push records cmd and drops the redo history. The oldest command is
// discarded once the limit is reached. A nil command is ignored.
func (s *Stack) Push(cmd Command) {
	if cmd == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = append(s.undo, cmd)
	if over := len(s.undo) - s.limit; over > 0 {
		s.undo = append(s.undo[:0:0], s.undo[over:]...)
	}
	s.redo = nil
}

// Undo reverts the latest command on p. It returns p unchanged and false when
// there is nothing to undo.
func (s *Stack) Undo(p mproject.Project) (mproject.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return p, false
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	return ApplyUndo(p, cmd), true
}

func (s *Stack) Redo(p mproject.Project) (mproject.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return p, false
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	return ApplyRedo(p, cmd), true
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Len returns the number of undoable commands.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = nil
	s.redo = nil
}
