package mproject

import "slices"

// FlowStages is the ordered list of value-stream stage markers.
//
// Stages have no id. Callers address them by their unique name and resolve
// it with IndexOf. Every method that adds or changes a stage checks that
// names and positions stay unique, and returns a new slice without touching
// the receiver.
type FlowStages []FlowStage

// CheckInsert reports whether stage can be added at index.
func (s FlowStages) CheckInsert(index int, stage FlowStage) error {
	if index < 0 || index > len(s) {
		return ErrStageIndexOutOfRange
	}
	return s.checkUnique(-1, stage)
}

// CheckReplace reports whether the stage at index can become stage.
func (s FlowStages) CheckReplace(index int, stage FlowStage) error {
	if index < 0 || index >= len(s) {
		return ErrStageIndexOutOfRange
	}
	return s.checkUnique(index, stage)
}

func (s FlowStages) checkUnique(skip int, stage FlowStage) error {
	for i, existing := range s {
		if i == skip {
			continue
		}
		if existing.Name == stage.Name {
			return ErrDuplicateStageName
		}
		if existing.Position == stage.Position {
			return ErrDuplicateStagePosition
		}
	}
	return nil
}

// Insert returns a copy with stage inserted at index.
func (s FlowStages) Insert(index int, stage FlowStage) (FlowStages, error) {
	if err := s.CheckInsert(index, stage); err != nil {
		return s, err
	}
	return slices.Insert(slices.Clone(s), index, stage), nil
}

// Replace returns a copy with the stage at index replaced.
func (s FlowStages) Replace(index int, stage FlowStage) (FlowStages, error) {
	if err := s.CheckReplace(index, stage); err != nil {
		return s, err
	}
	out := slices.Clone(s)
	out[index] = stage
	return out, nil
}

// Remove returns a copy without the stage at index.
func (s FlowStages) Remove(index int) (FlowStages, error) {
	if index < 0 || index >= len(s) {
		return s, ErrStageIndexOutOfRange
	}
	return slices.Delete(slices.Clone(s), index, index+1), nil
}

// IndexOf returns the index of the stage named name, or -1.
func (s FlowStages) IndexOf(name string) int {
	return slices.IndexFunc(s, func(f FlowStage) bool { return f.Name == name })
}

// Validate checks the whole list for duplicate names or positions.
func (s FlowStages) Validate() error {
	for i := range s {
		if err := s[:i].checkUnique(-1, s[i]); err != nil {
			return err
		}
	}
	return nil
}
