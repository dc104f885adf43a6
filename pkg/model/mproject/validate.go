package mproject

import (
	"errors"
	"regexp"
)

var (
	ErrStageIndexOutOfRange   = errors.New("flow stage index out of range")
	ErrDuplicateStageName     = errors.New("flow stage name already used")
	ErrDuplicateStagePosition = errors.New("flow stage position already used")
	ErrInvalidKeyframeDate    = errors.New("keyframe date must be YYYY or YYYY-Qn")
	ErrDuplicateKeyframeDate  = errors.New("keyframe date already used")
	ErrSelfRelationship       = errors.New("relationship must connect two different contexts")
	ErrEmptyName              = errors.New("name cannot be empty")
)

var keyframeDate = regexp.MustCompile(`^\d{4}(-Q[1-4])?$`)

// ValidateKeyframeDate checks the date format and that no keyframe other than
// skipID already uses it.
func (p *Project) ValidateKeyframeDate(date, skipID string) error {
	if !keyframeDate.MatchString(date) {
		return ErrInvalidKeyframeDate
	}
	if p.Temporal == nil {
		return nil
	}
	for _, kf := range p.Temporal.Keyframes {
		if kf.ID != skipID && kf.Date == date {
			return ErrDuplicateKeyframeDate
		}
	}
	return nil
}
