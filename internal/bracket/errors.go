package bracket

import "errors"

var (
	ErrInvalidConfiguration   = errors.New("invalid draw configuration")
	ErrParticipantsNotReady   = errors.New("match participants are not resolved")
	ErrInvalidWinner          = errors.New("winner is not part of this match")
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrDrawNotFound           = errors.New("draw not found")
	ErrMatchNotFound          = errors.New("match not found")
	ErrUnsupported            = errors.New("unsupported draw configuration")
)
