package bracket

import (
	"fmt"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/utils"
	"github.com/google/uuid"
)

// CompleteResult describes what a call to CompleteMatch changed.
type CompleteResult struct {
	Match *Match
	// Changed is false when the call repeated an identical completion.
	Changed bool
	// Propagated is the downstream match that received the winner, if any.
	Propagated    *Match
	DrawCompleted bool
}

func (d *Draw) Publish() error {
	if d.Status != DrawDraft {
		return fmt.Errorf("%w: cannot publish a %s draw", ErrIllegalStateTransition, d.Status)
	}
	if len(d.Matches) == 0 {
		return fmt.Errorf("%w: draw has no matches", ErrInvalidConfiguration)
	}
	d.Status = DrawPublished
	return nil
}

// CheckDeletable allows deletion only before play has begun.
func (d *Draw) CheckDeletable() error {
	switch d.Status {
	case DrawDraft, DrawPublished:
		return nil
	}
	return fmt.Errorf("%w: cannot delete a %s draw", ErrIllegalStateTransition, d.Status)
}

func (d *Draw) StartMatch(matchID uuid.UUID) (*Match, error) {
	m, err := d.playableMatch(matchID)
	if err != nil {
		return nil, err
	}
	if !m.Ready() {
		return nil, fmt.Errorf("%w: match %d/%d has an open slot", ErrParticipantsNotReady, m.Round, m.Position)
	}
	if m.Status != MatchPending {
		return nil, fmt.Errorf("%w: cannot start a %s match", ErrIllegalStateTransition, m.Status)
	}

	m.Status = MatchOngoing
	d.markOngoing()
	return m, nil
}

// RecordScore stores the per-participant score without changing any status.
func (d *Draw) RecordScore(matchID uuid.UUID, score1, score2 string) (*Match, error) {
	m, err := d.playableMatch(matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == MatchCompleted {
		return nil, fmt.Errorf("%w: match is already completed", ErrIllegalStateTransition)
	}

	m.Score1 = utils.StringOrNil(score1)
	m.Score2 = utils.StringOrNil(score2)
	return m, nil
}

// CompleteMatch decides a match. An empty winner records a tie, which only
// round robin and group stage draws accept.
func (d *Draw) CompleteMatch(matchID uuid.UUID, winner ParticipantRef, now time.Time) (CompleteResult, error) {
	m, ok := d.Match(matchID)
	if !ok {
		return CompleteResult{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	if m.Status == MatchCompleted {
		if sameWinner(m.Winner, winner) {
			return CompleteResult{Match: m}, nil
		}
		return CompleteResult{}, fmt.Errorf("%w: match already decided with a different winner", ErrIllegalStateTransition)
	}
	if err := d.checkPlayable(); err != nil {
		return CompleteResult{}, err
	}

	if winner == "" {
		if d.DrawType.IsElimination() {
			return CompleteResult{}, fmt.Errorf("%w: elimination matches need a winner", ErrInvalidWinner)
		}
	} else if m.Slot(winner) == 0 {
		return CompleteResult{}, fmt.Errorf("%w: %q", ErrInvalidWinner, winner)
	}
	if !m.Ready() {
		return CompleteResult{}, fmt.Errorf("%w: match %d/%d has an open slot", ErrParticipantsNotReady, m.Round, m.Position)
	}

	var next *Match
	if d.DrawType.IsElimination() && m.NextMatchID != nil {
		next, ok = d.Match(*m.NextMatchID)
		if !ok {
			return CompleteResult{}, fmt.Errorf("%w: downstream match %s", ErrMatchNotFound, *m.NextMatchID)
		}
		if m.NextSlot == nil || nextSlotTaken(next, *m.NextSlot) {
			return CompleteResult{}, fmt.Errorf("%w: downstream slot is already filled", ErrIllegalStateTransition)
		}
	}

	m.Status = MatchCompleted
	if winner != "" {
		w := winner
		m.Winner = &w
	}
	d.markOngoing()

	res := CompleteResult{Match: m, Changed: true}
	if next != nil {
		w := winner
		if *m.NextSlot == 1 {
			next.Participant1 = &w
		} else {
			next.Participant2 = &w
		}
		res.Propagated = next
	}

	if d.finished(m) {
		d.Status = DrawCompleted
		t := now
		d.CompletedAt = &t
		res.DrawCompleted = true
	}
	return res, nil
}

func (d *Draw) finished(last *Match) bool {
	if d.DrawType.IsElimination() {
		return d.IsFinal(last)
	}
	for i := range d.Matches {
		if d.Matches[i].Status != MatchCompleted {
			return false
		}
	}
	return true
}

func (d *Draw) checkPlayable() error {
	switch d.Status {
	case DrawPublished, DrawOngoing:
		return nil
	}
	return fmt.Errorf("%w: draw is %s", ErrIllegalStateTransition, d.Status)
}

func (d *Draw) playableMatch(matchID uuid.UUID) (*Match, error) {
	m, ok := d.Match(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if err := d.checkPlayable(); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Draw) markOngoing() {
	if d.Status == DrawPublished {
		d.Status = DrawOngoing
	}
}

func nextSlotTaken(next *Match, slot int) bool {
	if slot == 1 {
		return next.Participant1 != nil
	}
	return next.Participant2 != nil
}

// A nil winner is a recorded tie, matching an empty winner.
func sameWinner(current *ParticipantRef, winner ParticipantRef) bool {
	return utils.OrZero(current) == winner
}
