package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
)

type Match struct {
	ID     uuid.UUID `db:"id" json:"id"`
	DrawID uuid.UUID `db:"draw_id" json:"drawId"`

	// Position in the draw for reconstructing the view
	Round    int `db:"round_number" json:"round"`
	Position int `db:"position" json:"position"`
	Group    int `db:"group_number" json:"group,omitempty"`

	Participant1 *ParticipantRef `db:"participant_1" json:"participant1"`
	Participant2 *ParticipantRef `db:"participant_2" json:"participant2"`
	Winner       *ParticipantRef `db:"winner" json:"winner"`

	Score1 *string     `db:"score_1" json:"score1"`
	Score2 *string     `db:"score_2" json:"score2"`
	Status MatchStatus `db:"status" json:"status"`

	NextMatchID *uuid.UUID `db:"next_match_id" json:"nextMatchId,omitempty"`
	NextSlot    *int       `db:"next_slot" json:"nextSlot,omitempty"`

	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduledTime,omitempty"`
	Venue         *string    `db:"venue" json:"venue,omitempty"`
}

// Ready reports whether both slots hold a participant.
func (m *Match) Ready() bool {
	return m.Participant1 != nil && m.Participant2 != nil
}

// Slot returns 1 or 2 for a participant of this match, 0 otherwise.
func (m *Match) Slot(ref ParticipantRef) int {
	switch {
	case m.Participant1 != nil && *m.Participant1 == ref:
		return 1
	case m.Participant2 != nil && *m.Participant2 == ref:
		return 2
	}
	return 0
}

// Loser returns the participant that did not win a decided match.
func (m *Match) Loser() *ParticipantRef {
	if m.Status != MatchCompleted || m.Winner == nil {
		return nil
	}
	if m.Slot(*m.Winner) == 1 {
		return m.Participant2
	}
	return m.Participant1
}

func (m *Match) IsWinner(slot int) bool {
	return m.Status == MatchCompleted && m.Winner != nil && m.Slot(*m.Winner) == slot
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchCompleted && m.Winner != nil && m.Slot(*m.Winner) != slot
}

func (m Match) clone() Match {
	c := m
	c.Participant1 = clonePtr(m.Participant1)
	c.Participant2 = clonePtr(m.Participant2)
	c.Winner = clonePtr(m.Winner)
	c.Score1 = clonePtr(m.Score1)
	c.Score2 = clonePtr(m.Score2)
	c.NextMatchID = clonePtr(m.NextMatchID)
	c.NextSlot = clonePtr(m.NextSlot)
	c.ScheduledTime = clonePtr(m.ScheduledTime)
	c.Venue = clonePtr(m.Venue)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
