package bracket

import (
	"time"

	"github.com/google/uuid"
)

type DrawStatus string

const (
	DrawDraft     DrawStatus = "draft"
	DrawPublished DrawStatus = "published"
	DrawOngoing   DrawStatus = "ongoing"
	DrawCompleted DrawStatus = "completed"
)

type DrawType string

const (
	SingleElimination DrawType = "single_elimination"
	DoubleElimination DrawType = "double_elimination"
	RoundRobin        DrawType = "round_robin"
	GroupStage        DrawType = "group_stage"
)

func (t DrawType) Valid() bool {
	switch t {
	case SingleElimination, DoubleElimination, RoundRobin, GroupStage:
		return true
	}
	return false
}

// IsElimination reports whether winners propagate through a bracket tree.
func (t DrawType) IsElimination() bool {
	return t == SingleElimination || t == DoubleElimination
}

type SeedingMethod string

const (
	SeedRandom SeedingMethod = "random"
	SeedRanked SeedingMethod = "ranked"
	SeedManual SeedingMethod = "manual"
)

func (m SeedingMethod) Valid() bool {
	switch m {
	case SeedRandom, SeedRanked, SeedManual:
		return true
	}
	return false
}

type Draw struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	EventID       uuid.UUID       `db:"event_id" json:"eventId"`
	DrawType      DrawType        `db:"draw_type" json:"drawType"`
	SeedingMethod SeedingMethod   `db:"seeding_method" json:"seedingMethod"`
	GroupSize     int             `db:"group_size" json:"groupSize,omitempty"`
	Participants  ParticipantList `db:"participants" json:"participants"`
	Status        DrawStatus      `db:"status" json:"status"`
	TotalRounds   int             `db:"total_rounds" json:"totalRounds"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	CreatedBy     string          `db:"created_by" json:"createdBy"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	Version       int             `db:"version" json:"version"`

	Matches []Match `db:"-" json:"matches"`
}

func (d *Draw) Match(id uuid.UUID) (*Match, bool) {
	for i := range d.Matches {
		if d.Matches[i].ID == id {
			return &d.Matches[i], true
		}
	}
	return nil, false
}

func (d *Draw) MatchAt(round, position int) (*Match, bool) {
	for i := range d.Matches {
		if d.Matches[i].Round == round && d.Matches[i].Position == position {
			return &d.Matches[i], true
		}
	}
	return nil, false
}

// IsFinal reports whether m is the root of an elimination bracket.
func (d *Draw) IsFinal(m *Match) bool {
	return d.DrawType.IsElimination() && m.Round == d.TotalRounds && m.Position == 1
}

// Clone returns a deep copy so a transition can be validated and applied
// without touching the caller's aggregate.
func (d *Draw) Clone() *Draw {
	c := *d
	c.Participants = append(ParticipantList(nil), d.Participants...)
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		c.CompletedAt = &t
	}
	if d.Matches != nil {
		c.Matches = make([]Match, len(d.Matches))
		for i := range d.Matches {
			c.Matches[i] = d.Matches[i].clone()
		}
	}
	return &c
}
