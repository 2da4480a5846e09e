package bracket

import (
	"sort"

	"github.com/google/uuid"
)

const (
	pointsWin = 3
	pointsTie = 1
)

type StandingRow struct {
	Participant ParticipantRef `json:"participant"`
	Group       int            `json:"group,omitempty"`
	Rank        int            `json:"rank"`
	Played      int            `json:"played"`
	Wins        int            `json:"wins"`
	Ties        int            `json:"ties"`
	Losses      int            `json:"losses"`
	Points      int            `json:"points"`
}

// Standings is the result summary handed to result and certificate consumers.
// Elimination draws have no third place: only the final is played out.
type Standings struct {
	DrawID   uuid.UUID       `json:"drawId"`
	EventID  uuid.UUID       `json:"eventId"`
	DrawType DrawType        `json:"drawType"`
	Winner   *ParticipantRef `json:"winner,omitempty"`
	RunnerUp *ParticipantRef `json:"runnerUp,omitempty"`
	Table    []StandingRow   `json:"table,omitempty"`
}

func (d *Draw) Standings() Standings {
	s := Standings{DrawID: d.ID, EventID: d.EventID, DrawType: d.DrawType}

	if d.DrawType.IsElimination() {
		final, ok := d.MatchAt(d.TotalRounds, 1)
		if ok && final.Status == MatchCompleted && final.Winner != nil {
			s.Winner = clonePtr(final.Winner)
			s.RunnerUp = clonePtr(final.Loser())
		}
		return s
	}

	s.Table = d.table()
	if d.Status == DrawCompleted && singleGroup(s.Table) {
		if len(s.Table) > 0 {
			s.Winner = clonePtr(&s.Table[0].Participant)
		}
		if len(s.Table) > 1 {
			s.RunnerUp = clonePtr(&s.Table[1].Participant)
		}
	}
	return s
}

func (d *Draw) table() []StandingRow {
	seed := make(map[ParticipantRef]int, len(d.Participants))
	rows := make(map[ParticipantRef]*StandingRow, len(d.Participants))
	for i, p := range d.Participants {
		seed[p] = i
		rows[p] = &StandingRow{Participant: p}
	}

	for i := range d.Matches {
		m := &d.Matches[i]
		for _, ref := range []*ParticipantRef{m.Participant1, m.Participant2} {
			if ref == nil {
				continue
			}
			if row, ok := rows[*ref]; ok {
				row.Group = m.Group
			}
		}
		if m.Status != MatchCompleted || !m.Ready() {
			continue
		}

		r1, r2 := rows[*m.Participant1], rows[*m.Participant2]
		if r1 == nil || r2 == nil {
			continue
		}
		r1.Played++
		r2.Played++
		switch {
		case m.Winner == nil:
			r1.Ties++
			r2.Ties++
			r1.Points += pointsTie
			r2.Points += pointsTie
		case *m.Winner == *m.Participant1:
			r1.Wins++
			r2.Losses++
			r1.Points += pointsWin
		default:
			r2.Wins++
			r1.Losses++
			r2.Points += pointsWin
		}
	}

	table := make([]StandingRow, 0, len(rows))
	for _, p := range d.Participants {
		table = append(table, *rows[p])
	}
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return seed[a.Participant] < seed[b.Participant]
	})

	rank := 0
	for i := range table {
		if i == 0 || table[i].Group != table[i-1].Group {
			rank = 0
		}
		rank++
		table[i].Rank = rank
	}
	return table
}

func singleGroup(table []StandingRow) bool {
	for i := 1; i < len(table); i++ {
		if table[i].Group != table[0].Group {
			return false
		}
	}
	return true
}
