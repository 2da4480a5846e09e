package views

import (
	"sort"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
)

type RoundColumn struct {
	Round   int
	Label   string
	Matches []bracket.Match
}

// Section is one bracket tree, or one group of a group stage draw.
type Section struct {
	Group  int
	Title  string
	Rounds []RoundColumn
}

type BracketData struct {
	Draw     *bracket.Draw
	Sections []Section
}

func PrepareBracketData(draw *bracket.Draw) BracketData {
	byGroup := make(map[int]map[int][]bracket.Match)
	var groupNums []int

	for _, m := range draw.Matches {
		rounds, exists := byGroup[m.Group]
		if !exists {
			rounds = make(map[int][]bracket.Match)
			byGroup[m.Group] = rounds
			groupNums = append(groupNums, m.Group)
		}
		rounds[m.Round] = append(rounds[m.Round], m)
	}
	sort.Ints(groupNums)

	sections := make([]Section, 0, len(groupNums))
	for _, g := range groupNums {
		rounds := byGroup[g]
		roundNums := make([]int, 0, len(rounds))
		for r := range rounds {
			roundNums = append(roundNums, r)
		}
		sort.Ints(roundNums)

		section := Section{Group: g, Title: sectionTitle(draw, g)}
		for _, r := range roundNums {
			matches := rounds[r]
			sort.Slice(matches, func(i, j int) bool {
				return matches[i].Position < matches[j].Position
			})
			section.Rounds = append(section.Rounds, RoundColumn{
				Round:   r,
				Label:   roundTitle(draw, r),
				Matches: matches,
			})
		}
		sections = append(sections, section)
	}

	return BracketData{Draw: draw, Sections: sections}
}

func sectionTitle(draw *bracket.Draw, group int) string {
	if group > 0 {
		return bracket.GroupLabel(group)
	}
	if draw.DrawType.IsElimination() {
		return "Bracket"
	}
	return "Matches"
}

func roundTitle(draw *bracket.Draw, round int) string {
	if draw.DrawType.IsElimination() {
		return bracket.RoundLabel(round, draw.TotalRounds)
	}
	return "All Matches"
}
