package bracket

import "strconv"

// RoundLabel names an elimination round relative to the final.
func RoundLabel(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	}
	return "Round " + strconv.Itoa(round)
}

// GroupLabel turns a 1-based group number into "Group A", "Group B", ...
func GroupLabel(group int) string {
	if group <= 0 {
		return ""
	}
	if group <= 26 {
		return "Group " + string(rune('A'+group-1))
	}
	return "Group " + strconv.Itoa(group)
}
