package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/utils"
	"github.com/google/uuid"
)

type GenerateOptions struct {
	// GroupSize is required for group stage draws.
	GroupSize int
	// Slots places participants[i] into bracket slot Slots[i] for manual
	// single elimination seeding. Slots left empty become byes.
	Slots []int

	CreatedBy string
	Now       time.Time
	Rand      *rand.Rand
}

// Generate builds a draft draw with every match laid out. It has no side
// effects; persisting the result is up to the caller.
func Generate(eventID uuid.UUID, participants []bracket.ParticipantRef, drawType bracket.DrawType, seeding bracket.SeedingMethod, opts GenerateOptions) (*bracket.Draw, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("%w: event id is required", bracket.ErrInvalidConfiguration)
	}
	if !drawType.Valid() {
		return nil, fmt.Errorf("%w: unknown draw type %q", bracket.ErrInvalidConfiguration, drawType)
	}
	if !seeding.Valid() {
		return nil, fmt.Errorf("%w: unknown seeding method %q", bracket.ErrInvalidConfiguration, seeding)
	}
	if err := validateParticipants(participants); err != nil {
		return nil, err
	}
	if drawType == bracket.DoubleElimination {
		return nil, fmt.Errorf("%w: double elimination is not implemented", bracket.ErrUnsupported)
	}
	if len(opts.Slots) > 0 && (seeding != bracket.SeedManual || drawType != bracket.SingleElimination) {
		return nil, fmt.Errorf("%w: slot assignment needs manual seeding of a single elimination draw", bracket.ErrInvalidConfiguration)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	draw := &bracket.Draw{
		ID:            uuid.New(),
		EventID:       eventID,
		DrawType:      drawType,
		SeedingMethod: seeding,
		Participants:  seedParticipants(participants, seeding, opts.Rand),
		Status:        bracket.DrawDraft,
		TotalRounds:   1,
		CreatedAt:     now.UTC(),
		CreatedBy:     opts.CreatedBy,
	}

	var err error
	switch drawType {
	case bracket.SingleElimination:
		err = generateSingleElimination(draw, opts.Slots)
	case bracket.RoundRobin:
		draw.Matches = roundRobinMatches(draw.ID, draw.Participants, 0, 1)
	case bracket.GroupStage:
		draw.GroupSize = opts.GroupSize
		err = generateGroupStage(draw)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(draw.Matches, func(i, j int) bool {
		if draw.Matches[i].Round != draw.Matches[j].Round {
			return draw.Matches[i].Round < draw.Matches[j].Round
		}
		return draw.Matches[i].Position < draw.Matches[j].Position
	})
	return draw, nil
}

func validateParticipants(participants []bracket.ParticipantRef) error {
	if len(participants) == 0 {
		return fmt.Errorf("%w: no participants", bracket.ErrInvalidConfiguration)
	}
	if len(participants) < 2 {
		return fmt.Errorf("%w: at least 2 participants are required, got %d", bracket.ErrInvalidConfiguration, len(participants))
	}
	seen := make(map[bracket.ParticipantRef]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return fmt.Errorf("%w: empty participant reference", bracket.ErrInvalidConfiguration)
		}
		if seen[p] {
			return fmt.Errorf("%w: participant %q listed twice", bracket.ErrInvalidConfiguration, p)
		}
		seen[p] = true
	}
	return nil
}

// Ranked and manual keep the caller's order; random applies a uniform permutation.
func seedParticipants(participants []bracket.ParticipantRef, seeding bracket.SeedingMethod, r *rand.Rand) bracket.ParticipantList {
	seeded := append(bracket.ParticipantList(nil), participants...)
	if seeding != bracket.SeedRandom {
		return seeded
	}
	swap := func(i, j int) { seeded[i], seeded[j] = seeded[j], seeded[i] }
	if r != nil {
		r.Shuffle(len(seeded), swap)
	} else {
		rand.Shuffle(len(seeded), swap)
	}
	return seeded
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// fillSlots lays the seeded participants into the bracket slots. A full
// bracket pairs participants in seed order. When byes are needed the slots
// follow the standard bracket order and the top seeds take the byes.
func fillSlots(seeded bracket.ParticipantList, bracketSize int, assignment []int) ([]*bracket.ParticipantRef, error) {
	slots := make([]*bracket.ParticipantRef, bracketSize)

	if len(assignment) > 0 {
		if len(assignment) != len(seeded) {
			return nil, fmt.Errorf("%w: %d slots for %d participants", bracket.ErrInvalidConfiguration, len(assignment), len(seeded))
		}
		for i, slot := range assignment {
			if slot < 0 || slot >= bracketSize {
				return nil, fmt.Errorf("%w: slot %d outside bracket of %d", bracket.ErrInvalidConfiguration, slot, bracketSize)
			}
			if slots[slot] != nil {
				return nil, fmt.Errorf("%w: slot %d assigned twice", bracket.ErrInvalidConfiguration, slot)
			}
			slots[slot] = utils.Ptr(seeded[i])
		}
		return slots, nil
	}

	if len(seeded) == bracketSize {
		for i, p := range seeded {
			slots[i] = utils.Ptr(p)
		}
		return slots, nil
	}

	// Seed indices past the field are byes, so the top seeds sit out round 1
	// and seeds 1 and 2 land in opposite halves.
	for i, pair := range generateRound1Pairs(bracketSize) {
		for j, seed := range pair {
			if seed < len(seeded) {
				slots[2*i+j] = utils.Ptr(seeded[seed])
			}
		}
	}
	return slots, nil
}

// Standard bracket order: 0v7, 3v4, 1v6, 2v5 for a bracket of 8.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2
		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		pairs = append(pairs, [2]int{rounds[i], rounds[i+1]})
	}
	return pairs
}

// Generate bracket structure for single elimination
func generateSingleElimination(draw *bracket.Draw, assignment []int) error {
	bracketSize := calcBracketSize(len(draw.Participants))
	totalRounds := int(math.Log2(float64(bracketSize)))
	draw.TotalRounds = totalRounds

	slots, err := fillSlots(draw.Participants, bracketSize, assignment)
	if err != nil {
		return err
	}

	byRound := make(map[int][]*bracket.Match, totalRounds)
	nextRoundMatchIDs := make(map[int]uuid.UUID)

	// Significantly easier to start from the last round and work backwards
	for r := totalRounds; r >= 1; r-- {
		matchesInCurrentRound := int(math.Pow(2, float64(totalRounds-r)))
		currentRoundMatchIDs := make(map[int]uuid.UUID)

		for i := 0; i < matchesInCurrentRound; i++ {
			position := i + 1
			m := &bracket.Match{
				ID:       uuid.New(),
				DrawID:   draw.ID,
				Round:    r,
				Position: position,
				Status:   bracket.MatchPending,
			}

			if r < totalRounds {
				parentID := nextRoundMatchIDs[(position+1)/2]
				m.NextMatchID = &parentID

				if position%2 != 0 {
					m.NextSlot = utils.Ptr(1)
				} else {
					m.NextSlot = utils.Ptr(2)
				}
			}

			byRound[r] = append(byRound[r], m)
			currentRoundMatchIDs[position] = m.ID
		}
		nextRoundMatchIDs = currentRoundMatchIDs
	}

	skipped := make(map[uuid.UUID]bool)
	for i, m := range byRound[1] {
		p1, p2 := slots[2*i], slots[2*i+1]
		switch {
		case p1 != nil && p2 != nil:
			m.Participant1, m.Participant2 = p1, p2
		case p1 == nil && p2 == nil:
			return fmt.Errorf("%w: round 1 position %d has no participants", bracket.ErrInvalidConfiguration, m.Position)
		default:
			// A bye advances its occupant straight into round 2 without a match.
			occupant := p1
			if occupant == nil {
				occupant = p2
			}
			next := byRound[2][(m.Position+1)/2-1]
			if *m.NextSlot == 1 {
				next.Participant1 = occupant
			} else {
				next.Participant2 = occupant
			}
			skipped[m.ID] = true
		}
	}

	for r := 1; r <= totalRounds; r++ {
		for _, m := range byRound[r] {
			if !skipped[m.ID] {
				draw.Matches = append(draw.Matches, *m)
			}
		}
	}
	return nil
}

// roundRobinMatches pairs every participant with every other one. All
// matches share the given round; positions continue from firstPosition.
func roundRobinMatches(drawID uuid.UUID, members []bracket.ParticipantRef, group, firstPosition int) []bracket.Match {
	var matches []bracket.Match
	position := firstPosition
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			matches = append(matches, bracket.Match{
				ID:           uuid.New(),
				DrawID:       drawID,
				Round:        1,
				Position:     position,
				Group:        group,
				Participant1: utils.Ptr(members[i]),
				Participant2: utils.Ptr(members[j]),
				Status:       bracket.MatchPending,
			})
			position++
		}
	}
	return matches
}

// Seeds are dealt across groups so the strongest entries are kept apart.
func generateGroupStage(draw *bracket.Draw) error {
	if draw.GroupSize <= 0 {
		return fmt.Errorf("%w: group stage needs a group size", bracket.ErrUnsupported)
	}
	if draw.GroupSize < 2 {
		return fmt.Errorf("%w: group size must be at least 2", bracket.ErrInvalidConfiguration)
	}

	n := len(draw.Participants)
	numGroups := (n + draw.GroupSize - 1) / draw.GroupSize
	groups := make([][]bracket.ParticipantRef, numGroups)
	for i, p := range draw.Participants {
		groups[i%numGroups] = append(groups[i%numGroups], p)
	}

	position := 1
	for g, members := range groups {
		if len(members) < 2 {
			return fmt.Errorf("%w: group %d would have %d participant(s)", bracket.ErrInvalidConfiguration, g+1, len(members))
		}
		matches := roundRobinMatches(draw.ID, members, g+1, position)
		position += len(matches)
		draw.Matches = append(draw.Matches, matches...)
	}
	return nil
}
