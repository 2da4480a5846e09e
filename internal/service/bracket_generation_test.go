package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParticipants returns n distinct school team names.
func fakeParticipants(t *testing.T, n int) []bracket.ParticipantRef {
	t.Helper()
	faker := gofakeit.New(uint64(n))
	seen := make(map[bracket.ParticipantRef]bool, n)
	out := make([]bracket.ParticipantRef, 0, n)
	for len(out) < n {
		ref := bracket.ParticipantRef(fmt.Sprintf("%s %s #%d", faker.City(), faker.Animal(), len(out)+1))
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

func TestCalcBracketSize(t *testing.T) {
	testCases := []struct {
		count    int
		expected int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{8, 8},
		{9, 16},
		{33, 64},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d entries", tc.count), func(t *testing.T) {
			assert.Equal(t, tc.expected, calcBracketSize(tc.count))
		})
	}
}

func TestGenerateSingleEliminationShape(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			participants := fakeParticipants(t, n)
			draw, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{})
			require.NoError(t, err)

			expectedRounds := int(math.Ceil(math.Log2(float64(n))))
			assert.Equal(t, expectedRounds, draw.TotalRounds)
			assert.Len(t, draw.Matches, n-1)
			assert.Equal(t, bracket.DrawDraft, draw.Status)

			finals := 0
			ids := make(map[uuid.UUID]bool)
			placed := make(map[bracket.ParticipantRef]int)
			for _, m := range draw.Matches {
				ids[m.ID] = true
				assert.Equal(t, draw.ID, m.DrawID)
				assert.Equal(t, bracket.MatchPending, m.Status)
				assert.Nil(t, m.Winner)
				if draw.IsFinal(&m) {
					finals++
					assert.Nil(t, m.NextMatchID)
				}
				for _, p := range []*bracket.ParticipantRef{m.Participant1, m.Participant2} {
					if p != nil {
						placed[*p]++
					}
				}
				if m.Round > 2 {
					assert.Nil(t, m.Participant1, "later rounds start empty")
					assert.Nil(t, m.Participant2, "later rounds start empty")
				}
			}
			assert.Equal(t, 1, finals)

			// Every participant appears exactly once before play starts.
			assert.Len(t, placed, n)
			for p, count := range placed {
				assert.Equal(t, 1, count, "participant %s placed %d times", p, count)
			}

			for _, m := range draw.Matches {
				if m.NextMatchID == nil {
					continue
				}
				assert.True(t, ids[*m.NextMatchID], "next match must exist")
				next, ok := draw.Match(*m.NextMatchID)
				require.True(t, ok)
				assert.Equal(t, m.Round+1, next.Round)
				assert.Equal(t, (m.Position+1)/2, next.Position)
			}
		})
	}
}

func TestGenerateByesGoToTopSeeds(t *testing.T) {
	participants := []bracket.ParticipantRef{"A", "B", "C", "D", "E", "F"}
	draw, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{})
	require.NoError(t, err)

	// 8 slots in standard order, 2 byes for A and B.
	require.Len(t, draw.Matches, 5)
	_, ok := draw.MatchAt(1, 1)
	assert.False(t, ok, "bye pairs create no match")
	_, ok = draw.MatchAt(1, 3)
	assert.False(t, ok)

	r1p2, ok := draw.MatchAt(1, 2)
	require.True(t, ok)
	assert.Equal(t, "D", string(*r1p2.Participant1))
	assert.Equal(t, "E", string(*r1p2.Participant2))

	r1p4, ok := draw.MatchAt(1, 4)
	require.True(t, ok)
	assert.Equal(t, "C", string(*r1p4.Participant1))
	assert.Equal(t, "F", string(*r1p4.Participant2))

	r2p1, ok := draw.MatchAt(2, 1)
	require.True(t, ok)
	assert.Equal(t, "A", string(*r2p1.Participant1))
	assert.Nil(t, r2p1.Participant2)
	assert.False(t, r2p1.Ready())

	r2p2, ok := draw.MatchAt(2, 2)
	require.True(t, ok)
	assert.Equal(t, "B", string(*r2p2.Participant1))
	assert.Nil(t, r2p2.Participant2)
}

func TestGenerateRound1Pairs(t *testing.T) {
	assert.Equal(t, [][2]int{}, generateRound1Pairs(0))
	assert.Equal(t, [][2]int{{0, 1}}, generateRound1Pairs(2))
	assert.Equal(t, [][2]int{{0, 3}, {1, 2}}, generateRound1Pairs(4))
	assert.Equal(t, [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}}, generateRound1Pairs(8))
}

// firstMatch returns the earliest match a participant is placed in.
func firstMatch(t *testing.T, draw *bracket.Draw, p bracket.ParticipantRef) *bracket.Match {
	t.Helper()
	for i := range draw.Matches {
		m := &draw.Matches[i]
		if (m.Participant1 != nil && *m.Participant1 == p) || (m.Participant2 != nil && *m.Participant2 == p) {
			return m
		}
	}
	t.Fatalf("participant %s not placed", p)
	return nil
}

func TestGenerateTopSeedsMeetOnlyInFinal(t *testing.T) {
	for n := 3; n <= 33; n++ {
		if n&(n-1) == 0 {
			continue
		}
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			participants := fakeParticipants(t, n)
			draw, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{})
			require.NoError(t, err)

			path := make(map[uuid.UUID]bool)
			for m := firstMatch(t, draw, participants[0]); ; {
				path[m.ID] = true
				if m.NextMatchID == nil {
					break
				}
				next, ok := draw.Match(*m.NextMatchID)
				require.True(t, ok)
				m = next
			}

			m := firstMatch(t, draw, participants[1])
			for !path[m.ID] {
				require.NotNil(t, m.NextMatchID)
				next, ok := draw.Match(*m.NextMatchID)
				require.True(t, ok)
				m = next
			}
			assert.True(t, draw.IsFinal(m), "seeds 1 and 2 first meet in round %d", m.Round)
		})
	}
}

func TestGenerateManualSlots(t *testing.T) {
	participants := []bracket.ParticipantRef{"A", "B", "C"}

	draw, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedManual,
		GenerateOptions{Slots: []int{0, 2, 3}})
	require.NoError(t, err)
	require.Len(t, draw.Matches, 2)

	semi, ok := draw.MatchAt(1, 2)
	require.True(t, ok)
	assert.Equal(t, "B", string(*semi.Participant1))
	assert.Equal(t, "C", string(*semi.Participant2))

	final, ok := draw.MatchAt(2, 1)
	require.True(t, ok)
	assert.Equal(t, "A", string(*final.Participant1))
	assert.Nil(t, final.Participant2)

	five := []bracket.ParticipantRef{"A", "B", "C", "D", "E"}
	testCases := []struct {
		name         string
		participants []bracket.ParticipantRef
		slots        []int
	}{
		{"empty pair", five, []int{0, 1, 2, 3, 4}},
		{"slot outside bracket", participants, []int{0, 1, 4}},
		{"slot reused", participants, []int{0, 0, 2}},
		{"too few slots", participants, []int{0, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(uuid.New(), tc.participants, bracket.SingleElimination, bracket.SeedManual,
				GenerateOptions{Slots: tc.slots})
			assert.ErrorIs(t, err, bracket.ErrInvalidConfiguration)
		})
	}
}

func TestGenerateRoundRobin(t *testing.T) {
	for n := 2; n <= 10; n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			participants := fakeParticipants(t, n)
			draw, err := Generate(uuid.New(), participants, bracket.RoundRobin, bracket.SeedRanked, GenerateOptions{})
			require.NoError(t, err)

			assert.Equal(t, 1, draw.TotalRounds)
			require.Len(t, draw.Matches, n*(n-1)/2)

			pairs := make(map[[2]bracket.ParticipantRef]bool)
			for i, m := range draw.Matches {
				assert.Equal(t, 1, m.Round)
				assert.Equal(t, i+1, m.Position)
				assert.Zero(t, m.Group)
				assert.Nil(t, m.NextMatchID)
				require.True(t, m.Ready())

				key := [2]bracket.ParticipantRef{*m.Participant1, *m.Participant2}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				assert.False(t, pairs[key], "pair played twice")
				pairs[key] = true
			}
		})
	}
}

func TestGenerateGroupStage(t *testing.T) {
	participants := []bracket.ParticipantRef{"A", "B", "C", "D", "E", "F", "G"}
	draw, err := Generate(uuid.New(), participants, bracket.GroupStage, bracket.SeedRanked, GenerateOptions{GroupSize: 4})
	require.NoError(t, err)

	// Two groups: A C E G and B D F.
	assert.Equal(t, 4, draw.GroupSize)
	require.Len(t, draw.Matches, 6+3)

	members := make(map[int]map[bracket.ParticipantRef]bool)
	for i, m := range draw.Matches {
		assert.Equal(t, i+1, m.Position)
		if members[m.Group] == nil {
			members[m.Group] = make(map[bracket.ParticipantRef]bool)
		}
		members[m.Group][*m.Participant1] = true
		members[m.Group][*m.Participant2] = true
	}
	assert.Equal(t, map[bracket.ParticipantRef]bool{"A": true, "C": true, "E": true, "G": true}, members[1])
	assert.Equal(t, map[bracket.ParticipantRef]bool{"B": true, "D": true, "F": true}, members[2])
}

func TestGenerateErrors(t *testing.T) {
	eventID := uuid.New()
	four := []bracket.ParticipantRef{"A", "B", "C", "D"}

	testCases := []struct {
		name         string
		eventID      uuid.UUID
		participants []bracket.ParticipantRef
		drawType     bracket.DrawType
		seeding      bracket.SeedingMethod
		opts         GenerateOptions
		want         error
	}{
		{"no participants", eventID, nil, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"single participant", eventID, four[:1], bracket.RoundRobin, bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"duplicate participant", eventID, []bracket.ParticipantRef{"A", "A"}, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"empty participant", eventID, []bracket.ParticipantRef{"A", ""}, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"missing event", uuid.Nil, four, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"unknown draw type", eventID, four, "swiss", bracket.SeedRanked, GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"unknown seeding", eventID, four, bracket.RoundRobin, "alphabetical", GenerateOptions{}, bracket.ErrInvalidConfiguration},
		{"double elimination", eventID, four, bracket.DoubleElimination, bracket.SeedRanked, GenerateOptions{}, bracket.ErrUnsupported},
		{"group stage without size", eventID, four, bracket.GroupStage, bracket.SeedRanked, GenerateOptions{}, bracket.ErrUnsupported},
		{"group size of one", eventID, four, bracket.GroupStage, bracket.SeedRanked, GenerateOptions{GroupSize: 1}, bracket.ErrInvalidConfiguration},
		{"group left with one member", eventID, four[:3], bracket.GroupStage, bracket.SeedRanked, GenerateOptions{GroupSize: 2}, bracket.ErrInvalidConfiguration},
		{"slots without manual seeding", eventID, four, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{Slots: []int{0, 1, 2, 3}}, bracket.ErrInvalidConfiguration},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			draw, err := Generate(tc.eventID, tc.participants, tc.drawType, tc.seeding, tc.opts)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, draw)
		})
	}
}

func TestRandomSeedingIsAPermutation(t *testing.T) {
	participants := fakeParticipants(t, 16)
	r := rand.New(rand.NewPCG(1, 2))

	draw, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRandom, GenerateOptions{Rand: r})
	require.NoError(t, err)
	assert.ElementsMatch(t, participants, []bracket.ParticipantRef(draw.Participants))

	again, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRandom,
		GenerateOptions{Rand: rand.New(rand.NewPCG(1, 2))})
	require.NoError(t, err)
	assert.Equal(t, draw.Participants, again.Participants, "same source, same order")

	ranked, err := Generate(uuid.New(), participants, bracket.SingleElimination, bracket.SeedRanked, GenerateOptions{Rand: r})
	require.NoError(t, err)
	assert.Equal(t, participants, []bracket.ParticipantRef(ranked.Participants))
}
