package divers

import (
	"encoding/json"
	"math/rand"
	"testing"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEventForHeight(t *testing.T) {
	cases := []struct {
		height   string
		expected string
	}{
		{"1", "1 Meter"},
		{"3", "3 Meter"},
		{"5", "Platform"},
		{"7", "Platform"},
		{"7.5", "Platform"},
		{"10", "Platform"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, EventForHeight(test.height))
	}
}

func TestDirectionForDive(t *testing.T) {
	cases := []struct {
		dive     string
		expected string
	}{
		{"103B", DirectionFront},
		{"203B", DirectionBack},
		{"303C", DirectionReverse},
		{"403B", DirectionInward},
		{"5132D", DirectionTwister},
		{"612B", DirectionArmstand},
		{"903Z", DirectionUnknown},
		{"", DirectionUnknown},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, DirectionForDive(test.dive))
	}
}

type pairResult struct {
	dive    string
	height  string
	entries []divemeets.Performance
}

func fixtureResults() []pairResult {
	return []pairResult{
		{
			dive:   "103B",
			height: "1",
			entries: []divemeets.Performance{
				{Date: "2023-08-05", Score: 6.5, Meet: "Spring Invitational"},
				{Date: "2022-07-12", Score: 5.85, Meet: "Regionals"},
			},
		},
		{
			dive:   "203B",
			height: "3",
			entries: []divemeets.Performance{
				{Date: "2023-08-05", Score: 7, Meet: "Spring Invitational"},
			},
		},
		{
			dive:   "107B",
			height: "7.5",
			entries: []divemeets.Performance{
				{Date: "2024-01-20", Score: 5.5, Meet: "Winter Open"},
			},
		},
		{
			dive:    "403B",
			height:  "1",
			entries: nil,
		},
	}
}

func buildScoreboard(t *testing.T, results []pairResult) Scoreboard {
	dd, err := LoadDifficultyTable()
	require.NoError(t, err)

	scoreboard := Scoreboard{}
	for _, r := range results {
		scoreboard.Merge(dd, r.dive, r.height, r.entries)
	}
	scoreboard.Finalize()
	return scoreboard
}

func TestMergeNesting(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:divers")
	defer cleanup()

	scoreboard := buildScoreboard(t, fixtureResults())

	record := scoreboard["1 Meter"][DirectionFront].Dives["103B"]
	require.NotNil(t, record)
	require.Equal(t, 2, record.Count)
	// (6.5 + 5.85) / 2 rounds down on the float64 representation
	require.Equal(t, 6.17, record.AverageScore)
	require.NotNil(t, record.DD)
	require.Equal(t, 1.7, *record.DD)

	platform := scoreboard["Platform"][DirectionFront].Dives["107B"]
	require.NotNil(t, platform)
	require.Equal(t, "7.5", platform.Height)

	// the empty 403B contribution must not create anything
	_, ok := scoreboard["1 Meter"][DirectionInward]
	require.False(t, ok)
}

func TestMergeOrderIndependent(t *testing.T) {
	reference := buildScoreboard(t, fixtureResults())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := fixtureResults()
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		permuted := buildScoreboard(t, shuffled)

		diff := cmp.Diff(reference, permuted)
		require.Empty(t, diff)
	}
}

func TestMergeAdditive(t *testing.T) {
	dd, err := LoadDifficultyTable()
	require.NoError(t, err)

	first := []divemeets.Performance{
		{Date: "2023-08-05", Score: 6.5, Meet: "Spring Invitational"},
	}
	second := []divemeets.Performance{
		{Date: "2022-07-12", Score: 5.85, Meet: "Regionals"},
		{Date: "2021-06-30", Score: 6, Meet: "Summer Classic"},
	}

	scoreboard := Scoreboard{}
	scoreboard.Merge(dd, "103B", "1", first)
	scoreboard.Merge(dd, "103B", "1", second)
	scoreboard.Finalize()

	record := scoreboard["1 Meter"][DirectionFront].Dives["103B"]
	require.Equal(t, 3, record.Count)
	require.Equal(t, append(first, second...), record.Performances)
}

func TestFinalizeIdempotent(t *testing.T) {
	scoreboard := buildScoreboard(t, fixtureResults())
	before, err := json.Marshal(scoreboard)
	require.NoError(t, err)

	scoreboard.Finalize()
	after, err := json.Marshal(scoreboard)
	require.NoError(t, err)

	require.Equal(t, string(before), string(after))
}

func TestUnknownDifficultyIsNil(t *testing.T) {
	dd, err := LoadDifficultyTable()
	require.NoError(t, err)

	scoreboard := Scoreboard{}
	scoreboard.Merge(dd, "913Z", "3", []divemeets.Performance{
		{Score: 5, Meet: "Somewhere"},
	})
	scoreboard.Finalize()

	record := scoreboard["3 Meter"][DirectionUnknown].Dives["913Z"]
	require.Nil(t, record.DD)
}
