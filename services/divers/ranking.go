package divers

import (
	"sort"
)

// Maximum attainable points per competition category, used to
// normalize raw score averages into 0-10 grades. Events outside this
// table produce no grade.
var maxPoints = map[string]float64{
	"Platform": 63,
	"3 Meter":  60,
	"1 Meter":  57,
}

type DirectionRanking struct {
	// weighted average over the top 2 dives, zero when the
	// direction has no scored dives
	Top2Avg *float64 `json:"top_2_avg"`
	// nil when the direction has no scored dives
	BestDiveID  *string  `json:"best_dive_id"`
	BestDiveAvg *float64 `json:"best_dive_avg"`
	// nil when the event has no max-points entry
	Grade *float64 `json:"grade"`
}

type EventRanking struct {
	Directions map[string]DirectionRanking `json:"directions"`
	// mean of the direction grades, absent when no direction
	// produced one
	AverageGrade *float64 `json:"average_grade,omitempty"`
}

type RankingSummary struct {
	Events              map[string]EventRanking `json:"events"`
	OverallAverageGrade float64                 `json:"overall_average_grade"`
}

type scoredDive struct {
	dive    string
	average float64
	count   int
}

// Rank derives the full ranking summary from a finalized scoreboard.
// Pure function of its input, so rankings can be recomputed from
// persisted scoreboards at any time without refetching.
func Rank(scoreboard Scoreboard) RankingSummary {
	summary := RankingSummary{
		Events: map[string]EventRanking{},
	}

	var totalGradeSum float64
	var totalGradeCount int

	for event, byDirection := range scoreboard {
		eventRanking := EventRanking{
			Directions: map[string]DirectionRanking{},
		}
		var gradeSum float64
		var gradeCount int

		for direction, dives := range byDirection {
			if direction == DirectionUnknown {
				continue
			}

			var scored []scoredDive
			for diveID, record := range dives.Dives {
				if record.Count == 0 {
					continue
				}
				scored = append(scored, scoredDive{
					dive:    diveID,
					average: record.AverageScore,
					count:   record.Count,
				})
			}

			if len(scored) == 0 {
				// a direction that exists is always ranked,
				// even when nothing under it ever scored
				zeroAvg, zeroBest, zeroGrade := 0.0, 0.0, 0.0
				eventRanking.Directions[direction] = DirectionRanking{
					Top2Avg:     &zeroAvg,
					BestDiveID:  nil,
					BestDiveAvg: &zeroBest,
					Grade:       &zeroGrade,
				}
				continue
			}

			sort.SliceStable(scored, func(i, j int) bool {
				return scored[i].average > scored[j].average
			})
			top := scored
			if len(top) > 2 {
				top = top[:2]
			}

			var weightedSum float64
			var totalCount int
			for _, d := range top {
				weightedSum += d.average * float64(d.count)
				totalCount += d.count
			}
			combined := weightedSum / float64(totalCount)
			best := top[0]

			ranking := DirectionRanking{}
			top2 := round2(combined)
			ranking.Top2Avg = &top2
			bestID := best.dive
			ranking.BestDiveID = &bestID
			bestAvg := round2(best.average)
			ranking.BestDiveAvg = &bestAvg

			if max, ok := maxPoints[event]; ok {
				grade := combined / max * 10
				rounded := round1(grade)
				ranking.Grade = &rounded
				// grade sums accumulate unrounded values, only
				// the reported figures are rounded
				gradeSum += grade
				gradeCount++
			}

			eventRanking.Directions[direction] = ranking
		}

		if gradeCount > 0 {
			eventAverage := gradeSum / float64(gradeCount)
			rounded := round1(eventAverage)
			eventRanking.AverageGrade = &rounded
			totalGradeSum += eventAverage
			totalGradeCount++
		}

		summary.Events[event] = eventRanking
	}

	if totalGradeCount > 0 {
		summary.OverallAverageGrade = round1(totalGradeSum / float64(totalGradeCount))
	}

	return summary
}
