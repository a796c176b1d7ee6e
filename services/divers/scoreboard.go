package divers

import (
	"math"

	"divescore-backend/lib/scrapers/divemeets"
)

// Direction a dive code's first character encodes.
const (
	DirectionFront    = "Front"
	DirectionBack     = "Back"
	DirectionReverse  = "Reverse"
	DirectionInward   = "Inward"
	DirectionTwister  = "Twister"
	DirectionArmstand = "Armstand"
	DirectionUnknown  = "Unknown"
)

var directions = map[byte]string{
	'1': DirectionFront,
	'2': DirectionBack,
	'3': DirectionReverse,
	'4': DirectionInward,
	'5': DirectionTwister,
	'6': DirectionArmstand,
}

// DirectionForDive maps a dive code to its direction name, falling
// back to Unknown for unrecognized prefixes.
func DirectionForDive(dive string) string {
	if dive == "" {
		return DirectionUnknown
	}
	direction, ok := directions[dive[0]]
	if !ok {
		return DirectionUnknown
	}
	return direction
}

// EventForHeight maps a board/platform height to its competition
// category. All platform heights collapse into one event.
func EventForHeight(height string) string {
	switch height {
	case "5", "7", "7.5", "10":
		return "Platform"
	default:
		return height + " Meter"
	}
}

type DiveRecord struct {
	Dive   string `json:"dive_number"`
	Height string `json:"height"`
	// nil when the (dive, height) pair is absent from the
	// difficulty table
	DD           *float64               `json:"dd"`
	Performances []divemeets.Performance `json:"performance"`
	Count        int                     `json:"count"`
	AverageScore float64                 `json:"average_score"`
}

type DirectionDives struct {
	Dives map[string]*DiveRecord `json:"dives"`
}

// Scoreboard is the canonical event -> direction -> dive nesting.
// Exactly one DiveRecord exists per (event, direction, dive) triple,
// no matter how many partial fetches contributed to it.
type Scoreboard map[string]map[string]*DirectionDives

// Merge folds one (dive, height) fetch result into the scoreboard.
// The DiveRecord is created on first sight, carrying the difficulty
// lookup result; later merges for the same dive code only append
// performances. Safe to call with results in any completion order.
func (s Scoreboard) Merge(dd *DifficultyTable, dive, height string, entries []divemeets.Performance) {
	if len(entries) == 0 {
		return
	}

	event := EventForHeight(height)
	direction := DirectionForDive(dive)

	byDirection, ok := s[event]
	if !ok {
		byDirection = map[string]*DirectionDives{}
		s[event] = byDirection
	}
	dives, ok := byDirection[direction]
	if !ok {
		dives = &DirectionDives{Dives: map[string]*DiveRecord{}}
		byDirection[direction] = dives
	}
	record, ok := dives.Dives[dive]
	if !ok {
		record = &DiveRecord{
			Dive:   dive,
			Height: height,
		}
		if coefficient, found := dd.Lookup(dive, height); found {
			record.DD = &coefficient
		}
		dives.Dives[dive] = record
	}

	record.Performances = append(record.Performances, entries...)
}

// Finalize recomputes the derived count/average of every record.
// Idempotent, run it after the last merge for a diver.
func (s Scoreboard) Finalize() {
	for _, byDirection := range s {
		for _, dives := range byDirection {
			for _, record := range dives.Dives {
				record.Count = len(record.Performances)
				if record.Count == 0 {
					record.AverageScore = 0
					continue
				}
				var sum float64
				for _, p := range record.Performances {
					sum += p.Score
				}
				record.AverageScore = round2(sum / float64(record.Count))
			}
		}
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
