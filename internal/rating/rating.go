// internal/rating/rating.go
package rating

import (
	"math"

	"github.com/jason-s-yu/premade/internal/models"
)

var ordinals = func() map[models.Rank]int {
	m := make(map[models.Rank]int, len(models.Ranks))
	for i, r := range models.Ranks {
		m[r] = i + 1
	}
	return m
}()

// Ordinal maps a rank onto 1 (iron) .. 10 (challenger). Unknown ranks map to 0.
func Ordinal(r models.Rank) int {
	return ordinals[r]
}

// InRange reports whether rank sits inside [min, max]. A nil bound is open,
// and a nil rank always passes.
func InRange(rank, min, max *models.Rank) bool {
	if rank == nil {
		return true
	}
	v := Ordinal(*rank)
	if min != nil && v < Ordinal(*min) {
		return false
	}
	if max != nil && v > Ordinal(*max) {
		return false
	}
	return true
}

// Reputation summarizes the evaluations a user has received.
type Reputation struct {
	Evaluations int     `json:"evaluations"`
	Reports     int     `json:"reports"`
	Average     float64 `json:"average"`
}

// Summarize averages ratings across non-report evaluations, to one decimal place.
// Reports are counted separately and never affect the average.
func Summarize(evals []models.Evaluation) Reputation {
	var rep Reputation
	sum := 0
	for _, e := range evals {
		if e.IsReport {
			rep.Reports++
			continue
		}
		if e.Rating < 1 {
			continue
		}
		rep.Evaluations++
		sum += e.Rating
	}
	if rep.Evaluations > 0 {
		rep.Average = math.Round(float64(sum)/float64(rep.Evaluations)*10) / 10
	}
	return rep
}
