// internal/matchmaking/score.go
package matchmaking

import (
	"math"

	"github.com/jason-s-yu/premade/internal/models"
	"github.com/jason-s-yu/premade/internal/rating"
)

const (
	roleOverlapPoints = 50
	exactRolePoints   = 20
	rankPoints        = 30
	tagPoints         = 10
	maxTagPoints      = 20

	MaxScore = 100
)

// Score rates how well a queued player fits a lobby, 0..100.
//
// The rank term always uses the lobby's bounds and the entry's rank for the
// lobby's mode, so a pair scores the same whichever side detected it.
func Score(lobby models.Lobby, entry models.QueueEntry) int {
	score := 0.0

	if RolesOverlap(lobby.PreferredRoles, entry.PreferredRoles) {
		score += roleOverlapPoints
		if sharesExactRole(lobby.PreferredRoles, entry.PreferredRoles) {
			score += exactRolePoints
		}
	}

	if r := entry.RankFor(lobby.GameMode); r != nil && lobby.RankMin != nil && lobby.RankMax != nil {
		score += rankScore(rating.Ordinal(*r), rating.Ordinal(*lobby.RankMin), rating.Ordinal(*lobby.RankMax))
	}

	if len(lobby.PlaystyleTags) > 0 && len(entry.PlaystyleTags) > 0 {
		score += math.Min(maxTagPoints, float64(sharedTags(lobby.PlaystyleTags, entry.PlaystyleTags)*tagPoints))
	}

	rounded := int(math.Round(score))
	return max(0, min(MaxScore, rounded))
}

// rankScore awards up to rankPoints for sitting near the center of [low, high].
// A collapsed range gives full points on the exact rank and none elsewhere.
func rankScore(v, low, high int) float64 {
	center := float64(low+high) / 2
	distance := math.Abs(float64(v) - center)
	maxDistance := math.Max(center-float64(low), float64(high)-center)

	var ratio float64
	switch {
	case maxDistance > 0:
		ratio = distance / maxDistance
	case distance == 0:
		ratio = 0
	default:
		ratio = 1
	}
	return math.Max(0, rankPoints-ratio*rankPoints)
}
