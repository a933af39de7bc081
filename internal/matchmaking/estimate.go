// internal/matchmaking/estimate.go
package matchmaking

import (
	"time"

	"github.com/jason-s-yu/premade/internal/models"
)

// Confidence qualifies a wait estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

const (
	// MaxEstimateMinutes caps every estimate.
	MaxEstimateMinutes = 30
	// DefaultSlotsNeeded applies when the caller does not know how many slots are open.
	DefaultSlotsNeeded = 4

	// EstimateLobbyLimit and EstimateQueueLimit bound the rows counted per refresh.
	EstimateLobbyLimit = 20
	EstimateQueueLimit = 50
)

// Estimate is a predicted wait.
type Estimate struct {
	Minutes    int        `json:"minutes"`
	Confidence Confidence `json:"confidence"`
}

// Counts are the compatible-population figures an estimate is based on.
type Counts struct {
	CompatiblePlayers int `json:"compatible_players"`
	CompatibleLobbies int `json:"compatible_lobbies"`
	QueueDepth        int `json:"queue_depth"`
}

// Viewer describes who is asking for the estimate.
type Viewer struct {
	IsLobbyCreator bool
	SlotsNeeded    int
	GameMode       models.GameMode
}

// EstimateWait predicts the wait for a lobby creator filling slots or for a
// queued player looking for a lobby.
func EstimateWait(c Counts, v Viewer) Estimate {
	var est Estimate
	if v.IsLobbyCreator {
		slots := v.SlotsNeeded
		if slots <= 0 {
			slots = DefaultSlotsNeeded
		}
		switch {
		case c.CompatiblePlayers >= slots:
			est = Estimate{2, ConfidenceHigh}
		case c.CompatiblePlayers >= (slots+1)/2:
			est = Estimate{8, ConfidenceMedium}
		case c.CompatiblePlayers > 0:
			est = Estimate{20, ConfidenceLow}
		default:
			est = Estimate{30, ConfidenceLow}
		}
	} else {
		switch {
		case c.CompatibleLobbies >= 3:
			est = Estimate{1, ConfidenceHigh}
		case c.CompatibleLobbies >= 1:
			est = Estimate{5, ConfidenceMedium}
		case c.QueueDepth >= 10:
			est = Estimate{12, ConfidenceMedium}
		case c.QueueDepth >= 5:
			est = Estimate{18, ConfidenceLow}
		default:
			est = Estimate{30, ConfidenceLow}
		}
	}
	est.Minutes = min(est.Minutes, MaxEstimateMinutes)
	return est
}

// FallbackEstimate is used when the population counts cannot be loaded.
func FallbackEstimate(mode models.GameMode) Estimate {
	switch mode {
	case models.ModeRankedSoloDuo:
		return Estimate{8, ConfidenceMedium}
	case models.ModeRankedFlex:
		return Estimate{12, ConfidenceMedium}
	case models.ModeNormalDraft:
		return Estimate{5, ConfidenceMedium}
	case models.ModeARAM:
		return Estimate{3, ConfidenceHigh}
	default:
		return Estimate{10, ConfidenceMedium}
	}
}

// QueueClock measures time spent waiting since Start.
type QueueClock struct {
	Start time.Time
}

// ElapsedSeconds returns whole seconds since Start, never negative.
func (c QueueClock) ElapsedSeconds(now time.Time) int {
	d := now.Sub(c.Start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// Forecast is an estimate plus the figures behind it.
type Forecast struct {
	Estimate
	Counts
	Label string `json:"label"`
	// Fallback is set when the counts could not be loaded.
	Fallback bool `json:"fallback"`
}

// NewForecast computes a forecast from counts.
func NewForecast(c Counts, v Viewer) Forecast {
	est := EstimateWait(c, v)
	return Forecast{Estimate: est, Counts: c, Label: FormatEstimate(est.Minutes)}
}

// FallbackForecast is the forecast used when counts are unavailable.
func FallbackForecast(mode models.GameMode) Forecast {
	est := FallbackEstimate(mode)
	return Forecast{Estimate: est, Label: FormatEstimate(est.Minutes), Fallback: true}
}
