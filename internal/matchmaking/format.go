// internal/matchmaking/format.go
package matchmaking

import "fmt"

// FormatElapsed renders a queue timer: "45s", "3m", "3m 5s", "1h 2m".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		m, s := seconds/60, seconds%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// FormatEstimate renders an estimate in minutes.
func FormatEstimate(minutes int) string {
	switch {
	case minutes < 1:
		return "<1 min"
	case minutes >= MaxEstimateMinutes:
		return fmt.Sprintf("%d+ min", MaxEstimateMinutes)
	default:
		return fmt.Sprintf("%d min", minutes)
	}
}
