package rating

import (
	"testing"

	"github.com/jason-s-yu/premade/internal/models"
	"github.com/stretchr/testify/assert"
)

func rank(r models.Rank) *models.Rank { return &r }

func TestOrdinalOrder(t *testing.T) {
	assert.Equal(t, 1, Ordinal(models.RankIron))
	assert.Equal(t, 4, Ordinal(models.RankGold))
	assert.Equal(t, 6, Ordinal(models.RankEmerald))
	assert.Equal(t, 10, Ordinal(models.RankChallenger))
	assert.Equal(t, 0, Ordinal(models.Rank("wood")))

	for i := 1; i < len(models.Ranks); i++ {
		assert.Less(t, Ordinal(models.Ranks[i-1]), Ordinal(models.Ranks[i]))
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name     string
		rank     *models.Rank
		min, max *models.Rank
		want     bool
	}{
		{"inside", rank(models.RankGold), rank(models.RankSilver), rank(models.RankPlatinum), true},
		{"on lower bound", rank(models.RankSilver), rank(models.RankSilver), rank(models.RankPlatinum), true},
		{"below", rank(models.RankBronze), rank(models.RankSilver), rank(models.RankPlatinum), false},
		{"above", rank(models.RankDiamond), rank(models.RankSilver), rank(models.RankPlatinum), false},
		{"no min", rank(models.RankIron), nil, rank(models.RankGold), true},
		{"no max", rank(models.RankChallenger), rank(models.RankGold), nil, true},
		{"unranked", nil, rank(models.RankGold), rank(models.RankGold), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.rank, tt.min, tt.max))
		})
	}
}

func TestSummarize(t *testing.T) {
	rep := Summarize([]models.Evaluation{
		{Rating: 5},
		{Rating: 4},
		{Rating: 4},
		{IsReport: true, ReportReason: "harassment"},
	})
	assert.Equal(t, 3, rep.Evaluations)
	assert.Equal(t, 1, rep.Reports)
	assert.Equal(t, 4.3, rep.Average)

	assert.Equal(t, Reputation{}, Summarize(nil))
}
