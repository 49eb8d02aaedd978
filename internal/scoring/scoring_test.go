package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityMonotonicity(t *testing.T) {
	t.Run("non-decreasing in impact", func(t *testing.T) {
		for effort := MinScore; effort <= MaxScore; effort++ {
			for excitement := MinScore; excitement <= MaxScore; excitement++ {
				for impact := MinScore; impact < MaxScore; impact++ {
					lo := Priority(impact, effort, excitement)
					hi := Priority(impact+1, effort, excitement)
					assert.GreaterOrEqual(t, hi, lo)
				}
			}
		}
	})

	t.Run("non-decreasing in excitement", func(t *testing.T) {
		for impact := MinScore; impact <= MaxScore; impact++ {
			for effort := MinScore; effort <= MaxScore; effort++ {
				for excitement := MinScore; excitement < MaxScore; excitement++ {
					lo := Priority(impact, effort, excitement)
					hi := Priority(impact, effort, excitement+1)
					assert.GreaterOrEqual(t, hi, lo)
				}
			}
		}
	})

	t.Run("non-increasing in effort", func(t *testing.T) {
		for impact := MinScore; impact <= MaxScore; impact++ {
			for excitement := MinScore; excitement <= MaxScore; excitement++ {
				for effort := MinScore; effort < MaxScore; effort++ {
					lo := Priority(impact, effort, excitement)
					hi := Priority(impact, effort+1, excitement)
					assert.LessOrEqual(t, hi, lo)
				}
			}
		}
	})
}

func TestPriorityRange(t *testing.T) {
	// All four recommendation tiers must be reachable from valid inputs.
	best := Priority(MaxScore, MinScore, MaxScore)
	worst := Priority(MinScore, MaxScore, MinScore)
	assert.GreaterOrEqual(t, best, 20.0)
	assert.Less(t, worst, 5.0)
}

func TestRecommendBoundaries(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		score *float64
		tier  string
	}{
		{"nil score defaults to zero", nil, "low-priority"},
		{"exactly 20 is must-build", f(20), "must-build"},
		{"just under 20", f(19.99), "strong-candidate"},
		{"exactly 10 is strong candidate", f(10), "strong-candidate"},
		{"just under 10", f(9.99), "consider-carefully"},
		{"exactly 5 is consider carefully", f(5), "consider-carefully"},
		{"just under 5", f(4.99), "low-priority"},
		{"negative score", f(-3), "low-priority"},
		{"far above all tiers", f(100), "must-build"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recommend(tt.score)
			assert.Equal(t, tt.tier, r.Tier)
			assert.NotEmpty(t, r.Title)
			assert.NotEmpty(t, r.Message)
		})
	}
}

func TestBadgeThresholds(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.Equal(t, SeverityNeutral, Badge(nil))
	// The thresholds are strict: exactly 15 is not high, exactly 10 is
	// not medium.
	assert.Equal(t, SeverityHigh, Badge(f(15.01)))
	assert.NotEqual(t, SeverityHigh, Badge(f(15)))
	assert.Equal(t, SeverityMedium, Badge(f(15)))
	assert.Equal(t, SeverityMedium, Badge(f(10.01)))
	assert.Equal(t, SeverityLow, Badge(f(10)))
	assert.Equal(t, SeverityLow, Badge(f(-2)))
}

func TestBadgeDivergesFromRecommend(t *testing.T) {
	// The two classifiers intentionally disagree in (15, 20): Badge calls
	// it high while Recommend still says strong-candidate.
	v := 17.0
	assert.Equal(t, SeverityHigh, Badge(&v))
	assert.Equal(t, "strong-candidate", Recommend(&v).Tier)
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(1))
	assert.True(t, ValidScore(10))
	assert.False(t, ValidScore(0))
	assert.False(t, ValidScore(11))
	assert.False(t, ValidScore(-1))
}
