// Package scoring derives priority values and display classifications
// from an idea's impact, effort and excitement scores.
package scoring

// MinScore and MaxScore bound the three user-supplied sub-scores.
const (
	MinScore = 1
	MaxScore = 10
)

// Weights for the priority formula. Impact and excitement pull the score
// up symmetrically, effort pulls it down.
const (
	impactWeight     = 1.5
	excitementWeight = 1.5
	effortWeight     = 1.0
)

// ValidScore reports whether s is inside the accepted [1,10] range.
func ValidScore(s int) bool {
	return s >= MinScore && s <= MaxScore
}

// Priority computes the derived priority score from the three sub-scores.
// It is non-decreasing in impact and excitement and non-increasing in
// effort. Callers are responsible for only passing validated inputs.
func Priority(impact, effort, excitement int) float64 {
	return impactWeight*float64(impact) + excitementWeight*float64(excitement) - effortWeight*float64(effort)
}

// Severity is the visual weight attached to a classification.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
)

// Recommendation is one of the four tiers shown on the idea detail view.
type Recommendation struct {
	Tier     string   `json:"tier"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Recommend maps a priority score to its recommendation tier. A nil score
// is treated as 0, so ideas without all three sub-scores land in the lowest
// tier. Boundary values belong to the higher tier.
func Recommend(score *float64) Recommendation {
	s := 0.0
	if score != nil {
		s = *score
	}
	switch {
	case s >= 20:
		return Recommendation{
			Tier:     "must-build",
			Title:    "Absolute Must-Build!",
			Message:  "This idea has exceptionally high potential. Prioritize it!",
			Severity: SeverityHigh,
		}
	case s >= 10:
		return Recommendation{
			Tier:     "strong-candidate",
			Title:    "Strong Candidate!",
			Message:  "A promising idea. Worth further investigation and planning.",
			Severity: SeverityMedium,
		}
	case s >= 5:
		return Recommendation{
			Tier:     "consider-carefully",
			Title:    "Consider Carefully",
			Message:  "This idea has some potential but needs refinement or more compelling reasons.",
			Severity: SeverityLow,
		}
	default:
		return Recommendation{
			Tier:     "low-priority",
			Title:    "Low Priority",
			Message:  "The current scores suggest this might not be the best use of your time.",
			Severity: SeverityNeutral,
		}
	}
}

// Badge maps a raw priority score to the color severity used on idea cards.
// Its thresholds are intentionally independent of Recommend's tiers; both
// tables exist in the product and are kept separate here.
func Badge(score *float64) Severity {
	if score == nil {
		return SeverityNeutral
	}
	switch {
	case *score > 15:
		return SeverityHigh
	case *score > 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
