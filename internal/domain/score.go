package domain

// Grade is the human-readable band derived from a numeric quality score.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeNeedsWork Grade = "Needs Work"
	GradePoor      Grade = "Poor"
)

// GradeForScore derives the grade band from a score already clamped to
// [1,10]: Excellent >=9, Good >=7, Needs Work >=5, else Poor.
func GradeForScore(score int) Grade {
	switch {
	case score >= 9:
		return GradeExcellent
	case score >= 7:
		return GradeGood
	case score >= 5:
		return GradeNeedsWork
	default:
		return GradePoor
	}
}

// ScoreResult is the outcome of one quality-scoring pass over a card.
// ImprovedCard is present if and only if Score < 7; a rewrite suggestion
// accompanying a good score is dropped so the caller never shows a
// contradictory state.
type ScoreResult struct {
	Score        int      `json:"score"`
	Grade        Grade    `json:"grade"`
	Feedback     []string `json:"feedback"`
	ImprovedCard *Card    `json:"improved_card,omitempty"`
}
