package model

// Ladder is a descending threshold ladder mapping a 0-100 score to a grade
// and a four-level verdict.
type Ladder struct {
	A float64 `json:"a" mapstructure:"a"`
	B float64 `json:"b" mapstructure:"b"`
	C float64 `json:"c" mapstructure:"c"`
}

// DefaultLadder is >=85 A, >=70 B, >=55 C, else D.
func DefaultLadder() Ladder {
	return Ladder{A: 85, B: 70, C: 55}
}

// Grade returns the grade bucket of score.
func (l Ladder) Grade(score float64) Grade {
	switch {
	case score >= l.A:
		return GradeA
	case score >= l.B:
		return GradeB
	case score >= l.C:
		return GradeC
	default:
		return GradeD
	}
}

// Classify returns the grade and its matching verdict.
func (l Ladder) Classify(score float64) (Grade, Verdict) {
	g := l.Grade(score)
	switch g {
	case GradeA:
		return g, VerdictRecommended
	case GradeB:
		return g, VerdictPotential
	case GradeC:
		return g, VerdictNeedsStrategy
	default:
		return g, VerdictNotRecommended
	}
}

// Valid reports whether the thresholds are strictly descending within 0-100.
func (l Ladder) Valid() bool {
	return l.A <= 100 && l.A > l.B && l.B > l.C && l.C >= 0
}
