package domain

// Evaluation is the scored assessment of one candidate answer. Each
// sub-score is an integer in [0,100]; OverallScore is always the arithmetic
// mean of the four sub-scores and is never set independently.
type Evaluation struct {
	TechnicalAccuracy    int     `json:"technical_accuracy"`
	PracticalApplication int     `json:"practical_application"`
	ProblemSolving       int     `json:"problem_solving"`
	Communication        int     `json:"communication"`
	OverallScore         float64 `json:"overall_score"`
	SkillCategory        string  `json:"skill_category"`
	Feedback             string  `json:"feedback"`
}

// Passing reports whether the answer clears the pass threshold.
func (e *Evaluation) Passing() bool {
	return e.OverallScore >= 60
}
