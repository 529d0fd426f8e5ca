package interview

import (
	"strings"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

// Scoring vocabularies. Each term that appears in the lower-cased answer
// contributes a flat increment once, regardless of repetition; sub-scores
// clamp at 100. The lists are deliberately package-level so they can be
// tuned without touching the scoring algorithm.
var (
	technicalAccuracyTerms = []string{
		"vlookup", "hlookup", "index", "match", "sum", "average", "count",
		"pivot table", "conditional formatting", "data validation", "macro",
		"formula", "function", "cell reference", "absolute reference",
	}
	practicalApplicationTerms = []string{
		"example", "scenario", "case", "situation", "data", "analysis",
		"business", "report", "dashboard", "automation", "efficiency",
	}
	problemSolvingTerms = []string{
		"first", "then", "next", "finally", "step", "process", "approach",
		"method", "solution", "solve", "identify", "analyze", "implement",
	}
)

const (
	technicalPointsPerHit = 10
	practicalPointsPerHit = 12
	problemPointsPerHit   = 12
)

// Feedback bands by overall score.
const (
	feedbackExcellent = "Excellent response! You demonstrated strong Excel knowledge and clear communication."
	feedbackGood      = "Good response. You show solid understanding with room for improvement in some areas."
	feedbackAdequate  = "Adequate response. Consider providing more specific examples and technical details."
	feedbackWeak      = "Your response could be improved. Try to be more specific about Excel functions and provide practical examples."
)

// Evaluate scores one candidate answer against the question it was given.
// It is deterministic and side-effect free: four lexical scans plus a word
// count, averaged into the overall score.
func Evaluate(question, answer string) *domain.Evaluation {
	ev := &domain.Evaluation{
		TechnicalAccuracy:    vocabularyScore(answer, technicalAccuracyTerms, technicalPointsPerHit),
		PracticalApplication: vocabularyScore(answer, practicalApplicationTerms, practicalPointsPerHit),
		ProblemSolving:       vocabularyScore(answer, problemSolvingTerms, problemPointsPerHit),
		Communication:        communicationScore(answer),
		SkillCategory:        CategoryForQuestion(question),
	}
	ev.OverallScore = float64(ev.TechnicalAccuracy+ev.PracticalApplication+ev.ProblemSolving+ev.Communication) / 4
	ev.Feedback = feedbackFor(ev.OverallScore)
	return ev
}

// vocabularyScore counts distinct term hits in the lower-cased answer and
// converts them to points, clamped to 100.
func vocabularyScore(answer string, terms []string, pointsPerHit int) int {
	lower := strings.ToLower(answer)
	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += pointsPerHit
		}
	}
	if score > 100 {
		return 100
	}
	return score
}

// communicationScore is a step function of word count. Boundaries are
// part of the contract: <10 words scores 30, <20 scores 60, <50 scores 80,
// anything longer scores 90.
func communicationScore(answer string) int {
	words := len(strings.Fields(answer))
	switch {
	case words < 10:
		return 30
	case words < 20:
		return 60
	case words < 50:
		return 80
	default:
		return 90
	}
}

// CategoryForQuestion derives the skill category from the question text by
// matching it against the per-category keyword lists. The first category
// with any keyword hit wins; questions matching nothing are general.
func CategoryForQuestion(question string) string {
	lower := strings.ToLower(question)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return group.name
			}
		}
	}
	return CategoryGeneral
}

func feedbackFor(score float64) string {
	switch {
	case score >= 80:
		return feedbackExcellent
	case score >= 60:
		return feedbackGood
	case score >= 40:
		return feedbackAdequate
	default:
		return feedbackWeak
	}
}
