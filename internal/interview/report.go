package interview

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

const (
	defaultStrength    = "General Excel knowledge"
	defaultImprovement = "Overall Excel proficiency"
)

var titleCaser = cases.Title(language.English)

// Aggregate reduces a session's turn history into the final report. It is a
// pure function of the history and counters: aggregating the same session
// twice yields identical reports. Inconsistent session state degrades to a
// minimal report with an error marker instead of failing.
func Aggregate(s *domain.Session) *domain.Report {
	if s == nil || s.TotalQuestions < 0 || s.CorrectAnswers < 0 || s.CorrectAnswers > s.TotalQuestions {
		return degradedReport()
	}

	successRate := 0.0
	if s.TotalQuestions > 0 {
		successRate = roundOneDecimal(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100)
	}

	return &domain.Report{
		Summary: domain.ReportSummary{
			TotalQuestions:     s.TotalQuestions,
			CorrectAnswers:     s.CorrectAnswers,
			SuccessRate:        successRate,
			OverallPerformance: PerformanceLevel(successRate),
			SkillLevelAssessed: s.SkillTier,
		},
		SkillAnalysis:       analyzeCategories(s.History),
		Strengths:           collectCategories(s.History, func(score float64) bool { return score >= 80 }, defaultStrength),
		AreasForImprovement: collectCategories(s.History, func(score float64) bool { return score < 60 }, defaultImprovement),
		Recommendations:     recommendationsFor(successRate),
		DetailedFeedback:    detailedFeedback(s.History),
	}
}

// PerformanceLevel maps a 0-100 score to its label band.
func PerformanceLevel(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Satisfactory"
	default:
		return "Needs Improvement"
	}
}

// analyzeCategories averages evaluated answers per category. Categories
// with no evaluated turns are omitted entirely.
func analyzeCategories(history []domain.Turn) map[string]domain.CategoryAnalysis {
	analysis := make(map[string]domain.CategoryAnalysis)
	for _, category := range ReportCategories {
		var total float64
		var count int
		for _, turn := range history {
			if turn.Category == category && turn.Evaluation != nil {
				total += turn.Evaluation.OverallScore
				count++
			}
		}
		if count == 0 {
			continue
		}
		avg := roundOneDecimal(total / float64(count))
		analysis[category] = domain.CategoryAnalysis{
			AverageScore:      avg,
			QuestionsAnswered: count,
			PerformanceLevel:  PerformanceLevel(avg),
		}
	}
	return analysis
}

// collectCategories gathers distinct category labels from evaluated turns
// whose score satisfies the predicate, in first-seen order. When nothing
// qualifies the documented singleton default is returned.
func collectCategories(history []domain.Turn, match func(float64) bool, fallback string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, turn := range history {
		if turn.Evaluation == nil || !match(turn.Evaluation.OverallScore) {
			continue
		}
		category := turn.Evaluation.SkillCategory
		if category == "" {
			category = CategoryGeneral
		}
		label := titleCaser.String(strings.ReplaceAll(category, "_", " "))
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return []string{fallback}
	}
	return labels
}

func recommendationsFor(successRate float64) []string {
	switch {
	case successRate < 60:
		return []string{
			"Focus on fundamental Excel functions and formulas",
			"Practice with real-world Excel scenarios",
		}
	case successRate < 80:
		return []string{
			"Enhance advanced Excel features knowledge",
			"Practice complex data analysis tasks",
		}
	default:
		return []string{
			"Consider Excel certification programs",
			"Explore advanced automation with VBA and macros",
		}
	}
}

// detailedFeedback emits one record per evaluated turn in history order,
// pairing each answer with the most recently issued question before it.
func detailedFeedback(history []domain.Turn) []domain.AnswerFeedback {
	feedback := make([]domain.AnswerFeedback, 0)
	lastQuestion := ""
	for _, turn := range history {
		if turn.Actor == domain.ActorAgent && turn.Category != "" {
			lastQuestion = turn.Message
			continue
		}
		if turn.Evaluation == nil {
			continue
		}
		question := lastQuestion
		if question == "" {
			question = "Question not recorded"
		}
		feedback = append(feedback, domain.AnswerFeedback{
			Question:          question,
			CandidateResponse: turn.Message,
			Score:             turn.Evaluation.OverallScore,
			Feedback:          turn.Evaluation.Feedback,
			SkillCategory:     turn.Evaluation.SkillCategory,
		})
	}
	return feedback
}

func degradedReport() *domain.Report {
	return &domain.Report{
		Summary: domain.ReportSummary{
			OverallPerformance: "Unable to assess",
			SkillLevelAssessed: domain.TierUnknown,
		},
		Error: "unable to generate complete report",
	}
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
