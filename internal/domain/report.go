package domain

import (
	"time"
)

// Report is the final aggregated interview summary. It is built once at
// interview end from a session snapshot and never mutated afterwards.
type Report struct {
	Summary             ReportSummary               `json:"interview_summary"`
	SkillAnalysis       map[string]CategoryAnalysis `json:"skill_analysis"`
	Strengths           []string                    `json:"strengths"`
	AreasForImprovement []string                    `json:"areas_for_improvement"`
	Recommendations     []string                    `json:"recommendations"`
	DetailedFeedback    []AnswerFeedback            `json:"detailed_feedback"`

	// Error is set only when aggregation had to degrade to a minimal
	// report because the session state was inconsistent.
	Error string `json:"error,omitempty"`
}

// ReportSummary carries the headline numbers of the interview.
type ReportSummary struct {
	TotalQuestions     int       `json:"total_questions"`
	CorrectAnswers     int       `json:"correct_answers"`
	SuccessRate        float64   `json:"success_rate"`
	OverallPerformance string    `json:"overall_performance"`
	SkillLevelAssessed SkillTier `json:"skill_level_assessed"`
}

// CategoryAnalysis summarizes performance within one skill category.
type CategoryAnalysis struct {
	AverageScore      float64 `json:"average_score"`
	QuestionsAnswered int     `json:"questions_answered"`
	PerformanceLevel  string  `json:"performance_level"`
}

// AnswerFeedback pairs one evaluated answer with its question and scores.
type AnswerFeedback struct {
	Question          string  `json:"question"`
	CandidateResponse string  `json:"candidate_response"`
	Score             float64 `json:"score"`
	Feedback          string  `json:"feedback"`
	SkillCategory     string  `json:"skill_category"`
}

// InterviewRecord is the archived form of a completed interview.
type InterviewRecord struct {
	SessionID      string    `json:"session_id"`
	CandidateJSON  string    `json:"candidate_json,omitempty"`
	SkillTier      SkillTier `json:"skill_tier"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	SuccessRate    float64   `json:"success_rate"`
	ReportJSON     string    `json:"report_json"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}
