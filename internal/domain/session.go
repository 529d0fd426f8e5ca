// Package domain contains core domain types for the interviewer.
package domain

import (
	"time"
)

// Phase is the coarse stage of an interview. Transitions are monotone:
// introduction -> questions -> conclusion -> completed, never backward.
type Phase string

const (
	PhaseIntroduction Phase = "introduction"
	PhaseQuestions    Phase = "questions"
	PhaseConclusion   Phase = "conclusion"
	PhaseCompleted    Phase = "completed"
)

// SkillTier is the candidate proficiency classification, fixed once at
// the end of the introduction phase.
type SkillTier string

const (
	TierBeginner     SkillTier = "beginner"
	TierIntermediate SkillTier = "intermediate"
	TierAdvanced     SkillTier = "advanced"
	TierUnknown      SkillTier = "unknown"
)

// Actor identifies who produced a turn.
type Actor string

const (
	ActorAgent     Actor = "agent"
	ActorCandidate Actor = "candidate"
)

// Turn is one message exchange in a session's history. Turns are immutable
// once appended, except that an Evaluation may be attached once to a
// candidate turn right after it is recorded.
type Turn struct {
	Timestamp  time.Time   `json:"timestamp"`
	Actor      Actor       `json:"actor"`
	Message    string      `json:"message"`
	Phase      Phase       `json:"phase"`
	Category   string      `json:"category,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Session holds the full in-memory state of one interview. It lives for the
// duration of the conversation only and is never persisted; only the final
// report derived from it is archived.
type Session struct {
	ID            string         `json:"session_id"`
	CandidateInfo map[string]any `json:"candidate_info,omitempty"`
	Phase         Phase          `json:"phase"`
	SkillTier     SkillTier      `json:"skill_tier"`

	// QuestionsAsked counts questions issued; CorrectAnswers and
	// TotalQuestions track scored answers (pass threshold is an overall
	// score of at least 60).
	QuestionsAsked int `json:"questions_asked"`
	CorrectAnswers int `json:"correct_answers"`
	TotalQuestions int `json:"total_questions"`

	// LastQuestion and LastCategory identify the most recently issued
	// question. The evaluator reads them instead of digging through the
	// turn history, so evaluation does not depend on history layout.
	LastQuestion string `json:"-"`
	LastCategory string `json:"-"`

	// CategoryServed counts questions issued per category, used for
	// round-robin selection within a category.
	CategoryServed map[string]int `json:"-"`

	History []Turn `json:"history"`

	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"-"`
}

// NewSession creates a session in the introduction phase.
func NewSession(id string, candidateInfo map[string]any) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		CandidateInfo:  candidateInfo,
		Phase:          PhaseIntroduction,
		SkillTier:      TierBeginner,
		CategoryServed: make(map[string]int),
		StartedAt:      now,
		LastActivity:   now,
	}
}

// AppendAgentTurn records an agent message, optionally tagged with the
// question category it belongs to.
func (s *Session) AppendAgentTurn(message, category string) {
	s.History = append(s.History, Turn{
		Timestamp: time.Now(),
		Actor:     ActorAgent,
		Message:   message,
		Phase:     s.Phase,
		Category:  category,
	})
	s.LastActivity = time.Now()
}

// AppendCandidateTurn records a candidate message in the current phase.
func (s *Session) AppendCandidateTurn(message string) {
	s.History = append(s.History, Turn{
		Timestamp: time.Now(),
		Actor:     ActorCandidate,
		Message:   message,
		Phase:     s.Phase,
	})
	s.LastActivity = time.Now()
}

// AttachEvaluation attaches an evaluation and category tag to the most
// recent turn if it is an unevaluated candidate turn. Returns false when
// there is no such turn.
func (s *Session) AttachEvaluation(ev *Evaluation, category string) bool {
	if len(s.History) == 0 {
		return false
	}
	last := &s.History[len(s.History)-1]
	if last.Actor != ActorCandidate || last.Evaluation != nil {
		return false
	}
	last.Evaluation = ev
	last.Category = category
	return true
}

// IdleFor reports how long the session has been without candidate activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}
