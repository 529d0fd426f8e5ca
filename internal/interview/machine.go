package interview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkravets/excel-interviewer/internal/ai"
	"github.com/mkravets/excel-interviewer/internal/domain"
)

// questionThreshold is the number of scored questions per interview.
const questionThreshold = 5

// defaultGenerationTimeout bounds a single collaborator call. A timeout
// counts as a generation failure and triggers the deterministic fallback.
const defaultGenerationTimeout = 30 * time.Second

// Deterministic fallback messages used whenever the generator is absent,
// errors, or times out. The interview is fully functional on these alone.
const (
	fallbackGreeting = `Hello! I'm your AI Excel interviewer. I'll be conducting a mock interview to assess your Excel proficiency.

The interview will take about 15-20 minutes and cover various Excel topics from basic functions to advanced features. Don't worry - this is a learning experience, and I'll provide feedback along the way.

Could you please introduce yourself and tell me about your Excel experience? What's your primary use case for Excel?`

	fallbackTransition = "Thanks for the introduction! Let's get started with the first question."

	fallbackConclusion = "Thank you for completing the Excel interview! I'll now prepare a detailed feedback report for you. Do you have any questions about Excel or the interview process?"

	fallbackReportIntro = "Here is your detailed feedback report. Thank you for participating!"
)

// Result is the payload returned to the transport layer for one turn.
type Result struct {
	Message        string             `json:"message"`
	Type           string             `json:"type"`
	Phase          domain.Phase       `json:"phase"`
	Category       string             `json:"category,omitempty"`
	QuestionNumber int                `json:"question_number,omitempty"`
	SkillTier      domain.SkillTier   `json:"skill_level,omitempty"`
	Evaluation     *domain.Evaluation `json:"evaluation,omitempty"`
	NextAction     string             `json:"next_action"`
	Report         *domain.Report     `json:"report,omitempty"`
}

// Result types.
const (
	ResultTypeGreeting    = "greeting"
	ResultTypeQuestion    = "question"
	ResultTypeFeedback    = "feedback_and_question"
	ResultTypeConclusion  = "conclusion"
	ResultTypeFinalReport = "final_report"
)

// Next actions hint the client what to do after this turn.
const (
	NextActionContinue = "continue"
	NextActionConclude = "conclude"
	NextActionComplete = "complete"
)

// Machine drives one interview through its phases. A machine is not safe
// for concurrent use; the registry serializes turns per session.
type Machine struct {
	session    *domain.Session
	gen        ai.Generator
	genTimeout time.Duration
}

// NewMachine creates a state machine for the given session. The generator
// may be nil, in which case every message uses its deterministic fallback.
func NewMachine(session *domain.Session, gen ai.Generator, genTimeout time.Duration) *Machine {
	if genTimeout <= 0 {
		genTimeout = defaultGenerationTimeout
	}
	return &Machine{session: session, gen: gen, genTimeout: genTimeout}
}

// Session returns the machine's session state.
func (m *Machine) Session() *domain.Session {
	return m.session
}

// Start produces the opening greeting and records it as the first turn.
func (m *Machine) Start(ctx context.Context) *Result {
	prompt := fmt.Sprintf(`You are a professional Excel interviewer conducting a mock interview.

Candidate information: %v

Provide a warm, professional greeting that introduces yourself as an AI Excel interviewer, explains the interview process (15-20 minutes, various Excel topics), and asks the candidate to introduce themselves and their Excel experience. Keep it conversational and encouraging.`, m.session.CandidateInfo)

	greeting := m.generate(ctx, prompt, fallbackGreeting)
	m.session.AppendAgentTurn(greeting, "")

	return &Result{
		Message:    greeting,
		Type:       ResultTypeGreeting,
		Phase:      m.session.Phase,
		NextAction: NextActionContinue,
	}
}

// Advance processes one candidate utterance according to the current
// phase. The candidate turn is always appended to history, even when the
// generator fails, so the conversation never gets stuck. Calling Advance
// on a completed machine is the only error case.
func (m *Machine) Advance(ctx context.Context, message string) (*Result, error) {
	if m.session.Phase == domain.PhaseCompleted {
		return nil, ErrCompleted
	}

	m.session.AppendCandidateTurn(message)

	switch m.session.Phase {
	case domain.PhaseIntroduction:
		return m.handleIntroduction(ctx, message), nil
	case domain.PhaseQuestions:
		return m.handleAnswer(ctx, message), nil
	default:
		return m.handleConclusion(ctx), nil
	}
}

// Conclude finalizes the interview and aggregates the report regardless of
// the current phase. It never fails; inconsistent state yields a degraded
// report instead.
func (m *Machine) Conclude() *domain.Report {
	m.session.Phase = domain.PhaseCompleted
	return Aggregate(m.session)
}

// handleIntroduction classifies the candidate's skill tier from the
// introduction and issues the first question. The introduction answer is
// never scored.
func (m *Machine) handleIntroduction(ctx context.Context, message string) *Result {
	m.session.SkillTier = Classify(message)
	m.session.Phase = domain.PhaseQuestions

	slog.Info("Skill tier classified",
		"session_id", m.session.ID,
		"skill_tier", m.session.SkillTier,
	)

	category, question := m.issueQuestion()

	prompt := fmt.Sprintf(`The candidate has introduced themselves: %q
Assessed skill level: %s

Provide a brief, encouraging transition acknowledging their experience, then ask this exact question: %q`, message, m.session.SkillTier, question)

	text := m.generate(ctx, prompt, fallbackTransition+"\n\n"+question)
	m.session.AppendAgentTurn(text, category)

	return &Result{
		Message:        text,
		Type:           ResultTypeQuestion,
		Phase:          m.session.Phase,
		Category:       category,
		QuestionNumber: m.session.QuestionsAsked,
		SkillTier:      m.session.SkillTier,
		NextAction:     NextActionContinue,
	}
}

// handleAnswer scores the answer against the last issued question, then
// either asks the next question or transitions to the conclusion once the
// question threshold is reached.
func (m *Machine) handleAnswer(ctx context.Context, message string) *Result {
	ev := Evaluate(m.session.LastQuestion, message)
	m.session.AttachEvaluation(ev, m.session.LastCategory)
	m.session.TotalQuestions++
	if ev.Passing() {
		m.session.CorrectAnswers++
	}

	slog.Info("Answer evaluated",
		"session_id", m.session.ID,
		"category", m.session.LastCategory,
		"overall_score", ev.OverallScore,
		"passing", ev.Passing(),
	)

	if m.session.QuestionsAsked >= questionThreshold {
		m.session.Phase = domain.PhaseConclusion

		prompt := fmt.Sprintf(`The Excel interview is coming to an end. The candidate answered %d questions with %d strong answers.

Provide a professional conclusion that thanks them, mentions a detailed feedback report is being prepared, and asks if they have any final questions. Keep it positive.`,
			m.session.TotalQuestions, m.session.CorrectAnswers)

		text := m.generate(ctx, prompt, fallbackConclusion)
		m.session.AppendAgentTurn(text, "")

		return &Result{
			Message:    text,
			Type:       ResultTypeConclusion,
			Phase:      m.session.Phase,
			Evaluation: ev,
			NextAction: NextActionConclude,
		}
	}

	category, question := m.issueQuestion()

	prompt := fmt.Sprintf(`The candidate just answered an Excel question. Overall score: %.1f/100. Feedback: %s

Briefly acknowledge their answer with constructive feedback, then ask this exact question: %q`, ev.OverallScore, ev.Feedback, question)

	text := m.generate(ctx, prompt, ev.Feedback+"\n\n"+question)
	m.session.AppendAgentTurn(text, category)

	return &Result{
		Message:        text,
		Type:           ResultTypeFeedback,
		Phase:          m.session.Phase,
		Category:       category,
		QuestionNumber: m.session.QuestionsAsked,
		Evaluation:     ev,
		NextAction:     NextActionContinue,
	}
}

// handleConclusion turns any further utterance into the final report and
// terminates the machine. Subsequent Advance calls fail.
func (m *Machine) handleConclusion(_ context.Context) *Result {
	report := m.Conclude()

	return &Result{
		Message:    fallbackReportIntro,
		Type:       ResultTypeFinalReport,
		Phase:      m.session.Phase,
		Report:     report,
		NextAction: NextActionComplete,
	}
}

// issueQuestion selects the next category and prompt, updates the
// counters, and records the question as the session's last question. The
// agent turn itself is appended by the caller because the surfaced message
// may wrap the question in generated text.
func (m *Machine) issueQuestion() (category, question string) {
	category = NextCategory(m.session.QuestionsAsked, m.session.SkillTier)
	question = Question(category, m.session.CategoryServed[category])
	m.session.CategoryServed[category]++
	m.session.QuestionsAsked++
	m.session.LastQuestion = question
	m.session.LastCategory = category
	return category, question
}

// generate calls the collaborator under a bounded context and substitutes
// the fallback on any failure. Generation failures never reach the caller.
func (m *Machine) generate(ctx context.Context, prompt, fallback string) string {
	if m.gen == nil {
		return fallback
	}

	genCtx, cancel := context.WithTimeout(ctx, m.genTimeout)
	defer cancel()

	text, err := m.gen.Generate(genCtx, prompt)
	if err != nil {
		slog.Warn("Generation failed, using fallback",
			"session_id", m.session.ID,
			"phase", m.session.Phase,
			"error", err,
		)
		return fallback
	}
	return text
}
