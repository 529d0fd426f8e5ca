package interview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/excel-interviewer/internal/ai"
	"github.com/mkravets/excel-interviewer/internal/domain"
	"github.com/mkravets/excel-interviewer/internal/store"
)

// Registry owns the mapping from session ID to live interview. At most one
// machine exists per ID; lookup-and-mutate on a session is atomic with
// respect to concurrent end/discard of the same ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*activeInterview

	gen        ai.Generator
	genTimeout time.Duration
	archive    store.Repository
	transcript *TranscriptLogger
}

// activeInterview serializes turns for one session. The removed flag is
// set under the session mutex so a caller that raced a removal observes
// NotFound instead of mutating a discarded machine.
type activeInterview struct {
	mu      sync.Mutex
	machine *Machine
	removed bool
}

// RegistryOption configures optional registry collaborators.
type RegistryOption func(*Registry)

// WithArchive persists completed interviews to the given repository.
func WithArchive(repo store.Repository) RegistryOption {
	return func(r *Registry) { r.archive = repo }
}

// WithTranscript logs every turn to the given transcript logger.
func WithTranscript(l *TranscriptLogger) RegistryOption {
	return func(r *Registry) { r.transcript = l }
}

// NewRegistry creates a session registry. The generator may be nil; every
// interview then runs on deterministic fallback text.
func NewRegistry(gen ai.Generator, genTimeout time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:   make(map[string]*activeInterview),
		gen:        gen,
		genTimeout: genTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start creates a new interview session and returns its ID along with the
// opening greeting.
func (r *Registry) Start(ctx context.Context, candidateInfo map[string]any) (string, *Result) {
	id := uuid.NewString()
	machine := NewMachine(domain.NewSession(id, candidateInfo), r.gen, r.genTimeout)

	result := machine.Start(ctx)

	r.mu.Lock()
	r.sessions[id] = &activeInterview{machine: machine}
	r.mu.Unlock()

	slog.Info("Interview started", "session_id", id)
	r.logTurn(id, domain.ActorAgent, machine.Session().Phase, result.Message)

	return id, result
}

// Advance processes one candidate utterance for the given session.
func (r *Registry) Advance(ctx context.Context, sessionID, message string) (*Result, error) {
	s, ok := r.lookup(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return nil, ErrNotFound
	}

	r.logTurn(sessionID, domain.ActorCandidate, s.machine.Session().Phase, message)

	result, err := s.machine.Advance(ctx, message)
	if err != nil {
		return nil, err
	}

	r.logTurn(sessionID, domain.ActorAgent, result.Phase, result.Message)

	if result.Report != nil {
		// The machine reached the completed phase on its own; archive
		// now so the report survives even if the client never calls end.
		r.archiveInterview(ctx, s.machine.Session(), result.Report)
	}

	return result, nil
}

// End finalizes the interview, removes it from the registry, and returns
// the report. A second End on the same ID fails with ErrNotFound.
func (r *Registry) End(ctx context.Context, sessionID string) (*domain.Report, error) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return nil, ErrNotFound
	}
	s.removed = true

	session := s.machine.Session()
	alreadyCompleted := session.Phase == domain.PhaseCompleted

	report := s.machine.Conclude()
	if !alreadyCompleted {
		r.archiveInterview(ctx, session, report)
	}

	slog.Info("Interview ended",
		"session_id", sessionID,
		"total_questions", session.TotalQuestions,
		"correct_answers", session.CorrectAnswers,
	)

	return report, nil
}

// Discard drops a session without producing a report, e.g. when the
// candidate disconnects mid-interview.
func (r *Registry) Discard(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	s.mu.Lock()
	s.removed = true
	s.mu.Unlock()

	slog.Info("Interview discarded", "session_id", sessionID)
}

// DiscardIdle removes sessions with no activity for at least ttl and
// returns how many were dropped.
func (r *Registry) DiscardIdle(ttl time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	var stale []string
	for id, s := range r.sessions {
		if s.machine.Session().IdleFor(now) >= ttl {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s := r.sessions[id]
		delete(r.sessions, id)
		s.mu.Lock()
		s.removed = true
		s.mu.Unlock()
	}
	r.mu.Unlock()

	if len(stale) > 0 {
		slog.Info("Idle interviews discarded", "count", len(stale))
	}
	return len(stale)
}

// ActiveCount returns the number of live interviews.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(sessionID string) (*activeInterview, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// archiveInterview persists the completed interview best-effort. Archive
// failures are logged and never surfaced to the candidate.
func (r *Registry) archiveInterview(ctx context.Context, session *domain.Session, report *domain.Report) {
	if r.archive == nil {
		return
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		slog.Warn("Failed to marshal report for archive", "session_id", session.ID, "error", err)
		return
	}

	candidateJSON := ""
	if len(session.CandidateInfo) > 0 {
		if data, err := json.Marshal(session.CandidateInfo); err == nil {
			candidateJSON = string(data)
		}
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	rec := &domain.InterviewRecord{
		SessionID:      session.ID,
		CandidateJSON:  candidateJSON,
		SkillTier:      session.SkillTier,
		TotalQuestions: session.TotalQuestions,
		CorrectAnswers: session.CorrectAnswers,
		SuccessRate:    report.Summary.SuccessRate,
		ReportJSON:     string(reportJSON),
		StartedAt:      session.StartedAt,
		CompletedAt:    time.Now(),
	}
	if err := r.archive.SaveInterview(saveCtx, rec); err != nil {
		slog.Warn("Failed to archive interview", "session_id", session.ID, "error", err)
	}
}

func (r *Registry) logTurn(sessionID string, actor domain.Actor, phase domain.Phase, message string) {
	r.transcript.Log(TranscriptEvent{
		SessionID: sessionID,
		Actor:     string(actor),
		Phase:     string(phase),
		Message:   message,
	})
}
