package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

type fakeRepository struct {
	mu    sync.Mutex
	saved []*domain.InterviewRecord
}

func (f *fakeRepository) SaveInterview(_ context.Context, rec *domain.InterviewRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepository) GetInterview(context.Context, string) (*domain.InterviewRecord, error) {
	return nil, nil
}

func (f *fakeRepository) ListRecent(context.Context, int) ([]*domain.InterviewRecord, error) {
	return nil, nil
}

func (f *fakeRepository) Ping(context.Context) error { return nil }
func (f *fakeRepository) Close() error               { return nil }

func (f *fakeRepository) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	id, start := reg.Start(ctx, map[string]any{"name": "Pat"})
	if id == "" {
		t.Fatal("Expected a non-empty session ID")
	}
	if start.Message != fallbackGreeting {
		t.Errorf("Expected canned greeting, got %q", start.Message)
	}
	if reg.ActiveCount() != 1 {
		t.Errorf("Expected 1 active interview, got %d", reg.ActiveCount())
	}

	res, err := reg.Advance(ctx, id, "I use pivot tables a lot")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if res.Phase != domain.PhaseQuestions {
		t.Errorf("Expected questions phase, got %q", res.Phase)
	}

	report, err := reg.End(ctx, id)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if report == nil {
		t.Fatal("Expected a report from End")
	}
	if reg.ActiveCount() != 0 {
		t.Errorf("Expected 0 active interviews after End, got %d", reg.ActiveCount())
	}
}

func TestRegistryUnknownSession(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	if _, err := reg.Advance(ctx, "nope", "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on unknown session, got %v", err)
	}
	if _, err := reg.End(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on unknown session, got %v", err)
	}
}

func TestRegistryEndTwice(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	id, _ := reg.Start(ctx, nil)
	if _, err := reg.End(ctx, id); err != nil {
		t.Fatalf("First End failed: %v", err)
	}
	if _, err := reg.End(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second End, got %v", err)
	}
}

func TestRegistryCompletedSessionRejectsMessages(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	id, _ := reg.Start(ctx, nil)
	// Intro, five answers, then the conclusion exchange complete the
	// interview while it is still registered.
	for i := 0; i < 7; i++ {
		if _, err := reg.Advance(ctx, id, "an answer with enough words to count"); err != nil {
			t.Fatalf("Advance %d failed: %v", i+1, err)
		}
	}

	if _, err := reg.Advance(ctx, id, "one more"); !errors.Is(err, ErrCompleted) {
		t.Errorf("Expected ErrCompleted, got %v", err)
	}
}

func TestRegistryArchivesOnEnd(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	reg := NewRegistry(nil, time.Second, WithArchive(repo))

	id, _ := reg.Start(ctx, map[string]any{"name": "Pat"})
	if _, err := reg.Advance(ctx, id, "I use vlookup"); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if _, err := reg.End(ctx, id); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if repo.savedCount() != 1 {
		t.Fatalf("Expected 1 archived interview, got %d", repo.savedCount())
	}
	rec := repo.saved[0]
	if rec.SessionID != id {
		t.Errorf("Expected archived session %q, got %q", id, rec.SessionID)
	}
	if rec.ReportJSON == "" {
		t.Error("Expected a non-empty archived report")
	}
	if rec.CandidateJSON == "" {
		t.Error("Expected candidate info to be archived")
	}
}

func TestRegistryArchivesOnceWhenCompletedThenEnded(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	reg := NewRegistry(nil, time.Second, WithArchive(repo))

	id, _ := reg.Start(ctx, nil)
	for i := 0; i < 7; i++ {
		if _, err := reg.Advance(ctx, id, "an answer"); err != nil {
			t.Fatalf("Advance %d failed: %v", i+1, err)
		}
	}
	if repo.savedCount() != 1 {
		t.Fatalf("Expected the completed interview to be archived, got %d saves", repo.savedCount())
	}

	if _, err := reg.End(ctx, id); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if repo.savedCount() != 1 {
		t.Errorf("Expected no duplicate archive on End, got %d saves", repo.savedCount())
	}
}

func TestRegistryDiscard(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	id, _ := reg.Start(ctx, nil)
	reg.Discard(id)

	if reg.ActiveCount() != 0 {
		t.Errorf("Expected 0 active interviews, got %d", reg.ActiveCount())
	}
	if _, err := reg.Advance(ctx, id, "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Discard, got %v", err)
	}
	// Discarding twice is harmless.
	reg.Discard(id)
}

func TestRegistryDiscardIdle(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)

	reg.Start(ctx, nil)
	reg.Start(ctx, nil)

	if dropped := reg.DiscardIdle(time.Hour); dropped != 0 {
		t.Errorf("Expected no fresh sessions dropped, got %d", dropped)
	}
	if dropped := reg.DiscardIdle(0); dropped != 2 {
		t.Errorf("Expected 2 idle sessions dropped, got %d", dropped)
	}
	if reg.ActiveCount() != 0 {
		t.Errorf("Expected 0 active interviews, got %d", reg.ActiveCount())
	}
}

func TestRegistryConcurrentAdvance(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Second)
	id, _ := reg.Start(ctx, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Advance(ctx, id, "a concurrent answer with several words in it")
			if err != nil && !errors.Is(err, ErrCompleted) && !errors.Is(err, ErrNotFound) {
				t.Errorf("Unexpected Advance error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Turns were serialized, so history length is consistent with the
	// number of processed messages.
	session := func() *domain.Session {
		s, ok := reg.lookup(id)
		if !ok {
			t.Fatal("Expected the session to still be registered")
		}
		return s.machine.Session()
	}()
	if session.TotalQuestions > 5 {
		t.Errorf("Expected at most 5 scored questions, got %d", session.TotalQuestions)
	}
}
