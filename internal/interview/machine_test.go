package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestMachineFullWalkWithoutGenerator(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(domain.NewSession("s1", nil), nil, 0)

	start := m.Start(ctx)
	if start.Type != ResultTypeGreeting {
		t.Errorf("Expected greeting result, got %q", start.Type)
	}
	if start.Message != fallbackGreeting {
		t.Errorf("Expected canned greeting, got %q", start.Message)
	}
	if start.Phase != domain.PhaseIntroduction {
		t.Errorf("Expected introduction phase, got %q", start.Phase)
	}

	intro, err := m.Advance(ctx, "I build pivot tables for the monthly numbers")
	if err != nil {
		t.Fatalf("Advance on introduction failed: %v", err)
	}
	if intro.Type != ResultTypeQuestion {
		t.Errorf("Expected question result, got %q", intro.Type)
	}
	if intro.SkillTier != domain.TierIntermediate {
		t.Errorf("Expected intermediate tier, got %q", intro.SkillTier)
	}
	if intro.Category != CategoryBasicFunctions {
		t.Errorf("Expected first question from basic functions, got %q", intro.Category)
	}
	if intro.QuestionNumber != 1 {
		t.Errorf("Expected question number 1, got %d", intro.QuestionNumber)
	}
	wantFirst := fallbackTransition + "\n\n" + questionBank[CategoryBasicFunctions][0]
	if intro.Message != wantFirst {
		t.Errorf("Expected transition plus first question, got %q", intro.Message)
	}

	// The fixed category walk for a non-beginner candidate.
	wantCategories := []string{
		CategoryLookupFunctions,
		CategoryDataAnalysis,
		CategoryAdvancedFeatures,
		CategoryProblemSolving,
	}
	for i, want := range wantCategories {
		res, err := m.Advance(ctx, "I would sum the data and analyze it step by step")
		if err != nil {
			t.Fatalf("Advance on answer %d failed: %v", i+1, err)
		}
		if res.Type != ResultTypeFeedback {
			t.Errorf("Expected feedback result on answer %d, got %q", i+1, res.Type)
		}
		if res.Category != want {
			t.Errorf("Expected category %q on answer %d, got %q", want, i+1, res.Category)
		}
		if res.Evaluation == nil {
			t.Fatalf("Expected an evaluation on answer %d", i+1)
		}
	}

	conclusion, err := m.Advance(ctx, "That covers it, I think")
	if err != nil {
		t.Fatalf("Advance on final answer failed: %v", err)
	}
	if conclusion.Type != ResultTypeConclusion {
		t.Errorf("Expected conclusion result, got %q", conclusion.Type)
	}
	if conclusion.Phase != domain.PhaseConclusion {
		t.Errorf("Expected conclusion phase, got %q", conclusion.Phase)
	}
	if conclusion.NextAction != NextActionConclude {
		t.Errorf("Expected conclude action, got %q", conclusion.NextAction)
	}
	if m.Session().TotalQuestions != 5 {
		t.Errorf("Expected 5 scored questions, got %d", m.Session().TotalQuestions)
	}

	final, err := m.Advance(ctx, "No questions from me")
	if err != nil {
		t.Fatalf("Advance on conclusion failed: %v", err)
	}
	if final.Type != ResultTypeFinalReport {
		t.Errorf("Expected final report result, got %q", final.Type)
	}
	if final.Report == nil {
		t.Fatal("Expected a report on the final result")
	}
	if final.Phase != domain.PhaseCompleted {
		t.Errorf("Expected completed phase, got %q", final.Phase)
	}

	if _, err := m.Advance(ctx, "hello?"); !errors.Is(err, ErrCompleted) {
		t.Errorf("Expected ErrCompleted after the final report, got %v", err)
	}
}

func TestMachineBeginnerGetsExtraDataAnalysis(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(domain.NewSession("s2", nil), nil, 0)

	m.Start(ctx)
	if _, err := m.Advance(ctx, "I just type numbers into spreadsheets"); err != nil {
		t.Fatalf("Advance on introduction failed: %v", err)
	}
	if m.Session().SkillTier != domain.TierBeginner {
		t.Fatalf("Expected beginner tier, got %q", m.Session().SkillTier)
	}

	var categories []string
	for i := 0; i < 4; i++ {
		res, err := m.Advance(ctx, "short answer")
		if err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		categories = append(categories, res.Category)
	}

	// Question four repeats data analysis for beginners.
	if categories[2] != CategoryDataAnalysis {
		t.Errorf("Expected fourth question from data analysis, got %q", categories[2])
	}

	// The repeat visit must not re-serve the first data analysis prompt.
	var served []string
	for _, turn := range m.Session().History {
		if turn.Actor == domain.ActorAgent && turn.Category == CategoryDataAnalysis {
			served = append(served, turn.Message)
		}
	}
	if len(served) != 2 {
		t.Fatalf("Expected two data analysis questions, got %d", len(served))
	}
	if served[0] == served[1] {
		t.Error("Expected a different prompt on the repeat category visit")
	}
}

func TestMachineUsesGeneratedText(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "Welcome aboard! Tell me about your Excel background."}
	m := NewMachine(domain.NewSession("s3", nil), gen, 0)

	start := m.Start(ctx)
	if start.Message != gen.reply {
		t.Errorf("Expected generated greeting, got %q", start.Message)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("Expected one generation call, got %d", len(gen.prompts))
	}

	res, err := m.Advance(ctx, "I use VBA daily")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if res.Message != gen.reply {
		t.Errorf("Expected generated transition, got %q", res.Message)
	}
	// The prompt must carry the exact question so the model asks it
	// verbatim.
	if !strings.Contains(gen.prompts[1], questionBank[CategoryBasicFunctions][0]) {
		t.Errorf("Expected transition prompt to embed the question, got %q", gen.prompts[1])
	}
}

func TestMachineFallsBackWhenGenerationFails(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	m := NewMachine(domain.NewSession("s4", nil), gen, 0)

	start := m.Start(ctx)
	if start.Message != fallbackGreeting {
		t.Errorf("Expected canned greeting on generation failure, got %q", start.Message)
	}

	res, err := m.Advance(ctx, "I use pivot tables")
	if err != nil {
		t.Fatalf("Advance must not surface generation failures, got %v", err)
	}
	if res.Phase != domain.PhaseQuestions {
		t.Errorf("Expected the phase to advance despite the failure, got %q", res.Phase)
	}
	want := fallbackTransition + "\n\n" + questionBank[CategoryBasicFunctions][0]
	if res.Message != want {
		t.Errorf("Expected canned transition, got %q", res.Message)
	}
}

func TestMachinePhaseNeverRegresses(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(domain.NewSession("s5", nil), nil, 0)
	order := map[domain.Phase]int{
		domain.PhaseIntroduction: 0,
		domain.PhaseQuestions:    1,
		domain.PhaseConclusion:   2,
		domain.PhaseCompleted:    3,
	}

	m.Start(ctx)
	prev := order[m.Session().Phase]
	for i := 0; i < 8; i++ {
		_, err := m.Advance(ctx, "another answer with some detail in it")
		if errors.Is(err, ErrCompleted) {
			break
		}
		if err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		cur := order[m.Session().Phase]
		if cur < prev {
			t.Fatalf("Phase regressed from %d to %d", prev, cur)
		}
		prev = cur
	}
	if m.Session().Phase != domain.PhaseCompleted {
		t.Errorf("Expected the walk to end completed, got %q", m.Session().Phase)
	}
}
