package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"oloom-quiz-service/internal/app"
	"oloom-quiz-service/internal/domain"
	"oloom-quiz-service/internal/infra/memory"
)

// testCatalog builds perCategory choice questions (correct label "A") in each category.
func testCatalog(categories []string, perCategory int) domain.Catalog {
	var questions []domain.Question
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			id := fmt.Sprintf("%s-%d", cat, i)
			questions = append(questions, domain.Question{
				ID:           id,
				Kind:         domain.KindChoice,
				Category:     cat,
				Prompt:       "prompt " + id,
				Choices:      []domain.Choice{{Label: "A", Text: "right"}, {Label: "B", Text: "wrong"}},
				CorrectLabel: "A",
				CorrectText:  "right",
			})
		}
	}
	return domain.Catalog{ID: "catalog-1", Questions: questions}
}

type fixture struct {
	service *app.RoundService
	seen    *memory.SeenStore
	rounds  *memory.RoundStore
}

func newFixture(catalog domain.Catalog, roundSize, bonusEvery int) fixture {
	seen := memory.NewSeenStore()
	rounds := memory.NewRoundStore()
	repo := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[string]domain.Catalog{
		catalog.ID: catalog,
	}), 5*time.Minute)
	service := app.NewRoundServiceWithRand(app.Config{
		CatalogID:        catalog.ID,
		RoundSize:        roundSize,
		StreakBonusEvery: bonusEvery,
	}, repo, seen, rounds, rand.New(rand.NewSource(42)), time.Now)
	return fixture{service: service, seen: seen, rounds: rounds}
}

func TestStartRoundServesFirstQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1", "c2"}, 5), 4, 3)

	state, err := f.service.StartRound(ctx, "p1")
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if len(state.QuestionSequence) != 4 {
		t.Fatalf("expected sequence of 4, got %d", len(state.QuestionSequence))
	}
	if state.PendingQuestionID != state.QuestionSequence[0] {
		t.Fatalf("pending %s does not match first question %s", state.PendingQuestionID, state.QuestionSequence[0])
	}
	total := 0
	for _, n := range state.CategoryTotals {
		total += n
	}
	if total != 1 {
		t.Fatalf("expected exactly the served question tallied, got %d", total)
	}

	q, _, err := f.service.CurrentQuestion(ctx, "p1")
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	if q == nil || q.ID != state.PendingQuestionID {
		t.Fatalf("current question mismatch")
	}
}

func TestStartRoundEmptyCatalog(t *testing.T) {
	f := newFixture(domain.Catalog{ID: "catalog-1"}, 10, 3)
	if _, err := f.service.StartRound(context.Background(), "p1"); !errors.Is(err, domain.ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}
}

func TestStartRoundSmallCatalog(t *testing.T) {
	// Fewer distinct questions than the round size: proceed with what exists.
	f := newFixture(testCatalog([]string{"c1"}, 3), 10, 3)
	state, err := f.service.StartRound(context.Background(), "p1")
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if len(state.QuestionSequence) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(state.QuestionSequence))
	}
}

func TestStreakBonusAndReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 6), 5, 3)

	if _, err := f.service.StartRound(ctx, "p1"); err != nil {
		t.Fatalf("start round: %v", err)
	}

	// Three consecutive correct answers earn exactly one bonus.
	for i := 0; i < 3; i++ {
		q, _, err := f.service.CurrentQuestion(ctx, "p1")
		if err != nil || q == nil {
			t.Fatalf("current question %d: %v", i, err)
		}
		outcome, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "a")
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if !outcome.Correct {
			t.Fatalf("expected correct answer at %d", i)
		}
		wantBonus := i == 2
		if outcome.BonusAwarded != wantBonus {
			t.Fatalf("answer %d: bonusAwarded=%v, want %v", i, outcome.BonusAwarded, wantBonus)
		}
	}

	// A wrong answer resets the streak without touching the bonus.
	q, _, _ := f.service.CurrentQuestion(ctx, "p1")
	outcome, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "B")
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if outcome.Correct || outcome.Streak != 0 {
		t.Fatalf("expected streak reset, got %+v", outcome)
	}

	progress, err := f.service.Stats(ctx, "p1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if progress.Score != 3 || progress.Bonus != 1 || progress.Position != 4 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestStaleSubmissionRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 4), 3, 3)

	if _, err := f.service.StartRound(ctx, "p1"); err != nil {
		t.Fatalf("start round: %v", err)
	}
	q, _, _ := f.service.CurrentQuestion(ctx, "p1")
	if _, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "A"); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Double-tap: same question again after the position advanced.
	if _, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "A"); !errors.Is(err, domain.ErrStaleQuestion) {
		t.Fatalf("expected ErrStaleQuestion, got %v", err)
	}
	progress, _ := f.service.Stats(ctx, "p1")
	if progress.Score != 1 {
		t.Fatalf("stale submission mutated score: %+v", progress)
	}
}

func TestSkipMarksSeenAndCountsCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 4), 2, 3)

	state, err := f.service.StartRound(ctx, "p1")
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	skippedID := state.PendingQuestionID

	state, err = f.service.SkipCurrent(ctx, "p1")
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if state.Score != 0 || state.Streak != 0 || state.CorrectCount != 0 {
		t.Fatalf("skip must not grade: %+v", state)
	}

	seen, _ := f.seen.Members(ctx, "p1")
	if _, ok := seen[skippedID]; !ok {
		t.Fatalf("skipped question %s not marked seen", skippedID)
	}
	// Served categories are tallied at serve time, skips included.
	if state.CategoryTotals["c1"] != 2 {
		t.Fatalf("expected both served questions tallied, got %v", state.CategoryTotals)
	}
}

func TestRoundCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 3), 3, 3)

	if _, err := f.service.StartRound(ctx, "p1"); err != nil {
		t.Fatalf("start round: %v", err)
	}
	for i := 0; i < 3; i++ {
		q, _, err := f.service.CurrentQuestion(ctx, "p1")
		if err != nil || q == nil {
			t.Fatalf("expected pending question at %d", i)
		}
		if i == 1 {
			if _, err := f.service.SkipCurrent(ctx, "p1"); err != nil {
				t.Fatalf("skip: %v", err)
			}
			continue
		}
		if _, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "A"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	q, state, err := f.service.CurrentQuestion(ctx, "p1")
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	if q != nil || !state.Finished() {
		t.Fatalf("expected finished round")
	}

	summary, err := f.service.EndRound(ctx, "p1", false)
	if err != nil {
		t.Fatalf("end round: %v", err)
	}
	if summary.Total != 3 || summary.Score != 2 || summary.Early {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := f.service.Stats(ctx, "p1"); !errors.Is(err, domain.ErrRoundNotFound) {
		t.Fatalf("expected round gone after end, got %v", err)
	}
}

func TestEndRoundEarly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 4), 4, 3)

	if _, err := f.service.StartRound(ctx, "p1"); err != nil {
		t.Fatalf("start round: %v", err)
	}
	q, _, _ := f.service.CurrentQuestion(ctx, "p1")
	if _, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "A"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	summary, err := f.service.EndRound(ctx, "p1", true)
	if err != nil {
		t.Fatalf("end round: %v", err)
	}
	if !summary.Early || summary.Score != 1 || summary.Total != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestResetBank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testCatalog([]string{"c1"}, 3), 3, 3)

	if _, err := f.service.StartRound(ctx, "p1"); err != nil {
		t.Fatalf("start round: %v", err)
	}
	q, _, _ := f.service.CurrentQuestion(ctx, "p1")
	if _, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "A"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.service.ResetBank(ctx, "p1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	seen, _ := f.seen.Members(ctx, "p1")
	if len(seen) != 0 {
		t.Fatalf("expected seen set cleared, got %d entries", len(seen))
	}
	if _, err := f.service.Stats(ctx, "p1"); !errors.Is(err, domain.ErrRoundNotFound) {
		t.Fatalf("expected round deleted, got %v", err)
	}
}

func TestFullRoundScenario(t *testing.T) {
	ctx := context.Background()
	cats := []string{"c1", "c2", "c3", "c4", "c5"}
	f := newFixture(testCatalog(cats, 4), 20, 3)

	state, err := f.service.StartRound(ctx, "p1")
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if len(state.QuestionSequence) != 20 {
		t.Fatalf("expected all 20 questions, got %d", len(state.QuestionSequence))
	}

	var summary domain.RoundSummary
	for {
		q, st, err := f.service.CurrentQuestion(ctx, "p1")
		if err != nil {
			t.Fatalf("current question: %v", err)
		}
		if q == nil {
			summary, err = f.service.EndRound(ctx, "p1", false)
			if err != nil {
				t.Fatalf("end round: %v", err)
			}
			break
		}
		outcome, err := f.service.SubmitAnswer(ctx, "p1", q.ID, "a")
		if err != nil {
			t.Fatalf("submit at position %d: %v", st.Position, err)
		}
		if !outcome.Correct {
			t.Fatalf("expected correct answer for %s", q.ID)
		}
	}

	if summary.Score != 20 || summary.CorrectCount != 20 || summary.Bonus != 6 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for _, cat := range cats {
		if summary.CategoryTotals[cat] != 4 || summary.CategoryCorrect[cat] != 4 {
			t.Fatalf("category %s tally mismatch: %+v", cat, summary)
		}
	}

	seen, _ := f.seen.Members(ctx, "p1")
	if len(seen) != 20 {
		t.Fatalf("expected 20 seen questions, got %d", len(seen))
	}
}
