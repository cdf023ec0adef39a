package sampler

import (
	"fmt"
	"math/rand"
	"testing"

	"oloom-quiz-service/internal/domain"
)

// buildCatalog makes perCategory questions in each of the given categories.
func buildCatalog(categories []string, perCategory int) domain.Catalog {
	var questions []domain.Question
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			id := fmt.Sprintf("%s-%d", cat, i)
			questions = append(questions, domain.Question{
				ID:           id,
				Kind:         domain.KindChoice,
				Category:     cat,
				Prompt:       "prompt " + id,
				Choices:      []domain.Choice{{Label: "A", Text: "x"}, {Label: "B", Text: "y"}},
				CorrectLabel: "A",
				CorrectText:  "x",
			})
		}
	}
	return domain.Catalog{ID: "catalog-1", Questions: questions}
}

func assertNoDuplicates(t *testing.T, picked []domain.Question) {
	t.Helper()
	ids := make(map[string]struct{}, len(picked))
	for _, q := range picked {
		if _, dup := ids[q.ID]; dup {
			t.Fatalf("duplicate question %s in round", q.ID)
		}
		ids[q.ID] = struct{}{}
	}
}

func TestPickRoundExactSize(t *testing.T) {
	cats := []string{"c1", "c2", "c3", "c4", "c5"}
	catalog := buildCatalog(cats, 10)
	rnd := rand.New(rand.NewSource(1))

	picked := PickRound(catalog, nil, 20, cats, rnd)
	if len(picked) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(picked))
	}
	assertNoDuplicates(t, picked)
}

func TestPickRoundCategoryCoverage(t *testing.T) {
	cats := []string{"c1", "c2", "c3", "c4", "c5"}
	catalog := buildCatalog(cats, 4)
	rnd := rand.New(rand.NewSource(7))

	picked := PickRound(catalog, nil, 20, cats, rnd)
	if len(picked) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(picked))
	}
	counts := make(map[string]int)
	for _, q := range picked {
		counts[q.Category]++
	}
	for _, cat := range cats {
		if counts[cat] < 2 {
			t.Fatalf("category %s contributed %d questions, want >= 2", cat, counts[cat])
		}
	}
}

func TestPickRoundNoRepeatsWithPartialSeen(t *testing.T) {
	cats := []string{"c1", "c2"}
	catalog := buildCatalog(cats, 10)

	// Mark 15 of 20 distinct questions as seen; the round must still fill
	// with 20 unique ids, drawing seen questions only for the shortfall.
	seen := make(map[string]struct{})
	for _, q := range catalog.Questions[:15] {
		seen[q.ID] = struct{}{}
	}
	rnd := rand.New(rand.NewSource(3))
	picked := PickRound(catalog, seen, 20, cats, rnd)
	if len(picked) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(picked))
	}
	assertNoDuplicates(t, picked)
}

func TestPickRoundPrefersUnseen(t *testing.T) {
	cats := []string{"c1", "c2"}
	catalog := buildCatalog(cats, 10)
	seen := make(map[string]struct{})
	for _, q := range catalog.Questions[:10] {
		seen[q.ID] = struct{}{}
	}
	rnd := rand.New(rand.NewSource(5))

	picked := PickRound(catalog, seen, 10, cats, rnd)
	if len(picked) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(picked))
	}
	for _, q := range picked {
		if _, wasSeen := seen[q.ID]; wasSeen {
			t.Fatalf("picked seen question %s while unseen questions remain", q.ID)
		}
	}
}

func TestPickRoundEverythingSeen(t *testing.T) {
	cats := []string{"c1"}
	catalog := buildCatalog(cats, 5)
	seen := make(map[string]struct{})
	for _, q := range catalog.Questions {
		seen[q.ID] = struct{}{}
	}
	rnd := rand.New(rand.NewSource(9))

	picked := PickRound(catalog, seen, 5, cats, rnd)
	if len(picked) != 5 {
		t.Fatalf("expected repeats of seen questions, got %d", len(picked))
	}
	assertNoDuplicates(t, picked)
}

func TestPickRoundCappedAtDistinctCount(t *testing.T) {
	cats := []string{"c1"}
	catalog := buildCatalog(cats, 3)
	rnd := rand.New(rand.NewSource(11))

	picked := PickRound(catalog, nil, 10, cats, rnd)
	if len(picked) != 3 {
		t.Fatalf("expected result capped at 3 distinct questions, got %d", len(picked))
	}
	assertNoDuplicates(t, picked)
}

func TestPickRoundEmptyCatalog(t *testing.T) {
	if picked := PickRound(domain.Catalog{}, nil, 10, nil, rand.New(rand.NewSource(1))); len(picked) != 0 {
		t.Fatalf("expected empty result, got %d", len(picked))
	}
}

func TestPickRoundDerivesCategories(t *testing.T) {
	catalog := buildCatalog([]string{"c1", "c2"}, 5)
	rnd := rand.New(rand.NewSource(13))
	picked := PickRound(catalog, nil, 6, nil, rnd)
	if len(picked) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(picked))
	}
	counts := make(map[string]int)
	for _, q := range picked {
		counts[q.Category]++
	}
	if counts["c1"] < 2 || counts["c2"] < 2 {
		t.Fatalf("expected both derived categories represented, got %v", counts)
	}
}
