// Package sampler selects the question sequence for one round, balancing
// across categories while avoiding questions the player has already seen.
package sampler

import (
	"math/rand"
	"time"

	"oloom-quiz-service/internal/domain"
)

// categoryFloor is the minimum per-category share of a round whenever that
// category still holds that many unseen questions.
const categoryFloor = 2

// PickRound returns an ordered list of questions for one round. The result
// never contains a duplicate id; previously seen questions are drawn only
// once every unseen question in the catalog is exhausted. The final order is
// shuffled so category grouping is not predictable. rnd may be nil, in which
// case a time-seeded source is used.
func PickRound(catalog domain.Catalog, seen map[string]struct{}, roundSize int, categories []string, rnd *rand.Rand) []domain.Question {
	if roundSize <= 0 || len(catalog.Questions) == 0 {
		return nil
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(categories) == 0 {
		categories = catalog.Categories()
	}
	if roundSize > len(catalog.Questions) {
		roundSize = len(catalog.Questions)
	}

	unseenByCat := make(map[string][]domain.Question, len(categories))
	var seenPool []domain.Question
	for _, q := range catalog.Questions {
		if _, ok := seen[q.ID]; ok {
			seenPool = append(seenPool, q)
			continue
		}
		unseenByCat[q.Category] = append(unseenByCat[q.Category], q)
	}

	targets := planTargets(unseenByCat, roundSize, categories)

	chosen := make(map[string]struct{}, roundSize)
	picked := make([]domain.Question, 0, roundSize)
	for _, cat := range categories {
		pool := unseenByCat[cat]
		rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, q := range pool[:targets[cat]] {
			picked = append(picked, q)
			chosen[q.ID] = struct{}{}
		}
	}

	// Top up from the unseen remainder across all categories, then, only if
	// the player has seen everything else, from the seen pool.
	if len(picked) < roundSize {
		var rest []domain.Question
		for _, pool := range unseenByCat {
			for _, q := range pool {
				if _, ok := chosen[q.ID]; !ok {
					rest = append(rest, q)
				}
			}
		}
		picked = topUp(picked, rest, chosen, roundSize, rnd)
	}
	if len(picked) < roundSize {
		picked = topUp(picked, seenPool, chosen, roundSize, rnd)
	}

	rnd.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked
}

// planTargets computes per-category counts: an even split with a floor of
// two where unseen capacity allows, trimmed back to the round size, then the
// remaining slots handed greedily to the categories with the most spare
// unseen questions.
func planTargets(unseenByCat map[string][]domain.Question, roundSize int, categories []string) map[string]int {
	base := roundSize / len(categories)
	targets := make(map[string]int, len(categories))
	assigned := 0
	for _, cat := range categories {
		want := base
		if want < categoryFloor {
			want = categoryFloor
		}
		if n := len(unseenByCat[cat]); want > n {
			want = n
		}
		targets[cat] = want
		assigned += want
	}

	for assigned > roundSize {
		largest := ""
		for _, cat := range categories {
			if largest == "" || targets[cat] > targets[largest] {
				largest = cat
			}
		}
		targets[largest]--
		assigned--
	}

	for assigned < roundSize {
		best := ""
		bestSpare := 0
		for _, cat := range categories {
			if spare := len(unseenByCat[cat]) - targets[cat]; spare > bestSpare {
				best, bestSpare = cat, spare
			}
		}
		if best == "" {
			break
		}
		targets[best]++
		assigned++
	}
	return targets
}

func topUp(picked, pool []domain.Question, chosen map[string]struct{}, roundSize int, rnd *rand.Rand) []domain.Question {
	rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, q := range pool {
		if len(picked) >= roundSize {
			break
		}
		if _, ok := chosen[q.ID]; ok {
			continue
		}
		picked = append(picked, q)
		chosen[q.ID] = struct{}{}
	}
	return picked
}
