package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"oloom-quiz-service/internal/domain"
	"oloom-quiz-service/internal/match"
	"oloom-quiz-service/internal/sampler"
)

// CatalogRepository loads catalog content (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// SeenStore abstracts the per-player record of question ids already served
// across rounds (in-memory, Redis, etc).
type SeenStore interface {
	Members(ctx context.Context, playerID string) (map[string]struct{}, error)
	Add(ctx context.Context, playerID, questionID string) error
	Clear(ctx context.Context, playerID string) error
}

// RoundStore persists serialized round state keyed by player id so rounds
// survive disconnects and restarts.
type RoundStore interface {
	// Load returns domain.ErrRoundNotFound when the player has no round.
	Load(ctx context.Context, playerID string) (*domain.RoundState, error)
	Save(ctx context.Context, playerID string, state *domain.RoundState) error
	Delete(ctx context.Context, playerID string) error
}

// Config carries the round policy knobs.
type Config struct {
	CatalogID        string
	RoundSize        int
	StreakBonusEvery int
	// Categories fixes the balancing set; empty means derive from the catalog.
	Categories []string
}

// RoundService is the per-player round state machine. The catalog is shared
// and read-only; each player's state is owned exclusively by their session,
// so the host must serialize operations per player (the websocket transport
// does this naturally with one sequential loop per connection).
type RoundService struct {
	cfg      Config
	catalogs CatalogRepository
	seen     SeenStore
	rounds   RoundStore
	rnd      *rand.Rand
	now      func() time.Time
}

func NewRoundService(cfg Config, catalogs CatalogRepository, seen SeenStore, rounds RoundStore) *RoundService {
	return NewRoundServiceWithRand(cfg, catalogs, seen, rounds,
		rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewRoundServiceWithRand allows deterministic sampling and timestamps in tests.
func NewRoundServiceWithRand(cfg Config, catalogs CatalogRepository, seen SeenStore, rounds RoundStore, rnd *rand.Rand, now func() time.Time) *RoundService {
	if cfg.RoundSize <= 0 {
		cfg.RoundSize = 10
	}
	if cfg.StreakBonusEvery <= 0 {
		cfg.StreakBonusEvery = 3
	}
	return &RoundService{
		cfg:      cfg,
		catalogs: catalogs,
		seen:     seen,
		rounds:   rounds,
		rnd:      rnd,
		now:      now,
	}
}

// StartRound samples a fresh question sequence and serves its first question.
// It refuses with ErrInsufficientQuestions when the sample is smaller than
// half the configured round size, unless the whole catalog holds fewer
// distinct questions than that size, in which case any non-empty sample
// proceeds.
func (s *RoundService) StartRound(ctx context.Context, playerID string) (*domain.RoundState, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, s.cfg.CatalogID)
	if err != nil {
		return nil, err
	}
	seen, err := s.seen.Members(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}

	picked := sampler.PickRound(catalog, seen, s.cfg.RoundSize, s.cfg.Categories, s.rnd)
	minimum := s.cfg.RoundSize / 2
	if len(catalog.Questions) < s.cfg.RoundSize {
		minimum = 1
	}
	if len(picked) < minimum || len(picked) == 0 {
		return nil, domain.ErrInsufficientQuestions
	}

	sequence := make([]string, len(picked))
	for i, q := range picked {
		sequence[i] = q.ID
	}
	state := &domain.RoundState{
		Version:          domain.RoundStateVersion,
		CatalogID:        catalog.ID,
		QuestionSequence: sequence,
		CategoryTotals:   make(map[string]int),
		CategoryCorrect:  make(map[string]int),
		StartedAt:        s.now(),
	}
	s.serve(state, catalog)
	if err := s.rounds.Save(ctx, playerID, state); err != nil {
		return nil, fmt.Errorf("save round: %w", err)
	}
	return state, nil
}

// CurrentQuestion returns the pending question, or nil when the round is
// finished. The round state is returned alongside for progress rendering.
func (s *RoundService) CurrentQuestion(ctx context.Context, playerID string) (*domain.Question, *domain.RoundState, error) {
	state, err := s.rounds.Load(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if state.PendingQuestionID == "" {
		return nil, state, nil
	}
	catalog, err := s.catalogs.GetCatalog(ctx, state.CatalogID)
	if err != nil {
		return nil, nil, err
	}
	q, ok := catalog.Lookup(state.PendingQuestionID)
	if !ok {
		return nil, nil, domain.ErrQuestionNotFound
	}
	return &q, state, nil
}

// SubmitAnswer grades the response against the pending question, updates
// score/streak/bonus and the per-category tallies, marks the question seen,
// and advances the round. A submission for any question other than the
// pending one fails with ErrStaleQuestion and mutates nothing.
func (s *RoundService) SubmitAnswer(ctx context.Context, playerID, questionID, raw string) (domain.AnswerOutcome, error) {
	state, err := s.rounds.Load(ctx, playerID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	if state.PendingQuestionID == "" || state.PendingQuestionID != questionID {
		return domain.AnswerOutcome{}, domain.ErrStaleQuestion
	}
	catalog, err := s.catalogs.GetCatalog(ctx, state.CatalogID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	q, ok := catalog.Lookup(questionID)
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrQuestionNotFound
	}

	correct, confidence := match.Verify(q, raw)
	bonusAwarded := false
	if correct {
		state.Score++
		state.CorrectCount++
		state.Streak++
		state.CategoryCorrect[q.Category]++
		if state.Streak%s.cfg.StreakBonusEvery == 0 {
			state.Bonus++
			bonusAwarded = true
		}
	} else {
		state.Streak = 0
	}

	if err := s.seen.Add(ctx, playerID, q.ID); err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("mark seen: %w", err)
	}
	state.Position++
	s.serve(state, catalog)
	if err := s.rounds.Save(ctx, playerID, state); err != nil {
		return domain.AnswerOutcome{}, fmt.Errorf("save round: %w", err)
	}

	return domain.AnswerOutcome{
		QuestionID:    q.ID,
		Correct:       correct,
		Confidence:    confidence,
		CorrectAnswer: q.CorrectText,
		BonusAwarded:  bonusAwarded,
		Score:         state.Score,
		Streak:        state.Streak,
		Finished:      state.Finished(),
	}, nil
}

// SkipCurrent advances past the pending question without grading. Skipped
// questions still count as seen so they do not reappear in a later round.
func (s *RoundService) SkipCurrent(ctx context.Context, playerID string) (*domain.RoundState, error) {
	state, err := s.rounds.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if state.PendingQuestionID == "" {
		return nil, domain.ErrStaleQuestion
	}
	if err := s.seen.Add(ctx, playerID, state.PendingQuestionID); err != nil {
		return nil, fmt.Errorf("mark seen: %w", err)
	}
	catalog, err := s.catalogs.GetCatalog(ctx, state.CatalogID)
	if err != nil {
		return nil, err
	}
	state.Position++
	s.serve(state, catalog)
	if err := s.rounds.Save(ctx, playerID, state); err != nil {
		return nil, fmt.Errorf("save round: %w", err)
	}
	return state, nil
}

// EndRound freezes the round into a summary and discards the stored state.
// The state machine is terminal here; a new round requires StartRound.
func (s *RoundService) EndRound(ctx context.Context, playerID string, early bool) (domain.RoundSummary, error) {
	state, err := s.rounds.Load(ctx, playerID)
	if err != nil {
		return domain.RoundSummary{}, err
	}
	summary := domain.RoundSummary{
		Score:           state.Score,
		Bonus:           state.Bonus,
		CorrectCount:    state.CorrectCount,
		Total:           len(state.QuestionSequence),
		CategoryTotals:  state.CategoryTotals,
		CategoryCorrect: state.CategoryCorrect,
		Early:           early,
	}
	if err := s.rounds.Delete(ctx, playerID); err != nil {
		return domain.RoundSummary{}, fmt.Errorf("delete round: %w", err)
	}
	return summary, nil
}

// Stats reports progress of the in-flight round.
func (s *RoundService) Stats(ctx context.Context, playerID string) (domain.RoundProgress, error) {
	state, err := s.rounds.Load(ctx, playerID)
	if err != nil {
		return domain.RoundProgress{}, err
	}
	return domain.RoundProgress{
		Score:    state.Score,
		Bonus:    state.Bonus,
		Position: state.Position,
		Total:    len(state.QuestionSequence),
	}, nil
}

// ResetBank clears the player's seen set and any in-flight round, giving them
// a fresh bank on the next StartRound.
func (s *RoundService) ResetBank(ctx context.Context, playerID string) error {
	if err := s.seen.Clear(ctx, playerID); err != nil {
		return fmt.Errorf("clear seen set: %w", err)
	}
	if err := s.rounds.Delete(ctx, playerID); err != nil {
		return fmt.Errorf("delete round: %w", err)
	}
	return nil
}

// serve marks the next gradable question pending and tallies its category at
// serve time, so skipped questions still count toward the end-of-round
// breakdown. Entries whose kind the matcher cannot grade are passed over.
func (s *RoundService) serve(state *domain.RoundState, catalog domain.Catalog) {
	for state.Position < len(state.QuestionSequence) {
		id := state.QuestionSequence[state.Position]
		q, ok := catalog.Lookup(id)
		if !ok || !match.Gradable(q.Kind) {
			log.Printf("round for catalog %s: skipping unservable question %s", state.CatalogID, id)
			state.Position++
			continue
		}
		state.PendingQuestionID = q.ID
		state.CategoryTotals[q.Category]++
		return
	}
	state.PendingQuestionID = ""
}
