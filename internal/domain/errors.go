package domain

import "errors"

var (
	// ErrInsufficientQuestions is returned when the catalog cannot supply a
	// usable round. Not retryable until the catalog grows.
	ErrInsufficientQuestions = errors.New("not enough questions to start a round")
	// ErrStaleQuestion is returned when a submission references a question
	// that is no longer pending (double-tap, answer after skip). The caller
	// should re-fetch the current question; no state was mutated.
	ErrStaleQuestion = errors.New("submitted question is no longer pending")
	// ErrRoundNotFound is returned when a player has no round in progress.
	ErrRoundNotFound = errors.New("round not found")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrQuestionNotFound indicates a question id is not in the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnknownQuestionKind indicates a catalog entry with an ungradable kind.
	ErrUnknownQuestionKind = errors.New("unknown question kind")
)
