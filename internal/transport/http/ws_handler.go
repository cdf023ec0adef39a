package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"oloom-quiz-service/internal/app"
	"oloom-quiz-service/internal/domain"
)

// WSHandler exposes the round engine over a websocket chat transport. One
// connection serves one player; the sequential read loop is what serializes
// operations on that player's round.
type WSHandler struct {
	service  *app.RoundService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoundService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is the rendered prompt; it never leaks the correct answer.
type questionView struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Prompt   string          `json:"prompt"`
	Choices  []domain.Choice `json:"choices,omitempty"`
	Position int             `json:"position"`
	Total    int             `json:"total"`
}

type resultView struct {
	domain.AnswerOutcome
	Phrase string `json:"phrase"`
}

type skippedView struct {
	Phrase string `json:"phrase"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the round
// engine. A player with a persisted round resumes at its pending question.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Resume an in-flight round, if any.
	if q, state, err := h.service.CurrentQuestion(r.Context(), playerID); err == nil && q != nil {
		send <- outboundMessage[any]{Type: "question", Payload: viewOf(q, state)}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.handle(r, playerID, inbound, send)
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, playerID string, inbound inboundMessage, send chan<- outboundMessage[any]) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		state, err := h.service.StartRound(ctx, playerID)
		if err != nil {
			h.sendError(send, err)
			return
		}
		h.sendCurrent(r, playerID, state, send)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
			return
		}
		outcome, err := h.service.SubmitAnswer(ctx, playerID, payload.QuestionID, payload.Text)
		if errors.Is(err, domain.ErrStaleQuestion) {
			// Double-tap or answer after a skip: re-render instead of retrying.
			h.sendError(send, err)
			h.resend(r, playerID, send)
			return
		}
		if err != nil {
			h.sendError(send, err)
			return
		}
		phrase := pick(encourageWrong)
		if outcome.Correct {
			phrase = pick(praiseCorrect)
		}
		send <- outboundMessage[any]{Type: "result", Payload: resultView{AnswerOutcome: outcome, Phrase: phrase}}
		h.advance(r, playerID, outcome.Finished, send)
	case "skip":
		state, err := h.service.SkipCurrent(ctx, playerID)
		if err != nil {
			h.sendError(send, err)
			return
		}
		send <- outboundMessage[any]{Type: "skipped", Payload: skippedView{Phrase: pick(skipPhrases)}}
		h.advance(r, playerID, state.Finished(), send)
	case "end":
		summary, err := h.service.EndRound(ctx, playerID, true)
		if err != nil {
			h.sendError(send, err)
			return
		}
		send <- outboundMessage[any]{Type: "summary", Payload: summary}
	case "stats":
		progress, err := h.service.Stats(ctx, playerID)
		if err != nil {
			h.sendError(send, err)
			return
		}
		send <- outboundMessage[any]{Type: "stats", Payload: progress}
	case "reset":
		if err := h.service.ResetBank(ctx, playerID); err != nil {
			h.sendError(send, err)
			return
		}
		send <- outboundMessage[any]{Type: "reset", Payload: struct{}{}}
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

// advance serves the next question, or closes out the round with a summary
// when the sequence is exhausted.
func (h *WSHandler) advance(r *http.Request, playerID string, finished bool, send chan<- outboundMessage[any]) {
	if finished {
		summary, err := h.service.EndRound(r.Context(), playerID, false)
		if err != nil {
			h.sendError(send, err)
			return
		}
		send <- outboundMessage[any]{Type: "summary", Payload: summary}
		return
	}
	h.resend(r, playerID, send)
}

func (h *WSHandler) resend(r *http.Request, playerID string, send chan<- outboundMessage[any]) {
	q, state, err := h.service.CurrentQuestion(r.Context(), playerID)
	if err != nil {
		h.sendError(send, err)
		return
	}
	if q != nil {
		send <- outboundMessage[any]{Type: "question", Payload: viewOf(q, state)}
	}
}

func (h *WSHandler) sendCurrent(r *http.Request, playerID string, state *domain.RoundState, send chan<- outboundMessage[any]) {
	if state.Finished() {
		h.advance(r, playerID, true, send)
		return
	}
	h.resend(r, playerID, send)
}

func (h *WSHandler) sendError(send chan<- outboundMessage[any], err error) {
	send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

func viewOf(q *domain.Question, state *domain.RoundState) questionView {
	return questionView{
		ID:       q.ID,
		Kind:     string(q.Kind),
		Prompt:   q.Prompt,
		Choices:  q.Choices,
		Position: state.Position + 1,
		Total:    len(state.QuestionSequence),
	}
}
