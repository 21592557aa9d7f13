package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	engine   *app.Engine
	runner   *app.Runner
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, runner *app.Runner) *WSHandler {
	return &WSHandler{
		engine: engine,
		runner: runner,
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

// selectPayload answers the question at position Question (the "index" of
// the question event) with the presented choice Index.
type selectPayload struct {
	Question *int `json:"question"`
	Index    int  `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type finishedPayload struct {
	Result   domain.SessionResult `json:"result"`
	Outcomes []domain.Outcome     `json:"outcomes"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and plays one solo session over the socket.
// Query: name (optional), count (optional).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	session := h.engine.NewSession(r.URL.Query().Get("name"), count)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	stop := make(chan struct{})
	writerDone := make(chan struct{})
	readerDone := make(chan struct{})
	selections := make(chan app.Selection)

	// Only this goroutine writes to the connection.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					cancel()
					return
				}
			case <-stop:
				for {
					select {
					case msg := <-send:
						if err := conn.WriteJSON(msg); err != nil {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()

	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				return
			}
			switch inbound.Type {
			case "select":
				var payload selectPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Question == nil {
					emit(ctx, send, "error", errorPayload{Message: "invalid select payload"})
					continue
				}
				select {
				case selections <- app.Selection{Question: *payload.Question, Index: payload.Index}:
				case <-ctx.Done():
					return
				}
			default:
				emit(ctx, send, "error", errorPayload{Message: "unsupported message type"})
			}
		}
	}()

	emit(ctx, send, "session", sessionPayload{SessionID: session.ID(), Name: session.Name()})
	presenter := &wsPresenter{ctx: ctx, send: send}
	if _, err := h.runner.Run(ctx, session, presenter, selections); err != nil && ctx.Err() == nil {
		emit(ctx, send, "error", errorPayload{Message: err.Error()})
	}

	close(stop)
	<-writerDone
	cancel()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, session.State().String()),
		time.Now().Add(time.Second))
	conn.Close()
	<-readerDone
}

func emit(ctx context.Context, send chan<- outboundMessage[any], typ string, payload any) {
	select {
	case send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-ctx.Done():
	}
}

// wsPresenter turns session events into socket messages.
type wsPresenter struct {
	ctx  context.Context
	send chan<- outboundMessage[any]
}

func (p *wsPresenter) Question(q domain.PresentedQuestion) {
	emit(p.ctx, p.send, "question", q)
}

func (p *wsPresenter) Tick(remaining int) {
	emit(p.ctx, p.send, "tick", tickPayload{Remaining: remaining})
}

func (p *wsPresenter) Locked(o domain.Outcome) {
	emit(p.ctx, p.send, "locked", o)
}

func (p *wsPresenter) Finished(result domain.SessionResult, outcomes []domain.Outcome) {
	emit(p.ctx, p.send, "finished", finishedPayload{Result: result, Outcomes: outcomes})
}
