package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
	"creed-trivia/internal/infra/memory"
	"creed-trivia/internal/leaderboard"
	"github.com/gorilla/websocket"
)

type staticSource []domain.Question

func (s staticSource) Pool(context.Context) ([]domain.Question, domain.Diagnostics) {
	return s, domain.Diagnostics{Raw: len(s), Normalized: len(s), Usable: len(s)}
}

func TestWebSocketSessionFlow(t *testing.T) {
	board := leaderboard.NewBoard(nil, leaderboard.NewLocalStore(memory.NewKVStore()), nil)
	engine := newTestEngine(board)
	server := httptest.NewServer(NewRouter(NewWSHandler(engine, app.NewRunner()), NewAPIHandler(board, nil, 10)))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Dwight&count=12"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, session := readNext(conn, t, "session")
	if session["name"] != "Dwight" || session["sessionId"] == "" {
		t.Fatalf("unexpected session payload %+v", session)
	}

	for i := 0; i < 2; i++ {
		_, q := readNext(conn, t, "question")
		if int(q["total"].(float64)) != 2 {
			t.Fatalf("expected 2 questions, got %+v", q)
		}
		sendSelect(t, conn, i, 1)
		_, locked := readLocked(t, conn)
		if locked["correct"] != true {
			t.Fatalf("expected correct answer, got %+v", locked)
		}
	}

	_, finished := readNext(conn, t, "finished")
	result := finished["result"].(map[string]any)
	if result["score"].(float64) < 200 {
		t.Fatalf("expected two correct answers, got %+v", result)
	}

	engine.Close()
	top, err := board.Top(context.Background(), 5)
	if err != nil || len(top) != 1 || top[0].Name != "Dwight" {
		t.Fatalf("expected recorded result, got %+v %v", top, err)
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	engine := newTestEngine(nil)
	server := httptest.NewServer(NewRouter(NewWSHandler(engine, app.NewRunner()), NewAPIHandler(nil, nil, 10)))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, session := readNext(conn, t, "session")
	if session["name"] != "Player" {
		t.Fatalf("expected default name, got %+v", session)
	}
	readNext(conn, t, "question")

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readSkippingTicks(t, conn, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func TestWebSocketDuplicateSelectLeavesNextQuestionOpen(t *testing.T) {
	engine := newTestEngine(nil)
	server := httptest.NewServer(NewRouter(NewWSHandler(engine, app.NewRunner()), NewAPIHandler(nil, nil, 10)))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws?name=Kelly", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "session")
	readNext(conn, t, "question")
	sendSelect(t, conn, 0, 1)
	sendSelect(t, conn, 0, 1)
	if _, locked := readLocked(t, conn); locked["questionId"] != "q1" {
		t.Fatalf("expected q1 locked, got %+v", locked)
	}
	_, q := readSkippingTicks(t, conn, "question")
	if q["questionId"] != "q2" {
		t.Fatalf("expected q2, got %+v", q)
	}

	// two countdown ticks prove q2 is still open
	for ticks := 0; ticks < 2; {
		typ, payload := readNext(conn, t, "")
		if typ != "tick" {
			t.Fatalf("q2 must stay open until answered, got %s %+v", typ, payload)
		}
		ticks++
	}

	sendSelect(t, conn, 1, 1)
	_, locked := readLocked(t, conn)
	if locked["questionId"] != "q2" || locked["elapsedMs"].(float64) < 1000 {
		t.Fatalf("expected q2 answered after the ticks, got %+v", locked)
	}
}

func TestWebSocketRequiresQuestionOnSelect(t *testing.T) {
	engine := newTestEngine(nil)
	server := httptest.NewServer(NewRouter(NewWSHandler(engine, app.NewRunner()), NewAPIHandler(nil, nil, 10)))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "session")
	readNext(conn, t, "question")
	if err := conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]any{"index": 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readSkippingTicks(t, conn, "error")
	if payload["message"] != "invalid select payload" {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func newTestEngine(rec app.Recorder) *app.Engine {
	settings := app.DefaultSettings()
	settings.ShuffleQuestions = false
	settings.ShuffleAnswers = false
	return app.NewEngine(settings, app.Deps{
		Source: staticSource{
			{ID: "q1", Text: "Who runs the Scranton branch?", Choices: []string{"Jan", "Michael", "David"}, CorrectIndex: 1},
			{ID: "q2", Text: "What does Creed do?", Choices: []string{"Sales", "Quality assurance"}, CorrectIndex: 1},
		},
		Recorder: rec,
	})
}

func sendSelect(t *testing.T, conn *websocket.Conn, question, index int) {
	t.Helper()
	msg := map[string]any{
		"type":    "select",
		"payload": map[string]any{"question": question, "index": index},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write select: %v", err)
	}
}

func readLocked(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	return readSkippingTicks(t, conn, "locked")
}

// readSkippingTicks tolerates countdown ticks that race with the expected message.
func readSkippingTicks(t *testing.T, conn *websocket.Conn, expect string) (string, map[string]any) {
	t.Helper()
	for {
		typ, payload := readNext(conn, t, "")
		if typ == "tick" {
			continue
		}
		if typ != expect {
			t.Fatalf("expected type %s, got %s", expect, typ)
		}
		return typ, payload
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
