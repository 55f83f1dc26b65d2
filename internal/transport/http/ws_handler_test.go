package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"movie-trivia-service/internal/app"
	"movie-trivia-service/internal/domain"
	"movie-trivia-service/internal/infra/memory"
)

type staticSource struct{}

func (staticSource) FetchBatch(_ context.Context, amount int) ([]domain.Question, error) {
	batch := make([]domain.Question, amount)
	for i := range batch {
		batch[i] = domain.Question{
			Prompt:           fmt.Sprintf("Question %d", i),
			CorrectAnswer:    fmt.Sprintf("right-%d", i),
			IncorrectAnswers: []string{fmt.Sprintf("wrong-%d", i)},
		}
	}
	return batch, nil
}

func newTestHandler() *WSHandler {
	service := app.NewTriviaService(staticSource{}, nil, memory.NewEligibilityStore(), app.Options{
		BatchSize:    2,
		RoundSeconds: 30,
		Tick:         50 * time.Millisecond,
		AdvanceDelay: time.Millisecond,
		TimeoutGrace: time.Millisecond,
	})
	return NewWSHandler(service)
}

func TestWebSocketSessionFlow(t *testing.T) {
	wsHandler := newTestHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Round 0 opens once the batch is loaded.
	readUntil(conn, t, func(typ string, payload map[string]any) bool {
		return typ == "state" && payload["phase"] == "ready"
	})

	// Answer round 0 correctly.
	writeMessage(conn, t, "answer", map[string]any{"answer": "right-0"})
	result := readUntil(conn, t, func(typ string, payload map[string]any) bool {
		return typ == "answerResult"
	})
	if result["correct"] != true {
		t.Fatalf("expected correct answer result, got %v", result)
	}

	// Round 1 opens; answer it wrong.
	readUntil(conn, t, func(typ string, payload map[string]any) bool {
		if typ != "state" || payload["phase"] != "ready" {
			return false
		}
		round, _ := payload["round"].(map[string]any)
		return round != nil && round["index"] == float64(1)
	})
	writeMessage(conn, t, "answer", map[string]any{"answer": "wrong-1"})
	result = readUntil(conn, t, func(typ string, payload map[string]any) bool {
		return typ == "answerResult"
	})
	if result["correct"] != false {
		t.Fatalf("expected wrong answer result, got %v", result)
	}

	// Two rounds answered completes the session.
	final := readUntil(conn, t, func(typ string, payload map[string]any) bool {
		return typ == "state" && payload["phase"] == "complete"
	})
	if final["score"] != float64(1) || final["questionsAnswered"] != float64(2) || final["gameOver"] != true {
		t.Fatalf("unexpected final state: %v", final)
	}
}

func TestWebSocketRequiresUserID(t *testing.T) {
	wsHandler := newTestHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing userId, got %d", resp.StatusCode)
	}
}

func writeMessage(conn *websocket.Conn, t *testing.T, typ string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readUntil(conn *websocket.Conn, t *testing.T, pred func(typ string, payload map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if pred(msg.Type, msg.Payload) {
			return msg.Payload
		}
	}
	t.Fatalf("timed out waiting for expected message")
	return nil
}
