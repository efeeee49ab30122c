package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

func newTestConn() *WSConn {
	return &WSConn{
		conn: nil, // no real connection for hub tests
		send: make(chan []byte, 256),
	}
}

func receive(t *testing.T, c *WSConn) WSEvent {
	t.Helper()
	select {
	case msg := <-c.send:
		var event WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return WSEvent{}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub("game-1")
	c := newTestConn()

	hub.Register(c)
	if hub.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	hub.Unregister(c)
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", hub.ConnectionCount())
	}

	// Double unregister must not panic on the closed channel.
	hub.Unregister(c)
}

func TestHubBroadcastReachesAllConnections(t *testing.T) {
	hub := NewHub("game-1")
	c1 := newTestConn()
	c2 := newTestConn()
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Broadcast(EventStateUpdated, map[string]string{"phase": "turn"})

	for _, c := range []*WSConn{c1, c2} {
		event := receive(t, c)
		if event.Type != EventStateUpdated {
			t.Errorf("expected %s, got %s", EventStateUpdated, event.Type)
		}
		if event.GameID != "game-1" {
			t.Errorf("expected game-1, got %s", event.GameID)
		}
	}
}

func TestHubBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub("game-1")
	c := &WSConn{send: make(chan []byte)} // zero capacity, never drained
	hub.Register(c)
	defer hub.Unregister(c)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(EventTurnStarted, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full connection")
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub("game-1")
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestConn()
			hub.Register(c)
			hub.Broadcast(EventStateUpdated, nil)
			hub.Unregister(c)
		}()
	}

	wg.Wait()
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections after concurrent test, got %d", hub.ConnectionCount())
	}
}

func TestQuestionPosedHidesAnswer(t *testing.T) {
	hub := NewHub("game-1")
	c := newTestConn()
	hub.Register(c)
	defer hub.Unregister(c)

	hub.QuestionPosed([]conquest.PlayerID{0, 1}, &trivia.Question{
		ID:           7,
		Kind:         trivia.KindMultipleChoice,
		Category:     "history",
		Text:         "Which year?",
		Options:      []string{"1901", "1914", "1939", "1945"},
		CorrectIndex: 1,
	})

	event := receive(t, c)
	if event.Type != EventQuestionPosed {
		t.Fatalf("expected %s, got %s", EventQuestionPosed, event.Type)
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var payload struct {
		Players  []int          `json:"players"`
		Question map[string]any `json:"question"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(payload.Players))
	}
	if payload.Question["text"] != "Which year?" {
		t.Errorf("unexpected question text %v", payload.Question["text"])
	}
	if _, leaked := payload.Question["correct_index"]; leaked {
		t.Error("correct_index leaked to the client")
	}
	if _, leaked := payload.Question["answer"]; leaked {
		t.Error("answer leaked to the client")
	}
}

func TestBattleResolvedPayload(t *testing.T) {
	hub := NewHub("game-1")
	c := newTestConn()
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BattleResolved(3, &conquest.BattleOutcome{
		Winner:         1,
		RegionCaptured: true,
		Eliminated:     conquest.NoPlayer,
		PointsAwarded:  500,
	})

	event := receive(t, c)
	if event.Type != EventBattleResolved {
		t.Fatalf("expected %s, got %s", EventBattleResolved, event.Type)
	}
	data := event.Data.(map[string]any)
	if data["winner"].(float64) != 1 {
		t.Errorf("unexpected winner %v", data["winner"])
	}
	if data["region_captured"].(bool) != true {
		t.Error("expected region_captured true")
	}
	if data["points_awarded"].(float64) != 500 {
		t.Errorf("unexpected points %v", data["points_awarded"])
	}
}

func TestGameOverPayload(t *testing.T) {
	hub := NewHub("game-1")
	c := newTestConn()
	hub.Register(c)
	defer hub.Unregister(c)

	hub.GameOver(&conquest.Player{ID: 2, Name: "Bot 2", Score: 4200})
	event := receive(t, c)
	if event.Type != EventGameOver {
		t.Fatalf("expected %s, got %s", EventGameOver, event.Type)
	}
	data := event.Data.(map[string]any)
	if data["winner_name"] != "Bot 2" {
		t.Errorf("unexpected winner name %v", data["winner_name"])
	}

	hub.GameOver(nil)
	event = receive(t, c)
	data = event.Data.(map[string]any)
	if data["winner"].(float64) != float64(conquest.NoPlayer) {
		t.Errorf("expected no winner, got %v", data["winner"])
	}
}

type recordedInput struct {
	kind   string
	region conquest.RegionID
	action conquest.Action
	choice int
	value  float64
}

type recordingSink struct {
	inputs []recordedInput
}

func (s *recordingSink) SubmitRegionSelection(region conquest.RegionID, action conquest.Action) {
	s.inputs = append(s.inputs, recordedInput{kind: "selection", region: region, action: action})
}

func (s *recordingSink) SubmitCategoricalAnswer(choice int) {
	s.inputs = append(s.inputs, recordedInput{kind: "choice", choice: choice})
}

func (s *recordingSink) SubmitNumericAnswer(value float64) {
	s.inputs = append(s.inputs, recordedInput{kind: "numeric", value: value})
}

func TestHandleMessageRoutesToGate(t *testing.T) {
	sink := &recordingSink{}
	h := NewWSHandler(NewHub("game-1"), sink)

	h.handleMessage([]byte(`{"action":"select_region","region":5,"move":"fortify"}`))
	h.handleMessage([]byte(`{"action":"select_region","region":3}`))
	h.handleMessage([]byte(`{"action":"answer","choice":2}`))
	h.handleMessage([]byte(`{"action":"numeric_answer","value":3.14}`))
	h.handleMessage([]byte(`{"action":"subscribe"}`)) // unknown, dropped
	h.handleMessage([]byte(`not json`))               // malformed, dropped

	want := []recordedInput{
		{kind: "selection", region: 5, action: conquest.ActionFortify},
		{kind: "selection", region: 3, action: conquest.ActionAttack},
		{kind: "choice", choice: 2},
		{kind: "numeric", value: 3.14},
	}
	if len(sink.inputs) != len(want) {
		t.Fatalf("expected %d inputs, got %d", len(want), len(sink.inputs))
	}
	for i, got := range sink.inputs {
		if got != want[i] {
			t.Errorf("input %d: got %+v, want %+v", i, got, want[i])
		}
	}
}
