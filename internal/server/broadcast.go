package server

import (
	"github.com/iamstoobit/Triviador/internal/engine"
	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// questionView is the client-facing shape of a question. The correct
// answer stays server-side until resolution.
type questionView struct {
	ID       int64       `json:"id"`
	Kind     trivia.Kind `json:"kind"`
	Category string      `json:"category,omitempty"`
	Text     string      `json:"text"`
	Options  []string    `json:"options,omitempty"`
}

func viewOf(q *trivia.Question) questionView {
	return questionView{
		ID:       q.ID,
		Kind:     q.Kind,
		Category: q.Category,
		Text:     q.Text,
		Options:  q.Options,
	}
}

// TurnStarted implements engine.Broadcaster.
func (h *Hub) TurnStarted(player conquest.PlayerID, turn, remaining int, special bool) {
	h.Broadcast(EventTurnStarted, map[string]any{
		"player":    player,
		"turn":      turn,
		"remaining": remaining,
		"special":   special,
	})
}

// StateUpdated implements engine.Broadcaster.
func (h *Hub) StateUpdated(snapshot *engine.Snapshot) {
	h.Broadcast(EventStateUpdated, snapshot)
}

// QuestionPosed implements engine.Broadcaster.
func (h *Hub) QuestionPosed(players []conquest.PlayerID, question *trivia.Question) {
	h.Broadcast(EventQuestionPosed, map[string]any{
		"players":  players,
		"question": viewOf(question),
	})
}

// BattleResolved implements engine.Broadcaster.
func (h *Hub) BattleResolved(region conquest.RegionID, outcome *conquest.BattleOutcome) {
	h.Broadcast(EventBattleResolved, map[string]any{
		"region":            region,
		"winner":            outcome.Winner,
		"region_captured":   outcome.RegionCaptured,
		"capital_damaged":   outcome.CapitalDamaged,
		"capital_destroyed": outcome.CapitalDestroyed,
		"eliminated":        outcome.Eliminated,
		"points_awarded":    outcome.PointsAwarded,
	})
}

// GameOver implements engine.Broadcaster.
func (h *Hub) GameOver(winner *conquest.Player) {
	data := map[string]any{"winner": conquest.NoPlayer}
	if winner != nil {
		data["winner"] = winner.ID
		data["winner_name"] = winner.Name
		data["score"] = winner.Score
	}
	h.Broadcast(EventGameOver, data)
}
