package engine

import (
	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// Broadcaster receives presentation events from the engine. The engine
// never waits on a broadcaster; implementations must not block.
type Broadcaster interface {
	// TurnStarted fires when a player's turn begins.
	TurnStarted(player conquest.PlayerID, turn, remaining int, special bool)

	// StateUpdated fires after any state mutation worth redrawing.
	StateUpdated(snapshot *Snapshot)

	// QuestionPosed fires when a question goes to the given players.
	QuestionPosed(players []conquest.PlayerID, question *trivia.Question)

	// BattleResolved fires after a battle outcome is applied.
	BattleResolved(region conquest.RegionID, outcome *conquest.BattleOutcome)

	// GameOver fires once, with the winner (nil if nobody survived).
	GameOver(winner *conquest.Player)
}

// NoopBroadcaster is the default Broadcaster when no presentation layer
// is attached.
type NoopBroadcaster struct{}

func (NoopBroadcaster) TurnStarted(conquest.PlayerID, int, int, bool)          {}
func (NoopBroadcaster) StateUpdated(*Snapshot)                                 {}
func (NoopBroadcaster) QuestionPosed([]conquest.PlayerID, *trivia.Question)    {}
func (NoopBroadcaster) BattleResolved(conquest.RegionID, *conquest.BattleOutcome) {}
func (NoopBroadcaster) GameOver(*conquest.Player)                              {}
