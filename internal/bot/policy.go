// Package bot implements the AI decision policy: target selection by
// difficulty, simulated answers, and simulated think time. It never
// mutates game state; the engine executes whatever the policy picks.
package bot

import (
	"time"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// Difficulty controls how sharply the policy plays and answers.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a config string to a Difficulty, defaulting to
// medium for anything unrecognized.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Easy, Hard:
		return Difficulty(s)
	default:
		return Medium
	}
}

// Decision is a chosen turn action and its target region.
type Decision struct {
	Action conquest.Action
	Region conquest.RegionID
}

// DefaultPressureRatio is the score ratio below which an opponent
// counts as far enough ahead to attract extra attack pressure.
const DefaultPressureRatio = 0.5

// Policy makes all decisions for one AI player at a fixed difficulty.
type Policy struct {
	Difficulty Difficulty

	// PressureRatio triggers the attack-scoring pressure bonus when
	// this player's score divided by the target owner's falls below it.
	PressureRatio float64
}

// NewPolicy returns a policy for the given difficulty.
func NewPolicy(d Difficulty) *Policy {
	return &Policy{Difficulty: d, PressureRatio: DefaultPressureRatio}
}

// ChooseTurnAction picks the player's action for this turn. Attacks are
// preferred; fortification is a fallback when no attack is possible.
// ok=false means the player has no legal action and the turn is skipped.
func (p *Policy) ChooseTurnAction(gs *conquest.GameState, player conquest.PlayerID) (Decision, bool) {
	if targets := conquest.AttackTargets(gs, player); len(targets) > 0 {
		ranked := rankCandidates(gs, player, targets, p.scoreAttackTarget)
		pick := ranked[p.pickRank(len(ranked))]
		return Decision{Action: conquest.ActionAttack, Region: pick.region.ID}, true
	}
	if targets := conquest.FortifyTargets(gs, player); len(targets) > 0 {
		ranked := rankCandidates(gs, player, targets, scoreFortifyTarget)
		pick := ranked[p.pickRank(len(ranked))]
		return Decision{Action: conquest.ActionFortify, Region: pick.region.ID}, true
	}
	return Decision{}, false
}

// ChooseOccupation picks an unowned region to claim during the
// occupation phase. Returns nil if there are no candidates.
func (p *Policy) ChooseOccupation(gs *conquest.GameState, player conquest.PlayerID, candidates []*conquest.Region) *conquest.Region {
	if len(candidates) == 0 {
		return nil
	}
	ranked := rankCandidates(gs, player, candidates, scoreOccupationTarget)
	return ranked[p.pickRank(len(ranked))].region
}

// pickRank selects an index into a best-first candidate list. Hard
// always takes the best; medium takes the best 70% of the time and the
// runner-up otherwise; easy picks uniformly among the top three.
func (p *Policy) pickRank(n int) int {
	if n <= 1 {
		return 0
	}
	switch p.Difficulty {
	case Hard:
		return 0
	case Easy:
		top := 3
		if n < top {
			top = n
		}
		return botIntn(top)
	default:
		if botFloat64() < 0.7 {
			return 0
		}
		return 1
	}
}

// Think-time bounds per difficulty, in seconds. Weaker play thinks longer.
var thinkRanges = map[Difficulty][2]float64{
	Easy:   {3, 5},
	Medium: {2, 4},
	Hard:   {1, 3},
}

// ThinkTime returns a simulated deliberation delay for this difficulty.
func (p *Policy) ThinkTime() time.Duration {
	bounds, ok := thinkRanges[p.Difficulty]
	if !ok {
		bounds = thinkRanges[Medium]
	}
	return time.Duration(botUniform(bounds[0], bounds[1]) * float64(time.Second))
}
