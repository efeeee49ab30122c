package conquest

import "time"

// MCOutcome is the result of a multiple-choice exchange.
type MCOutcome string

const (
	// MCAttackerWins: only the attacker answered correctly.
	MCAttackerWins MCOutcome = "attacker_wins"
	// MCDefenderWins: the attacker answered wrong (including not at
	// all). Defense holds regardless of the defender's own answer.
	MCDefenderWins MCOutcome = "defender_wins"
	// MCTie: both answered correctly; resolved by a numeric tie-break.
	MCTie MCOutcome = "tie"
)

// ResolveMC adjudicates a multiple-choice exchange. A missing answer
// counts as wrong.
func ResolveMC(attackerCorrect, defenderCorrect bool) MCOutcome {
	switch {
	case attackerCorrect && defenderCorrect:
		return MCTie
	case attackerCorrect:
		return MCAttackerWins
	default:
		return MCDefenderWins
	}
}

// NumericAnswer is one side's response to a numeric tie-break question.
// Answered=false means the side let the clock run out.
type NumericAnswer struct {
	Value    float64
	At       time.Time
	Answered bool
}

// ResolveNumeric adjudicates the numeric tie-break. Closest value to
// the target wins; on equal distance the earlier answer wins; with both
// sides silent, or still tied, the defender holds.
func ResolveNumeric(target float64, attacker, defender NumericAnswer) MCOutcome {
	switch {
	case !attacker.Answered && !defender.Answered:
		return MCDefenderWins
	case !attacker.Answered:
		return MCDefenderWins
	case !defender.Answered:
		return MCAttackerWins
	}

	da := abs(attacker.Value - target)
	dd := abs(defender.Value - target)
	if da < dd {
		return MCAttackerWins
	}
	if dd < da {
		return MCDefenderWins
	}
	if attacker.At.Before(defender.At) {
		return MCAttackerWins
	}
	return MCDefenderWins
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// BattleContext fixes the participants and scoring modifiers of one
// battle before resolution starts.
type BattleContext struct {
	Attacker     PlayerID
	Defender     PlayerID
	Region       RegionID
	DefenseBonus int
	SpecialRound bool
}

// BattleOutcome records what ApplyOutcome changed.
type BattleOutcome struct {
	Winner           PlayerID
	RegionCaptured   bool
	CapitalDamaged   bool
	CapitalDestroyed bool
	Eliminated       PlayerID
	PointsAwarded    int
}

// ApplyOutcome is the single place region ownership and battle scoring
// change. The winner must be one of the two battle participants and the
// contested region must still belong to the recorded defender.
//
// Attacker wins a normal region: the region changes hands, its
// fortification resets, and the attacker scores its current value. A
// freshly captured region is then worth CapturedRegionValue.
//
// Attacker wins a capital: the capital loses one hit point instead of
// changing hands. The region is conquered only when the capital falls,
// which also eliminates its owner and transfers everything they hold.
//
// Defender wins: the defender scores the defense bonus.
//
// Scores only ever increase here. During a special round all points
// awarded are doubled.
func ApplyOutcome(gs *GameState, ctx BattleContext, winner PlayerID) (*BattleOutcome, error) {
	if winner != ctx.Attacker && winner != ctx.Defender {
		return nil, ErrNoWinner
	}
	region, ok := gs.Regions[ctx.Region]
	if !ok || region.Owner == NoPlayer || region.Owner != ctx.Defender {
		return nil, ErrNoOwner
	}
	attacker, ok := gs.Players[ctx.Attacker]
	if !ok {
		return nil, ErrNoOwner
	}
	defender, ok := gs.Players[ctx.Defender]
	if !ok {
		return nil, ErrNoOwner
	}

	mult := 1
	if ctx.SpecialRound {
		mult = 2
	}
	out := &BattleOutcome{Winner: winner, Eliminated: NoPlayer}

	if winner == ctx.Defender {
		points := ctx.DefenseBonus * mult
		defender.Score += points
		out.PointsAwarded = points
		if c, ok := gs.Capitals[ctx.Region]; ok {
			c.RegisterAttack()
		}
		return out, nil
	}

	if c, ok := gs.Capitals[ctx.Region]; ok && region.Kind == RegionCapital {
		out.CapitalDamaged = true
		if fell := c.TakeDamage(); !fell {
			return out, nil
		}
		// Capital fell: score it, then the owner is eliminated and
		// everything they hold transfers to the attacker.
		out.CapitalDestroyed = true
		out.Eliminated = ctx.Defender
		points := region.Value * mult
		attacker.Score += points
		out.PointsAwarded = points
		region.Captured = true
		gs.EliminatePlayer(ctx.Defender, ctx.Attacker)
		return out, nil
	}

	points := region.Value * mult
	attacker.Score += points
	out.PointsAwarded = points
	out.RegionCaptured = true

	defender.removeRegion(ctx.Region)
	region.Owner = ctx.Attacker
	attacker.addRegion(ctx.Region)
	region.Fortification = FortNone
	region.Captured = true
	region.Value = CapturedRegionValue
	gs.refreshAlive(ctx.Defender)

	return out, nil
}
