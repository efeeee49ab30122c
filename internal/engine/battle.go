package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// runBattle drives the battle flow for one attack. Normal regions
// resolve in a single exchange. Capitals repeat the exchange for as
// long as the attacker keeps winning and the capital retains hit
// points; the attacker losing any exchange, or question exhaustion,
// ends the assault. applied=false means no outcome was ever applied:
// the attack never happened.
func (e *Engine) runBattle(ctx context.Context, attacker, defender conquest.PlayerID, region conquest.RegionID) (applied bool, err error) {
	gs := e.state
	bctx := conquest.BattleContext{
		Attacker:     attacker,
		Defender:     defender,
		Region:       region,
		DefenseBonus: e.opts.DefenseBonus,
		SpecialRound: gs.SpecialRound,
	}
	_, isCapital := gs.Capitals[region]

	prevPhase := gs.Phase
	if isCapital {
		gs.Phase = conquest.PhaseCapitalAttack
	} else {
		gs.Phase = conquest.PhaseBattle
	}
	defer func() { gs.Phase = prevPhase }()

	log.Info().
		Str("gameId", e.opts.GameID).
		Int("attacker", int(attacker)).
		Int("defender", int(defender)).
		Int("regionId", int(region)).
		Bool("capital", isCapital).
		Msg("battle started")

	for {
		winner, aborted, err := e.runExchange(ctx, bctx)
		if err != nil {
			return applied, err
		}
		if aborted {
			// Question pool exhausted before the exchange could start:
			// the attack never happens and nothing changes.
			log.Warn().Str("gameId", e.opts.GameID).Msg("no question available, attack aborted")
			return applied, nil
		}

		out, err := conquest.ApplyOutcome(gs, bctx, winner)
		if err != nil {
			return applied, fmt.Errorf("applying battle outcome: %w", err)
		}
		applied = true
		e.broadcaster.BattleResolved(region, out)
		e.publish(ctx)

		log.Info().
			Str("gameId", e.opts.GameID).
			Int("winner", int(winner)).
			Int("points", out.PointsAwarded).
			Bool("captured", out.RegionCaptured).
			Bool("capitalDestroyed", out.CapitalDestroyed).
			Msg("battle resolved")

		if !isCapital || winner != attacker || out.CapitalDestroyed {
			return true, nil
		}
	}
}

// runExchange runs one question exchange: a multiple-choice question to
// both sides, and a numeric tie-break when both answer correctly.
// aborted=true means no multiple-choice question was available and the
// exchange never started.
func (e *Engine) runExchange(ctx context.Context, bctx conquest.BattleContext) (winner conquest.PlayerID, aborted bool, err error) {
	q, err := e.source.NextMultipleChoice(ctx, e.pickCategory())
	if err != nil {
		return conquest.NoPlayer, false, fmt.Errorf("drawing question: %w", err)
	}
	if q == nil {
		return conquest.NoPlayer, true, nil
	}

	participants := []conquest.PlayerID{bctx.Attacker, bctx.Defender}
	e.broadcaster.QuestionPosed(participants, q)

	attackerCorrect := e.categoricalAnswer(bctx.Attacker, q)
	defenderCorrect := e.categoricalAnswer(bctx.Defender, q)

	switch conquest.ResolveMC(attackerCorrect, defenderCorrect) {
	case conquest.MCAttackerWins:
		return bctx.Attacker, false, nil
	case conquest.MCDefenderWins:
		return bctx.Defender, false, nil
	}

	// Both correct: numeric tie-break. No numeric question left means
	// the defense holds.
	nq, err := e.source.NextNumeric(ctx)
	if err != nil {
		return conquest.NoPlayer, false, fmt.Errorf("drawing tie-break question: %w", err)
	}
	if nq == nil {
		log.Warn().Str("gameId", e.opts.GameID).Msg("no tie-break question available, defender holds")
		return bctx.Defender, false, nil
	}
	e.broadcaster.QuestionPosed(participants, nq)

	attackerAns := e.numericAnswer(bctx.Attacker, nq)
	defenderAns := e.numericAnswer(bctx.Defender, nq)

	if conquest.ResolveNumeric(nq.Answer, attackerAns, defenderAns) == conquest.MCAttackerWins {
		return bctx.Attacker, false, nil
	}
	return bctx.Defender, false, nil
}

// pickCategory selects one of the configured categories for the next
// question, or "" (any) when none are configured.
func (e *Engine) pickCategory() string {
	if len(e.opts.Categories) == 0 {
		return ""
	}
	return e.opts.Categories[e.rng.Intn(len(e.opts.Categories))]
}

// categoricalAnswer collects one side's multiple-choice answer. Humans
// get the answer window at the gate; a timeout counts as wrong. Bots
// answer through their policy after a simulated think delay.
func (e *Engine) categoricalAnswer(pid conquest.PlayerID, q *trivia.Question) bool {
	if e.isHuman(pid) {
		choice, ok := e.gate.AwaitCategorical(e.opts.AnswerTimeout)
		return ok && q.IsCorrect(choice)
	}
	choice, think := e.policyFor(pid).AnswerCategorical(q)
	e.sleep(think)
	return q.IsCorrect(choice)
}

// numericAnswer collects one side's numeric answer. Human answers are
// timestamped when they arrive at the gate; bot answers after their
// simulated think delay.
func (e *Engine) numericAnswer(pid conquest.PlayerID, q *trivia.Question) conquest.NumericAnswer {
	if e.isHuman(pid) {
		return e.gate.AwaitNumeric(e.opts.AnswerTimeout)
	}
	value, think := e.policyFor(pid).AnswerNumeric(q)
	e.sleep(think)
	return conquest.NumericAnswer{Value: value, At: e.now(), Answered: true}
}
