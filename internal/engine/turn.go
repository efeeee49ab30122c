package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// TurnSelectionState tracks one human selection interaction. It is
// reset at the start of every human turn.
type TurnSelectionState struct {
	SelectionPlayer   conquest.PlayerID
	SelectableAttack  []conquest.RegionID
	SelectableFortify []conquest.RegionID
	Waiting           bool
	SelectedRegion    conquest.RegionID
	SelectedAction    conquest.Action
}

// PhaseResult is the outcome of the turn phase.
type PhaseResult struct {
	Winner     *conquest.Player
	TurnsTaken int
}

// RunTurnPhase plays out the whole turn phase. The budget is fixed at
// phase start (alive players × turns per player) and every scheduled
// slot consumes it: dead players, players with no legal action, and
// humans who let the selection clock expire all burn their turn. The
// phase ends early as soon as at most one player remains alive.
func (e *Engine) RunTurnPhase(ctx context.Context) (PhaseResult, error) {
	gs := e.state
	gs.Phase = conquest.PhaseTurn
	total := len(gs.AlivePlayers()) * e.opts.TurnsPerPlayer
	e.turnsRemaining = total
	taken := 0

	log.Info().Str("gameId", e.opts.GameID).Int("budget", total).Msg("turn phase started")

	for e.turnsRemaining > 0 {
		if len(gs.AlivePlayers()) <= 1 {
			break
		}
		// Every seat keeps its scheduled slot; eliminated players burn
		// theirs without acting.
		for _, pid := range e.seatOrder() {
			if e.turnsRemaining <= 0 {
				break
			}
			if err := ctx.Err(); err != nil {
				return PhaseResult{}, err
			}

			e.turnsRemaining--
			taken++
			gs.Turn = taken
			gs.CurrentPlayer = pid
			gs.SpecialRound = e.rng.Float64() < e.opts.SpecialRoundChance
			e.broadcaster.TurnStarted(pid, taken, e.turnsRemaining, gs.SpecialRound)

			e.playTurn(ctx, pid)

			conquest.TickCapitals(gs)
			e.publish(ctx)
			// Transient annotations (the fortify cue included) live for
			// one snapshot only.
			gs.ClearHighlights()

			if len(gs.AlivePlayers()) <= 1 {
				e.turnsRemaining = 0
				break
			}
		}
	}

	_, winner := conquest.CheckGameOver(gs, e.turnsRemaining)
	gs.CurrentPlayer = conquest.NoPlayer
	gs.SpecialRound = false
	return PhaseResult{Winner: winner, TurnsTaken: taken}, nil
}

// seatOrder returns every player, alive or not, by turn position and
// then id.
func (e *Engine) seatOrder() []conquest.PlayerID {
	gs := e.state
	players := make([]*conquest.Player, 0, len(gs.Players))
	for _, p := range gs.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TurnOrder != players[j].TurnOrder {
			return players[i].TurnOrder < players[j].TurnOrder
		}
		return players[i].ID < players[j].ID
	})
	order := make([]conquest.PlayerID, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	return order
}

// playTurn dispatches one scheduled slot. A false return means the slot
// passed without an executed action; the budget is consumed either way.
func (e *Engine) playTurn(ctx context.Context, pid conquest.PlayerID) bool {
	gs := e.state
	p, ok := gs.Players[pid]
	if !ok || !p.Alive {
		return false
	}
	if len(conquest.AvailableActions(gs, pid)) == 0 {
		log.Debug().Str("gameId", e.opts.GameID).Int("playerId", int(pid)).Msg("no legal action, turn skipped")
		return false
	}
	if e.isHuman(pid) {
		return e.runHumanTurn(ctx, pid)
	}
	return e.runAITurn(ctx, pid)
}

// runHumanTurn highlights legal targets, waits on the gate for a
// selection, and executes it. Timeout or an illegal pick forfeits the
// turn; annotations are cleared no matter how the turn ends.
func (e *Engine) runHumanTurn(ctx context.Context, pid conquest.PlayerID) bool {
	gs := e.state
	defer gs.ClearHighlights()

	e.selection = TurnSelectionState{SelectionPlayer: pid, Waiting: true}
	for _, r := range conquest.AttackTargets(gs, pid) {
		r.Selectable = true
		r.Highlight = conquest.HighlightAttack
		e.selection.SelectableAttack = append(e.selection.SelectableAttack, r.ID)
	}
	for _, r := range conquest.FortifyTargets(gs, pid) {
		r.Selectable = true
		r.Highlight = conquest.HighlightFortify
		e.selection.SelectableFortify = append(e.selection.SelectableFortify, r.ID)
	}
	e.publish(ctx)

	sel, ok := e.gate.AwaitSelection(e.opts.SelectionTimeout)
	e.selection.Waiting = false
	if !ok {
		log.Info().Str("gameId", e.opts.GameID).Int("playerId", int(pid)).Msg("selection timed out, turn forfeited")
		return false
	}
	e.selection.SelectedRegion = sel.Region
	e.selection.SelectedAction = sel.Action

	if !e.selectionLegal(sel) {
		log.Warn().
			Str("gameId", e.opts.GameID).
			Int("playerId", int(pid)).
			Int("regionId", int(sel.Region)).
			Str("action", string(sel.Action)).
			Msg("illegal selection, turn forfeited")
		return false
	}
	gs.ClearHighlights()
	return e.executeAction(ctx, pid, sel.Action, sel.Region)
}

func (e *Engine) selectionLegal(sel Selection) bool {
	var pool []conquest.RegionID
	switch sel.Action {
	case conquest.ActionAttack:
		pool = e.selection.SelectableAttack
	case conquest.ActionFortify:
		pool = e.selection.SelectableFortify
	default:
		return false
	}
	for _, id := range pool {
		if id == sel.Region {
			return true
		}
	}
	return false
}

// runAITurn asks the player's policy for a decision and executes it.
func (e *Engine) runAITurn(ctx context.Context, pid conquest.PlayerID) bool {
	decision, ok := e.policyFor(pid).ChooseTurnAction(e.state, pid)
	if !ok {
		return false
	}
	log.Debug().
		Str("gameId", e.opts.GameID).
		Int("playerId", int(pid)).
		Str("action", string(decision.Action)).
		Int("regionId", int(decision.Region)).
		Msg("bot chose action")
	return e.executeAction(ctx, pid, decision.Action, decision.Region)
}
