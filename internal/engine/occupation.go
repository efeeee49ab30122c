package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// RunSpawningPhase has every player place their capital. Humans pick at
// the gate from the highlighted candidates; a timeout falls back to the
// bot policy so the game can always start. Capitals respect the minimum
// pairwise distance when enough candidates exist.
func (e *Engine) RunSpawningPhase(ctx context.Context) error {
	gs := e.state
	gs.Phase = conquest.PhaseSpawning

	var players []conquest.PlayerID
	for id := range gs.Players {
		players = append(players, id)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	for _, pid := range players {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidates := e.capitalCandidates()
		if len(candidates) == 0 {
			return fmt.Errorf("no region left for player %d's capital", pid)
		}

		var pick *conquest.Region
		if e.isHuman(pid) {
			pick = e.humanSpawnPick(ctx, pid, candidates)
		}
		if pick == nil {
			pick = e.policyFor(pid).ChooseOccupation(gs, pid, candidates)
		}

		if err := gs.EstablishCapital(pid, pick.ID); err != nil {
			return fmt.Errorf("establishing capital for player %d: %w", pid, err)
		}
		log.Info().
			Str("gameId", e.opts.GameID).
			Int("playerId", int(pid)).
			Int("regionId", int(pick.ID)).
			Msg("capital established")
		e.publish(ctx)
	}
	return nil
}

// capitalCandidates returns unowned regions far enough from every
// placed capital. If the distance constraint empties the pool, any
// unowned region qualifies.
func (e *Engine) capitalCandidates() []*conquest.Region {
	gs := e.state
	unowned := gs.UnownedRegions()

	var far []*conquest.Region
	for _, r := range unowned {
		ok := true
		for capID := range gs.Capitals {
			if regionDistance(gs, r.ID, capID) < e.opts.MinCapitalDistance {
				ok = false
				break
			}
		}
		if ok {
			far = append(far, r)
		}
	}
	if len(far) > 0 {
		return far
	}
	return unowned
}

// regionDistance is the hop count between two regions, or a large
// value when they are unreachable from each other.
func regionDistance(gs *conquest.GameState, from, to conquest.RegionID) int {
	if from == to {
		return 0
	}
	dist := map[conquest.RegionID]int{from: 0}
	queue := []conquest.RegionID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		r, ok := gs.Regions[cur]
		if !ok {
			continue
		}
		for _, adj := range r.Adjacent {
			if _, seen := dist[adj]; seen {
				continue
			}
			dist[adj] = dist[cur] + 1
			if adj == to {
				return dist[adj]
			}
			queue = append(queue, adj)
		}
	}
	return 1 << 30
}

// humanSpawnPick highlights candidates and waits for the human's pick.
// Returns nil on timeout or an out-of-pool pick.
func (e *Engine) humanSpawnPick(ctx context.Context, pid conquest.PlayerID, candidates []*conquest.Region) *conquest.Region {
	gs := e.state
	defer gs.ClearHighlights()

	allowed := make(map[conquest.RegionID]*conquest.Region, len(candidates))
	for _, r := range candidates {
		r.Selectable = true
		allowed[r.ID] = r
	}
	e.publish(ctx)

	sel, ok := e.gate.AwaitSelection(e.opts.SelectionTimeout)
	if !ok {
		log.Info().Str("gameId", e.opts.GameID).Int("playerId", int(pid)).Msg("capital pick timed out, choosing automatically")
		return nil
	}
	return allowed[sel.Region]
}

// RunOccupationPhase distributes the remaining unowned regions. Each
// round poses one numeric question to every alive player; closeness and
// then answer latency rank the picks. A human who lets a pick window
// expire forfeits that round. If the numeric pool runs dry, leftovers
// are assigned round-robin so the phase always completes. Ends by
// fixing the turn order (ascending score, ties by id).
func (e *Engine) RunOccupationPhase(ctx context.Context) error {
	gs := e.state
	gs.Phase = conquest.PhaseOccupation

	for len(gs.UnownedRegions()) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		nq, err := e.source.NextNumeric(ctx)
		if err != nil {
			return fmt.Errorf("drawing occupation question: %w", err)
		}
		if nq == nil {
			log.Warn().Str("gameId", e.opts.GameID).Msg("numeric pool exhausted, assigning remaining regions")
			e.assignLeftovers()
			break
		}

		ranked := e.rankByAnswer(nq.Answer, e.collectNumericAnswers(nq))
		for _, pid := range ranked {
			if len(gs.UnownedRegions()) == 0 {
				break
			}
			e.occupationPick(ctx, pid)
		}
		e.publish(ctx)
	}

	gs.AssignTurnOrder()
	e.publish(ctx)
	log.Info().Str("gameId", e.opts.GameID).Msg("occupation phase complete")
	return nil
}

type rankedAnswer struct {
	player conquest.PlayerID
	answer conquest.NumericAnswer
}

// collectNumericAnswers poses the question to every alive player and
// gathers their answers.
func (e *Engine) collectNumericAnswers(q *trivia.Question) []rankedAnswer {
	gs := e.state
	alive := gs.AlivePlayers()
	players := make([]conquest.PlayerID, len(alive))
	for i, p := range alive {
		players[i] = p.ID
	}
	e.broadcaster.QuestionPosed(players, q)

	answers := make([]rankedAnswer, 0, len(players))
	for _, pid := range players {
		answers = append(answers, rankedAnswer{player: pid, answer: e.numericAnswer(pid, q)})
	}
	return answers
}

// rankByAnswer orders players best answer first: smallest distance to
// the target, earlier timestamp on equal distance, id as the final tie
// break. Unanswered players rank last.
func (e *Engine) rankByAnswer(target float64, answers []rankedAnswer) []conquest.PlayerID {
	sort.SliceStable(answers, func(i, j int) bool {
		a, b := answers[i].answer, answers[j].answer
		if a.Answered != b.Answered {
			return a.Answered
		}
		if !a.Answered {
			return answers[i].player < answers[j].player
		}
		da, db := absFloat(a.Value-target), absFloat(b.Value-target)
		if da != db {
			return da < db
		}
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		return answers[i].player < answers[j].player
	})

	ranked := make([]conquest.PlayerID, len(answers))
	for i, ra := range answers {
		ranked[i] = ra.player
	}
	return ranked
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// occupationPick lets one player claim one unowned region. Humans pick
// at the gate and forfeit the round on timeout or an illegal pick; bots
// use their policy.
func (e *Engine) occupationPick(ctx context.Context, pid conquest.PlayerID) {
	gs := e.state
	unowned := gs.UnownedRegions()
	if len(unowned) == 0 {
		return
	}

	var pick *conquest.Region
	if e.isHuman(pid) {
		defer gs.ClearHighlights()
		allowed := make(map[conquest.RegionID]*conquest.Region, len(unowned))
		for _, r := range unowned {
			r.Selectable = true
			allowed[r.ID] = r
		}
		e.publish(ctx)
		sel, ok := e.gate.AwaitSelection(e.opts.SelectionTimeout)
		if !ok {
			log.Info().Str("gameId", e.opts.GameID).Int("playerId", int(pid)).Msg("occupation pick timed out, round forfeited")
			return
		}
		pick = allowed[sel.Region]
		if pick == nil {
			return
		}
	} else {
		pick = e.policyFor(pid).ChooseOccupation(gs, pid, unowned)
	}

	if err := gs.ClaimRegion(pid, pick.ID); err != nil {
		log.Warn().Err(err).Str("gameId", e.opts.GameID).Int("regionId", int(pick.ID)).Msg("occupation claim rejected")
		return
	}
	log.Debug().
		Str("gameId", e.opts.GameID).
		Int("playerId", int(pid)).
		Int("regionId", int(pick.ID)).
		Msg("region occupied")
}

// assignLeftovers hands remaining unowned regions out round-robin by
// player id, bots choosing by policy and humans receiving the first
// unowned region.
func (e *Engine) assignLeftovers() {
	gs := e.state
	for len(gs.UnownedRegions()) > 0 {
		for _, p := range gs.AlivePlayers() {
			unowned := gs.UnownedRegions()
			if len(unowned) == 0 {
				return
			}
			pick := unowned[0]
			if !e.isHuman(p.ID) {
				if chosen := e.policyFor(p.ID).ChooseOccupation(gs, p.ID, unowned); chosen != nil {
					pick = chosen
				}
			}
			if err := gs.ClaimRegion(p.ID, pick.ID); err != nil {
				log.Warn().Err(err).Str("gameId", e.opts.GameID).Msg("leftover claim rejected")
			}
		}
	}
}
