package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// executeAction validates and performs one turn action. Invalid actions
// return false without mutating anything; the caller has already
// consumed the turn.
func (e *Engine) executeAction(ctx context.Context, pid conquest.PlayerID, action conquest.Action, region conquest.RegionID) bool {
	gs := e.state
	switch action {
	case conquest.ActionAttack:
		if !conquest.CanAttack(gs, pid, region) {
			return false
		}
		target := gs.Regions[region]
		applied, err := e.runBattle(ctx, pid, target.Owner, region)
		if err != nil {
			log.Error().Err(err).
				Str("gameId", e.opts.GameID).
				Int("regionId", int(region)).
				Msg("battle failed")
			return false
		}
		return applied

	case conquest.ActionFortify:
		if err := conquest.Fortify(gs, pid, region); err != nil {
			return false
		}
		log.Info().
			Str("gameId", e.opts.GameID).
			Int("playerId", int(pid)).
			Int("regionId", int(region)).
			Msg("region fortified")
		gs.Regions[region].Highlight = conquest.HighlightFortify
		return true
	}
	return false
}
