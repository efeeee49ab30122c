package conquest

import "sort"

// CanAttack reports whether attacker may attack target: the target must
// exist, be enemy-owned, and border at least one attacker region.
func CanAttack(gs *GameState, attacker PlayerID, target RegionID) bool {
	r, ok := gs.Regions[target]
	if !ok {
		return false
	}
	if r.Owner == NoPlayer || r.Owner == attacker {
		return false
	}
	if c, ok := gs.Capitals[target]; ok && c.Destroyed {
		return false
	}
	for _, own := range gs.RegionsOf(attacker) {
		if own.IsAdjacentTo(target) {
			return true
		}
	}
	return false
}

// CanFortify reports whether a player may fortify target: they must own
// it and it must not already be at the maximum tier. Capitals cannot be
// fortified; their protection is hit points.
func CanFortify(gs *GameState, player PlayerID, target RegionID) bool {
	r, ok := gs.Regions[target]
	if !ok {
		return false
	}
	if r.Owner != player {
		return false
	}
	if r.Kind == RegionCapital {
		return false
	}
	return r.Fortification < MaxFortification
}

// Fortify raises the target region one fortification tier.
func Fortify(gs *GameState, player PlayerID, target RegionID) error {
	if !CanFortify(gs, player, target) {
		return ErrInvalidAction
	}
	gs.Regions[target].Fortification++
	return nil
}

// AttackTargets returns every region the player can legally attack, in
// id order.
func AttackTargets(gs *GameState, player PlayerID) []*Region {
	var out []*Region
	for _, r := range gs.AdjacentEnemyRegions(player) {
		if CanAttack(gs, player, r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// FortifyTargets returns every region the player can legally fortify,
// in id order.
func FortifyTargets(gs *GameState, player PlayerID) []*Region {
	var out []*Region
	for _, r := range gs.RegionsOf(player) {
		if CanFortify(gs, player, r.ID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AvailableActions returns the action kinds the player can take this
// turn, in deterministic order (attack before fortify). An empty slice
// means the player's turn is skipped.
func AvailableActions(gs *GameState, player PlayerID) []Action {
	p, ok := gs.Players[player]
	if !ok || !p.Alive {
		return nil
	}
	var actions []Action
	if len(AttackTargets(gs, player)) > 0 {
		actions = append(actions, ActionAttack)
	}
	if len(FortifyTargets(gs, player)) > 0 {
		actions = append(actions, ActionFortify)
	}
	return actions
}

// TickCapitals advances capital regeneration at a turn boundary: every
// intact capital's unattacked counter increases, and a damaged capital
// that has gone CapitalRegenTurns turns without being attacked recovers
// one hit point.
func TickCapitals(gs *GameState) {
	ids := make([]RegionID, 0, len(gs.Capitals))
	for id := range gs.Capitals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := gs.Capitals[id]
		if c.Destroyed {
			continue
		}
		c.TurnsSinceAttack++
		if c.HP < c.MaxHP && c.TurnsSinceAttack >= CapitalRegenTurns {
			c.HP++
			c.TurnsSinceAttack = 0
		}
	}
}

// Winner returns the alive player with the highest score, ties broken
// by lowest id. Used when the turn budget runs out.
func Winner(gs *GameState) *Player {
	var best *Player
	for _, p := range gs.AlivePlayers() {
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	return best
}

// CheckGameOver reports whether the game has ended: either a single
// player remains alive, or the turn budget is exhausted.
func CheckGameOver(gs *GameState, turnsRemaining int) (bool, *Player) {
	alive := gs.AlivePlayers()
	if len(alive) == 1 {
		return true, alive[0]
	}
	if len(alive) == 0 {
		return true, nil
	}
	if turnsRemaining <= 0 {
		return true, Winner(gs)
	}
	return false, nil
}

// Validate checks state consistency: every region's owner must list it,
// every player's region list must point back, and every alive player
// must control at least one region. Returns the first violation found.
func (gs *GameState) Validate() error {
	for id, r := range gs.Regions {
		if r.ID != id {
			return ErrInconsistentState
		}
		if r.Owner == NoPlayer {
			continue
		}
		p, ok := gs.Players[r.Owner]
		if !ok || !p.ControlsRegion(id) {
			return ErrInconsistentState
		}
	}
	for _, p := range gs.Players {
		for _, rid := range p.Regions {
			r, ok := gs.Regions[rid]
			if !ok || r.Owner != p.ID {
				return ErrInconsistentState
			}
		}
		if p.Alive && len(p.Regions) == 0 {
			return ErrInconsistentState
		}
	}
	return nil
}
