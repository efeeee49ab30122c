package bot

import (
	"sort"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// candidate is a scored region target.
type candidate struct {
	region *conquest.Region
	score  float64
}

// scoreAttackTarget values an attackable enemy region: its point value
// on a /1000 scale, a large bonus for capitals, an easy-win bonus for
// unfortified targets, a consolidation bonus per friendly neighbor, and
// pressure against opponents ahead by the policy's configured margin.
// A small random factor keeps play from being fully predictable.
func (p *Policy) scoreAttackTarget(gs *conquest.GameState, player conquest.PlayerID, r *conquest.Region) float64 {
	score := float64(r.Value) / 1000.0

	if r.Kind == conquest.RegionCapital {
		score += 5.0
	}
	if !r.IsFortified() {
		score += 1.0
	}
	score += 2.0 * float64(friendlyNeighbors(gs, player, r))

	if me, ok := gs.Players[player]; ok {
		if owner, ok := gs.Players[r.Owner]; ok && owner.Score > 0 {
			if float64(me.Score)/float64(owner.Score) < p.PressureRatio {
				score += 2.0
			}
		}
	}

	return score * botUniform(0.9, 1.1)
}

// scoreFortifyTarget values an owned region for fortification: point
// value on a /1000 scale, a shield bonus when it borders the player's
// own capital, and weight per contested border and friendly neighbor.
func scoreFortifyTarget(gs *conquest.GameState, player conquest.PlayerID, r *conquest.Region) float64 {
	score := float64(r.Value) / 1000.0

	if me, ok := gs.Players[player]; ok && r.IsAdjacentTo(me.Capital) {
		score += 3.0
	}
	score += 2.0 * float64(enemyNeighbors(gs, player, r))
	score += 1.0 * float64(friendlyNeighbors(gs, player, r))

	return score * botUniform(0.9, 1.1)
}

// scoreOccupationTarget values an unowned region during the occupation
// phase: central regions with many neighbors, connection to what the
// player already holds, minus exposure to enemy borders.
func scoreOccupationTarget(gs *conquest.GameState, player conquest.PlayerID, r *conquest.Region) float64 {
	score := 0.5 * float64(len(r.Adjacent))
	score += 3.0 * float64(friendlyNeighbors(gs, player, r))
	score -= 0.5 * float64(enemyNeighbors(gs, player, r))
	return score * botUniform(0.8, 1.2)
}

func friendlyNeighbors(gs *conquest.GameState, player conquest.PlayerID, r *conquest.Region) int {
	n := 0
	for _, adjID := range r.Adjacent {
		if adj, ok := gs.Regions[adjID]; ok && adj.Owner == player {
			n++
		}
	}
	return n
}

func enemyNeighbors(gs *conquest.GameState, player conquest.PlayerID, r *conquest.Region) int {
	n := 0
	for _, adjID := range r.Adjacent {
		if adj, ok := gs.Regions[adjID]; ok && adj.Owner != conquest.NoPlayer && adj.Owner != player {
			n++
		}
	}
	return n
}

// rankCandidates scores and sorts regions best first, ties broken by id
// so equal scores stay deterministic under a seeded rng.
func rankCandidates(gs *conquest.GameState, player conquest.PlayerID, regions []*conquest.Region,
	score func(*conquest.GameState, conquest.PlayerID, *conquest.Region) float64) []candidate {

	ranked := make([]candidate, 0, len(regions))
	for _, r := range regions {
		ranked = append(ranked, candidate{region: r, score: score(gs, player, r)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].region.ID < ranked[j].region.ID
	})
	return ranked
}
