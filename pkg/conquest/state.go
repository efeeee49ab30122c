// Package conquest implements the rules engine for a trivia-driven
// territorial conquest game: regions, players, capitals, action
// validation, and battle adjudication. It holds no I/O and no timers;
// orchestration lives in internal/engine.
package conquest

import "sort"

// PlayerID identifies a player. NoPlayer marks an unowned region.
type PlayerID int

// NoPlayer is the owner of a region before the occupation phase claims it.
const NoPlayer PlayerID = -1

// RegionID identifies a region on the map.
type RegionID int

// PlayerKind distinguishes human-controlled players from AI opponents.
type PlayerKind string

const (
	PlayerHuman PlayerKind = "human"
	PlayerAI    PlayerKind = "ai"
)

// RegionKind distinguishes normal regions from capitals.
type RegionKind string

const (
	RegionNormal  RegionKind = "normal"
	RegionCapital RegionKind = "capital"
)

// Fortification is an ordered protection tier on a region.
type Fortification int

const (
	FortNone      Fortification = 0
	FortFortified Fortification = 1

	// MaxFortification is the highest tier a region can reach.
	MaxFortification = FortFortified
)

// Phase represents the overall game phase.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseSpawning      Phase = "spawning"
	PhaseOccupation    Phase = "occupation"
	PhaseTurn          Phase = "turn"
	PhaseBattle        Phase = "battle"
	PhaseCapitalAttack Phase = "capital_attack"
	PhaseGameOver      Phase = "game_over"
)

// Action is a turn action kind.
type Action string

const (
	ActionAttack  Action = "attack"
	ActionFortify Action = "fortify"
)

// Highlight is a transient UI-facing annotation on a region. It is not
// game-logic state and is cleared at every turn boundary.
type Highlight string

const (
	HighlightNone    Highlight = ""
	HighlightAttack  Highlight = "attack"
	HighlightFortify Highlight = "fortify"
)

// Default point values, from the original rule set.
const (
	InitialRegionValue  = 500  // uncaptured normal region
	CapturedRegionValue = 800  // after first battle capture
	CapitalValue        = 1000 // capital region
	StartingScore       = 1000
)

// Region is a map territory with an owner, fortification level, and
// point value.
type Region struct {
	ID            RegionID      `json:"id"`
	Name          string        `json:"name"`
	Owner         PlayerID      `json:"owner"`
	Kind          RegionKind    `json:"kind"`
	Fortification Fortification `json:"fortification"`
	Adjacent      []RegionID    `json:"adjacent"`
	Value         int           `json:"value"`
	Captured      bool          `json:"captured"` // taken in battle at least once

	// Presentation annotations, cleared every turn.
	Selectable bool      `json:"selectable"`
	Highlight  Highlight `json:"highlight,omitempty"`
}

// IsAdjacentTo reports whether other neighbors this region.
func (r *Region) IsAdjacentTo(other RegionID) bool {
	for _, id := range r.Adjacent {
		if id == other {
			return true
		}
	}
	return false
}

// IsFortified reports whether the region has any fortification.
func (r *Region) IsFortified() bool {
	return r.Fortification > FortNone
}

// Player represents one participant, human or AI.
type Player struct {
	ID        PlayerID   `json:"id"`
	Name      string     `json:"name"`
	Kind      PlayerKind `json:"kind"`
	Alive     bool       `json:"alive"`
	Score     int        `json:"score"`
	Regions   []RegionID `json:"regions"`
	Capital   RegionID   `json:"capital"`
	TurnOrder int        `json:"turn_order"`
}

// ControlsRegion reports whether the player controls the given region.
func (p *Player) ControlsRegion(id RegionID) bool {
	for _, r := range p.Regions {
		if r == id {
			return true
		}
	}
	return false
}

func (p *Player) addRegion(id RegionID) {
	if !p.ControlsRegion(id) {
		p.Regions = append(p.Regions, id)
	}
}

func (p *Player) removeRegion(id RegionID) {
	for i, r := range p.Regions {
		if r == id {
			p.Regions = append(p.Regions[:i], p.Regions[i+1:]...)
			return
		}
	}
}

// Capital tracks the hit points of a capital region. A capital absorbs
// CapitalMaxHP winning attacks before it falls, and regenerates one
// point after going unattacked for CapitalRegenTurns turns.
type Capital struct {
	Region           RegionID `json:"region"`
	Owner            PlayerID `json:"owner"`
	HP               int      `json:"hp"`
	MaxHP            int      `json:"max_hp"`
	TurnsSinceAttack int      `json:"turns_since_attack"`
	Destroyed        bool     `json:"destroyed"`
}

const (
	CapitalMaxHP      = 3
	CapitalRegenTurns = 3
)

// TakeDamage removes one hit point and reports whether the capital fell.
func (c *Capital) TakeDamage() bool {
	if c.HP <= 0 {
		return false
	}
	c.HP--
	c.TurnsSinceAttack = 0
	if c.HP == 0 {
		c.Destroyed = true
		return true
	}
	return false
}

// RegisterAttack resets the regeneration counter after any attack.
func (c *Capital) RegisterAttack() {
	c.TurnsSinceAttack = 0
}

// GameState is the single authoritative snapshot of the game. It is
// owned by the engine and passed by reference into every component;
// region ownership changes only through ApplyOutcome.
type GameState struct {
	Players  map[PlayerID]*Player  `json:"players"`
	Regions  map[RegionID]*Region  `json:"regions"`
	Capitals map[RegionID]*Capital `json:"capitals"`

	Phase         Phase    `json:"phase"`
	CurrentPlayer PlayerID `json:"current_player"`
	Turn          int      `json:"turn"`
	SpecialRound  bool     `json:"special_round"`
}

// NewGameState returns an empty state in the setup phase.
func NewGameState() *GameState {
	return &GameState{
		Players:       make(map[PlayerID]*Player),
		Regions:       make(map[RegionID]*Region),
		Capitals:      make(map[RegionID]*Capital),
		Phase:         PhaseSetup,
		CurrentPlayer: NoPlayer,
	}
}

// AddPlayer registers a player. Score and liveness are initialized here.
func (gs *GameState) AddPlayer(id PlayerID, name string, kind PlayerKind) *Player {
	p := &Player{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Alive:   true,
		Score:   StartingScore,
		Capital: RegionID(-1),
	}
	gs.Players[id] = p
	return p
}

// AddRegion registers a region. A capital region owned by a player also
// gets a Capital record with full hit points.
func (gs *GameState) AddRegion(r *Region) {
	gs.Regions[r.ID] = r
	if r.Owner != NoPlayer {
		if p, ok := gs.Players[r.Owner]; ok {
			p.addRegion(r.ID)
		}
	}
	if r.Kind == RegionCapital && r.Owner != NoPlayer {
		gs.Capitals[r.ID] = &Capital{
			Region: r.ID,
			Owner:  r.Owner,
			HP:     CapitalMaxHP,
			MaxHP:  CapitalMaxHP,
		}
	}
}

// RegionsOf returns the regions controlled by a player, in id order.
func (gs *GameState) RegionsOf(id PlayerID) []*Region {
	p, ok := gs.Players[id]
	if !ok {
		return nil
	}
	ids := append([]RegionID(nil), p.Regions...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	regions := make([]*Region, 0, len(ids))
	for _, rid := range ids {
		if r, ok := gs.Regions[rid]; ok {
			regions = append(regions, r)
		}
	}
	return regions
}

// AlivePlayers returns the currently alive players in id order.
func (gs *GameState) AlivePlayers() []*Player {
	var alive []*Player
	for _, p := range gs.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	sort.Slice(alive, func(i, j int) bool { return alive[i].ID < alive[j].ID })
	return alive
}

// TurnOrder returns alive player ids ordered by their turn position,
// ties broken by id.
func (gs *GameState) TurnOrder() []PlayerID {
	alive := gs.AlivePlayers()
	sort.Slice(alive, func(i, j int) bool {
		if alive[i].TurnOrder != alive[j].TurnOrder {
			return alive[i].TurnOrder < alive[j].TurnOrder
		}
		return alive[i].ID < alive[j].ID
	})
	order := make([]PlayerID, len(alive))
	for i, p := range alive {
		order[i] = p.ID
	}
	return order
}

// AssignTurnOrder sets turn positions by ascending score (lowest goes
// first), ties broken by id. Called at the end of the occupation phase.
func (gs *GameState) AssignTurnOrder() {
	alive := gs.AlivePlayers()
	sort.Slice(alive, func(i, j int) bool {
		if alive[i].Score != alive[j].Score {
			return alive[i].Score < alive[j].Score
		}
		return alive[i].ID < alive[j].ID
	})
	for i, p := range alive {
		p.TurnOrder = i
	}
}

// AdjacentEnemyRegions returns enemy-owned regions bordering any region
// the player controls, each listed once, in id order.
func (gs *GameState) AdjacentEnemyRegions(id PlayerID) []*Region {
	seen := make(map[RegionID]bool)
	var out []*Region
	for _, own := range gs.RegionsOf(id) {
		for _, adjID := range own.Adjacent {
			if seen[adjID] {
				continue
			}
			adj, ok := gs.Regions[adjID]
			if !ok {
				continue
			}
			if adj.Owner != NoPlayer && adj.Owner != id {
				seen[adjID] = true
				out = append(out, adj)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnownedRegions returns all regions with no owner, in id order.
func (gs *GameState) UnownedRegions() []*Region {
	var out []*Region
	for _, r := range gs.Regions {
		if r.Owner == NoPlayer {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OwnedRegionCount returns the number of regions with a non-nil owner.
func (gs *GameState) OwnedRegionCount() int {
	n := 0
	for _, r := range gs.Regions {
		if r.Owner != NoPlayer {
			n++
		}
	}
	return n
}

// ClearHighlights removes all selection annotations from every region.
func (gs *GameState) ClearHighlights() {
	for _, r := range gs.Regions {
		r.Selectable = false
		r.Highlight = HighlightNone
	}
}

// ClaimRegion assigns an unowned region to a player during the
// occupation phase.
func (gs *GameState) ClaimRegion(player PlayerID, region RegionID) error {
	p, ok := gs.Players[player]
	if !ok {
		return ErrInvalidAction
	}
	r, ok := gs.Regions[region]
	if !ok || r.Owner != NoPlayer {
		return ErrInvalidAction
	}
	r.Owner = player
	p.addRegion(region)
	return nil
}

// EstablishCapital claims an unowned region as the player's capital:
// the region becomes a capital worth CapitalValue with a fresh hit
// point record.
func (gs *GameState) EstablishCapital(player PlayerID, region RegionID) error {
	if err := gs.ClaimRegion(player, region); err != nil {
		return err
	}
	r := gs.Regions[region]
	r.Kind = RegionCapital
	r.Value = CapitalValue
	gs.Players[player].Capital = region
	gs.Capitals[region] = &Capital{
		Region: region,
		Owner:  player,
		HP:     CapitalMaxHP,
		MaxHP:  CapitalMaxHP,
	}
	return nil
}

// refreshAlive re-derives a player's liveness from their region count.
func (gs *GameState) refreshAlive(id PlayerID) {
	p, ok := gs.Players[id]
	if !ok {
		return
	}
	p.Alive = len(p.Regions) > 0
}

// EliminatePlayer removes a player from play after their capital falls:
// their regions and score transfer to the conqueror.
func (gs *GameState) EliminatePlayer(eliminated, conqueror PlayerID) {
	loser, ok := gs.Players[eliminated]
	if !ok {
		return
	}
	winner, ok := gs.Players[conqueror]
	if !ok {
		return
	}

	for _, rid := range loser.Regions {
		if r, ok := gs.Regions[rid]; ok {
			r.Owner = conqueror
			winner.addRegion(rid)
		}
	}
	loser.Regions = nil
	loser.Alive = false

	winner.Score += loser.Score
	loser.Score = 0

	for _, c := range gs.Capitals {
		if c.Owner == eliminated {
			c.Owner = conqueror
		}
	}
}
