// Package engine orchestrates a full game: phase scheduling, turn
// execution, battle flows, and human input suspension. All rule
// decisions are delegated to pkg/conquest; all AI decisions to
// internal/bot; all questions come from a trivia.Source.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/internal/bot"
	"github.com/iamstoobit/Triviador/internal/repository"
	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// Options configures one game.
type Options struct {
	GameID             string
	HumanName          string
	AICount            int
	Difficulty         bot.Difficulty
	TurnsPerPlayer     int
	RegionCount        int
	DefenseBonus       int
	SpecialRoundChance float64
	MinCapitalDistance int
	SelectionTimeout   time.Duration
	AnswerTimeout      time.Duration
	Categories         []string
	MapFile            string
	SnapshotTTL        time.Duration
	Seed               int64
}

func (o *Options) withDefaults() {
	if o.GameID == "" {
		o.GameID = fmt.Sprintf("game-%d", time.Now().UnixNano())
	}
	if o.HumanName == "" {
		o.HumanName = "Player"
	}
	if o.AICount <= 0 {
		o.AICount = 3
	}
	if o.Difficulty == "" {
		o.Difficulty = bot.Medium
	}
	if o.TurnsPerPlayer <= 0 {
		o.TurnsPerPlayer = 10
	}
	if o.RegionCount <= 0 {
		o.RegionCount = 24
	}
	if o.DefenseBonus <= 0 {
		o.DefenseBonus = 300
	}
	if o.SpecialRoundChance == 0 {
		o.SpecialRoundChance = 0.15
	}
	if o.MinCapitalDistance <= 0 {
		o.MinCapitalDistance = 2
	}
	if o.SelectionTimeout <= 0 {
		o.SelectionTimeout = 60 * time.Second
	}
	if o.AnswerTimeout <= 0 {
		o.AnswerTimeout = 30 * time.Second
	}
	if o.SnapshotTTL <= 0 {
		o.SnapshotTTL = time.Hour
	}
}

// HumanPlayerID is the fixed id of the human seat.
const HumanPlayerID conquest.PlayerID = 0

// Engine runs one game to completion.
type Engine struct {
	opts     Options
	state    *conquest.GameState
	source   trivia.Source
	policies map[conquest.PlayerID]*bot.Policy
	gate     *InputGate

	broadcaster Broadcaster
	cache       repository.GameCache
	leaderboard repository.Leaderboard

	rng   *rand.Rand
	now   func() time.Time
	sleep func(time.Duration)

	turnsRemaining int
	selection      TurnSelectionState
}

// NewEngine builds an engine over the given question source. Attach a
// broadcaster, cache, or leaderboard before calling Run.
func NewEngine(opts Options, source trivia.Source) *Engine {
	opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		opts:        opts,
		state:       conquest.NewGameState(),
		source:      source,
		policies:    make(map[conquest.PlayerID]*bot.Policy),
		gate:        NewInputGate(),
		broadcaster: NoopBroadcaster{},
		rng:         rand.New(rand.NewSource(seed)),
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// SetBroadcaster attaches a presentation layer.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	if b != nil {
		e.broadcaster = b
	}
}

// SetCache attaches a snapshot cache.
func (e *Engine) SetCache(c repository.GameCache) { e.cache = c }

// SetLeaderboard attaches a finished-game recorder.
func (e *Engine) SetLeaderboard(l repository.Leaderboard) { e.leaderboard = l }

// Gate returns the human input gate, for the presentation layer to
// route submissions into.
func (e *Engine) Gate() *InputGate { return e.gate }

// State exposes the authoritative game state. Callers must treat it as
// read-only; mutation belongs to the engine loop.
func (e *Engine) State() *conquest.GameState { return e.state }

// Setup creates players and the map. Player 0 is the human seat;
// players 1..AICount are bots at the configured difficulty.
func (e *Engine) Setup() error {
	e.state.AddPlayer(HumanPlayerID, e.opts.HumanName, conquest.PlayerHuman)
	for i := 1; i <= e.opts.AICount; i++ {
		id := conquest.PlayerID(i)
		e.state.AddPlayer(id, fmt.Sprintf("Bot %d", i), conquest.PlayerAI)
		e.policies[id] = bot.NewPolicy(e.opts.Difficulty)
	}

	var regions []*conquest.Region
	if e.opts.MapFile != "" {
		loaded, err := conquest.LoadMapFile(e.opts.MapFile)
		if err != nil {
			return fmt.Errorf("loading map: %w", err)
		}
		regions = loaded
	} else {
		regions = conquest.GenerateMap(e.opts.RegionCount, e.rng)
	}
	for _, r := range regions {
		e.state.AddRegion(r)
	}

	log.Info().
		Str("gameId", e.opts.GameID).
		Int("players", len(e.state.Players)).
		Int("regions", len(e.state.Regions)).
		Str("difficulty", string(e.opts.Difficulty)).
		Msg("game set up")
	return nil
}

// Run plays a full game: spawning, occupation, the turn phase, then
// wrap-up (leaderboard record, snapshot clear, game-over broadcast).
func (e *Engine) Run(ctx context.Context) (*conquest.Player, error) {
	if len(e.state.Players) == 0 {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	if err := e.RunSpawningPhase(ctx); err != nil {
		return nil, fmt.Errorf("spawning phase: %w", err)
	}
	if err := e.RunOccupationPhase(ctx); err != nil {
		return nil, fmt.Errorf("occupation phase: %w", err)
	}
	result, err := e.RunTurnPhase(ctx)
	if err != nil {
		return nil, fmt.Errorf("turn phase: %w", err)
	}

	e.finish(ctx, result.Winner)
	return result.Winner, nil
}

func (e *Engine) finish(ctx context.Context, winner *conquest.Player) {
	e.state.Phase = conquest.PhaseGameOver
	e.publish(ctx)
	e.broadcaster.GameOver(winner)

	if e.leaderboard != nil {
		if human, ok := e.state.Players[HumanPlayerID]; ok {
			entry := repository.LeaderboardEntry{
				PlayerName: human.Name,
				Score:      human.Score,
				Won:        winner != nil && winner.ID == HumanPlayerID,
				Mode:       string(e.opts.Difficulty),
				PlayedAt:   e.now(),
			}
			if err := e.leaderboard.Record(ctx, entry); err != nil {
				log.Error().Err(err).Str("gameId", e.opts.GameID).Msg("recording leaderboard entry")
			}
		}
	}
	if e.cache != nil {
		if err := e.cache.Clear(ctx, e.opts.GameID); err != nil {
			log.Error().Err(err).Str("gameId", e.opts.GameID).Msg("clearing game snapshot")
		}
	}

	name := "nobody"
	if winner != nil {
		name = winner.Name
	}
	log.Info().Str("gameId", e.opts.GameID).Str("winner", name).Msg("game over")
}

// Snapshot is the read surface for presentation and the cache.
type Snapshot struct {
	GameID        string            `json:"game_id"`
	Phase         conquest.Phase    `json:"phase"`
	Turn          int               `json:"turn"`
	CurrentPlayer conquest.PlayerID `json:"current_player"`
	SpecialRound  bool              `json:"special_round"`
	Players       []PlayerView      `json:"players"`
	Regions       []RegionView      `json:"regions"`
}

// PlayerView is one player's presentable state.
type PlayerView struct {
	ID      conquest.PlayerID   `json:"id"`
	Name    string              `json:"name"`
	Kind    conquest.PlayerKind `json:"kind"`
	Alive   bool                `json:"alive"`
	Score   int                 `json:"score"`
	Regions []conquest.RegionID `json:"regions"`
	Capital conquest.RegionID   `json:"capital"`
}

// RegionView is one region's presentable state.
type RegionView struct {
	ID            conquest.RegionID      `json:"id"`
	Name          string                 `json:"name"`
	Owner         conquest.PlayerID      `json:"owner"`
	Kind          conquest.RegionKind    `json:"kind"`
	Fortification conquest.Fortification `json:"fortification"`
	Value         int                    `json:"value"`
	Adjacent      []conquest.RegionID    `json:"adjacent"`
	Selectable    bool                   `json:"selectable"`
	Highlight     conquest.Highlight     `json:"highlight,omitempty"`
	CapitalHP     int                    `json:"capital_hp,omitempty"`
}

// Snapshot builds the current read surface.
func (e *Engine) Snapshot() *Snapshot {
	gs := e.state
	snap := &Snapshot{
		GameID:        e.opts.GameID,
		Phase:         gs.Phase,
		Turn:          gs.Turn,
		CurrentPlayer: gs.CurrentPlayer,
		SpecialRound:  gs.SpecialRound,
	}

	var playerIDs []conquest.PlayerID
	for id := range gs.Players {
		playerIDs = append(playerIDs, id)
	}
	sort.Slice(playerIDs, func(i, j int) bool { return playerIDs[i] < playerIDs[j] })
	for _, id := range playerIDs {
		p := gs.Players[id]
		regions := append([]conquest.RegionID(nil), p.Regions...)
		sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
		snap.Players = append(snap.Players, PlayerView{
			ID: p.ID, Name: p.Name, Kind: p.Kind, Alive: p.Alive,
			Score: p.Score, Regions: regions, Capital: p.Capital,
		})
	}

	var regionIDs []conquest.RegionID
	for id := range gs.Regions {
		regionIDs = append(regionIDs, id)
	}
	sort.Slice(regionIDs, func(i, j int) bool { return regionIDs[i] < regionIDs[j] })
	for _, id := range regionIDs {
		r := gs.Regions[id]
		view := RegionView{
			ID: r.ID, Name: r.Name, Owner: r.Owner, Kind: r.Kind,
			Fortification: r.Fortification, Value: r.Value,
			Adjacent: r.Adjacent, Selectable: r.Selectable, Highlight: r.Highlight,
		}
		if c, ok := gs.Capitals[id]; ok {
			view.CapitalHP = c.HP
		}
		snap.Regions = append(snap.Regions, view)
	}
	return snap
}

// publish pushes the current snapshot to the broadcaster and cache.
// Cache failures are logged, never fatal.
func (e *Engine) publish(ctx context.Context) {
	snap := e.Snapshot()
	e.broadcaster.StateUpdated(snap)
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Str("gameId", e.opts.GameID).Msg("marshaling snapshot")
		return
	}
	if err := e.cache.SaveSnapshot(ctx, e.opts.GameID, data, e.opts.SnapshotTTL); err != nil {
		log.Error().Err(err).Str("gameId", e.opts.GameID).Msg("caching snapshot")
	}
}

func (e *Engine) policyFor(id conquest.PlayerID) *bot.Policy {
	if p, ok := e.policies[id]; ok {
		return p
	}
	// A bot without a policy plays at the configured difficulty.
	p := bot.NewPolicy(e.opts.Difficulty)
	e.policies[id] = p
	return p
}

func (e *Engine) isHuman(id conquest.PlayerID) bool {
	p, ok := e.state.Players[id]
	return ok && p.Kind == conquest.PlayerHuman
}
