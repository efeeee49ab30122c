package engine

import (
	"context"
	"testing"
	"time"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

func spawnOptions() Options {
	return Options{
		GameID:             "spawn-test",
		AICount:            2,
		RegionCount:        9,
		MinCapitalDistance: 2,
		SpecialRoundChance: -1,
		SelectionTimeout:   time.Second,
		AnswerTimeout:      time.Second,
		Seed:               7,
	}
}

func TestSpawningPlacesAllCapitals(t *testing.T) {
	e, _ := newTestEngine(spawnOptions(), &autoSource{})
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	// No gate script: the human pick times out and falls back to the
	// policy, so the phase still completes.
	if err := e.RunSpawningPhase(context.Background()); err != nil {
		t.Fatalf("RunSpawningPhase: %v", err)
	}

	gs := e.state
	if len(gs.Capitals) != 3 {
		t.Fatalf("placed %d capitals, want 3", len(gs.Capitals))
	}
	for _, p := range gs.Players {
		if p.Capital < 0 {
			t.Errorf("player %d has no capital", p.ID)
		}
		if len(p.Regions) != 1 {
			t.Errorf("player %d controls %d regions after spawning", p.ID, len(p.Regions))
		}
		c := gs.Capitals[p.Capital]
		if c == nil || c.Owner != p.ID || c.HP != conquest.CapitalMaxHP {
			t.Errorf("player %d capital record = %+v", p.ID, c)
		}
		if gs.Regions[p.Capital].Value != conquest.CapitalValue {
			t.Errorf("capital region value = %d", gs.Regions[p.Capital].Value)
		}
	}
}

func TestSpawningHumanPickHonored(t *testing.T) {
	e, _ := newTestEngine(spawnOptions(), &autoSource{})
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	installScript(e.gate, []gateStep{
		selectStep(4, conquest.ActionAttack), // action field is irrelevant here
	})

	if err := e.RunSpawningPhase(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.state.Players[HumanPlayerID].Capital != 4 {
		t.Errorf("human capital = %d, want picked region 4", e.state.Players[HumanPlayerID].Capital)
	}
}

func TestCapitalCandidatesRespectDistance(t *testing.T) {
	// Line map 0-1-2-3-4 with a capital at 0: regions closer than 2
	// hops are excluded, and a full pool falls back to any unowned.
	e, _ := newTestEngine(spawnOptions(), &scriptedSource{})
	gs := e.state
	p := addHuman(e, 0, "Alice")
	gs.AddRegion(&conquest.Region{ID: 0, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{1}})
	gs.AddRegion(&conquest.Region{ID: 1, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{0, 2}})
	gs.AddRegion(&conquest.Region{ID: 2, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{1, 3}})
	gs.AddRegion(&conquest.Region{ID: 3, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{2, 4}})
	gs.AddRegion(&conquest.Region{ID: 4, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{3}})
	if err := gs.EstablishCapital(p.ID, 0); err != nil {
		t.Fatal(err)
	}

	candidates := e.capitalCandidates()
	for _, r := range candidates {
		if r.ID == 1 {
			t.Error("region 1 is only 1 hop from the placed capital")
		}
	}
	if len(candidates) != 3 {
		t.Errorf("got %d candidates, want regions 2..4", len(candidates))
	}

	// Claim everything beyond 1 hop: the constraint can no longer be
	// met, so the fallback must return the remaining unowned region.
	for _, id := range []conquest.RegionID{2, 3, 4} {
		if err := gs.ClaimRegion(p.ID, id); err != nil {
			t.Fatal(err)
		}
	}
	fallback := e.capitalCandidates()
	if len(fallback) != 1 || fallback[0].ID != 1 {
		t.Errorf("fallback candidates = %v, want just region 1", fallback)
	}
}

func TestOccupationDistributesEverything(t *testing.T) {
	e, _ := newTestEngine(spawnOptions(), &autoSource{})
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	if err := e.RunSpawningPhase(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Human forfeits every pick window; the bots sweep the board.
	if err := e.RunOccupationPhase(context.Background()); err != nil {
		t.Fatalf("RunOccupationPhase: %v", err)
	}

	gs := e.state
	if n := len(gs.UnownedRegions()); n != 0 {
		t.Errorf("%d regions still unowned", n)
	}
	if err := gs.Validate(); err != nil {
		t.Errorf("state invalid after occupation: %v", err)
	}
	// Turn order must be assigned and unique.
	seen := make(map[int]bool)
	for _, p := range gs.AlivePlayers() {
		if seen[p.TurnOrder] {
			t.Errorf("duplicate turn order %d", p.TurnOrder)
		}
		seen[p.TurnOrder] = true
	}
}

func TestOccupationNumericExhaustedAssignsLeftovers(t *testing.T) {
	e, _ := newTestEngine(spawnOptions(), &scriptedSource{}) // no questions at all
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	if err := e.RunSpawningPhase(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.RunOccupationPhase(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(e.state.UnownedRegions()); n != 0 {
		t.Errorf("%d regions unowned after leftover assignment", n)
	}
}

func TestRankByAnswer(t *testing.T) {
	e, clock := newTestEngine(spawnOptions(), &scriptedSource{})
	base := clock.Now()
	answers := []rankedAnswer{
		{player: 1, answer: conquest.NumericAnswer{Value: 120, At: base, Answered: true}},
		{player: 2, answer: conquest.NumericAnswer{Value: 101, At: base.Add(time.Second), Answered: true}},
		{player: 3, answer: conquest.NumericAnswer{}}, // silent
		{player: 4, answer: conquest.NumericAnswer{Value: 99, At: base, Answered: true}},
	}

	// Players 2 and 4 are both off by 1; player 4 answered earlier and
	// ranks first.
	ranked := e.rankByAnswer(100, answers)
	want := []conquest.PlayerID{4, 2, 1, 3}
	for i, pid := range want {
		if ranked[i] != pid {
			t.Fatalf("rank = %v, want %v", ranked, want)
		}
	}
}

func TestRankByAnswerEqualDistanceEarlierFirst(t *testing.T) {
	e, clock := newTestEngine(spawnOptions(), &scriptedSource{})
	base := clock.Now()
	answers := []rankedAnswer{
		{player: 1, answer: conquest.NumericAnswer{Value: 105, At: base.Add(time.Second), Answered: true}},
		{player: 2, answer: conquest.NumericAnswer{Value: 95, At: base, Answered: true}},
	}
	ranked := e.rankByAnswer(100, answers)
	if ranked[0] != 2 {
		t.Errorf("rank = %v, earlier answer must come first", ranked)
	}
}

func TestRegionDistance(t *testing.T) {
	gs := conquest.NewGameState()
	gs.AddRegion(&conquest.Region{ID: 0, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{1}})
	gs.AddRegion(&conquest.Region{ID: 1, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{0, 2}})
	gs.AddRegion(&conquest.Region{ID: 2, Owner: conquest.NoPlayer, Adjacent: []conquest.RegionID{1}})
	gs.AddRegion(&conquest.Region{ID: 3, Owner: conquest.NoPlayer}) // island

	if d := regionDistance(gs, 0, 2); d != 2 {
		t.Errorf("distance 0->2 = %d, want 2", d)
	}
	if d := regionDistance(gs, 0, 0); d != 0 {
		t.Errorf("distance 0->0 = %d", d)
	}
	if d := regionDistance(gs, 0, 3); d < 1000 {
		t.Errorf("distance to unreachable region = %d, want huge", d)
	}
}
