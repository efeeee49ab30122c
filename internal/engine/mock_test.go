package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iamstoobit/Triviador/internal/repository"
	"github.com/iamstoobit/Triviador/internal/trivia"
	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// fakeClock advances on Sleep so timeout paths run instantly.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedSource serves queued questions in order, then (nil, nil).
type scriptedSource struct {
	mu  sync.Mutex
	mc  []*trivia.Question
	num []*trivia.Question
}

func (s *scriptedSource) NextMultipleChoice(_ context.Context, _ string) (*trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.mc) == 0 {
		return nil, nil
	}
	q := s.mc[0]
	s.mc = s.mc[1:]
	return q, nil
}

func (s *scriptedSource) NextNumeric(_ context.Context) (*trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.num) == 0 {
		return nil, nil
	}
	q := s.num[0]
	s.num = s.num[1:]
	return q, nil
}

// autoSource generates unlimited fresh questions, for full-game runs.
type autoSource struct {
	mu sync.Mutex
	n  int64
}

func (s *autoSource) NextMultipleChoice(_ context.Context, category string) (*trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return &trivia.Question{
		ID:           s.n,
		Kind:         trivia.KindMultipleChoice,
		Category:     category,
		Text:         fmt.Sprintf("question %d", s.n),
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 0,
	}, nil
}

func (s *autoSource) NextNumeric(_ context.Context) (*trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return &trivia.Question{
		ID:     s.n,
		Kind:   trivia.KindNumeric,
		Text:   fmt.Sprintf("numeric %d", s.n),
		Answer: float64(s.n * 3),
	}, nil
}

func testMC(id int64) *trivia.Question {
	return &trivia.Question{
		ID:           id,
		Kind:         trivia.KindMultipleChoice,
		Text:         "Which?",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 0,
	}
}

func testNumeric(id int64, answer float64) *trivia.Question {
	return &trivia.Question{ID: id, Kind: trivia.KindNumeric, Text: "How many?", Answer: answer}
}

// recordingBroadcaster captures events for assertions.
type recordingBroadcaster struct {
	mu        sync.Mutex
	turns     []conquest.PlayerID
	questions []*trivia.Question
	battles   []*conquest.BattleOutcome
	states    int
	gameOvers []*conquest.Player
}

func (b *recordingBroadcaster) TurnStarted(p conquest.PlayerID, _, _ int, _ bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, p)
}

func (b *recordingBroadcaster) StateUpdated(*Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states++
}

func (b *recordingBroadcaster) QuestionPosed(_ []conquest.PlayerID, q *trivia.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = append(b.questions, q)
}

func (b *recordingBroadcaster) BattleResolved(_ conquest.RegionID, out *conquest.BattleOutcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.battles = append(b.battles, out)
}

func (b *recordingBroadcaster) GameOver(w *conquest.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gameOvers = append(b.gameOvers, w)
}

// memCache is an in-memory GameCache.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	cleared []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) SaveSnapshot(_ context.Context, gameID string, snapshot []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[gameID] = snapshot
	c.saves++
	return nil
}

func (c *memCache) LoadSnapshot(_ context.Context, gameID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[gameID], nil
}

func (c *memCache) Clear(_ context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, gameID)
	c.cleared = append(c.cleared, gameID)
	return nil
}

// memLeaderboard is an in-memory Leaderboard.
type memLeaderboard struct {
	mu      sync.Mutex
	entries []repository.LeaderboardEntry
}

func (l *memLeaderboard) Record(_ context.Context, entry repository.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *memLeaderboard) Top(_ context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	return l.entries[:limit], nil
}

// newTestEngine wires an engine to a fake clock on both the engine and
// its gate.
func newTestEngine(opts Options, source trivia.Source) (*Engine, *fakeClock) {
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	e := NewEngine(opts, source)
	clock := newFakeClock()
	e.now = clock.Now
	e.sleep = clock.Sleep
	e.gate.now = clock.Now
	e.gate.sleep = clock.Sleep
	return e, clock
}

// gateStep is one scripted response to a gate suspension. A nil submit
// lets that suspension time out.
type gateStep struct {
	kind   awaitKind
	submit func(g *InputGate)
}

// gateScript feeds scripted responses through the gate's pump: exactly
// one step per suspension, matched by kind.
type gateScript struct {
	g       *InputGate
	steps   []gateStep
	i       int
	lastGen int
}

func installScript(g *InputGate, steps []gateStep) *gateScript {
	s := &gateScript{g: g, steps: steps}
	g.SetPump(s.pump)
	return s
}

func (s *gateScript) pump() {
	s.g.mu.Lock()
	kind, gen := s.g.kind, s.g.gen
	s.g.mu.Unlock()

	if kind == awaitNone || gen == s.lastGen || s.i >= len(s.steps) {
		return
	}
	step := s.steps[s.i]
	if step.kind != kind {
		return
	}
	s.i++
	s.lastGen = gen
	if step.submit != nil {
		step.submit(s.g)
	}
}

func selectStep(region conquest.RegionID, action conquest.Action) gateStep {
	return gateStep{kind: awaitSelection, submit: func(g *InputGate) {
		g.SubmitRegionSelection(region, action)
	}}
}

func answerStep(choice int) gateStep {
	return gateStep{kind: awaitCategorical, submit: func(g *InputGate) {
		g.SubmitCategoricalAnswer(choice)
	}}
}

func numericStep(value float64) gateStep {
	return gateStep{kind: awaitNumeric, submit: func(g *InputGate) {
		g.SubmitNumericAnswer(value)
	}}
}

func timeoutStep(kind awaitKind) gateStep {
	return gateStep{kind: kind}
}

// addHuman registers an extra human-controlled player directly in the
// state, so both battle sides can be driven through the gate script.
func addHuman(e *Engine, id conquest.PlayerID, name string) *conquest.Player {
	return e.state.AddPlayer(id, name, conquest.PlayerHuman)
}
