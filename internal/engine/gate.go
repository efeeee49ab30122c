package engine

import (
	"sync"
	"time"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

// awaitKind is what the gate is currently suspended on.
type awaitKind int

const (
	awaitNone awaitKind = iota
	awaitSelection
	awaitCategorical
	awaitNumeric
)

// pollInterval is how often an Await* loop re-checks for input.
const pollInterval = 25 * time.Millisecond

// Selection is a human player's chosen action and target region.
type Selection struct {
	Region conquest.RegionID
	Action conquest.Action
}

// InputGate is the engine's only suspension point for human input. An
// Await* call parks the engine loop until the matching Submit* arrives
// or the timeout elapses; timeouts convert deterministically to absent
// input. Submit* calls are no-ops unless the gate is awaiting exactly
// that input kind, so stale clicks and double submissions fall through
// harmlessly.
type InputGate struct {
	mu   sync.Mutex
	kind awaitKind
	gen  int // bumped on every Await*, distinguishes consecutive waits

	selection *Selection
	choice    *int
	numeric   *conquest.NumericAnswer

	// Injectable for tests; pump lets a single-threaded presentation
	// layer process its event queue between polls.
	now   func() time.Time
	sleep func(time.Duration)
	pump  func()
}

// NewInputGate returns a gate running on the real clock.
func NewInputGate() *InputGate {
	return &InputGate{
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// SetPump installs a callback invoked on every poll iteration.
func (g *InputGate) SetPump(pump func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pump = pump
}

// AwaitSelection blocks until a region selection arrives or the timeout
// elapses. ok=false means the player let the clock run out.
func (g *InputGate) AwaitSelection(timeout time.Duration) (Selection, bool) {
	g.begin(awaitSelection)
	defer g.end()

	deadline := g.now().Add(timeout)
	for {
		g.mu.Lock()
		if g.selection != nil {
			sel := *g.selection
			g.mu.Unlock()
			return sel, true
		}
		g.mu.Unlock()
		if !g.now().Before(deadline) {
			return Selection{}, false
		}
		g.poll()
	}
}

// AwaitCategorical blocks until an option choice arrives or the timeout
// elapses. ok=false counts as a wrong answer upstream.
func (g *InputGate) AwaitCategorical(timeout time.Duration) (int, bool) {
	g.begin(awaitCategorical)
	defer g.end()

	deadline := g.now().Add(timeout)
	for {
		g.mu.Lock()
		if g.choice != nil {
			choice := *g.choice
			g.mu.Unlock()
			return choice, true
		}
		g.mu.Unlock()
		if !g.now().Before(deadline) {
			return 0, false
		}
		g.poll()
	}
}

// AwaitNumeric blocks until a numeric answer arrives or the timeout
// elapses. A timeout returns an unanswered NumericAnswer, which loses
// any closeness comparison.
func (g *InputGate) AwaitNumeric(timeout time.Duration) conquest.NumericAnswer {
	g.begin(awaitNumeric)
	defer g.end()

	deadline := g.now().Add(timeout)
	for {
		g.mu.Lock()
		if g.numeric != nil {
			ans := *g.numeric
			g.mu.Unlock()
			return ans
		}
		g.mu.Unlock()
		if !g.now().Before(deadline) {
			return conquest.NumericAnswer{}
		}
		g.poll()
	}
}

// SubmitRegionSelection delivers a region selection. Ignored unless the
// gate is awaiting one.
func (g *InputGate) SubmitRegionSelection(region conquest.RegionID, action conquest.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.kind != awaitSelection || g.selection != nil {
		return
	}
	g.selection = &Selection{Region: region, Action: action}
}

// SubmitCategoricalAnswer delivers an option choice. Ignored unless the
// gate is awaiting one.
func (g *InputGate) SubmitCategoricalAnswer(choice int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.kind != awaitCategorical || g.choice != nil {
		return
	}
	c := choice
	g.choice = &c
}

// SubmitNumericAnswer delivers a numeric answer, timestamped on arrival
// for the tie-break's latency comparison. Ignored unless the gate is
// awaiting one.
func (g *InputGate) SubmitNumericAnswer(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.kind != awaitNumeric || g.numeric != nil {
		return
	}
	g.numeric = &conquest.NumericAnswer{Value: value, At: g.now(), Answered: true}
}

func (g *InputGate) begin(kind awaitKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.kind = kind
	g.gen++
	g.selection = nil
	g.choice = nil
	g.numeric = nil
}

func (g *InputGate) end() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.kind = awaitNone
	g.selection = nil
	g.choice = nil
	g.numeric = nil
}

func (g *InputGate) poll() {
	g.mu.Lock()
	pump := g.pump
	g.mu.Unlock()
	if pump != nil {
		pump()
	}
	g.sleep(pollInterval)
}
