package engine

import (
	"testing"
	"time"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

func newTestGate() (*InputGate, *fakeClock) {
	g := NewInputGate()
	clock := newFakeClock()
	g.now = clock.Now
	g.sleep = clock.Sleep
	return g, clock
}

func TestGateSelectionDelivered(t *testing.T) {
	g, _ := newTestGate()
	g.SetPump(func() {
		g.SubmitRegionSelection(4, conquest.ActionAttack)
	})

	sel, ok := g.AwaitSelection(time.Minute)
	if !ok {
		t.Fatal("selection timed out")
	}
	if sel.Region != 4 || sel.Action != conquest.ActionAttack {
		t.Errorf("selection = %+v", sel)
	}
}

func TestGateSelectionTimeout(t *testing.T) {
	g, clock := newTestGate()
	start := clock.Now()

	_, ok := g.AwaitSelection(time.Minute)
	if ok {
		t.Fatal("expected timeout")
	}
	if elapsed := clock.Now().Sub(start); elapsed < time.Minute {
		t.Errorf("returned after %v, before the window closed", elapsed)
	}
}

func TestGateSubmitWithoutAwaitIgnored(t *testing.T) {
	g, _ := newTestGate()
	g.SubmitCategoricalAnswer(2)
	g.SubmitRegionSelection(1, conquest.ActionAttack)
	g.SubmitNumericAnswer(3.5)

	// Nothing above may satisfy a later await.
	if _, ok := g.AwaitCategorical(100 * time.Millisecond); ok {
		t.Error("stale categorical answer accepted")
	}
}

func TestGateWrongKindIgnored(t *testing.T) {
	g, _ := newTestGate()
	g.SetPump(func() {
		g.SubmitRegionSelection(1, conquest.ActionAttack) // wrong kind
		g.SubmitNumericAnswer(9)                          // wrong kind
	})
	if _, ok := g.AwaitCategorical(100 * time.Millisecond); ok {
		t.Error("mismatched submissions satisfied the await")
	}
}

func TestGateFirstSubmissionWins(t *testing.T) {
	g, _ := newTestGate()
	g.SetPump(func() {
		g.SubmitCategoricalAnswer(1)
		g.SubmitCategoricalAnswer(3)
	})
	choice, ok := g.AwaitCategorical(time.Second)
	if !ok || choice != 1 {
		t.Errorf("choice = %d ok = %v, want first submission", choice, ok)
	}
}

func TestGateNumericTimestamped(t *testing.T) {
	g, clock := newTestGate()
	var submitted time.Time
	g.SetPump(func() {
		submitted = clock.Now()
		g.SubmitNumericAnswer(42)
	})

	ans := g.AwaitNumeric(time.Second)
	if !ans.Answered || ans.Value != 42 {
		t.Fatalf("answer = %+v", ans)
	}
	if !ans.At.Equal(submitted) {
		t.Errorf("timestamp %v, want submit time %v", ans.At, submitted)
	}
}

func TestGateNumericTimeoutUnanswered(t *testing.T) {
	g, _ := newTestGate()
	ans := g.AwaitNumeric(time.Second)
	if ans.Answered {
		t.Error("timeout must produce an unanswered result")
	}
}

func TestGateTimeoutThenLateSubmitIgnored(t *testing.T) {
	g, _ := newTestGate()
	if _, ok := g.AwaitCategorical(50 * time.Millisecond); ok {
		t.Fatal("expected timeout")
	}
	// The window is closed; a late answer must not leak into the next
	// await of a different question.
	g.SubmitCategoricalAnswer(2)
	if _, ok := g.AwaitCategorical(50 * time.Millisecond); ok {
		t.Error("late answer satisfied a later await")
	}
}

func TestGateSequentialAwaits(t *testing.T) {
	g, _ := newTestGate()
	script := installScript(g, []gateStep{
		answerStep(0),
		numericStep(7),
		selectStep(3, conquest.ActionFortify),
	})

	if choice, ok := g.AwaitCategorical(time.Second); !ok || choice != 0 {
		t.Fatalf("categorical = %d, %v", choice, ok)
	}
	if ans := g.AwaitNumeric(time.Second); !ans.Answered || ans.Value != 7 {
		t.Fatalf("numeric = %+v", ans)
	}
	if sel, ok := g.AwaitSelection(time.Second); !ok || sel.Region != 3 {
		t.Fatalf("selection = %+v, %v", sel, ok)
	}
	if script.i != 3 {
		t.Errorf("consumed %d steps, want 3", script.i)
	}
}
