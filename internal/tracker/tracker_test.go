package tracker

import (
	"testing"

	"github.com/gogpu/rendergraph/internal/model"
)

func TestStateTracker_SeedsCommonWhenUnset(t *testing.T) {
	tr := New()
	tr.RequestTransition(1, model.StateRenderTarget, 1, 0)

	got := tr.Transitions()
	if len(got) != 1 {
		t.Fatalf("got %d transitions, want 1", len(got))
	}
	if got[0].From != model.StateCommon {
		t.Errorf("From = %v, want StateCommon", got[0].From)
	}
	if got[0].To != model.StateRenderTarget {
		t.Errorf("To = %v, want StateRenderTarget", got[0].To)
	}
}

func TestStateTracker_NoOpOnIdenticalState(t *testing.T) {
	tr := New()
	tr.SetInitialState(1, model.StatePixelSRV, 0)
	tr.RequestTransition(1, model.StatePixelSRV, 1, 0)

	if len(tr.Transitions()) != 0 {
		t.Errorf("expected no transitions for identical state, got %d", len(tr.Transitions()))
	}
}

// TestStateTracker_ConsecutiveReadsEmitSeparateTransitions pins the
// deliberately conservative behavior: two different read states in a row
// are NOT unified into a single no-op.
func TestStateTracker_ConsecutiveReadsEmitSeparateTransitions(t *testing.T) {
	tr := New()
	tr.RequestTransition(1, model.StatePixelSRV, 1, 0)
	tr.RequestTransition(1, model.StateNonPixelSRV, 2, 0)

	got := tr.Transitions()
	if len(got) != 2 {
		t.Fatalf("got %d transitions, want 2 (reads are not unified)", len(got))
	}
}

func TestStateTracker_KeyedByResourceAndView(t *testing.T) {
	tr := New()
	tr.RequestTransition(1, model.StateRenderTarget, 1, 0)
	tr.RequestTransition(1, model.StateRenderTarget, 1, 1)

	if len(tr.Transitions()) != 2 {
		t.Fatalf("expected distinct views to each emit a transition, got %d", len(tr.Transitions()))
	}
}

func TestStateTracker_CurrentState(t *testing.T) {
	tr := New()
	if got := tr.CurrentState(1, 0); got != model.StateUndefined {
		t.Errorf("CurrentState() before any use = %v, want Undefined", got)
	}
	tr.RequestTransition(1, model.StateRenderTarget, 1, 0)
	if got := tr.CurrentState(1, 0); got != model.StateRenderTarget {
		t.Errorf("CurrentState() = %v, want RenderTarget", got)
	}
}

func TestStateTracker_ResetIsIdempotent(t *testing.T) {
	tr := New()
	tr.RequestTransition(1, model.StateRenderTarget, 1, 0)
	tr.RequestTransition(2, model.StatePixelSRV, 2, 0)
	first := append([]ResourceTransition(nil), tr.Transitions()...)

	tr.Reset()
	tr.RequestTransition(1, model.StateRenderTarget, 1, 0)
	tr.RequestTransition(2, model.StatePixelSRV, 2, 0)
	second := tr.Transitions()

	if len(first) != len(second) {
		t.Fatalf("replay after reset produced %d transitions, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("transition %d differs after reset: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStateTracker_LastUsedPass(t *testing.T) {
	tr := New()
	tr.RequestTransition(1, model.StateRenderTarget, 7, 0)

	p, ok := tr.LastUsedPass(1, 0)
	if !ok || p != 7 {
		t.Errorf("LastUsedPass() = (%v, %v), want (7, true)", p, ok)
	}
}
