// Package tracker computes the minimal set of resource state transitions
// required to satisfy pass accesses, keyed by (resource, view). It is
// grounded on gogpu-wgpu's core/track buffer tracker, collapsed to a
// single tracker rather than a tracker/scope pair: the frame model here is
// single-threaded during planning, so there is no separate command-buffer
// scope to merge on submit.
package tracker

import "github.com/gogpu/rendergraph/internal/model"

// ResourceTransition records a single state change for one (resource, view)
// pair, triggered by a specific pass.
type ResourceTransition struct {
	Resource model.ResourceHandle
	From     model.ResourceState
	To       model.ResourceState
	Pass     model.PassHandle
	View     model.ViewIndex
}

type key struct {
	Resource model.ResourceHandle
	View     model.ViewIndex
}

// StateTracker tracks the current ResourceState of every (resource, view)
// pair touched so far and accumulates an append-only, execution-order
// stable list of transitions.
//
// Equality between states is on the enum value alone: two distinct read
// states are NOT unified into one. This mirrors a deliberately
// conservative choice upstream — two consecutive reads in different
// read-states still emit a transition. Replicated verbatim rather than
// "fixed", see TestStateTracker_ConsecutiveReadsEmitSeparateTransitions.
type StateTracker struct {
	current      map[key]model.ResourceState
	lastUsedPass map[key]model.PassHandle
	transitions  []ResourceTransition
}

// New returns an empty tracker.
func New() *StateTracker {
	return &StateTracker{
		current:      make(map[key]model.ResourceState),
		lastUsedPass: make(map[key]model.PassHandle),
	}
}

// SetInitialState seeds the tracker for (resource, view). If never called,
// the first RequestTransition call implicitly seeds model.StateCommon.
func (t *StateTracker) SetInitialState(resource model.ResourceHandle, state model.ResourceState, view model.ViewIndex) {
	t.current[key{resource, view}] = state
}

// RequestTransition compares state against the tracked current state for
// (resource, view); if different, it appends a ResourceTransition and
// updates the tracked state. It is a no-op when the state is unchanged.
func (t *StateTracker) RequestTransition(resource model.ResourceHandle, newState model.ResourceState, pass model.PassHandle, view model.ViewIndex) {
	k := key{resource, view}

	from, seeded := t.current[k]
	if !seeded {
		from = model.StateCommon
	}

	if from != newState {
		t.transitions = append(t.transitions, ResourceTransition{
			Resource: resource,
			From:     from,
			To:       newState,
			Pass:     pass,
			View:     view,
		})
	}

	t.current[k] = newState
	t.lastUsedPass[k] = pass
}

// CurrentState returns the tracked state for (resource, view), or
// model.StateUndefined if never touched.
func (t *StateTracker) CurrentState(resource model.ResourceHandle, view model.ViewIndex) model.ResourceState {
	if s, ok := t.current[key{resource, view}]; ok {
		return s
	}
	return model.StateUndefined
}

// LastUsedPass returns the most recent pass to touch (resource, view).
func (t *StateTracker) LastUsedPass(resource model.ResourceHandle, view model.ViewIndex) (model.PassHandle, bool) {
	p, ok := t.lastUsedPass[key{resource, view}]
	return p, ok
}

// Transitions returns the append-only planned-transition list accumulated
// so far, in the order transitions were requested.
func (t *StateTracker) Transitions() []ResourceTransition {
	return t.transitions
}

// Reset clears all tracked state. Replaying the same plan after Reset
// yields the same planned-transition list (idempotence, per the testable
// round-trip property).
func (t *StateTracker) Reset() {
	t.current = make(map[key]model.ResourceState)
	t.lastUsedPass = make(map[key]model.PassHandle)
	t.transitions = nil
}
