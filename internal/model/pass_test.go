package model

import "testing"

func TestPass_ArityValid(t *testing.T) {
	p := NewPass(1, "blit", ScopeShared)
	p.AddRead(1, StateConstantSRV)
	p.AddWrite(2, StateRenderTarget)

	if !p.ArityValid() {
		t.Error("matched reads/writes should be arity-valid")
	}

	p.reads = append(p.reads, 3)
	if p.ArityValid() {
		t.Error("an unmatched read handle should fail arity validation")
	}
}

func TestPass_HasSelfWriteConflict(t *testing.T) {
	p := NewPass(1, "blit", ScopeShared)
	p.AddWrite(1, StateRenderTarget)
	if p.HasSelfWriteConflict() {
		t.Error("a single write should not conflict with itself")
	}

	p.AddWrite(1, StateUAV)
	if !p.HasSelfWriteConflict() {
		t.Error("writing the same resource handle twice should be a self-write conflict")
	}
}

func TestPass_Clone(t *testing.T) {
	p := NewPass(1, "shade", ScopePerView)
	p.AddRead(1, StateConstantSRV)
	p.AddWrite(2, StateRenderTarget)
	p.AddDependency(99)
	p.SetExecutor(func(*TaskExecutionContext) error { return nil })

	clone := p.Clone(5)

	if clone.Handle() != 5 {
		t.Errorf("clone handle = %d, want 5", clone.Handle())
	}
	if clone.Name() != "shade" || clone.Scope() != ScopePerView {
		t.Errorf("clone name/scope = %q/%v, want shade/PerView", clone.Name(), clone.Scope())
	}
	if len(clone.Dependencies()) != 1 || clone.Dependencies()[0] != 99 {
		t.Errorf("clone dependencies = %v, want [99]", clone.Dependencies())
	}
	if clone.Executor() != nil {
		t.Error("Clone must not carry over the executor; callers install a shared wrapper instead")
	}

	clone.MutableReads()[0] = 7
	if p.Reads()[0] != 1 {
		t.Error("mutating a clone's reads must not affect the original pass (Clone should deep-copy slices)")
	}
}

func TestPass_AddReadWrite_ParallelArrays(t *testing.T) {
	p := NewPass(1, "pass", ScopeShared)
	p.AddRead(1, StateConstantSRV)
	p.AddRead(2, StatePixelSRV)

	if len(p.Reads()) != 2 || len(p.ReadStates()) != 2 {
		t.Fatalf("got %d reads / %d states, want 2/2", len(p.Reads()), len(p.ReadStates()))
	}
	if p.Reads()[1] != 2 || p.ReadStates()[1] != StatePixelSRV {
		t.Errorf("second read = (%d, %v), want (2, PixelSRV)", p.Reads()[1], p.ReadStates()[1])
	}
}

func TestResourceState_IsReadIsWriteMutuallyExclusive(t *testing.T) {
	for s := StateUndefined; s <= StatePresent; s++ {
		if s.IsRead() && s.IsWrite() {
			t.Errorf("state %v reports both IsRead and IsWrite", s)
		}
	}
	if !StateRenderTarget.IsWrite() {
		t.Error("StateRenderTarget should be a write state")
	}
	if !StateConstantSRV.IsRead() {
		t.Error("StateConstantSRV should be a read state")
	}
}
