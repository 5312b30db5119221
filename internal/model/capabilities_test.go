package model

import "testing"

func TestNullGraphicsLayer_AllocateDescriptor_Increments(t *testing.T) {
	gl := NewNullGraphicsLayer()

	first := gl.AllocateDescriptor()
	second := gl.AllocateDescriptor()
	if second != first+1 {
		t.Errorf("descriptor indices = %d, %d, want sequential", first, second)
	}
}

func TestNullGraphicsLayer_GetIntegrationStats_TracksAllocations(t *testing.T) {
	gl := NewNullGraphicsLayer()
	gl.AllocateDescriptor()
	gl.AllocateDescriptor()
	gl.AllocateDescriptor()

	_, allocated, _ := gl.GetIntegrationStats()
	if allocated != 3 {
		t.Errorf("allocated descriptors = %d, want 3", allocated)
	}
}

func TestNullGraphicsLayer_ValidateIntegrationState_AlwaysTrue(t *testing.T) {
	gl := NewNullGraphicsLayer()
	if !gl.ValidateIntegrationState() {
		t.Error("NullGraphicsLayer should always report a consistent state")
	}
}

func TestNullGraphicsLayer_ScheduleResourceReclaim_IsANoOp(t *testing.T) {
	gl := NewNullGraphicsLayer()
	gl.ScheduleResourceReclaim(1, 0, "depth")
	active, _, pending := gl.GetIntegrationStats()
	if active != 0 || pending != 0 {
		t.Errorf("ScheduleResourceReclaim should not affect stats on the null layer, got active=%d pending=%d", active, pending)
	}
}
