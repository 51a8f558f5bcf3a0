package trace

import (
	"testing"
)

func TestSimulationTrace_RecordStep_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for steps
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN a step record is recorded
	st.RecordStep(StepRecord{Clock: 1, Injected: 4, Sent: 3, Delivered: 1, Active: 3})

	// THEN the trace contains one step record with correct data
	if len(st.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(st.Steps))
	}
	if st.Steps[0].Sent != 3 {
		t.Errorf("expected 3 sends, got %d", st.Steps[0].Sent)
	}
	if st.Steps[0].Clock != 1 {
		t.Errorf("expected clock 1, got %v", st.Steps[0].Clock)
	}
}

func TestSimulationTrace_RecordDecision_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a decision record is recorded
	st.RecordDecision(DecisionRecord{Clock: 2, PacketID: 7, Node: 0, Dest: 5, Action: 1, QueueDelay: 0.5})

	// THEN the trace contains one decision record with correct data
	if len(st.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(st.Decisions))
	}
	if st.Decisions[0].PacketID != 7 || st.Decisions[0].Action != 1 {
		t.Errorf("unexpected decision %+v", st.Decisions[0])
	}
}

func TestSimulationTrace_MultipleSteps_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN multiple records are added
	for i := 1; i <= 3; i++ {
		st.RecordStep(StepRecord{Clock: float64(i)})
	}

	// THEN records keep insertion order
	for i, s := range st.Steps {
		if s.Clock != float64(i+1) {
			t.Errorf("step %d: expected clock %d, got %v", i, i+1, s.Clock)
		}
	}
}

func TestSimulationTrace_Enabled_ByLevel(t *testing.T) {
	tests := []struct {
		level     TraceLevel
		enabled   bool
		decisions bool
	}{
		{TraceLevelNone, false, false},
		{"", false, false},
		{TraceLevelSteps, true, false},
		{TraceLevelDecisions, true, true},
	}
	for _, tc := range tests {
		st := NewSimulationTrace(TraceConfig{Level: tc.level})
		if st.Enabled() != tc.enabled {
			t.Errorf("level %q: Enabled() = %v, want %v", tc.level, st.Enabled(), tc.enabled)
		}
		if st.RecordsDecisions() != tc.decisions {
			t.Errorf("level %q: RecordsDecisions() = %v, want %v", tc.level, st.RecordsDecisions(), tc.decisions)
		}
	}
}

func TestSimulationTrace_NilTrace_Disabled(t *testing.T) {
	// GIVEN no trace
	var st *SimulationTrace

	// THEN it reports disabled without panicking
	if st.Enabled() || st.RecordsDecisions() {
		t.Error("expected nil trace to be disabled")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"steps", true},
		{"decisions", true},
		{"", true},
		{"detailed", false},
		{"Steps", false},
	}
	for _, tc := range tests {
		if got := IsValidTraceLevel(tc.level); got != tc.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tc.level, got, tc.valid)
		}
	}
}
