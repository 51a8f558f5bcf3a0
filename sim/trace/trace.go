package trace

// TraceLevel controls the verbosity of tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures one record per step.
	TraceLevelSteps TraceLevel = "steps"
	// TraceLevelDecisions captures step records plus every forwarding decision.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelSteps:     true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects records during a training run.
type SimulationTrace struct {
	Config    TraceConfig
	Steps     []StepRecord
	Decisions []DecisionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Steps:     make([]StepRecord, 0),
		Decisions: make([]DecisionRecord, 0),
	}
}

// Enabled reports whether anything is recorded. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level != TraceLevelNone && st.Config.Level != ""
}

// RecordsDecisions reports whether forwarding decisions are recorded. Safe on a nil trace.
func (st *SimulationTrace) RecordsDecisions() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordStep appends a step record.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	st.Steps = append(st.Steps, record)
}

// RecordDecision appends a decision record.
func (st *SimulationTrace) RecordDecision(record DecisionRecord) {
	st.Decisions = append(st.Decisions, record)
}
