// Package testutil provides shared test infrastructure for the routing
// simulator: the golden routing dataset and float assertion helpers used
// across sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one fixed routing scenario: a grid, a policy, a set of
// packets injected at time zero and a number of unit steps.
type GoldenTestCase struct {
	Name     string      `json:"name"`
	Rows     int         `json:"rows"`
	Cols     int         `json:"cols"`
	Policy   string      `json:"policy"`
	SendMode string      `json:"send_mode"`
	Seed     int64       `json:"seed"`
	Packets  [][2]int    `json:"packets"`
	Steps    int         `json:"steps"`
	Metrics  GoldenStats `json:"metrics"`
}

// GoldenStats represents the expected network statistics after the last step.
type GoldenStats struct {
	// Exact match counters
	Injected  int `json:"injected"`
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	Active    int `json:"active"`
	Hops      int `json:"hops"`

	// Derived from the simulation clock
	Clock        float64 `json:"clock"`
	AveRouteTime float64 `json:"ave_route_time"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
