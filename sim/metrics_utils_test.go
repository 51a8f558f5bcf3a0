package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePercentile(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 1.0, CalculatePercentile(data, 0))
	assert.Equal(t, 3.0, CalculatePercentile(data, 50))
	assert.Equal(t, 5.0, CalculatePercentile(data, 100))
	assert.InDelta(t, 4.6, CalculatePercentile(data, 90), 1e-9)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, data, "input must not be reordered")
}

func TestCalculatePercentile_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CalculatePercentile([]int{}, 50))
}

func TestCalculateMean(t *testing.T) {
	assert.Equal(t, 2.5, CalculateMean([]int{1, 2, 3, 4}))
	assert.Equal(t, 0.0, CalculateMean([]float64{}))
}

func TestSaveSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.txt")
	require.NoError(t, SaveSeries([]float64{1, 2.5, 3}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1, 2.5, 3\n", string(data))
}

func TestSaveSeries_BadPath(t *testing.T) {
	assert.Error(t, SaveSeries([]float64{1}, filepath.Join(t.TempDir(), "missing", "x.txt")))
}
