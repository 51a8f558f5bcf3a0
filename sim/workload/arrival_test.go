package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestIsValidArrival(t *testing.T) {
	for _, name := range []string{"", ArrivalPoisson, ArrivalConstant, ArrivalBursty} {
		assert.True(t, IsValidArrival(name), name)
	}
	assert.False(t, IsValidArrival("weibull"))
}

func TestNewArrivalGenerator_Unknown_Error(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	_, err := NewArrivalGenerator(net, rng, "weibull", 0)
	assert.Error(t, err)
}

func TestNewArrivalGenerator_BurstyNeedsCV(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	_, err := NewArrivalGenerator(net, rng, ArrivalBursty, 0)
	assert.Error(t, err)
}

func TestNewArrivalGenerator_Constant(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	g, err := NewArrivalGenerator(net, rng, ArrivalConstant, 0)
	require.NoError(t, err)
	assert.Len(t, g.Next(2), 2)
}

// counts draws n slot counts with the given mean.
func counts(g *Generator, n int, mean float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(len(g.Next(mean)))
	}
	return out
}

func TestBurstySampler_MoreVariableThanPoisson(t *testing.T) {
	netP, rngP := newNetwork(t, 3, 3)
	netB, rngB := newNetwork(t, 3, 3)
	poisson, err := NewArrivalGenerator(netP, rngP, ArrivalPoisson, 0)
	require.NoError(t, err)
	bursty, err := NewArrivalGenerator(netB, rngB, ArrivalBursty, 2)
	require.NoError(t, err)

	const n, mean = 4000, 3.0
	pc, bc := counts(poisson, n, mean), counts(bursty, n, mean)

	// Same mean, but a Gamma-mixed Poisson has variance mean + (cv*mean)^2.
	assert.InDelta(t, mean, stat.Mean(bc, nil), 0.5)
	assert.Greater(t, stat.Variance(bc, nil), 3*stat.Variance(pc, nil))
}

func TestNewArrivalGenerator_BurstySameSeed_SameCounts(t *testing.T) {
	netA, rngA := newNetwork(t, 3, 3)
	netB, rngB := newNetwork(t, 3, 3)
	a, err := NewArrivalGenerator(netA, rngA, ArrivalBursty, 1.5)
	require.NoError(t, err)
	b, err := NewArrivalGenerator(netB, rngB, ArrivalBursty, 1.5)
	require.NoError(t, err)

	assert.Equal(t, counts(a, 200, 2), counts(b, 200, 2))
}
