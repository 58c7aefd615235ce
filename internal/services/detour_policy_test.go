package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaxed-route-service/internal/domain"
)

func TestDetourPolicyFixed(t *testing.T) {
	f, err := FixedDetour(0.15).MaxIncrease(123456)
	require.NoError(t, err)
	assert.Equal(t, 0.15, f)
}

func TestDetourPolicyBanded(t *testing.T) {
	cases := []struct {
		meters float64
		want   float64
	}{
		{1000, 1.0},
		{5000, 1.0},
		{5001, 0.7},
		{10000, 0.7},
		{10001, 0.5},
		{42000, 0.5},
	}

	for _, tc := range cases {
		got, err := BandedDetour().MaxIncrease(tc.meters)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-12, "meters=%v", tc.meters)
	}
}

func TestDetourPolicyBandedRejectsNonPositive(t *testing.T) {
	for _, m := range []float64{0, -3000} {
		_, err := BandedDetour().MaxIncrease(m)
		assert.ErrorIs(t, err, domain.ErrInvalidDetourDistance, "meters=%v", m)
	}
}
