package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReward(t *testing.T) {
	cases := []struct {
		name  string
		views int64
		rpm   int64
		want  int64
	}{
		{"scenario", 20000, 1000, 20000},
		{"over budget scenario", 90000, 1000, 90000},
		{"zero views", 0, 1000, 0},
		{"rounds half up", 500, 1, 1},         // 0.5 cent
		{"rounds down below half", 499, 1, 0}, // 0.499 cent
		{"fractional rpm", 1234, 250, 309},    // 308.5 cents
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reward(tc.views, tc.rpm)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRewardOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		views int64
		rpm   int64
	}{
		{"product wraps int64", 4611686018427388929, 4000},
		{"max views", math.MaxInt64, 1001},
		{"max rpm", 1001, math.MaxInt64},
		{"both max", math.MaxInt64, math.MaxInt64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Reward(tc.views, tc.rpm)
			assert.ErrorIs(t, err, ErrBudgetExceeded)
		})
	}
}

func TestRewardLargestRepresentable(t *testing.T) {
	// MaxInt64 views at 10.00 per mille is exactly MaxInt64 cents.
	got, err := Reward(math.MaxInt64, viewsPerMille)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	got, err = Reward(math.MaxInt64, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854776), got) // 9223372036854775.807 rounded
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "200.00", FormatAmount(20000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "-3.10", FormatAmount(-310))
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("1000")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got)

	got, err = ParseAmount("10.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), got)

	got, err = ParseAmount("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	for _, bad := range []string{"abc", "1.005", "-1", "92233720368547758.08", "184467440737095517.16"} {
		_, err = ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}
