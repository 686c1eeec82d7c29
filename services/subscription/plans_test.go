package subscription

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountPercentage(t *testing.T) {
	tests := []struct {
		name    string
		monthly string
		yearly  string
		want    int64
	}{
		{"free plan", "0", "0", 0},
		{"premium", "0.2", "0.10", 96},
		{"family costs more yearly", "0.35", "399.99", -9424},
		{"two months free", "10", "100", 17},
		{"no saving", "1", "12", 0},
		{"half a percent rounds up", "1", "11.94", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountPercentage(decimal.RequireFromString(tt.monthly), decimal.RequireFromString(tt.yearly))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToWei(t *testing.T) {
	tests := []struct {
		eth  string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"0.2", "200000000000000000"},
		{"0.10", "100000000000000000"},
		{"399.99", "399990000000000000000"},
		{"0.0000000000000000001", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.eth, func(t *testing.T) {
			want, ok := new(big.Int).SetString(tt.want, 10)
			require.True(t, ok)
			assert.Equal(t, 0, want.Cmp(ToWei(decimal.RequireFromString(tt.eth))))
		})
	}

	assert.True(t, decimal.RequireFromString("0.35").Equal(FromWei(ToWei(decimal.RequireFromString("0.35")))))
}

func TestCatalog(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, []string{PlanFree, PlanPremium, PlanFamily}, []string{plans[0].ID, plans[1].ID, plans[2].ID})

	free := FreePlan()
	assert.True(t, free.IsFree())
	assert.Equal(t, 3, free.SavedAnalysesLimit)

	premium, ok := PlanByID(PlanPremium)
	require.True(t, ok)
	assert.True(t, premium.Popular)
	assert.Equal(t, -1, premium.SavedAnalysesLimit)

	_, ok = PlanByID("enterprise")
	assert.False(t, ok)

	plans[0].Name = "mutated"
	assert.Equal(t, "Free", FreePlan().Name)
}
