package subscription

import (
	"math/big"

	"genzhealth/models"

	"github.com/shopspring/decimal"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanFamily  = "family"

	unlimited = -1
)

var catalog = []models.Plan{
	{
		ID:           PlanFree,
		Name:         "Free",
		Description:  "Basic access to AI symptom analysis.",
		MonthlyPrice: decimal.Zero,
		YearlyPrice:  decimal.Zero,
		Features: []string{
			"Symptom analysis with AI",
			"Basic medical image analysis",
			"Save up to 3 analyses",
			"Access to health articles",
		},
		Limitations: []string{
			"No doctor consultations",
			"Limited AI analyses per month",
			"No priority support",
		},
		SavedAnalysesLimit: 3,
	},
	{
		ID:           PlanPremium,
		Name:         "Premium",
		Description:  "Perfect for regular health monitoring.",
		MonthlyPrice: decimal.RequireFromString("0.2"),
		YearlyPrice:  decimal.RequireFromString("0.10"),
		Features: []string{
			"Everything in Free plan",
			"Unlimited symptom analyses",
			"Detailed medical image reviews",
			"Save unlimited analyses",
			"Priority AI processing",
			"2 virtual doctor consultations",
			"Email support",
		},
		Limitations:        []string{},
		SavedAnalysesLimit: unlimited,
		Popular:            true,
	},
	{
		ID:           PlanFamily,
		Name:         "Family",
		Description:  "Health coverage for the whole family.",
		MonthlyPrice: decimal.RequireFromString("0.35"),
		YearlyPrice:  decimal.RequireFromString("399.99"),
		Features: []string{
			"Everything in Premium plan",
			"Up to 5 family profiles",
			"Shared health history",
			"5 virtual doctor consultations",
			"Family health tracking",
			"24/7 priority support",
			"Quarterly health reports",
		},
		Limitations:        []string{},
		SavedAnalysesLimit: unlimited,
	},
}

// Plans returns a copy of the plan catalog in display order.
func Plans() []models.Plan {
	out := make([]models.Plan, len(catalog))
	copy(out, catalog)
	return out
}

func PlanByID(id string) (models.Plan, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

func FreePlan() models.Plan {
	p, _ := PlanByID(PlanFree)
	return p
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
	half    = decimal.RequireFromString("0.5")
)

// DiscountPercentage is how much cheaper per month the yearly price is than the monthly
// one, rounded half up. A free monthly price has no discount.
func DiscountPercentage(monthly, yearly decimal.Decimal) int64 {
	if monthly.IsZero() {
		return 0
	}
	perMonth := yearly.DivRound(twelve, 18)
	savings := monthly.Sub(perMonth).DivRound(monthly, 18).Mul(hundred)
	return savings.Add(half).Floor().IntPart()
}

// ToWei converts an ETH amount to wei, truncating below 1 wei.
func ToWei(eth decimal.Decimal) *big.Int {
	return eth.Shift(18).BigInt()
}

func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}
