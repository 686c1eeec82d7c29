package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleYearly
}

// Plan is a subscription tier. Prices are in ETH.
type Plan struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	MonthlyPrice       decimal.Decimal `json:"monthlyPrice"`
	YearlyPrice        decimal.Decimal `json:"yearlyPrice"`
	Features           []string        `json:"features"`
	Limitations        []string        `json:"limitations"`
	SavedAnalysesLimit int             `json:"savedAnalysesLimit"` // -1 means unlimited
	Popular            bool            `json:"popular"`
}

// Price returns the plan's price for a billing cycle.
func (p Plan) Price(cycle BillingCycle) decimal.Decimal {
	if cycle == CycleYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

func (p Plan) IsFree() bool {
	return p.MonthlyPrice.IsZero() && p.YearlyPrice.IsZero()
}

// Subscription records a confirmed on-chain payment for a plan.
type Subscription struct {
	ID            string       `bson:"id" json:"id"`
	UserID        string       `bson:"user_id" json:"userId"`
	PlanID        string       `bson:"plan_id" json:"planId"`
	Cycle         BillingCycle `bson:"cycle" json:"cycle"`
	TxHash        string       `bson:"tx_hash" json:"txHash"`
	WalletAddress string       `bson:"wallet_address" json:"walletAddress"`
	AmountWei     string       `bson:"amount_wei" json:"amountWei"`
	StartsAt      time.Time    `bson:"starts_at" json:"startsAt"`
	ExpiresAt     time.Time    `bson:"expires_at" json:"expiresAt"`
}

// PaymentConfirmation is submitted once the wallet reports the transaction hash.
type PaymentConfirmation struct {
	PlanID        string       `json:"planId" binding:"required"`
	Cycle         BillingCycle `json:"cycle"`
	TxHash        string       `json:"txHash" binding:"required"`
	WalletAddress string       `json:"walletAddress"`
}
