package domain

import (
	"time"

	"github.com/engezna/settlement-engine/internal/money"
)

// OrderCounts breaks a provider's orders down by payment method and
// settlement eligibility.
type OrderCounts struct {
	Total    int `json:"total"`
	COD      int `json:"cod"`
	Online   int `json:"online"`
	Eligible int `json:"eligible"`
	OnHold   int `json:"on_hold"`
	Settled  int `json:"settled"`
}

type RevenueBreakdown struct {
	Gross  money.Money `json:"gross"`
	COD    money.Money `json:"cod"`
	Online money.Money `json:"online"`
}

type CommissionBreakdown struct {
	Theoretical         money.Money `json:"theoretical"`
	Actual              money.Money `json:"actual"`
	GracePeriodDiscount money.Money `json:"grace_period_discount"`
	Rate                float64     `json:"rate"`
}

type DeliveryFeeBreakdown struct {
	Total  money.Money `json:"total"`
	COD    money.Money `json:"cod"`
	Online money.Money `json:"online"`
}

type RefundBreakdown struct {
	Total               money.Money `json:"total"`
	CommissionReduction money.Money `json:"commission_reduction"`
	Percentage          float64     `json:"percentage"`
}

type SettlementFigures struct {
	CODCommissionOwed money.Money     `json:"cod_commission_owed"`
	OnlinePayoutOwed  money.Money     `json:"online_payout_owed"`
	NetBalance        money.Money     `json:"net_balance"`
	Direction         money.Direction `json:"direction"`
}

type GracePeriodInfo struct {
	IsActive      bool       `json:"is_active"`
	DaysRemaining int        `json:"days_remaining"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// ProviderFinancialSummary is the provider-dashboard view of one provider's
// financial period: counts, revenue, commission, refunds and the resulting
// settlement position.
type ProviderFinancialSummary struct {
	ProviderID   string        `json:"provider_id"`
	ProviderName BilingualName `json:"provider_name"`

	Orders       OrderCounts          `json:"orders"`
	Revenue      RevenueBreakdown     `json:"revenue"`
	Commission   CommissionBreakdown  `json:"commission"`
	DeliveryFees DeliveryFeeBreakdown `json:"delivery_fees"`
	Refunds      RefundBreakdown      `json:"refunds"`
	Settlement   SettlementFigures    `json:"settlement"`
	GracePeriod  GracePeriodInfo      `json:"grace_period"`
}

// CODTotals and OnlineTotals are the payment-method slices of an admin or
// regional rollup.
type CODTotals struct {
	Orders         int         `json:"orders"`
	Revenue        money.Money `json:"revenue"`
	CommissionOwed money.Money `json:"commission_owed"`
}

type OnlineTotals struct {
	Orders     int         `json:"orders"`
	Revenue    money.Money `json:"revenue"`
	PayoutOwed money.Money `json:"payout_owed"`
}

// AdminFinancialSummary is the platform-wide (or region-scoped) rollup shown
// on the admin finance dashboard.
type AdminFinancialSummary struct {
	TotalProviders int `json:"total_providers"`
	TotalOrders    int `json:"total_orders"`

	TotalRevenue      money.Money `json:"total_revenue"`
	TotalDeliveryFees money.Money `json:"total_delivery_fees"`

	TotalTheoreticalCommission money.Money `json:"total_theoretical_commission"`
	TotalActualCommission      money.Money `json:"total_actual_commission"`
	TotalGracePeriodDiscount   money.Money `json:"total_grace_period_discount"`

	TotalRefunds money.Money `json:"total_refunds"`

	COD    CODTotals    `json:"cod"`
	Online OnlineTotals `json:"online"`

	TotalNetBalance    money.Money `json:"total_net_balance"`
	ProvidersToPay     int         `json:"providers_to_pay"`
	ProvidersToCollect int         `json:"providers_to_collect"`
	ProvidersBalanced  int         `json:"providers_balanced"`

	EligibleOrders int `json:"eligible_orders"`
	HeldOrders     int `json:"held_orders"`
	SettledOrders  int `json:"settled_orders"`
}

// RegionalFinancialSummary is the same rollup scoped to one governorate.
type RegionalFinancialSummary struct {
	GovernorateID   string        `json:"governorate_id"`
	GovernorateName BilingualName `json:"governorate_name"`

	ProvidersCount int `json:"providers_count"`
	TotalOrders    int `json:"total_orders"`
	CODOrders      int `json:"cod_orders"`
	OnlineOrders   int `json:"online_orders"`

	GrossRevenue    money.Money `json:"gross_revenue"`
	TotalCommission money.Money `json:"total_commission"`
	NetBalance      money.Money `json:"net_balance"`

	ProvidersToPay     int `json:"providers_to_pay"`
	ProvidersToCollect int `json:"providers_to_collect"`
}
