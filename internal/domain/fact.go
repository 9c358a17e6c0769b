package domain

import (
	"time"

	"github.com/engezna/settlement-engine/internal/money"
)

type CommissionStatus string

const (
	CommissionInGracePeriod CommissionStatus = "in_grace_period"
	CommissionActive        CommissionStatus = "active"
	CommissionExempt        CommissionStatus = "exempt"
)

type DeliveryResponsibility string

const (
	MerchantDelivery DeliveryResponsibility = "merchant_delivery"
	PlatformDelivery DeliveryResponsibility = "platform_delivery"
)

// BilingualName is a display name carried in both platform languages.
type BilingualName struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Get returns the name for a locale, falling back to the other language.
func (n BilingualName) Get(locale money.Locale) string {
	if locale == money.LocaleArabic {
		if n.Ar != "" {
			return n.Ar
		}
		return n.En
	}
	if n.En != "" {
		return n.En
	}
	return n.Ar
}

// FinancialFact is one provider's row from the upstream settlement-engine
// view: every per-order financial figure already aggregated over the period.
// The engine only reads these rows; they are produced by the upstream order
// pipeline. Monetary columns are nullable decimals upstream and are hydrated
// into Money at the scan boundary, so zero and NULL are indistinguishable
// past this type.
type FinancialFact struct {
	ProviderID             string                 `json:"provider_id"`
	ProviderName           BilingualName          `json:"provider_name"`
	GovernorateID          string                 `json:"governorate_id"`
	CityID                 string                 `json:"city_id,omitempty"`
	CommissionStatus       CommissionStatus       `json:"commission_status"`
	CommissionRate         float64                `json:"commission_rate"`
	DeliveryResponsibility DeliveryResponsibility `json:"delivery_responsibility"`

	// Order counts.
	TotalOrders        int `json:"total_orders"`
	CODOrdersCount     int `json:"cod_orders_count"`
	OnlineOrdersCount  int `json:"online_orders_count"`
	EligibleOrders     int `json:"eligible_orders_count"`
	HeldOrders         int `json:"held_orders_count"`
	SettledOrdersCount int `json:"settled_orders_count"`

	// Revenue.
	GrossRevenue       money.Money `json:"gross_revenue"`
	CODGrossRevenue    money.Money `json:"cod_gross_revenue"`
	OnlineGrossRevenue money.Money `json:"online_gross_revenue"`

	// Subtotals (without delivery).
	TotalSubtotal money.Money `json:"total_subtotal"`

	// Delivery fees.
	TotalDeliveryFees  money.Money `json:"total_delivery_fees"`
	CODDeliveryFees    money.Money `json:"cod_delivery_fees"`
	OnlineDeliveryFees money.Money `json:"online_delivery_fees"`

	// Discounts.
	TotalDiscounts money.Money `json:"total_discounts"`

	// Commission: theoretical ignores the grace period, actual respects it.
	TheoreticalCommission money.Money `json:"theoretical_commission"`
	ActualCommission      money.Money `json:"actual_commission"`
	GracePeriodDiscount   money.Money `json:"total_grace_period_discount"`

	// Refunds.
	TotalRefunds              money.Money `json:"total_refunds"`
	RefundCommissionReduction money.Money `json:"total_refund_commission_reduction"`
	RefundPercentage          float64     `json:"refund_percentage"`

	// Settlement figures.
	CODCommissionOwed money.Money     `json:"cod_commission_owed"`
	OnlinePayoutOwed  money.Money     `json:"online_payout_owed"`
	NetBalance        money.Money     `json:"net_balance"`
	Direction         money.Direction `json:"settlement_direction"`

	// Grace period state.
	InGracePeriod            bool       `json:"is_in_grace_period"`
	GracePeriodDaysRemaining int        `json:"grace_period_days_remaining"`
	GracePeriodEnd           *time.Time `json:"grace_period_end,omitempty"`
}
