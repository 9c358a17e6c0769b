package domain

import (
	"time"

	"github.com/engezna/settlement-engine/internal/money"
)

type SettlementStatus string

const (
	SettlementPending       SettlementStatus = "pending"
	SettlementPartiallyPaid SettlementStatus = "partially_paid"
	SettlementPaid          SettlementStatus = "paid"
	SettlementOverdue       SettlementStatus = "overdue"
	SettlementDisputed      SettlementStatus = "disputed"
	SettlementWaived        SettlementStatus = "waived"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentWallet       PaymentMethod = "wallet"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// SettlementCOD and SettlementOnline carry the per-payment-method breakdown
// frozen into a settlement row when it was generated.
type SettlementCOD struct {
	OrdersCount    int         `json:"orders_count"`
	GrossRevenue   money.Money `json:"gross_revenue"`
	CommissionOwed money.Money `json:"commission_owed"`
}

type SettlementOnline struct {
	OrdersCount        int         `json:"orders_count"`
	GrossRevenue       money.Money `json:"gross_revenue"`
	PlatformCommission money.Money `json:"platform_commission"`
	PayoutOwed         money.Money `json:"payout_owed"`
}

// Settlement is one provider's settlement record for one period. Rows are
// generated by an upstream process and are historical snapshots: the engine
// never recomputes their figures, only records payments against them.
type Settlement struct {
	ID           string        `json:"id"`
	ProviderID   string        `json:"provider_id"`
	ProviderName BilingualName `json:"provider_name"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	TotalOrders           int         `json:"total_orders"`
	GrossRevenue          money.Money `json:"gross_revenue"`
	PlatformCommission    money.Money `json:"platform_commission"`
	DeliveryFeesCollected money.Money `json:"delivery_fees_collected"`
	NetAmountDue          money.Money `json:"net_amount_due"`

	COD    SettlementCOD    `json:"cod"`
	Online SettlementOnline `json:"online"`

	NetBalance money.Money     `json:"net_balance"`
	Direction  money.Direction `json:"settlement_direction"`

	Status           SettlementStatus `json:"status"`
	AmountPaid       money.Money      `json:"amount_paid"`
	PaymentDate      *time.Time       `json:"payment_date,omitempty"`
	PaymentMethod    string           `json:"payment_method,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`

	DueDate     time.Time `json:"due_date"`
	IsOverdue   bool      `json:"is_overdue"`
	OverdueDays int       `json:"overdue_days"`

	Notes      string `json:"notes,omitempty"`
	AdminNotes string `json:"admin_notes,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
	ProcessedBy string    `json:"processed_by,omitempty"`
}

// IsPaid reports whether the settlement has been fully paid.
func (s *Settlement) IsPaid() bool {
	return s.Status == SettlementPaid
}

// IsTerminal reports whether the settlement can no longer accept payments.
func (s *Settlement) IsTerminal() bool {
	return s.Status == SettlementPaid ||
		s.Status == SettlementDisputed ||
		s.Status == SettlementWaived
}

// NeedsPayment reports whether a direction implies money should move at all.
func NeedsPayment(d money.Direction) bool {
	return d != money.DirectionBalanced
}

// SettlementPayment is a payment applied against a settlement.
type SettlementPayment struct {
	SettlementID     string        `json:"settlement_id"`
	Amount           money.Money   `json:"amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	ProcessedBy      string        `json:"processed_by,omitempty"`
	Notes            string        `json:"notes,omitempty"`
}
