package domain

import (
	"time"

	"github.com/engezna/settlement-engine/internal/money"
)

type AuditAction string

const (
	AuditCreate               AuditAction = "create"
	AuditUpdateStatus         AuditAction = "update_status"
	AuditRecordPayment        AuditAction = "record_payment"
	AuditRecordPartialPayment AuditAction = "record_partial_payment"
	AuditVoidPayment          AuditAction = "void_payment"
	AuditDisputeOpened        AuditAction = "dispute_opened"
	AuditDisputeResolved      AuditAction = "dispute_resolved"
	AuditWaive                AuditAction = "waive"
)

// SettlementAuditEntry is one append-only row in a settlement's audit trail.
// The engine writes payment entries and reads the trail back; every other
// action type is written by external settlement mutations.
type SettlementAuditEntry struct {
	ID           string      `json:"id"`
	SettlementID string      `json:"settlement_id"`
	Action       AuditAction `json:"action"`

	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`

	Amount           money.Money `json:"amount"`
	PaymentMethod    string      `json:"payment_method,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`

	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`

	PerformedAt time.Time `json:"performed_at"`
}
