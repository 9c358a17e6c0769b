package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// ListBySettlement returns a settlement's audit trail, newest first.
func (r *AuditRepo) ListBySettlement(ctx context.Context, settlementID string) ([]domain.SettlementAuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			id, settlement_id, action, actor_id, actor_name, actor_role,
			amount, payment_method, payment_reference, reason, notes, performed_at
		FROM settlement_audit_log WHERE settlement_id = ? ORDER BY performed_at DESC, rowid DESC`,
		settlementID)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.SettlementAuditEntry
	for rows.Next() {
		var (
			e                               domain.SettlementAuditEntry
			action, performedAt             string
			actorID, actorName, actorRole   sql.NullString
			amount                          sql.NullFloat64
			method, reference, reason, note sql.NullString
		)
		err := rows.Scan(&e.ID, &e.SettlementID, &action,
			&actorID, &actorName, &actorRole,
			&amount, &method, &reference, &reason, &note, &performedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = domain.AuditAction(action)
		e.ActorID = actorID.String
		e.ActorName = actorName.String
		e.ActorRole = actorRole.String
		e.Amount = money.FromDatabase(amount)
		e.PaymentMethod = method.String
		e.PaymentReference = reference.String
		e.Reason = reason.String
		e.Notes = note.String
		e.PerformedAt, _ = time.Parse(time.RFC3339, performedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert appends one audit entry. An empty id is replaced with a fresh uuid.
func (r *AuditRepo) Insert(ctx context.Context, e domain.SettlementAuditEntry) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	performedAt := e.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO settlement_audit_log
			(id, settlement_id, action, actor_id, actor_name, actor_role,
			 amount, payment_method, payment_reference, reason, notes, performed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.SettlementID, string(e.Action),
		nullString(e.ActorID), nullString(e.ActorName), nullString(e.ActorRole),
		e.Amount.Pounds(), nullString(e.PaymentMethod), nullString(e.PaymentReference),
		nullString(e.Reason), nullString(e.Notes), performedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
