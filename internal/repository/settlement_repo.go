package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

var (
	ErrSettlementNotFound  = errors.New("settlement not found")
	ErrSettlementFinalized = errors.New("settlement no longer accepts payments")
	ErrInvalidPayment      = errors.New("payment amount must be positive")
)

// SettlementFilter narrows settlement queries. Zero-value fields are
// ignored; set fields are ANDed together.
type SettlementFilter struct {
	ProviderID  string
	ProviderIDs []string
	Status      []domain.SettlementStatus
	Direction   []money.Direction
	From        *time.Time
	To          *time.Time
}

type SettlementRepo struct {
	db *sql.DB
}

func NewSettlementRepo(db *sql.DB) *SettlementRepo {
	return &SettlementRepo{db: db}
}

const settlementColumns = `id, provider_id, provider_name_ar, provider_name_en,
	period_start, period_end,
	total_orders, gross_revenue, platform_commission, delivery_fees_collected, net_amount_due,
	cod_orders_count, cod_gross_revenue, cod_commission_owed,
	online_orders_count, online_gross_revenue, online_platform_commission, online_payout_owed,
	net_balance, settlement_direction,
	status, amount_paid, payment_date, payment_method, payment_reference,
	due_date, is_overdue, overdue_days,
	notes, admin_notes, created_by, processed_by, created_at, updated_at`

// List returns settlements matching the filter, newest first.
func (r *SettlementRepo) List(ctx context.Context, f SettlementFilter) ([]domain.Settlement, error) {
	where, args := buildSettlementWhere(f)
	query := fmt.Sprintf("SELECT %s FROM settlements%s ORDER BY created_at DESC", settlementColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// GetByID returns one settlement, or ErrSettlementNotFound.
func (r *SettlementRepo) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	query := fmt.Sprintf("SELECT %s FROM settlements WHERE id = ?", settlementColumns)
	s, err := scanSettlement(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordPayment applies a payment to a settlement inside one transaction:
// it accumulates amount_paid, moves the status forward, and appends an audit
// row. Settlements in a terminal status (paid, disputed, waived) are
// rejected.
func (r *SettlementRepo) RecordPayment(ctx context.Context, p domain.SettlementPayment) error {
	if !p.Amount.IsPositive() {
		return ErrInvalidPayment
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		status                   string
		amountPaid, netAmountDue sql.NullFloat64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT status, amount_paid, net_amount_due FROM settlements WHERE id = ?",
		p.SettlementID,
	).Scan(&status, &amountPaid, &netAmountDue)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSettlementNotFound
	}
	if err != nil {
		return fmt.Errorf("read settlement: %w", err)
	}

	current := domain.Settlement{Status: domain.SettlementStatus(status)}
	if current.IsTerminal() {
		return fmt.Errorf("%w: status %s", ErrSettlementFinalized, status)
	}

	newPaid := money.FromDatabase(amountPaid).Add(p.Amount)
	due := money.FromDatabase(netAmountDue)

	newStatus := domain.SettlementPartiallyPaid
	action := domain.AuditRecordPartialPayment
	if newPaid.GreaterThanOrEqual(due) {
		newStatus = domain.SettlementPaid
		action = domain.AuditRecordPayment
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `UPDATE settlements SET
			status = ?, amount_paid = ?, payment_date = ?, payment_method = ?,
			payment_reference = ?, processed_by = ?, updated_at = ?
		WHERE id = ?`,
		string(newStatus), newPaid.Pounds(), now.Format(time.RFC3339),
		string(p.PaymentMethod), nullString(p.PaymentReference),
		nullString(p.ProcessedBy), now.Format(time.RFC3339),
		p.SettlementID,
	)
	if err != nil {
		return fmt.Errorf("update settlement: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO settlement_audit_log
			(id, settlement_id, action, actor_id, amount, payment_method,
			 payment_reference, notes, performed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), p.SettlementID, string(action),
		nullString(p.ProcessedBy), p.Amount.Pounds(),
		string(p.PaymentMethod), nullString(p.PaymentReference),
		nullString(p.Notes), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return tx.Commit()
}

// BulkInsert loads settlement rows inside a single transaction.
func (r *SettlementRepo) BulkInsert(ctx context.Context, settlements []domain.Settlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO settlements (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, settlementColumns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range settlements {
		var paymentDate interface{}
		if s.PaymentDate != nil {
			paymentDate = s.PaymentDate.Format(time.RFC3339)
		}
		_, err := stmt.ExecContext(ctx,
			s.ID, s.ProviderID, s.ProviderName.Ar, s.ProviderName.En,
			s.PeriodStart.Format(time.RFC3339), s.PeriodEnd.Format(time.RFC3339),
			s.TotalOrders, s.GrossRevenue.Pounds(), s.PlatformCommission.Pounds(),
			s.DeliveryFeesCollected.Pounds(), s.NetAmountDue.Pounds(),
			s.COD.OrdersCount, s.COD.GrossRevenue.Pounds(), s.COD.CommissionOwed.Pounds(),
			s.Online.OrdersCount, s.Online.GrossRevenue.Pounds(),
			s.Online.PlatformCommission.Pounds(), s.Online.PayoutOwed.Pounds(),
			s.NetBalance.Pounds(), string(s.Direction),
			string(s.Status), s.AmountPaid.Pounds(), paymentDate,
			nullString(s.PaymentMethod), nullString(s.PaymentReference),
			s.DueDate.Format(time.RFC3339), boolToInt(s.IsOverdue), s.OverdueDays,
			nullString(s.Notes), nullString(s.AdminNotes),
			nullString(s.CreatedBy), nullString(s.ProcessedBy),
			s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert settlement %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of settlement rows, used to decide whether to
// seed.
func (r *SettlementRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settlements").Scan(&n)
	return n, err
}

func buildSettlementWhere(f SettlementFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.ProviderID != "" {
		conds = append(conds, "provider_id = ?")
		args = append(args, f.ProviderID)
	}
	if len(f.ProviderIDs) > 0 {
		conds = append(conds, "provider_id IN ("+placeholders(len(f.ProviderIDs))+")")
		for _, id := range f.ProviderIDs {
			args = append(args, id)
		}
	}
	if len(f.Status) > 0 {
		conds = append(conds, "status IN ("+placeholders(len(f.Status))+")")
		for _, s := range f.Status {
			args = append(args, string(s))
		}
	}
	if len(f.Direction) > 0 {
		conds = append(conds, "settlement_direction IN ("+placeholders(len(f.Direction))+")")
		for _, d := range f.Direction {
			args = append(args, string(d))
		}
	}
	if f.From != nil {
		conds = append(conds, "period_start >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		conds = append(conds, "period_end <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanSettlement(row rowScanner) (domain.Settlement, error) {
	var (
		s                                      domain.Settlement
		periodStart, periodEnd, dueDate        string
		createdAt, updatedAt                   string
		paymentDate                            sql.NullString
		paymentMethod, paymentReference        sql.NullString
		notes, adminNotes                      sql.NullString
		createdBy, processedBy                 sql.NullString
		status, direction                      string
		grossRevenue, commission, deliveryFees sql.NullFloat64
		netDue, codRevenue, codOwed            sql.NullFloat64
		onlineRevenue, onlineCommission        sql.NullFloat64
		onlinePayout, netBalance, amountPaid   sql.NullFloat64
		isOverdue                              int
	)

	err := row.Scan(
		&s.ID, &s.ProviderID, &s.ProviderName.Ar, &s.ProviderName.En,
		&periodStart, &periodEnd,
		&s.TotalOrders, &grossRevenue, &commission, &deliveryFees, &netDue,
		&s.COD.OrdersCount, &codRevenue, &codOwed,
		&s.Online.OrdersCount, &onlineRevenue, &onlineCommission, &onlinePayout,
		&netBalance, &direction,
		&status, &amountPaid, &paymentDate, &paymentMethod, &paymentReference,
		&dueDate, &isOverdue, &s.OverdueDays,
		&notes, &adminNotes, &createdBy, &processedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return s, err
	}

	s.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
	s.PeriodEnd, _ = time.Parse(time.RFC3339, periodEnd)
	s.DueDate, _ = time.Parse(time.RFC3339, dueDate)
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if paymentDate.Valid {
		if t, err := time.Parse(time.RFC3339, paymentDate.String); err == nil {
			s.PaymentDate = &t
		}
	}

	s.GrossRevenue = money.FromDatabase(grossRevenue)
	s.PlatformCommission = money.FromDatabase(commission)
	s.DeliveryFeesCollected = money.FromDatabase(deliveryFees)
	s.NetAmountDue = money.FromDatabase(netDue)
	s.COD.GrossRevenue = money.FromDatabase(codRevenue)
	s.COD.CommissionOwed = money.FromDatabase(codOwed)
	s.Online.GrossRevenue = money.FromDatabase(onlineRevenue)
	s.Online.PlatformCommission = money.FromDatabase(onlineCommission)
	s.Online.PayoutOwed = money.FromDatabase(onlinePayout)
	s.NetBalance = money.FromDatabase(netBalance)
	s.AmountPaid = money.FromDatabase(amountPaid)
	s.Direction = money.Direction(direction)
	s.Status = domain.SettlementStatus(status)
	s.PaymentMethod = paymentMethod.String
	s.PaymentReference = paymentReference.String
	s.IsOverdue = isOverdue != 0
	s.Notes = notes.String
	s.AdminNotes = adminNotes.String
	s.CreatedBy = createdBy.String
	s.ProcessedBy = processedBy.String

	return s, nil
}
