package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

// FactFilter narrows financial-fact queries. Zero-value fields are ignored;
// set fields are ANDed together.
type FactFilter struct {
	ProviderID     string
	GovernorateID  string
	GovernorateIDs []string
	CityID         string
}

type FactRepo struct {
	db *sql.DB
}

func NewFactRepo(db *sql.DB) *FactRepo {
	return &FactRepo{db: db}
}

const factColumns = `provider_id, name_ar, name_en, governorate_id, city_id,
	commission_status, commission_rate, delivery_responsibility,
	total_orders, cod_orders_count, online_orders_count,
	eligible_orders_count, held_orders_count, settled_orders_count,
	gross_revenue, cod_gross_revenue, online_gross_revenue,
	total_subtotal, total_delivery_fees, cod_delivery_fees, online_delivery_fees,
	total_discounts, theoretical_commission, actual_commission, grace_period_discount,
	total_refunds, refund_commission_reduction, refund_percentage,
	cod_commission_owed, online_payout_owed, net_balance, settlement_direction,
	in_grace_period, grace_period_days_remaining, grace_period_end`

// List returns the facts matching the filter, ordered by provider name.
func (r *FactRepo) List(ctx context.Context, f FactFilter) ([]domain.FinancialFact, error) {
	where, args := buildFactWhere(f)
	query := fmt.Sprintf("SELECT %s FROM financial_facts%s ORDER BY name_en", factColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.FinancialFact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// Get returns one provider's fact row, or sql.ErrNoRows.
func (r *FactRepo) Get(ctx context.Context, providerID string) (*domain.FinancialFact, error) {
	query := fmt.Sprintf("SELECT %s FROM financial_facts WHERE provider_id = ?", factColumns)
	row := r.db.QueryRowContext(ctx, query, providerID)
	fact, err := scanFact(row)
	if err != nil {
		return nil, err
	}
	return &fact, nil
}

// PlatformAggregate rolls the whole facts table up in one query. The
// unscoped admin summary trusts this aggregate instead of re-summing rows in
// Go.
func (r *FactRepo) PlatformAggregate(ctx context.Context) (*domain.AdminFinancialSummary, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(total_orders), 0),
		COALESCE(SUM(gross_revenue), 0),
		COALESCE(SUM(total_delivery_fees), 0),
		COALESCE(SUM(theoretical_commission), 0),
		COALESCE(SUM(actual_commission), 0),
		COALESCE(SUM(grace_period_discount), 0),
		COALESCE(SUM(total_refunds), 0),
		COALESCE(SUM(cod_orders_count), 0),
		COALESCE(SUM(cod_gross_revenue), 0),
		COALESCE(SUM(cod_commission_owed), 0),
		COALESCE(SUM(online_orders_count), 0),
		COALESCE(SUM(online_gross_revenue), 0),
		COALESCE(SUM(online_payout_owed), 0),
		COALESCE(SUM(net_balance), 0),
		COALESCE(SUM(CASE WHEN settlement_direction = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN settlement_direction = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN settlement_direction = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(eligible_orders_count), 0),
		COALESCE(SUM(held_orders_count), 0),
		COALESCE(SUM(settled_orders_count), 0)
	FROM financial_facts`

	var (
		s                                       domain.AdminFinancialSummary
		revenue, deliveryFees                   sql.NullFloat64
		theoretical, actual, graceDiscount      sql.NullFloat64
		refunds, codRevenue, codOwed            sql.NullFloat64
		onlineRevenue, onlinePayout, netBalance sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query,
		string(money.DirectionPlatformPaysProvider),
		string(money.DirectionProviderPaysPlatform),
		string(money.DirectionBalanced),
	).Scan(
		&s.TotalProviders,
		&s.TotalOrders,
		&revenue,
		&deliveryFees,
		&theoretical,
		&actual,
		&graceDiscount,
		&refunds,
		&s.COD.Orders,
		&codRevenue,
		&codOwed,
		&s.Online.Orders,
		&onlineRevenue,
		&onlinePayout,
		&netBalance,
		&s.ProvidersToPay,
		&s.ProvidersToCollect,
		&s.ProvidersBalanced,
		&s.EligibleOrders,
		&s.HeldOrders,
		&s.SettledOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate facts: %w", err)
	}

	s.TotalRevenue = money.FromDatabase(revenue)
	s.TotalDeliveryFees = money.FromDatabase(deliveryFees)
	s.TotalTheoreticalCommission = money.FromDatabase(theoretical)
	s.TotalActualCommission = money.FromDatabase(actual)
	s.TotalGracePeriodDiscount = money.FromDatabase(graceDiscount)
	s.TotalRefunds = money.FromDatabase(refunds)
	s.COD.Revenue = money.FromDatabase(codRevenue)
	s.COD.CommissionOwed = money.FromDatabase(codOwed)
	s.Online.Revenue = money.FromDatabase(onlineRevenue)
	s.Online.PayoutOwed = money.FromDatabase(onlinePayout)
	s.TotalNetBalance = money.FromDatabase(netBalance)

	return &s, nil
}

// BulkInsert loads fact rows inside a single transaction. Existing rows for
// the same provider are replaced.
func (r *FactRepo) BulkInsert(ctx context.Context, facts []domain.FinancialFact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO financial_facts (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, factColumns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range facts {
		var graceEnd interface{}
		if f.GracePeriodEnd != nil {
			graceEnd = f.GracePeriodEnd.Format(time.RFC3339)
		}
		_, err := stmt.ExecContext(ctx,
			f.ProviderID, f.ProviderName.Ar, f.ProviderName.En,
			f.GovernorateID, nullString(f.CityID),
			string(f.CommissionStatus), f.CommissionRate, string(f.DeliveryResponsibility),
			f.TotalOrders, f.CODOrdersCount, f.OnlineOrdersCount,
			f.EligibleOrders, f.HeldOrders, f.SettledOrdersCount,
			f.GrossRevenue.Pounds(), f.CODGrossRevenue.Pounds(), f.OnlineGrossRevenue.Pounds(),
			f.TotalSubtotal.Pounds(), f.TotalDeliveryFees.Pounds(), f.CODDeliveryFees.Pounds(), f.OnlineDeliveryFees.Pounds(),
			f.TotalDiscounts.Pounds(), f.TheoreticalCommission.Pounds(), f.ActualCommission.Pounds(), f.GracePeriodDiscount.Pounds(),
			f.TotalRefunds.Pounds(), f.RefundCommissionReduction.Pounds(), f.RefundPercentage,
			f.CODCommissionOwed.Pounds(), f.OnlinePayoutOwed.Pounds(), f.NetBalance.Pounds(), string(f.Direction),
			boolToInt(f.InGracePeriod), f.GracePeriodDaysRemaining, graceEnd,
		)
		if err != nil {
			return fmt.Errorf("insert fact %s: %w", f.ProviderID, err)
		}
	}

	return tx.Commit()
}

// GovernorateIDs returns the distinct governorates present in the facts
// table.
func (r *FactRepo) GovernorateIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT governorate_id FROM financial_facts ORDER BY governorate_id")
	if err != nil {
		return nil, fmt.Errorf("query governorates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan governorate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of fact rows, used to decide whether to seed.
func (r *FactRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM financial_facts").Scan(&n)
	return n, err
}

func buildFactWhere(f FactFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.ProviderID != "" {
		conds = append(conds, "provider_id = ?")
		args = append(args, f.ProviderID)
	}
	if f.GovernorateID != "" {
		conds = append(conds, "governorate_id = ?")
		args = append(args, f.GovernorateID)
	}
	if len(f.GovernorateIDs) > 0 {
		conds = append(conds, "governorate_id IN ("+placeholders(len(f.GovernorateIDs))+")")
		for _, id := range f.GovernorateIDs {
			args = append(args, id)
		}
	}
	if f.CityID != "" {
		conds = append(conds, "city_id = ?")
		args = append(args, f.CityID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFact(row rowScanner) (domain.FinancialFact, error) {
	var (
		f                                       domain.FinancialFact
		cityID, graceEnd                        sql.NullString
		status, responsibility, direction       string
		grossRevenue, codRevenue, onlineRevenue sql.NullFloat64
		subtotal                                sql.NullFloat64
		deliveryFees, codFees, onlineFees       sql.NullFloat64
		discounts, theoretical, actual, grace   sql.NullFloat64
		refunds, refundReduction                sql.NullFloat64
		codOwed, onlinePayout, netBalance       sql.NullFloat64
		inGrace                                 int
	)

	err := row.Scan(
		&f.ProviderID, &f.ProviderName.Ar, &f.ProviderName.En,
		&f.GovernorateID, &cityID,
		&status, &f.CommissionRate, &responsibility,
		&f.TotalOrders, &f.CODOrdersCount, &f.OnlineOrdersCount,
		&f.EligibleOrders, &f.HeldOrders, &f.SettledOrdersCount,
		&grossRevenue, &codRevenue, &onlineRevenue,
		&subtotal, &deliveryFees, &codFees, &onlineFees,
		&discounts, &theoretical, &actual, &grace,
		&refunds, &refundReduction, &f.RefundPercentage,
		&codOwed, &onlinePayout, &netBalance, &direction,
		&inGrace, &f.GracePeriodDaysRemaining, &graceEnd,
	)
	if err != nil {
		return f, err
	}

	f.CityID = cityID.String
	f.CommissionStatus = domain.CommissionStatus(status)
	f.DeliveryResponsibility = domain.DeliveryResponsibility(responsibility)
	f.GrossRevenue = money.FromDatabase(grossRevenue)
	f.CODGrossRevenue = money.FromDatabase(codRevenue)
	f.OnlineGrossRevenue = money.FromDatabase(onlineRevenue)
	f.TotalSubtotal = money.FromDatabase(subtotal)
	f.TotalDeliveryFees = money.FromDatabase(deliveryFees)
	f.CODDeliveryFees = money.FromDatabase(codFees)
	f.OnlineDeliveryFees = money.FromDatabase(onlineFees)
	f.TotalDiscounts = money.FromDatabase(discounts)
	f.TheoreticalCommission = money.FromDatabase(theoretical)
	f.ActualCommission = money.FromDatabase(actual)
	f.GracePeriodDiscount = money.FromDatabase(grace)
	f.TotalRefunds = money.FromDatabase(refunds)
	f.RefundCommissionReduction = money.FromDatabase(refundReduction)
	f.CODCommissionOwed = money.FromDatabase(codOwed)
	f.OnlinePayoutOwed = money.FromDatabase(onlinePayout)
	f.NetBalance = money.FromDatabase(netBalance)
	f.Direction = money.Direction(direction)
	f.InGracePeriod = inGrace != 0
	if graceEnd.Valid {
		if t, err := time.Parse(time.RFC3339, graceEnd.String); err == nil {
			f.GracePeriodEnd = &t
		}
	}

	return f, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
