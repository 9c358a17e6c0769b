package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (creating if needed) the SQLite database and ensures the
// schema exists.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS providers (
			id TEXT PRIMARY KEY,
			name_ar TEXT NOT NULL,
			name_en TEXT NOT NULL,
			governorate_id TEXT NOT NULL,
			city_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_providers_governorate ON providers(governorate_id)`,

		`CREATE TABLE IF NOT EXISTS financial_facts (
			provider_id TEXT PRIMARY KEY,
			name_ar TEXT NOT NULL,
			name_en TEXT NOT NULL,
			governorate_id TEXT NOT NULL,
			city_id TEXT,
			commission_status TEXT NOT NULL,
			commission_rate REAL NOT NULL,
			delivery_responsibility TEXT NOT NULL,
			total_orders INTEGER NOT NULL,
			cod_orders_count INTEGER NOT NULL,
			online_orders_count INTEGER NOT NULL,
			eligible_orders_count INTEGER NOT NULL,
			held_orders_count INTEGER NOT NULL,
			settled_orders_count INTEGER NOT NULL,
			gross_revenue REAL,
			cod_gross_revenue REAL,
			online_gross_revenue REAL,
			total_subtotal REAL,
			total_delivery_fees REAL,
			cod_delivery_fees REAL,
			online_delivery_fees REAL,
			total_discounts REAL,
			theoretical_commission REAL,
			actual_commission REAL,
			grace_period_discount REAL,
			total_refunds REAL,
			refund_commission_reduction REAL,
			refund_percentage REAL NOT NULL DEFAULT 0,
			cod_commission_owed REAL,
			online_payout_owed REAL,
			net_balance REAL,
			settlement_direction TEXT NOT NULL,
			in_grace_period INTEGER NOT NULL DEFAULT 0,
			grace_period_days_remaining INTEGER NOT NULL DEFAULT 0,
			grace_period_end TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_governorate ON financial_facts(governorate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_city ON financial_facts(city_id)`,

		`CREATE TABLE IF NOT EXISTS settlements (
			id TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL,
			provider_name_ar TEXT NOT NULL,
			provider_name_en TEXT NOT NULL,
			period_start TEXT NOT NULL,
			period_end TEXT NOT NULL,
			total_orders INTEGER NOT NULL,
			gross_revenue REAL,
			platform_commission REAL,
			delivery_fees_collected REAL,
			net_amount_due REAL,
			cod_orders_count INTEGER NOT NULL,
			cod_gross_revenue REAL,
			cod_commission_owed REAL,
			online_orders_count INTEGER NOT NULL,
			online_gross_revenue REAL,
			online_platform_commission REAL,
			online_payout_owed REAL,
			net_balance REAL,
			settlement_direction TEXT NOT NULL,
			status TEXT NOT NULL,
			amount_paid REAL NOT NULL DEFAULT 0,
			payment_date TEXT,
			payment_method TEXT,
			payment_reference TEXT,
			due_date TEXT NOT NULL,
			is_overdue INTEGER NOT NULL DEFAULT 0,
			overdue_days INTEGER NOT NULL DEFAULT 0,
			notes TEXT,
			admin_notes TEXT,
			created_by TEXT,
			processed_by TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_provider ON settlements(provider_id)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_status ON settlements(status)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_created ON settlements(created_at)`,

		`CREATE TABLE IF NOT EXISTS settlement_audit_log (
			id TEXT PRIMARY KEY,
			settlement_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT,
			actor_name TEXT,
			actor_role TEXT,
			amount REAL NOT NULL DEFAULT 0,
			payment_method TEXT,
			payment_reference TEXT,
			reason TEXT,
			notes TEXT,
			performed_at TEXT NOT NULL,
			FOREIGN KEY (settlement_id) REFERENCES settlements(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_settlement ON settlement_audit_log(settlement_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return nil
}
