package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/engezna/settlement-engine/internal/domain"
)

type ProviderRepo struct {
	db *sql.DB
}

func NewProviderRepo(db *sql.DB) *ProviderRepo {
	return &ProviderRepo{db: db}
}

// IDsInGovernorates returns the ids of providers assigned to any of the
// given governorates.
func (r *ProviderRepo) IDsInGovernorates(ctx context.Context, governorateIDs []string) ([]string, error) {
	if len(governorateIDs) == 0 {
		return nil, nil
	}

	query := "SELECT id FROM providers WHERE governorate_id IN (" + placeholders(len(governorateIDs)) + ")"
	args := make([]interface{}, len(governorateIDs))
	for i, id := range governorateIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query provider ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan provider id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BulkInsert loads provider rows inside a single transaction.
func (r *ProviderRepo) BulkInsert(ctx context.Context, providers []domain.Provider) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO providers
		(id, name_ar, name_en, governorate_id, city_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range providers {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name.Ar, p.Name.En, p.GovernorateID, nullString(p.CityID)); err != nil {
			return fmt.Errorf("insert provider %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}
