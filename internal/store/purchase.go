package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mams-ops/apiserver/types"
)

// PurchaseRepository handles persistence for purchase records.
// Records are append-only from the API surface; identifiers come from a
// dedicated sequence so they stay monotonic regardless of row count.
type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// List returns every purchase record, newest first.
func (r *PurchaseRepository) List(ctx context.Context) ([]types.Purchase, error) {
	const query = `
		SELECT id, asset_type, quantity, purchase_date, supplier, base, unit_cost, total_cost, status, requested_by, created_at
		FROM purchases
		ORDER BY seq DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []types.Purchase
	for rows.Next() {
		var p types.Purchase
		if err := rows.Scan(
			&p.ID,
			&p.AssetType,
			&p.Quantity,
			&p.PurchaseDate,
			&p.Supplier,
			&p.Base,
			&p.UnitCost,
			&p.TotalCost,
			&p.Status,
			&p.RequestedBy,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Create inserts a purchase and assigns its PUR-NNN identifier.
func (r *PurchaseRepository) Create(ctx context.Context, p types.Purchase) (types.Purchase, error) {
	p.CreatedAt = time.Now()

	seq, err := nextSeq(ctx, r.db, "purchase_seq")
	if err != nil {
		return types.Purchase{}, err
	}
	p.ID = recordID("PUR", seq)

	const query = `
		INSERT INTO purchases (seq, id, asset_type, quantity, purchase_date, supplier, base, unit_cost, total_cost, status, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.ExecContext(
		ctx,
		query,
		seq,
		p.ID,
		p.AssetType,
		p.Quantity,
		p.PurchaseDate,
		p.Supplier,
		p.Base,
		p.UnitCost,
		p.TotalCost,
		p.Status,
		p.RequestedBy,
		p.CreatedAt,
	)
	if err != nil {
		return types.Purchase{}, err
	}
	return p, nil
}
