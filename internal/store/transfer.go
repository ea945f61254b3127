package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mams-ops/apiserver/types"
)

// TransferRepository handles persistence for inter-base transfer records.
type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// List returns every transfer record, newest first.
func (r *TransferRepository) List(ctx context.Context) ([]types.Transfer, error) {
	const query = `
		SELECT id, asset_type, quantity, from_base, to_base, transfer_date, status, requested_by, approved_by, notes, created_at
		FROM transfers
		ORDER BY seq DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []types.Transfer
	for rows.Next() {
		var t types.Transfer
		if err := rows.Scan(
			&t.ID,
			&t.AssetType,
			&t.Quantity,
			&t.FromBase,
			&t.ToBase,
			&t.TransferDate,
			&t.Status,
			&t.RequestedBy,
			&t.ApprovedBy,
			&t.Notes,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// Create inserts a transfer and assigns its TXF-NNN identifier.
func (r *TransferRepository) Create(ctx context.Context, t types.Transfer) (types.Transfer, error) {
	t.CreatedAt = time.Now()

	seq, err := nextSeq(ctx, r.db, "transfer_seq")
	if err != nil {
		return types.Transfer{}, err
	}
	t.ID = recordID("TXF", seq)

	const query = `
		INSERT INTO transfers (seq, id, asset_type, quantity, from_base, to_base, transfer_date, status, requested_by, approved_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.ExecContext(
		ctx,
		query,
		seq,
		t.ID,
		t.AssetType,
		t.Quantity,
		t.FromBase,
		t.ToBase,
		t.TransferDate,
		t.Status,
		t.RequestedBy,
		t.ApprovedBy,
		t.Notes,
		t.CreatedAt,
	)
	if err != nil {
		return types.Transfer{}, err
	}
	return t, nil
}
