package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mams-ops/apiserver/types"
)

// AssignmentRepository handles persistence for asset assignment records.
type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns every assignment record, newest first.
func (r *AssignmentRepository) List(ctx context.Context) ([]types.Assignment, error) {
	const query = `
		SELECT id, asset_type, quantity, assigned_to, assigned_by, assignment_date, base, purpose, status, created_at
		FROM assignments
		ORDER BY seq DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []types.Assignment
	for rows.Next() {
		var a types.Assignment
		if err := rows.Scan(
			&a.ID,
			&a.AssetType,
			&a.Quantity,
			&a.AssignedTo,
			&a.AssignedBy,
			&a.AssignmentDate,
			&a.Base,
			&a.Purpose,
			&a.Status,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create inserts an assignment and assigns its ASG-NNN identifier.
func (r *AssignmentRepository) Create(ctx context.Context, a types.Assignment) (types.Assignment, error) {
	a.CreatedAt = time.Now()

	seq, err := nextSeq(ctx, r.db, "assignment_seq")
	if err != nil {
		return types.Assignment{}, err
	}
	a.ID = recordID("ASG", seq)

	const query = `
		INSERT INTO assignments (seq, id, asset_type, quantity, assigned_to, assigned_by, assignment_date, base, purpose, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(
		ctx,
		query,
		seq,
		a.ID,
		a.AssetType,
		a.Quantity,
		a.AssignedTo,
		a.AssignedBy,
		a.AssignmentDate,
		a.Base,
		a.Purpose,
		a.Status,
		a.CreatedAt,
	)
	if err != nil {
		return types.Assignment{}, err
	}
	return a, nil
}

// ExpenditureRepository handles persistence for expenditure records.
type ExpenditureRepository struct {
	db *sql.DB
}

func NewExpenditureRepository(db *sql.DB) *ExpenditureRepository {
	return &ExpenditureRepository{db: db}
}

// List returns every expenditure record, newest first.
func (r *ExpenditureRepository) List(ctx context.Context) ([]types.Expenditure, error) {
	const query = `
		SELECT id, asset_type, quantity, expended_by, expenditure_date, base, purpose, justification, created_at
		FROM expenditures
		ORDER BY seq DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenditures []types.Expenditure
	for rows.Next() {
		var e types.Expenditure
		if err := rows.Scan(
			&e.ID,
			&e.AssetType,
			&e.Quantity,
			&e.ExpendedBy,
			&e.ExpenditureDate,
			&e.Base,
			&e.Purpose,
			&e.Justification,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		expenditures = append(expenditures, e)
	}
	return expenditures, rows.Err()
}

// Create inserts an expenditure and assigns its EXP-NNN identifier.
func (r *ExpenditureRepository) Create(ctx context.Context, e types.Expenditure) (types.Expenditure, error) {
	e.CreatedAt = time.Now()

	seq, err := nextSeq(ctx, r.db, "expenditure_seq")
	if err != nil {
		return types.Expenditure{}, err
	}
	e.ID = recordID("EXP", seq)

	const query = `
		INSERT INTO expenditures (seq, id, asset_type, quantity, expended_by, expenditure_date, base, purpose, justification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(
		ctx,
		query,
		seq,
		e.ID,
		e.AssetType,
		e.Quantity,
		e.ExpendedBy,
		e.ExpenditureDate,
		e.Base,
		e.Purpose,
		e.Justification,
		e.CreatedAt,
	)
	if err != nil {
		return types.Expenditure{}, err
	}
	return e, nil
}
