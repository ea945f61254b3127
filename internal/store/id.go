package store

import (
	"context"
	"database/sql"
	"fmt"
)

// recordID formats a ledger identifier from its sequence value. The
// numeric part is zero-padded to three digits and widens beyond that,
// so identifiers never collide at any record volume.
func recordID(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// nextSeq advances the named Postgres sequence and returns its value.
// Sequence names are compile-time constants, never caller input.
func nextSeq(ctx context.Context, db *sql.DB, sequence string) (int64, error) {
	var seq int64
	err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT nextval('%s')", sequence)).Scan(&seq)
	return seq, err
}
