package events

import (
	"context"
	"database/sql"
	"fmt"
)

// rowQuerier is the slice of *sql.DB the sequence repository needs.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SequenceRepository hands out per-partition monotonic sequence numbers so
// consumers can order events within a partition.
type SequenceRepository struct {
	store rowQuerier
}

func NewSequenceRepository(store rowQuerier) *SequenceRepository {
	return &SequenceRepository{store: store}
}

// NextSequence atomically increments and returns the next sequence for a partition.
func (r *SequenceRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	err := r.store.QueryRowContext(ctx, `
		INSERT INTO event_sequences (partition_key, last_sequence)
		VALUES ($1, 1)
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequences.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
