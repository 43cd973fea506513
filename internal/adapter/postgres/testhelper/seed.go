package testhelper

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueLearnerID returns a non-conflicting learner ID for test data.
func UniqueLearnerID() string {
	return "learner-" + uuid.New().String()[:8]
}

// SeedLearnerState inserts a raw learner_states row with the given payload.
// Returns the learner ID.
func SeedLearnerState(t *testing.T, pool *pgxpool.Pool, payload any) string {
	t.Helper()
	ctx := context.Background()

	learnerID := UniqueLearnerID()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("testhelper: SeedLearnerState marshal payload: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO learner_states (learner_id, payload, version, updated_at)
		 VALUES ($1, $2, 1, now())`,
		learnerID, raw,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLearnerState insert: %v", err)
	}

	return learnerID
}

// SeedCramState inserts a raw cram_states row with the given payload.
// Returns the learner ID.
func SeedCramState(t *testing.T, pool *pgxpool.Pool, payload any) string {
	t.Helper()
	ctx := context.Background()

	learnerID := UniqueLearnerID()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("testhelper: SeedCramState marshal payload: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO cram_states (learner_id, payload, updated_at)
		 VALUES ($1, $2, now())`,
		learnerID, raw,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCramState insert: %v", err)
	}

	return learnerID
}
