package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examready/backend/internal/adapter/postgres"
	"github.com/examready/backend/internal/adapter/postgres/testhelper"
)

// stateExists checks whether a learner_states row with the given ID exists.
func stateExists(t *testing.T, pool *pgxpool.Pool, learnerID string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM learner_states WHERE learner_id = $1)`,
		learnerID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("stateExists query: %v", err)
	}
	return exists
}

func insertStateSQL() string {
	return `INSERT INTO learner_states (learner_id, payload, version, updated_at)
	        VALUES ($1, '{}'::jsonb, 1, now())`
}

func newLearnerID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	learnerID := newLearnerID("commit")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx, insertStateSQL(), learnerID)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !stateExists(t, pool, learnerID) {
		t.Fatal("expected state to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	learnerID := newLearnerID("rollback")
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, execErr := q.Exec(ctx, insertStateSQL(), learnerID)
		if execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if stateExists(t, pool, learnerID) {
		t.Fatal("expected state NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	learnerID := newLearnerID("panic")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		// Verify data was rolled back.
		if stateExists(t, pool, learnerID) {
			t.Fatal("expected state NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx, insertStateSQL(), learnerID)
		if err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_QuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	learnerID := newLearnerID("ctx")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx, insertStateSQL(), learnerID)
		if err != nil {
			return err
		}

		// Should be visible within the transaction.
		var exists bool
		err = q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM learner_states WHERE learner_id = $1)`, learnerID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected state to be visible within the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	// After commit, also visible outside.
	if !stateExists(t, pool, learnerID) {
		t.Fatal("expected state to exist after committed transaction")
	}
}
