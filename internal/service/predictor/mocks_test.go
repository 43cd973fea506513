package predictor

import (
	"context"

	"github.com/examready/backend/internal/domain"
)

// stateRepoMock is a function-field mock for the state repository.
type stateRepoMock struct {
	GetFunc func(ctx context.Context, learnerID string) (*domain.AdaptiveState, error)
}

func (m *stateRepoMock) Get(ctx context.Context, learnerID string) (*domain.AdaptiveState, error) {
	if m.GetFunc == nil {
		return nil, domain.ErrNotFound
	}
	return m.GetFunc(ctx, learnerID)
}
