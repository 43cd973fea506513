package tracker

import (
	"context"
	"sync"

	"github.com/examready/backend/internal/domain"
)

// stateRepoMock is a function-field mock for the state repository.
type stateRepoMock struct {
	GetFunc    func(ctx context.Context, learnerID string) (*domain.AdaptiveState, error)
	SaveFunc   func(ctx context.Context, state *domain.AdaptiveState) error
	DeleteFunc func(ctx context.Context, learnerID string) error
}

func (m *stateRepoMock) Get(ctx context.Context, learnerID string) (*domain.AdaptiveState, error) {
	if m.GetFunc == nil {
		return nil, domain.ErrNotFound
	}
	return m.GetFunc(ctx, learnerID)
}

func (m *stateRepoMock) Save(ctx context.Context, state *domain.AdaptiveState) error {
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(ctx, state)
}

func (m *stateRepoMock) Delete(ctx context.Context, learnerID string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, learnerID)
}

// memStateRepo is an in-memory repository with real version semantics,
// for flows that need state to survive across calls.
type memStateRepo struct {
	mu     sync.Mutex
	states map[string]*domain.AdaptiveState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]*domain.AdaptiveState)}
}

func (m *memStateRepo) Get(_ context.Context, learnerID string) (*domain.AdaptiveState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[learnerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return st, nil
}

func (m *memStateRepo) Save(_ context.Context, state *domain.AdaptiveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.states[state.LearnerID]
	if state.Version == 0 {
		if exists {
			return domain.ErrConflict
		}
		state.Version = 1
		m.states[state.LearnerID] = state
		return nil
	}
	if !exists || current.Version != state.Version {
		return domain.ErrConflict
	}
	state.Version++
	m.states[state.LearnerID] = state
	return nil
}

func (m *memStateRepo) Delete(_ context.Context, learnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, learnerID)
	return nil
}
