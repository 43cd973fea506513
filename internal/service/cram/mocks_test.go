package cram

import (
	"context"
	"sync"

	"github.com/examready/backend/internal/domain"
)

// stateRepoMock is a function-field mock for the cram state repository.
type stateRepoMock struct {
	GetFunc    func(ctx context.Context, learnerID string) (*domain.CramState, error)
	SaveFunc   func(ctx context.Context, state *domain.CramState) error
	DeleteFunc func(ctx context.Context, learnerID string) error
}

func (m *stateRepoMock) Get(ctx context.Context, learnerID string) (*domain.CramState, error) {
	if m.GetFunc == nil {
		return nil, domain.ErrNotFound
	}
	return m.GetFunc(ctx, learnerID)
}

func (m *stateRepoMock) Save(ctx context.Context, state *domain.CramState) error {
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

// memCramRepo is an in-memory repository for flows where state must
// survive across calls.
type memCramRepo struct {
	mu     sync.Mutex
	states map[string]*domain.CramState
}

func newMemCramRepo() *memCramRepo {
	return &memCramRepo{states: make(map[string]*domain.CramState)}
}

func (m *memCramRepo) Get(_ context.Context, learnerID string) (*domain.CramState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[learnerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return st, nil
}

func (m *memCramRepo) Save(_ context.Context, state *domain.CramState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.LearnerID] = state
	return nil
}

func (m *memCramRepo) Delete(_ context.Context, learnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, learnerID)
	return nil
}
