package repository

import (
	"context"
	"sync"

	"github.com/kpavlov42/placeradar/internal/domain"
)

// MockBusinessStore is an in-memory BusinessStore for tests.
type MockBusinessStore struct {
	mu         sync.Mutex
	businesses []domain.Business

	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func NewMockBusinessStore() *MockBusinessStore {
	return &MockBusinessStore{}
}

func (m *MockBusinessStore) Load(ctx context.Context) ([]domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]domain.Business, len(m.businesses))
	copy(out, m.businesses)
	return out, nil
}

func (m *MockBusinessStore) Save(ctx context.Context, businesses []domain.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.businesses = make([]domain.Business, len(businesses))
	copy(m.businesses, businesses)
	return nil
}

// Seed replaces the stored collection without counting as a Save.
func (m *MockBusinessStore) Seed(businesses []domain.Business) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.businesses = make([]domain.Business, len(businesses))
	copy(m.businesses, businesses)
}
