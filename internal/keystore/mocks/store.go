// Package mocks provides mock implementations of key store contracts for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// MockStore is a mock implementation of keystoreDomain.Store.
type MockStore struct {
	mock.Mock
}

// Get mocks the Get method of Store.
func (m *MockStore) Get(ctx context.Context, key keystoreDomain.Key) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set mocks the Set method of Store.
func (m *MockStore) Set(ctx context.Context, key keystoreDomain.Key, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
