// Package mocks provides mock implementations of DEK lifecycle contracts for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
)

// MockDekManager is a mock implementation of dekUseCase.DekManager.
type MockDekManager struct {
	mock.Mock
}

// Generate mocks the Generate method of DekManager.
func (m *MockDekManager) Generate(ctx context.Context) (*dekDomain.Exposure, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dekDomain.Exposure), args.Error(1)
}

// Wrap mocks the Wrap method of DekManager.
func (m *MockDekManager) Wrap(ctx context.Context, allowFallback bool) (*dekDomain.WrapResult, error) {
	args := m.Called(ctx, allowFallback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dekDomain.WrapResult), args.Error(1)
}

// Unwrap mocks the Unwrap method of DekManager.
func (m *MockDekManager) Unwrap(
	ctx context.Context,
	allowFallback bool,
	wrapped cryptoDomain.WrappedDek,
) (*dekDomain.UnwrapResult, error) {
	args := m.Called(ctx, allowFallback, wrapped)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dekDomain.UnwrapResult), args.Error(1)
}

// EnsureCredential mocks the EnsureCredential method of DekManager.
func (m *MockDekManager) EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(authnDomain.CredentialID), args.Error(1)
}

// Status mocks the Status method of DekManager.
func (m *MockDekManager) Status(ctx context.Context) (*dekDomain.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dekDomain.Status), args.Error(1)
}

// Exposed mocks the Exposed method of DekManager.
func (m *MockDekManager) Exposed() (*dekDomain.ExposedDek, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*dekDomain.ExposedDek), args.Bool(1)
}

// Encrypt mocks the Encrypt method of DekManager.
func (m *MockDekManager) Encrypt(ctx context.Context, plaintext []byte) (dekDomain.Sealed, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(dekDomain.Sealed), args.Error(1)
}

// Decrypt mocks the Decrypt method of DekManager.
func (m *MockDekManager) Decrypt(ctx context.Context, sealed dekDomain.Sealed) ([]byte, error) {
	args := m.Called(ctx, sealed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Close mocks the Close method of DekManager.
func (m *MockDekManager) Close() {
	m.Called()
}
