// Package mocks provides mock implementations of authenticator contracts for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
)

// MockAuthenticator is a mock implementation of authnService.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

// Create mocks the Create method of Authenticator.
func (m *MockAuthenticator) Create(
	ctx context.Context,
	params *authnDomain.CreationParams,
) (authnDomain.CredentialID, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(authnDomain.CredentialID), args.Error(1)
}

// GetAssertion mocks the GetAssertion method of Authenticator.
func (m *MockAuthenticator) GetAssertion(
	ctx context.Context,
	credentialID authnDomain.CredentialID,
	requestSecret bool,
) (*authnDomain.AssertionResult, error) {
	args := m.Called(ctx, credentialID, requestSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authnDomain.AssertionResult), args.Error(1)
}
