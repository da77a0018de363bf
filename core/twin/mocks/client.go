package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"twin-sync/core/twin"
)

// Client is a mock implementation of twin.Client
type Client struct {
	mock.Mock
}

func (m *Client) LookupShells(ctx context.Context, ids map[string]string) ([]string, error) {
	args := m.Called(ctx, ids)
	if out, ok := args.Get(0).([]string); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateShell(ctx context.Context, shell twin.Shell) (twin.Shell, error) {
	args := m.Called(ctx, shell)
	return args.Get(0).(twin.Shell), args.Error(1)
}

func (m *Client) UpdateSpecificAssetIDs(ctx context.Context, shellID string, ids map[string]string) error {
	args := m.Called(ctx, shellID, ids)
	return args.Error(0)
}

func (m *Client) ListSubmodels(ctx context.Context, shellID string) ([]twin.Submodel, error) {
	args := m.Called(ctx, shellID)
	if out, ok := args.Get(0).([]twin.Submodel); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateSubmodel(ctx context.Context, shellID string, submodel twin.Submodel) (twin.Submodel, error) {
	args := m.Called(ctx, shellID, submodel)
	return args.Get(0).(twin.Submodel), args.Error(1)
}

func (m *Client) DeleteSubmodel(ctx context.Context, shellID, submodelID string) error {
	args := m.Called(ctx, shellID, submodelID)
	return args.Error(0)
}
