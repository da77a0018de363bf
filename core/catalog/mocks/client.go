package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"twin-sync/core/catalog"
)

// Client is a mock implementation of catalog.Client
type Client struct {
	mock.Mock
}

func (m *Client) AssetExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *Client) CreateAsset(ctx context.Context, asset catalog.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *Client) CreatePolicy(ctx context.Context, def catalog.PolicyDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *Client) CreateContractDefinition(ctx context.Context, def catalog.ContractDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *Client) DeleteAsset(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Client) DeletePolicy(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Client) DeleteContractDefinition(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
