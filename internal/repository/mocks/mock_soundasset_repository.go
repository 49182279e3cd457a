package mocks

import (
	"context"

	"pbxadmin/internal/model"
	"pbxadmin/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockSoundAssetRepository struct {
	mock.Mock
}

func (m *MockSoundAssetRepository) Create(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetRepository) FindByID(ctx context.Context, id string) (*model.SoundAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.SoundAsset], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.SoundAsset]), args.Error(1)
}

func (m *MockSoundAssetRepository) Update(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
