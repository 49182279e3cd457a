package mocks

import (
	"context"
	"io"

	"pbxadmin/internal/model"
	"pbxadmin/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSoundAssetService struct {
	mock.Mock
}

func (m *MockSoundAssetService) Create(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, name, assignedTo string) (*model.SoundAsset, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size, name, assignedTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetService) Get(ctx context.Context, id string) (*model.SoundAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetService) List(ctx context.Context, limit, offset int) (*service.SoundAssetListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SoundAssetListResult), args.Error(1)
}

func (m *MockSoundAssetService) Update(ctx context.Context, id string, fields service.UpdateFields) (*model.SoundAsset, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetService) UpdateFile(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64, fields service.UpdateFields) (*model.SoundAsset, error) {
	args := m.Called(ctx, id, r, originalFilename, contentType, size, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SoundAsset), args.Error(1)
}

func (m *MockSoundAssetService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
