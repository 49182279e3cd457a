package mocks

import (
	"context"
	"io"

	"pbxadmin/internal/model"
	"pbxadmin/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, opt storage.PutOptions) (model.StorageReference, error) {
	args := m.Called(ctx, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, storage.PutOptions) model.StorageReference); ok {
		return f(ctx, key, r, opt), args.Error(1)
	}
	return args.Get(0).(model.StorageReference), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, ref model.StorageReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
