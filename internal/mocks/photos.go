package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/internal/storage"
)

// MockPhotoStore is a mock implementation of storage.PhotoStore
type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Put(ctx context.Context, recipeID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, recipeID, filename, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStore) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var _ storage.PhotoStore = (*MockPhotoStore)(nil)
