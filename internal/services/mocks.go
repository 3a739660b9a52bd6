package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/debtguard/internal/models"
)

type (
	MockRepositoryWalker struct {
		mock.Mock
	}
)

func (m *MockRepositoryWalker) Address() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRepositoryWalker) ListCommits(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepositoryWalker) GetCommit(ctx context.Context, hash string) (models.Commit, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(models.Commit), args.Error(1)
}

func (m *MockRepositoryWalker) ShowFile(ctx context.Context, hash, path string) (string, error) {
	args := m.Called(ctx, hash, path)
	return args.String(0), args.Error(1)
}
