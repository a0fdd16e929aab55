package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fabworks/rackforge/internal/repository"
)

// KVStore is a mock for repository.KVStore.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KVStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KVStore) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChangeLog is a mock for repository.ChangeLog.
type ChangeLog struct {
	mock.Mock
}

func (m *ChangeLog) Append(ctx context.Context, entry repository.ChangeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ChangeLog) List(ctx context.Context, limit int) ([]repository.ChangeEntry, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]repository.ChangeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
