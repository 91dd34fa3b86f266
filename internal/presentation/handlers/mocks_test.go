// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
)

// MockShareRepository implements the contracts.ShareRepository interface for testing
type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Create(ctx context.Context, record *contracts.ShareRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockShareRepository) Replace(ctx context.Context, record *contracts.ShareRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockShareRepository) Get(ctx context.Context, id, ownerID string) (*contracts.ShareRecord, error) {
	args := m.Called(ctx, id, ownerID)
	record, _ := args.Get(0).(*contracts.ShareRecord)
	return record, args.Error(1)
}

func (m *MockShareRepository) FindByEncryptedCode(ctx context.Context, encryptedCode string, now time.Time) (*contracts.ShareRecord, error) {
	args := m.Called(ctx, encryptedCode, now)
	record, _ := args.Get(0).(*contracts.ShareRecord)
	return record, args.Error(1)
}

func (m *MockShareRepository) ListByOwner(ctx context.Context, ownerID string) ([]contracts.ShareRecord, error) {
	args := m.Called(ctx, ownerID)
	records, _ := args.Get(0).([]contracts.ShareRecord)
	return records, args.Error(1)
}

func (m *MockShareRepository) FindExpired(ctx context.Context, mark, now time.Time, after *contracts.PageCursor, size int) ([]contracts.ShareRecord, *contracts.PageCursor, error) {
	args := m.Called(ctx, mark, now, after, size)
	records, _ := args.Get(0).([]contracts.ShareRecord)
	cursor, _ := args.Get(1).(*contracts.PageCursor)
	return records, cursor, args.Error(2)
}

func (m *MockShareRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBlobRepository implements the contracts.BlobRepository interface for testing
type MockBlobRepository struct {
	mock.Mock
}

func (m *MockBlobRepository) Put(ctx context.Context, path string, data io.Reader) (int64, error) {
	args := m.Called(ctx, path, data)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlobRepository) DeleteIfExists(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockBlobRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockShareCodeCipher implements the contracts.ShareCodeCipher interface for testing
type MockShareCodeCipher struct {
	mock.Mock
}

func (m *MockShareCodeCipher) GenerateCode() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockShareCodeCipher) Encrypt(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockShareCodeCipher) Decrypt(ctx context.Context, encrypted string) (string, error) {
	args := m.Called(ctx, encrypted)
	return args.String(0), args.Error(1)
}

// MockMessagingRepository implements the contracts.MessagingRepository interface for testing
type MockMessagingRepository struct {
	mock.Mock
}

func (m *MockMessagingRepository) Subscribe(ctx context.Context, subject string, handler contracts.MessageHandler) error {
	args := m.Called(ctx, subject, handler)
	return args.Error(0)
}

func (m *MockMessagingRepository) QueueSubscribe(ctx context.Context, subject, queue string, handler contracts.MessageHandler) error {
	args := m.Called(ctx, subject, queue, handler)
	return args.Error(0)
}

func (m *MockMessagingRepository) QueueSubscribeWithReply(ctx context.Context, subject, queue string, handler contracts.MessageHandlerWithReply) error {
	args := m.Called(ctx, subject, queue, handler)
	return args.Error(0)
}

func (m *MockMessagingRepository) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *MockMessagingRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMessagingRepository) DrainWithTimeout() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMessagingRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuthRepository implements the contracts.AuthRepository interface for testing
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) ValidateToken(ctx context.Context, token string) (*contracts.Principal, error) {
	args := m.Called(ctx, token)
	principal, _ := args.Get(0).(*contracts.Principal)
	return principal, args.Error(1)
}

func (m *MockAuthRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCheckpointRepository implements the contracts.CheckpointRepository interface for testing
type MockCheckpointRepository struct {
	mock.Mock
}

func (m *MockCheckpointRepository) GetState(ctx context.Context) (*contracts.CleanupCheckpoint, error) {
	args := m.Called(ctx)
	checkpoint, _ := args.Get(0).(*contracts.CleanupCheckpoint)
	return checkpoint, args.Error(1)
}

func (m *MockCheckpointRepository) UpdateState(ctx context.Context, checkpoint *contracts.CleanupCheckpoint) error {
	args := m.Called(ctx, checkpoint)
	return args.Error(0)
}

func (m *MockCheckpointRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
