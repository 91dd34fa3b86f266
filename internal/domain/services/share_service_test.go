// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

func newTestShareService(t *testing.T) (*ShareService, *MockShareRepository, *MockBlobRepository, *MockShareCodeCipher) {
	t.Helper()
	shares := &MockShareRepository{}
	blobs := &MockBlobRepository{}
	codes := &MockShareCodeCipher{}
	logger, _ := logging.TestLogger(t)
	service := NewShareService(shares, blobs, codes, 24, 168, logger)
	return service, shares, blobs, codes
}

func testPrincipal() *contracts.Principal {
	return &contracts.Principal{Subject: "user-1", Email: "user@example.com"}
}

func validCreateRequest() *CreateShareRequest {
	return &CreateShareRequest{
		FileName:        "report.pdf",
		ContentType:     "application/pdf",
		RecipientEmail:  "recipient@example.com",
		ExpirationHours: 48,
		Content:         []byte("file contents"),
	}
}

func TestCreateShare(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record with generated code", func(t *testing.T) {
		service, shares, blobs, codes := newTestShareService(t)

		codes.On("GenerateCode").Return("ABC123XYZ789", nil)
		codes.On("Encrypt", mock.Anything, "ABC123XYZ789").Return("encrypted-code", nil)
		blobs.On("Put", mock.Anything, mock.MatchedBy(func(path string) bool {
			return len(path) > 0
		}), mock.Anything).Return(int64(13), nil)

		var created *contracts.ShareRecord
		shares.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*contracts.ShareRecord)
			}).Return(nil)

		resp, err := service.CreateShare(ctx, testPrincipal(), validCreateRequest())
		require.NoError(t, err)

		assert.Equal(t, "ABC123XYZ789", resp.ShareCode)
		assert.NotEmpty(t, resp.ShareID)
		assert.Equal(t, "report.pdf", resp.FileName)

		require.NotNil(t, created)
		assert.Equal(t, "user-1", created.OwnerID)
		assert.Equal(t, "encrypted-code", created.EncryptedShareCode)
		assert.Equal(t, int64(13), created.FileSizeBytes)
		assert.False(t, created.IsDeleted)
		assert.Equal(t, "user-1/"+created.ID+"/report.pdf", created.BlobPath)
		assert.WithinDuration(t, time.Now().UTC().Add(48*time.Hour), created.ExpiresAt, 5*time.Second)
	})

	t.Run("zero expiration uses default", func(t *testing.T) {
		service, shares, blobs, codes := newTestShareService(t)

		codes.On("GenerateCode").Return("ABC123XYZ789", nil)
		codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted-code", nil)
		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(int64(13), nil)
		shares.On("Create", mock.Anything, mock.MatchedBy(func(r *contracts.ShareRecord) bool {
			return time.Until(r.ExpiresAt) > 23*time.Hour && time.Until(r.ExpiresAt) <= 24*time.Hour
		})).Return(nil)

		req := validCreateRequest()
		req.ExpirationHours = 0
		_, err := service.CreateShare(ctx, testPrincipal(), req)
		require.NoError(t, err)
		shares.AssertExpectations(t)
	})

	t.Run("excessive expiration clamps to max", func(t *testing.T) {
		service, shares, blobs, codes := newTestShareService(t)

		codes.On("GenerateCode").Return("ABC123XYZ789", nil)
		codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted-code", nil)
		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(int64(13), nil)
		shares.On("Create", mock.Anything, mock.MatchedBy(func(r *contracts.ShareRecord) bool {
			return time.Until(r.ExpiresAt) <= 168*time.Hour
		})).Return(nil)

		req := validCreateRequest()
		req.ExpirationHours = 10000
		_, err := service.CreateShare(ctx, testPrincipal(), req)
		require.NoError(t, err)
		shares.AssertExpectations(t)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		service, _, _, _ := newTestShareService(t)

		for name, mutate := range map[string]func(*CreateShareRequest){
			"missing file name":  func(r *CreateShareRequest) { r.FileName = "" },
			"empty content":      func(r *CreateShareRequest) { r.Content = nil },
			"missing recipient":  func(r *CreateShareRequest) { r.RecipientEmail = "" },
			"negative expiry":    func(r *CreateShareRequest) { r.ExpirationHours = -1 },
		} {
			t.Run(name, func(t *testing.T) {
				req := validCreateRequest()
				mutate(req)
				_, err := service.CreateShare(ctx, testPrincipal(), req)
				require.Error(t, err)
				assert.Contains(t, err.Error(), constants.ErrCreateShare)
			})
		}
	})

	t.Run("metadata failure removes uploaded blob", func(t *testing.T) {
		service, shares, blobs, codes := newTestShareService(t)

		codes.On("GenerateCode").Return("ABC123XYZ789", nil)
		codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted-code", nil)
		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(int64(13), nil)
		shares.On("Create", mock.Anything, mock.Anything).Return(errors.New("index write rejected"))
		blobs.On("DeleteIfExists", mock.Anything, mock.Anything).Return(nil)

		_, err := service.CreateShare(ctx, testPrincipal(), validCreateRequest())
		require.Error(t, err)
		blobs.AssertCalled(t, "DeleteIfExists", mock.Anything, mock.Anything)
	})

	t.Run("blob upload failure skips metadata write", func(t *testing.T) {
		service, shares, blobs, codes := newTestShareService(t)

		codes.On("GenerateCode").Return("ABC123XYZ789", nil)
		codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted-code", nil)
		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("bucket unreachable"))

		_, err := service.CreateShare(ctx, testPrincipal(), validCreateRequest())
		require.Error(t, err)
		shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestClaimShare(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves code to live record", func(t *testing.T) {
		service, shares, _, codes := newTestShareService(t)
		record := &contracts.ShareRecord{ID: "share-1", FileName: "report.pdf"}

		codes.On("Encrypt", mock.Anything, "ABC123XYZ789").Return("encrypted-code", nil)
		shares.On("FindByEncryptedCode", mock.Anything, "encrypted-code", mock.Anything).
			Return(record, nil)

		claimed, err := service.ClaimShare(ctx, "ABC123XYZ789")
		require.NoError(t, err)
		assert.Equal(t, "share-1", claimed.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		service, shares, _, codes := newTestShareService(t)

		codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted-code", nil)
		shares.On("FindByEncryptedCode", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, contracts.ErrShareNotFound)

		_, err := service.ClaimShare(ctx, "WRONGCODE000")
		assert.ErrorIs(t, err, contracts.ErrShareNotFound)
	})

	t.Run("empty code never hits the store", func(t *testing.T) {
		service, shares, _, _ := newTestShareService(t)

		_, err := service.ClaimShare(ctx, "")
		assert.ErrorIs(t, err, contracts.ErrShareNotFound)
		shares.AssertNotCalled(t, "FindByEncryptedCode", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListShares(t *testing.T) {
	service, shares, _, _ := newTestShareService(t)
	records := []contracts.ShareRecord{{ID: "share-1"}, {ID: "share-2"}}

	shares.On("ListByOwner", mock.Anything, "user-1").Return(records, nil)

	listed, err := service.ListShares(context.Background(), testPrincipal())
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestDeleteShare(t *testing.T) {
	ctx := context.Background()

	t.Run("tombstones record and deletes blob", func(t *testing.T) {
		service, shares, blobs, _ := newTestShareService(t)
		record := &contracts.ShareRecord{
			ID:       "share-1",
			OwnerID:  "user-1",
			BlobPath: "user-1/share-1/report.pdf",
		}

		shares.On("Get", mock.Anything, "share-1", "user-1").Return(record, nil)
		shares.On("Replace", mock.Anything, mock.MatchedBy(func(r *contracts.ShareRecord) bool {
			return r.IsDeleted && r.RetentionTTLSeconds == constants.RetentionTTLSeconds
		})).Return(nil)
		blobs.On("DeleteIfExists", mock.Anything, "user-1/share-1/report.pdf").Return(nil)

		require.NoError(t, service.DeleteShare(ctx, testPrincipal(), "share-1"))
		shares.AssertExpectations(t)
		blobs.AssertExpectations(t)
	})

	t.Run("missing share", func(t *testing.T) {
		service, shares, _, _ := newTestShareService(t)
		shares.On("Get", mock.Anything, "share-1", "user-1").Return(nil, contracts.ErrShareNotFound)

		err := service.DeleteShare(ctx, testPrincipal(), "share-1")
		assert.ErrorIs(t, err, contracts.ErrShareNotFound)
	})

	t.Run("blob failure does not fail the delete", func(t *testing.T) {
		service, shares, blobs, _ := newTestShareService(t)
		record := &contracts.ShareRecord{ID: "share-1", OwnerID: "user-1", BlobPath: "p"}

		shares.On("Get", mock.Anything, "share-1", "user-1").Return(record, nil)
		shares.On("Replace", mock.Anything, mock.Anything).Return(nil)
		blobs.On("DeleteIfExists", mock.Anything, "p").Return(errors.New("bucket unreachable"))

		assert.NoError(t, service.DeleteShare(ctx, testPrincipal(), "share-1"))
	})
}
