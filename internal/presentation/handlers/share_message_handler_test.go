// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/internal/domain/services"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

func newShareHandler(t *testing.T) (*ShareMessageHandler, *MockShareRepository, *MockBlobRepository, *MockShareCodeCipher, *MockAuthRepository) {
	t.Helper()
	shares := &MockShareRepository{}
	blobs := &MockBlobRepository{}
	codes := &MockShareCodeCipher{}
	auth := &MockAuthRepository{}
	logger, _ := logging.TestLogger(t)
	service := services.NewShareService(shares, blobs, codes, 24, 168, logger)
	return NewShareMessageHandler(service, auth, logger), shares, blobs, codes, auth
}

// captureReply returns a reply func that decodes the envelope into out
func captureReply(t *testing.T, out *Reply) func([]byte) error {
	t.Helper()
	return func(data []byte) error {
		require.NoError(t, json.Unmarshal(data, out))
		return nil
	}
}

func TestShareHandler_Create(t *testing.T) {
	handler, shares, blobs, codes, auth := newShareHandler(t)

	auth.On("ValidateToken", mock.Anything, "bearer token-1").
		Return(&contracts.Principal{Subject: "user-1"}, nil)
	codes.On("GenerateCode").Return("ABC123XYZ789", nil)
	codes.On("Encrypt", mock.Anything, "ABC123XYZ789").Return("encrypted", nil)
	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(int64(5), nil)
	shares.On("Create", mock.Anything, mock.Anything).Return(nil)

	payload, _ := json.Marshal(ShareRequest{
		Token: "bearer token-1",
		Create: &services.CreateShareRequest{
			FileName:       "notes.txt",
			ContentType:    "text/plain",
			RecipientEmail: "r@example.com",
			Content:        []byte("hello"),
		},
	})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareCreateSubject, captureReply(t, &reply))
	require.NoError(t, err)

	assert.Equal(t, constants.ReplyOKPrefix, reply.Status)
	var resp services.CreateShareResponse
	require.NoError(t, json.Unmarshal(reply.Data, &resp))
	assert.Equal(t, "ABC123XYZ789", resp.ShareCode)
	assert.NotEmpty(t, resp.ShareID)
}

func TestShareHandler_CreateRequiresPayload(t *testing.T) {
	handler, _, _, _, auth := newShareHandler(t)
	auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(&contracts.Principal{Subject: "user-1"}, nil)

	payload, _ := json.Marshal(ShareRequest{Token: "bearer token-1"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareCreateSubject, captureReply(t, &reply))
	require.Error(t, err)
	assert.Equal(t, constants.ReplyErrorPrefix, reply.Status)
}

func TestShareHandler_InvalidToken(t *testing.T) {
	handler, shares, _, _, auth := newShareHandler(t)
	auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(nil, errors.New("invalid token"))

	payload, _ := json.Marshal(ShareRequest{Token: "bearer bad"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareListSubject, captureReply(t, &reply))
	require.Error(t, err)
	assert.Equal(t, constants.ReplyErrorPrefix, reply.Status)
	assert.Equal(t, "unauthorized", reply.Error)
	shares.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}

func TestShareHandler_ClaimNeedsNoToken(t *testing.T) {
	handler, shares, _, codes, auth := newShareHandler(t)
	record := &contracts.ShareRecord{ID: "share-1", FileName: "notes.txt"}

	codes.On("Encrypt", mock.Anything, "ABC123XYZ789").Return("encrypted", nil)
	shares.On("FindByEncryptedCode", mock.Anything, "encrypted", mock.Anything).Return(record, nil)

	payload, _ := json.Marshal(ShareRequest{ShareCode: "ABC123XYZ789"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareClaimSubject, captureReply(t, &reply))
	require.NoError(t, err)

	assert.Equal(t, constants.ReplyOKPrefix, reply.Status)
	auth.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)

	var claimed contracts.ShareRecord
	require.NoError(t, json.Unmarshal(reply.Data, &claimed))
	assert.Equal(t, "share-1", claimed.ID)
}

func TestShareHandler_ClaimUnknownCode(t *testing.T) {
	handler, shares, _, codes, _ := newShareHandler(t)

	codes.On("Encrypt", mock.Anything, mock.Anything).Return("encrypted", nil)
	shares.On("FindByEncryptedCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, contracts.ErrShareNotFound)

	payload, _ := json.Marshal(ShareRequest{ShareCode: "WRONGCODE000"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareClaimSubject, captureReply(t, &reply))
	require.Error(t, err)
	assert.Equal(t, constants.ReplyErrorPrefix, reply.Status)
	assert.Equal(t, constants.ErrShareNotFound, reply.Error)
}

func TestShareHandler_List(t *testing.T) {
	handler, shares, _, _, auth := newShareHandler(t)

	auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(&contracts.Principal{Subject: "user-1"}, nil)
	shares.On("ListByOwner", mock.Anything, "user-1").
		Return([]contracts.ShareRecord{{ID: "share-1"}, {ID: "share-2"}}, nil)

	payload, _ := json.Marshal(ShareRequest{Token: "bearer token-1"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareListSubject, captureReply(t, &reply))
	require.NoError(t, err)

	var records []contracts.ShareRecord
	require.NoError(t, json.Unmarshal(reply.Data, &records))
	assert.Len(t, records, 2)
}

func TestShareHandler_Delete(t *testing.T) {
	handler, shares, blobs, _, auth := newShareHandler(t)
	record := &contracts.ShareRecord{ID: "share-1", OwnerID: "user-1", BlobPath: "p"}

	auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(&contracts.Principal{Subject: "user-1"}, nil)
	shares.On("Get", mock.Anything, "share-1", "user-1").Return(record, nil)
	shares.On("Replace", mock.Anything, mock.Anything).Return(nil)
	blobs.On("DeleteIfExists", mock.Anything, "p").Return(nil)

	payload, _ := json.Marshal(ShareRequest{Token: "bearer token-1", ShareID: "share-1"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, constants.ShareDeleteSubject, captureReply(t, &reply))
	require.NoError(t, err)
	assert.Equal(t, constants.ReplyOKPrefix, reply.Status)
}

func TestShareHandler_MalformedPayload(t *testing.T) {
	handler, _, _, _, _ := newShareHandler(t)

	var reply Reply
	err := handler.HandleWithReply(context.Background(), []byte("not json"), constants.ShareCreateSubject, captureReply(t, &reply))
	require.Error(t, err)
	assert.Equal(t, constants.ReplyErrorPrefix, reply.Status)
}

func TestShareHandler_UnknownSubject(t *testing.T) {
	handler, _, _, _, auth := newShareHandler(t)
	auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(&contracts.Principal{Subject: "user-1"}, nil)

	payload, _ := json.Marshal(ShareRequest{Token: "bearer token-1"})

	var reply Reply
	err := handler.HandleWithReply(context.Background(), payload, "content.share.unknown", captureReply(t, &reply))
	require.Error(t, err)
	assert.Equal(t, constants.ReplyErrorPrefix, reply.Status)
}
