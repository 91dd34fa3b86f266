// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/christopherhouse/web-content-share/pkg/constants"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expired   bool
	}{
		{"expired in the past", now.Add(-time.Hour), true},
		{"expires in the future", now.Add(time.Hour), false},
		{"expires exactly now is not expired", now, false},
		{"one nanosecond past", now.Add(-time.Nanosecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := ShareRecord{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expired, record.IsExpired(now))
		})
	}
}

func TestMarkDeleted(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("tombstones the record", func(t *testing.T) {
		record := ShareRecord{
			ID:        "share-1",
			UpdatedAt: now.Add(-48 * time.Hour),
		}

		record.MarkDeleted(now)

		assert.True(t, record.IsDeleted)
		assert.Equal(t, now, record.UpdatedAt)
		assert.Equal(t, int64(constants.RetentionTTLSeconds), record.RetentionTTLSeconds)
	})

	t.Run("already deleted is a no-op", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		record := ShareRecord{
			ID:                  "share-1",
			IsDeleted:           true,
			UpdatedAt:           earlier,
			RetentionTTLSeconds: constants.RetentionTTLSeconds,
		}

		record.MarkDeleted(now)

		assert.Equal(t, earlier, record.UpdatedAt, "re-deleting must not touch the tombstone")
	})
}
