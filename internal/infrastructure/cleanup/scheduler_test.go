// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

func newTestScheduler(t *testing.T, interval time.Duration) (*Scheduler, *MockShareRepository, *MockCheckpointRepository) {
	t.Helper()
	engine, shares, checkpoints, _ := newTestEngine(t)
	logger, _ := logging.TestLogger(t)
	return NewScheduler(engine, interval, logger), shares, checkpoints
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	scheduler, shares, checkpoints := newTestScheduler(t, time.Hour)
	mark := time.Now().UTC().Add(-time.Hour)

	done := make(chan struct{})
	checkpoints.On("GetState", mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case <-done:
			default:
				close(done)
			}
		}).
		Return(&contracts.CleanupCheckpoint{HighWaterMark: mark}, nil)
	shares.On("FindExpired", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]contracts.ShareRecord{}, nil, nil)
	checkpoints.On("UpdateState", mock.Anything, mock.Anything).Return(nil)

	scheduler.Start(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run immediately after start")
	}

	scheduler.Shutdown()
	checkpoints.AssertCalled(t, "GetState", mock.Anything)
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	scheduler, shares, checkpoints := newTestScheduler(t, time.Hour)
	mark := time.Now().UTC().Add(-time.Hour)

	checkpoints.On("GetState", mock.Anything).
		Return(&contracts.CleanupCheckpoint{HighWaterMark: mark}, nil)
	shares.On("FindExpired", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]contracts.ShareRecord{}, nil, nil)
	checkpoints.On("UpdateState", mock.Anything, mock.Anything).Return(nil)

	scheduler.Start(context.Background())
	scheduler.Start(context.Background()) // second start is a no-op
	scheduler.Shutdown()
}

func TestScheduler_SurvivesRunErrors(t *testing.T) {
	scheduler, _, checkpoints := newTestScheduler(t, 20*time.Millisecond)

	calls := make(chan struct{}, 8)
	checkpoints.On("GetState", mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case calls <- struct{}{}:
			default:
			}
		}).
		Return(nil, errors.New("store down"))

	scheduler.Start(context.Background())

	// At least the immediate run plus one tick despite every run failing.
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected run %d did not happen", i+1)
		}
	}
	scheduler.Shutdown()
}

func TestScheduler_ShutdownWithoutStart(t *testing.T) {
	scheduler, _, _ := newTestScheduler(t, time.Hour)
	assert.NotPanics(t, func() { scheduler.Shutdown() })
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	scheduler, shares, checkpoints := newTestScheduler(t, 10*time.Millisecond)
	mark := time.Now().UTC().Add(-time.Hour)

	checkpoints.On("GetState", mock.Anything).
		Return(&contracts.CleanupCheckpoint{HighWaterMark: mark}, nil)
	shares.On("FindExpired", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]contracts.ShareRecord{}, nil, nil)
	checkpoints.On("UpdateState", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	cancel()

	// The loop exits on its own; waiting must not hang.
	doneCh := make(chan struct{})
	go func() {
		scheduler.workerWG.Wait()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
