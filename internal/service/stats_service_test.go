package service

import (
	"context"
	"errors"
	"testing"

	"prepline/internal/hub"
	"prepline/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatsService_RefreshNotifiesAdminRoom(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	notifier := &recordingNotifier{}
	svc := NewStatsService(mockRepo, notifier, zerolog.Nop())

	mockRepo.On("Recompute", mock.Anything).Return(nil)

	svc.Refresh()
	svc.Wait()

	assert.Equal(t, []string{hub.AdminRoom}, notifier.notifiedCategories())
	mockRepo.AssertExpectations(t)
}

func TestStatsService_RefreshFailureIsSwallowed(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	notifier := &recordingNotifier{}
	svc := NewStatsService(mockRepo, notifier, zerolog.Nop())

	mockRepo.On("Recompute", mock.Anything).Return(errors.New("database error"))

	svc.Refresh()
	svc.Wait()

	assert.Equal(t, 0, notifier.count())
}

func TestStatsService_OverlappingRefreshesSerialise(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	notifier := &recordingNotifier{}
	svc := NewStatsService(mockRepo, notifier, zerolog.Nop())

	mockRepo.On("Recompute", mock.Anything).Return(nil)

	for i := 0; i < 10; i++ {
		svc.Refresh()
	}
	svc.Wait()

	// Every trigger ran to completion, one at a time.
	assert.Equal(t, 10, notifier.count())
	mockRepo.AssertNumberOfCalls(t, "Recompute", 10)
}

func TestStatsService_Snapshot(t *testing.T) {
	ctx := context.Background()

	stats := &model.Stats{TotalOrders: 12, CompletedOrders: 9, RevenueTotal: 180.50}

	mockRepo := new(MockStatsRepository)
	notifier := &recordingNotifier{}
	svc := NewStatsService(mockRepo, notifier, zerolog.Nop())

	mockRepo.On("Snapshot", ctx).Return(stats, nil)

	got, err := svc.Snapshot(ctx)

	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
