package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
)

type notificationRepoStub struct {
	items []models.Notification
	err   error
}

func (r *notificationRepoStub) CreateBatch(ctx context.Context, items []models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.items = append(r.items, items...)
	return nil
}

func TestNotifyAllocated(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, nil)

	err := svc.NotifyAllocated(context.Background(), []models.AllocationView{
		{StudentID: "s1", Block: "A", RoomNumber: "101"},
		{StudentID: "s2", Block: "B", RoomNumber: "7"},
	})
	require.NoError(t, err)
	require.Len(t, repo.items, 2)
	assert.Equal(t, "Room Allocation", repo.items[0].Title)
	assert.Equal(t, "You have been allocated to Block B, Room 7.", repo.items[1].Message)
	assert.Equal(t, models.NotificationTypeSuccess, repo.items[1].Type)

	require.NoError(t, svc.NotifyAllocated(context.Background(), nil))
}

func TestNotifyAllocatedRepositoryError(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{err: errors.New("db down")}, nil)
	err := svc.NotifyAllocated(context.Background(), []models.AllocationView{{StudentID: "s1"}})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
