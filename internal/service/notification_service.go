package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
)

const allocationNotificationTitle = "Room Allocation"

type notificationRepository interface {
	CreateBatch(ctx context.Context, items []models.Notification) error
}

// NotificationService writes inbox messages for students.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// NotifyAllocated tells each placed student which room they got.
func (s *NotificationService) NotifyAllocated(ctx context.Context, allocations []models.AllocationView) error {
	if len(allocations) == 0 {
		return nil
	}
	items := lo.Map(allocations, func(a models.AllocationView, _ int) models.Notification {
		return models.Notification{
			StudentID: a.StudentID,
			Title:     allocationNotificationTitle,
			Message:   fmt.Sprintf("You have been allocated to Block %s, Room %s.", a.Block, a.RoomNumber),
			Type:      models.NotificationTypeSuccess,
			Priority:  models.NotificationPriorityHigh,
		}
	})
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create allocation notifications")
	}
	s.logger.Debug("allocation notifications created", zap.Int("count", len(items)))
	return nil
}
