package service

import (
	"context"

	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
)

const notificationsPageLimit = 50

type NotificationService interface {
	Notifier
	List(ctx context.Context, userId domain.UserId, onlyUnread bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id domain.NotificationId, userId domain.UserId) error
}

type NotificationStorage interface {
	CreateNotification(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) (domain.NotificationId, error)
	ListNotifications(ctx context.Context, userId domain.UserId, onlyUnread bool, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id domain.NotificationId, userId domain.UserId) error
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
}

type Notification struct {
	storage NotificationStorage
}

func NewNotification(storage NotificationStorage) NotificationService {
	return &Notification{storage: storage}
}

func (s *Notification) Notify(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) error {
	_, err := s.storage.CreateNotification(ctx, userId, kind, message)
	return err
}

// NotifySupervisor notifies the supervisor of staffId. Staff without a supervisor is not an error.
func (s *Notification) NotifySupervisor(ctx context.Context, staffId domain.UserId, message string) error {
	staffUser, err := s.storage.UserById(ctx, staffId)
	if err != nil {
		return err
	}
	if staffUser.SupervisorId == nil {
		return nil
	}
	return s.Notify(ctx, *staffUser.SupervisorId, domain.NotificationSystem, staffUser.FullName()+": "+message)
}

func (s *Notification) List(ctx context.Context, userId domain.UserId, onlyUnread bool) ([]domain.Notification, error) {
	return s.storage.ListNotifications(ctx, userId, onlyUnread, notificationsPageLimit)
}

func (s *Notification) MarkRead(ctx context.Context, id domain.NotificationId, userId domain.UserId) error {
	if id == "" {
		return internal_errors.BadRequest("Notification id is required")
	}
	return s.storage.MarkNotificationRead(ctx, id, userId)
}
