package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
)

func (s *Storage) CreateNotification(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) (domain.NotificationId, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notificaciones (id, id_usuario, mensaje, tipo) VALUES ($1, $2, $3, $4)`,
		id, userId, message, kind)
	if err != nil {
		return "", mapError(err, "Notification")
	}
	return id, nil
}

// ListNotifications returns the newest notifications first.
func (s *Storage) ListNotifications(ctx context.Context, userId domain.UserId, onlyUnread bool, limit int) ([]domain.Notification, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, id_usuario, mensaje, leida, tipo, fecha_creacion FROM notificaciones
		WHERE id_usuario = $1 AND (NOT $2 OR NOT leida)
		ORDER BY fecha_creacion DESC
		LIMIT $3`, userId, onlyUnread, limit)
	if err != nil {
		return nil, mapError(err, "Notification")
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.Id, &n.UserId, &n.Message, &n.Read, &n.Kind, &n.CreatedAt); err != nil {
			return nil, mapError(err, "Notification")
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead only touches notifications owned by userId.
func (s *Storage) MarkNotificationRead(ctx context.Context, id domain.NotificationId, userId domain.UserId) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE notificaciones SET leida = TRUE WHERE id = $1 AND id_usuario = $2`, id, userId)
	if err != nil {
		return mapError(err, "Notification")
	}
	return expectAffected(res, "Notification")
}
