package handler

import (
	"context"

	"github.com/itchan-dev/agenda/backend/internal/service"
	"github.com/itchan-dev/agenda/shared/config"
)

// HealthChecker is satisfied by the storage connection pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Services groups the business services the handlers delegate to.
type Services struct {
	Auth         service.AuthService
	Profile      service.ProfileService
	Activity     service.ActivityService
	Project      service.ProjectService
	Assignment   service.AssignmentService
	Notification service.NotificationService
	Staff        service.StaffService
	Stats        service.StatsService
}

type Handler struct {
	auth         service.AuthService
	profile      service.ProfileService
	activity     service.ActivityService
	project      service.ProjectService
	assignment   service.AssignmentService
	notification service.NotificationService
	staff        service.StaffService
	stats        service.StatsService
	health       HealthChecker
	cfg          *config.Config
}

func New(s Services, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		auth:         s.Auth,
		profile:      s.Profile,
		activity:     s.Activity,
		project:      s.Project,
		assignment:   s.Assignment,
		notification: s.Notification,
		staff:        s.Staff,
		stats:        s.Stats,
		health:       health,
		cfg:          cfg,
	}
}
