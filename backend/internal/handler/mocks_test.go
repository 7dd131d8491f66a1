package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
	mw "github.com/itchan-dev/agenda/shared/middleware"
)

var (
	staffCaller      = domain.Principal{Id: "staff-1", Role: domain.RoleStaff}
	supervisorCaller = domain.Principal{Id: "sup-1", Role: domain.RoleSupervisor}
)

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		JwtTTL:                     time.Hour,
		MaxTotalAttachmentSize:     1 << 20,
		MaxAttachments:             3,
		AllowedAttachmentMimeTypes: []string{"text/plain", "application/pdf", "image/png"},
	}}
}

// as attaches caller to the request the way NeedAuth does.
func as(r *http.Request, caller domain.Principal) *http.Request {
	return r.WithContext(mw.WithPrincipal(r.Context(), &caller))
}

// --- Auth / Profile ---

type MockAuthService struct {
	RegisterFunc func(ctx context.Context, reg domain.Registration) (domain.User, error)
	LoginFunc    func(ctx context.Context, login string, password domain.Password) (string, domain.User, error)
	MeFunc       func(ctx context.Context, id domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return domain.User{Id: "u-1", Role: reg.Role}, nil
}

func (m *MockAuthService) Login(ctx context.Context, login string, password domain.Password) (string, domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password)
	}
	return "token", domain.User{Id: "u-1"}, nil
}

func (m *MockAuthService) Me(ctx context.Context, id domain.UserId) (domain.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, id)
	}
	return domain.User{Id: id}, nil
}

type MockProfileService struct {
	UpdateFunc         func(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) (domain.User, error)
	ChangePasswordFunc func(ctx context.Context, id domain.UserId, current, next domain.Password) error
}

func (m *MockProfileService) Update(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) (domain.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return domain.User{Id: id}, nil
}

func (m *MockProfileService) ChangePassword(ctx context.Context, id domain.UserId, current, next domain.Password) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, id, current, next)
	}
	return nil
}

// --- Activities ---

type MockActivityService struct {
	DayFunc            func(ctx context.Context, caller domain.Principal, date domain.Date, userId *domain.UserId) ([]domain.Activity, float64, error)
	RangeFunc          func(ctx context.Context, caller domain.Principal, userId domain.UserId, from, to domain.Date) (domain.RangeTotals, error)
	GetFunc            func(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error)
	CreateFunc         func(ctx context.Context, caller domain.Principal, userId domain.UserId, data domain.ActivityCreationData, files []domain.PendingFile) (domain.Activity, []domain.AttachmentResult, error)
	UpdateFunc         func(ctx context.Context, caller domain.Principal, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error)
	DeleteFunc         func(ctx context.Context, caller domain.Principal, id domain.ActivityId) error
	ToggleFunc         func(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error)
	SendAgendaFunc     func(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) ([]domain.Activity, error)
	HoursFunc          func(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) (float64, error)
	DocumentsFunc      func(ctx context.Context, caller domain.Principal, activityId domain.ActivityId) ([]domain.Document, error)
	AttachFunc         func(ctx context.Context, caller domain.Principal, activityId domain.ActivityId, files []domain.PendingFile) ([]domain.AttachmentResult, error)
	DownloadFunc       func(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) (domain.Document, io.ReadCloser, error)
	DeleteDocumentFunc func(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) error
}

func (m *MockActivityService) Day(ctx context.Context, caller domain.Principal, date domain.Date, userId *domain.UserId) ([]domain.Activity, float64, error) {
	if m.DayFunc != nil {
		return m.DayFunc(ctx, caller, date, userId)
	}
	return nil, 0, nil
}

func (m *MockActivityService) Range(ctx context.Context, caller domain.Principal, userId domain.UserId, from, to domain.Date) (domain.RangeTotals, error) {
	if m.RangeFunc != nil {
		return m.RangeFunc(ctx, caller, userId, from, to)
	}
	return domain.RangeTotals{}, nil
}

func (m *MockActivityService) Get(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, caller, id)
	}
	return domain.Activity{Id: id}, nil
}

func (m *MockActivityService) Create(ctx context.Context, caller domain.Principal, userId domain.UserId, data domain.ActivityCreationData, files []domain.PendingFile) (domain.Activity, []domain.AttachmentResult, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, userId, data, files)
	}
	return domain.Activity{Id: "a-1"}, nil, nil
}

func (m *MockActivityService) Update(ctx context.Context, caller domain.Principal, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, caller, id, patch)
	}
	return domain.Activity{Id: id}, nil
}

func (m *MockActivityService) Delete(ctx context.Context, caller domain.Principal, id domain.ActivityId) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, id)
	}
	return nil
}

func (m *MockActivityService) Toggle(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, caller, id)
	}
	return domain.Activity{Id: id}, nil
}

func (m *MockActivityService) SendAgenda(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) ([]domain.Activity, error) {
	if m.SendAgendaFunc != nil {
		return m.SendAgendaFunc(ctx, caller, userId, date)
	}
	return nil, nil
}

func (m *MockActivityService) Hours(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) (float64, error) {
	if m.HoursFunc != nil {
		return m.HoursFunc(ctx, caller, userId, date)
	}
	return 0, nil
}

func (m *MockActivityService) Documents(ctx context.Context, caller domain.Principal, activityId domain.ActivityId) ([]domain.Document, error) {
	if m.DocumentsFunc != nil {
		return m.DocumentsFunc(ctx, caller, activityId)
	}
	return nil, nil
}

func (m *MockActivityService) Attach(ctx context.Context, caller domain.Principal, activityId domain.ActivityId, files []domain.PendingFile) ([]domain.AttachmentResult, error) {
	if m.AttachFunc != nil {
		return m.AttachFunc(ctx, caller, activityId, files)
	}
	return nil, nil
}

func (m *MockActivityService) Download(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) (domain.Document, io.ReadCloser, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, caller, documentId)
	}
	return domain.Document{}, io.NopCloser(strings.NewReader("")), nil
}

func (m *MockActivityService) DeleteDocument(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) error {
	if m.DeleteDocumentFunc != nil {
		return m.DeleteDocumentFunc(ctx, caller, documentId)
	}
	return nil
}

// --- Projects ---

type MockProjectService struct {
	ListFunc       func(ctx context.Context, caller domain.Principal, includeInactive bool) ([]domain.Project, error)
	GetFunc        func(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.Project, error)
	CreateFunc     func(ctx context.Context, caller domain.Principal, data domain.ProjectCreationData) (domain.Project, error)
	UpdateFunc     func(ctx context.Context, caller domain.Principal, id domain.ProjectId, patch domain.ProjectPatch) (domain.Project, error)
	DeleteFunc     func(ctx context.Context, caller domain.Principal, id domain.ProjectId) error
	ActivitiesFunc func(ctx context.Context, caller domain.Principal, id domain.ProjectId, date *domain.Date) ([]domain.Activity, error)
	SummaryFunc    func(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.ProjectSummary, error)
}

func (m *MockProjectService) List(ctx context.Context, caller domain.Principal, includeInactive bool) ([]domain.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller, includeInactive)
	}
	return nil, nil
}

func (m *MockProjectService) Get(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, caller, id)
	}
	return domain.Project{Id: id}, nil
}

func (m *MockProjectService) Create(ctx context.Context, caller domain.Principal, data domain.ProjectCreationData) (domain.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, data)
	}
	return domain.Project{Id: "p-1", Name: data.Name}, nil
}

func (m *MockProjectService) Update(ctx context.Context, caller domain.Principal, id domain.ProjectId, patch domain.ProjectPatch) (domain.Project, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, caller, id, patch)
	}
	return domain.Project{Id: id}, nil
}

func (m *MockProjectService) Delete(ctx context.Context, caller domain.Principal, id domain.ProjectId) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, id)
	}
	return nil
}

func (m *MockProjectService) Activities(ctx context.Context, caller domain.Principal, id domain.ProjectId, date *domain.Date) ([]domain.Activity, error) {
	if m.ActivitiesFunc != nil {
		return m.ActivitiesFunc(ctx, caller, id, date)
	}
	return nil, nil
}

func (m *MockProjectService) Summary(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.ProjectSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, caller, id)
	}
	return domain.ProjectSummary{}, nil
}

// --- Assignments / Notifications / Staff / Stats ---

type MockAssignmentService struct {
	CreateFunc      func(ctx context.Context, caller domain.Principal, data domain.AssignmentCreationData) (domain.TaskAssignment, error)
	ListFunc        func(ctx context.Context, caller domain.Principal, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error)
	UpdateStateFunc func(ctx context.Context, caller domain.Principal, id domain.AssignmentId, state domain.AssignmentState) (domain.TaskAssignment, error)
}

func (m *MockAssignmentService) Create(ctx context.Context, caller domain.Principal, data domain.AssignmentCreationData) (domain.TaskAssignment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, data)
	}
	return domain.TaskAssignment{Id: "t-1"}, nil
}

func (m *MockAssignmentService) List(ctx context.Context, caller domain.Principal, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller, filter)
	}
	return nil, nil
}

func (m *MockAssignmentService) UpdateState(ctx context.Context, caller domain.Principal, id domain.AssignmentId, state domain.AssignmentState) (domain.TaskAssignment, error) {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, caller, id, state)
	}
	return domain.TaskAssignment{Id: id, State: state}, nil
}

type MockNotificationService struct {
	ListFunc     func(ctx context.Context, userId domain.UserId, onlyUnread bool) ([]domain.Notification, error)
	MarkReadFunc func(ctx context.Context, id domain.NotificationId, userId domain.UserId) error
}

func (m *MockNotificationService) Notify(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) error {
	return nil
}

func (m *MockNotificationService) NotifySupervisor(ctx context.Context, staffId domain.UserId, message string) error {
	return nil
}

func (m *MockNotificationService) List(ctx context.Context, userId domain.UserId, onlyUnread bool) ([]domain.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userId, onlyUnread)
	}
	return nil, nil
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id domain.NotificationId, userId domain.UserId) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, userId)
	}
	return nil
}

type MockStaffService struct {
	ListFunc func(ctx context.Context, caller domain.Principal, onlyMine bool) ([]domain.User, error)
}

func (m *MockStaffService) List(ctx context.Context, caller domain.Principal, onlyMine bool) ([]domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller, onlyMine)
	}
	return []domain.User{}, nil
}

type MockStatsService struct {
	WeekdaysFunc func(ctx context.Context, caller domain.Principal, today domain.Date) ([]domain.WeekdayCount, error)
	RecentFunc   func(ctx context.Context, caller domain.Principal) ([]domain.RecentActivity, error)
	ProjectsFunc func(ctx context.Context, caller domain.Principal) ([]domain.ProjectCount, error)
}

func (m *MockStatsService) Dashboard(ctx context.Context, now time.Time) (domain.DashboardStats, error) {
	return domain.DashboardStats{ActivitiesLastMonth: 7, ActiveStaff: 3}, nil
}

func (m *MockStatsService) Weekdays(ctx context.Context, caller domain.Principal, today domain.Date) ([]domain.WeekdayCount, error) {
	if m.WeekdaysFunc != nil {
		return m.WeekdaysFunc(ctx, caller, today)
	}
	return nil, nil
}

func (m *MockStatsService) Recent(ctx context.Context, caller domain.Principal) ([]domain.RecentActivity, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, caller)
	}
	return nil, nil
}

func (m *MockStatsService) Projects(ctx context.Context, caller domain.Principal) ([]domain.ProjectCount, error) {
	if m.ProjectsFunc != nil {
		return m.ProjectsFunc(ctx, caller)
	}
	return nil, nil
}
