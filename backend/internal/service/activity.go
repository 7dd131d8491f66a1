package service

import (
	"context"
	"io"
	"time"

	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
)

// maxRangeDays bounds calendar queries.
const maxRangeDays = 366

type ActivityService interface {
	Day(ctx context.Context, caller domain.Principal, date domain.Date, userId *domain.UserId) ([]domain.Activity, float64, error)
	Range(ctx context.Context, caller domain.Principal, userId domain.UserId, from, to domain.Date) (domain.RangeTotals, error)
	Get(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error)
	Create(ctx context.Context, caller domain.Principal, userId domain.UserId, data domain.ActivityCreationData, files []domain.PendingFile) (domain.Activity, []domain.AttachmentResult, error)
	Update(ctx context.Context, caller domain.Principal, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error)
	Delete(ctx context.Context, caller domain.Principal, id domain.ActivityId) error
	Toggle(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error)
	SendAgenda(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) ([]domain.Activity, error)
	Hours(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) (float64, error)

	Documents(ctx context.Context, caller domain.Principal, activityId domain.ActivityId) ([]domain.Document, error)
	Attach(ctx context.Context, caller domain.Principal, activityId domain.ActivityId, files []domain.PendingFile) ([]domain.AttachmentResult, error)
	Download(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) (domain.Document, io.ReadCloser, error)
	DeleteDocument(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) error
}

// Activity serves each request with a fresh ActivityManager bound to the request's scope.
type Activity struct {
	storage  ActivityStorage
	media    MediaStorage
	notifier Notifier
	cfg      *config.Config
}

func NewActivity(storage ActivityStorage, media MediaStorage, notifier Notifier, cfg *config.Config) ActivityService {
	return &Activity{
		storage:  storage,
		media:    media,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *Activity) manager(caller domain.Principal) *ActivityManager {
	return NewActivityManager(s.storage, s.media, s.notifier, caller, s.cfg.MinDescriptionLength())
}

// managerFor loads the scope that contains activity id.
func (s *Activity) managerFor(ctx context.Context, caller domain.Principal, id domain.ActivityId) (*ActivityManager, error) {
	a, err := s.storage.GetActivity(ctx, id)
	if err != nil {
		return nil, operationFailed("get activity", err, "activity_id", id)
	}
	m := s.manager(caller)
	if _, err := m.LoadForScope(ctx, a.UserId, a.Date); err != nil {
		return nil, err
	}
	return m, nil
}

// Day returns the caller's day. A supervisor without userId sees every user's activities.
func (s *Activity) Day(ctx context.Context, caller domain.Principal, date domain.Date, userId *domain.UserId) ([]domain.Activity, float64, error) {
	caps := CapabilitiesFor(caller.Role)
	if userId == nil && caps.SeeAllUsers {
		activities, err := s.storage.ActivitiesByDate(ctx, date, nil)
		if err != nil {
			return nil, 0, operationFailed("list day", err, "date", date)
		}
		s.manager(caller).fillURLs(ctx, activities)
		return activities, sentHours(activities), nil
	}

	scopeUser := caller.Id
	if userId != nil {
		scopeUser = *userId
	}
	m := s.manager(caller)
	activities, err := m.LoadForScope(ctx, scopeUser, date)
	if err != nil {
		return nil, 0, err
	}
	return activities, m.TotalHours(), nil
}

func (s *Activity) Range(ctx context.Context, caller domain.Principal, userId domain.UserId, from, to domain.Date) (domain.RangeTotals, error) {
	if !canAccessUser(caller, CapabilitiesFor(caller.Role), userId) {
		return domain.RangeTotals{}, ErrNotOwner
	}
	if to.Before(from) {
		return domain.RangeTotals{}, internal_errors.BadRequest("Invalid date range")
	}
	if to.Time().Sub(from.Time()) > maxRangeDays*24*time.Hour {
		return domain.RangeTotals{}, internal_errors.BadRequest("Date range too long")
	}

	activities, err := s.storage.ActivitiesInRange(ctx, userId, from, to)
	if err != nil {
		return domain.RangeTotals{}, operationFailed("list range", err, "user_id", userId)
	}

	days := map[domain.Date]struct{}{}
	var total time.Duration
	for _, a := range activities {
		days[a.Date] = struct{}{}
		total += a.Duration()
	}
	return domain.RangeTotals{
		Activities: activities,
		Days:       len(days),
		TotalHours: total.Hours(),
		SentHours:  sentHours(activities),
	}, nil
}

func (s *Activity) Get(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error) {
	a, err := s.storage.GetActivity(ctx, id)
	if err != nil {
		return domain.Activity{}, operationFailed("get activity", err, "activity_id", id)
	}
	if !canAccessUser(caller, CapabilitiesFor(caller.Role), a.UserId) {
		return domain.Activity{}, ErrNotOwner
	}
	s.manager(caller).fillURLs(ctx, []domain.Activity{a})
	return a, nil
}

// Create registers an activity for userId (the caller when empty).
func (s *Activity) Create(ctx context.Context, caller domain.Principal, userId domain.UserId, data domain.ActivityCreationData, files []domain.PendingFile) (domain.Activity, []domain.AttachmentResult, error) {
	if userId == "" {
		userId = caller.Id
	}
	m := s.manager(caller)
	if _, err := m.LoadForScope(ctx, userId, data.Date); err != nil {
		return domain.Activity{}, nil, err
	}
	return m.Create(ctx, data, files)
}

func (s *Activity) Update(ctx context.Context, caller domain.Principal, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error) {
	m, err := s.managerFor(ctx, caller, id)
	if err != nil {
		return domain.Activity{}, err
	}
	updated, err := m.Update(ctx, id, patch)
	if err != nil {
		return domain.Activity{}, err
	}
	if updated == nil {
		return domain.Activity{}, internal_errors.NotFound("Activity not found")
	}
	return *updated, nil
}

func (s *Activity) Delete(ctx context.Context, caller domain.Principal, id domain.ActivityId) error {
	m, err := s.managerFor(ctx, caller, id)
	if err != nil {
		return err
	}
	deleted, err := m.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return internal_errors.NotFound("Activity not found")
	}
	return nil
}

func (s *Activity) Toggle(ctx context.Context, caller domain.Principal, id domain.ActivityId) (domain.Activity, error) {
	m, err := s.managerFor(ctx, caller, id)
	if err != nil {
		return domain.Activity{}, err
	}
	toggled, err := m.ToggleState(ctx, id)
	if err != nil {
		return domain.Activity{}, err
	}
	if toggled == nil {
		return domain.Activity{}, internal_errors.NotFound("Activity not found")
	}
	return *toggled, nil
}

// SendAgenda sends the drafts of (userId, date) and returns the day as it is afterwards.
func (s *Activity) SendAgenda(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) ([]domain.Activity, error) {
	if userId == "" {
		userId = caller.Id
	}
	m := s.manager(caller)
	if _, err := m.LoadForScope(ctx, userId, date); err != nil {
		return nil, err
	}
	if err := m.SendAgenda(ctx, userId); err != nil {
		return nil, err
	}
	return m.Activities(), nil
}

func (s *Activity) Hours(ctx context.Context, caller domain.Principal, userId domain.UserId, date domain.Date) (float64, error) {
	if userId == "" {
		userId = caller.Id
	}
	m := s.manager(caller)
	if _, err := m.LoadForScope(ctx, userId, date); err != nil {
		return 0, err
	}
	return m.TotalHours(), nil
}

func (s *Activity) Documents(ctx context.Context, caller domain.Principal, activityId domain.ActivityId) ([]domain.Document, error) {
	a, err := s.Get(ctx, caller, activityId)
	if err != nil {
		return nil, err
	}
	if a.Documents == nil {
		return []domain.Document{}, nil
	}
	return a.Documents, nil
}

func (s *Activity) Attach(ctx context.Context, caller domain.Principal, activityId domain.ActivityId, files []domain.PendingFile) ([]domain.AttachmentResult, error) {
	if len(files) == 0 {
		return nil, internal_errors.BadRequest("No files to attach")
	}
	m, err := s.managerFor(ctx, caller, activityId)
	if err != nil {
		return nil, err
	}
	return m.Attach(ctx, activityId, files)
}

// Download opens the stored object of a document the caller may see. The caller closes the reader.
func (s *Activity) Download(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) (domain.Document, io.ReadCloser, error) {
	doc, err := s.storage.GetDocument(ctx, documentId)
	if err != nil {
		return domain.Document{}, nil, operationFailed("get document", err, "document_id", documentId)
	}
	if _, err := s.Get(ctx, caller, doc.ActivityId); err != nil {
		return domain.Document{}, nil, err
	}
	rc, err := s.media.Download(ctx, doc.StoragePath)
	if err != nil {
		return domain.Document{}, nil, operationFailed("download document", err, "document_id", documentId)
	}
	return doc, rc, nil
}

func (s *Activity) DeleteDocument(ctx context.Context, caller domain.Principal, documentId domain.DocumentId) error {
	doc, err := s.storage.GetDocument(ctx, documentId)
	if err != nil {
		return operationFailed("get document", err, "document_id", documentId)
	}
	m, err := s.managerFor(ctx, caller, doc.ActivityId)
	if err != nil {
		return err
	}
	return m.RemoveDocument(ctx, doc.ActivityId, documentId)
}
