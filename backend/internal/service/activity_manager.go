package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/agenda/backend/internal/service/utils"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
)

// ActivityStorage is the data access the activity lifecycle depends on.
type ActivityStorage interface {
	ActivitiesByScope(ctx context.Context, userId domain.UserId, date domain.Date) ([]domain.Activity, error)
	ActivitiesByDate(ctx context.Context, date domain.Date, userId *domain.UserId) ([]domain.Activity, error)
	ActivitiesInRange(ctx context.Context, userId domain.UserId, from, to domain.Date) ([]domain.Activity, error)
	GetActivity(ctx context.Context, id domain.ActivityId) (domain.Activity, error)
	CreateActivity(ctx context.Context, data domain.ActivityCreationData) (domain.Activity, error)
	UpdateActivity(ctx context.Context, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error)
	DeleteActivity(ctx context.Context, id domain.ActivityId) error
	SetActivitiesState(ctx context.Context, ids []domain.ActivityId, state domain.ActivityState) (time.Time, error)
	HasProjectAccess(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error)

	CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error)
	DocumentsByActivity(ctx context.Context, activityId domain.ActivityId) ([]domain.Document, error)
	GetDocument(ctx context.Context, id domain.DocumentId) (domain.Document, error)
	DeleteDocument(ctx context.Context, id domain.DocumentId) error
}

// Notifier records in-app notifications. Failures are reported but never undo the caller's work.
type Notifier interface {
	Notify(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) error
	NotifySupervisor(ctx context.Context, staffId domain.UserId, message string) error
}

// ActivityManager owns the activity list of one (user, date) scope as seen by one caller.
// It validates every mutation before it reaches storage and changes the in-memory
// list only after storage confirmed the write. Not safe for concurrent use.
type ActivityManager struct {
	storage        ActivityStorage
	media          MediaStorage
	notifier       Notifier
	caller         domain.Principal
	caps           Capabilities
	minDescription int

	scopeUser  domain.UserId
	scopeDate  domain.Date
	activities []domain.Activity
}

func NewActivityManager(storage ActivityStorage, media MediaStorage, notifier Notifier, caller domain.Principal, minDescription int) *ActivityManager {
	return &ActivityManager{
		storage:        storage,
		media:          media,
		notifier:       notifier,
		caller:         caller,
		caps:           CapabilitiesFor(caller.Role),
		minDescription: minDescription,
	}
}

func (m *ActivityManager) Capabilities() Capabilities {
	return m.caps
}

// Activities returns a copy of the current scope ordered by start time.
func (m *ActivityManager) Activities() []domain.Activity {
	out := make([]domain.Activity, len(m.activities))
	copy(out, m.activities)
	return out
}

// LoadForScope replaces the in-memory list with the activities of (userId, date).
func (m *ActivityManager) LoadForScope(ctx context.Context, userId domain.UserId, date domain.Date) ([]domain.Activity, error) {
	if !canAccessUser(m.caller, m.caps, userId) {
		return nil, ErrNotOwner
	}
	m.scopeUser = userId
	m.scopeDate = date
	m.activities = nil

	activities, err := m.storage.ActivitiesByScope(ctx, userId, date)
	if err != nil {
		logger.Log.Error("failed to load activities", "user_id", userId, "date", date, "error", err)
		return nil, ErrOperationFailed
	}
	m.activities = activities
	m.fillURLs(ctx, m.activities)
	return m.Activities(), nil
}

// Create validates input against the loaded scope, persists it as a draft owned by the
// scope user and uploads files best-effort. A failed attachment never undoes the activity.
func (m *ActivityManager) Create(ctx context.Context, input domain.ActivityCreationData, files []domain.PendingFile) (domain.Activity, []domain.AttachmentResult, error) {
	if !ValidInterval(input.Start, input.End) {
		return domain.Activity{}, nil, rejected("interval", ErrInvalidInterval)
	}

	sameScope := input.Date == m.scopeDate
	existing := m.activities
	if !sameScope {
		var err error
		existing, err = m.storage.ActivitiesByScope(ctx, m.scopeUser, input.Date)
		if err != nil {
			return domain.Activity{}, nil, m.storageFailure("list activities for overlap", err)
		}
	}
	if FindOverlap(input.Start, input.End, existing, "") != nil {
		return domain.Activity{}, nil, rejected("overlap", ErrOverlapConflict)
	}

	description, err := m.checkDescription(input.Description)
	if err != nil {
		return domain.Activity{}, nil, err
	}

	if input.ProjectId != nil {
		if err := m.checkProjectAccess(ctx, *input.ProjectId); err != nil {
			return domain.Activity{}, nil, err
		}
	}

	created, err := m.storage.CreateActivity(ctx, domain.ActivityCreationData{
		UserId:      m.scopeUser,
		Date:        input.Date,
		Start:       input.Start,
		End:         input.End,
		ProjectId:   input.ProjectId,
		Description: description,
		State:       domain.StateDraft,
	})
	if err != nil {
		return domain.Activity{}, nil, m.storageFailure("create activity", err)
	}
	activitiesCreated.Inc()

	results := m.attach(ctx, &created, files)
	if sameScope {
		m.insertSorted(created)
	}
	return created, results, nil
}

// Update applies patch to the activity with id. An id outside the loaded scope yields (nil, nil).
func (m *ActivityManager) Update(ctx context.Context, id domain.ActivityId, patch domain.ActivityPatch) (*domain.Activity, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	current := m.activities[idx]
	if current.State == domain.StateSent && !m.caps.EditSent {
		return nil, rejected("locked", ErrActivityLocked)
	}

	date, start, end := current.Date, current.Start, current.End
	if patch.Date != nil {
		date = *patch.Date
	}
	if patch.Start != nil {
		start = *patch.Start
	}
	if patch.End != nil {
		end = *patch.End
	}
	if patch.Date != nil || patch.Start != nil || patch.End != nil {
		if !ValidInterval(start, end) {
			return nil, rejected("interval", ErrInvalidInterval)
		}
		existing := m.activities
		if date != m.scopeDate {
			var err error
			existing, err = m.storage.ActivitiesByScope(ctx, current.UserId, date)
			if err != nil {
				return nil, m.storageFailure("list activities for overlap", err)
			}
		}
		if FindOverlap(start, end, existing, id) != nil {
			return nil, rejected("overlap", ErrOverlapConflict)
		}
	}

	if patch.Description != nil {
		description, err := m.checkDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}

	if patch.ProjectId != nil && (current.ProjectId == nil || *current.ProjectId != *patch.ProjectId) {
		if err := m.checkProjectAccess(ctx, *patch.ProjectId); err != nil {
			return nil, err
		}
	}

	if patch.State != nil {
		if *patch.State == current.State {
			patch.State = nil
		} else if err := m.checkTransition(current.State, *patch.State); err != nil {
			return nil, err
		}
	}

	if patch.Empty() {
		return &current, nil
	}

	updated, err := m.storage.UpdateActivity(ctx, id, patch)
	if err != nil {
		return nil, m.storageFailure("update activity", err)
	}
	m.fillURLs(ctx, []domain.Activity{updated})

	m.removeAt(idx)
	if updated.Date == m.scopeDate {
		m.insertSorted(updated)
	}
	return &updated, nil
}

// Delete removes the activity with its documents. An id outside the loaded scope yields (false, nil).
func (m *ActivityManager) Delete(ctx context.Context, id domain.ActivityId) (bool, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	if m.activities[idx].State == domain.StateSent && !m.caps.DeleteSent {
		return false, rejected("locked", ErrActivityLocked)
	}

	docs, err := m.storage.DocumentsByActivity(ctx, id)
	if err != nil {
		return false, m.storageFailure("list documents", err)
	}
	if err := m.storage.DeleteActivity(ctx, id); err != nil {
		return false, m.storageFailure("delete activity", err)
	}
	// rows go first: a leftover object is harmless, a row without its object is not
	m.removeObjects(ctx, docs...)
	m.removeAt(idx)
	return true, nil
}

// SendAgenda moves every draft of scopeUserId in the loaded scope to enviado with one write.
func (m *ActivityManager) SendAgenda(ctx context.Context, scopeUserId domain.UserId) error {
	if !canAccessUser(m.caller, m.caps, scopeUserId) {
		return ErrNotOwner
	}

	var ids []domain.ActivityId
	for _, a := range m.activities {
		if a.UserId == scopeUserId && a.State == domain.StateDraft {
			ids = append(ids, a.Id)
		}
	}
	if len(ids) == 0 {
		return rejected("nothing_to_send", ErrNothingToSend)
	}

	updatedAt, err := m.storage.SetActivitiesState(ctx, ids, domain.StateSent)
	if err != nil {
		return m.storageFailure("send agenda", err)
	}
	for i := range m.activities {
		a := &m.activities[i]
		if a.UserId == scopeUserId && a.State == domain.StateDraft {
			a.State = domain.StateSent
			a.UpdatedAt = updatedAt
		}
	}
	agendasSent.Inc()
	activitiesSent.Add(float64(len(ids)))

	if m.notifier != nil {
		msg := fmt.Sprintf("Agenda del %s enviada con %d actividades", m.scopeDate, len(ids))
		if err := m.notifier.NotifySupervisor(ctx, scopeUserId, msg); err != nil {
			logger.Log.Warn("agenda sent but supervisor notification failed", "user_id", scopeUserId, "error", err)
		}
	}
	return nil
}

// ToggleState flips the activity between borrador and enviado.
func (m *ActivityManager) ToggleState(ctx context.Context, id domain.ActivityId) (*domain.Activity, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	current := m.activities[idx]
	next := domain.StateSent
	if current.State == domain.StateSent {
		next = domain.StateDraft
	}
	if err := m.checkTransition(current.State, next); err != nil {
		return nil, err
	}

	updated, err := m.storage.UpdateActivity(ctx, id, domain.ActivityPatch{State: &next})
	if err != nil {
		return nil, m.storageFailure("toggle activity state", err)
	}
	m.fillURLs(ctx, []domain.Activity{updated})
	m.activities[idx] = updated
	return &updated, nil
}

// TotalHours sums the duration of sent activities in the loaded scope.
func (m *ActivityManager) TotalHours() float64 {
	return sentHours(m.activities)
}

// Attach uploads files to an activity of the loaded scope under the edit rules.
func (m *ActivityManager) Attach(ctx context.Context, id domain.ActivityId, files []domain.PendingFile) ([]domain.AttachmentResult, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, internal_errors.NotFound("Activity not found")
	}
	if m.activities[idx].State == domain.StateSent && !m.caps.EditSent {
		return nil, rejected("locked", ErrActivityLocked)
	}
	return m.attach(ctx, &m.activities[idx], files), nil
}

// RemoveDocument deletes one document of an activity in the loaded scope under the delete rules.
func (m *ActivityManager) RemoveDocument(ctx context.Context, activityId domain.ActivityId, documentId domain.DocumentId) error {
	idx := m.indexOf(activityId)
	if idx < 0 {
		return internal_errors.NotFound("Activity not found")
	}
	if m.activities[idx].State == domain.StateSent && !m.caps.DeleteSent {
		return rejected("locked", ErrActivityLocked)
	}

	doc, err := m.storage.GetDocument(ctx, documentId)
	if err != nil {
		return m.storageFailure("get document", err)
	}
	if doc.ActivityId != activityId {
		return internal_errors.NotFound("Document not found")
	}
	if err := m.storage.DeleteDocument(ctx, documentId); err != nil {
		return m.storageFailure("delete document", err)
	}
	m.removeObjects(ctx, doc)

	a := &m.activities[idx]
	for i := range a.Documents {
		if a.Documents[i].Id == documentId {
			a.Documents = append(a.Documents[:i], a.Documents[i+1:]...)
			break
		}
	}
	return nil
}

func (m *ActivityManager) attach(ctx context.Context, a *domain.Activity, files []domain.PendingFile) []domain.AttachmentResult {
	if len(files) == 0 {
		return nil
	}
	results := make([]domain.AttachmentResult, 0, len(files))
	for _, f := range files {
		result := domain.AttachmentResult{Filename: f.Filename}
		doc, err := m.storeFile(ctx, a.Id, f)
		if err != nil {
			attachmentFailures.Inc()
			logger.Log.Error("attachment upload failed", "activity_id", a.Id, "filename", f.Filename, "error", err)
			result.Error = "No se pudo subir el archivo"
		} else {
			a.Documents = append(a.Documents, doc)
			result.Document = &doc
		}
		results = append(results, result)
	}
	return results
}

func (m *ActivityManager) storeFile(ctx context.Context, activityId domain.ActivityId, f domain.PendingFile) (domain.Document, error) {
	id := newDocumentId()
	key := documentKey(activityId, id, f.Filename)
	if err := m.media.Upload(ctx, key, bytes.NewReader(f.Data), f.Size, f.MimeType); err != nil {
		return domain.Document{}, fmt.Errorf("upload: %w", err)
	}

	doc, err := m.storage.CreateDocument(ctx, domain.Document{
		Id:          id,
		ActivityId:  activityId,
		Filename:    f.Filename,
		StoragePath: key,
		MimeType:    f.MimeType,
		SizeBytes:   f.Size,
		Width:       f.Width,
		Height:      f.Height,
	})
	if err != nil {
		if rmErr := m.media.Remove(ctx, key); rmErr != nil {
			logger.Log.Warn("failed to remove orphaned object", "key", key, "error", rmErr)
		}
		return domain.Document{}, fmt.Errorf("register document: %w", err)
	}
	m.fillDocumentURL(ctx, &doc)
	return doc, nil
}

func (m *ActivityManager) removeObjects(ctx context.Context, docs ...domain.Document) {
	if len(docs) == 0 {
		return
	}
	keys := make([]string, 0, len(docs))
	for _, d := range docs {
		keys = append(keys, d.StoragePath)
	}
	if err := m.media.Remove(ctx, keys...); err != nil {
		logger.Log.Warn("failed to remove document objects", "keys", keys, "error", err)
	}
}

func (m *ActivityManager) fillURLs(ctx context.Context, activities []domain.Activity) {
	for i := range activities {
		for j := range activities[i].Documents {
			m.fillDocumentURL(ctx, &activities[i].Documents[j])
		}
	}
}

func (m *ActivityManager) fillDocumentURL(ctx context.Context, doc *domain.Document) {
	url, err := m.media.URL(ctx, *doc)
	if err != nil {
		logger.Log.Warn("failed to build document url", "document_id", doc.Id, "error", err)
		return
	}
	doc.URL = url
}

// checkDescription measures the description as typed; it is stored verbatim and
// escaped only where it is rendered as HTML.
func (m *ActivityManager) checkDescription(description string) (string, error) {
	if utils.TextLength(description) < m.minDescription {
		return "", rejected("description", ErrInvalidDescription)
	}
	return description, nil
}

func (m *ActivityManager) checkProjectAccess(ctx context.Context, projectId domain.ProjectId) error {
	if m.caps.SkipProjectAccess {
		return nil
	}
	ok, err := m.storage.HasProjectAccess(ctx, projectId, m.caller.Id)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return rejected("project_access", ErrProjectAccessDenied)
		}
		return m.storageFailure("check project access", err)
	}
	if !ok {
		return rejected("project_access", ErrProjectAccessDenied)
	}
	return nil
}

func (m *ActivityManager) checkTransition(from, to domain.ActivityState) error {
	switch {
	case !to.Valid():
		return rejected("transition", ErrTransitionForbidden)
	case from == domain.StateDraft && to == domain.StateSent:
		return nil
	case from == domain.StateSent && to == domain.StateDraft && m.caps.RevertSent:
		return nil
	}
	return rejected("transition", ErrTransitionForbidden)
}

func (m *ActivityManager) storageFailure(op string, err error) error {
	return operationFailed(op, err, "caller_id", m.caller.Id)
}

func (m *ActivityManager) indexOf(id domain.ActivityId) int {
	for i := range m.activities {
		if m.activities[i].Id == id {
			return i
		}
	}
	return -1
}

func (m *ActivityManager) removeAt(idx int) {
	m.activities = append(m.activities[:idx], m.activities[idx+1:]...)
}

func (m *ActivityManager) insertSorted(a domain.Activity) {
	i := 0
	for i < len(m.activities) && m.activities[i].Start <= a.Start {
		i++
	}
	m.activities = append(m.activities, domain.Activity{})
	copy(m.activities[i+1:], m.activities[i:])
	m.activities[i] = a
}
