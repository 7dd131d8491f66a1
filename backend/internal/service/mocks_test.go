package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
)

// --- Activity storage ---

// MockActivityStorage keeps rows in memory so lifecycle flows can be exercised end to end.
// Any *Func field set by a test replaces the default behaviour of that method.
type MockActivityStorage struct {
	ActivitiesByScopeFunc  func(ctx context.Context, userId domain.UserId, date domain.Date) ([]domain.Activity, error)
	CreateActivityFunc     func(ctx context.Context, data domain.ActivityCreationData) (domain.Activity, error)
	UpdateActivityFunc     func(ctx context.Context, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error)
	DeleteActivityFunc     func(ctx context.Context, id domain.ActivityId) error
	DeleteDocumentFunc     func(ctx context.Context, id domain.DocumentId) error
	SetActivitiesStateFunc func(ctx context.Context, ids []domain.ActivityId, state domain.ActivityState) (time.Time, error)
	CreateDocumentFunc     func(ctx context.Context, doc domain.Document) (domain.Document, error)
	HasProjectAccessFunc   func(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error)

	mu         sync.Mutex
	seq        int
	rows       map[domain.ActivityId]domain.Activity
	docs       map[domain.DocumentId]domain.Document
	access     map[domain.ProjectId][]domain.UserId
	calls      map[string]int
	lastIds    []domain.ActivityId
	lastCreate domain.ActivityCreationData
}

func NewMockActivityStorage() *MockActivityStorage {
	return &MockActivityStorage{
		rows:   map[domain.ActivityId]domain.Activity{},
		docs:   map[domain.DocumentId]domain.Document{},
		access: map[domain.ProjectId][]domain.UserId{},
		calls:  map[string]int{},
	}
}

func (m *MockActivityStorage) called(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *MockActivityStorage) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockActivityStorage) GrantAccess(projectId domain.ProjectId, userId domain.UserId) {
	m.access[projectId] = append(m.access[projectId], userId)
}

// Seed stores a row directly, bypassing validation.
func (m *MockActivityStorage) Seed(a domain.Activity) domain.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Id == "" {
		m.seq++
		a.Id = fmt.Sprintf("act-%d", m.seq)
	}
	if a.State == "" {
		a.State = domain.StateDraft
	}
	m.rows[a.Id] = a
	return a
}

func (m *MockActivityStorage) Row(id domain.ActivityId) (domain.Activity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	return a, ok
}

func (m *MockActivityStorage) withDocs(a domain.Activity) domain.Activity {
	a.Documents = nil
	for _, d := range m.docs {
		if d.ActivityId == a.Id {
			a.Documents = append(a.Documents, d)
		}
	}
	sort.Slice(a.Documents, func(i, j int) bool { return a.Documents[i].Id < a.Documents[j].Id })
	return a
}

func (m *MockActivityStorage) sorted(filter func(domain.Activity) bool) []domain.Activity {
	var out []domain.Activity
	for _, a := range m.rows {
		if filter(a) {
			out = append(out, m.withDocs(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Start < out[j].Start
	})
	return out
}

func (m *MockActivityStorage) ActivitiesByScope(ctx context.Context, userId domain.UserId, date domain.Date) ([]domain.Activity, error) {
	m.called("ActivitiesByScope")
	if m.ActivitiesByScopeFunc != nil {
		return m.ActivitiesByScopeFunc(ctx, userId, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a domain.Activity) bool { return a.UserId == userId && a.Date == date }), nil
}

func (m *MockActivityStorage) ActivitiesByDate(ctx context.Context, date domain.Date, userId *domain.UserId) ([]domain.Activity, error) {
	m.called("ActivitiesByDate")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a domain.Activity) bool {
		return a.Date == date && (userId == nil || a.UserId == *userId)
	}), nil
}

func (m *MockActivityStorage) ActivitiesInRange(ctx context.Context, userId domain.UserId, from, to domain.Date) ([]domain.Activity, error) {
	m.called("ActivitiesInRange")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a domain.Activity) bool {
		return a.UserId == userId && !a.Date.Before(from) && !to.Before(a.Date)
	}), nil
}

func (m *MockActivityStorage) GetActivity(ctx context.Context, id domain.ActivityId) (domain.Activity, error) {
	m.called("GetActivity")
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return domain.Activity{}, internal_errors.NotFound("Activity not found")
	}
	return m.withDocs(a), nil
}

func (m *MockActivityStorage) CreateActivity(ctx context.Context, data domain.ActivityCreationData) (domain.Activity, error) {
	m.called("CreateActivity")
	m.mu.Lock()
	m.lastCreate = data
	m.mu.Unlock()
	if m.CreateActivityFunc != nil {
		return m.CreateActivityFunc(ctx, data)
	}
	now := time.Now()
	return m.Seed(domain.Activity{
		UserId:      data.UserId,
		Date:        data.Date,
		Start:       data.Start,
		End:         data.End,
		ProjectId:   data.ProjectId,
		Description: data.Description,
		State:       data.State,
		CreatedAt:   now,
		UpdatedAt:   now,
	}), nil
}

func (m *MockActivityStorage) UpdateActivity(ctx context.Context, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error) {
	m.called("UpdateActivity")
	if m.UpdateActivityFunc != nil {
		return m.UpdateActivityFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return domain.Activity{}, internal_errors.NotFound("Activity not found")
	}
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.Start != nil {
		a.Start = *patch.Start
	}
	if patch.End != nil {
		a.End = *patch.End
	}
	if patch.ClearProject {
		a.ProjectId = nil
	} else if patch.ProjectId != nil {
		a.ProjectId = patch.ProjectId
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.State != nil {
		a.State = *patch.State
	}
	a.UpdatedAt = time.Now()
	m.rows[id] = a
	return m.withDocs(a), nil
}

func (m *MockActivityStorage) DeleteActivity(ctx context.Context, id domain.ActivityId) error {
	m.called("DeleteActivity")
	if m.DeleteActivityFunc != nil {
		return m.DeleteActivityFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return internal_errors.NotFound("Activity not found")
	}
	for docId, d := range m.docs {
		if d.ActivityId == id {
			delete(m.docs, docId)
		}
	}
	delete(m.rows, id)
	return nil
}

func (m *MockActivityStorage) SetActivitiesState(ctx context.Context, ids []domain.ActivityId, state domain.ActivityState) (time.Time, error) {
	m.called("SetActivitiesState")
	m.mu.Lock()
	m.lastIds = append([]domain.ActivityId(nil), ids...)
	m.mu.Unlock()
	if m.SetActivitiesStateFunc != nil {
		return m.SetActivitiesStateFunc(ctx, ids, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		a := m.rows[id]
		a.State = state
		a.UpdatedAt = now
		m.rows[id] = a
	}
	return now, nil
}

func (m *MockActivityStorage) HasProjectAccess(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error) {
	m.called("HasProjectAccess")
	if m.HasProjectAccessFunc != nil {
		return m.HasProjectAccessFunc(ctx, projectId, userId)
	}
	for _, u := range m.access[projectId] {
		if u == userId {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockActivityStorage) CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	m.called("CreateDocument")
	if m.CreateDocumentFunc != nil {
		return m.CreateDocumentFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.CreatedAt = time.Now()
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *MockActivityStorage) DocumentsByActivity(ctx context.Context, activityId domain.ActivityId) ([]domain.Document, error) {
	m.called("DocumentsByActivity")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withDocs(domain.Activity{Id: activityId}).Documents, nil
}

func (m *MockActivityStorage) GetDocument(ctx context.Context, id domain.DocumentId) (domain.Document, error) {
	m.called("GetDocument")
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return domain.Document{}, internal_errors.NotFound("Document not found")
	}
	return d, nil
}

func (m *MockActivityStorage) DeleteDocument(ctx context.Context, id domain.DocumentId) error {
	m.called("DeleteDocument")
	if m.DeleteDocumentFunc != nil {
		return m.DeleteDocumentFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return internal_errors.NotFound("Document not found")
	}
	delete(m.docs, id)
	return nil
}

// --- Media storage ---

type MockMediaStorage struct {
	UploadFunc func(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error
	RemoveFunc func(ctx context.Context, keys ...string) error

	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func NewMockMediaStorage() *MockMediaStorage {
	return &MockMediaStorage{objects: map[string][]byte{}}
}

func (m *MockMediaStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	if m.UploadFunc != nil {
		if err := m.UploadFunc(ctx, key, r, size, mimeType); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MockMediaStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, internal_errors.NotFound("File not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *MockMediaStorage) Remove(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	m.removed = append(m.removed, keys...)
	for _, k := range keys {
		delete(m.objects, k)
	}
	m.mu.Unlock()
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, keys...)
	}
	return nil
}

func (m *MockMediaStorage) URL(ctx context.Context, doc domain.Document) (string, error) {
	return "/v1/documents/" + doc.Id + "/download", nil
}

func (m *MockMediaStorage) Objects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *MockMediaStorage) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// --- Notifier ---

type sentNotification struct {
	UserId  domain.UserId
	Kind    domain.NotificationKind
	Message string
}

type MockNotifier struct {
	Err error

	mu         sync.Mutex
	direct     []sentNotification
	supervisor []sentNotification
}

func (m *MockNotifier) Notify(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, message string) error {
	m.mu.Lock()
	m.direct = append(m.direct, sentNotification{userId, kind, message})
	m.mu.Unlock()
	return m.Err
}

func (m *MockNotifier) NotifySupervisor(ctx context.Context, staffId domain.UserId, message string) error {
	m.mu.Lock()
	m.supervisor = append(m.supervisor, sentNotification{staffId, domain.NotificationSystem, message})
	m.mu.Unlock()
	return m.Err
}
