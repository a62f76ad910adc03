package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

// --- users ---

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[int]*models.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int]*models.User{}, nextID: 100}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	u.ID = r.nextID
	u.IsActive = true
	u.CreatedAt, u.UpdatedAt = testNow, testNow
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// --- preferences ---

type fakePrefRepo struct {
	prefs      []models.SportPreference
	nextID     int
	listErr    error
	createErr  error
	validSport func(id int) bool
}

func (r *fakePrefRepo) ListByUser(_ context.Context, userID int) ([]models.SportPreference, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []models.SportPreference{}
	for _, p := range r.prefs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePrefRepo) GetByID(_ context.Context, userID, id int) (*models.SportPreference, error) {
	for _, p := range r.prefs {
		if p.ID == id && p.UserID == userID {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPreferenceNotFound
}

func (r *fakePrefRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.SportPreference) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.validSport != nil && !r.validSport(p.SportID) {
		return repositories.ErrPreferenceSportInvalid
	}
	for _, existing := range r.prefs {
		if existing.UserID == p.UserID && existing.SportID == p.SportID {
			return repositories.ErrPreferenceConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.prefs = append(r.prefs, *p)
	return nil
}

func (r *fakePrefRepo) Update(_ context.Context, p *models.SportPreference) error {
	for i := range r.prefs {
		if r.prefs[i].ID == p.ID && r.prefs[i].UserID == p.UserID {
			r.prefs[i] = *p
			return nil
		}
	}
	return repositories.ErrPreferenceNotFound
}

func (r *fakePrefRepo) Delete(_ context.Context, userID, id int) error {
	for i := range r.prefs {
		if r.prefs[i].ID == id && r.prefs[i].UserID == userID {
			r.prefs = append(r.prefs[:i], r.prefs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPreferenceNotFound
}

func (r *fakePrefRepo) DeleteAllByUser(_ context.Context, _ repositories.SQLExecutor, userID int) error {
	kept := r.prefs[:0]
	for _, p := range r.prefs {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.prefs = kept
	return nil
}

// --- events ---

type fakeEventRepo struct {
	mu            sync.Mutex
	events        map[int]*models.Event
	nextID        int
	listed        []models.Event
	listErr       error
	lastFilter    repositories.EventFilter
	candidateErr  error
	candidateCall []repositories.CandidateFilter
	started       int64
	completed     int64
	statusUpdates map[int]models.EventStatus
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: map[int]*models.Event{}, nextID: 500, statusUpdates: map[int]models.EventStatus{}}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeEventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEventRepo) Update(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id int, status models.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.Status = status
	r.statusUpdates[id] = status
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := append([]models.Event(nil), r.listed...)
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Candidates applies the joinable filter over the stored events.
func (r *fakeEventRepo) Candidates(_ context.Context, filter repositories.CandidateFilter) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidateCall = append(r.candidateCall, filter)
	if r.candidateErr != nil {
		return nil, r.candidateErr
	}

	sports := map[int]bool{}
	for _, id := range filter.SportIDs {
		sports[id] = true
	}
	excluded := map[int]bool{}
	for _, id := range filter.ExcludeEventIDs {
		excluded[id] = true
	}

	var out []models.Event
	for _, e := range r.events {
		if !e.IsPublic || e.Status != models.EventStatusUpcoming || e.StartDateTime.Before(filter.Now) || e.IsFull() {
			continue
		}
		if len(sports) > 0 && !sports[e.SportID] {
			continue
		}
		if excluded[e.ID] {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDateTime.Equal(out[j].StartDateTime) {
			return out[i].StartDateTime.Before(out[j].StartDateTime)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeEventRepo) StartDue(context.Context, time.Time) (int64, error)    { return r.started, nil }
func (r *fakeEventRepo) CompleteDue(context.Context, time.Time) (int64, error) { return r.completed, nil }

// --- participants ---

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[int]*models.Participant
	nextID       int
	history      []models.ParticipationHistory
	historyErr   error
	// lockedWith collects the executors passed to the FOR UPDATE reads.
	lockedWith []repositories.SQLExecutor
}

func newFakeParticipantRepo(ps ...*models.Participant) *fakeParticipantRepo {
	r := &fakeParticipantRepo{participants: map[int]*models.Participant{}, nextID: 900}
	for _, p := range ps {
		r.participants[p.ID] = p
	}
	return r
}

func (r *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.JoinedAt = testNow
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) GetByIDForUpdate(_ context.Context, exec repositories.SQLExecutor, eventID, id int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockedWith = append(r.lockedWith, exec)
	p, ok := r.participants[id]
	if !ok || p.EventID != eventID {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) GetByEventAndUser(_ context.Context, eventID, userID int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.EventID == eventID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) GetByEventAndUserForUpdate(ctx context.Context, exec repositories.SQLExecutor, eventID, userID int) (*models.Participant, error) {
	r.mu.Lock()
	r.lockedWith = append(r.lockedWith, exec)
	r.mu.Unlock()
	return r.GetByEventAndUser(ctx, eventID, userID)
}

func (r *fakeParticipantRepo) ListByEvent(_ context.Context, eventID int) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Participant{}
	for _, p := range r.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) CountConfirmed(_ context.Context, _ repositories.SQLExecutor, eventID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.participants {
		if p.EventID == eventID && p.Status == models.ParticipantConfirmed {
			n++
		}
	}
	return n, nil
}

func (r *fakeParticipantRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.ParticipantStatus, confirmedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	if confirmedAt != nil {
		p.ConfirmedAt = confirmedAt
	}
	return nil
}

func (r *fakeParticipantRepo) SetRating(_ context.Context, id int, rating int, feedback *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Rating = &rating
	p.Feedback = feedback
	return nil
}

func (r *fakeParticipantRepo) HistoryByUser(context.Context, int) ([]models.ParticipationHistory, error) {
	return r.history, r.historyErr
}

// --- notifications ---

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
	unread  int
	markErr error
}

func (r *fakeNotificationRepo) Create(_ context.Context, _ repositories.SQLExecutor, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID int) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range r.created {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(context.Context, int) (int, error) { return r.unread, nil }

func (r *fakeNotificationRepo) MarkAllRead(context.Context, int) (int64, error) {
	n := int64(r.unread)
	r.unread = 0
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(context.Context, int, int) error { return r.markErr }

// --- live ---

type publishedMessage struct {
	EventID int
	Type    string
	Payload interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *fakePublisher) PublishEvent(eventID int, msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{EventID: eventID, Type: msgType, Payload: payload})
}
