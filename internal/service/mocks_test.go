package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
	"basegraph.app/rendezvous/internal/store"
)

// memDB is an in-memory stand-in for Postgres. Transactions are serialized,
// which is what row locks give the real store for a single invitation.
type memDB struct {
	mu            sync.Mutex
	users         map[int64]model.User
	meetings      map[int64]model.Meeting
	invitations   map[int64]model.Invitation
	notifications []model.Notification
	channels      map[string]model.WatchChannel

	createNotificationErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:       make(map[int64]model.User),
		meetings:    make(map[int64]model.Meeting),
		invitations: make(map[int64]model.Invitation),
		channels:    make(map[string]model.WatchChannel),
	}
}

func (db *memDB) addUser(u model.User) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
	return &u
}

func (db *memDB) snapshot() *memDB {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := newMemDB()
	for k, v := range db.users {
		cp.users[k] = v
	}
	for k, v := range db.meetings {
		cp.meetings[k] = v
	}
	for k, v := range db.invitations {
		cp.invitations[k] = v
	}
	cp.notifications = append(cp.notifications, db.notifications...)
	for k, v := range db.channels {
		cp.channels[k] = v
	}
	return cp
}

func (db *memDB) restore(from *memDB) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = from.users
	db.meetings = from.meetings
	db.invitations = from.invitations
	db.notifications = from.notifications
	db.channels = from.channels
}

func (db *memDB) invitation(id int64) model.Invitation {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.invitations[id]
}

func (db *memDB) invitationsForMeeting(meetingID int64) []model.Invitation {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.Invitation
	for _, inv := range db.invitations {
		if inv.MeetingID == meetingID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (db *memDB) notificationsFor(recipientID int64) []model.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.Notification
	for _, n := range db.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

func (db *memDB) meeting(id int64) (model.Meeting, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	m, ok := db.meetings[id]
	return m, ok
}

func (db *memDB) meetingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.meetings)
}

func (db *memDB) Users() store.UserStore                 { return &memUserStore{db} }
func (db *memDB) Meetings() store.MeetingStore           { return &memMeetingStore{db} }
func (db *memDB) Invitations() store.InvitationStore     { return &memInvitationStore{db} }
func (db *memDB) Notifications() store.NotificationStore { return &memNotificationStore{db} }
func (db *memDB) WatchChannels() store.WatchChannelStore { return &memWatchChannelStore{db} }

type memUserStore struct{ db *memDB }

func (s *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) ListByEmails(_ context.Context, emails []string) ([]model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.User
	for _, u := range s.db.users {
		for _, e := range emails {
			if strings.EqualFold(u.Email, e) {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (s *memUserStore) ListByUsernames(_ context.Context, usernames []string) ([]model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.User
	for _, u := range s.db.users {
		if u.Username == nil {
			continue
		}
		for _, n := range usernames {
			if strings.EqualFold(*u.Username, n) {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (s *memUserStore) UpdateProviderToken(_ context.Context, id int64, refreshToken *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.ProviderRefreshToken = refreshToken
	s.db.users[id] = u
	return nil
}

type memMeetingStore struct{ db *memDB }

func (s *memMeetingStore) Create(_ context.Context, m *model.Meeting) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m.CreatedAt = time.Now()
	s.db.meetings[m.ID] = *m
	return nil
}

func (s *memMeetingStore) GetByID(_ context.Context, id int64) (*model.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *memMeetingStore) GetByExternalEventID(_ context.Context, externalEventID string) (*model.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.meetings {
		if m.ExternalEventID != nil && *m.ExternalEventID == externalEventID {
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memMeetingStore) SetExternalEventID(_ context.Context, id int64, externalEventID string) (*model.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.meetings[id]
	if !ok || m.ExternalEventID != nil {
		return nil, store.ErrNotFound
	}
	m.ExternalEventID = &externalEventID
	s.db.meetings[id] = m
	return &m, nil
}

type memInvitationStore struct{ db *memDB }

func (s *memInvitationStore) Create(_ context.Context, inv *model.Invitation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.invitations {
		if existing.MeetingID == inv.MeetingID && existing.InviteeID == inv.InviteeID {
			return fmt.Errorf("duplicate invitation for meeting %d invitee %d", inv.MeetingID, inv.InviteeID)
		}
	}
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	s.db.invitations[inv.ID] = *inv
	return nil
}

func (s *memInvitationStore) GetForUpdate(_ context.Context, id int64) (*model.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inv, ok := s.db.invitations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &inv, nil
}

func (s *memInvitationStore) GetByMeetingAndEmail(_ context.Context, meetingID int64, email string) (*model.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, inv := range s.db.invitations {
		u, ok := s.db.users[inv.InviteeID]
		if inv.MeetingID == meetingID && ok && strings.EqualFold(u.Email, email) {
			return &inv, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memInvitationStore) UpdateStatus(_ context.Context, id int64, expected, next model.InvitationStatus) (*model.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inv, ok := s.db.invitations[id]
	if !ok || inv.Status != expected {
		return nil, store.ErrNotFound
	}
	inv.Status = next
	inv.UpdatedAt = time.Now()
	s.db.invitations[id] = inv
	return &inv, nil
}

type memNotificationStore struct{ db *memDB }

func (s *memNotificationStore) Create(_ context.Context, n *model.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.createNotificationErr != nil {
		return s.db.createNotificationErr
	}
	n.CreatedAt = time.Now()
	s.db.notifications = append(s.db.notifications, *n)
	return nil
}

func (s *memNotificationStore) ListRecent(_ context.Context, recipientID int64, limit int32) ([]model.NotificationView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.NotificationView
	for i := len(s.db.notifications) - 1; i >= 0 && int32(len(out)) < limit; i-- {
		n := s.db.notifications[i]
		if n.RecipientID != recipientID {
			continue
		}
		view := model.NotificationView{Notification: n}
		if n.InvitationID != nil {
			if inv, ok := s.db.invitations[*n.InvitationID]; ok {
				status := inv.Status
				view.InvitationStatus = &status
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id, recipientID int64) (*model.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, n := range s.db.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			s.db.notifications[i].IsRead = true
			out := s.db.notifications[i]
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

type memWatchChannelStore struct{ db *memDB }

func (s *memWatchChannelStore) Create(_ context.Context, ch *model.WatchChannel) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ch.CreatedAt = time.Now()
	s.db.channels[ch.ChannelID] = *ch
	return nil
}

func (s *memWatchChannelStore) GetByChannelID(_ context.Context, channelID string) (*model.WatchChannel, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ch, ok := s.db.channels[channelID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ch, nil
}

// memTxRunner serializes transactions and rolls back to a snapshot on error.
type memTxRunner struct {
	db      *memDB
	txMu    sync.Mutex
	withTxFn func(ctx context.Context, fn func(service.StoreProvider) error) error
	calls   int
}

func (r *memTxRunner) WithTx(ctx context.Context, fn func(service.StoreProvider) error) error {
	if r.withTxFn != nil {
		return r.withTxFn(ctx, fn)
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.calls++

	before := r.db.snapshot()
	if err := fn(r.db); err != nil {
		r.db.restore(before)
		return err
	}
	return nil
}

type mockCalendar struct {
	mu sync.Mutex

	createEventFn            func(ctx context.Context, user *model.User, payload calendar.EventPayload) (string, error)
	updateAttendeeResponseFn func(ctx context.Context, user *model.User, eventID, email string, status calendar.ResponseStatus) error
	registerChangeWatchFn    func(ctx context.Context, user *model.User, channelID, callbackURL string) (*calendar.WatchHandle, error)
	fetchEventFn             func(ctx context.Context, user *model.User, eventID string) (*calendar.RemoteEvent, error)

	createEventCalls int
	updateCalls      int
	fetchCalls       int
}

func (m *mockCalendar) CreateEvent(ctx context.Context, user *model.User, payload calendar.EventPayload) (string, error) {
	m.mu.Lock()
	m.createEventCalls++
	m.mu.Unlock()
	if m.createEventFn != nil {
		return m.createEventFn(ctx, user, payload)
	}
	return "", errors.New("CreateEvent not stubbed")
}

func (m *mockCalendar) UpdateAttendeeResponse(ctx context.Context, user *model.User, eventID, email string, status calendar.ResponseStatus) error {
	m.mu.Lock()
	m.updateCalls++
	m.mu.Unlock()
	if m.updateAttendeeResponseFn != nil {
		return m.updateAttendeeResponseFn(ctx, user, eventID, email, status)
	}
	return nil
}

func (m *mockCalendar) RegisterChangeWatch(ctx context.Context, user *model.User, channelID, callbackURL string) (*calendar.WatchHandle, error) {
	if m.registerChangeWatchFn != nil {
		return m.registerChangeWatchFn(ctx, user, channelID, callbackURL)
	}
	return &calendar.WatchHandle{ChannelID: channelID}, nil
}

func (m *mockCalendar) FetchEvent(ctx context.Context, user *model.User, eventID string) (*calendar.RemoteEvent, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.fetchEventFn != nil {
		return m.fetchEventFn(ctx, user, eventID)
	}
	return nil, errors.New("FetchEvent not stubbed")
}

type emitted struct {
	UserID  int64
	Event   realtime.Event
	Payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(_ context.Context, userID int64, event realtime.Event, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{UserID: userID, Event: event, Payload: payload})
	return nil
}

func (e *recordingEmitter) For(userID int64) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, ev := range e.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out
}

func (e *recordingEmitter) All() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

func ptr[T any](v T) *T {
	return &v
}
