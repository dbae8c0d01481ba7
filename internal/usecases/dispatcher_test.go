package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_navbat/internal/entities"
)

type fakeDispatchStore struct {
	mu        sync.Mutex
	turns     []entities.TurnNotice
	reminders []entities.ReminderNotice
	fetchErr  error
}

// PendingTurns mimics the store's fetch-and-flag: returned rows are gone
// on the next call.
func (s *fakeDispatchStore) PendingTurns(ctx context.Context) ([]entities.TurnNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := s.turns
	s.turns = nil
	return out, nil
}

func (s *fakeDispatchStore) DueReminders(ctx context.Context) ([]entities.ReminderNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := s.reminders
	s.reminders = nil
	return out, nil
}

type sentNote struct {
	token  string
	chatID int64
	text   string
}

type notifyRecorder struct {
	mu      sync.Mutex
	sent    []sentNote
	failFor map[int64]bool
}

func (r *notifyRecorder) notify(token string, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[chatID] {
		return errors.New("gateway rejected")
	}
	r.sent = append(r.sent, sentNote{token: token, chatID: chatID, text: text})
	return nil
}

func TestDispatchTurnsBilingual(t *testing.T) {
	store := &fakeDispatchStore{turns: []entities.TurnNotice{
		{BookingID: 1, ChatID: 100, Num: 105, Barber: "Usta 1", BotToken: "tok-a", ShopName: "Shop A"},
	}}
	rec := &notifyRecorder{}
	d := NewDispatcher(store, rec.notify)

	d.DispatchTurns()

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "tok-a", rec.sent[0].token)
	assert.Equal(t, int64(100), rec.sent[0].chatID)
	// One message carrying both languages.
	assert.Contains(t, rec.sent[0].text, "#105")
	assert.Contains(t, rec.sent[0].text, "navbatingiz")
	assert.Contains(t, rec.sent[0].text, "очередь")
}

func TestDispatchTurnsFailureDoesNotBlockBatch(t *testing.T) {
	store := &fakeDispatchStore{turns: []entities.TurnNotice{
		{BookingID: 1, ChatID: 100, Num: 105, Barber: "Usta 1", BotToken: "tok-a"},
		{BookingID: 2, ChatID: 200, Num: 106, Barber: "Usta 2", BotToken: "tok-a"},
		{BookingID: 3, ChatID: 300, Num: 107, Barber: "Usta 1", BotToken: "tok-b"},
	}}
	rec := &notifyRecorder{failFor: map[int64]bool{200: true}}
	d := NewDispatcher(store, rec.notify)

	d.DispatchTurns()

	require.Len(t, rec.sent, 2)
	assert.Equal(t, int64(100), rec.sent[0].chatID)
	assert.Equal(t, int64(300), rec.sent[1].chatID)

	// Flagged at fetch time: the failed notice is not retried next run.
	d.DispatchTurns()
	assert.Len(t, rec.sent, 2)
}

func TestDispatchReminders(t *testing.T) {
	store := &fakeDispatchStore{reminders: []entities.ReminderNotice{
		{ReminderID: 1, ChatID: 100, Barber: "Usta 1", BotToken: "tok-a"},
	}}
	rec := &notifyRecorder{}
	d := NewDispatcher(store, rec.notify)

	d.DispatchReminders()

	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].text, "Usta 1")
	assert.True(t, strings.Contains(rec.sent[0].text, "/start"))
}

func TestDispatchRemindersSkipsTokenlessOwner(t *testing.T) {
	store := &fakeDispatchStore{reminders: []entities.ReminderNotice{
		{ReminderID: 1, ChatID: 100, Barber: "Usta 1", BotToken: ""},
		{ReminderID: 2, ChatID: 200, Barber: "Usta 2", BotToken: "tok-a"},
	}}
	rec := &notifyRecorder{}
	d := NewDispatcher(store, rec.notify)

	d.DispatchReminders()

	// No gateway is opened for a shop without a token.
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "tok-a", rec.sent[0].token)
	assert.Equal(t, int64(200), rec.sent[0].chatID)
}

func TestDispatchFetchErrorSendsNothing(t *testing.T) {
	store := &fakeDispatchStore{fetchErr: errors.New("store down")}
	rec := &notifyRecorder{}
	d := NewDispatcher(store, rec.notify)

	d.DispatchTurns()
	d.DispatchReminders()

	assert.Empty(t, rec.sent)
}
