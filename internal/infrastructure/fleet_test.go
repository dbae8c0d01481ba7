package infrastructure

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_navbat/internal/entities"
)

type fakeCredSource struct {
	mu    sync.Mutex
	creds []entities.Credential
	err   error
	calls int
}

func (s *fakeCredSource) ListActiveCredentials(ctx context.Context) ([]entities.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]entities.Credential(nil), s.creds...), nil
}

func (s *fakeCredSource) set(creds []entities.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

type fakeSession struct {
	id      int64
	stopped atomic.Bool
}

func (s *fakeSession) Identity() int64 { return s.id }
func (s *fakeSession) Stop()           { s.stopped.Store(true) }

// fakeDialer tracks every session it has opened, and how many are live
// per token.
type fakeDialer struct {
	mu       sync.Mutex
	nextID   int64
	sessions []*fakeSession
	byToken  map[string][]*fakeSession
	failFor  map[string]bool
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{byToken: make(map[string][]*fakeSession), failFor: make(map[string]bool)}
}

func (d *fakeDialer) dial(cred entities.Credential) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failFor[cred.Token] {
		return nil, errors.New("invalid token")
	}
	d.nextID++
	s := &fakeSession{id: d.nextID}
	d.sessions = append(d.sessions, s)
	d.byToken[cred.Token] = append(d.byToken[cred.Token], s)
	return s, nil
}

func (d *fakeDialer) liveForToken(token string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	live := 0
	for _, s := range d.byToken[token] {
		if !s.stopped.Load() {
			live++
		}
	}
	return live
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

func TestFleetReconcileStartsSessions(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{
		{OwnerID: 1, Token: "tok-a"},
		{OwnerID: 2, Token: "tok-b"},
	}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)

	require.NoError(t, fleet.Reconcile(context.Background()))

	assert.Equal(t, 2, fleet.SessionCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-a"))
	assert.Equal(t, 1, dialer.liveForToken("tok-b"))

	owner, ok := fleet.ResolveTenant(dialer.sessions[0].id)
	require.True(t, ok)
	assert.Contains(t, []int{1, 2}, owner)
}

func TestFleetReconcileUnchangedSetIsNoOp(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{{OwnerID: 1, Token: "tok-a"}}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)

	require.NoError(t, fleet.Reconcile(context.Background()))
	require.NoError(t, fleet.Reconcile(context.Background()))
	require.NoError(t, fleet.Reconcile(context.Background()))

	// Same token set never churns sessions.
	assert.Equal(t, 1, dialer.dialCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-a"))
}

func TestFleetPersistentBadTokenDoesNotChurnHealthySessions(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{
		{OwnerID: 1, Token: "tok-good"},
		{OwnerID: 2, Token: "tok-bad"},
	}}
	dialer := newFakeDialer()
	dialer.failFor["tok-bad"] = true
	fleet := NewFleet(source, dialer.dial, 0)

	require.NoError(t, fleet.Reconcile(context.Background()))
	require.NoError(t, fleet.Reconcile(context.Background()))
	require.NoError(t, fleet.Reconcile(context.Background()))

	// The rejected credential is part of the known set: as long as the set
	// is unchanged, later ticks neither re-dial it nor restart the healthy
	// session alongside it. Only the healthy session was ever opened.
	assert.Equal(t, 1, dialer.dialCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-good"))
	assert.Equal(t, 1, fleet.SessionCount())

	// A set change still retries the bad credential.
	dialer.mu.Lock()
	dialer.failFor["tok-bad"] = false
	dialer.mu.Unlock()
	source.set([]entities.Credential{
		{OwnerID: 1, Token: "tok-good"},
		{OwnerID: 2, Token: "tok-bad2"},
	})
	require.NoError(t, fleet.Reconcile(context.Background()))
	assert.Equal(t, 2, fleet.SessionCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-bad2"))
}

func TestFleetRotationNeverOverlapsListeners(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{{OwnerID: 1, Token: "tok-old"}}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)
	require.NoError(t, fleet.Reconcile(context.Background()))

	// Owner rotates their token.
	source.set([]entities.Credential{{OwnerID: 1, Token: "tok-new"}})
	require.NoError(t, fleet.Reconcile(context.Background()))

	assert.Equal(t, 0, dialer.liveForToken("tok-old"))
	assert.Equal(t, 1, dialer.liveForToken("tok-new"))
	assert.Equal(t, 1, fleet.SessionCount())
}

func TestFleetReconcileSkipsRejectedCredential(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{
		{OwnerID: 1, Token: "tok-good"},
		{OwnerID: 2, Token: "tok-bad"},
	}}
	dialer := newFakeDialer()
	dialer.failFor["tok-bad"] = true
	fleet := NewFleet(source, dialer.dial, 0)

	require.NoError(t, fleet.Reconcile(context.Background()))

	// One rejected credential does not take the other shop down.
	assert.Equal(t, 1, fleet.SessionCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-good"))
}

func TestFleetCredentialRemoval(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{
		{OwnerID: 1, Token: "tok-a"},
		{OwnerID: 2, Token: "tok-b"},
	}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)
	require.NoError(t, fleet.Reconcile(context.Background()))

	source.set([]entities.Credential{{OwnerID: 1, Token: "tok-a"}})
	require.NoError(t, fleet.Reconcile(context.Background()))

	assert.Equal(t, 1, fleet.SessionCount())
	assert.Equal(t, 0, dialer.liveForToken("tok-b"))
	assert.Equal(t, 1, dialer.liveForToken("tok-a"))
}

func TestFleetSourceErrorKeepsSessions(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{{OwnerID: 1, Token: "tok-a"}}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)
	require.NoError(t, fleet.Reconcile(context.Background()))

	source.mu.Lock()
	source.err = errors.New("store down")
	source.mu.Unlock()

	assert.Error(t, fleet.Reconcile(context.Background()))
	// Transient source failure leaves the live set untouched.
	assert.Equal(t, 1, fleet.SessionCount())
	assert.Equal(t, 1, dialer.liveForToken("tok-a"))
}

func TestFleetShutdownStopsEverything(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{
		{OwnerID: 1, Token: "tok-a"},
		{OwnerID: 2, Token: "tok-b"},
	}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)
	require.NoError(t, fleet.Reconcile(context.Background()))

	fleet.Shutdown()

	assert.Equal(t, 0, fleet.SessionCount())
	assert.Equal(t, 0, dialer.liveForToken("tok-a"))
	assert.Equal(t, 0, dialer.liveForToken("tok-b"))

	_, ok := fleet.ResolveTenant(1)
	assert.False(t, ok)
}

func TestFleetConcurrentReconciles(t *testing.T) {
	source := &fakeCredSource{creds: []entities.Credential{{OwnerID: 1, Token: "tok-a"}}}
	dialer := newFakeDialer()
	fleet := NewFleet(source, dialer.dial, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fleet.Reconcile(context.Background())
		}()
	}
	wg.Wait()

	// Single-flight reconcile: concurrent calls serialize, the token still
	// has exactly one live listener.
	assert.Equal(t, 1, dialer.liveForToken("tok-a"))
	assert.Equal(t, 1, fleet.SessionCount())
}
