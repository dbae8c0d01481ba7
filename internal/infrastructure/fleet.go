package infrastructure

import (
	"context"
	"log"
	"sync"
	"time"

	"project_navbat/internal/entities"
	"project_navbat/internal/interfaces"
)

// Session is a live, credential-bound listener managed by the fleet.
type Session interface {
	Identity() int64
	Stop()
}

// DialFunc opens a session for one credential. Injected so tests can run
// the fleet against fakes.
type DialFunc func(cred entities.Credential) (Session, error)

type sessionEntry struct {
	session Session
	ownerID int
}

// Fleet keeps the live session set consistent with the credential source.
// Strategy is stop-everything-then-restart-everything on any change: a
// brief full pause buys the guarantee that no session ever listens on a
// stale credential concurrently with its replacement.
type Fleet struct {
	creds    interfaces.CredentialSource
	dial     DialFunc
	interval time.Duration

	reconcileMu sync.Mutex // single-flight for Reconcile

	mu         sync.RWMutex
	sessions   map[string]sessionEntry // token -> live session
	identities map[int64]int           // bot identity -> owner id
	known      map[string]struct{}     // token set seen on the last reconcile
}

func NewFleet(creds interfaces.CredentialSource, dial DialFunc, interval time.Duration) *Fleet {
	return &Fleet{
		creds:      creds,
		dial:       dial,
		interval:   interval,
		sessions:   make(map[string]sessionEntry),
		identities: make(map[int64]int),
		known:      make(map[string]struct{}),
	}
}

// Reconcile fetches current credentials and swaps the session set when the
// token set changed. Unchanged set is a no-op (no session churn). A single
// rejected credential skips that session only.
func (f *Fleet) Reconcile(ctx context.Context) error {
	f.reconcileMu.Lock()
	defer f.reconcileMu.Unlock()

	creds, err := f.creds.ListActiveCredentials(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]entities.Credential, len(creds))
	for _, c := range creds {
		if c.Token == "" {
			continue
		}
		current[c.Token] = c
	}

	if f.sameTokens(current) {
		return nil
	}
	log.Printf("[fleet] credential set changed (%d active), restarting sessions", len(current))

	// Stop every live session before starting replacements. Stop blocks
	// until the receive loop has exited, so a rotated credential can never
	// have old and new listeners at once.
	f.mu.Lock()
	old := f.sessions
	f.sessions = make(map[string]sessionEntry, len(current))
	f.identities = make(map[int64]int, len(current))
	f.mu.Unlock()

	for _, entry := range old {
		entry.session.Stop()
	}

	for token, cred := range current {
		sess, err := f.dial(cred)
		if err != nil {
			log.Printf("[fleet] session start failed: %v", err)
			continue
		}
		f.mu.Lock()
		f.sessions[token] = sessionEntry{session: sess, ownerID: cred.OwnerID}
		f.identities[sess.Identity()] = cred.OwnerID
		f.mu.Unlock()
	}

	// Record the fetched set whether or not every dial succeeded. A token
	// the gateway rejects is retried when the set changes, not every tick;
	// retrying it each tick would churn the healthy sessions with it.
	known := make(map[string]struct{}, len(current))
	for token := range current {
		known[token] = struct{}{}
	}
	f.mu.Lock()
	f.known = known
	f.mu.Unlock()
	return nil
}

// sameTokens diffs the fetched set against the set seen on the previous
// reconcile, not against the live sessions: a credential that failed to
// dial is still a known token.
func (f *Fleet) sameTokens(current map[string]entities.Credential) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(current) != len(f.known) {
		return false
	}
	for token := range current {
		if _, ok := f.known[token]; !ok {
			return false
		}
	}
	return true
}

// ResolveTenant maps a session's bot identity to the owning tenant.
func (f *Fleet) ResolveTenant(botID int64) (int, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ownerID, ok := f.identities[botID]
	return ownerID, ok
}

// SessionCount reports the number of live sessions.
func (f *Fleet) SessionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// Run polls the credential source until ctx is cancelled. Reconcile errors
// are logged and retried next tick, never fatal.
func (f *Fleet) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	if err := f.Reconcile(ctx); err != nil {
		log.Printf("[fleet] reconcile error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			f.Shutdown()
			return
		case <-ticker.C:
			if err := f.Reconcile(ctx); err != nil {
				log.Printf("[fleet] reconcile error: %v", err)
			}
		}
	}
}

// Shutdown stops every live session.
func (f *Fleet) Shutdown() {
	f.reconcileMu.Lock()
	defer f.reconcileMu.Unlock()

	f.mu.Lock()
	old := f.sessions
	f.sessions = make(map[string]sessionEntry)
	f.identities = make(map[int64]int)
	f.known = make(map[string]struct{})
	f.mu.Unlock()

	for _, entry := range old {
		entry.session.Stop()
	}
}
