package session

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	"github.com/jrsteele09/mitti-dashboard/users"
	"github.com/rs/zerolog/log"
)

// Credentials is the part of the credential store the startup check needs.
type Credentials interface {
	Load(ctx context.Context) (string, error)
	ClearIf(ctx context.Context, credential string) (bool, error)
}

// ProfileFetcher fetches the identity behind the stored credential.
type ProfileFetcher func(ctx context.Context) (*users.User, error)

// Store owns the process-wide session. Reads are open to everyone; the write
// methods are for the auth service and the pipeline teardown path only.
type Store struct {
	mu          sync.RWMutex
	status      Status
	credential  string
	identity    *users.User
	subscribers []func(Snapshot)
	// notifyMu is taken before mu is released, so subscribers see changes
	// in the order they were made.
	notifyMu sync.Mutex

	initOnce sync.Once
	ready    chan struct{}
}

func NewStore() *Store {
	return &Store{
		status: StatusUnknown,
		ready:  make(chan struct{}),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ready is closed once the session has left StatusUnknown.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn to be called with every new snapshot, after the
// change is visible to Snapshot. Notifications are delivered one at a time in
// the order the changes were made; fn must not write to the session.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetAuthenticated records a trusted identity and the credential proving it.
func (s *Store) SetAuthenticated(credential string, identity *users.User) error {
	if credential == "" || identity == nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "authenticated session needs a credential and an identity")
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	s.credential = credential
	s.identity = identity.Clone()
	s.markReadyLocked()
	s.publishLocked(true)
	return nil
}

// SetAnonymous drops credential and identity together. Calling it on an
// anonymous session changes nothing and notifies nobody.
func (s *Store) SetAnonymous() {
	s.mu.Lock()
	s.publishLocked(s.setAnonymousLocked())
}

// Revoke is the pipeline teardown path: it makes the session anonymous only
// while credential is still the session's credential (or the session has not
// been settled yet), so a 401 for an old credential cannot end a newer
// session. It reports whether the session changed.
func (s *Store) Revoke(credential string) bool {
	s.mu.Lock()
	if s.status == StatusAuthenticated && s.credential != credential {
		s.mu.Unlock()
		return false
	}
	changed := s.setAnonymousLocked()
	s.publishLocked(changed)
	return changed
}

// Initialize runs the startup check once per Store; later calls return
// immediately. The credential is read synchronously, the profile fetch runs
// in the background. The outcome is applied only if nothing else has settled
// the session in the meantime.
func (s *Store) Initialize(ctx context.Context, creds Credentials, fetch ProfileFetcher) {
	s.initOnce.Do(func() {
		credential, err := creds.Load(ctx)
		if err != nil || credential == "" {
			if !errors.Is(err, errors.ErrNoCredential) && err != nil {
				log.Warn().Err(err).Msg("session: credential slot unreadable")
			}
			s.settle(StatusAnonymous, "", nil)
			return
		}

		go s.check(ctx, creds, fetch, credential)
	})
}

func (s *Store) check(ctx context.Context, creds Credentials, fetch ProfileFetcher, credential string) {
	identity, err := fetch(ctx)
	if err == nil && identity != nil {
		s.settle(StatusAuthenticated, credential, identity)
		return
	}

	log.Info().Err(err).Msg("session: stored credential rejected, starting anonymous")
	if _, clearErr := creds.ClearIf(ctx, credential); clearErr != nil {
		log.Err(clearErr).Msg("session: clearing rejected credential")
	}
	s.settle(StatusAnonymous, "", nil)
}

// settle applies the startup check's result if the session is still unknown.
func (s *Store) settle(status Status, credential string, identity *users.User) {
	s.mu.Lock()
	if s.status != StatusUnknown {
		s.markReadyLocked()
		s.mu.Unlock()
		log.Debug().Str("status", string(status)).Msg("session: startup result discarded, session already settled")
		return
	}

	if status == StatusAuthenticated {
		s.status = StatusAuthenticated
		s.credential = credential
		s.identity = identity.Clone()
	} else {
		s.setAnonymousLocked()
	}
	s.markReadyLocked()
	s.publishLocked(true)
}

// setAnonymousLocked is the single anonymous transition. It reports whether
// anything changed.
func (s *Store) setAnonymousLocked() bool {
	changed := s.status != StatusAnonymous
	s.status = StatusAnonymous
	s.credential = ""
	s.identity = nil
	s.markReadyLocked()
	return changed
}

func (s *Store) markReadyLocked() {
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Status:     s.status,
		Credential: s.credential,
		Identity:   s.identity.Clone(),
	}
}

// publishLocked releases mu and, when changed, hands the new snapshot to the
// subscribers.
func (s *Store) publishLocked(changed bool) {
	if !changed {
		s.mu.Unlock()
		return
	}
	snap, subs := s.snapshotLocked(), slices.Clone(s.subscribers)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
