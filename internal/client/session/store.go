package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/logging"
)

// Store holds the process-wide session. It is safe for concurrent use; all
// mutations persist through the TokenStore while holding the lock so the
// durable copy and the in-memory copy never disagree.
type Store struct {
	mu     sync.RWMutex
	tokens TokenStore
	log    logging.Logger

	token  string
	user   *models.User
	status Status
	gen    uint64
}

func NewStore(tokens TokenStore, log logging.Logger) *Store {
	return &Store{tokens: tokens, log: log, status: Unverified}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Token: s.token, Status: s.status, Generation: s.gen}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Token returns the current bearer token. It satisfies api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Restore loads the persisted token and leaves the session Unverified. A
// stored value that can no longer be opened is discarded.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.tokens.Load(ctx)
	if errors.Is(err, common.ErrInvalidToken) {
		s.log.Warn(ctx, "discarding unreadable stored token", "error", err)
		if err := s.tokens.Clear(ctx); err != nil {
			return err
		}
		token, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.setLocked(token, nil, Unverified)
	return nil
}

// Login stores token durably and marks the session Verified for user. A
// read right after Login returns exactly this user and token.
func (s *Store) Login(ctx context.Context, user models.User, token string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.Save(ctx, token); err != nil {
		return err
	}
	s.setLocked(token, &user, Verified)
	s.log.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

// Logout forgets the session in memory and on disk.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Storage goes first: a token left on disk would sign the user back in
	// on the next start.
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear stored token: %w", err)
	}
	s.setLocked("", nil, Anonymous)
	s.log.Info(ctx, "logged out")
	return nil
}

// SetToken replaces the token (an empty token clears it) and leaves the
// session Unverified until the next Verify.
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if token == "" {
		err = s.tokens.Clear(ctx)
	} else {
		err = s.tokens.Save(ctx, token)
	}
	if err != nil {
		return err
	}
	s.setLocked(token, nil, Unverified)
	return nil
}

// Expire drops the session after the backend rejected its token. It is a
// no-op when the token has changed since gen was observed.
func (s *Store) Expire(ctx context.Context, gen uint64) error {
	_, err := s.reject(ctx, gen, true)
	return err
}

func (s *Store) setLocked(token string, user *models.User, status Status) {
	s.gen++
	s.token, s.user, s.status = token, user, status
}

// beginVerify moves gen's session to Verifying.
func (s *Store) beginVerify(gen uint64) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.snapshotLocked(), false
	}
	s.status = Verifying
	return s.snapshotLocked(), true
}

// resolve records the verified user for gen.
func (s *Store) resolve(gen uint64, user models.User) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.snapshotLocked(), false
	}
	s.user = &user
	s.status = Verified
	return s.snapshotLocked(), true
}

// abandon returns an interrupted verification to Unverified.
func (s *Store) abandon(gen uint64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.status == Verifying {
		s.status = Unverified
	}
	return s.snapshotLocked()
}

// reject resolves gen's session to Anonymous. With wipe the token is dropped
// from memory and storage; without it the token is kept for a later retry.
func (s *Store) reject(ctx context.Context, gen uint64, wipe bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.snapshotLocked(), nil
	}

	if !wipe {
		s.user = nil
		s.status = Anonymous
		return s.snapshotLocked(), nil
	}

	s.setLocked("", nil, Anonymous)
	if err := s.tokens.Clear(ctx); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}
