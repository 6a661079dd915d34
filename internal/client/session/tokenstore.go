package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/repositories/settings"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/cryptox"
)

// Keys under which the token is persisted.
const (
	KeyToken   = "auth.token"
	KeySavedAt = "auth.saved_at"
)

// TokenStore is the durable home of the session token.
type TokenStore interface {
	// Load returns "" when nothing is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SealedTokenStore keeps the token encrypted in the settings table.
type SealedTokenStore struct {
	repo settings.Repository
	key  []byte
	now  func() time.Time
}

func NewSealedTokenStore(repo settings.Repository, key []byte) *SealedTokenStore {
	return &SealedTokenStore{repo: repo, key: key, now: time.Now}
}

// Load opens the stored token. A value that cannot be opened (for example
// after the key file was replaced) yields common.ErrInvalidToken.
func (s *SealedTokenStore) Load(ctx context.Context) (string, error) {
	sealed, err := s.repo.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if sealed == nil {
		return "", nil
	}

	plain, err := cryptox.Open(s.key, sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	defer common.WipeByteArray(plain)
	return string(plain), nil
}

func (s *SealedTokenStore) Save(ctx context.Context, token string) error {
	sealed, err := cryptox.Seal(s.key, []byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	err = s.repo.SetMany(ctx, map[string][]byte{
		KeyToken:   sealed,
		KeySavedAt: []byte(s.now().UTC().Format(time.RFC3339)),
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SealedTokenStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyToken, KeySavedAt); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SavedAt returns when the current token was stored. ok is false when no
// token is stored.
func (s *SealedTokenStore) SavedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	raw, err := s.repo.Get(ctx, KeySavedAt)
	if err != nil || raw == nil {
		return time.Time{}, false, err
	}
	t, err = time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", KeySavedAt, err)
	}
	return t, true, nil
}
