package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// UserFetcher resolves the user owning the bearer token.
type UserFetcher interface {
	Me(ctx context.Context) (*models.User, error)
}

// FailurePolicy decides what a verification that failed for reasons other
// than a 401 (network error, 5xx) does to the stored token.
type FailurePolicy string

const (
	// FailurePolicyLogout clears the token as if the backend had rejected it.
	FailurePolicyLogout FailurePolicy = "logout"
	// FailurePolicyKeep resolves Anonymous for this attempt but keeps the
	// token so a later Verify can try again.
	FailurePolicyKeep FailurePolicy = "keep"
)

// ParseFailurePolicy maps a config value to a policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", FailurePolicyLogout:
		return FailurePolicyLogout, nil
	case FailurePolicyKeep:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown verify failure policy %q", common.ErrorValidation, s)
}

// Verifier confirms the stored token against the backend.
type Verifier struct {
	store  *Store
	users  UserFetcher
	policy FailurePolicy
	log    logging.Logger
	now    func() time.Time
}

func NewVerifier(store *Store, users UserFetcher, policy FailurePolicy, log logging.Logger) *Verifier {
	if policy == "" {
		policy = FailurePolicyLogout
	}
	return &Verifier{store: store, users: users, policy: policy, log: log, now: time.Now}
}

// Verify settles the current session. With no token it resolves Anonymous
// without a network call. An already verified session is returned as is.
//
// The returned error explains a failed verification; the snapshot is the
// state after it. A result that arrives after the token changed is dropped
// and the newer state is returned instead.
func (v *Verifier) Verify(ctx context.Context) (Snapshot, error) {
	snap := v.store.Snapshot()
	if snap.Status == Verified {
		return snap, nil
	}
	if snap.Token == "" {
		snap, err := v.store.reject(ctx, snap.Generation, false)
		return snap, err
	}

	snap, ok := v.store.beginVerify(snap.Generation)
	if !ok {
		return snap, nil
	}
	gen, token := snap.Generation, snap.Token

	if tokenExpired(token, v.now()) {
		v.log.Info(ctx, "stored token has expired")
		snap, err := v.store.reject(ctx, gen, true)
		return snap, errors.Join(common.ErrTokenExpired, err)
	}

	user, err := v.users.Me(api.WithToken(ctx, token))
	switch {
	case err == nil:
		snap, _ := v.store.resolve(gen, *user)
		return snap, nil

	case ctx.Err() != nil:
		return v.store.abandon(gen), ctx.Err()

	case errors.Is(err, api.ErrUnauthorized):
		v.log.Info(ctx, "token rejected by backend")
		snap, clearErr := v.store.reject(ctx, gen, true)
		return snap, errors.Join(err, clearErr)
	}

	v.log.Warn(ctx, "session verification failed", "error", err, "policy", string(v.policy))
	snap, clearErr := v.store.reject(ctx, gen, v.policy == FailurePolicyLogout)
	return snap, errors.Join(err, clearErr)
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Tokens that do not parse as JWTs are opaque and never expire here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
