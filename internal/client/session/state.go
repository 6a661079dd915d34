// Package session owns the client's authentication state: the bearer token,
// the user it belongs to, and whether that pairing has been confirmed by the
// backend. Everything else in the client reads it through Snapshot.
package session

import "github.com/dmitrijs2005/findash/internal/client/models"

// Status is the verification state of the session.
type Status int

const (
	// Unverified: restored or replaced token, not yet checked.
	Unverified Status = iota
	// Verifying: a /auth/users/me call is in flight.
	Verifying
	// Verified: the token is confirmed and User is set.
	Verified
	// Anonymous: resolved without a user.
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Unverified:
		return "unverified"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// Resolving reports whether the session has not settled yet.
func (s Status) Resolving() bool {
	return s == Unverified || s == Verifying
}

// Snapshot is a copy of the session state. A non-nil User always comes with
// a non-empty Token.
type Snapshot struct {
	Token  string
	User   *models.User
	Status Status
	// Generation changes every time the token changes (login, logout,
	// replacement, drop). Work started for an older generation is stale.
	Generation uint64
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}
