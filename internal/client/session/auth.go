package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/logging"
)

// TokenIssuer exchanges credentials for a token and creates accounts.
type TokenIssuer interface {
	UserFetcher
	Token(ctx context.Context, username string, password []byte) (*models.TokenResponse, error)
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
}

// Authenticator signs a user in with email and password, and signs new
// users up.
type Authenticator struct {
	store  *Store
	issuer TokenIssuer
	log    logging.Logger
}

func NewAuthenticator(store *Store, issuer TokenIssuer, log logging.Logger) *Authenticator {
	return &Authenticator{store: store, issuer: issuer, log: log}
}

// Authenticate obtains a token and logs the session in with it. When the
// token response carries no user, the user is fetched with the new token.
// On error the session is left untouched.
func (a *Authenticator) Authenticate(ctx context.Context, username string, password []byte) (Snapshot, error) {
	tr, err := a.issuer.Token(ctx, username, password)
	if err != nil {
		return Snapshot{}, fmt.Errorf("login error: %w", err)
	}

	user := tr.User
	if user == nil {
		user, err = a.issuer.Me(api.WithToken(ctx, tr.AccessToken))
		if err != nil {
			return Snapshot{}, fmt.Errorf("fetch user: %w", err)
		}
	}

	if err := a.store.Login(ctx, *user, tr.AccessToken); err != nil {
		return Snapshot{}, fmt.Errorf("save session: %w", err)
	}
	return a.store.Snapshot(), nil
}
