package api

import (
	"context"

	"github.com/dmitrijs2005/findash/internal/client/models"
)

// Client is the backend contract used by the rest of the client.
type Client interface {
	Me(ctx context.Context) (*models.User, error)
	Token(ctx context.Context, username string, password []byte) (*models.TokenResponse, error)
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
	Summary(ctx context.Context, period *models.Period) (*models.Summary, error)
	RevenueTrend(ctx context.Context, months int) (*models.RevenueTrend, error)
	UploadCSV(ctx context.Context, req models.UploadRequest) (*models.UploadResult, error)
}

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

type tokenKey struct{}

// WithToken pins the bearer token used by requests made with ctx,
// overriding the client's TokenSource. An empty token sends no header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token pinned with WithToken, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok
}
