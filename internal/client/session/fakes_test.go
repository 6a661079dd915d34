package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
)

type memTokens struct {
	mu sync.Mutex

	Stored   string
	LoadErr  error
	SaveErr  error
	ClearErr error

	Saves  int
	Clears int
}

func (m *memTokens) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Stored, m.LoadErr
}

func (m *memTokens) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Stored = token
	return nil
}

func (m *memTokens) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clears++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Stored = ""
	return nil
}

type fakeBackend struct {
	MeRet *models.User
	MeErr error
	// MeHook runs before Me returns, e.g. to change the session meanwhile.
	MeHook func()

	TokenRet *models.TokenResponse
	TokenErr error

	RegisterRet *models.User
	RegisterErr error

	MeCalls       int
	LastMeToken   string
	LastTokenUser string
	LastTokenPass []byte

	RegisterCalls int
	LastRegEmail  string
	LastRegPass   []byte
}

func (f *fakeBackend) Me(ctx context.Context) (*models.User, error) {
	f.MeCalls++
	f.LastMeToken = bearerOf(ctx)
	if f.MeHook != nil {
		f.MeHook()
	}
	return f.MeRet, f.MeErr
}

func (f *fakeBackend) Token(ctx context.Context, username string, password []byte) (*models.TokenResponse, error) {
	f.LastTokenUser = username
	f.LastTokenPass = append([]byte(nil), password...)
	return f.TokenRet, f.TokenErr
}

func (f *fakeBackend) Register(ctx context.Context, email string, password []byte) (*models.User, error) {
	f.RegisterCalls++
	f.LastRegEmail = email
	f.LastRegPass = append([]byte(nil), password...)
	return f.RegisterRet, f.RegisterErr
}

func bearerOf(ctx context.Context) string {
	t, _ := api.TokenFromContext(ctx)
	return t
}
