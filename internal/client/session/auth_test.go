package session

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_UsesUserFromTokenResponse(t *testing.T) {
	tokens := &memTokens{}
	s := newStore(t, tokens)
	backend := &fakeBackend{TokenRet: &models.TokenResponse{
		AccessToken: "tok",
		User:        &models.User{ID: "u-1", Email: "jo@example.com"},
	}}

	snap, err := NewAuthenticator(s, backend, logging.Discard()).
		Authenticate(context.Background(), "jo@example.com", []byte("pw"))
	require.NoError(t, err)

	assert.Equal(t, Verified, snap.Status)
	assert.Equal(t, "u-1", snap.User.ID)
	assert.Equal(t, "tok", tokens.Stored)
	assert.Equal(t, "jo@example.com", backend.LastTokenUser)
	assert.Equal(t, []byte("pw"), backend.LastTokenPass)
	assert.Zero(t, backend.MeCalls)
}

func TestAuthenticate_FetchesUserWhenMissing(t *testing.T) {
	s := newStore(t, &memTokens{})
	backend := &fakeBackend{
		TokenRet: &models.TokenResponse{AccessToken: "fresh"},
		MeRet:    &models.User{ID: "u-9"},
	}

	snap, err := NewAuthenticator(s, backend, logging.Discard()).
		Authenticate(context.Background(), "jo", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "u-9", snap.User.ID)
	assert.Equal(t, "fresh", backend.LastMeToken)
}

func TestAuthenticate_ErrorLeavesSessionUntouched(t *testing.T) {
	s := newStore(t, &memTokens{Stored: "old"})
	backend := &fakeBackend{TokenErr: &api.Error{StatusCode: 401, Detail: "Incorrect email or password"}}

	_, err := NewAuthenticator(s, backend, logging.Discard()).
		Authenticate(context.Background(), "jo", []byte("bad"))
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Incorrect email or password", api.Detail(err))
	assert.Equal(t, "old", s.Token())
	assert.Equal(t, Unverified, s.Snapshot().Status)
}

func TestRegister_CreatesAccountWithoutSigningIn(t *testing.T) {
	tokens := &memTokens{}
	s := newStore(t, tokens)
	backend := &fakeBackend{RegisterRet: &models.User{ID: "u-2", Email: "new@example.com"}}

	user, err := NewAuthenticator(s, backend, logging.Discard()).
		Register(context.Background(), "new@example.com", []byte("longenough"))
	require.NoError(t, err)

	assert.Equal(t, "u-2", user.ID)
	assert.Equal(t, "new@example.com", backend.LastRegEmail)
	assert.Equal(t, []byte("longenough"), backend.LastRegPass)
	assert.Zero(t, tokens.Saves)
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Snapshot().User)
}

func TestRegister_ValidatesLocally(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     []string
	}{
		{"bad email", "not-an-email", "longenough", []string{MsgEmailInvalid}},
		{"short password", "jo@example.com", "short", []string{MsgPasswordShort}},
		{"both", "", "", []string{MsgEmailInvalid, MsgPasswordShort}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			_, err := NewAuthenticator(newStore(t, &memTokens{}), backend, logging.Discard()).
				Register(context.Background(), tt.email, []byte(tt.password))

			require.ErrorIs(t, err, common.ErrorValidation)
			for _, msg := range tt.want {
				assert.Contains(t, err.Error(), msg)
			}
			assert.Zero(t, backend.RegisterCalls)
		})
	}
}

func TestRegister_BackendDetailIsKept(t *testing.T) {
	backend := &fakeBackend{RegisterErr: &api.Error{StatusCode: 409, Detail: "User already registered"}}

	_, err := NewAuthenticator(newStore(t, &memTokens{}), backend, logging.Discard()).
		Register(context.Background(), "jo@example.com", []byte("longenough"))
	require.Error(t, err)
	assert.Equal(t, 409, api.StatusCode(err))
	assert.Equal(t, "User already registered", api.Detail(err))
}
