package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/config"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/dmitrijs2005/findash/internal/client/views"
	"github.com/dmitrijs2005/findash/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a minimal stand-in for the finance API.
type backend struct {
	mu         sync.Mutex
	hits       map[string]int
	total      int
	lastAuth   string
	lastMonths string
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	b.hits[path]++
	b.lastAuth = r.Header.Get("Authorization")
	total := b.total
	b.mu.Unlock()

	authorized := r.Header.Get("Authorization") == "Bearer good-token"
	w.Header().Set("Content-Type", "application/json")

	switch path {
	case "/auth/token":
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect email or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"good-token","token_type":"bearer","user":{"id":"u-1","email":"jo@example.com"}}`)

	case "/auth/register":
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email == "jo@example.com" {
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"detail":"User already registered"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u-2", "email": in.Email})

	case "/insights/monthly-revenue-trend":
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.lastMonths = r.URL.Query().Get("num_months")
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"trend_data":[{"month":"2026-09","revenue":"4000.00"},{"month":"2026-10","revenue":"2000.00"}]}`)

	case "/auth/users/me":
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"u-1","email":"jo@example.com"}`)

	case "/insights/summary":
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_transactions":   total,
			"total_income":         "5000.00",
			"total_spending":       "-1800.00",
			"net_flow_operational": "3200.00",
			"spending_by_category": map[string]any{"Travel": "-900.00"},
			"income_by_category":   map[string]any{"Consulting": "5000.00"},
		})

	case "/transactions/upload/csv":
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.total = 3
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"message":"Processed 3 transactions.","transactions_parsed":3,"transactions_saved":3}`)

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
}

type harness struct {
	be  *backend
	cfg *config.Config
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := &backend{hits: map[string]int{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = srv.URL + "/api/v1"
	cfg.DBPath = filepath.Join(dir, "findash.db")
	cfg.KeyPath = filepath.Join(dir, "token.key")

	return &harness{be: be, cfg: cfg, out: &bytes.Buffer{}}
}

// start builds an App the way Run does, without the REPL.
func (h *harness) start(t *testing.T, input string) *App {
	t.Helper()
	a, err := NewApp(context.Background(), h.cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	a.reader = bufio.NewReader(strings.NewReader(input))
	a.out = h.out
	a.now = fixedNow

	require.NoError(t, a.sess.Restore(context.Background()))
	a.settle(context.Background())
	return a
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func TestApp_FreshStartShowsLoginWithoutNetwork(t *testing.T) {
	h := newHarness(t)
	a := h.start(t, "")

	assert.Equal(t, views.Login, a.selector.Current())
	assert.Equal(t, session.Anonymous, a.sess.Snapshot().Status)
	assert.Contains(t, h.out.String(), "Type 'login'")
	assert.Zero(t, h.be.count("/auth/users/me"))
	assert.Zero(t, h.be.count("/insights/summary"))
}

func TestApp_LoginUploadDashboard(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	a := h.start(t, "jo@example.com\n")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	assert.Equal(t, views.Upload, a.selector.Current())
	assert.Contains(t, h.out.String(), views.WelcomeMessage)
	assert.Equal(t, 1, h.be.count("/insights/summary"))

	file := filepath.Join(t.TempDir(), "october.csv")
	require.NoError(t, os.WriteFile(file, []byte("date,amount\n2026-10-01,10\n"), 0o600))

	h.out.Reset()
	require.NoError(t, a.Upload(ctx, []string{file, "chase_checking"}))
	assert.Contains(t, h.out.String(), "Processed 3 transactions.")
	assert.Contains(t, h.out.String(), "3 transactions parsed, 3 saved.")

	h.out.Reset()
	require.NoError(t, a.Goto(ctx, []string{"dashboard"}))
	assert.Equal(t, views.Dashboard, a.selector.Current())
	assert.Contains(t, h.out.String(), "== Dashboard 2026-10-01 .. 2026-10-31 ==")
	assert.Contains(t, h.out.String(), "$5,000.00")
	assert.Contains(t, h.out.String(), "Travel")
}

func TestApp_UploadValidationNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	a := h.start(t, "jo@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	_ = a.Upload(context.Background(), []string{"statement.pdf", "stripe"})
	assert.Contains(t, h.out.String(), "Only .csv files are supported.")
	assert.Zero(t, h.be.count("/transactions/upload/csv"))
}

func TestApp_LoginFailureShowsDetail(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "wrong")
	a := h.start(t, "jo@example.com\n")

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, h.out.String(), "Login failed: Incorrect email or password")
	assert.False(t, a.isLoggedIn())
}

func TestApp_SessionSurvivesRestartAndLogout(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	first := h.start(t, "jo@example.com\n")
	require.NoError(t, first.Login(context.Background()))
	require.NoError(t, first.Close())

	second := h.start(t, "")
	assert.True(t, second.isLoggedIn())
	assert.Equal(t, 1, h.be.count("/auth/users/me"))

	require.NoError(t, second.Logout(context.Background()))
	assert.Equal(t, views.Login, second.selector.Current())
	require.NoError(t, second.Close())

	third := h.start(t, "")
	assert.False(t, third.isLoggedIn())
	assert.Equal(t, 1, h.be.count("/auth/users/me"), "no verification without a stored token")
}

func TestApp_BadTokenIsDropped(t *testing.T) {
	h := newHarness(t)
	a := h.start(t, "")

	require.NoError(t, a.SetToken(context.Background(), []string{"bogus"}))
	snap := a.sess.Snapshot()
	assert.Equal(t, session.Anonymous, snap.Status)
	assert.Empty(t, snap.Token)
	assert.Equal(t, "Bearer bogus", h.be.lastAuth)
}

func TestApp_GuardedCommandsRedirectToLogin(t *testing.T) {
	h := newHarness(t)
	a := h.start(t, "")
	h.out.Reset()

	require.NoError(t, a.Dashboard(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Type 'login'")
	assert.Zero(t, h.be.count("/insights/summary"))
}

func TestApp_Whoami(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	a := h.start(t, "jo@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	h.out.Reset()
	require.NoError(t, a.Whoami(context.Background()))
	assert.Contains(t, h.out.String(), "jo@example.com <jo@example.com>")
	assert.Contains(t, h.out.String(), "user id: u-1")
	assert.Contains(t, h.out.String(), "signed in since")
}

func TestApp_DashboardBadPeriod(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	a := h.start(t, "jo@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	require.Error(t, a.Dashboard(context.Background(), []string{"2026-10-31", "2026-10-01"}))
	assert.Contains(t, h.out.String(), "start date cannot be after end date")
}

func TestApp_RegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret-pass")
	a := h.start(t, "new@example.com\n")
	h.out.Reset()

	require.NoError(t, a.Register(context.Background()))
	assert.Contains(t, h.out.String(), "Account created for new@example.com")
	assert.False(t, a.isLoggedIn(), "registering does not sign in")
	assert.Equal(t, 1, h.be.count("/auth/register"))
	assert.Empty(t, h.be.lastAuth, "no bearer on sign-up")
}

func TestApp_RegisterConflictShowsDetail(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret-pass")
	a := h.start(t, "jo@example.com\n")

	require.Error(t, a.Register(context.Background()))
	assert.Contains(t, h.out.String(), "Registration failed: User already registered")
}

func TestApp_RegisterShortPasswordNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "short")
	a := h.start(t, "new@example.com\n")

	require.Error(t, a.Register(context.Background()))
	assert.Contains(t, h.out.String(), "Registration failed: Password must be at least 8 characters.")
	assert.Zero(t, h.be.count("/auth/register"))
}

func TestApp_DashboardTrend(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "s3cret")
	a := h.start(t, "jo@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	h.out.Reset()
	require.NoError(t, a.Dashboard(context.Background(), []string{"trend", "3"}))
	out := h.out.String()
	assert.Contains(t, out, "== Revenue trend, last 3 months ==")
	assert.Contains(t, out, "2026-09")
	assert.Contains(t, out, "$4,000.00")
	assert.Equal(t, "3", h.be.lastMonths)
	assert.Equal(t, views.Dashboard, a.selector.Current())

	h.out.Reset()
	require.Error(t, a.Dashboard(context.Background(), []string{"trend", "30"}))
	assert.Contains(t, h.out.String(), "months must be between 1 and 24")
	assert.Equal(t, 1, h.be.count("/insights/monthly-revenue-trend"))
}
