package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/logging"
)

// WelcomeMessage is shown on the Upload screen to users without data.
const WelcomeMessage = "Welcome! Upload your first statement to get started."

// SummaryFetcher fetches the insights summary; nil period means the
// backend's default period.
type SummaryFetcher interface {
	Summary(ctx context.Context, period *models.Period) (*models.Summary, error)
}

// SessionReader is the part of session.Store the selector needs.
type SessionReader interface {
	Snapshot() session.Snapshot
	Expire(ctx context.Context, gen uint64) error
}

// PresenceErrorPolicy decides how a presence check error that does not clearly mean
// "no data" is classified.
type PresenceErrorPolicy string

const (
	// PresencePermissive treats the error as "has data" and shows the
	// dashboard, which then reports the error itself.
	PresencePermissive PresenceErrorPolicy = "permissive"
	// PresenceStrict keeps the view on Loading and returns the error; the
	// next Refresh checks again.
	PresenceStrict PresenceErrorPolicy = "strict"
)

func ParsePresenceErrorPolicy(s string) (PresenceErrorPolicy, error) {
	switch p := PresenceErrorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PresencePermissive:
		return PresencePermissive, nil
	case PresenceStrict:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown presence error policy %q", common.ErrorValidation, s)
}

// noDataPhrases mark a presence check error body that means the user has no data yet.
var noDataPhrases = []string{"no transaction", "not found"}

// Selector derives the current View from the session and the user's data
// presence. Presence is checked once per session generation.
type Selector struct {
	sess    SessionReader
	summary SummaryFetcher
	policy  PresenceErrorPolicy
	log     logging.Logger

	mu         sync.Mutex
	current    View
	welcome    bool
	checked    bool
	checkedGen uint64
	hasData    bool
}

func NewSelector(sess SessionReader, summary SummaryFetcher, policy PresenceErrorPolicy, log logging.Logger) *Selector {
	if policy == "" {
		policy = PresencePermissive
	}
	return &Selector{sess: sess, summary: summary, policy: policy, log: log, current: Loading}
}

// Current returns the selected view.
func (s *Selector) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Welcome reports whether the Upload view was chosen for a user with no data.
func (s *Selector) Welcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.welcome && s.current == Upload
}

// Refresh recomputes the view from the session. It must be called whenever
// the session changes.
func (s *Selector) Refresh(ctx context.Context) (View, error) {
	snap := s.sess.Snapshot()

	switch {
	case snap.Status.Resolving():
		return s.set(Loading, false), nil
	case !snap.Authenticated():
		s.forget()
		return s.set(Login, false), nil
	}

	s.mu.Lock()
	if s.checked && s.checkedGen == snap.Generation {
		v := s.current
		if v == Loading || v == Login {
			v = s.landingLocked()
			s.current, s.welcome = v, !s.hasData
		}
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	hasData, err := s.checkPresence(ctx, snap)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have moved on while the check was in flight.
	if cur := s.sess.Snapshot(); cur.Generation != snap.Generation {
		return s.current, nil
	}
	s.checked, s.checkedGen, s.hasData = true, snap.Generation, hasData
	s.welcome = !hasData
	s.current = s.landingLocked()
	return s.current, nil
}

func (s *Selector) checkPresence(ctx context.Context, snap session.Snapshot) (bool, error) {
	sum, err := s.summary.Summary(api.WithToken(ctx, snap.Token), nil)
	if err == nil {
		return sum.HasData(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	if errors.Is(err, api.ErrUnauthorized) {
		s.log.Info(ctx, "presence check rejected token")
		if expErr := s.sess.Expire(ctx, snap.Generation); expErr != nil {
			s.log.Error(ctx, "failed to clear session", "error", expErr)
		}
		s.set(Login, false)
		return false, err
	}

	status := api.StatusCode(err)
	if (status == 404 || status == 500) && api.BodyContains(err, noDataPhrases...) {
		return false, nil
	}

	if s.policy == PresenceStrict {
		s.log.Warn(ctx, "presence check failed", "error", err)
		s.set(Loading, false)
		return false, fmt.Errorf("presence check: %w", err)
	}
	s.log.Warn(ctx, "presence check failed, assuming data", "error", err)
	return true, nil
}

func (s *Selector) landingLocked() View {
	if s.hasData {
		return Dashboard
	}
	return Upload
}

func (s *Selector) set(v View, welcome bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.welcome = v, welcome
	return v
}

func (s *Selector) forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked, s.hasData = false, false
}

// NavigateToUpload switches to Upload without probing. Ignored without a user.
func (s *Selector) NavigateToUpload() View {
	return s.navigate(Upload)
}

// NavigateToDashboard switches to Dashboard without probing. Ignored without
// a user.
func (s *Selector) NavigateToDashboard() View {
	return s.navigate(Dashboard)
}

func (s *Selector) navigate(v View) View {
	if !s.sess.Snapshot().Authenticated() {
		return s.Current()
	}
	return s.set(v, false)
}

// MarkHasData records that the user now has data, so later refreshes land
// on the dashboard.
func (s *Selector) MarkHasData() {
	snap := s.sess.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked, s.checkedGen, s.hasData = true, snap.Generation, true
}
