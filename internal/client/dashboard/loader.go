// Package dashboard loads the summary for a period and derives the
// highlights shown on the dashboard screen. All aggregation happens on the
// backend; amounts are parsed here only to compare and format them.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/dmitrijs2005/findash/internal/logging"
)

const (
	EmptyMessage   = "No transactions for this period yet. Upload a statement to get started."
	FailedMessage  = "Could not load your dashboard. Please try again."
	ExpiredMessage = "Your session has expired. Please log in again."
)

// ErrSuperseded marks a load overtaken by a newer one.
var ErrSuperseded = errors.New("superseded by a newer load")

// noDataPhrases in an error body mean the period simply has no data.
var noDataPhrases = []string{"no transaction", "no data", "not found"}

type State int

const (
	Ready State = iota
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is one dashboard load.
type Result struct {
	State   State
	Period  models.Period
	Summary *models.Summary
	// Message is the banner for Empty and Failed.
	Message string
	Err     error
	// Discarded is set when the load was cancelled or superseded; the
	// caller must not render it.
	Discarded bool
}

type SummaryFetcher interface {
	Summary(ctx context.Context, period *models.Period) (*models.Summary, error)
}

type Session interface {
	Snapshot() session.Snapshot
	Expire(ctx context.Context, gen uint64) error
}

// Loader fetches summaries. Only the most recent Load may produce a
// renderable result.
type Loader struct {
	summary SummaryFetcher
	trend   TrendFetcher
	sess    Session
	log     logging.Logger

	mu  sync.Mutex
	gen uint64
}

type LoaderOption func(*Loader)

// WithTrendFetcher enables LoadTrend.
func WithTrendFetcher(t TrendFetcher) LoaderOption {
	return func(l *Loader) { l.trend = t }
}

func NewLoader(summary SummaryFetcher, sess Session, log logging.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{summary: summary, sess: sess, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

// Load fetches the summary for p and classifies the answer.
func (l *Loader) Load(ctx context.Context, p models.Period) Result {
	gen := l.begin()
	snap := l.sess.Snapshot()

	sum, err := l.summary.Summary(api.WithToken(ctx, snap.Token), &p)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Period: p, Err: ctxErr, Discarded: true}
	}
	if !l.current(gen) {
		return Result{Period: p, Err: ErrSuperseded, Discarded: true}
	}

	if err == nil {
		if !sum.HasData() {
			return Result{State: Empty, Period: p, Summary: sum, Message: EmptyMessage}
		}
		return Result{State: Ready, Period: p, Summary: sum}
	}

	if errors.Is(err, api.ErrUnauthorized) {
		if expErr := l.sess.Expire(ctx, snap.Generation); expErr != nil {
			l.log.Error(ctx, "failed to clear session", "error", expErr)
		}
		return Result{State: Failed, Period: p, Message: ExpiredMessage, Err: err}
	}

	if api.StatusCode(err) != 0 && api.BodyContains(err, noDataPhrases...) {
		return Result{State: Empty, Period: p, Message: EmptyMessage, Err: err}
	}

	l.log.Warn(ctx, "summary load failed", "period", p.String(), "error", err)
	msg := FailedMessage
	if d := api.Detail(err); d != "" {
		msg = FailedMessage + " (" + d + ")"
	}
	return Result{State: Failed, Period: p, Message: msg, Err: err}
}
