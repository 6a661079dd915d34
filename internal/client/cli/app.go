package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/archive"
	"github.com/dmitrijs2005/findash/internal/client/config"
	"github.com/dmitrijs2005/findash/internal/client/dashboard"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/repositories/settings"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/dmitrijs2005/findash/internal/client/storage"
	"github.com/dmitrijs2005/findash/internal/client/upload"
	"github.com/dmitrijs2005/findash/internal/client/views"
	"github.com/dmitrijs2005/findash/internal/cryptox"
	"github.com/dmitrijs2005/findash/internal/logging"
)

// savedAtSource reports when the stored token was written.
type savedAtSource interface {
	SavedAt(ctx context.Context) (time.Time, bool, error)
}

type App struct {
	config *config.Config
	log    logging.Logger

	sess     *session.Store
	verifier *session.Verifier
	auth     *session.Authenticator
	selector *views.Selector
	form     *upload.Form
	loader   *dashboard.Loader
	savedAt  savedAtSource

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	period  *models.Period
	closers []func() error
}

// NewApp opens the local database and wires every component from c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}
	closeDB := func() error { return db.Close() }

	key, err := cryptox.LoadOrCreateKey(c.KeyPath)
	if err != nil {
		_ = closeDB()
		return nil, fmt.Errorf("token key: %w", err)
	}

	verifyPolicy, err := session.ParseFailurePolicy(c.VerifyFailurePolicy)
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	presencePolicy, err := views.ParsePresenceErrorPolicy(c.PresenceErrorPolicy)
	if err != nil {
		_ = closeDB()
		return nil, err
	}

	tokens := session.NewSealedTokenStore(settings.NewSQLiteRepository(db), key)
	store := session.NewStore(tokens, log.With("component", "session"))

	apiClient, err := api.NewHTTPClient(c.APIBaseURL,
		api.WithTokenSource(store),
		api.WithLogger(log.With("component", "api")),
		api.WithTimeout(c.RequestTimeout),
	)
	if err != nil {
		_ = closeDB()
		return nil, err
	}

	a := &App{
		config:   c,
		log:      log,
		sess:     store,
		verifier: session.NewVerifier(store, apiClient, verifyPolicy, log.With("component", "verifier")),
		auth:     session.NewAuthenticator(store, apiClient, log),
		selector: views.NewSelector(store, apiClient, presencePolicy, log.With("component", "views")),
		loader: dashboard.NewLoader(apiClient, store, log.With("component", "dashboard"),
			dashboard.WithTrendFetcher(apiClient)),
		savedAt:  tokens,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		closers:  []func() error{closeDB},
	}

	formOpts := []upload.Option{upload.OnSuccess(func(models.UploadResult) { a.selector.MarkHasData() })}
	if c.Archive.Enabled() {
		ar, err := archive.New(ctx, archive.Settings{
			Bucket:          c.Archive.Bucket,
			Region:          c.Archive.Region,
			Endpoint:        c.Archive.Endpoint,
			AccessKeyID:     c.Archive.AccessKeyID,
			SecretAccessKey: c.Archive.SecretAccessKey,
		})
		if err != nil {
			// Optional: uploads work without it.
			log.Warn(ctx, "statement archive disabled", "error", err)
		} else {
			formOpts = append(formOpts, upload.WithArchiver(ar))
		}
	}
	a.form = upload.NewForm(store, apiClient, log.With("component", "upload"), formOpts...)

	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Run restores the stored session, shows the landing screen and runs the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.sess.Restore(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Welcome to findash (type 'help' for commands)")
	a.settle(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.sess.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	snap := a.sess.Snapshot()
	if snap.User == nil {
		return fmt.Sprintf("(%s)", snap.Status)
	}
	return fmt.Sprintf("(%s %s)", snap.User.DisplayName(), a.selector.Current())
}

// settle verifies the session, reselects the view and renders it. It runs
// after anything that changes the session.
func (a *App) settle(ctx context.Context) {
	if _, err := a.verifier.Verify(ctx); err != nil {
		a.log.Debug(ctx, "verification did not succeed", "error", err)
	}
	if _, err := a.selector.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "view refresh failed", "error", err)
	}
	a.render(ctx)
}

func (a *App) render(ctx context.Context) {
	switch a.selector.Current() {
	case views.Loading:
		renderLoading(a.out)
	case views.Login:
		renderLogin(a.out)
	case views.Upload:
		renderUpload(a.out, a.selector.Welcome(), a.form.Draft())
	case views.Dashboard:
		a.showDashboard(ctx, a.currentPeriod())
	}
}

func (a *App) currentPeriod() models.Period {
	if a.period != nil {
		return *a.period
	}
	return dashboard.CurrentMonth(a.now())
}

// guard applies the route guard for protected commands and reports whether
// the command may proceed.
func (a *App) guard(ctx context.Context) bool {
	d := views.Guard(a.sess.Snapshot())
	switch d.Action {
	case views.Placeholder:
		renderLoading(a.out)
		return false
	case views.Redirect:
		if _, err := a.selector.Refresh(ctx); err != nil {
			a.log.Debug(ctx, "view refresh failed", "error", err)
		}
		renderLogin(a.out)
		return false
	}
	return true
}

// Refresh re-runs verification and view selection.
func (a *App) Refresh(ctx context.Context) error {
	a.settle(ctx)
	return nil
}

// Goto switches between the upload and dashboard screens.
func (a *App) Goto(ctx context.Context, args []string) error {
	if !a.guard(ctx) {
		return nil
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: goto upload|dashboard")
		return nil
	}
	switch args[0] {
	case "upload":
		a.selector.NavigateToUpload()
	case "dashboard":
		a.selector.NavigateToDashboard()
	default:
		fmt.Fprintln(a.out, "Usage: goto upload|dashboard")
		return nil
	}
	a.render(ctx)
	return nil
}
