// Package upload implements the statement upload form: local validation,
// a single multipart request per submission, and the success/failure
// messages shown to the user.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/dmitrijs2005/findash/internal/logging"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSuccessMessage = "File uploaded successfully."
	DefaultFailureMessage = "Upload failed. Please try again."
	CancelledMessage      = "Upload cancelled."
	InFlightMessage       = "An upload is already in progress."
)

// ErrSubmitInFlight is returned for a submit made while another one from the
// same form is still running.
var ErrSubmitInFlight = errors.New("upload already in flight")

// Attempt is one submission of the form.
type Attempt struct {
	File      string `validate:"required,csvfile"`
	FileType  string `validate:"required,filetype"`
	ProjectID string `validate:"omitempty,max=64"`
}

type Kind int

const (
	Succeeded Kind = iota
	Failed
	Invalid
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	case Invalid:
		return "invalid"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is what the user sees after a submit.
type Outcome struct {
	Kind    Kind
	Message string
	// Result is set on success.
	Result *models.UploadResult
	// Err is the underlying error for every kind but Succeeded.
	Err error
}

// Uploader sends a statement to the backend.
type Uploader interface {
	UploadCSV(ctx context.Context, req models.UploadRequest) (*models.UploadResult, error)
}

// Archiver keeps a copy of an uploaded statement. It returns where the copy
// was stored.
type Archiver interface {
	Archive(ctx context.Context, userID, fileName string, content []byte) (string, error)
}

// Session is the part of session.Store the form needs.
type Session interface {
	Snapshot() session.Snapshot
	Expire(ctx context.Context, gen uint64) error
}

var readFile = os.ReadFile

// Form is a single upload form. Its fields survive a failed submit so the
// user can retry, and are cleared after a successful one.
type Form struct {
	sess     Session
	uploader Uploader
	archiver Archiver
	log      logging.Logger
	validate *validator.Validate

	onSuccess func(models.UploadResult)

	inflight *semaphore.Weighted

	mu    sync.Mutex
	draft Attempt
}

type Option func(*Form)

// WithArchiver copies successful uploads to a.
func WithArchiver(a Archiver) Option {
	return func(f *Form) { f.archiver = a }
}

// OnSuccess registers fn to run after each successful upload.
func OnSuccess(fn func(models.UploadResult)) Option {
	return func(f *Form) { f.onSuccess = fn }
}

func NewForm(sess Session, uploader Uploader, log logging.Logger, opts ...Option) *Form {
	f := &Form{
		sess:     sess,
		uploader: uploader,
		log:      log,
		validate: newValidator(),
		inflight: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Draft returns the fields currently held by the form.
func (f *Form) Draft() Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Set replaces the form fields without submitting.
func (f *Form) Set(a Attempt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = a
}

// Submit validates a, then sends it. There is no retry. A submit made while
// another is in flight is rejected with ErrSubmitInFlight without touching
// the network.
func (f *Form) Submit(ctx context.Context, a Attempt) Outcome {
	if !f.inflight.TryAcquire(1) {
		return Outcome{Kind: Rejected, Message: InFlightMessage, Err: ErrSubmitInFlight}
	}
	defer f.inflight.Release(1)

	f.Set(a)

	snap := f.sess.Snapshot()
	if verr := validateAttempt(f.validate, a); verr != nil {
		return Outcome{Kind: Invalid, Message: verr.Error(), Err: verr}
	}
	if snap.Token == "" || !snap.Authenticated() {
		verr := &ValidationError{Problems: []string{MsgNotLoggedIn}}
		return Outcome{Kind: Invalid, Message: verr.Error(), Err: verr}
	}

	content, err := readFile(a.File)
	if err != nil {
		verr := &ValidationError{Problems: []string{fmt.Sprintf("Cannot read %s.", a.File)}}
		return Outcome{Kind: Invalid, Message: verr.Error(), Err: errors.Join(verr, err)}
	}

	res, err := f.uploader.UploadCSV(api.WithToken(ctx, snap.Token), models.UploadRequest{
		FileName:  a.File,
		Content:   content,
		FileType:  a.FileType,
		ProjectID: a.ProjectID,
	})
	if err != nil {
		return f.failure(ctx, snap, err)
	}

	msg := res.Message
	if msg == "" {
		msg = DefaultSuccessMessage
	}
	f.log.Info(ctx, "statement uploaded", "file_type", a.FileType, "bytes", len(content))

	f.Set(Attempt{})
	f.archive(ctx, snap, a, content)
	if f.onSuccess != nil {
		f.onSuccess(*res)
	}
	return Outcome{Kind: Succeeded, Message: msg, Result: res}
}

func (f *Form) failure(ctx context.Context, snap session.Snapshot, err error) Outcome {
	if ctx.Err() != nil {
		return Outcome{Kind: Failed, Message: CancelledMessage, Err: err}
	}

	if errors.Is(err, api.ErrUnauthorized) {
		if expErr := f.sess.Expire(ctx, snap.Generation); expErr != nil {
			f.log.Error(ctx, "failed to clear session", "error", expErr)
		}
	}

	msg := api.Detail(err)
	if msg == "" {
		msg = DefaultFailureMessage
	}
	f.log.Warn(ctx, "upload failed", "error", err)
	return Outcome{Kind: Failed, Message: msg, Err: err}
}

func (f *Form) archive(ctx context.Context, snap session.Snapshot, a Attempt, content []byte) {
	if f.archiver == nil || snap.User == nil {
		return
	}
	where, err := f.archiver.Archive(ctx, snap.User.ID, a.File, content)
	if err != nil {
		f.log.Warn(ctx, "statement archive failed", "error", err)
		return
	}
	f.log.Info(ctx, "statement archived", "location", where)
}
