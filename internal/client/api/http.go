package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/logging"
	"github.com/google/uuid"
)

const (
	pathMe       = "/auth/users/me"
	pathToken    = "/auth/token"
	pathRegister = "/auth/register"
	pathSummary  = "/insights/summary"
	pathTrend    = "/insights/monthly-revenue-trend"
	pathUpload   = "/transactions/upload/csv"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// NewHTTPClient builds a client for the API rooted at baseURL, for example
// "http://127.0.0.1:8000/api/v1".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  TokenSourceFunc(func() string { return "" }),
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) bearer(ctx context.Context) string {
	if t, ok := TokenFromContext(ctx); ok {
		return t
	}
	return c.tokens.Token()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", common.UserAgent)
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(ctx); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response. Anything else is an
// *Error, a wrapped ErrUnavailable, or the context's error.
func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	started := time.Now()
	reqID := req.Header.Get(common.RequestIDHeaderName)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn(ctx, "request failed", "method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, body)
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Me returns the user owning the bearer token.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathMe, nil, nil, "")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := decode(body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Token exchanges credentials for an access token. No bearer header is sent.
func (c *HTTPClient) Token(ctx context.Context, username string, password []byte) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))

	req, err := c.newRequest(WithToken(ctx, ""), http.MethodPost, pathToken, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tr models.TokenResponse
	if err := decode(body, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token", ErrMalformedResponse)
	}
	return &tr, nil
}

// Register creates an account. Like Token it sends no bearer header. The
// backend answers 201 with the new user, or 409/400 with a detail.
func (c *HTTPClient) Register(ctx context.Context, email string, password []byte) (*models.User, error) {
	payload, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: string(password)})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(WithToken(ctx, ""), http.MethodPost, pathRegister, nil,
		bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := decode(body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Summary fetches the insights report. A nil period lets the backend pick
// its default (the current month).
func (c *HTTPClient) Summary(ctx context.Context, period *models.Period) (*models.Summary, error) {
	var q url.Values
	if period != nil {
		q = period.Query()
	}
	req, err := c.newRequest(ctx, http.MethodGet, pathSummary, q, nil, "")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var s models.Summary
	if err := decode(body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RevenueTrend fetches revenue for the last months full months plus the
// current month to date, oldest first.
func (c *HTTPClient) RevenueTrend(ctx context.Context, months int) (*models.RevenueTrend, error) {
	q := url.Values{}
	q.Set("num_months", strconv.Itoa(months))

	req, err := c.newRequest(ctx, http.MethodGet, pathTrend, q, nil, "")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var t models.RevenueTrend
	if err := decode(body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UploadCSV sends one statement as multipart/form-data. A 2xx answer whose
// body is not JSON still counts as success and yields an empty result.
func (c *HTTPClient) UploadCSV(ctx context.Context, in models.UploadRequest) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filepath.Base(in.FileName))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(in.Content); err != nil {
		return nil, err
	}
	if err := mw.WriteField("file_type", in.FileType); err != nil {
		return nil, err
	}
	if in.ProjectID != "" {
		if err := mw.WriteField("project_id", in.ProjectID); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathUpload, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var res models.UploadResult
	err = json.Unmarshal(body, &res)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return &res, nil
	case errors.As(err, &typeErr):
		c.log.Warn(ctx, "upload response has unexpected field types", "error", err)
		return lenientUploadResult(body), nil
	default:
		c.log.Warn(ctx, "upload response is not JSON", "error", err)
		return &models.UploadResult{}, nil
	}
}

// lenientUploadResult keeps the text fields of a response whose counters
// could not be decoded. Counters are left unset rather than zero.
func lenientUploadResult(body []byte) *models.UploadResult {
	var text struct {
		Message   string `json:"message"`
		FileName  string `json:"filename"`
		FileType  string `json:"file_type"`
		ProjectID string `json:"project_id"`
	}
	// Type errors still fill every field that matches.
	_ = json.Unmarshal(body, &text)
	return &models.UploadResult{
		Message:   text.Message,
		FileName:  text.FileName,
		FileType:  text.FileType,
		ProjectID: text.ProjectID,
	}
}
