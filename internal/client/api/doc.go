// Package api is the REST client of the finance backend.
//
// # Overview
//
// Client is the transport contract used by the session, view, upload and
// dashboard packages: Me (identity check), Token (credential exchange),
// Summary (pre-aggregated insights) and UploadCSV (statement upload).
// HTTPClient implements it over net/http. Every request carries a fresh
// X-Request-ID; authenticated requests carry "Authorization: Bearer <token>",
// taken from the context (WithToken) or, failing that, from the configured
// TokenSource.
//
// # Error Handling
//
// Non-2xx responses are returned as *Error, which keeps the status code, the
// backend's "detail" message and the raw body. *Error matches the sentinels
// ErrUnauthorized (401) and ErrNotFound (404) with errors.Is. Transport
// failures wrap ErrUnavailable. Context cancellation is returned as the
// context's error so callers can tell "abandoned" from "failed".
package api
