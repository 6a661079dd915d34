// Package common contains shared constants and sentinel errors used across
// findash components.
package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme used by the backend.
const BearerScheme = "Bearer"

// RequestIDHeaderName is attached to every outbound request so backend logs
// can be correlated with client logs.
const RequestIDHeaderName = "X-Request-ID"

// UserAgent identifies the client to the backend.
const UserAgent = "findash-cli/1.0"
