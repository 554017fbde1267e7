// Package common contains shared constants and sentinel errors used across
// siegesync components.
package common

// RequestIDHeaderName is the HTTP header carrying the per-request id.
const RequestIDHeaderName = "X-Request-ID"

// AuthorizationHeaderName carries the admin bearer token.
const AuthorizationHeaderName = "Authorization"
