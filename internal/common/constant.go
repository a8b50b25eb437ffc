// Package common contains shared constants and sentinel errors used across
// the Invaders server and client.
package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token inside the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed back by the server on every API response.
const RequestIDHeaderName = "X-Request-Id"
