// Package client contains client-side building blocks for Invaders.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the API interface) used by the client services:
//     credentials, profiles, avatar upload slots and points.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that injects the
//     bearer access token and maps response status codes to sentinel errors.
//  3. A gRPC health checker (see HealthChecker) used by the online watcher.
//  4. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrConflict and
// ErrInvalid. The server's message is kept in the wrapped error text.
//
// All operations accept context.Context and honor cancellation.
package client
