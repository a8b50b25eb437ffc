// Package cli provides the interactive Invaders terminal client.
//
// It wires configuration, the local metadata store, the API and health
// clients, the session manager, the auth flow controller and the profile
// and point services behind a line-oriented REPL. A background watcher
// pings the server health endpoint and flips the client between online and
// offline mode.
//
// Commands available before login: login, register, forgot. After login:
// profiles (list, add, use, color, avatar, noavatar, delete), points (list
// with a filter, add, edit, toggle, delete), search and colors.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
