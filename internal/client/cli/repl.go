package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Logout(ctx context.Context) error
	ClearLocalData(ctx context.Context) error
	Profiles(ctx context.Context, args []string) error
	Points(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Colors(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, register, forgot, clear, exit"
	helpLoggedIn  = `Available commands:
  profiles [add | use N | color N | avatar N PATH | noavatar N | delete N]
  points [all | selected | to_select | add | edit N | toggle N | delete N]
  search PREFIX
  colors
  clear (forget local data)
  logout, exit`
)

// Root prints the banner and runs the REPL on the app's own reader.
func (a *App) Root(ctx context.Context) {
	a.println(titleStyle.Render("Invaders family map"))
	a.println(mutedStyle.Render("Type 'help' for the list of commands."))

	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
}

// status is the prompt prefix: connectivity, family name and the current
// profile badge.
func (a *App) status(ctx context.Context) string {
	parts := []string{renderMode(a.Mode())}

	st, err := a.session.State(ctx)
	if err == nil && st.Authenticated {
		parts = append(parts, st.FamilyName)
		if p, ok := a.profiles.Current(); ok {
			parts = append(parts, renderBadge(p))
		}
	}
	return strings.Join(parts, " ")
}

// runREPL starts a simple read–eval–print loop for the Invaders CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to the handler. Unknown commands are reported
// back to the user. The loop exits on EOF, when ctx is done, or when the
// user types "exit" or "quit".
//
// Commands other than help, login, register, forgot, clear and exit require
// an authenticated session.
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("inv> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue

		case "register":
			_ = a.Register(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "forgot":
			_ = a.Forgot(ctx)
			continue

		case "clear":
			_ = a.ClearLocalData(ctx)
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn(ctx) {
			if isKnownCommand(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "profiles", "p":
			_ = a.Profiles(ctx, args)

		case "points", "l":
			_ = a.Points(ctx, args)

		case "search":
			_ = a.Search(ctx, args)

		case "colors":
			_ = a.Colors(ctx)

		case "logout":
			_ = a.Logout(ctx)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "profiles", "p", "points", "l", "search", "colors", "logout":
		return true
	}
	return false
}
