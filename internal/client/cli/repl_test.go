package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string, args []string) {
	if len(args) > 0 {
		name += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, name)
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.record("register", nil)
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.record("login", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Forgot(context.Context) error {
	f.record("forgot", nil)
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}
func (f *fakeExec) ClearLocalData(context.Context) error {
	f.record("clear", nil)
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Profiles(_ context.Context, args []string) error {
	f.record("profiles", args)
	return nil
}
func (f *fakeExec) Points(_ context.Context, args []string) error {
	f.record("points", args)
	return nil
}
func (f *fakeExec) Search(_ context.Context, args []string) error {
	f.record("search", args)
	return nil
}
func (f *fakeExec) Colors(context.Context) error {
	f.record("colors", nil)
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"profiles add",
		"p use 2",
		"points selected",
		"l",
		"search Pa",
		"colors",
		"foobar",
		"logout",
		"points",
		"clear",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	require.Equal(t, []string{
		"login",
		"profiles add",
		"profiles use 2",
		"points selected",
		"points",
		"search Pa",
		"colors",
		"logout",
		"clear",
	}, exec.calls)
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("points\nwhat\nquit\n")))

	require.Empty(t, exec.calls)
	require.Contains(t, *out, "Please log in first.")
	require.Contains(t, *out, "Unknown command: what")
	require.Contains(t, *out, "Bye!")
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	out := captureOutput(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, bufio.NewReader(strings.NewReader("help\n")))
	require.Contains(t, *out, helpLoggedOut)

	*out = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "s" }, bufio.NewReader(strings.NewReader("help\n")))
	require.Contains(t, *out, helpLoggedIn)
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("search Eiffel")))

	require.Equal(t, []string{"search Eiffel"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("login\n")))

	require.Empty(t, exec.calls)
}
