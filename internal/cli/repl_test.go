package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
	fail  map[string]error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return f.fail[name]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(_ context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}
func (f *fakeExec) Token(_ context.Context, args []string) error  { return f.record("token", args) }
func (f *fakeExec) Pet(_ context.Context, args []string) error    { return f.record("pet", args) }
func (f *fakeExec) Scan(_ context.Context, args []string) error   { return f.record("scan", args) }
func (f *fakeExec) List(_ context.Context, args []string) error   { return f.record("list", args) }
func (f *fakeExec) Edit(_ context.Context, args []string) error   { return f.record("edit", args) }
func (f *fakeExec) Remove(_ context.Context, args []string) error { return f.record("remove", args) }
func (f *fakeExec) Commit(_ context.Context, args []string) error { return f.record("commit", args) }
func (f *fakeExec) Cancel(_ context.Context, args []string) error { return f.record("cancel", args) }
func (f *fakeExec) History(_ context.Context, args []string) error {
	return f.record("history", args)
}
func (f *fakeExec) Scans(_ context.Context, args []string) error { return f.record("scans", args) }
func (f *fakeExec) Preview(_ context.Context, args []string) error {
	return f.record("preview", args)
}
func (f *fakeExec) Dictate(_ context.Context, args []string) error {
	return f.record("dictate", args)
}
func (f *fakeExec) Transcribe(_ context.Context, args []string) error {
	return f.record("transcribe", args)
}
func (f *fakeExec) Note(_ context.Context, args []string) error { return f.record("note", args) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"scan card.jpg",
		"login",
		"help",
		"pet rex",
		"scan card.jpg",
		"l",
		"edit 1 dose=2",
		"rm 2",
		"commit",
		"foobar",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "pet", "scan", "list", "edit", "remove", "commit"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := exec.args["edit"]; len(got) != 2 || got[0] != "1" || got[1] != "dose=2" {
		t.Fatalf("edit args = %v", got)
	}
	for _, s := range []string{helpLoggedOut, helpLoggedIn, "Login required", "Unknown command: foobar", "Até logo!", "vet status> "} {
		if !contains(*out, s) {
			t.Fatalf("output missing %q: %v", s, *out)
		}
	}
}

func TestRunREPL_HandlerErrorDoesNotStopLoop(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true, fail: map[string]error{"commit": errors.New("db down")}}
	input := strings.NewReader("commit\nnote\n")
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 2 || exec.calls[1] != "note" {
		t.Fatalf("calls = %v", exec.calls)
	}
	if !contains(*out, "error: db down") {
		t.Fatalf("error not printed: %v", *out)
	}
}

func TestRunREPL_UnknownWhileLoggedOut(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("bogus\n\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !contains(*out, "Unknown command: bogus") {
		t.Fatalf("output: %v", *out)
	}
}
