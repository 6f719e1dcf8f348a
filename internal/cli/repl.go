package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
	Pet(ctx context.Context, args []string) error
	Scan(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Commit(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Scans(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	Dictate(ctx context.Context, args []string) error
	Transcribe(ctx context.Context, args []string) error
	Note(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, token <user-id> [clinic-id], exit"
	helpLoggedIn  = "Available commands: pet <id>, scan <image>, (l)ist, edit <n> field=value..., remove <n>, " +
		"commit, cancel, history, scans, preview <n>, dictate <field> <audio>, transcribe <audio> [name species], note, exit"
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Handler errors are printed verbatim and never stop
// the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vet %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var handler func(context.Context, []string) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Até logo!")
			return
		case "login":
			handler = a.Login
		case "token":
			handler = a.Token
		default:
			if !a.isLoggedIn() {
				if isKnown(cmd) {
					printlnFn("Login required: type 'login'")
				} else {
					printlnFn("Unknown command:", cmd)
				}
				continue
			}
			handler = loggedInHandler(a, cmd)
		}

		if handler == nil {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := handler(ctx, args); err != nil {
			printlnFn("error:", err)
		}
	}
}

func loggedInHandler(a execIface, cmd string) func(context.Context, []string) error {
	switch cmd {
	case "pet":
		return a.Pet
	case "scan":
		return a.Scan
	case "l", "list":
		return a.List
	case "edit":
		return a.Edit
	case "remove", "rm":
		return a.Remove
	case "commit":
		return a.Commit
	case "cancel":
		return a.Cancel
	case "history":
		return a.History
	case "scans":
		return a.Scans
	case "preview":
		return a.Preview
	case "dictate":
		return a.Dictate
	case "transcribe":
		return a.Transcribe
	case "note":
		return a.Note
	}
	return nil
}

var loggedInCommands = map[string]bool{
	"pet": true, "scan": true, "l": true, "list": true, "edit": true, "remove": true, "rm": true,
	"commit": true, "cancel": true, "history": true, "scans": true, "preview": true,
	"dictate": true, "transcribe": true, "note": true,
}

func isKnown(cmd string) bool { return loggedInCommands[cmd] }
