package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	SetName(ctx context.Context) error
	List(ctx context.Context) error
	New(ctx context.Context) error
	Delete(ctx context.Context) error
	Open(ctx context.Context) error
	Upload(ctx context.Context) error
	Show(ctx context.Context) error
	Retry(ctx context.Context) error
	Reload(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the skincare CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           - show available commands
//	  - login          - sign in with a provider token
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - whoami         - show the current user
//	  - name           - change the display name
//	  - (l)ist         - list sessions
//	  - new            - start a session and open it
//	  - delete         - delete a session
//	  - open           - open a session
//	  - upload         - upload a JPG to the open session
//	  - show           - show the open session
//	  - retry          - clear a failed upload
//	  - reload         - fetch the open session again
//	  - logout         - sign out
//
// Errors returned by handlers are ignored here; handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("skincare %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, name, (l)ist, new, delete, open, upload, show, retry, reload, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "login":
			_ = a.Login(ctx)
			continue
		}

		if !a.isLoggedIn() {
			if knownCommand(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "name":
			_ = a.SetName(ctx)
		case "l", "list":
			_ = a.List(ctx)
		case "new":
			_ = a.New(ctx)
		case "delete":
			_ = a.Delete(ctx)
		case "open":
			_ = a.Open(ctx)
		case "upload":
			_ = a.Upload(ctx)
		case "show":
			_ = a.Show(ctx)
		case "retry":
			_ = a.Retry(ctx)
		case "reload":
			_ = a.Reload(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "name", "l", "list", "new", "delete", "open",
		"upload", "show", "retry", "reload":
		return true
	}
	return false
}
