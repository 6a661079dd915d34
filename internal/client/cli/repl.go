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
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	SetToken(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Dashboard(ctx context.Context, args []string) error
	Goto(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, register, token <access-token>, whoami, refresh, exit"
	helpLoggedIn  = "Available commands: upload [file type [project]], dashboard [this-month|last-month|ytd|start end|trend [months]], goto upload|dashboard, whoami, refresh, token, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the findash CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Each command runs with its own context,
// cancelled when the command returns, so nothing it started outlives it.
// The loop exits on EOF, on "exit"/"quit", or when ctx is cancelled.
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("findash %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		cmdCtx, cancel := context.WithCancel(ctx)
		quit := dispatch(cmdCtx, a, cmd, args)
		cancel()
		if quit {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) (quit bool) {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpAnonymous)
		}

	case "login":
		_ = a.Login(ctx)

	case "register":
		_ = a.Register(ctx)

	case "logout":
		_ = a.Logout(ctx)

	case "whoami":
		_ = a.Whoami(ctx)

	case "token":
		_ = a.SetToken(ctx, args)

	case "upload", "u":
		_ = a.Upload(ctx, args)

	case "dashboard", "d":
		_ = a.Dashboard(ctx, args)

	case "goto":
		_ = a.Goto(ctx, args)

	case "refresh":
		_ = a.Refresh(ctx)

	case "exit", "quit":
		printlnFn("Bye!")
		return true

	default:
		printlnFn("Unknown command:", cmd)
	}
	return false
}
