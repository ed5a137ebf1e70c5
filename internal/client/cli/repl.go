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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Recover(ctx context.Context) error
	Password(ctx context.Context) error
	Status(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	SetFilter(ctx context.Context, name string) error
	Add(ctx context.Context) error
	Use(ctx context.Context, cardID string) error
	Cashback(ctx context.Context, cardID string) error
	Edit(ctx context.Context, cardID string) error
	Delete(ctx context.Context, cardID string) error
}

// runREPL starts a simple read–eval–print loop for the cardbook CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - recover        — recover access by phone or email
//	  - status         — show backend configuration
//	  - list           — list cards (sample data without a backend)
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help             — show available commands
//	  - (l)ist           — list cards
//	  - search <text>    — filter by name or number (debounced refetch)
//	  - filter <name>    — todos | usado | naoUsado | cashbackTirado |
//	                       cashbackNaoTirado | expirando
//	  - add              — add a card
//	  - use <id>         — toggle the used flag
//	  - cashback <id>    — toggle the cashback flag
//	  - edit <id>        — edit a card
//	  - delete <id>      — delete a card (asks for confirmation)
//	  - password         — change password
//	  - status           — show backend configuration
//	  - logout           — log out
//	  - exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers log
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cards> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		arg := ""
		if len(args) > 0 {
			arg = strings.Join(args, " ")
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, search <text>, filter <name>, add, use <id>, cashback <id>, edit <id>, delete <id>, password, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, recover, status, list, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "recover":
			_ = a.Recover(ctx)

		case "password":
			_ = a.Password(ctx)

		case "status":
			_ = a.Status(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "search":
			_ = a.Search(ctx, arg)

		case "filter":
			_ = a.SetFilter(ctx, arg)

		case "add":
			_ = a.Add(ctx)

		case "use":
			if arg == "" {
				printlnFn("Usage: use <id>")
				continue
			}
			_ = a.Use(ctx, arg)

		case "cashback":
			if arg == "" {
				printlnFn("Usage: cashback <id>")
				continue
			}
			_ = a.Cashback(ctx, arg)

		case "edit":
			if arg == "" {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, arg)

		case "delete":
			if arg == "" {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
