package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a recording stub.
type execIface interface {
	Add(ctx context.Context, args []string) error
	Queue(ctx context.Context) error
	Sync(ctx context.Context) error
	Remove(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Reset(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  add <trip.json> [photo...]  submit a trip report (queued when offline)
  queue                       list queued reports
  sync                        send queued reports now
  remove <id>                 drop a queued report
  token [value]               set the bearer token (prompted when omitted)
  status                      show mode and queue state
  reset [--force]             clear the local queue and token
  exit                        leave the program`

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
// Handler errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wathiq %s> ", statusFn()))
		if ctx.Err() != nil || !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "add":
			err = a.Add(ctx, args)

		case "q", "queue", "list":
			err = a.Queue(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "rm", "remove":
			err = a.Remove(ctx, args)

		case "token":
			err = a.Token(ctx, args)

		case "status":
			err = a.Status(ctx)

		case "reset":
			err = a.Reset(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
