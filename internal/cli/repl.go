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
	Enroll(ctx context.Context) error
	Verify(ctx context.Context) error
	Rebaseline(ctx context.Context) error
	Reset(ctx context.Context) error
	List(ctx context.Context) error
	Info(ctx context.Context) error
	Delete(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context) error
	State(ctx context.Context) error
	Clean(ctx context.Context) error
	Calibrate(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the LifeAuth CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current sensor state (from statusFn) and accepts:
//
//	Credentials:
//	  - enroll:         capture a sample and create a credential
//	  - verify:         run a two-factor authentication attempt
//	  - rebaseline:     refresh the stored biometric baseline
//	  - reset:          clear the lockout on a credential
//	  - list | l:       list enrolled user ids
//	  - info:           show one credential's details
//	  - delete:         remove a credential
//
//	Transfer:
//	  - export:         write a credential to a file
//	  - import:         load a credential from a file
//	  - backup:         push a credential to the vault
//	  - restore:        pull the latest vault backup
//
//	Sensor:
//	  - state:          show device state and description
//	  - clean:          run a self-cleaning cycle
//	  - calibrate:      run a calibration cycle
//
//	  - help:           show available commands
//	  - exit | quit:    leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lifeauth %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn("Available commands: enroll, verify, rebaseline, reset, (l)ist, info, delete,")
			printlnFn("  export, import, backup, restore, state, clean, calibrate, exit")

		case "enroll":
			_ = a.Enroll(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "rebaseline":
			_ = a.Rebaseline(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "info":
			_ = a.Info(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "export":
			_ = a.Export(ctx)

		case "import":
			_ = a.Import(ctx)

		case "backup":
			_ = a.Backup(ctx)

		case "restore":
			_ = a.Restore(ctx)

		case "state":
			_ = a.State(ctx)

		case "clean":
			_ = a.Clean(ctx)

		case "calibrate":
			_ = a.Calibrate(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
