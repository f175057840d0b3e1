package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. App satisfies it.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	EnterPIN(ctx context.Context) error
	Back(ctx context.Context) error
	ResetPIN(ctx context.Context) error
	Status(ctx context.Context) error
	Lock(ctx context.Context) error
	Onboard(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit".
//
//	Locked:
//	  - unlock: biometric challenge
//	  - pin: enter, create or confirm the PIN
//	  - back: leave PIN confirmation or PIN entry
//	  - reset: forgot PIN: wipe the wallet and create a new PIN
//	  - status, help, exit | quit
//
//	Unlocked:
//	  - lock: lock now
//	  - onboard: mark onboarding complete
//	  - logout: forget the PIN and the wallet state
//	  - status, help, exit | quit
//
// Errors returned by handlers are ignored here; handlers report to the user
// themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wallet %s> ", statusFn()))
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
			if a.isUnlocked() {
				printlnFn("Available commands: status, lock, onboard, logout, exit")
			} else {
				printlnFn("Available commands: unlock, pin, back, reset, status, exit")
			}

		case "unlock":
			_ = a.Unlock(ctx)

		case "pin":
			_ = a.EnterPIN(ctx)

		case "back":
			_ = a.Back(ctx)

		case "reset":
			_ = a.ResetPIN(ctx)

		case "status":
			_ = a.Status(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "onboard":
			_ = a.Onboard(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
