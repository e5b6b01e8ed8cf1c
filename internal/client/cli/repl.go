package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	More(ctx context.Context) error
	Add(ctx context.Context) error
	Delete(ctx context.Context, ref string) error
	Feature(ctx context.Context, ref string, on bool) error
	Streak(ctx context.Context) error
	Rewards(ctx context.Context) error
	Share(ctx context.Context, ref string, recipients []string) error
	Photo(ctx context.Context, ref string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (l)ist, more, add, delete <n|id>, feature <n|id>, unfeature <n|id>, " +
		"photo <n|id>, streak, rewards, share <n|id> <email>..., logout, exit"
)

// runREPL reads one command per line and dispatches it to a. Handlers
// report their own errors; the loop ends on EOF, "exit" or "quit".
//
// Moments are addressed either by their number in the last listing or by id.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("daybook%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn(helpLoggedOut)
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Unknown command:", cmd, "(log in first?)")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpLoggedIn)
		case "l", "list":
			_ = a.List(ctx)
		case "more":
			_ = a.More(ctx)
		case "add":
			_ = a.Add(ctx)
		case "delete", "feature", "unfeature", "photo":
			if len(args) != 1 {
				printlnFn("Usage:", cmd, "<n|id>")
				continue
			}
			switch cmd {
			case "delete":
				_ = a.Delete(ctx, args[0])
			case "feature":
				_ = a.Feature(ctx, args[0], true)
			case "unfeature":
				_ = a.Feature(ctx, args[0], false)
			case "photo":
				_ = a.Photo(ctx, args[0])
			}
		case "streak":
			_ = a.Streak(ctx)
		case "rewards":
			_ = a.Rewards(ctx)
		case "share":
			if len(args) < 2 {
				printlnFn("Usage: share <n|id> <email>...")
				continue
			}
			_ = a.Share(ctx, args[0], args[1:])
		case "logout":
			_ = a.Logout(ctx)
		case "register", "login":
			printlnFn("Already logged in; logout first")
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
