package cli

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc/status"
)

const helpText = `Available commands:
  ping                     check the server
  note [text]              add a text entry (multi-line when text is omitted)
  voice <file>             upload a recording and add a voice entry
  list [limit] [offset]    list your entries, newest first
  show <id>                show one entry
  expenses <id>            list expenses detected in an entry
  delete <id>              delete an entry
  quota                    show plan and usage
  ask <question>           ask a question (counts against the daily limit)
  exit                     quit`

// Root runs the read-eval-print loop until exit or end of input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the diary CLI (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "diary> ")
		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) > 0 {
			if quit := a.exec(ctx, parts[0], parts[1:]); quit {
				return
			}
		}
		if err != nil {
			fmt.Fprintln(a.out)
			return
		}
	}
}

// exec runs one command and reports whether the loop should stop.
func (a *App) exec(ctx context.Context, cmd string, args []string) bool {
	var err error

	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "ping":
		err = a.ping(ctx)
	case "note":
		err = a.note(ctx, args)
	case "voice":
		err = a.voice(ctx, args)
	case "list":
		err = a.list(ctx, args)
	case "show":
		err = a.show(ctx, args)
	case "expenses":
		err = a.expenses(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "quota":
		err = a.quota(ctx)
	case "ask":
		err = a.ask(ctx, args)
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}

	if err != nil {
		fmt.Fprintln(a.out, "Error:", status.Convert(err).Message())
	}
	return false
}
