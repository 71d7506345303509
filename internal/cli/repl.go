package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL needs. App satisfies it;
// tests use a stub.
type execIface interface {
	Add(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Start(ctx context.Context) error
	Wait(ctx context.Context) error
	Retry(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	URLs(ctx context.Context) error
	Markdown(ctx context.Context) error
	Copy(ctx context.Context, args []string) error
	Mode(ctx context.Context, args []string) error
	Webhook(ctx context.Context, args []string) error
	Projects(ctx context.Context, args []string) error
	Project(ctx context.Context, args []string) error
	Explorer(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

const helpText = `Commands:
  add <file|dir|glob>...      queue image files
  list | ls                   show the queue
  start                       upload pending and failed items
  wait                        wait for running uploads
  retry <n|id>                upload one item again
  remove | rm <n|id>          drop one item
  clear                       empty the queue (when nothing is uploading)
  urls                        print successful URLs
  md                          print successful uploads as a Markdown table
  copy [urls|md]              copy URLs or the table to the clipboard
  mode [managed|webhook]      show or switch the upload mode
  webhook [url|-]             show, save or forget the webhook URL
  projects [refresh]          list projects
  project [new <name> | use <n|id> | none]
  explorer [all] [refresh]    browse earlier uploads
  status                      show configuration and counts
  exit | quit`

// runREPL reads commands line by line and dispatches them to a until EOF
// or "exit". Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printFn(fmt.Sprintf("imgdrop (%s)> ", statusFn()))
		if !scanner.Scan() {
			printlnFn()
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "add":
			err = a.Add(ctx, args)
		case "list", "ls":
			err = a.List(ctx)
		case "start":
			err = a.Start(ctx)
		case "wait":
			err = a.Wait(ctx)
		case "retry":
			err = a.Retry(ctx, args)
		case "remove", "rm":
			err = a.Remove(ctx, args)
		case "clear":
			err = a.Clear(ctx)
		case "urls":
			err = a.URLs(ctx)
		case "md", "markdown":
			err = a.Markdown(ctx)
		case "copy":
			err = a.Copy(ctx, args)
		case "mode":
			err = a.Mode(ctx, args)
		case "webhook":
			err = a.Webhook(ctx, args)
		case "projects":
			err = a.Projects(ctx, args)
		case "project":
			err = a.Project(ctx, args)
		case "explorer":
			err = a.Explorer(ctx, args)
		case "status":
			err = a.Status(ctx)
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
