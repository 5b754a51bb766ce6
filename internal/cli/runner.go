// Package cli runs one-shot subcommands against the task store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dayboard/internal/group"
	"dayboard/internal/store"
	"dayboard/internal/task"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Options carries the output streams and the grouping zone.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Location *time.Location
}

// IsCommand reports whether name is a subcommand Run understands.
func IsCommand(name string) bool {
	switch name {
	case "help", "-h", "--help", "ls", "add", "done", "rm":
		return true
	}
	return false
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// The store must already be loaded.
func Run(s *store.Store, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp(opt.Out)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "ls":
		return doList(s, opt)

	case "add":
		title, description := splitDescription(a)
		if strings.TrimSpace(title) == "" {
			fail(opt.Err, "usage: todo add <title...> [-- <description...>]")
			return 2
		}
		return doAdd(s, title, description, opt)

	case "done":
		if len(a) != 1 {
			fail(opt.Err, "usage: todo done <id>")
			return 2
		}
		return doToggle(s, a[0], opt)

	case "rm":
		if len(a) != 1 {
			fail(opt.Err, "usage: todo rm <id>")
			return 2
		}
		return doRemove(s, a[0], opt)
	}

	fail(opt.Err, "unknown subcommand: "+cmd)
	PrintHelp(opt.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - tasks grouped by day

Usage:
  todo                 Open the interactive list
  todo <subcommand> [args]

Subcommands:
  ls                             List tasks grouped by day, newest first
  add <title...> [-- <desc...>]  Add a task; words after -- form the description
  done <id>                      Toggle a task between Pending and Done
  rm <id>                        Delete a task

Ids may be shortened to any unique prefix.

Examples:
  todo add Buy milk -- two litres
  todo ls
  todo done lv3k
`)
}

func splitDescription(args []string) (title, description string) {
	for i, a := range args {
		if a == "--" {
			return strings.Join(args[:i], " "), strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " "), ""
}

func doList(s *store.Store, opt Options) int {
	tasks := s.Tasks()
	groups, err := group.ByDate(tasks, opt.Location)
	if err != nil {
		fail(opt.Err, "group: "+err.Error())
		return 1
	}
	if len(groups) == 0 {
		fmt.Fprintln(opt.Out, mutedStyle.Render("no tasks"))
		return 0
	}
	done, pending := group.Counts(tasks)
	fmt.Fprintf(opt.Out, "%d pending, %d done\n", pending, done)
	for _, g := range groups {
		fmt.Fprintln(opt.Out)
		fmt.Fprintln(opt.Out, headerStyle.Render(g.Label))
		for _, t := range g.Tasks {
			fmt.Fprintf(opt.Out, "  %s %s %s\n", mutedStyle.Render(t.ID), status(t), t.Title)
			if t.Description != "" {
				fmt.Fprintf(opt.Out, "      %s\n", mutedStyle.Render(t.Description))
			}
		}
	}
	return 0
}

func doAdd(s *store.Store, title, description string, opt Options) int {
	t, err := s.Add(title, description)
	if errors.Is(err, task.ErrEmptyTitle) {
		fail(opt.Err, "add: empty title")
		return 2
	}
	if err != nil {
		fail(opt.Err, "save: "+err.Error())
		return 1
	}
	ok(opt.Out, "added "+t.ID)
	return 0
}

func doToggle(s *store.Store, ref string, opt Options) int {
	t, err := s.Find(ref)
	if err != nil {
		fail(opt.Err, "done: "+err.Error())
		return 1
	}
	if err := s.Toggle(t.ID); err != nil {
		fail(opt.Err, "save: "+err.Error())
		return 1
	}
	t, _ = s.Get(t.ID)
	ok(opt.Out, fmt.Sprintf("%s is now %s", t.ID, t.Status()))
	return 0
}

func doRemove(s *store.Store, ref string, opt Options) int {
	t, err := s.Find(ref)
	if err != nil {
		fail(opt.Err, "rm: "+err.Error())
		return 1
	}
	if err := s.Delete(t.ID); err != nil {
		fail(opt.Err, "save: "+err.Error())
		return 1
	}
	ok(opt.Out, "removed "+t.ID)
	return 0
}

func status(t task.Task) string {
	if t.IsDone {
		return okStyle.Render("[Done]")
	}
	return pendingStyle.Render("[Pending]")
}

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, okStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, failStyle.Render("✖ "+msg))
}
