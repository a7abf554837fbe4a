package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todolists/internal/config"
	"todolists/internal/exitcode"
	"todolists/internal/output"
	"todolists/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
// Handles both `todolists` (no args) and `todolists show <list-name>`.
type ShowCmd struct {
	open bool
}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return []string{"ls"} }
func (c *ShowCmd) Synopsis() string   { return "Show lists with their tasks" }
func (c *ShowCmd) Usage() string      { return "todolists show [--open] [<list-name>]" }
func (c *ShowCmd) NeedsService() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists := svc.Lists()

	if len(args) > 0 {
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			fmt.Fprintln(errOut, "error: list name required")
			return exitcode.UserError
		}
		list, err := svc.ResolveList(name)
		if err != nil {
			return reportError(errOut, err)
		}
		for i, l := range lists {
			if l.ID == list.ID {
				c.printList(out, listLetter(i), l)
			}
		}
		return exitcode.Success
	}

	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}

	for i, list := range lists {
		letter := listLetter(i)
		if letter == 0 {
			fmt.Fprintln(errOut, "error: too many lists (max 26)")
			return exitcode.UserError
		}
		c.printList(out, letter, list)
	}
	return exitcode.Success
}

// printList writes one list section. Task numbers are positions in the
// list, so hidden completed tasks leave gaps instead of renumbering.
func (c *ShowCmd) printList(out io.Writer, letter rune, list service.List) {
	if letter == 0 {
		letter = '?'
	}
	output.FormatListHeader(out, letter, list)
	for i, task := range list.Tasks {
		if c.open && task.IsCompleted {
			continue
		}
		output.FormatTask(out, i+1, task)
	}
}
