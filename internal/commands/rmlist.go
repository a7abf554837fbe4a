package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todolists/internal/config"
	"todolists/internal/exitcode"
	"todolists/internal/service"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list with its tasks" }
func (c *RmListCmd) Usage() string      { return "todolists rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsService() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	list, err := svc.ResolveList(name)
	if err != nil {
		return reportError(errOut, err)
	}

	if open := list.OpenTasks(); open > 0 && !c.force {
		fmt.Fprintf(errOut, "error: list %q has %d open tasks, use --force to delete\n", list.Name, open)
		return exitcode.UserError
	}

	if err := svc.DeleteList(ctx, list.ID); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}
