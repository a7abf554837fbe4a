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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
	assignee string
	email    string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a task to a list" }
func (c *AddCmd) Usage() string {
	return "todolists add [--list <list-name>] [--assignee <name>] [--email <email>] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	list, code := c.targetList(svc, errOut)
	if code != exitcode.Success {
		return code
	}

	draft := service.NewTask{
		Name:          title,
		AssigneeName:  strings.TrimSpace(c.assignee),
		AssigneeEmail: strings.TrimSpace(c.email),
	}
	if _, err := svc.AddTask(ctx, list.ID, draft); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}

// targetList resolves --list, falling back to the only list when exactly
// one exists.
func (c *AddCmd) targetList(svc service.Service, errOut io.Writer) (service.List, int) {
	if name := strings.TrimSpace(c.listName); name != "" {
		list, err := svc.ResolveList(name)
		if err != nil {
			return service.List{}, reportError(errOut, err)
		}
		return list, exitcode.Success
	}

	lists := svc.Lists()
	switch len(lists) {
	case 0:
		fmt.Fprintln(errOut, "error: no lists exist, create one with addlist")
		return service.List{}, exitcode.UserError
	case 1:
		return lists[0], exitcode.Success
	}
	fmt.Fprintln(errOut, "error: --list required when more than one list exists")
	return service.List{}, exitcode.UserError
}
