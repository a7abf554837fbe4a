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
	Register(&AddListCmd{})
}

// taskDrafts collects repeated --task "name|assignee|email" flags.
type taskDrafts []service.NewTask

func (t *taskDrafts) String() string {
	names := make([]string, len(*t))
	for i, d := range *t {
		names[i] = d.Name
	}
	return strings.Join(names, ",")
}

func (t *taskDrafts) Set(v string) error {
	parts := strings.SplitN(v, "|", 3)
	draft := service.NewTask{Name: strings.TrimSpace(parts[0])}
	if draft.Name == "" {
		return fmt.Errorf("task name required in %q", v)
	}
	if len(parts) > 1 {
		draft.AssigneeName = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		draft.AssigneeEmail = strings.TrimSpace(parts[2])
	}
	*t = append(*t, draft)
	return nil
}

// AddListCmd implements the addlist command.
type AddListCmd struct {
	description string
	tasks       taskDrafts
}

func (c *AddListCmd) Name() string      { return "addlist" }
func (c *AddListCmd) Aliases() []string { return []string{"createlist"} }
func (c *AddListCmd) Synopsis() string  { return "Create a list with its tasks" }
func (c *AddListCmd) Usage() string {
	return `todolists addlist [--description <text>] [--task "name|assignee|email"]... <list-name>`
}
func (c *AddListCmd) NeedsService() bool { return true }

func (c *AddListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.tasks = nil
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.Var(&c.tasks, "task", "")
	fs.Var(&c.tasks, "t", "")
}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	draft := service.NewList{
		Name:        name,
		Description: c.description,
		Tasks:       c.tasks,
	}
	if _, err := svc.AddList(ctx, draft); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}
