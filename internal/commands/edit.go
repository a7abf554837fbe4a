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
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given, so
// an explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = strings.TrimSpace(v)
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	name     optionalString
	assignee optionalString
	email    optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's name or assignee" }
func (c *EditCmd) Usage() string {
	return "todolists edit [--name <title>] [--assignee <name>] [--email <email>] <ref>"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.name, c.assignee, c.email = optionalString{}, optionalString{}, optionalString{}
	fs.Var(&c.name, "name", "")
	fs.Var(&c.name, "n", "")
	fs.Var(&c.assignee, "assignee", "")
	fs.Var(&c.email, "email", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if n != len(args) {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}
	if !c.name.set && !c.assignee.set && !c.email.set {
		fmt.Fprintln(errOut, "error: nothing to change, use --name, --assignee or --email")
		return exitcode.UserError
	}

	_, task, err := ResolveTaskRef(svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}

	if c.name.set {
		if c.name.value == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		task.Name = c.name.value
	}
	if c.assignee.set {
		task.AssignedTo.Name = c.assignee.value
	}
	if c.email.set {
		task.AssignedTo.Email = c.email.value
	}

	if _, err := svc.EditTask(ctx, task); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}
