package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolists/internal/config"
	"todolists/internal/exitcode"
	"todolists/internal/output"
	"todolists/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "List all lists" }
func (c *ListsCmd) Usage() string      { return "todolists lists" }
func (c *ListsCmd) NeedsService() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists := svc.Lists()
	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}
	for _, list := range lists {
		output.FormatListName(out, list)
	}
	return exitcode.Success
}
