package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todolists/internal/backend/googletasks"
	"todolists/internal/config"
	"todolists/internal/exitcode"
	"todolists/internal/service"
)

func init() {
	Register(&ImportCmd{})
}

// TaskSource yields list drafts from an external task service.
type TaskSource interface {
	Lists(ctx context.Context) ([]service.NewList, error)
}

// TaskSourceFactory creates the import source.
type TaskSourceFactory func(ctx context.Context, cfg *config.Config) (TaskSource, error)

// GoogleTaskSource is the default import source.
func GoogleTaskSource(ctx context.Context, cfg *config.Config) (TaskSource, error) {
	return googletasks.New(ctx, cfg)
}

// ImportCmd implements the import command.
type ImportCmd struct {
	// Source overrides the import source (for testing).
	Source TaskSourceFactory

	assignee string
	email    string
}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import lists from Google Tasks" }
func (c *ImportCmd) Usage() string {
	return "todolists import [--assignee <name>] [--email <email>]"
}
func (c *ImportCmd) NeedsService() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() && c.Source == nil {
		fmt.Fprintln(errOut, "error: not logged in to Google Tasks (run: todolists login)")
		return exitcode.AuthError
	}

	factory := c.Source
	if factory == nil {
		factory = GoogleTaskSource
	}
	src, err := factory(ctx, cfg)
	if err != nil {
		return reportImportError(errOut, err)
	}

	drafts, err := src.Lists(ctx)
	if err != nil {
		return reportImportError(errOut, err)
	}

	assignee := strings.TrimSpace(c.assignee)
	email := strings.TrimSpace(c.email)

	// Lists are added one at a time; a failure stops the import and leaves
	// the lists added so far in place.
	imported := 0
	for _, draft := range drafts {
		for i := range draft.Tasks {
			draft.Tasks[i].AssigneeName = assignee
			draft.Tasks[i].AssigneeEmail = email
		}
		if _, err := svc.AddList(ctx, draft); err != nil {
			fmt.Fprintf(errOut, "error: imported %d of %d lists\n", imported, len(drafts))
			return reportError(errOut, err)
		}
		imported++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d lists\n", imported)
	}
	return exitcode.Success
}

func reportImportError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	if errors.Is(err, googletasks.ErrAuth) {
		return exitcode.AuthError
	}
	return exitcode.BackendError
}
