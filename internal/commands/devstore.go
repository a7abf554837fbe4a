package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolists/internal/config"
	"todolists/internal/devstore"
	"todolists/internal/exitcode"
	"todolists/internal/logging"
	"todolists/internal/service"
)

func init() {
	Register(&DevStoreCmd{})
}

// DevStoreCmd runs the in-memory development store until interrupted.
type DevStoreCmd struct {
	addr string
}

func (c *DevStoreCmd) Name() string       { return "devstore" }
func (c *DevStoreCmd) Aliases() []string  { return nil }
func (c *DevStoreCmd) Synopsis() string   { return "Run an in-memory development store" }
func (c *DevStoreCmd) Usage() string      { return "todolists devstore [--addr <host:port>]" }
func (c *DevStoreCmd) NeedsService() bool { return false }

func (c *DevStoreCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", ":8080", "")
}

func (c *DevStoreCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	logger, closer := logging.New(cfg, errOut)
	defer closer.Close()

	if !cfg.Quiet {
		fmt.Fprintf(out, "serving /fdb/%s/%s on %s\n", cfg.Network, cfg.Ledger, c.addr)
	}
	store := devstore.New(cfg.Network, cfg.Ledger)
	if err := store.Serve(ctx, c.addr, logger); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
