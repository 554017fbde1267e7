// Package cli implements the siegesync command-line client: one-shot
// commands and an interactive prompt over the same command table.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/siegesync/internal/client/client"
	"github.com/dmitrijs2005/siegesync/internal/client/config"
	"github.com/dmitrijs2005/siegesync/internal/server/auth"
)

// adminTokenValidity bounds tokens minted for a single CLI invocation.
const adminTokenValidity = 5 * time.Minute

// errUsage marks wrong operand counts; the message holds the usage line.
var errUsage = errors.New("usage")

// readPassword reads a line from the terminal without echo.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// App runs siege CLI commands against a server, one-shot or interactively.
type App struct {
	config *config.Config
	api    *client.Client
	in     *bufio.Reader
	out    io.Writer
	secret string
}

// NewApp builds an App reading from in and writing to out.
func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    client.New(c.ServerURL, c.RequestTimeout),
		in:     bufio.NewReader(in),
		out:    out,
		secret: c.AdminSecret,
	}
}

// Run executes args as a single command, or starts the prompt when args is
// empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.Root(ctx)
		return nil
	}
	return a.Execute(ctx, args)
}

// adminClient returns a client carrying an admin token when a secret is
// configured. A secret of "-" is read from the terminal once.
func (a *App) adminClient() (*client.Client, error) {
	if a.secret == "-" {
		fmt.Fprint(a.out, "Admin secret: ")
		b, err := readPassword()
		fmt.Fprintln(a.out)
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		a.secret = strings.TrimSpace(string(b))
	}
	if a.secret == "" {
		return a.api, nil
	}

	tok, err := auth.GenerateAdminToken([]byte(a.secret), adminTokenValidity)
	if err != nil {
		return nil, err
	}
	return client.New(a.config.ServerURL, a.config.RequestTimeout).WithAdminToken(tok), nil
}
