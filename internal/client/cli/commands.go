package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/client/client"
)

const helpText = `Commands:
  leaderboard                    show active players by coins
  sync <user> <coins> [hours]    report a snapshot stamped now
  signal <from> <to> <type>      send a signal
  signals <user>                 list a user's inbox
  read <id>...                   mark signals read
  populate <user>                seed fixture data (dev routes)
  clear                          delete every key (dev routes)
  health                         check the server
  help, exit`

// Execute runs one command.
func (a *App) Execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "leaderboard":
		return a.leaderboard(ctx)
	case "sync":
		return a.sync(ctx, rest)
	case "signal":
		if len(rest) != 3 {
			return fmt.Errorf("%w: signal <from> <to> <type>", errUsage)
		}
		if err := a.api.SendSignal(ctx, rest[0], rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signal sent")
		return nil
	case "signals":
		if len(rest) != 1 {
			return fmt.Errorf("%w: signals <user>", errUsage)
		}
		return a.signals(ctx, rest[0])
	case "read":
		if len(rest) == 0 {
			return fmt.Errorf("%w: read <id>...", errUsage)
		}
		if err := a.api.MarkRead(ctx, rest); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Marked %d signal(s) read\n", len(rest))
		return nil
	case "populate":
		if len(rest) != 1 {
			return fmt.Errorf("%w: populate <user>", errUsage)
		}
		return a.populate(ctx, rest[0])
	case "clear":
		return a.clear(ctx)
	case "health":
		if err := a.api.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "ok")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) sync(ctx context.Context, rest []string) error {
	if len(rest) < 2 || len(rest) > 3 {
		return fmt.Errorf("%w: sync <user> <coins> [hours]", errUsage)
	}

	coins, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return fmt.Errorf("invalid coins %q", rest[1])
	}

	req := client.SyncRequest{Username: rest[0], Coins: coins, LastUpdated: time.Now().UnixMilli()}
	if len(rest) == 3 {
		hours, err := strconv.ParseFloat(rest[2], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", rest[2])
		}
		req.Hours = &hours
	}

	if err := a.api.Sync(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Synced")
	return nil
}

func (a *App) leaderboard(ctx context.Context) error {
	records, err := a.api.Leaderboard(ctx)
	if err != nil {
		return err
	}
	printLeaderboard(a.out, records)
	return nil
}

func (a *App) signals(ctx context.Context, username string) error {
	records, err := a.api.Signals(ctx, username)
	if err != nil {
		return err
	}
	printSignals(a.out, records)
	return nil
}

func (a *App) populate(ctx context.Context, username string) error {
	c, err := a.adminClient()
	if err != nil {
		return err
	}
	res, err := c.Populate(ctx, username)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Seeded %d users and %d signals\n", res.TestUsers, res.TestSignals)
	return nil
}

func (a *App) clear(ctx context.Context) error {
	c, err := a.adminClient()
	if err != nil {
		return err
	}
	n, err := c.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cleared %d keys\n", n)
	return nil
}
