package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Root runs the interactive prompt until exit or end of input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "siegesync CLI (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "siege> ")

		line, err := a.in.ReadString('\n')
		parts := strings.Fields(line)

		if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				fmt.Fprintln(a.out, "Bye!")
				return
			default:
				if cerr := a.Execute(ctx, parts); cerr != nil {
					a.printError(cerr)
				}
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.printError(err)
			}
			fmt.Fprintln(a.out)
			return
		}
	}
}

func (a *App) printError(err error) {
	if errors.Is(err, errUsage) {
		fmt.Fprintln(a.out, "Usage:", strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
		return
	}
	fmt.Fprintln(a.out, "Error:", err)
}
