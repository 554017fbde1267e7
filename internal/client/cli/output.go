package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/siegesync/internal/server/models"
)

var (
	gold   = color.New(color.FgYellow, color.Bold)
	silver = color.New(color.FgWhite, color.Bold)
	bronze = color.New(color.FgRed)
	faint  = color.New(color.Faint)
	unread = color.New(color.FgGreen, color.Bold)
)

func rankColor(rank int) *color.Color {
	switch rank {
	case 1:
		return gold
	case 2:
		return silver
	case 3:
		return bronze
	default:
		return faint
	}
}

func printLeaderboard(w io.Writer, records []models.UserRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No active players")
		return
	}
	for i, r := range records {
		rank := i + 1
		line := fmt.Sprintf("%3d. %-20s %12.0f", rank, r.Username, r.Coins)
		if r.Hours != nil {
			line += fmt.Sprintf("  %6.1fh", *r.Hours)
		}
		rankColor(rank).Fprintln(w, line)
	}
}

func printSignals(w io.Writer, records []models.SignalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No signals")
		return
	}
	for _, s := range records {
		ts := time.UnixMilli(s.Timestamp).Format(time.RFC3339)
		line := fmt.Sprintf("%s  %-8s from %-16s %s", ts, s.Type, s.From, s.ID)
		if s.Read {
			faint.Fprintln(w, line)
		} else {
			unread.Fprintln(w, line+"  [new]")
		}
	}
}
