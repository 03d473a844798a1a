package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/venuevibe/vibecheck/internal/service"
)

// writeSyncReport prints the upserted ids and unmatched venue names as two
// tables followed by a one-line summary.
func writeSyncReport(w io.Writer, res service.SyncResult, colored bool) error {
	okColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	if !colored {
		okColor = fmt.Sprint
		warnColor = fmt.Sprint
	}

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	if colored {
		style.Color.Header = text.Colors{text.FgHiWhite, text.Bold}
	}

	// Titles go on their own line; go-pretty wraps a title to the table width.
	if _, err := fmt.Fprintln(w, "Upserted events"); err != nil {
		return err
	}
	events := table.NewWriter()
	events.SetOutputMirror(w)
	events.SetStyle(style)
	events.AppendHeader(table.Row{"#", "Event ID"})
	for i, id := range res.IDs {
		events.AppendRow(table.Row{i + 1, id})
	}
	events.AppendFooter(table.Row{"", okColor(fmt.Sprintf("%d rows", res.Count))})
	events.Render()

	if len(res.Unmatched) > 0 {
		if _, err := fmt.Fprintln(w, "Unmatched venues"); err != nil {
			return err
		}
		missing := table.NewWriter()
		missing.SetOutputMirror(w)
		missing.SetStyle(style)
		missing.AppendHeader(table.Row{"Venue name"})
		for _, name := range res.Unmatched {
			missing.AppendRow(table.Row{warnColor(name)})
		}
		missing.Render()
	}

	_, err := fmt.Fprintf(w, "synced %s, %s unmatched, %d skipped in %s\n",
		okColor(res.Count), warnColor(len(res.Unmatched)), res.Skipped, res.Duration.Round(1e6))
	return err
}
