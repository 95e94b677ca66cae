// Package format renders voxtail listings as tables, plain text, or
// JSON.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"voxtail/internal/store"
	"voxtail/internal/voicevox"
)

// DetectFormat picks "table" when out is an interactive terminal and
// "plain" otherwise, for commands whose --format flag is set to auto.
func DetectFormat(out io.Writer) string {
	if file, ok := out.(*os.File); ok {
		fd := file.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return "table"
		}
	}
	return "plain"
}

// snippetWidth clamps the snippet column to the terminal width, falling
// back to a fixed width when out is not a terminal.
func snippetWidth(out io.Writer) int {
	const fallback = 80
	file, ok := out.(*os.File)
	if !ok {
		return fallback
	}
	w, _, err := term.GetSize(int(file.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	// Leave room for the fixed-width columns.
	width := w - 60
	if width < 24 {
		width = 24
	}
	if width > fallback {
		width = fallback
	}
	return width
}

// WriteSessions writes transcript summaries to w in the requested
// format: table, plain, json, or jsonl.
func WriteSessions(w io.Writer, items []store.Session, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "auto":
		return WriteSessions(w, items, includeHeader, DetectFormat(w))
	case "", "table":
		return writeSessionsTable(w, items, includeHeader)
	case "plain":
		return writeSessionsPlain(w, items, includeHeader)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSessionsPlain(w io.Writer, items []store.Session, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "modified\tsession_id\tmessages\tlast_message"); err != nil {
			return err
		}
	}

	for _, item := range items {
		line := fmt.Sprintf(
			"%s\t%s\t%d\t%s",
			item.ModifiedAt.Format(time.RFC3339),
			item.ID,
			item.MessageCount,
			escapeNewlines(item.LastText),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsTable(w io.Writer, items []store.Session, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: snippetWidth(w)},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Modified", "Session ID", "Messages", "Last Message"})
	}

	for _, item := range items {
		tw.AppendRow(table.Row{
			item.ModifiedAt.Format(time.RFC3339),
			item.ID,
			item.MessageCount,
			escapeNewlines(item.LastText),
		})
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", 0, "-"})
	}

	_ = tw.Render()
	return nil
}

// WriteSpeakers writes the engine's speaker catalogue to w, one row per
// voice style, in the requested format: table, plain, or json.
func WriteSpeakers(w io.Writer, speakers []voicevox.Speaker, format string) error {
	switch strings.ToLower(format) {
	case "auto":
		return WriteSpeakers(w, speakers, DetectFormat(w))
	case "", "table":
		return writeSpeakersTable(w, speakers)
	case "plain":
		for _, sp := range speakers {
			for _, style := range sp.Styles {
				if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", style.ID, sp.Name, style.Name); err != nil {
					return err
				}
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(speakers)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSpeakersTable(w io.Writer, speakers []voicevox.Speaker) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"ID", "Speaker", "Style"})

	for _, sp := range speakers {
		for _, style := range sp.Styles {
			tw.AppendRow(table.Row{style.ID, sp.Name, style.Name})
		}
	}

	if len(speakers) == 0 {
		tw.AppendRow(table.Row{"-", "(no speakers)", "-"})
	}

	_ = tw.Render()
	return nil
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
