package interactive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"podscribe/internal/store"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiCyan    = "\x1b[36m"
	ansiMagenta = "\x1b[35m"
)

func statusSymbol(status store.Status) string {
	switch status {
	case store.StatusNew:
		return "[ ]"
	case store.StatusDownloading, store.StatusDownloaded:
		return "[↓]"
	case store.StatusTranscribing, store.StatusTranscribed:
		return "[T]"
	case store.StatusAnalyzing:
		return "[I]"
	case store.StatusDone:
		return "[✓]"
	case store.StatusError:
		return "[!]"
	default:
		return "[?]"
	}
}

func statusColor(status store.Status) string {
	switch status {
	case store.StatusDownloading, store.StatusDownloaded:
		return ansiYellow
	case store.StatusTranscribing, store.StatusTranscribed:
		return ansiCyan
	case store.StatusAnalyzing:
		return ansiMagenta
	case store.StatusDone:
		return ansiGreen
	case store.StatusError:
		return ansiRed
	default:
		return ""
	}
}

func colorizeStatus(status store.Status, colorize bool) string {
	symbol := statusSymbol(status)
	if !colorize {
		return symbol
	}
	color := statusColor(status)
	if color == "" {
		return symbol
	}
	return color + symbol + ansiReset
}

func renderFeedTable(feeds []store.FeedStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Podcast Library")
	tw.AppendHeader(table.Row{"#", "Podcast", "New", "Done", "Total"})
	for idx, feed := range feeds {
		name := feed.Name
		if name == "" {
			name = feed.Slug
		}
		if name == "" {
			name = "Unnamed"
		}
		tw.AppendRow(table.Row{idx + 1, name, feed.NewCount, feed.DoneCount, feed.TotalCount})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

func renderEpisodeTable(feedName string, episodes []*store.Episode, total int, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Episodes - " + feedName)
	tw.AppendHeader(table.Row{"#", "Status", "Episode Title", "Date"})
	for idx, episode := range episodes {
		title := episode.Title
		if title == "" {
			title = "Untitled"
		}
		date := episode.PubDate
		if date == "" {
			date = "Unknown"
		}
		tw.AppendRow(table.Row{idx + 1, colorizeStatus(episode.Status, colorize), title, date})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	fmt.Fprintf(&b, "\nShowing %d of %d episodes\n", len(episodes), total)
	return b.String()
}

func renderError(message string, colorize bool) string {
	line := "Error: " + truncate(message, 80)
	if colorize {
		return ansiRed + line + ansiReset
	}
	return line
}

func truncate(s string, limit int) string {
	if limit <= 3 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
