package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
)

// ANSI color codes, matching the console styling used across the project
// binaries.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const tonerBarWidth = 20

// Render draws every card plus the aggregate counters. The caller decides
// whether to clear the screen first; Render only appends.
func (b *Board) Render(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := b.stats
	fmt.Fprintf(w, "%s%d printers%s | %s%d online%s | %s%d offline%s\n\n",
		colorBold, stats.Total, colorReset,
		colorGreen, stats.Online, colorReset,
		colorRed, stats.Offline, colorReset)

	for _, key := range b.order {
		renderCard(w, b.cards[key])
	}
}

func renderCard(w io.Writer, card *Card) {
	fmt.Fprintf(w, "%s%s%s  %s[%s]%s\n", colorBold, card.Name, colorReset, statusColor(card), card.StatusLine, colorReset)
	fmt.Fprintf(w, "  %sIP:%s %s  %sLocation:%s %s\n", colorDim, colorReset, card.Address, colorDim, colorReset, card.Location)
	fmt.Fprintf(w, "  %s%s%s\n", colorDim, card.MethodLine, colorReset)

	for _, t := range card.Toners {
		filled := t.Level * tonerBarWidth / 100
		bar := strings.Repeat("█", filled) + strings.Repeat("░", tonerBarWidth-filled)
		fmt.Fprintf(w, "  %-8s %s[%s]%s %3d%%\n", t.Color, bucketColor(t.Bucket), bar, colorReset, t.Level)
	}

	for _, t := range card.Trays {
		fmt.Fprintf(w, "  %-12s %s%s%s\n", t.Name+":", trayColor(t.State), t.Raw, colorReset)
	}

	fmt.Fprintln(w)
}

func statusColor(card *Card) string {
	switch card.Status {
	case report.StatusOnline:
		return colorGreen
	case report.StatusOffline:
		return colorRed
	default:
		return colorYellow
	}
}

func bucketColor(bucket report.LevelBucket) string {
	switch bucket {
	case report.LevelHigh:
		return colorGreen
	case report.LevelMedium:
		return colorYellow
	default:
		return colorRed
	}
}

func trayColor(state report.TrayState) string {
	switch state {
	case report.TrayOK:
		return colorGreen
	case report.TrayLow:
		return colorYellow
	case report.TrayEmpty, report.TrayOpen:
		return colorRed
	default:
		return colorDim
	}
}
