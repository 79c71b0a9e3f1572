package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"SignalScanner/internal/model"
)

// maxListed caps how many symbols go into a single Telegram message.
const maxListed = 30

// FormatScanSummary formats a completed scan into a Telegram message.
func FormatScanSummary(snap *model.LatestSnapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n", html.EscapeString(snap.Label), snap.CompletedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Scanned: %d | Signals: %d\n", snap.TotalScanned, snap.ResultsCount))

	if len(snap.Results) == 0 {
		b.WriteString("\nNo symbols met the conditions.\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, r := range snap.Results {
		if i == maxListed {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(snap.Results)-maxListed))
			break
		}
		icon := "🟢"
		if r.Signal == model.Bearish {
			icon = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", icon, html.EscapeString(r.Symbol), formatValues(r.Values)))
	}
	return b.String()
}

func formatValues(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, values[k]))
	}
	return strings.Join(parts, " ")
}

// FormatJobStatus formats a job view for display.
func FormatJobStatus(v model.JobView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s</b> (%s)\n\n", html.EscapeString(v.Label), v.ID))
	b.WriteString(fmt.Sprintf("Status: %s\n", v.Status))
	b.WriteString(fmt.Sprintf("Progress: %d/%d (%.1f%%)\n", v.Progress, v.Total, v.Percent))
	b.WriteString(fmt.Sprintf("Signals: %d\n", len(v.Results)))
	b.WriteString(fmt.Sprintf("Started: %s\n", v.StartedAt.Format("2006-01-02 15:04:05")))
	if v.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("Completed: %s\n", v.CompletedAt.Format("2006-01-02 15:04:05")))
	}
	if v.Error != "" {
		b.WriteString(fmt.Sprintf("Error: %s\n", html.EscapeString(v.Error)))
	}
	return b.String()
}
