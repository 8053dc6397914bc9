package provider

import (
	"fmt"
	"strings"
)

// defaultHistoryWindow is the sliding-window size used when a provider
// doesn't specify its own, within spec.md §4.3's stated N=5-10 range.
const defaultHistoryWindow = 8

// TruncateHistory keeps only the last window messages, per spec.md §4.3's
// "providers truncate history to a sliding window (last N=5-10) before
// sending." A window <= 0 falls back to defaultHistoryWindow.
func TruncateHistory(history []Message, window int) []Message {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	if len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// FormatHistory renders a truncated history as the plain-text block the
// {{history}} template slot expects.
func FormatHistory(history []Message) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
