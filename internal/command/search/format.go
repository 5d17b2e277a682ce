package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FormatViews renders a view count as 1.2M, 3.4K or the plain number. The
// upstream sends either a number or a comma-grouped string; anything without
// a leading number is N/A.
func FormatViews(views string) string {
	s := strings.ReplaceAll(strings.TrimSpace(views), ",", "")
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return "N/A"
	}
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}

// TruncateDescription cuts a description to max runes, backing off to the last
// space when it falls in the final 30%.
func TruncateDescription(desc string, max int) string {
	if desc == "" {
		return "No description"
	}
	runes := []rune(desc)
	if len(runes) <= max {
		return desc
	}
	cut := runes[:max]
	if i := lastSpace(cut); float64(i) > float64(max)*0.7 {
		cut = cut[:i]
	}
	return string(cut) + "..."
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}
