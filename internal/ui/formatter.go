package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/review-ops/gh-stale-board/internal/models"
)

func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// FormatDecision renders one stale PR as a fixed-width picker row.
func FormatDecision(decision models.StalenessDecision) string {
	title := decision.PR.Title
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	return fmt.Sprintf("%s %s %s %s",
		PadRight(string(decision.Category), 7),
		PadRight(fmt.Sprintf("%dd", decision.Days()), 4),
		PadRight(decision.PR.Ref.String(), 40),
		PadRight(title, 60),
	)
}
