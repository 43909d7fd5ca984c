package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// SelectStalePR prompts the user to pick one PR from the recent stale
// board and returns the selection.
func SelectStalePR(decisions []models.StalenessDecision) (*models.StalenessDecision, error) {
	if len(decisions) == 0 {
		return nil, fmt.Errorf("no stale pull requests to select")
	}

	items := make([]string, len(decisions))
	for i, decision := range decisions {
		items[i] = FormatDecision(decision)
	}

	prompt := promptui.Select{
		Label: "Select PR",
		Items: items,
		Size:  12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return &decisions[idx], nil
}
