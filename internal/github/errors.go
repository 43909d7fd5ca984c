package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound marks a branch-protection lookup for a branch with no
// configured rule.
var ErrNotFound = errors.New("branch protection rule not found")

// ErrAccessDenied marks a branch-protection rule the current token is
// not allowed to read.
var ErrAccessDenied = errors.New("branch protection rule not readable")

// ErrMalformed marks a PR detail record missing required fields.
var ErrMalformed = errors.New("malformed pull request record")

// RateLimitError is returned when the API budget is exhausted. The run
// aborts without a report when it surfaces.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "GitHub API rate limit exhausted"
	}
	return fmt.Sprintf("GitHub API rate limit exhausted, resets at %s", e.ResetAt.Format(time.RFC3339))
}
