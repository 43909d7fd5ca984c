package github

import (
	"context"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// SearchKind selects which search query is issued for a team member.
type SearchKind string

const (
	SearchAuthored        SearchKind = "authored"
	SearchReviewRequested SearchKind = "review-requested"
)

// Client defines the GitHub operations the board engine consumes.
type Client interface {
	// SearchPRs returns refs of open, non-archived, non-draft PRs in the
	// organization matching the kind for the given member login.
	SearchPRs(ctx context.Context, kind SearchKind, org, member string) ([]models.PullRequestRef, error)

	// FetchPRDetail hydrates one PR together with its reviews and the
	// authored dates of its commits.
	FetchPRDetail(ctx context.Context, ref models.PullRequestRef) (*models.PullRequest, []models.Review, []models.Commit, error)

	// FetchBranchProtection returns the required approving review count
	// for the branch. ErrNotFound when no rule exists, ErrAccessDenied
	// when the rule is unreadable with the current token.
	FetchBranchProtection(ctx context.Context, repo, branch string) (int, error)

	// CheckRateLimit returns the current core API quota. A nil status
	// with nil error means the check itself was unavailable.
	CheckRateLimit(ctx context.Context) (*models.RateLimitStatus, error)
}

// Ensure GHClient implements Client interface
var _ Client = (*GHClient)(nil)
