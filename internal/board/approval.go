package board

import (
	"time"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// EvaluateApprovals reduces a PR's reviews to the current count of
// valid approvals and the instant of the most recent event that
// invalidated prior approvals, if any.
//
// Reviews are reduced to one per author, most recent SubmittedAt wins:
// a later comment or dismissal from the same author supersedes their
// earlier approval. A commit authored strictly after the newest
// surviving approval invalidates the approval set. This is a
// conservative stand-in for the host platform's own stale-review
// dismissal, which is not queried directly.
func EvaluateApprovals(reviews []models.Review, commits []models.Commit) (int, *time.Time) {
	latest := make(map[string]models.Review, len(reviews))
	for _, review := range reviews {
		if review.Author == "" || review.State == models.ReviewPending {
			continue
		}
		current, ok := latest[review.Author]
		if !ok || review.SubmittedAt.After(current.SubmittedAt) {
			latest[review.Author] = review
		}
	}

	approvals := 0
	var lastApprovalAt time.Time
	for _, review := range latest {
		if review.State != models.ReviewApproved {
			continue
		}
		approvals++
		if review.SubmittedAt.After(lastApprovalAt) {
			lastApprovalAt = review.SubmittedAt
		}
	}

	var lastCommitAt time.Time
	for _, commit := range commits {
		if commit.AuthoredAt.After(lastCommitAt) {
			lastCommitAt = commit.AuthoredAt
		}
	}

	if lastCommitAt.IsZero() {
		return approvals, nil
	}
	if lastApprovalAt.IsZero() || lastCommitAt.After(lastApprovalAt) {
		invalidatedAt := lastCommitAt
		return approvals, &invalidatedAt
	}
	return approvals, nil
}
