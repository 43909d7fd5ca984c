package board

import (
	"sort"
	"time"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// StalenessStart returns the instant the staleness clock starts from:
// the later of the ready-for-review time and the last approval
// invalidation. A new push resets the clock.
func StalenessStart(pr *models.PullRequest, invalidatedAt *time.Time) time.Time {
	start := pr.CreatedAt
	if pr.ReadyAt != nil {
		start = *pr.ReadyAt
	}
	if invalidatedAt != nil && invalidatedAt.After(start) {
		start = *invalidatedAt
	}
	return start
}

// Categorize maps whole days of staleness to a severity bucket.
// Day 0 is not yet stale and yields no category.
func Categorize(days int) (models.Category, bool) {
	switch {
	case days <= 0:
		return "", false
	case days <= 3:
		return models.CategoryFresh, true
	case days <= 7:
		return models.CategoryAging, true
	default:
		return models.CategoryRotten, true
	}
}

// Decide computes the staleness decision for one hydrated PR, or nil
// when the PR is not stale: draft, sufficiently approved, on a branch
// that requires no review, or insufficient for less than a full day.
func Decide(pr *models.PullRequest, reviews []models.Review, commits []models.Commit, required int, now time.Time, invalidateOnPush bool) *models.StalenessDecision {
	if pr.Draft || pr.ReadyAt == nil {
		return nil
	}
	if required <= 0 {
		return nil
	}

	approvals, invalidatedAt := EvaluateApprovals(reviews, commits)
	if invalidateOnPush && invalidatedAt != nil {
		// The invalidating push postdates every surviving approval, so
		// none of them vouches for the current code.
		approvals = 0
	} else if !invalidateOnPush {
		invalidatedAt = nil
	}
	if approvals >= required {
		return nil
	}

	start := StalenessStart(pr, invalidatedAt)
	staleness := now.Sub(start)
	if staleness < 0 {
		staleness = 0
	}

	days := int(staleness.Hours() / 24)
	category, ok := Categorize(days)
	if !ok {
		return nil
	}

	return &models.StalenessDecision{
		PR:                pr,
		CurrentApprovals:  approvals,
		RequiredApprovals: required,
		StaleSince:        start,
		Staleness:         staleness,
		Category:          category,
	}
}

func categoryRank(c models.Category) int {
	switch c {
	case models.CategoryRotten:
		return 0
	case models.CategoryAging:
		return 1
	default:
		return 2
	}
}

// SortDecisions orders decisions Rotten, Aging, Fresh; within a
// category most stale first, with (repo, number) as a deterministic
// tie-break so output does not depend on query return order.
func SortDecisions(decisions []models.StalenessDecision) {
	sort.Slice(decisions, func(i, j int) bool {
		a, b := decisions[i], decisions[j]
		if ra, rb := categoryRank(a.Category), categoryRank(b.Category); ra != rb {
			return ra < rb
		}
		if a.Staleness != b.Staleness {
			return a.Staleness > b.Staleness
		}
		if a.PR.Ref.Repo != b.PR.Ref.Repo {
			return a.PR.Ref.Repo < b.PR.Ref.Repo
		}
		return a.PR.Ref.Number < b.PR.Ref.Number
	})
}
