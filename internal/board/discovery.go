package board

import (
	"context"
	"log/slog"

	"github.com/review-ops/gh-stale-board/internal/github"
	"github.com/review-ops/gh-stale-board/internal/models"
)

var searchKinds = []github.SearchKind{github.SearchAuthored, github.SearchReviewRequested}

// discover runs the authored and review-requested searches for every
// team member and merges the results into a deduplicated ref list.
// Deduplication happens here, before any detail fetch, so each unique
// PR is hydrated at most once per run no matter how many searches
// surfaced it.
//
// A failed search is skipped, not fatal; the second return value
// reports how many searches failed so callers can tell partial
// results apart from an empty organization.
func discover(ctx context.Context, client github.Client, log *slog.Logger, org string, members []models.TeamMember) ([]models.PullRequestRef, int) {
	seen := make(map[models.PullRequestRef]struct{})
	var refs []models.PullRequestRef
	failed := 0

	for _, member := range members {
		for _, kind := range searchKinds {
			found, err := client.SearchPRs(ctx, kind, org, member.GitHubUsername)
			if err != nil {
				failed++
				log.Warn("search failed, skipping",
					slog.String("kind", string(kind)),
					slog.String("member", member.GitHubUsername),
					slog.Any("error", err),
				)
				continue
			}
			for _, ref := range found {
				if _, ok := seen[ref]; ok {
					continue
				}
				seen[ref] = struct{}{}
				refs = append(refs, ref)
			}
		}
	}

	log.Debug("discovery complete",
		slog.Int("unique_prs", len(refs)),
		slog.Int("failed_searches", failed),
	)
	return refs, failed
}
