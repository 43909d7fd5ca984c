package board

import (
	"context"
	"errors"
	"log/slog"

	"github.com/review-ops/gh-stale-board/internal/github"
)

// ProtectionResolver answers "how many approvals does this branch
// require" with a per-run cache so the same (repository, branch) pair
// is never looked up twice. The cache lives on the resolver instance,
// not in package state, so runs and tests stay isolated.
type ProtectionResolver struct {
	client   github.Client
	log      *slog.Logger
	fallback int
	cache    map[protectionKey]int
}

type protectionKey struct {
	repo   string
	branch string
}

// NewProtectionResolver builds a resolver with an empty cache.
// fallback is used when no rule exists or the rule is unreadable.
func NewProtectionResolver(client github.Client, log *slog.Logger, fallback int) *ProtectionResolver {
	if fallback < 1 {
		fallback = 1
	}
	return &ProtectionResolver{
		client:   client,
		log:      log,
		fallback: fallback,
		cache:    make(map[protectionKey]int),
	}
}

// Resolve returns the required approving review count for the branch.
// A configured count of 0 is returned as 0: the branch intentionally
// requires no review, and the categorizer treats that as an explicit
// non-staleness condition rather than clamping it to 1.
//
// Not-found, access-denied and transport failures all degrade to the
// default count. The only error Resolve reports is an exhausted rate
// budget, which the caller must turn into a run-level abort.
func (r *ProtectionResolver) Resolve(ctx context.Context, repo, branch string) (int, error) {
	key := protectionKey{repo: repo, branch: branch}
	if count, ok := r.cache[key]; ok {
		return count, nil
	}

	count, err := r.client.FetchBranchProtection(ctx, repo, branch)
	switch {
	case err == nil:
	case errors.Is(err, github.ErrNotFound):
		r.log.Debug("no branch protection rule, using default",
			slog.String("repo", repo),
			slog.String("branch", branch),
			slog.Int("default", r.fallback),
		)
		count = r.fallback
	default:
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			return 0, rateErr
		}
		r.log.Warn("branch protection lookup failed, using default",
			slog.String("repo", repo),
			slog.String("branch", branch),
			slog.Int("default", r.fallback),
			slog.Any("error", err),
		)
		count = r.fallback
	}

	r.cache[key] = count
	return count, nil
}
