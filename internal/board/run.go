package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/review-ops/gh-stale-board/internal/github"
	"github.com/review-ops/gh-stale-board/internal/models"
)

// Options configure one board run.
type Options struct {
	// DefaultRequiredApprovals is used when a branch has no readable
	// protection rule. Minimum 1.
	DefaultRequiredApprovals int
	// WindowDays separates individually-reported stale PRs from the
	// per-member old summary. Zero or negative disables windowing.
	WindowDays int
	// InvalidateOnPush resets the staleness clock when commits land
	// after the latest approval.
	InvalidateOnPush bool
	// AttributeAuthor counts authorless-reviewer old PRs toward a
	// team-member author in the old report.
	AttributeAuthor bool
}

// Report is the run outcome: the recent stale board plus the old
// summary. An aborted run produces no Report at all.
type Report struct {
	Recent         []models.StalenessDecision
	Old            []models.OldPRReportEntry
	Cutoff         time.Time
	WindowEnabled  bool
	FailedSearches int
}

// Empty reports whether nothing is stale.
func (r *Report) Empty() bool {
	return len(r.Recent) == 0 && len(r.Old) == 0
}

// CountByCategory returns how many recent decisions fall in each bucket.
func (r *Report) CountByCategory() map[models.Category]int {
	counts := make(map[models.Category]int, 3)
	for _, decision := range r.Recent {
		counts[decision.Category]++
	}
	return counts
}

// Board runs the stale-PR detection pipeline: discover, hydrate,
// resolve required approvals, decide, partition.
type Board struct {
	client  github.Client
	log     *slog.Logger
	org     string
	members []models.TeamMember
	opts    Options
	now     func() time.Time
}

// New builds a Board. The clock defaults to time.Now.
func New(client github.Client, log *slog.Logger, org string, members []models.TeamMember, opts Options) *Board {
	if opts.DefaultRequiredApprovals < 1 {
		opts.DefaultRequiredApprovals = 1
	}
	return &Board{
		client:  client,
		log:     log,
		org:     org,
		members: members,
		opts:    opts,
		now:     time.Now,
	}
}

// Run executes one full scan. It returns *github.RateLimitError when
// the API budget is exhausted before or during the scan; in that case
// every already-computed decision is discarded, because a report
// missing an unknown subset of PRs is worse than no report.
func (b *Board) Run(ctx context.Context) (*Report, error) {
	now := b.now().UTC()

	if err := b.checkBudget(ctx); err != nil {
		return nil, err
	}

	refs, failedSearches := discover(ctx, b.client, b.log, b.org, b.members)
	b.log.Info("discovered pull requests",
		slog.Int("count", len(refs)),
		slog.Int("failed_searches", failedSearches),
	)

	resolver := NewProtectionResolver(b.client, b.log, b.opts.DefaultRequiredApprovals)

	var decisions []models.StalenessDecision
	for _, ref := range refs {
		pr, reviews, commits, err := b.client.FetchPRDetail(ctx, ref)
		if err != nil {
			var rateErr *github.RateLimitError
			if errors.As(err, &rateErr) {
				return nil, rateErr
			}
			if errors.Is(err, github.ErrMalformed) {
				b.log.Warn("excluding malformed pull request", slog.String("pr", ref.String()), slog.Any("error", err))
			} else {
				b.log.Warn("skipping pull request, detail fetch failed", slog.String("pr", ref.String()), slog.Any("error", err))
			}
			continue
		}

		required, err := resolver.Resolve(ctx, pr.Ref.Repo, pr.BaseRef)
		if err != nil {
			return nil, err
		}

		decision := Decide(pr, reviews, commits, required, now, b.opts.InvalidateOnPush)
		if decision != nil {
			decisions = append(decisions, *decision)
		}
	}

	SortDecisions(decisions)

	report := &Report{FailedSearches: failedSearches}
	if b.opts.WindowDays <= 0 {
		report.Recent = decisions
		return report, nil
	}

	report.WindowEnabled = true
	report.Cutoff = CutoffDate(now, b.opts.WindowDays)
	var old []models.StalenessDecision
	report.Recent, old = PartitionByWindow(decisions, report.Cutoff)
	report.Old = BuildOldReport(old, b.members, b.opts.AttributeAuthor, b.log)
	return report, nil
}

// checkBudget aborts the run up front when the core API budget is
// already exhausted. A failed check is non-fatal.
func (b *Board) checkBudget(ctx context.Context) error {
	status, err := b.client.CheckRateLimit(ctx)
	if err != nil {
		b.log.Debug("rate limit check unavailable", slog.Any("error", err))
		return nil
	}
	if status == nil {
		return nil
	}
	if status.Exhausted() {
		return &github.RateLimitError{ResetAt: status.ResetAt}
	}
	switch {
	case status.Remaining < 100:
		b.log.Warn("GitHub API rate limit is low",
			slog.Int("remaining", status.Remaining),
			slog.Int("limit", status.Limit),
			slog.Time("resets_at", status.ResetAt),
		)
	case status.Remaining < 500:
		b.log.Info("GitHub API rate limit",
			slog.Int("remaining", status.Remaining),
			slog.Int("limit", status.Limit),
		)
	}
	return nil
}
