package models

import (
	"fmt"
	"time"
)

// PullRequestRef identifies a pull request by repository full name and
// number. It is the deduplication key during discovery.
type PullRequestRef struct {
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repo, r.Number)
}

// PullRequest is the hydrated record for a single open pull request.
// It is never mutated after the boundary client returns it.
type PullRequest struct {
	Ref       PullRequestRef
	Title     string
	URL       string
	Author    string
	Reviewers []string // requested reviewer logins
	Draft     bool
	BaseRef   string

	CreatedAt time.Time
	// ReadyAt is when the PR was marked ready for review. Nil while the
	// PR is in draft; equals CreatedAt when it was never a draft.
	ReadyAt   *time.Time
	UpdatedAt time.Time
}

// ReviewState is a GitHub pull request review state.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Review is a single submitted review. Multiple reviews may exist per
// author; only the latest by SubmittedAt is authoritative.
type Review struct {
	Author      string
	State       ReviewState
	SubmittedAt time.Time
}

// Commit carries only the authored date; the maximum across a PR's
// commits is used to detect approval invalidation.
type Commit struct {
	AuthoredAt time.Time
}

// BranchProtectionRule is the resolved review requirement for one
// repository branch. RequiredApprovals of 0 means the branch
// intentionally requires no approving reviews.
type BranchProtectionRule struct {
	Repo              string
	Branch            string
	RequiredApprovals int
}

// TeamMember is one entry of the team roster.
type TeamMember struct {
	GitHubUsername string `json:"github_username"`
	SlackUserID    string `json:"slack_id,omitempty"`
}

// RateLimitStatus is a snapshot of the GitHub API core rate budget.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Exhausted reports whether no quota remains.
func (s RateLimitStatus) Exhausted() bool {
	return s.Remaining <= 0
}
