package models

import "time"

// Category is a staleness severity bucket.
type Category string

const (
	CategoryFresh  Category = "fresh"  // 1-3 days
	CategoryAging  Category = "aging"  // 4-7 days
	CategoryRotten Category = "rotten" // 8+ days
)

// Emoji returns the Slack emoji name for a category.
func (c Category) Emoji() string {
	switch c {
	case CategoryRotten:
		return "nauseated_face"
	case CategoryAging:
		return "cheese_wedge"
	default:
		return "sparkles"
	}
}

// StalenessDecision is the per-PR output of the detection engine.
// Recomputed from scratch on every run, never persisted.
type StalenessDecision struct {
	PR                *PullRequest
	CurrentApprovals  int
	RequiredApprovals int
	// StaleSince is the later of the ready-for-review instant and the
	// most recent approval-invalidation instant.
	StaleSince time.Time
	Staleness  time.Duration
	Category   Category
}

// Days returns the staleness in whole days.
func (d StalenessDecision) Days() int {
	return int(d.Staleness.Hours() / 24)
}

// OldPRReportEntry summarizes one member's stale PRs that fell beyond
// the age window and are reported only as a count.
type OldPRReportEntry struct {
	Member TeamMember
	Count  int
}
