package board

import (
	"log/slog"
	"sort"
	"time"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// CutoffDate computes the calendar-day cutoff separating recent stale
// PRs from old ones: midnight UTC of (now - windowDays). It is
// computed once per run and shared by the board filter and the old
// report so the partition is exhaustive and mutually exclusive.
func CutoffDate(now time.Time, windowDays int) time.Time {
	d := now.UTC().AddDate(0, 0, -windowDays)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// PartitionByWindow splits stale decisions into recent (reported
// individually) and old (reported only as per-member counts). A PR is
// old iff its last update is strictly before the cutoff date.
func PartitionByWindow(decisions []models.StalenessDecision, cutoff time.Time) (recent, old []models.StalenessDecision) {
	for _, decision := range decisions {
		if decision.PR.UpdatedAt.Before(cutoff) {
			old = append(old, decision)
		} else {
			recent = append(recent, decision)
		}
	}
	return recent, old
}

// BuildOldReport counts old stale PRs per team member. A PR counts
// toward every team member among its requested reviewers; when none of
// the reviewers is on the roster and attributeAuthor is set, it counts
// toward a team-member author instead. Members with a zero count are
// omitted. Entries are ordered by descending count, then username.
func BuildOldReport(old []models.StalenessDecision, members []models.TeamMember, attributeAuthor bool, log *slog.Logger) []models.OldPRReportEntry {
	roster := make(map[string]models.TeamMember, len(members))
	for _, member := range members {
		roster[member.GitHubUsername] = member
	}

	counts := make(map[string]int)
	for _, decision := range old {
		matched := false
		for _, reviewer := range decision.PR.Reviewers {
			if _, ok := roster[reviewer]; ok {
				counts[reviewer]++
				matched = true
			}
		}
		if matched {
			continue
		}
		if attributeAuthor {
			if _, ok := roster[decision.PR.Author]; ok {
				counts[decision.PR.Author]++
				continue
			}
		}
		log.Debug("old stale PR has no team member to attribute",
			slog.String("pr", decision.PR.Ref.String()),
		)
	}

	entries := make([]models.OldPRReportEntry, 0, len(counts))
	for username, count := range counts {
		entries = append(entries, models.OldPRReportEntry{
			Member: roster[username],
			Count:  count,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Member.GitHubUsername < entries[j].Member.GitHubUsername
	})
	return entries
}
