package slack

import (
	"fmt"
	"strings"

	"github.com/review-ops/gh-stale-board/internal/board"
	"github.com/review-ops/gh-stale-board/internal/models"
	"github.com/review-ops/gh-stale-board/internal/urls"
)

// Slack tables allow 100 rows; one is the header.
const maxTableRows = 99

// mentionMap resolves GitHub usernames to Slack user IDs.
type mentionMap map[string]string

func newMentionMap(members []models.TeamMember) mentionMap {
	m := make(mentionMap, len(members))
	for _, member := range members {
		if member.SlackUserID != "" {
			m[member.GitHubUsername] = member.SlackUserID
		}
	}
	return m
}

// mention formats a user reference, falling back to @username when no
// Slack ID is on the roster.
func (m mentionMap) mention(username string) string {
	if id, ok := m[username]; ok {
		return fmt.Sprintf("<@%s>", id)
	}
	return "@" + username
}

// richMention returns the rich_text element for a user reference.
func (m mentionMap) richMention(username string) map[string]any {
	if id, ok := m[username]; ok {
		return map[string]any{"type": "user", "user_id": id}
	}
	return map[string]any{"type": "text", "text": "@" + username}
}

// escapeMrkdwn escapes the characters Slack treats as markup.
func escapeMrkdwn(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// BuildBlocks renders a report as Block Kit blocks: a header, a table
// of the recent stale PRs (stalest first, truncated past maxPRsTotal),
// and context lines summarizing each member's old PRs with a search
// link.
func BuildBlocks(report *board.Report, members []models.TeamMember, maxPRsTotal int) []map[string]any {
	if report.Empty() {
		return []map[string]any{
			boardHeaderBlock(),
			{"type": "section", "text": map[string]any{
				"type": "mrkdwn",
				"text": ":tada: All clear! No PRs need review",
			}},
		}
	}

	mentions := newMentionMap(members)
	blocks := []map[string]any{boardHeaderBlock()}

	if len(report.Recent) > 0 {
		limit := maxPRsTotal
		if limit <= 0 || limit > maxTableRows {
			limit = maxTableRows
		}
		displayed := report.Recent
		if len(displayed) > limit {
			displayed = displayed[:limit]
		}

		rows := [][]map[string]any{tableHeaderRow()}
		for _, decision := range displayed {
			rows = append(rows, tableDataRow(decision, mentions))
		}

		blocks = append(blocks, map[string]any{
			"type": "table",
			"column_settings": []map[string]any{
				{"align": "center"}, // staleness
				{"align": "center"}, // age
				{"align": "left"},   // PR
				{"align": "center"}, // author
				{"align": "left"},   // reviewers
			},
			"rows": rows,
		})

		if truncated := len(report.Recent) - len(displayed); truncated > 0 {
			blocks = append(blocks, truncationWarning(truncated))
		}
	}

	if len(report.Old) > 0 {
		blocks = append(blocks, map[string]any{"type": "divider"})
		blocks = append(blocks, oldReportBlocks(report, mentions)...)
	}

	return blocks
}

func boardHeaderBlock() map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type":  "plain_text",
			"text":  ":calendar: Code Review Board",
			"emoji": true,
		},
	}
}

func tableHeaderRow() []map[string]any {
	headers := []string{"Staleness", "Age", "PR", "Author", "Reviewers"}
	row := make([]map[string]any, 0, len(headers))
	for _, text := range headers {
		row = append(row, richTextCell([]map[string]any{
			{"type": "text", "text": text, "style": map[string]any{"bold": true}},
		}))
	}
	return row
}

func tableDataRow(decision models.StalenessDecision, mentions mentionMap) []map[string]any {
	pr := decision.PR

	colStaleness := richTextCell([]map[string]any{
		{"type": "emoji", "name": decision.Category.Emoji()},
	})
	colAge := richTextCell([]map[string]any{
		{"type": "text", "text": fmt.Sprintf("%dd", decision.Days())},
	})
	colPR := richTextCell([]map[string]any{
		{"type": "text", "text": fmt.Sprintf("%s\n", pr.Ref)},
		{"type": "link", "text": pr.Title, "url": pr.URL},
	})
	colAuthor := richTextCell([]map[string]any{mentions.richMention(pr.Author)})

	var reviewerElements []map[string]any
	for i, reviewer := range pr.Reviewers {
		reviewerElements = append(reviewerElements, mentions.richMention(reviewer))
		if i < len(pr.Reviewers)-1 {
			reviewerElements = append(reviewerElements, map[string]any{"type": "text", "text": "\n"})
		}
	}
	if len(reviewerElements) == 0 {
		reviewerElements = []map[string]any{{"type": "text", "text": "-"}}
	}
	colReviewers := richTextCell(reviewerElements)

	return []map[string]any{colStaleness, colAge, colPR, colAuthor, colReviewers}
}

func richTextCell(elements []map[string]any) map[string]any {
	return map[string]any{
		"type": "rich_text",
		"elements": []map[string]any{
			{"type": "rich_text_section", "elements": elements},
		},
	}
}

func truncationWarning(count int) map[string]any {
	plural := ""
	if count != 1 {
		plural = "s"
	}
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": fmt.Sprintf(":warning: +%d more PR%s not shown. Check GitHub for the full list.", count, plural)},
		},
	}
}

// oldReportBlocks renders one context line per member with old stale
// PRs, linking to the equivalent GitHub search using the run's cutoff.
func oldReportBlocks(report *board.Report, mentions mentionMap) []map[string]any {
	cutoff := report.Cutoff.Format("2006-01-02")
	blocks := []map[string]any{
		{"type": "section", "text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf(":hourglass_flowing_sand: *Older PRs* (not updated since %s)", cutoff),
		}},
	}

	for _, entry := range report.Old {
		plural := ""
		if entry.Count != 1 {
			plural = "s"
		}
		text := fmt.Sprintf("%s has %d stale PR%s awaiting review",
			mentions.mention(entry.Member.GitHubUsername), entry.Count, plural)
		if link, err := urls.BuildOldPRSearchURL(entry.Member.GitHubUsername, report.Cutoff); err == nil {
			text += fmt.Sprintf(" - <%s|view on GitHub>", link)
		}
		blocks = append(blocks, map[string]any{
			"type": "context",
			"elements": []map[string]any{
				{"type": "mrkdwn", "text": text},
			},
		})
	}
	return blocks
}

// FormatText renders the report as a plain text message, used both as
// the webhook fallback and by dry-run console output.
func FormatText(report *board.Report, members []models.TeamMember) string {
	if report.Empty() {
		return ":tada: Great news! No stale PRs found. The team is all caught up on code reviews!"
	}

	mentions := newMentionMap(members)
	var lines []string
	lines = append(lines, fmt.Sprintf(":clipboard: *Stale PR Report* - %d PRs need review", len(report.Recent)))

	sections := []struct {
		category models.Category
		header   string
	}{
		{models.CategoryRotten, ":nauseated_face: *Rotten* (8+ days)"},
		{models.CategoryAging, ":cheese_wedge: *Aging* (4-7 days)"},
		{models.CategoryFresh, ":sparkles: *Fresh* (1-3 days)"},
	}

	for _, section := range sections {
		headed := false
		for _, decision := range report.Recent {
			if decision.Category != section.category {
				continue
			}
			if !headed {
				lines = append(lines, "", section.header)
				headed = true
			}
			lines = append(lines, formatTextEntry(decision, mentions))
		}
	}

	if len(report.Old) > 0 {
		cutoff := report.Cutoff.Format("2006-01-02")
		lines = append(lines, "", fmt.Sprintf(":hourglass_flowing_sand: *Older PRs* (not updated since %s)", cutoff))
		for _, entry := range report.Old {
			plural := ""
			if entry.Count != 1 {
				plural = "s"
			}
			lines = append(lines, fmt.Sprintf("• %s: %d stale PR%s",
				mentions.mention(entry.Member.GitHubUsername), entry.Count, plural))
		}
	}

	return strings.Join(lines, "\n")
}

func formatTextEntry(decision models.StalenessDecision, mentions mentionMap) string {
	pr := decision.PR
	days := decision.Days()

	reviewers := "none"
	if len(pr.Reviewers) > 0 {
		formatted := make([]string, 0, len(pr.Reviewers))
		for _, reviewer := range pr.Reviewers {
			formatted = append(formatted, mentions.mention(reviewer))
		}
		reviewers = strings.Join(formatted, ", ")
	}

	plural := ""
	if days != 1 {
		plural = "s"
	}
	return fmt.Sprintf("• <%s|%s> - %s\n  Author: %s | Reviewers: %s\n  Approvals: %d/%d | %d day%s old",
		pr.URL, pr.Ref, escapeMrkdwn(pr.Title),
		mentions.mention(pr.Author), reviewers,
		decision.CurrentApprovals, decision.RequiredApprovals, days, plural)
}
