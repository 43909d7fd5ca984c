package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/review-ops/gh-stale-board/internal/board"
	"github.com/review-ops/gh-stale-board/internal/config"
	"github.com/review-ops/gh-stale-board/internal/github"
	"github.com/review-ops/gh-stale-board/internal/logger"
	"github.com/review-ops/gh-stale-board/internal/slack"
	"github.com/review-ops/gh-stale-board/internal/ui"
)

type flags struct {
	dryRun      bool
	interactive bool
	teamFile    string
}

func runCommand(ctx context.Context, f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	if !f.dryRun && cfg.SlackWebhookURL == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is required (or use --dry-run to print to the console)")
	}

	members, err := config.LoadTeamMembers(f.teamFile)
	if err != nil {
		return err
	}
	log.Info("loaded team roster", slog.Int("members", len(members)))

	client, err := github.NewClient(cfg.APITimeout())
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	b := board.New(client, log, cfg.Org, members, board.Options{
		DefaultRequiredApprovals: cfg.DefaultRequiredApprovals,
		WindowDays:               cfg.WindowDays(log),
		InvalidateOnPush:         cfg.InvalidateOnPush,
		AttributeAuthor:          cfg.OldReportAttributeAuthor,
	})

	log.Info("scanning for stale pull requests", slog.String("org", cfg.Org))
	report, err := b.Run(ctx)
	if err != nil {
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			if rateErr.ResetAt.IsZero() {
				return fmt.Errorf("aborted: %w; retry later", rateErr)
			}
			return fmt.Errorf("aborted: %w; retry after %s", rateErr, time.Until(rateErr.ResetAt).Round(time.Minute))
		}
		return err
	}

	counts := report.CountByCategory()
	log.Info("scan complete",
		slog.Int("rotten", counts["rotten"]),
		slog.Int("aging", counts["aging"]),
		slog.Int("fresh", counts["fresh"]),
		slog.Int("old", len(report.Old)),
		slog.Int("failed_searches", report.FailedSearches),
	)

	if f.dryRun {
		fmt.Println(slack.FormatText(report, members))
	} else {
		slackClient := slack.NewClient(cfg.SlackWebhookURL, cfg.APITimeout())
		blocks := slack.BuildBlocks(report, members, cfg.MaxPRsTotal)
		if err := slackClient.PostBlocks(ctx, blocks); err != nil {
			return err
		}
		log.Info("Slack notification sent")
	}

	if f.interactive && len(report.Recent) > 0 {
		decision, err := ui.SelectStalePR(report.Recent)
		if err != nil {
			return err
		}
		fmt.Println(decision.PR.URL)
		bw := browser.New("", os.Stdout, os.Stderr)
		if err := bw.Browse(decision.PR.URL); err != nil {
			log.Warn("failed to open browser", slog.Any("error", err))
		}
	}

	return nil
}

func main() {
	var f flags

	cmd := &cobra.Command{
		Use:   "gh-stale-board",
		Short: "Report pull requests that lack required approvals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd.Context(), f)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the report instead of posting to Slack")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "pick a stale PR and open it in the browser")
	cmd.Flags().StringVar(&f.teamFile, "team-file", "team_members.json", "path to the team roster JSON file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
