package board

import (
	"testing"
	"time"

	"github.com/review-ops/gh-stale-board/internal/models"
)

func stalePR(readyAt time.Time) *models.PullRequest {
	return &models.PullRequest{
		Ref:       models.PullRequestRef{Repo: "acme/api", Number: 42},
		Title:     "Add pagination",
		Author:    "alice",
		BaseRef:   "main",
		CreatedAt: readyAt,
		ReadyAt:   &readyAt,
		UpdatedAt: readyAt,
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		days         int
		wantCategory models.Category
		wantOK       bool
	}{
		{days: -1, wantOK: false},
		{days: 0, wantOK: false},
		{days: 1, wantCategory: models.CategoryFresh, wantOK: true},
		{days: 3, wantCategory: models.CategoryFresh, wantOK: true},
		{days: 4, wantCategory: models.CategoryAging, wantOK: true},
		{days: 7, wantCategory: models.CategoryAging, wantOK: true},
		{days: 8, wantCategory: models.CategoryRotten, wantOK: true},
		{days: 365, wantCategory: models.CategoryRotten, wantOK: true},
	}

	for _, tt := range tests {
		category, ok := Categorize(tt.days)
		if ok != tt.wantOK {
			t.Errorf("Categorize(%d) ok = %v, want %v", tt.days, ok, tt.wantOK)
			continue
		}
		if ok && category != tt.wantCategory {
			t.Errorf("Categorize(%d) = %q, want %q", tt.days, category, tt.wantCategory)
		}
	}
}

func TestStalenessStart(t *testing.T) {
	ready := at(0)
	pr := stalePR(ready)

	if got := StalenessStart(pr, nil); !got.Equal(ready) {
		t.Errorf("start without invalidation = %v, want %v", got, ready)
	}

	earlier := at(-2)
	if got := StalenessStart(pr, &earlier); !got.Equal(ready) {
		t.Errorf("earlier invalidation must not move the start back: got %v, want %v", got, ready)
	}

	later := at(3)
	if got := StalenessStart(pr, &later); !got.Equal(later) {
		t.Errorf("later invalidation must win: got %v, want %v", got, later)
	}
}

func TestStalenessStartFallsBackToCreatedAt(t *testing.T) {
	created := at(0)
	pr := &models.PullRequest{CreatedAt: created, ReadyAt: nil}

	if got := StalenessStart(pr, nil); !got.Equal(created) {
		t.Errorf("start = %v, want CreatedAt %v", got, created)
	}
}

func TestDecide(t *testing.T) {
	now := at(10)

	tests := []struct {
		name             string
		pr               *models.PullRequest
		reviews          []models.Review
		commits          []models.Commit
		required         int
		invalidateOnPush bool
		wantNil          bool
		wantCategory     models.Category
		wantApprovals    int
		wantDays         int
	}{
		{
			name:         "no reviews ten days old is rotten",
			pr:           stalePR(at(0)),
			required:     1,
			wantCategory: models.CategoryRotten,
			wantDays:     10,
		},
		{
			name:     "draft is never stale",
			pr:       func() *models.PullRequest { p := stalePR(at(0)); p.Draft = true; return p }(),
			required: 1,
			wantNil:  true,
		},
		{
			name:     "nil ready time is never stale",
			pr:       func() *models.PullRequest { p := stalePR(at(0)); p.ReadyAt = nil; return p }(),
			required: 1,
			wantNil:  true,
		},
		{
			name:     "branch requiring zero approvals is never stale",
			pr:       stalePR(at(0)),
			required: 0,
			wantNil:  true,
		},
		{
			name: "sufficient approvals",
			pr:   stalePR(at(0)),
			reviews: []models.Review{
				{Author: "bob", State: models.ReviewApproved, SubmittedAt: at(1)},
				{Author: "carol", State: models.ReviewApproved, SubmittedAt: at(2)},
			},
			required: 2,
			wantNil:  true,
		},
		{
			name: "one short of required is stale",
			pr:   stalePR(at(0)),
			reviews: []models.Review{
				{Author: "bob", State: models.ReviewApproved, SubmittedAt: at(1)},
			},
			required:      2,
			wantCategory:  models.CategoryRotten,
			wantApprovals: 1,
			wantDays:      10,
		},
		{
			name:     "less than a full day is not yet stale",
			pr:       stalePR(now.Add(-23 * time.Hour)),
			required: 1,
			wantNil:  true,
		},
		{
			name: "push after approval resets the clock",
			pr:   stalePR(at(0)),
			reviews: []models.Review{
				{Author: "bob", State: models.ReviewApproved, SubmittedAt: at(0)},
			},
			commits: []models.Commit{
				{AuthoredAt: at(8)},
			},
			required:         1,
			invalidateOnPush: true,
			wantCategory:     models.CategoryFresh,
			wantApprovals:    0,
			wantDays:         2,
		},
		{
			name: "push invalidation disabled keeps the approval",
			pr:   stalePR(at(0)),
			reviews: []models.Review{
				{Author: "bob", State: models.ReviewApproved, SubmittedAt: at(0)},
			},
			commits: []models.Commit{
				{AuthoredAt: at(8)},
			},
			required: 1,
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.pr, tt.reviews, tt.commits, tt.required, now, tt.invalidateOnPush)

			if tt.wantNil {
				if decision != nil {
					t.Fatalf("decision = %+v, want nil", decision)
				}
				return
			}
			if decision == nil {
				t.Fatal("decision = nil, want a stale decision")
			}
			if decision.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", decision.Category, tt.wantCategory)
			}
			if decision.CurrentApprovals != tt.wantApprovals {
				t.Errorf("approvals = %d, want %d", decision.CurrentApprovals, tt.wantApprovals)
			}
			if decision.RequiredApprovals != tt.required {
				t.Errorf("required = %d, want %d", decision.RequiredApprovals, tt.required)
			}
			if decision.Days() != tt.wantDays {
				t.Errorf("days = %d, want %d", decision.Days(), tt.wantDays)
			}
		})
	}
}

func TestSortDecisions(t *testing.T) {
	decision := func(repo string, number int, category models.Category, days int) models.StalenessDecision {
		return models.StalenessDecision{
			PR:        &models.PullRequest{Ref: models.PullRequestRef{Repo: repo, Number: number}},
			Category:  category,
			Staleness: time.Duration(days) * 24 * time.Hour,
		}
	}

	decisions := []models.StalenessDecision{
		decision("acme/api", 3, models.CategoryFresh, 2),
		decision("acme/web", 7, models.CategoryRotten, 9),
		decision("acme/api", 9, models.CategoryAging, 5),
		decision("acme/api", 1, models.CategoryRotten, 9),
		decision("acme/api", 5, models.CategoryRotten, 12),
	}

	SortDecisions(decisions)

	want := []models.PullRequestRef{
		{Repo: "acme/api", Number: 5},
		{Repo: "acme/api", Number: 1},
		{Repo: "acme/web", Number: 7},
		{Repo: "acme/api", Number: 9},
		{Repo: "acme/api", Number: 3},
	}
	for i, ref := range want {
		if decisions[i].PR.Ref != ref {
			t.Errorf("position %d = %s, want %s", i, decisions[i].PR.Ref, ref)
		}
	}
}
