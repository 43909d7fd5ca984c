package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/review-ops/gh-stale-board/internal/models"
)

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		kind     SearchKind
		expected string
	}{
		{
			name:     "authored",
			kind:     SearchAuthored,
			expected: "org:acme is:pr is:open archived:false draft:false author:alice",
		},
		{
			name:     "review requested",
			kind:     SearchReviewRequested,
			expected: "org:acme is:pr is:open archived:false draft:false review-requested:alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchQuery(tt.kind, "acme", "alice"); got != tt.expected {
				t.Errorf("searchQuery = %q, want %q", got, tt.expected)
			}
		})
	}
}

func detailFixture() *prDetailQuery {
	var q prDetailQuery
	raw := &q.Repository.PullRequest
	raw.Number = 42
	raw.Title = "Add pagination"
	raw.URL = "https://github.com/acme/api/pull/42"
	raw.BaseRefName = "main"
	raw.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raw.UpdatedAt = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	raw.Author.Login = "alice"
	return &q
}

func TestConvertPRDetail(t *testing.T) {
	ref := models.PullRequestRef{Repo: "acme/api", Number: 42}
	q := detailFixture()
	raw := &q.Repository.PullRequest

	raw.ReviewRequests.Nodes = make([]struct {
		RequestedReviewer struct {
			User struct {
				Login string
			} `graphql:"... on User"`
		}
	}, 2)
	raw.ReviewRequests.Nodes[0].RequestedReviewer.User.Login = "bob"
	// A team reviewer deserializes with an empty login and is skipped.
	raw.ReviewRequests.Nodes[1].RequestedReviewer.User.Login = ""

	submitted := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	raw.Reviews.Nodes = make([]struct {
		State       string
		SubmittedAt *time.Time
		Author      struct {
			Login string
		}
	}, 2)
	raw.Reviews.Nodes[0].State = "APPROVED"
	raw.Reviews.Nodes[0].SubmittedAt = &submitted
	raw.Reviews.Nodes[0].Author.Login = "bob"
	// A pending review has no submission time and is skipped.
	raw.Reviews.Nodes[1].State = "PENDING"
	raw.Reviews.Nodes[1].Author.Login = "carol"

	raw.Commits.Nodes = make([]struct {
		Commit struct {
			AuthoredDate time.Time
		}
	}, 1)
	raw.Commits.Nodes[0].Commit.AuthoredDate = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	pr, reviews, commits, err := convertPRDetail(ref, q)
	if err != nil {
		t.Fatalf("convertPRDetail: %v", err)
	}

	if pr.Ref != ref {
		t.Errorf("ref = %v, want %v", pr.Ref, ref)
	}
	if pr.Author != "alice" || pr.Title != "Add pagination" || pr.BaseRef != "main" {
		t.Errorf("pr = %+v", pr)
	}
	if len(pr.Reviewers) != 1 || pr.Reviewers[0] != "bob" {
		t.Errorf("reviewers = %v, want [bob]", pr.Reviewers)
	}
	if pr.ReadyAt == nil || !pr.ReadyAt.Equal(raw.CreatedAt) {
		t.Errorf("readyAt = %v, want CreatedAt for a never-draft PR", pr.ReadyAt)
	}

	if len(reviews) != 1 {
		t.Fatalf("reviews = %v, want the approved one only", reviews)
	}
	if reviews[0].Author != "bob" || reviews[0].State != models.ReviewApproved {
		t.Errorf("reviews[0] = %+v", reviews[0])
	}

	if len(commits) != 1 || !commits[0].AuthoredAt.Equal(raw.Commits.Nodes[0].Commit.AuthoredDate) {
		t.Errorf("commits = %v", commits)
	}
}

func TestConvertPRDetailDraft(t *testing.T) {
	ref := models.PullRequestRef{Repo: "acme/api", Number: 42}
	q := detailFixture()
	q.Repository.PullRequest.IsDraft = true

	pr, _, _, err := convertPRDetail(ref, q)
	if err != nil {
		t.Fatalf("convertPRDetail: %v", err)
	}
	if !pr.Draft || pr.ReadyAt != nil {
		t.Errorf("draft PR must have nil ReadyAt, got %+v", pr)
	}
}

func TestConvertPRDetailReadyForReviewEvent(t *testing.T) {
	ref := models.PullRequestRef{Repo: "acme/api", Number: 42}
	q := detailFixture()
	raw := &q.Repository.PullRequest

	ready := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	raw.TimelineItems.Nodes = make([]struct {
		ReadyForReviewEvent struct {
			CreatedAt time.Time
		} `graphql:"... on ReadyForReviewEvent"`
	}, 1)
	raw.TimelineItems.Nodes[0].ReadyForReviewEvent.CreatedAt = ready

	pr, _, _, err := convertPRDetail(ref, q)
	if err != nil {
		t.Fatalf("convertPRDetail: %v", err)
	}
	if pr.ReadyAt == nil || !pr.ReadyAt.Equal(ready) {
		t.Errorf("readyAt = %v, want ready-for-review event time %v", pr.ReadyAt, ready)
	}
}

func TestConvertPRDetailGhostAuthor(t *testing.T) {
	ref := models.PullRequestRef{Repo: "acme/api", Number: 42}
	q := detailFixture()
	q.Repository.PullRequest.Author.Login = ""

	pr, _, _, err := convertPRDetail(ref, q)
	if err != nil {
		t.Fatalf("convertPRDetail: %v", err)
	}
	if pr.Author != "ghost" {
		t.Errorf("author = %q, want ghost for a deleted account", pr.Author)
	}
}

func TestConvertPRDetailMalformed(t *testing.T) {
	ref := models.PullRequestRef{Repo: "acme/api", Number: 42}

	t.Run("missing base ref", func(t *testing.T) {
		q := detailFixture()
		q.Repository.PullRequest.BaseRefName = ""
		_, _, _, err := convertPRDetail(ref, q)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("err = %v, want ErrMalformed", err)
		}
	})

	t.Run("missing creation time", func(t *testing.T) {
		q := detailFixture()
		q.Repository.PullRequest.CreatedAt = time.Time{}
		_, _, _, err := convertPRDetail(ref, q)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("err = %v, want ErrMalformed", err)
		}
	})
}

func httpError(status int, message string, headers map[string]string) *api.HTTPError {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &api.HTTPError{StatusCode: status, Message: message, Headers: h}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "404 becomes not found",
			err:  httpError(http.StatusNotFound, "Not Found", nil),
			want: ErrNotFound,
		},
		{
			name: "401 becomes access denied",
			err:  httpError(http.StatusUnauthorized, "Bad credentials", nil),
			want: ErrAccessDenied,
		},
		{
			name: "403 without rate limit markers becomes access denied",
			err:  httpError(http.StatusForbidden, "Resource not accessible by integration", nil),
			want: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translateError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateErrorRateLimit(t *testing.T) {
	reset := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	headers := map[string]string{
		"X-Ratelimit-Remaining": "0",
		"X-Ratelimit-Reset":     fmt.Sprintf("%d", reset.Unix()),
	}

	tests := []struct {
		name string
		err  error
	}{
		{
			name: "403 with rate limit message",
			err:  httpError(http.StatusForbidden, "API rate limit exceeded", headers),
		},
		{
			name: "403 with exhausted remaining header",
			err:  httpError(http.StatusForbidden, "Forbidden", headers),
		},
		{
			name: "429 always counts",
			err:  httpError(http.StatusTooManyRequests, "", headers),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			var rateErr *RateLimitError
			if !errors.As(got, &rateErr) {
				t.Fatalf("translateError = %v, want *RateLimitError", got)
			}
			if !rateErr.ResetAt.Equal(reset) {
				t.Errorf("ResetAt = %v, want %v", rateErr.ResetAt, reset)
			}
		})
	}
}

func TestTranslateErrorPassthrough(t *testing.T) {
	plain := errors.New("connection refused")
	if got := translateError(plain); got != plain {
		t.Errorf("translateError = %v, want the error unchanged", got)
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	bare := &RateLimitError{}
	if bare.Error() != "GitHub API rate limit exhausted" {
		t.Errorf("Error() = %q", bare.Error())
	}

	timed := &RateLimitError{ResetAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)}
	if want := "resets at 2025-06-01T13:00:00Z"; !strings.Contains(timed.Error(), want) {
		t.Errorf("Error() = %q, want it to mention %q", timed.Error(), want)
	}
}
