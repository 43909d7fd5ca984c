package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	graphql "github.com/cli/shurcooL-graphql"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// GHClient wraps the go-gh REST and GraphQL API clients.
type GHClient struct {
	rest api.RESTClient
	gql  api.GraphQLClient
}

// NewClient builds a GHClient authenticated from the environment
// (GH_TOKEN) the same way the gh CLI resolves credentials.
func NewClient(timeout time.Duration) (*GHClient, error) {
	opts := api.ClientOptions{Timeout: timeout}

	restClient, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	gqlClient, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	return &GHClient{
		rest: *restClient,
		gql:  *gqlClient,
	}, nil
}

// searchQuery builds the GitHub search string for one member and kind.
func searchQuery(kind SearchKind, org, member string) string {
	qualifier := "author"
	if kind == SearchReviewRequested {
		qualifier = "review-requested"
	}
	return fmt.Sprintf("org:%s is:pr is:open archived:false draft:false %s:%s", org, qualifier, member)
}

// SearchPRs runs one search query and returns bare PR refs.
func (c *GHClient) SearchPRs(ctx context.Context, kind SearchKind, org, member string) ([]models.PullRequestRef, error) {
	var q struct {
		Search struct {
			Nodes []struct {
				PullRequest struct {
					Number     int
					Repository struct {
						NameWithOwner string
					}
				} `graphql:"... on PullRequest"`
			}
			PageInfo struct {
				HasNextPage bool
				EndCursor   string
			}
		} `graphql:"search(type: ISSUE, query: $query, first: $first, after: $endCursor)"`
	}

	variables := map[string]interface{}{
		"query":     graphql.String(searchQuery(kind, org, member)),
		"first":     graphql.Int(100),
		"endCursor": (*graphql.String)(nil),
	}

	if err := c.gql.QueryWithContext(ctx, "", &q, variables); err != nil {
		return nil, fmt.Errorf("failed to search %s PRs for %s: %w", kind, member, translateError(err))
	}

	refs := make([]models.PullRequestRef, 0, len(q.Search.Nodes))
	for _, node := range q.Search.Nodes {
		pr := node.PullRequest
		if pr.Repository.NameWithOwner == "" || pr.Number == 0 {
			continue
		}
		refs = append(refs, models.PullRequestRef{
			Repo:   pr.Repository.NameWithOwner,
			Number: pr.Number,
		})
	}
	return refs, nil
}

// prDetailQuery mirrors the GraphQL shape of one hydrated PR.
type prDetailQuery struct {
	Repository struct {
		PullRequest struct {
			Number      int
			Title       string
			URL         string `graphql:"url"`
			IsDraft     bool
			BaseRefName string
			CreatedAt   time.Time
			UpdatedAt   time.Time
			Author      struct {
				Login string
			}
			ReviewRequests struct {
				Nodes []struct {
					RequestedReviewer struct {
						User struct {
							Login string
						} `graphql:"... on User"`
					}
				}
			} `graphql:"reviewRequests(first: 100)"`
			Reviews struct {
				Nodes []struct {
					State       string
					SubmittedAt *time.Time
					Author      struct {
						Login string
					}
				}
			} `graphql:"reviews(last: 100)"`
			Commits struct {
				Nodes []struct {
					Commit struct {
						AuthoredDate time.Time
					}
				}
			} `graphql:"commits(last: 100)"`
			TimelineItems struct {
				Nodes []struct {
					ReadyForReviewEvent struct {
						CreatedAt time.Time
					} `graphql:"... on ReadyForReviewEvent"`
				}
			} `graphql:"timelineItems(itemTypes: READY_FOR_REVIEW_EVENT, last: 1)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// FetchPRDetail hydrates a single PR with reviews and commit dates.
func (c *GHClient) FetchPRDetail(ctx context.Context, ref models.PullRequestRef) (*models.PullRequest, []models.Review, []models.Commit, error) {
	owner, name, ok := strings.Cut(ref.Repo, "/")
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: invalid repository name %q", ErrMalformed, ref.Repo)
	}

	var q prDetailQuery
	variables := map[string]interface{}{
		"owner":  graphql.String(owner),
		"name":   graphql.String(name),
		"number": graphql.Int(ref.Number),
	}

	if err := c.gql.QueryWithContext(ctx, "", &q, variables); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch details for %s: %w", ref, translateError(err))
	}

	pr, reviews, commits, err := convertPRDetail(ref, &q)
	if err != nil {
		return nil, nil, nil, err
	}
	return pr, reviews, commits, nil
}

// convertPRDetail maps the raw GraphQL response onto domain records.
func convertPRDetail(ref models.PullRequestRef, q *prDetailQuery) (*models.PullRequest, []models.Review, []models.Commit, error) {
	raw := q.Repository.PullRequest

	if raw.BaseRefName == "" || raw.CreatedAt.IsZero() {
		return nil, nil, nil, fmt.Errorf("%w: %s has no base branch or creation time", ErrMalformed, ref)
	}

	author := raw.Author.Login
	if author == "" {
		author = "ghost"
	}

	reviewers := make([]string, 0, len(raw.ReviewRequests.Nodes))
	for _, req := range raw.ReviewRequests.Nodes {
		if login := req.RequestedReviewer.User.Login; login != "" {
			reviewers = append(reviewers, login)
		}
	}

	var readyAt *time.Time
	if !raw.IsDraft {
		ready := raw.CreatedAt
		for _, item := range raw.TimelineItems.Nodes {
			if !item.ReadyForReviewEvent.CreatedAt.IsZero() {
				ready = item.ReadyForReviewEvent.CreatedAt
			}
		}
		readyAt = &ready
	}

	pr := &models.PullRequest{
		Ref:       ref,
		Title:     raw.Title,
		URL:       raw.URL,
		Author:    author,
		Reviewers: reviewers,
		Draft:     raw.IsDraft,
		BaseRef:   raw.BaseRefName,
		CreatedAt: raw.CreatedAt,
		ReadyAt:   readyAt,
		UpdatedAt: raw.UpdatedAt,
	}

	reviews := make([]models.Review, 0, len(raw.Reviews.Nodes))
	for _, node := range raw.Reviews.Nodes {
		if node.Author.Login == "" || node.SubmittedAt == nil {
			continue
		}
		reviews = append(reviews, models.Review{
			Author:      node.Author.Login,
			State:       models.ReviewState(node.State),
			SubmittedAt: *node.SubmittedAt,
		})
	}

	commits := make([]models.Commit, 0, len(raw.Commits.Nodes))
	for _, node := range raw.Commits.Nodes {
		if node.Commit.AuthoredDate.IsZero() {
			continue
		}
		commits = append(commits, models.Commit{AuthoredAt: node.Commit.AuthoredDate})
	}

	return pr, reviews, commits, nil
}

// FetchBranchProtection reads the branch protection rule via REST.
func (c *GHClient) FetchBranchProtection(ctx context.Context, repo, branch string) (int, error) {
	path := fmt.Sprintf("repos/%s/branches/%s/protection", repo, branch)

	var protection struct {
		RequiredPullRequestReviews *struct {
			RequiredApprovingReviewCount int `json:"required_approving_review_count"`
		} `json:"required_pull_request_reviews"`
	}

	if err := c.rest.DoWithContext(ctx, http.MethodGet, path, nil, &protection); err != nil {
		translated := translateError(err)
		return 0, fmt.Errorf("failed to fetch branch protection for %s@%s: %w", repo, branch, translated)
	}

	// A rule without a pull-request-review requirement means the branch
	// intentionally merges without approvals.
	if protection.RequiredPullRequestReviews == nil {
		return 0, nil
	}
	return protection.RequiredPullRequestReviews.RequiredApprovingReviewCount, nil
}

// CheckRateLimit reads the core API quota snapshot.
func (c *GHClient) CheckRateLimit(ctx context.Context) (*models.RateLimitStatus, error) {
	var limits struct {
		Resources struct {
			Core struct {
				Remaining int   `json:"remaining"`
				Limit     int   `json:"limit"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}

	if err := c.rest.DoWithContext(ctx, http.MethodGet, "rate_limit", nil, &limits); err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}

	core := limits.Resources.Core
	return &models.RateLimitStatus{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   time.Unix(core.Reset, 0).UTC(),
	}, nil
}

// translateError maps go-gh HTTP errors onto the package sentinels so
// callers can branch on outcome without knowing transport details.
func translateError(err error) error {
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}

	switch httpErr.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrAccessDenied
	case http.StatusForbidden, http.StatusTooManyRequests:
		if isRateLimited(httpErr) {
			return &RateLimitError{ResetAt: rateLimitReset(httpErr)}
		}
		return ErrAccessDenied
	}
	return err
}

func isRateLimited(httpErr *api.HTTPError) bool {
	if httpErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if strings.Contains(strings.ToLower(httpErr.Message), "rate limit") {
		return true
	}
	return httpErr.Headers.Get("X-Ratelimit-Remaining") == "0"
}

func rateLimitReset(httpErr *api.HTTPError) time.Time {
	raw := httpErr.Headers.Get("X-Ratelimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0).UTC()
}
