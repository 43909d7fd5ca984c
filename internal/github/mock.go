package github

import (
	"context"
	"fmt"

	"github.com/review-ops/gh-stale-board/internal/models"
)

// SearchKey identifies one search invocation in the mock.
type SearchKey struct {
	Kind   SearchKind
	Member string
}

// PRDetail bundles the three records FetchPRDetail returns.
type PRDetail struct {
	PR      *models.PullRequest
	Reviews []models.Review
	Commits []models.Commit
}

// MockClient implements Client for testing.
type MockClient struct {
	// Control test behavior
	SearchResults  map[SearchKey][]models.PullRequestRef
	SearchErrors   map[SearchKey]error
	Details        map[models.PullRequestRef]PRDetail
	DetailErrors   map[models.PullRequestRef]error
	Protection     map[string]int
	ProtectionErrs map[string]error
	RateLimit      *models.RateLimitStatus
	RateLimitErr   error

	// Track method calls
	SearchCalls     []SearchKey
	DetailCalls     []models.PullRequestRef
	ProtectionCalls []string
	RateLimitCalls  int
}

var _ Client = (*MockClient)(nil)

func protectionKey(repo, branch string) string {
	return repo + "@" + branch
}

// SearchPRs mocks the search query.
func (m *MockClient) SearchPRs(_ context.Context, kind SearchKind, _, member string) ([]models.PullRequestRef, error) {
	key := SearchKey{Kind: kind, Member: member}
	m.SearchCalls = append(m.SearchCalls, key)
	if err, ok := m.SearchErrors[key]; ok {
		return nil, err
	}
	return m.SearchResults[key], nil
}

// FetchPRDetail mocks the detail fetch.
func (m *MockClient) FetchPRDetail(_ context.Context, ref models.PullRequestRef) (*models.PullRequest, []models.Review, []models.Commit, error) {
	m.DetailCalls = append(m.DetailCalls, ref)
	if err, ok := m.DetailErrors[ref]; ok {
		return nil, nil, nil, err
	}
	detail, ok := m.Details[ref]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: no detail registered for %s", ErrMalformed, ref)
	}
	return detail.PR, detail.Reviews, detail.Commits, nil
}

// FetchBranchProtection mocks the protection lookup.
func (m *MockClient) FetchBranchProtection(_ context.Context, repo, branch string) (int, error) {
	key := protectionKey(repo, branch)
	m.ProtectionCalls = append(m.ProtectionCalls, key)
	if err, ok := m.ProtectionErrs[key]; ok {
		return 0, err
	}
	if count, ok := m.Protection[key]; ok {
		return count, nil
	}
	return 0, ErrNotFound
}

// CheckRateLimit mocks the quota snapshot.
func (m *MockClient) CheckRateLimit(_ context.Context) (*models.RateLimitStatus, error) {
	m.RateLimitCalls++
	return m.RateLimit, m.RateLimitErr
}

// DetailCallCount returns how many times a specific ref was fetched.
func (m *MockClient) DetailCallCount(ref models.PullRequestRef) int {
	count := 0
	for _, call := range m.DetailCalls {
		if call == ref {
			count++
		}
	}
	return count
}

// RegisterDetail wires a ref and its detail records in one step.
func (m *MockClient) RegisterDetail(detail PRDetail) {
	if m.Details == nil {
		m.Details = make(map[models.PullRequestRef]PRDetail)
	}
	m.Details[detail.PR.Ref] = detail
}

// RegisterSearch appends refs to the result set of one search key.
func (m *MockClient) RegisterSearch(kind SearchKind, member string, refs ...models.PullRequestRef) {
	if m.SearchResults == nil {
		m.SearchResults = make(map[SearchKey][]models.PullRequestRef)
	}
	key := SearchKey{Kind: kind, Member: member}
	m.SearchResults[key] = append(m.SearchResults[key], refs...)
}
