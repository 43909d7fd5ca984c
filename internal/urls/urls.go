// Package urls builds GitHub search URLs for the old-PR report.
package urls

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const maxURLLength = 2000

// BuildOldPRSearchURL returns a github.com/pulls search link for open,
// non-draft PRs with review requested from username that were last
// updated before the cutoff date. The cutoff must be the same one the
// window filter used, so the link shows exactly the counted PRs.
func BuildOldPRSearchURL(username string, cutoff time.Time) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("username cannot be empty")
	}

	query := fmt.Sprintf(
		"is:pr state:open review-requested:%s updated:<%s archived:false -is:draft",
		username, cutoff.Format("2006-01-02"),
	)

	values := url.Values{}
	values.Set("q", query)
	link := "https://github.com/pulls?" + values.Encode()

	// Browsers start truncating around 2000 characters.
	if len(link) > maxURLLength {
		return "", fmt.Errorf("generated URL exceeds %d characters", maxURLLength)
	}
	return link, nil
}
