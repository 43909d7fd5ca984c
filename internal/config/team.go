package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/review-ops/gh-stale-board/internal/models"
)

type teamMemberRecord struct {
	GitHubUsername string `json:"github_username"`
	SlackID        string `json:"slack_id"`
}

// LoadTeamMembers reads the team roster from a JSON file: an array of
// objects with a required github_username and an optional slack_id.
func LoadTeamMembers(path string) ([]models.TeamMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team members file %s: %w", path, err)
	}

	var records []teamMemberRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("team members file %s must contain at least one member", path)
	}

	members := make([]models.TeamMember, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		username := strings.TrimSpace(record.GitHubUsername)
		if username == "" {
			return nil, fmt.Errorf("team member at index %d is missing github_username", i)
		}
		if _, ok := seen[username]; ok {
			return nil, fmt.Errorf("team member %q appears more than once", username)
		}
		seen[username] = struct{}{}
		members = append(members, models.TeamMember{
			GitHubUsername: username,
			SlackUserID:    strings.TrimSpace(record.SlackID),
		})
	}
	return members, nil
}
