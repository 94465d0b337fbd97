package service

import "github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"

// ConsolidateRecommendations merges recommendation lists across a batch,
// keeping the first occurrence of each exact string and dropping later
// duplicates. Order follows batch order; comparison is case-sensitive, so
// "Increase outreach" and "increase outreach" are distinct entries.
func ConsolidateRecommendations(results []domain.AgentResult) []string {
	seen := make(map[string]bool)
	consolidated := []string{}
	for _, result := range results {
		for _, rec := range result.Recommendations {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			consolidated = append(consolidated, rec)
		}
	}
	return consolidated
}
