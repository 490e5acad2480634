package models

// MatchResult is a ranked study-buddy candidate. It is computed per request and
// never persisted.
type MatchResult struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	Interests       []string `json:"interests"`
	SharedSkills    []string `json:"sharedSkills"`
	SharedInterests []string `json:"sharedInterests"`
	Score           float64  `json:"score"`
}
