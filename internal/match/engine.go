// Package match ranks study-buddy candidates by shared skills and interests.
package match

import (
	"campusbuddy/internal/models"
	"sort"
	"strings"
)

// Defaults for Engine.
const (
	DefaultSkillWeight    = 1.0
	DefaultInterestWeight = 1.0
	MaxResults            = 3
)

// Engine scores candidates against a requester. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	skillWeight    float64
	interestWeight float64
	limit          int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights sets the per-item weights for shared skills and interests.
// Non-positive weights are ignored.
func WithWeights(skill, interest float64) Option {
	return func(e *Engine) {
		if skill > 0 {
			e.skillWeight = skill
		}
		if interest > 0 {
			e.interestWeight = interest
		}
	}
}

// WithLimit caps the number of results. Values outside 1..MaxResults are clamped.
func WithLimit(limit int) Option {
	return func(e *Engine) {
		switch {
		case limit < 1:
			e.limit = 1
		case limit > MaxResults:
			e.limit = MaxResults
		default:
			e.limit = limit
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		skillWeight:    DefaultSkillWeight,
		interestWeight: DefaultInterestWeight,
		limit:          MaxResults,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeMatches returns at most limit candidates with a non-zero overlap,
// ordered by score descending and then by candidate id ascending. The
// requester is never part of the result.
func (e *Engine) ComputeMatches(requester models.User, candidates []models.User) []models.MatchResult {
	skills := models.NormalizeSet(requester.Skills)
	interests := models.NormalizeSet(requester.Interests)

	results := make([]models.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == requester.ID {
			continue
		}

		sharedSkills := intersect(skills, candidate.Skills)
		sharedInterests := intersect(interests, candidate.Interests)
		if len(sharedSkills) == 0 && len(sharedInterests) == 0 {
			continue
		}

		results = append(results, models.MatchResult{
			ID:              candidate.ID,
			Name:            candidate.Name,
			Skills:          models.NormalizeSet(candidate.Skills),
			Interests:       models.NormalizeSet(candidate.Interests),
			SharedSkills:    sharedSkills,
			SharedInterests: sharedInterests,
			Score:           e.score(len(sharedSkills), len(sharedInterests)),
		})
	}

	sort.SliceStable(results, func(left, right int) bool {
		if results[left].Score == results[right].Score {
			return results[left].ID < results[right].ID
		}
		return results[left].Score > results[right].Score
	})

	if len(results) > e.limit {
		results = results[:e.limit]
	}
	return results
}

func (e *Engine) score(sharedSkills, sharedInterests int) float64 {
	return e.skillWeight*float64(sharedSkills) + e.interestWeight*float64(sharedInterests)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

// intersect returns the members of requester that also appear in other, in
// the requester's order. requester must already be normalized.
func intersect(requester []string, other []string) []string {
	otherSet := toSet(other)
	shared := make([]string, 0)
	for _, v := range requester {
		if _, ok := otherSet[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}
