// Package wellness maps moods to tips and records once-daily check-ins.
package wellness

import (
	"campusbuddy/internal/models"
	"strings"
	"sync/atomic"
)

// DefaultFallbackTip is returned for any mood outside the recognized set.
const DefaultFallbackTip = "Take a moment for yourself today. A short walk or a glass of water can reset your focus."

// DefaultTips are the built-in tips per recognized mood.
var DefaultTips = map[string][]string{
	models.MoodHappy: {
		"Keep it up! Try joining one of today's campus workshops.",
		"Your positive energy is contagious! Keep spreading the smiles.",
		"A great day! Consider helping a friend with their studies.",
	},
	models.MoodNeutral: {
		"Take a 10-minute break, you got this.",
		"Every moment is a fresh beginning. Keep going!",
		"Small progress is still progress. Stay steady.",
	},
	models.MoodStressed: {
		"Breathe deeply and focus on one small task at a time.",
		"It's okay to take a step back. You're doing your best.",
		"Remember: this moment will pass. You've overcome challenges before.",
	},
}

var recognizedMoods = []string{models.MoodHappy, models.MoodNeutral, models.MoodStressed}

// Tip is the advisor's answer for a mood.
type Tip struct {
	Mood       string `json:"mood"`
	Tip        string `json:"tip"`
	Recognized bool   `json:"recognized"`
}

type moodTips struct {
	tips []string
	next atomic.Uint64
}

// Advisor rotates through the configured tips of each mood. It is safe for
// concurrent use.
type Advisor struct {
	byMood   map[string]*moodTips
	fallback string
}

// AdvisorOption configures an Advisor.
type AdvisorOption func(*advisorConfig)

type advisorConfig struct {
	tips     map[string][]string
	fallback string
}

// WithTips overrides the tips for the moods present in tips. Mood keys are
// matched case-insensitively against the recognized moods; other keys and
// empty lists are ignored.
func WithTips(tips map[string][]string) AdvisorOption {
	return func(c *advisorConfig) {
		for key, list := range tips {
			mood, ok := canonicalMood(key)
			if !ok {
				continue
			}
			cleaned := models.NormalizeSet(list)
			if len(cleaned) == 0 {
				continue
			}
			c.tips[mood] = cleaned
		}
	}
}

// WithFallbackTip overrides the tip used for unrecognized moods.
func WithFallbackTip(tip string) AdvisorOption {
	return func(c *advisorConfig) {
		if t := strings.TrimSpace(tip); t != "" {
			c.fallback = t
		}
	}
}

func NewAdvisor(opts ...AdvisorOption) *Advisor {
	cfg := &advisorConfig{
		tips:     make(map[string][]string, len(DefaultTips)),
		fallback: DefaultFallbackTip,
	}
	for mood, list := range DefaultTips {
		cfg.tips[mood] = list
	}
	for _, opt := range opts {
		opt(cfg)
	}

	a := &Advisor{byMood: make(map[string]*moodTips, len(cfg.tips)), fallback: cfg.fallback}
	for mood, list := range cfg.tips {
		a.byMood[mood] = &moodTips{tips: list}
	}
	return a
}

// GetTip never fails: moods are matched exactly and anything else gets the
// fallback tip.
func (a *Advisor) GetTip(mood string) Tip {
	entry, ok := a.byMood[mood]
	if !ok {
		return Tip{Mood: mood, Tip: a.fallback}
	}
	n := entry.next.Add(1) - 1
	return Tip{Mood: mood, Tip: entry.tips[n%uint64(len(entry.tips))], Recognized: true}
}

// Moods lists the recognized moods.
func (a *Advisor) Moods() []string {
	return append([]string(nil), recognizedMoods...)
}

// IsRecognized reports whether mood is one of the enumerated moods.
func IsRecognized(mood string) bool {
	for _, m := range recognizedMoods {
		if m == mood {
			return true
		}
	}
	return false
}

func canonicalMood(key string) (string, bool) {
	for _, m := range recognizedMoods {
		if strings.EqualFold(m, strings.TrimSpace(key)) {
			return m, true
		}
	}
	return "", false
}
