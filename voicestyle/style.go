package voicestyle

import (
	"fmt"
	"strconv"
	"strings"
)

// Prosody fields are signed percent strings ("+10%", "-5%") relative
// to the voice's natural delivery. Merging always happens on the
// parsed integer value, never on the string.
type Prosody struct {
	Pitch  string `yaml:"pitch"`
	Rate   string `yaml:"rate"`
	Volume string `yaml:"volume"`
}

// Style is the final parameter set handed to the synthesis provider.
// Stability, SimilarityBoost and Style live in [0,1]; every merge path
// clamps before returning, even where the math could overshoot.
type Style struct {
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarityBoost"`
	Style           float64 `yaml:"style"`
	Prosody         Prosody `yaml:"prosody"`
}

func (s *Style) clamp() {
	s.Stability = clamp01(s.Stability)
	s.SimilarityBoost = clamp01(s.SimilarityBoost)
	s.Style = clamp01(s.Style)
}

// blend folds a baseline into the style by arithmetic mean per
// numeric field. Used for narrator baselines so a character never
// drifts too far from the storyteller's voice.
func (s *Style) blend(baseline Style) {
	s.Stability = (s.Stability + baseline.Stability) / 2
	s.SimilarityBoost = (s.SimilarityBoost + baseline.SimilarityBoost) / 2
	s.Style = (s.Style + baseline.Style) / 2
	s.Prosody.Pitch = meanPercent(s.Prosody.Pitch, baseline.Prosody.Pitch)
	s.Prosody.Rate = meanPercent(s.Prosody.Rate, baseline.Prosody.Rate)
	s.Prosody.Volume = meanPercent(s.Prosody.Volume, baseline.Prosody.Volume)
	s.clamp()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParsePercent reads a signed percent string. Garbage parses as 0 so
// a malformed config entry degrades to "no adjustment" instead of an
// error mid-synthesis.
func ParsePercent(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// FormatPercent serializes a signed percent with an explicit sign.
func FormatPercent(v int) string {
	return fmt.Sprintf("%+d%%", v)
}

func meanPercent(a, b string) string {
	return FormatPercent((ParsePercent(a) + ParsePercent(b)) / 2)
}

// ShiftPercent adds a signed delta to a percent string.
func ShiftPercent(s string, delta int) string {
	return FormatPercent(ParsePercent(s) + delta)
}
