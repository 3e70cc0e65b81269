package interpolation

import (
	"github.com/sirupsen/logrus"

	"voxstory/inventory"
)

// IntensityWindow is how far a recorded intensity may sit from the
// requested intensity and still count as an exact match.
const IntensityWindow = 2

// Resolution names the sample to narrate with. When Interpolated is
// true the request had no direct recording and SourceEmotion names the
// emotion that was actually recorded; Rule is non-nil only when a
// table rule (rather than the recency fallback) picked the source.
type Resolution struct {
	AudioRef      string
	SourceEmotion string
	Interpolated  bool
	Rule          *Rule
}

type Resolver struct {
	Rules []Rule
}

func NewResolver() *Resolver {
	return &Resolver{Rules: DefaultRules}
}

// Resolve picks the best available emotion sample for a narration
// segment. Order: exact recording within the intensity window, then
// rule-based substitution, then the most recent recording of any
// emotion. Returns nil when the owner has no emotion samples at all;
// the caller falls back to non-personalized synthesis. Never touches
// the network.
func (rv *Resolver) Resolve(recordings []inventory.Recording, targetEmotion string, targetIntensity int) *Resolution {
	samples := emotionSamples(recordings)
	if len(samples) == 0 {
		return nil
	}

	// exact match beats any rule
	for _, r := range samples {
		if r.ItemName != targetEmotion {
			continue
		}
		delta := r.Intensity - targetIntensity
		if delta < 0 {
			delta = -delta
		}
		if delta <= IntensityWindow {
			return &Resolution{
				AudioRef:      r.AudioRef,
				SourceEmotion: r.ItemName,
			}
		}
	}

	if rule := RuleFor(rv.Rules, targetEmotion); rule != nil {
		for _, r := range samples {
			if r.ItemName == rule.BaseEmotion {
				logrus.WithFields(logrus.Fields{
					"target": targetEmotion,
					"base":   rule.BaseEmotion,
				}).Debugln("interpolating emotion from rule")
				return &Resolution{
					AudioRef:      r.AudioRef,
					SourceEmotion: rule.BaseEmotion,
					Interpolated:  true,
					Rule:          rule,
				}
			}
		}
	}

	// no rule applies - fall back to whatever was recorded last
	latest := samples[0]
	for _, r := range samples[1:] {
		if r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return &Resolution{
		AudioRef:      latest.AudioRef,
		SourceEmotion: latest.ItemName,
		Interpolated:  true,
	}
}

func emotionSamples(recordings []inventory.Recording) []inventory.Recording {
	var out []inventory.Recording
	for _, r := range recordings {
		if r.Category == inventory.CategoryEmotion {
			out = append(out, r)
		}
	}
	return out
}
