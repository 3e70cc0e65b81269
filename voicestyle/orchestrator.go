package voicestyle

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// bounds for lazily-created character/emotion entries
const (
	lazyStabilityMin  = 0.35
	lazyStabilityMax  = 0.75
	lazySimilarityMin = 0.60
	lazySimilarityMax = 0.90
	lazyStyleMin      = 0.20
	lazyStyleMax      = 0.60
)

// persistEvery bounds learned-pattern write frequency per pair.
const persistEvery = 10

// Options tune one ComputeStyle call.
type Options struct {
	// ConversationType picks a conversation overlay ("whisper",
	// "shout", ...) when set.
	ConversationType string
	// NarratorBaseline, when set, is averaged into the result so the
	// character stays anchored to the story's narrator voice.
	NarratorBaseline *Style
}

// Orchestrator computes final synthesis parameters through a layered
// merge over the stored ruleset, and grows that ruleset as new
// characters and emotions show up.
type Orchestrator struct {
	store    *Store
	rnd      *rand.Rand
	baseline *Style

	mutex    sync.Mutex
	matchers *matcherCache
	pending  map[string]int // updates since last persist, per character/emotion
}

type Option func(*Orchestrator)

// WithRand injects the jitter source so tests can fix the seed.
func WithRand(rnd *rand.Rand) Option {
	return func(o *Orchestrator) { o.rnd = rnd }
}

// WithBaseline sets the profile blended in when a call carries no
// narrator baseline of its own.
func WithBaseline(s Style) Option {
	return func(o *Orchestrator) { o.baseline = &s }
}

func NewOrchestrator(store *Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		matchers: newMatcherCache(),
		pending:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ComputeStyle runs the merge pipeline for one narration segment:
// jittered global defaults, weighted rules in table order, the
// (character, emotion) entry (created on first sight), the
// conversation overlay, then baseline blending. Every call also feeds
// the learned pattern for the pair.
func (o *Orchestrator) ComputeStyle(character, emotion string, opts *Options) Style {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	cfg := o.store.Load()
	character = strings.ToLower(strings.TrimSpace(character))
	emotion = strings.ToLower(strings.TrimSpace(emotion))

	// stage 1: jittered globals
	style := Style{
		Stability:       cfg.GlobalDefaults.Stability.sample(o.rnd),
		SimilarityBoost: cfg.GlobalDefaults.SimilarityBoost.sample(o.rnd),
		Style:           cfg.GlobalDefaults.Style.sample(o.rnd),
		Prosody: Prosody{
			Pitch:  cfg.GlobalDefaults.Pitch,
			Rate:   cfg.GlobalDefaults.Rate,
			Volume: cfg.GlobalDefaults.Volume,
		},
	}

	// stage 2: weighted rules, later rules overwrite earlier ones
	for _, rule := range cfg.WeightedRules {
		if o.ruleMatches(rule, character, emotion) {
			rule.Apply.applyTo(&style)
		}
	}

	// stage 3: first sight of this pair grows the config
	dirty := o.ensureEntry(cfg, character, emotion)

	// stage 4: character+emotion entry, or the character's default
	if emotions, ok := cfg.PerCharacterEmotion[character]; ok {
		if entry, ok := emotions[emotion]; ok {
			entry.applyTo(&style)
		} else if entry, ok := emotions["default"]; ok {
			entry.applyTo(&style)
		}
	}

	// stage 5: conversation overlay
	if opts != nil && opts.ConversationType != "" {
		if overlay, ok := cfg.ConversationOverlays[opts.ConversationType]; ok {
			overlay.applyTo(&style)
		}
	}

	// stage 6: baseline blending (mean, not overwrite)
	if opts != nil && opts.NarratorBaseline != nil {
		style.blend(*opts.NarratorBaseline)
	} else if o.baseline != nil {
		style.blend(*o.baseline)
	}

	style.clamp()

	// stage 7: reinforce the learned pattern with this outcome
	persist := o.recordUsage(cfg, character, emotion, style)
	if persist || dirty {
		if err := o.store.Save(cfg); err != nil {
			logrus.WithError(err).Warnln("failed to persist voice style config")
		}
	} else {
		o.store.Update(cfg)
	}

	return style
}

func (o *Orchestrator) ruleMatches(rule WeightedRule, character, emotion string) bool {
	if rule.Emotion != "" && rule.Emotion == emotion {
		return true
	}
	if rule.CharacterPattern != "" && o.matchers.get(rule.CharacterPattern).Matches(character) {
		return true
	}
	return false
}

// ensureEntry lazily creates the (character, emotion) override with
// bounded-random values. Reports whether the config changed.
func (o *Orchestrator) ensureEntry(cfg *Config, character, emotion string) bool {
	emotions, ok := cfg.PerCharacterEmotion[character]
	if !ok {
		emotions = make(map[string]Override)
		cfg.PerCharacterEmotion[character] = emotions
	}
	if _, ok := emotions[emotion]; ok {
		return false
	}

	emotions[emotion] = Override{
		Stability:       f(o.between(lazyStabilityMin, lazyStabilityMax)),
		SimilarityBoost: f(o.between(lazySimilarityMin, lazySimilarityMax)),
		Style:           f(o.between(lazyStyleMin, lazyStyleMax)),
	}

	logrus.WithFields(logrus.Fields{
		"character": character,
		"emotion":   emotion,
	}).Infoln("discovered new character emotion pair")
	return true
}

func (o *Orchestrator) between(min, max float64) float64 {
	return min + o.rnd.Float64()*(max-min)
}

// recordUsage folds the produced style into the pair's running
// average and reports whether this update should hit disk.
func (o *Orchestrator) recordUsage(cfg *Config, character, emotion string, style Style) bool {
	p := cfg.learnedFor(character, emotion)
	if p == nil {
		cfg.LearnedPatterns = append(cfg.LearnedPatterns, LearnedPattern{
			Character:       character,
			Emotion:         emotion,
			Stability:       style.Stability,
			SimilarityBoost: style.SimilarityBoost,
			Style:           style.Style,
			UsageCount:      1,
		})
	} else {
		w := float64(p.UsageCount) / float64(p.UsageCount+1)
		p.Stability = p.Stability*w + style.Stability*(1-w)
		p.SimilarityBoost = p.SimilarityBoost*w + style.SimilarityBoost*(1-w)
		p.Style = p.Style*w + style.Style*(1-w)
		p.UsageCount++
	}

	key := character + "/" + emotion
	o.pending[key]++
	if o.pending[key] >= persistEvery {
		o.pending[key] = 0
		return true
	}
	return false
}
