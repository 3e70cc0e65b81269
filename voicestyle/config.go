package voicestyle

import "math/rand"

// Range bounds one numeric style field. Sampling returns the midpoint
// plus bounded jitter so repeated narrations of the same line don't
// sound robotically identical.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// jitterScale keeps sampled values within the middle half of the range.
const jitterScale = 0.5

func (r Range) sample(rnd *rand.Rand) float64 {
	mid := (r.Min + r.Max) / 2
	return mid + (rnd.Float64()-0.5)*(r.Max-r.Min)*jitterScale
}

// Override is the finite set of fields a rule or entry may change.
// Nil pointer means "leave the field alone". There are deliberately no
// free-form paths here; the merge pipeline stays statically checkable.
type Override struct {
	Stability       *float64 `yaml:"stability,omitempty"`
	SimilarityBoost *float64 `yaml:"similarityBoost,omitempty"`
	Style           *float64 `yaml:"style,omitempty"`
	Pitch           *string  `yaml:"pitch,omitempty"`
	Rate            *string  `yaml:"rate,omitempty"`
	Volume          *string  `yaml:"volume,omitempty"`
}

func (o Override) applyTo(s *Style) {
	if o.Stability != nil {
		s.Stability = *o.Stability
	}
	if o.SimilarityBoost != nil {
		s.SimilarityBoost = *o.SimilarityBoost
	}
	if o.Style != nil {
		s.Style = *o.Style
	}
	if o.Pitch != nil {
		s.Prosody.Pitch = *o.Pitch
	}
	if o.Rate != nil {
		s.Prosody.Rate = *o.Rate
	}
	if o.Volume != nil {
		s.Prosody.Volume = *o.Volume
	}
}

// WeightedRule fires when its character pattern matches the character
// (case-insensitive regex) OR its emotion equals the requested one.
// Rules apply in table order; later rules win on the same field.
type WeightedRule struct {
	CharacterPattern string   `yaml:"characterPattern,omitempty"`
	Emotion          string   `yaml:"emotion,omitempty"`
	Apply            Override `yaml:"apply"`
}

// LearnedPattern is the running average of every style actually
// produced for a (character, emotion) pair.
type LearnedPattern struct {
	Character       string  `yaml:"character"`
	Emotion         string  `yaml:"emotion"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarityBoost"`
	Style           float64 `yaml:"style"`
	UsageCount      int     `yaml:"usageCount"`
}

// GlobalDefaults seed stage one of the merge pipeline.
type GlobalDefaults struct {
	Stability       Range  `yaml:"stability"`
	SimilarityBoost Range  `yaml:"similarityBoost"`
	Style           Range  `yaml:"style"`
	Pitch           string `yaml:"pitch"`
	Rate            string `yaml:"rate"`
	Volume          string `yaml:"volume"`
}

// Config is the full persisted ruleset. Every (character, emotion)
// pair ever requested has an entry in PerCharacterEmotion, created
// lazily on first sight.
type Config struct {
	GlobalDefaults       GlobalDefaults                 `yaml:"globalDefaults"`
	WeightedRules        []WeightedRule                 `yaml:"weightedRules"`
	PerCharacterEmotion  map[string]map[string]Override `yaml:"perCharacterEmotion"`
	ConversationOverlays map[string]Override            `yaml:"conversationOverlays"`
	LearnedPatterns      []LearnedPattern               `yaml:"learnedPatterns"`
}

func (c *Config) learnedFor(character, emotion string) *LearnedPattern {
	for i := range c.LearnedPatterns {
		p := &c.LearnedPatterns[i]
		if p.Character == character && p.Emotion == emotion {
			return p
		}
	}
	return nil
}

func (c *Config) clone() *Config {
	out := &Config{
		GlobalDefaults:       c.GlobalDefaults,
		WeightedRules:        append([]WeightedRule(nil), c.WeightedRules...),
		PerCharacterEmotion:  make(map[string]map[string]Override, len(c.PerCharacterEmotion)),
		ConversationOverlays: make(map[string]Override, len(c.ConversationOverlays)),
		LearnedPatterns:      append([]LearnedPattern(nil), c.LearnedPatterns...),
	}
	for ch, emotions := range c.PerCharacterEmotion {
		m := make(map[string]Override, len(emotions))
		for e, o := range emotions {
			m[e] = o
		}
		out.PerCharacterEmotion[ch] = m
	}
	for k, o := range c.ConversationOverlays {
		out.ConversationOverlays[k] = o
	}
	return out
}

func f(v float64) *float64 { return &v }
func str(v string) *string { return &v }

// DefaultConfig is the built-in ruleset used when nothing is persisted
// yet, and the fallback when the persisted file fails to parse.
func DefaultConfig() *Config {
	return &Config{
		GlobalDefaults: GlobalDefaults{
			Stability:       Range{Min: 0.35, Max: 0.65},
			SimilarityBoost: Range{Min: 0.60, Max: 0.90},
			Style:           Range{Min: 0.20, Max: 0.50},
			Pitch:           "+0%",
			Rate:            "+0%",
			Volume:          "+0%",
		},
		WeightedRules: []WeightedRule{
			{CharacterPattern: "narrator|storyteller", Apply: Override{Stability: f(0.75), Style: f(0.25)}},
			{CharacterPattern: "child|kid|young", Apply: Override{Pitch: str("+15%"), Rate: str("+5%")}},
			{CharacterPattern: "elder|old|ancient", Apply: Override{Pitch: str("-10%"), Rate: str("-10%")}},
			{CharacterPattern: "villain|monster", Apply: Override{Style: f(0.70), Pitch: str("-5%")}},
			{Emotion: "anger", Apply: Override{Style: f(0.80), Rate: str("+10%"), Volume: str("+10%")}},
			{Emotion: "fear", Apply: Override{Stability: f(0.30), Rate: str("+15%")}},
			{Emotion: "sadness", Apply: Override{Rate: str("-10%"), Volume: str("-5%")}},
			{Emotion: "joy", Apply: Override{Style: f(0.60), Pitch: str("+5%")}},
			{Emotion: "calm", Apply: Override{Stability: f(0.80), Rate: str("-5%")}},
		},
		PerCharacterEmotion: map[string]map[string]Override{},
		ConversationOverlays: map[string]Override{
			"whisper":  {Volume: str("-30%"), Stability: f(0.85)},
			"shout":    {Volume: str("+30%"), Style: f(0.75)},
			"dialogue": {Rate: str("+0%")},
			"inner":    {Volume: str("-10%"), Rate: str("-5%")},
		},
	}
}
