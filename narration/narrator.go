package narration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"voxstory/interpolation"
	"voxstory/storage"
	"voxstory/voice"
	"voxstory/voicestyle"
)

// Segment is one story line to narrate.
type Segment struct {
	Text             string
	Character        string
	Emotion          string
	Intensity        int
	ConversationType string
}

// Result reports what was synthesized and how personalized it is.
type Result struct {
	Audio         []byte
	VoiceID       string
	Personalized  bool
	Interpolated  bool
	SourceEmotion string
	Style         voicestyle.Style
}

// Narrator produces narration audio for story segments. Voice
// personalization is best effort: a missing sample, missing clone or
// failed personalized synthesis falls back to the default voice so
// playback never blocks on personalization.
type Narrator struct {
	Store        storage.RecordingStore
	Registry     *voice.Registry
	Resolver     *interpolation.Resolver
	Orchestrator *voicestyle.Orchestrator
	Synth        voice.Synthesizer

	// DefaultVoiceID is the non-personalized stock voice.
	DefaultVoiceID string
	// Baseline anchors every segment to the story's narrator voice.
	Baseline *voicestyle.Style
}

func NewNarrator(store storage.RecordingStore, registry *voice.Registry, orchestrator *voicestyle.Orchestrator, synth voice.Synthesizer, defaultVoiceID string) *Narrator {
	return &Narrator{
		Store:          store,
		Registry:       registry,
		Resolver:       interpolation.NewResolver(),
		Orchestrator:   orchestrator,
		Synth:          synth,
		DefaultVoiceID: defaultVoiceID,
	}
}

// Narrate renders one segment in the owner's cloned voice when
// possible, adjusting delivery when the emotion had to be
// interpolated from a different recording.
func (n *Narrator) Narrate(ctx context.Context, ownerID string, seg Segment) (*Result, error) {
	style := n.Orchestrator.ComputeStyle(seg.Character, seg.Emotion, &voicestyle.Options{
		ConversationType: seg.ConversationType,
		NarratorBaseline: n.Baseline,
	})

	voiceID, res := n.pickVoice(ctx, ownerID, seg)
	if res != nil && res.Rule != nil {
		applyRule(&style, res.Rule)
	}

	result := &Result{
		VoiceID:      voiceID,
		Personalized: voiceID != n.DefaultVoiceID,
		Style:        style,
	}
	if res != nil {
		result.Interpolated = res.Interpolated
		result.SourceEmotion = res.SourceEmotion
	}

	audio, err := n.Synth.Synthesize(ctx, seg.Text, voiceID, style)
	if err != nil && result.Personalized {
		// degrade silently rather than blocking playback
		logrus.WithError(err).WithFields(logrus.Fields{
			"owner": ownerID,
			"voice": voiceID,
		}).Warnln("personalized synthesis failed, falling back to stock voice")

		result.VoiceID = n.DefaultVoiceID
		result.Personalized = false
		audio, err = n.Synth.Synthesize(ctx, seg.Text, n.DefaultVoiceID, style)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize segment; %w", err)
	}

	result.Audio = audio
	return result, nil
}

// pickVoice resolves the best sample and the clone that covers it.
// Any gap resolves to the stock voice.
func (n *Narrator) pickVoice(ctx context.Context, ownerID string, seg Segment) (string, *interpolation.Resolution) {
	recordings, err := n.Store.ListRecordings(ctx, ownerID)
	if err != nil {
		logrus.WithError(err).WithField("owner", ownerID).Warnln("failed to list recordings for narration")
		return n.DefaultVoiceID, nil
	}

	res := n.Resolver.Resolve(recordings, seg.Emotion, seg.Intensity)
	if res == nil {
		return n.DefaultVoiceID, nil
	}

	voiceID, err := n.Registry.VoiceFor(ctx, ownerID, res.SourceEmotion)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.WithError(err).WithField("owner", ownerID).Warnln("voice lookup failed")
		}
		return n.DefaultVoiceID, res
	}

	return voiceID, res
}

// applyRule folds an interpolation rule's delivery adjustment into
// the prosody. Factors are multiplicative around 1.0 and become
// signed percent shifts.
func applyRule(style *voicestyle.Style, rule *interpolation.Rule) {
	if rule.SpeedFactor > 0 {
		shift := int(math.Round((rule.SpeedFactor - 1) * 100))
		style.Prosody.Rate = voicestyle.ShiftPercent(style.Prosody.Rate, shift)
	}
	if rule.PitchFactor > 0 {
		shift := int(math.Round((rule.PitchFactor - 1) * 100))
		style.Prosody.Pitch = voicestyle.ShiftPercent(style.Prosody.Pitch, shift)
	}
}
