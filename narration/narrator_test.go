package narration

import (
	"context"
	"errors"
	"math/rand"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"voxstory/inventory"
	"voxstory/storage"
	"voxstory/voice"
	"voxstory/voicestyle"
)

type fakeSynth struct {
	failVoices map[string]bool
	calls      []string // voice ids in call order
}

func (s *fakeSynth) Synthesize(_ context.Context, text, voiceID string, _ voicestyle.Style) ([]byte, error) {
	s.calls = append(s.calls, voiceID)
	if s.failVoices[voiceID] {
		return nil, errors.New("synthesis unavailable")
	}
	return []byte("audio:" + voiceID + ":" + text), nil
}

func testNarrator(t *testing.T, store *storage.Memory, synth voice.Synthesizer) (*Narrator, *voice.Registry) {
	t.Helper()

	cfgStore, err := voicestyle.NewStore(path.Join(t.TempDir(), "voicestyle.yaml"))
	assert.NoError(t, err)
	orchestrator := voicestyle.NewOrchestrator(cfgStore, voicestyle.WithRand(rand.New(rand.NewSource(1))))

	registry := voice.NewRegistry(store)
	t.Cleanup(registry.Stop)

	return NewNarrator(store, registry, orchestrator, synth, "stock-voice"), registry
}

func addEmotion(t *testing.T, store *storage.Memory, name string, intensity int) {
	t.Helper()
	assert.NoError(t, store.AddRecording(context.Background(), inventory.Recording{
		ID:         name + "-1",
		OwnerID:    "owner-1",
		Category:   inventory.CategoryEmotion,
		ItemName:   name,
		AudioRef:   "s3://samples/" + name,
		Intensity:  intensity,
		RecordedAt: time.Now(),
	}))
}

func TestNarrateNoSamplesUsesStockVoice(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{}
	n, _ := testNarrator(t, store, synth)

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "once upon a time", Character: "narrator", Emotion: "calm"})
	assert.NoError(t, err)
	assert.False(t, res.Personalized)
	assert.Equal(t, "stock-voice", res.VoiceID)
	assert.NotEmpty(t, res.Audio)
}

func TestNarratePersonalized(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{}
	n, registry := testNarrator(t, store, synth)

	addEmotion(t, store, "joy", 5)
	assert.NoError(t, registry.Register(ctx, "owner-1", "joy", "cloned-joy"))

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "hooray", Character: "hero", Emotion: "joy", Intensity: 5})
	assert.NoError(t, err)
	assert.True(t, res.Personalized)
	assert.False(t, res.Interpolated)
	assert.Equal(t, "cloned-joy", res.VoiceID)
}

func TestNarrateInterpolatedAdjustsDelivery(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{}
	n, registry := testNarrator(t, store, synth)

	addEmotion(t, store, "grief", 5)
	assert.NoError(t, registry.Register(ctx, "owner-1", "grief", "cloned-grief"))

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "all is lost", Character: "hero", Emotion: "despair", Intensity: 7})
	assert.NoError(t, err)
	assert.True(t, res.Personalized)
	assert.True(t, res.Interpolated)
	assert.Equal(t, "grief", res.SourceEmotion)
	assert.Equal(t, "cloned-grief", res.VoiceID)

	// grief->despair rule slows delivery by 15% and drops pitch 8%
	assert.Equal(t, -15, voicestyle.ParsePercent(res.Style.Prosody.Rate))
	assert.Equal(t, -8, voicestyle.ParsePercent(res.Style.Prosody.Pitch))
}

func TestNarrateSampleWithoutCloneFallsBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{}
	n, _ := testNarrator(t, store, synth)

	// sample exists but no clone was ever created for it
	addEmotion(t, store, "joy", 5)

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "hooray", Character: "hero", Emotion: "joy", Intensity: 5})
	assert.NoError(t, err)
	assert.False(t, res.Personalized)
	assert.Equal(t, "stock-voice", res.VoiceID)
}

func TestNarratePersonalizedFailureDegradesSilently(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{failVoices: map[string]bool{"cloned-joy": true}}
	n, registry := testNarrator(t, store, synth)

	addEmotion(t, store, "joy", 5)
	assert.NoError(t, registry.Register(ctx, "owner-1", "joy", "cloned-joy"))

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "hooray", Character: "hero", Emotion: "joy", Intensity: 5})
	assert.NoError(t, err)
	assert.False(t, res.Personalized)
	assert.Equal(t, []string{"cloned-joy", "stock-voice"}, synth.calls)
	assert.NotEmpty(t, res.Audio)
}

func TestNarrateStockFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{failVoices: map[string]bool{"stock-voice": true}}
	n, _ := testNarrator(t, store, synth)

	_, err := n.Narrate(ctx, "owner-1", Segment{Text: "hello", Character: "hero", Emotion: "calm"})
	assert.Error(t, err)
}

func TestNarrateBaselineBlending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	synth := &fakeSynth{}
	n, _ := testNarrator(t, store, synth)
	n.Baseline = &voicestyle.Style{
		Stability:       1.0,
		SimilarityBoost: 1.0,
		Style:           0.0,
		Prosody:         voicestyle.Prosody{Pitch: "+0%", Rate: "+0%", Volume: "+0%"},
	}

	res, err := n.Narrate(ctx, "owner-1", Segment{Text: "hm", Character: "hero", Emotion: "calm"})
	assert.NoError(t, err)
	// blended mean keeps everything in bounds
	assert.LessOrEqual(t, res.Style.Stability, 1.0)
	assert.GreaterOrEqual(t, res.Style.Style, 0.0)
}
