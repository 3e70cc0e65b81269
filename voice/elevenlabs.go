package voice

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/haguro/elevenlabs-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"voxstory/voicestyle"
)

const (
	cloneTimeout = 3 * time.Minute
	ttsTimeout   = 30 * time.Second

	defaultModelID = "eleven_multilingual_v2"
)

// ElevenLabs implements CloneProvider and Synthesizer against the
// elevenlabs API. The provider ingests clone samples as files, so
// audio refs are materialized into a temp dir for the request.
type ElevenLabs struct {
	ApiKey  string
	ModelID string

	samples SampleSource
	limiter *rate.Limiter
}

var _ CloneProvider = (*ElevenLabs)(nil)
var _ Synthesizer = (*ElevenLabs)(nil)

func NewElevenLabs(apiKey string, samples SampleSource) *ElevenLabs {
	return &ElevenLabs{
		ApiKey:  apiKey,
		ModelID: defaultModelID,
		samples: samples,
		// the voice-add endpoint is expensive; keep clone and tts
		// traffic under 2 req/s with small bursts
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func NewElevenLabsFromEnv(samples SampleSource) (*ElevenLabs, error) {
	key, exists := os.LookupEnv("ELEVENLABS_APIKEY")
	if !exists {
		return nil, fmt.Errorf("missing env var ELEVENLABS_APIKEY")
	}
	return NewElevenLabs(key, samples), nil
}

// CreateClone uploads the referenced samples and returns the new
// voice id. Blocks until the provider finishes or ctx expires.
func (api *ElevenLabs) CreateClone(ctx context.Context, label string, audioRefs []string) (string, error) {
	if len(audioRefs) == 0 {
		return "", fmt.Errorf("no audio refs to clone from")
	}
	if err := api.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait aborted; %w", err)
	}

	dir, err := os.MkdirTemp("", "clone-samples-")
	if err != nil {
		return "", fmt.Errorf("failed to create sample dir; %w", err)
	}
	defer os.RemoveAll(dir)

	files := make([]string, 0, len(audioRefs))
	for _, ref := range audioRefs {
		data, err := api.samples.FetchRef(ref)
		if err != nil {
			return "", fmt.Errorf("failed to fetch sample %q; %w", ref, err)
		}
		file := path.Join(dir, uuid.NewString()+".wav")
		if err := os.WriteFile(file, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write sample file; %w", err)
		}
		files = append(files, file)
	}

	client := elevenlabs.NewClient(ctx, api.ApiKey, cloneTimeout)

	logrus.WithFields(logrus.Fields{
		"label":   label,
		"samples": len(files),
	}).Infoln("creating voice clone")

	voiceID, err := client.AddVoice(elevenlabs.AddEditVoiceRequest{
		Name:      label,
		FilePaths: files,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add voice; %w", err)
	}

	return voiceID, nil
}

// Synthesize renders text with a cloned voice and the computed style.
func (api *ElevenLabs) Synthesize(ctx context.Context, text, voiceID string, style voicestyle.Style) ([]byte, error) {
	if err := api.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted; %w", err)
	}

	client := elevenlabs.NewClient(ctx, api.ApiKey, ttsTimeout)

	audio, err := client.TextToSpeech(voiceID, elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: api.ModelID,
		VoiceSettings: &elevenlabs.VoiceSettings{
			Stability:       float32(style.Stability),
			SimilarityBoost: float32(style.SimilarityBoost),
			Style:           float32(style.Style),
			SpeakerBoost:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed tts; %w", err)
	}

	return audio, nil
}
