package voice

import (
	"context"

	"voxstory/voicestyle"
)

// CloneProvider creates a personalized voice from recorded samples.
// Calls are long-running and unreliable; callers own the timeout and
// retry policy via ctx.
type CloneProvider interface {
	CreateClone(ctx context.Context, label string, audioRefs []string) (voiceID string, err error)
}

// Synthesizer renders narration text with a voice and style.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, style voicestyle.Style) ([]byte, error)
}

// SampleSource resolves an opaque audio ref to sample bytes.
type SampleSource interface {
	FetchRef(ref string) ([]byte, error)
}
