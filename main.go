package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"voxstory/narration"
	"voxstory/segmentation"
	"voxstory/storage"
	"voxstory/voice"
	"voxstory/voicestyle"
)

func newInterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Services is the wired-up voice personalization core, ready to be
// mounted behind whatever request layer hosts it.
type Services struct {
	Narrator *narration.Narrator
	Clones   *segmentation.Workflow
	Registry *voice.Registry
}

func buildServices() (*Services, error) {
	s3, err := storage.NewS3FromEnv()
	if err != nil {
		return nil, err
	}

	provider, err := voice.NewElevenLabsFromEnv(s3)
	if err != nil {
		return nil, err
	}

	configPath := os.Getenv("VOICESTYLE_CONFIG")
	if configPath == "" {
		configPath = "voicestyle.yaml"
	}
	styleStore, err := voicestyle.NewStore(configPath)
	if err != nil {
		return nil, err
	}
	orchestrator := voicestyle.NewOrchestrator(styleStore)

	recordings := storage.NewMemory()
	registry := voice.NewRegistry(recordings)

	defaultVoice := os.Getenv("DEFAULT_VOICE_ID")

	return &Services{
		Narrator: narration.NewNarrator(recordings, registry, orchestrator, provider, defaultVoice),
		Clones:   segmentation.NewWorkflow(recordings, provider, registry),
		Registry: registry,
	}, nil
}

func main() {
	ctx, cancel := newInterruptContext(context.Background())
	defer cancel()

	services, err := buildServices()
	if err != nil {
		logrus.WithError(err).Fatalln("failed to build services")
	}
	defer services.Registry.Stop()

	logrus.Infoln("voice core ready")

	<-ctx.Done()
	logrus.Infoln("shutting down")
}
