package inventory

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
)

var ErrNotAudio = errors.New("not a valid wav file")

// SampleInfo describes an uploaded sample's audio properties.
type SampleInfo struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int
}

const (
	MinSampleDuration = 1 * time.Second
	MaxSampleDuration = 60 * time.Second
)

// ProbeWAV validates raw upload bytes before they become a Recording.
// Rejects non-wav data and samples too short or too long to be useful
// as clone training material.
func ProbeWAV(r io.ReadSeeker) (*SampleInfo, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrNotAudio
	}

	dur, err := d.Duration()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav duration; %w", err)
	}

	info := &SampleInfo{
		Duration:   dur,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}

	if dur < MinSampleDuration {
		return info, fmt.Errorf("sample too short (%s); need at least %s", dur, MinSampleDuration)
	}
	if dur > MaxSampleDuration {
		return info, fmt.Errorf("sample too long (%s); max is %s", dur, MaxSampleDuration)
	}

	logrus.WithFields(logrus.Fields{
		"duration": dur,
		"rate":     info.SampleRate,
		"channels": info.Channels,
	}).Debugln("probed sample")

	return info, nil
}
