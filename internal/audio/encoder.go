package audio

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// Encoder compresses one frame of interleaved PCM into data and returns the
// number of bytes written.
type Encoder interface {
	Encode(pcm []int16, data []byte) (int, error)
}

// NewOpusEncoder returns a 48kHz stereo libopus encoder tuned for music.
func NewOpusEncoder() (Encoder, error) {
	enc, err := opus.NewEncoder(SampleRate, Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	return enc, nil
}
