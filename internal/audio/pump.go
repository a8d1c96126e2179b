package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrStreamEnded is returned when the source closes on its own.
var ErrStreamEnded = errors.New("stream ended")

// Pump reads PCM frames from r, applies gain, encodes them and sends each
// opus packet to out until ctx ends or the stream does. A cancelled ctx is
// not an error.
func Pump(ctx context.Context, r io.Reader, enc Encoder, gain float64, out chan<- []byte) error {
	pcm := make([]byte, frameBytes)
	samples := make([]int16, frameSamples)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := io.ReadFull(r, pcm); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrStreamEnded
			}
			return fmt.Errorf("read error: %w", err)
		}

		decodePCM(pcm, samples)
		applyGain(samples, gain)

		packet := make([]byte, maxOpusBytes)
		n, err := enc.Encode(samples, packet)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case out <- packet[:n]:
		}
	}
}
