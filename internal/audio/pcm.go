// Package audio turns a radio stream URL into opus frames on a Discord voice
// connection.
package audio

import (
	"encoding/binary"
	"math"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz

	frameSamples = FrameSize * Channels
	frameBytes   = frameSamples * 2
	maxOpusBytes = 4000
)

// decodePCM reads little-endian s16 samples from buf into out.
func decodePCM(buf []byte, out []int16) {
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
}

// applyGain scales samples in place, clipping at the int16 range. A gain of
// 1 leaves them untouched.
func applyGain(samples []int16, gain float64) {
	if gain == 1 {
		return
	}
	for i, s := range samples {
		v := math.Round(float64(s) * gain)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		samples[i] = int16(v)
	}
}
