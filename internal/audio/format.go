package audio

import (
	"fmt"
	"time"
)

// Encoding identifies the byte layout of a raw audio payload.
type Encoding string

const (
	// EncodingPCM16LE is signed 16-bit little-endian PCM with no header.
	EncodingPCM16LE Encoding = "pcm_s16le"
)

const (
	defaultSampleRate = 24000
	defaultChannels   = 1
)

// Format describes the layout of an audio payload. Raw PCM carries no
// header of its own, so the format always travels alongside the payload
// instead of being inferred from it.
type Format struct {
	Encoding   Encoding `json:"encoding"`
	SampleRate int      `json:"sample_rate"`
	Channels   int      `json:"channels"`
}

// DefaultFormat returns the format the speech providers emit:
// 16-bit little-endian PCM, 24kHz, mono.
func DefaultFormat() Format {
	return Format{
		Encoding:   EncodingPCM16LE,
		SampleRate: defaultSampleRate,
		Channels:   defaultChannels,
	}
}

// Validate checks that the format is complete and supported.
func (f Format) Validate() error {
	if f.Encoding != EncodingPCM16LE {
		return fmt.Errorf("unsupported encoding: %q", f.Encoding)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", f.Channels)
	}
	return nil
}

// BytesPerFrame returns the size of one interleaved frame in bytes.
func (f Format) BytesPerFrame() int {
	return 2 * f.Channels
}

// FrameDuration returns the duration of a buffer of frameCount frames
// at this format's sample rate.
func (f Format) FrameDuration(frameCount int) time.Duration {
	return time.Duration(frameCount) * time.Second / time.Duration(f.SampleRate)
}
