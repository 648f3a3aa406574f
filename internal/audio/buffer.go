package audio

import "time"

// Buffer holds decoded audio as one float32 sample slice per channel.
// Samples are normalized to [-1.0, 1.0) and every channel slice has the
// same length. A Buffer is freshly allocated per decode and never shared.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewSilentBuffer returns a buffer of frameCount all-zero frames.
func NewSilentBuffer(format Format, frameCount int) *Buffer {
	channels := make([][]float32, format.Channels)
	for c := range channels {
		channels[c] = make([]float32, frameCount)
	}
	return &Buffer{
		sampleRate: format.SampleRate,
		channels:   channels,
	}
}

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// NumChannels returns the number of channels.
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// FrameCount returns the number of frames per channel.
func (b *Buffer) FrameCount() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the sample slice for channel c. The slice is owned by
// the buffer; callers copying it into a platform audio sink must not
// mutate it afterwards.
func (b *Buffer) Channel(c int) []float32 {
	return b.channels[c]
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.sampleRate)
}

// padToFrames extends every channel with silence up to frameCount.
func (b *Buffer) padToFrames(frameCount int) {
	for c := range b.channels {
		if len(b.channels[c]) < frameCount {
			padded := make([]float32, frameCount)
			copy(padded, b.channels[c])
			b.channels[c] = padded
		}
	}
}
