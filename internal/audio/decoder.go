package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a base64 payload cannot be
// decoded. It indicates a corrupted or truncated transport, not a
// legitimately empty result, so callers must surface it rather than
// substitute silence.
var ErrMalformedPayload = errors.New("malformed base64 audio payload")

// ErrTruncatedPayload is returned in strict mode when the raw byte
// sequence does not divide into whole frames.
var ErrTruncatedPayload = errors.New("truncated PCM payload")

// DecoderConfig configures a Decoder.
// Required fields:
// - Format: the payload format descriptor
// Optional fields with defaults:
// - MinimumFrames: minimum frames per decode, shorter results are padded
//   with silence (default: 1)
// - Strict: fail on truncated payloads instead of dropping the partial
//   tail (default: false)
type DecoderConfig struct {
	Format        Format
	MinimumFrames int
	Strict        bool
}

// Decoder converts base64-encoded raw PCM payloads into playable float
// buffers. Decoding is a pure computation: no I/O, no shared state, so
// a single Decoder is safe for concurrent use.
type Decoder struct {
	format    Format
	minFrames int
	strict    bool
}

// NewDecoder creates a Decoder for the given configuration.
func NewDecoder(config DecoderConfig) (*Decoder, error) {
	if err := config.Format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder format: %w", err)
	}
	if config.MinimumFrames < 0 {
		return nil, fmt.Errorf("minimum frames must not be negative, got %d", config.MinimumFrames)
	}

	minFrames := config.MinimumFrames
	if minFrames == 0 {
		// Playback sinks reject zero-length buffers, so a decode always
		// yields at least one frame unless configured otherwise.
		minFrames = 1
	}

	return &Decoder{
		format:    config.Format,
		minFrames: minFrames,
		strict:    config.Strict,
	}, nil
}

// Format returns the payload format this decoder expects.
func (d *Decoder) Format() Format {
	return d.format
}

// DecodeBase64 decodes a base64-encoded PCM payload into a Buffer.
// An empty payload is a defined success and yields the minimum silent
// buffer. Malformed base64 fails with ErrMalformedPayload and no buffer
// is produced.
func (d *Decoder) DecodeBase64(payload string) (*Buffer, error) {
	if payload == "" {
		return NewSilentBuffer(d.format, d.minFrames), nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return d.DecodePCM(raw)
}

// DecodePCM interprets raw bytes as interleaved signed 16-bit
// little-endian PCM and de-interleaves them into one normalized float32
// slice per channel.
//
// An odd trailing byte cannot form a sample and is dropped; samples
// beyond the last complete frame are dropped as well. In strict mode
// either condition fails with ErrTruncatedPayload instead.
func (d *Decoder) DecodePCM(raw []byte) (*Buffer, error) {
	if d.strict && len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte length %d", ErrTruncatedPayload, len(raw))
	}

	sampleCount := len(raw) / 2
	frameCount := sampleCount / d.format.Channels
	if d.strict && sampleCount%d.format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into %d-channel frames",
			ErrTruncatedPayload, sampleCount, d.format.Channels)
	}

	buffer := NewSilentBuffer(d.format, frameCount)
	for c := 0; c < d.format.Channels; c++ {
		channel := buffer.Channel(c)
		for i := 0; i < frameCount; i++ {
			offset := (i*d.format.Channels + c) * 2
			sample := int16(binary.LittleEndian.Uint16(raw[offset:]))
			channel[i] = float32(sample) / 32768.0
		}
	}

	if frameCount < d.minFrames {
		buffer.padToFrames(d.minFrames)
	}

	return buffer, nil
}

// Decode is a convenience for one-off decodes at the given format with
// default policies.
func Decode(payload string, format Format) (*Buffer, error) {
	decoder, err := NewDecoder(DecoderConfig{Format: format})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeBase64(payload)
}
