package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

// encodeSamples packs int16 samples as little-endian bytes and base64.
func encodeSamples(samples []int16) string {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func mustDecoder(t *testing.T, config DecoderConfig) *Decoder {
	t.Helper()
	decoder, err := NewDecoder(config)
	if err != nil {
		t.Fatalf("Failed to create decoder: %v", err)
	}
	return decoder
}

func TestDecodeBase64_EvenLengthMono(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345, -12345}
	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	buffer, err := decoder.DecodeBase64(encodeSamples(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buffer.FrameCount() != len(samples) {
		t.Errorf("Expected %d frames, got %d", len(samples), buffer.FrameCount())
	}
	if buffer.NumChannels() != 1 {
		t.Errorf("Expected 1 channel, got %d", buffer.NumChannels())
	}
	if buffer.SampleRate() != 24000 {
		t.Errorf("Expected sample rate 24000, got %d", buffer.SampleRate())
	}
}

func TestDecodeBase64_RoundTripNormalization(t *testing.T) {
	samples := []int16{0, 1, -1, 100, -100, 16384, -16384, 32767, -32768}
	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	buffer, err := decoder.DecodeBase64(encodeSamples(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	channel := buffer.Channel(0)
	for i, s := range samples {
		expected := float32(s) / 32768.0
		if math.Abs(float64(channel[i]-expected)) > 1e-6 {
			t.Errorf("Sample %d: expected %f, got %f", i, expected, channel[i])
		}
	}

	// Normalized values stay inside [-1.0, 1.0).
	for i, v := range channel {
		if v < -1.0 || v >= 1.0 {
			t.Errorf("Sample %d out of range: %f", i, v)
		}
	}
}

func TestDecodeBase64_OddLengthDropsTrailingByte(t *testing.T) {
	samples := []int16{1000, -2000, 3000}
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}

	// Append a sentinel byte that cannot form a complete sample. It
	// must not influence any output value.
	withSentinel := append(append([]byte{}, raw...), 0xFF)

	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	even, err := decoder.DecodePCM(raw)
	if err != nil {
		t.Fatalf("Decode of even payload failed: %v", err)
	}
	odd, err := decoder.DecodePCM(withSentinel)
	if err != nil {
		t.Fatalf("Decode of odd payload failed: %v", err)
	}

	if odd.FrameCount() != even.FrameCount() {
		t.Fatalf("Expected %d frames, got %d", even.FrameCount(), odd.FrameCount())
	}
	for i := range even.Channel(0) {
		if odd.Channel(0)[i] != even.Channel(0)[i] {
			t.Errorf("Sample %d changed by trailing byte: %f vs %f",
				i, odd.Channel(0)[i], even.Channel(0)[i])
		}
	}
}

func TestDecodeBase64_EmptyPayload(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"mono 24kHz", DefaultFormat()},
		{"stereo 44.1kHz", Format{Encoding: EncodingPCM16LE, SampleRate: 44100, Channels: 2}},
		{"six channel 8kHz", Format{Encoding: EncodingPCM16LE, SampleRate: 8000, Channels: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := mustDecoder(t, DecoderConfig{Format: tt.format})

			buffer, err := decoder.DecodeBase64("")
			if err != nil {
				t.Fatalf("Decode of empty payload failed: %v", err)
			}

			if buffer.FrameCount() != 1 {
				t.Errorf("Expected exactly 1 silent frame, got %d", buffer.FrameCount())
			}
			if buffer.NumChannels() != tt.format.Channels {
				t.Errorf("Expected %d channels, got %d", tt.format.Channels, buffer.NumChannels())
			}
			if buffer.SampleRate() != tt.format.SampleRate {
				t.Errorf("Expected sample rate %d, got %d", tt.format.SampleRate, buffer.SampleRate())
			}
			for c := 0; c < buffer.NumChannels(); c++ {
				for i, v := range buffer.Channel(c) {
					if v != 0.0 {
						t.Errorf("Channel %d sample %d not silent: %f", c, i, v)
					}
				}
			}
		})
	}
}

func TestDecodePCM_EmptyBytes(t *testing.T) {
	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	buffer, err := decoder.DecodePCM(nil)
	if err != nil {
		t.Fatalf("Decode of nil bytes failed: %v", err)
	}
	if buffer.FrameCount() != 1 {
		t.Errorf("Expected 1 silent frame, got %d", buffer.FrameCount())
	}
	if buffer.Channel(0)[0] != 0.0 {
		t.Errorf("Expected silence, got %f", buffer.Channel(0)[0])
	}
}

func TestDecodeBase64_StereoDeinterleave(t *testing.T) {
	// Interleaved [L0, R0, L1, R1, L2, R2].
	interleaved := []int16{100, -100, 200, -200, 300, -300}
	format := Format{Encoding: EncodingPCM16LE, SampleRate: 48000, Channels: 2}
	decoder := mustDecoder(t, DecoderConfig{Format: format})

	buffer, err := decoder.DecodeBase64(encodeSamples(interleaved))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buffer.FrameCount() != 3 {
		t.Fatalf("Expected 3 frames, got %d", buffer.FrameCount())
	}

	left := []int16{100, 200, 300}
	right := []int16{-100, -200, -300}
	for i := 0; i < 3; i++ {
		expectedL := float32(left[i]) / 32768.0
		expectedR := float32(right[i]) / 32768.0
		if buffer.Channel(0)[i] != expectedL {
			t.Errorf("Left sample %d: expected %f, got %f", i, expectedL, buffer.Channel(0)[i])
		}
		if buffer.Channel(1)[i] != expectedR {
			t.Errorf("Right sample %d: expected %f, got %f", i, expectedR, buffer.Channel(1)[i])
		}
	}
}

func TestDecodeBase64_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid character", "abc!def="},
		{"incorrect padding", "QQ=Q"},
		{"stray data after padding", "QUJD=X"},
	}

	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer, err := decoder.DecodeBase64(tt.payload)
			if err == nil {
				t.Fatal("Expected error for malformed payload, got nil")
			}
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("Expected ErrMalformedPayload, got %v", err)
			}
			if buffer != nil {
				t.Error("Expected no buffer for malformed payload")
			}
		})
	}
}

func TestDecodePCM_TruncatedTrailingFrame(t *testing.T) {
	// 7 raw bytes at 2 channels: the odd byte is dropped (6 bytes,
	// 3 samples), then the third sample cannot complete a frame.
	raw := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0xFF}
	format := Format{Encoding: EncodingPCM16LE, SampleRate: 24000, Channels: 2}
	decoder := mustDecoder(t, DecoderConfig{Format: format})

	buffer, err := decoder.DecodePCM(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buffer.FrameCount() != 1 {
		t.Fatalf("Expected 1 frame, got %d", buffer.FrameCount())
	}

	leftover := float32(3) / 32768.0
	if buffer.Channel(0)[0] != float32(1)/32768.0 {
		t.Errorf("Unexpected left sample: %f", buffer.Channel(0)[0])
	}
	if buffer.Channel(1)[0] != float32(2)/32768.0 {
		t.Errorf("Unexpected right sample: %f", buffer.Channel(1)[0])
	}
	for c := 0; c < 2; c++ {
		for _, v := range buffer.Channel(c) {
			if v == leftover {
				t.Errorf("Leftover sample leaked into channel %d", c)
			}
		}
	}
}

func TestDecodePCM_StrictMode(t *testing.T) {
	format := Format{Encoding: EncodingPCM16LE, SampleRate: 24000, Channels: 2}
	decoder := mustDecoder(t, DecoderConfig{Format: format, Strict: true})

	t.Run("odd byte length", func(t *testing.T) {
		_, err := decoder.DecodePCM([]byte{0x01, 0x00, 0x02})
		if !errors.Is(err, ErrTruncatedPayload) {
			t.Errorf("Expected ErrTruncatedPayload, got %v", err)
		}
	})

	t.Run("partial trailing frame", func(t *testing.T) {
		_, err := decoder.DecodePCM([]byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00})
		if !errors.Is(err, ErrTruncatedPayload) {
			t.Errorf("Expected ErrTruncatedPayload, got %v", err)
		}
	})

	t.Run("whole frames pass", func(t *testing.T) {
		buffer, err := decoder.DecodePCM([]byte{0x01, 0x00, 0x02, 0x00})
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if buffer.FrameCount() != 1 {
			t.Errorf("Expected 1 frame, got %d", buffer.FrameCount())
		}
	})
}

func TestDecodePCM_MinimumFrameGuarantee(t *testing.T) {
	format := DefaultFormat()
	decoder := mustDecoder(t, DecoderConfig{Format: format, MinimumFrames: 4})

	buffer, err := decoder.DecodePCM([]byte{0x00, 0x40, 0x00, 0xC0})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buffer.FrameCount() != 4 {
		t.Fatalf("Expected padding to 4 frames, got %d", buffer.FrameCount())
	}

	channel := buffer.Channel(0)
	if channel[0] != 0.5 || channel[1] != -0.5 {
		t.Errorf("Decoded samples corrupted by padding: %f, %f", channel[0], channel[1])
	}
	if channel[2] != 0.0 || channel[3] != 0.0 {
		t.Errorf("Expected silent padding, got %f, %f", channel[2], channel[3])
	}
}

func TestNewDecoder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  DecoderConfig
		wantErr bool
	}{
		{"default format", DecoderConfig{Format: DefaultFormat()}, false},
		{"unsupported encoding", DecoderConfig{Format: Format{Encoding: "opus", SampleRate: 24000, Channels: 1}}, true},
		{"zero sample rate", DecoderConfig{Format: Format{Encoding: EncodingPCM16LE, Channels: 1}}, true},
		{"zero channels", DecoderConfig{Format: Format{Encoding: EncodingPCM16LE, SampleRate: 24000}}, true},
		{"negative minimum frames", DecoderConfig{Format: DefaultFormat(), MinimumFrames: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDecoder() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuffer_Duration(t *testing.T) {
	decoder := mustDecoder(t, DecoderConfig{Format: DefaultFormat()})

	samples := make([]int16, 24000)
	buffer, err := decoder.DecodeBase64(encodeSamples(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if buffer.Duration() != time.Second {
		t.Errorf("Expected 1s duration, got %v", buffer.Duration())
	}
}

func TestDecode_Convenience(t *testing.T) {
	buffer, err := Decode(encodeSamples([]int16{512}), DefaultFormat())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buffer.FrameCount() != 1 {
		t.Errorf("Expected 1 frame, got %d", buffer.FrameCount())
	}
	if buffer.Channel(0)[0] != float32(512)/32768.0 {
		t.Errorf("Unexpected sample value: %f", buffer.Channel(0)[0])
	}
}

func TestFormat_Helpers(t *testing.T) {
	format := Format{Encoding: EncodingPCM16LE, SampleRate: 24000, Channels: 2}

	if format.BytesPerFrame() != 4 {
		t.Errorf("Expected 4 bytes per frame, got %d", format.BytesPerFrame())
	}
	if format.FrameDuration(12000) != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", format.FrameDuration(12000))
	}
}
