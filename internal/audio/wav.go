// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	BytesPerSample = 2  // LINEAR16 → 2 bytes per sample
	BitsPerSample  = 16 // LINEAR16 → 16 bits per sample
	PCMFormat      = 1  // WAV PCM format tag

	wavHeaderLen = 44
)

// BuildWAV wraps raw LINEAR16 PCM in a WAV container.
func BuildWAV(pcmData []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	bps := sampleRate * channels * BytesPerSample

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcmData)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(PCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(bps))
	binary.Write(&buf, binary.LittleEndian, uint16(BytesPerSample*channels))
	binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample))

	// data chunk
	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcmData)))
	buf.Write(pcmData)

	return buf.Bytes()
}

// WAVInfo is what ProbeWAV reads back out of a PCM WAV header.
type WAVInfo struct {
	SampleRate      int
	Channels        int
	DurationSeconds float64
}

// ProbeWAV reads the header of a PCM WAV payload. It understands only the
// canonical 44-byte layout that BuildWAV and MediaRecorder wav encoders
// produce; anything else is an error, which callers treat as "cannot
// cross-check" rather than a rejection.
func ProbeWAV(data []byte) (WAVInfo, error) {
	if len(data) < wavHeaderLen {
		return WAVInfo{}, fmt.Errorf("wav payload too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return WAVInfo{}, fmt.Errorf("not a RIFF/WAVE payload")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != PCMFormat {
		return WAVInfo{}, fmt.Errorf("unsupported wav format tag %d", format)
	}

	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	dataLen := int(binary.LittleEndian.Uint32(data[40:44]))
	if channels <= 0 || sampleRate <= 0 {
		return WAVInfo{}, fmt.Errorf("invalid wav header: channels=%d rate=%d", channels, sampleRate)
	}
	if max := len(data) - wavHeaderLen; dataLen > max {
		dataLen = max
	}

	bytesPerSecond := sampleRate * channels * BytesPerSample
	return WAVInfo{
		SampleRate:      sampleRate,
		Channels:        channels,
		DurationSeconds: float64(dataLen) / float64(bytesPerSecond),
	}, nil
}
