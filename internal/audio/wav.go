// Package audio holds the small amount of WAV handling the gateway needs:
// validating uploaded clips before they are sent to an ASR backend, and
// encoding synthetic clips for backend warmup.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/wav"
)

// Info describes an uploaded WAV clip.
type Info struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth"`
	Duration   time.Duration `json:"-"`
	DurationMs float64       `json:"duration_ms"`
}

// ReadInfo parses and validates a WAV header, returning the clip's metadata.
func ReadInfo(r io.ReadSeeker) (Info, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("audio: not a valid wav file")
	}

	dur, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("audio: duration: %w", err)
	}

	return Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   dur,
		DurationMs: float64(dur.Milliseconds()),
	}, nil
}

// Encode turns float32 PCM samples into a 16-bit mono WAV byte slice.
// go-audio's encoder needs an io.WriteSeeker, so the 44-byte header is
// written by hand to keep this allocation-only.
func Encode(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	totalLen := 44 + dataLen

	buf := make([]byte, totalLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(totalLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		val := int16(clamped * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(val))
	}

	return buf
}

// Silence returns a WAV clip of silence with the given duration, used to
// warm up ASR backends without real audio.
func Silence(d time.Duration, sampleRate int) []byte {
	n := int(float64(sampleRate) * d.Seconds())
	return Encode(make([]float32, n), sampleRate)
}
