// Package decode loads audio files from disk into audiopool.Sample values
// using go-audio/wav, the same library the recording package writes with,
// so the recording round-trip property (write then read back) exercises a
// single, consistent codec.
package decode

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/justyntemme/lightningbeam-daw/internal/audiopool"
)

// LoadWAV decodes a WAV file at path into interleaved float32 samples in
// [-1, 1], returning an audiopool.Sample ready for Pool.Add.
func LoadWAV(path string) (*audiopool.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode: %s: %w", path, err)
	}
	if !d.WasPCMAccessed() {
		return nil, fmt.Errorf("decode: %s: not a valid PCM WAV file", path)
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	bitDepth := int(d.BitDepth)
	maxVal := float64(int64(1) << uint(bitDepth-1))

	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float32(math.Max(-1, math.Min(1, float64(v)/maxVal)))
	}

	return &audiopool.Sample{
		Data:       data,
		Channels:   channels,
		SampleRate: sampleRate,
	}, nil
}
