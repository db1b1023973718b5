// Package audiodiag analyses rendered audio buffers for clipping, DC
// offset, and invalid samples, and renders them for inspection. The engine
// runs it once per finished recording, when the stop command is applied
// inside Engine.Process, rather than per block.
package audiodiag

import (
	"fmt"
	"math"
	"strings"
)

// Analyzer holds the thresholds a Analyze pass checks a buffer against.
type Analyzer struct {
	ClippingThreshold float32
	DCThreshold       float32
	SilenceThreshold  float32
}

// NewAnalyzer returns an Analyzer with the defaults used by Analyze.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ClippingThreshold: 0.99,
		DCThreshold:       0.01,
		SilenceThreshold:  0.0001,
	}
}

// Result is one buffer's analysis.
type Result struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
}

// Analyze scans buffer once, computing peak, RMS, DC offset, clipping,
// silence, and NaN stats.
func (a *Analyzer) Analyze(buffer []float32) Result {
	var result Result
	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares, dcSum float64
	var lastSample float32
	validSamples := 0

	for i, sample := range buffer {
		if math.IsNaN(float64(sample)) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		absSample := sample
		if absSample < 0 {
			absSample = -absSample
		}
		if absSample > result.Peak {
			result.Peak = absSample
		}
		if absSample >= a.ClippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += float64(sample)
		sumSquares += float64(sample) * float64(sample)
		dcSum += float64(absSample)
		validSamples++

		if i > 0 && ((lastSample < 0 && sample >= 0) || (lastSample >= 0 && sample < 0)) {
			result.ZeroCrossings++
		}
		lastSample = sample
	}

	if validSamples > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(validSamples)))
		result.DC = float32(sum / float64(validSamples))
	}
	result.Silent = result.RMS < a.SilenceThreshold

	return result
}

var defaultAnalyzer = NewAnalyzer()

// Analyze runs the default Analyzer over buffer.
func Analyze(buffer []float32) Result {
	return defaultAnalyzer.Analyze(buffer)
}

// Check runs Analyze and reports any of clipping, NaN, DC offset beyond
// threshold, or a peak above full scale as a human-readable issue string.
func Check(buffer []float32, name string) []string {
	result := defaultAnalyzer.Analyze(buffer)

	var issues []string
	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN sample(s)", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(defaultAnalyzer.DCThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds full scale (%.3f)", name, result.Peak))
	}
	return issues
}

// Compare reports sample-by-sample differences between two buffers beyond
// tolerance, useful for A/B-ing two renders of the same graph.
func Compare(a, b []float32, tolerance float32) string {
	if len(a) != len(b) {
		return fmt.Sprintf("buffer length mismatch: %d vs %d", len(a), len(b))
	}

	var maxDiff float32
	var maxDiffIndex int
	var totalDiff float64
	var diffCount int

	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			diffCount++
			totalDiff += float64(diff)
			if diff > maxDiff {
				maxDiff = diff
				maxDiffIndex = i
			}
		}
	}

	if diffCount == 0 {
		return "buffers are identical within tolerance"
	}

	avgDiff := totalDiff / float64(diffCount)
	return fmt.Sprintf("buffer differences:\n"+
		"  samples different: %d / %d (%.1f%%)\n"+
		"  max difference: %.6f at sample %d\n"+
		"  average difference: %.6f\n"+
		"  tolerance: %.6f",
		diffCount, len(a), float64(diffCount)/float64(len(a))*100,
		maxDiff, maxDiffIndex, avgDiff, tolerance)
}

// Render draws an ASCII waveform of buffer, width characters wide.
func Render(buffer []float32, width int) string {
	if len(buffer) == 0 {
		return "empty buffer"
	}
	if width <= 0 {
		width = 80
	}

	peak := float32(0)
	for _, sample := range buffer {
		absSample := sample
		if absSample < 0 {
			absSample = -absSample
		}
		if absSample > peak {
			peak = absSample
		}
	}
	if peak == 0 {
		return "silent buffer (all zeros)"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("waveform (peak: %.3f):\n", peak))

	samplesPerChar := len(buffer) / width
	if samplesPerChar < 1 {
		samplesPerChar = 1
	}

	const height = 40
	halfHeight := height / 2

	for i := 0; i < width && i*samplesPerChar < len(buffer); i++ {
		sum := float32(0)
		count := 0
		for j := 0; j < samplesPerChar && i*samplesPerChar+j < len(buffer); j++ {
			sum += buffer[i*samplesPerChar+j]
			count++
		}
		avg := sum / float32(count)
		normalized := avg / peak
		col := int(normalized * float32(halfHeight))

		for y := halfHeight; y >= -halfHeight; y-- {
			switch {
			case y == 0:
				sb.WriteRune('-')
			case col > 0 && y > 0 && y <= col:
				sb.WriteRune('#')
			case col < 0 && y < 0 && y >= col:
				sb.WriteRune('#')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
