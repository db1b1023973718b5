// Package recording implements the armed-track recording state machine:
// accumulating interleaved float32 input into a streamed WAV file,
// generating waveform peaks incrementally, and producing the finished
// clip's audio in memory for immediate playback once finalised.
package recording

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// State is a recording session's lifecycle stage.
type State int

const (
	Idle State = iota
	Armed
	Recording
	Paused
	Finalizing
)

// WaveformPeak is one min/max pair summarising frames_per_peak frames, for
// rendering a waveform overview without re-scanning the full clip.
type WaveformPeak struct {
	Min, Max float32
}

const (
	targetPeaksPerSecond = 300
	minFramesPerPeak     = 1000
)

// Session tracks one armed-to-finalised recording.
type Session struct {
	State State

	TrackID   int
	ClipID    int
	FilePath  string
	StartTime float64

	sampleRate int
	channels   int

	file    *os.File
	encoder *wav.Encoder

	buffer            []float32
	flushIntervalFrames int
	framesWritten     int

	samplesToSkip int

	waveform        []WaveformPeak
	waveformBuffer  []float32
	framesPerPeak   int

	audioData []float32
}

// Arm prepares a session without opening the output file yet.
func Arm(trackID, clipID int, filePath string, startTime float64) *Session {
	return &Session{
		State:     Armed,
		TrackID:   trackID,
		ClipID:    clipID,
		FilePath:  filePath,
		StartTime: startTime,
	}
}

// Start opens the WAV file and transitions Armed -> Recording.
func (s *Session) Start(sampleRate, channels int, flushIntervalSeconds float64) error {
	f, err := os.Create(s.FilePath)
	if err != nil {
		return err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, sampleRate, 16, channels, 1)
	s.sampleRate = sampleRate
	s.channels = channels
	s.flushIntervalFrames = int(float64(sampleRate) * flushIntervalSeconds)

	framesPerPeak := sampleRate / targetPeaksPerSecond
	if framesPerPeak < minFramesPerPeak {
		framesPerPeak = minFramesPerPeak
	}
	s.framesPerPeak = framesPerPeak

	s.State = Recording
	return nil
}

// SkipSamples discards the next n interleaved samples delivered to
// AddSamples, used to drop stale buffer content captured before the arm
// command actually took effect.
func (s *Session) SkipSamples(n int) { s.samplesToSkip = n }

// AddSamples appends interleaved input to the pending buffer, updates the
// waveform incrementally, and flushes to disk once flushIntervalFrames
// frames have accumulated. Returns whether a flush occurred.
func (s *Session) AddSamples(samples []float32) (bool, error) {
	if s.State == Paused {
		return false, nil
	}

	if s.samplesToSkip > 0 {
		toSkip := s.samplesToSkip
		if toSkip > len(samples) {
			toSkip = len(samples)
		}
		s.samplesToSkip -= toSkip
		if toSkip == len(samples) {
			return false, nil
		}
		samples = samples[toSkip:]
	}

	s.buffer = append(s.buffer, samples...)
	s.audioData = append(s.audioData, samples...)
	s.waveformBuffer = append(s.waveformBuffer, samples...)
	s.generateWaveformPeaks()

	framesInBuffer := len(s.buffer) / s.channels
	if framesInBuffer >= s.flushIntervalFrames {
		if err := s.Flush(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *Session) generateWaveformPeaks() {
	samplesPerPeak := s.framesPerPeak * s.channels
	for len(s.waveformBuffer) >= samplesPerPeak {
		s.waveform = append(s.waveform, peakOf(s.waveformBuffer[:samplesPerPeak]))
		s.waveformBuffer = s.waveformBuffer[samplesPerPeak:]
	}
}

func peakOf(samples []float32) WaveformPeak {
	var p WaveformPeak
	for _, v := range samples {
		if v < p.Min {
			p.Min = v
		}
		if v > p.Max {
			p.Max = v
		}
	}
	return p
}

// Flush writes the pending buffer to disk as 16-bit PCM.
func (s *Session) Flush() error {
	if len(s.buffer) == 0 {
		return nil
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: s.channels, SampleRate: s.sampleRate},
		Data:           make([]int, len(s.buffer)),
		SourceBitDepth: 16,
	}
	for i, v := range s.buffer {
		buf.Data[i] = int(quantizeI16(v))
	}
	if err := s.encoder.Write(buf); err != nil {
		return err
	}
	s.framesWritten += len(s.buffer) / s.channels
	s.buffer = s.buffer[:0]
	return nil
}

// quantizeI16 converts a clamped float sample to a 16-bit PCM value,
// rounding to nearest.
func quantizeI16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	v := x * 32767
	if v >= 0 {
		return int16(v + 0.5)
	}
	return int16(v - 0.5)
}

// Duration returns the recorded duration so far, including buffered but
// unflushed frames.
func (s *Session) Duration() float64 {
	bufferedFrames := len(s.buffer) / max1(s.channels)
	total := s.framesWritten + bufferedFrames
	return float64(total) / float64(max1(s.sampleRate))
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// Pause suspends accumulation without closing the file.
func (s *Session) Pause() { s.State = Paused }

// Resume continues accumulation after Pause.
func (s *Session) Resume() { s.State = Recording }

// Finalize flushes remaining samples, closes the WAV file (patching the
// RIFF/data chunk sizes), and returns the clip's accumulated audio and
// waveform peaks. The session transitions through Finalizing and ends at
// Idle; a disk error still leaves the partial file on disk, per the
// engine's never-unwind error policy.
func (s *Session) Finalize() (path string, waveform []WaveformPeak, audioData []float32, err error) {
	s.State = Finalizing
	if err = s.Flush(); err != nil {
		return s.FilePath, s.waveform, s.audioData, err
	}
	if len(s.waveformBuffer) > 0 {
		s.waveform = append(s.waveform, peakOf(s.waveformBuffer))
	}
	if err = s.encoder.Close(); err != nil {
		return s.FilePath, s.waveform, s.audioData, err
	}
	if cerr := s.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.State = Idle
	return s.FilePath, s.waveform, s.audioData, err
}
