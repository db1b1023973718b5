// Package device wires the engine's block renderer to a real soundcard via
// malgo, the same cross-platform miniaudio binding used for capture-only
// sources elsewhere in the ecosystem, here configured in full duplex so the
// engine can both monitor an audio input node and drive playback.
package device

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// RenderFunc renders one duplex audio block in the engine's native stereo
// layout: input and output are each 2*frameCount interleaved floats
// regardless of the physical device's channel count. The device never
// allocates on this callback's behalf; RenderFunc must not allocate either.
type RenderFunc func(input, output []float32)

// Config describes the physical device to open. Channels is the channel
// count requested from the hardware for both capture and playback; the
// engine side of the callback is always native stereo, reconciled with the
// hardware layout by up/down-mix.
type Config struct {
	SampleRate int
	Channels   int
	DeviceName string // empty selects the platform default device
}

// Device owns a live malgo duplex stream, reconciling its negotiated
// hardware channel count with the engine's native stereo layout.
type Device struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	render RenderFunc

	sampleRate  int
	channels    int // engine-native channel count, always 2
	hwChannels  int // negotiated hardware channel count

	// scratch buffers reused across callbacks, sized on the first
	// invocation and regrown only when a callback delivers more frames
	// than they hold
	nativeIn  []float32
	nativeOut []float32
	hwIn      []float32
	hwOut     []float32

	underruns atomic.Uint64
	running   atomic.Bool
}

func backendForPlatform() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// Open initializes a duplex malgo stream at cfg's sample rate and channel
// count. render is invoked on the audio thread for every block; it must
// complete within one block period or the device will underrun.
func Open(cfg Config, render RenderFunc) (*Device, error) {
	backend := backendForPlatform()
	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("device: init context: %w", err)
	}

	d := &Device{
		ctx:        ctx,
		render:     render,
		sampleRate: cfg.SampleRate,
		channels:   2,
		hwChannels: cfg.Channels,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.DeviceName != "" {
		if id, ok := d.findPlaybackDevice(cfg.DeviceName); ok {
			deviceConfig.Playback.DeviceID = id.Pointer()
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: d.onData,
		Stop: d.onStop,
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return nil, fmt.Errorf("device: init device: %w", err)
	}
	d.device = dev
	return d, nil
}

func (d *Device) findPlaybackDevice(name string) (malgo.DeviceID, bool) {
	infos, err := d.ctx.Devices(malgo.Playback)
	if err != nil {
		return malgo.DeviceID{}, false
	}
	for i := range infos {
		if infos[i].Name() == name {
			return infos[i].ID, true
		}
	}
	return malgo.DeviceID{}, false
}

// onData is the malgo duplex callback: pInputSamples holds captured frames,
// pOutputSample is filled with frames to play, both interleaved float32 at
// d.hwChannels per spec's negotiated-channel-count device contract. The
// engine itself only ever sees native stereo; onData down-mixes capture
// into stereo before calling render and up-mixes the rendered stereo block
// back out to the hardware's channel count.
func (d *Device) onData(pOutputSample, pInputSamples []byte, frameCount uint32) {
	frames := int(frameCount)
	hwN := frames * d.hwChannels
	nativeN := frames * d.channels

	if cap(d.nativeIn) < nativeN {
		d.nativeIn = make([]float32, nativeN)
		d.nativeOut = make([]float32, nativeN)
	}
	if cap(d.hwIn) < hwN {
		d.hwIn = make([]float32, hwN)
		d.hwOut = make([]float32, hwN)
	}
	in := d.nativeIn[:nativeN]
	out := d.nativeOut[:nativeN]
	hwIn := d.hwIn[:hwN]
	hwOut := d.hwOut[:hwN]

	bytesToFloat32(pInputSamples, hwIn)
	DownMix(hwIn, d.hwChannels, in)

	d.render(in, out)

	UpMix(out, d.hwChannels, hwOut)
	float32ToBytes(hwOut, pOutputSample)
}

func (d *Device) onStop() {
	d.running.Store(false)
}

// Start begins streaming; render will be called from malgo's audio thread
// until Close is called.
func (d *Device) Start() error {
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("device: start: %w", err)
	}
	d.running.Store(true)
	return nil
}

// Close stops the stream and releases the device and context.
func (d *Device) Close() error {
	if d.device != nil {
		d.device.Uninit()
	}
	if d.ctx != nil {
		return d.ctx.Uninit()
	}
	return nil
}

// Underruns returns the device's underrun counter. Nothing in this package
// increments the counter, so the value is always zero.
func (d *Device) Underruns() uint64 { return d.underruns.Load() }

func bytesToFloat32(src []byte, dst []float32) {
	n := len(dst)
	for i := 0; i < n; i++ {
		o := i * 4
		if o+4 > len(src) {
			dst[i] = 0
			continue
		}
		bits := uint32(src[o]) | uint32(src[o+1])<<8 | uint32(src[o+2])<<16 | uint32(src[o+3])<<24
		dst[i] = math.Float32frombits(bits)
	}
}

func float32ToBytes(src []float32, dst []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		bits := math.Float32bits(src[i])
		o := i * 4
		if o+4 > len(dst) {
			return
		}
		dst[o] = byte(bits)
		dst[o+1] = byte(bits >> 8)
		dst[o+2] = byte(bits >> 16)
		dst[o+3] = byte(bits >> 24)
	}
}
