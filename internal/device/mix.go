package device

// downMixFrame converts one interleaved hardware-format frame of hwChannels
// to the engine's native stereo frame: the single channel is duplicated
// into L and R when hwChannels == 1, or the first two channels pass through
// unchanged when hwChannels >= 2. dst must be 2 floats.
func downMixFrame(src []float32, hwChannels int, dst []float32) {
	switch {
	case hwChannels == 1:
		dst[0] = src[0]
		dst[1] = src[0]
	case hwChannels >= 2:
		dst[0] = src[0]
		dst[1] = src[1]
	}
}

// upMixFrame converts one native stereo frame to hwChannels for device
// output: averages L+R into the single channel when hwChannels == 1, or
// writes L/R into the first two channels (any channels beyond 2 are left
// silent) when hwChannels >= 2.
func upMixFrame(src []float32, dst []float32, hwChannels int) {
	switch {
	case hwChannels == 1:
		dst[0] = (src[0] + src[1]) * 0.5
	case hwChannels >= 2:
		dst[0] = src[0]
		dst[1] = src[1]
		for ch := 2; ch < hwChannels; ch++ {
			dst[ch] = 0
		}
	}
}

// DownMix converts an interleaved buffer of hwChannels-wide frames to an
// interleaved stereo buffer: a mono capture is duplicated into L and R,
// and a capture of two or more channels keeps only its first two.
func DownMix(src []float32, hwChannels int, dst []float32) {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		downMixFrame(src[i*hwChannels:i*hwChannels+hwChannels], hwChannels, dst[i*2:i*2+2])
	}
}

// UpMix converts an interleaved stereo buffer to hwChannels-wide frames
// for device playback: mono devices get (L+R)/2, multi-channel devices get
// L/R written into the first two channels and silence elsewhere.
func UpMix(src []float32, hwChannels int, dst []float32) {
	frames := len(src) / 2
	for i := 0; i < frames; i++ {
		upMixFrame(src[i*2:i*2+2], dst[i*hwChannels:i*hwChannels+hwChannels], hwChannels)
	}
}
