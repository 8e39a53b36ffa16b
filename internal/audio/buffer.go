// Package audio provides audio file decoding and the in-memory buffer types
// shared by the analysis pipeline.
package audio

// Buffer holds fully decoded linear PCM audio as one sample slice per
// channel, normalized to [-1, 1]. Buffers are immutable once produced by a
// decoder; analysis code must not write into the channel slices.
type Buffer struct {
	Channels   [][]float64
	SampleRate int
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// NumSamples returns the per-channel sample count (the shortest channel
// governs, though decoders always produce equal-length channels).
func (b *Buffer) NumSamples() int {
	if len(b.Channels) == 0 {
		return 0
	}
	n := len(b.Channels[0])
	for _, ch := range b.Channels[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.NumSamples()) / float64(b.SampleRate)
}

// Left returns the first channel, or nil for an empty buffer.
func (b *Buffer) Left() []float64 {
	if len(b.Channels) == 0 {
		return nil
	}
	return b.Channels[0]
}

// Right returns the second channel. Mono buffers return the first channel so
// stereo-shaped measurements degrade to duplicated-channel behaviour.
func (b *Buffer) Right() []float64 {
	if len(b.Channels) > 1 {
		return b.Channels[1]
	}
	return b.Left()
}

// Mono returns a mixdown of all channels. A mono buffer's own channel is
// returned directly without copying.
func (b *Buffer) Mono() []float64 {
	if len(b.Channels) == 0 {
		return nil
	}
	if len(b.Channels) == 1 {
		return b.Channels[0]
	}
	n := b.NumSamples()
	mix := make([]float64, n)
	scale := 1.0 / float64(len(b.Channels))
	for _, ch := range b.Channels {
		for i := 0; i < n; i++ {
			mix[i] += ch[i] * scale
		}
	}
	return mix
}

// Clone returns a deep copy. Callers that hand a buffer to the analysis
// orchestrator give up ownership of it, so a caller that needs the samples
// again must clone first.
func (b *Buffer) Clone() *Buffer {
	channels := make([][]float64, len(b.Channels))
	for i, ch := range b.Channels {
		channels[i] = make([]float64, len(ch))
		copy(channels[i], ch)
	}
	return &Buffer{Channels: channels, SampleRate: b.SampleRate}
}

// FileInfo describes a decoded input file. SampleRate is the rate recovered
// from the container header where the sniffer understands the format,
// otherwise the decoder-reported rate.
type FileInfo struct {
	Name       string
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	Format     string // container tag: "WAV", "FLAC", "MP3", "OGG"
}
