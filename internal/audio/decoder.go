package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Decoder turns raw container bytes into a normalized Buffer.
type Decoder interface {
	Decode(data []byte) (*Buffer, error)
	Extensions() []string
	Format() string
}

// Registry dispatches decoding by file extension.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns a registry with all built-in decoders registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(&wavDecoder{})
	r.Register(&flacDecoder{})
	r.Register(&mp3Decoder{})
	r.Register(&oggDecoder{})
	return r
}

// Register adds a decoder for all of its extensions.
func (r *Registry) Register(d Decoder) {
	for _, ext := range d.Extensions() {
		r.decoders[strings.ToLower(ext)] = d
	}
}

// Decode decodes raw file bytes and assembles the file's metadata. The
// sample rate in the returned FileInfo comes from the container header when
// the sniffer recognizes the format; the decoder-reported rate is the
// fallback (least accurate, a generic decoder may have resampled).
func (r *Registry) Decode(name string, data []byte) (*Buffer, *FileInfo, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return nil, nil, fmt.Errorf("cannot determine format of %q: no extension", name)
	}
	dec, ok := r.decoders[ext]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported audio format %q", ext)
	}

	buf, err := dec.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(name), err)
	}

	rate := buf.SampleRate
	if sniffed, ok := SniffSampleRate(data); ok {
		rate = sniffed
	}

	info := &FileInfo{
		Name:       filepath.Base(name),
		Duration:   buf.Duration(),
		SampleRate: rate,
		Channels:   buf.NumChannels(),
		Format:     dec.Format(),
	}
	return buf, info, nil
}

// deinterleave splits interleaved samples into per-channel slices.
func deinterleave(samples []float64, channels int) [][]float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = samples[i*channels+ch]
		}
	}
	return out
}
