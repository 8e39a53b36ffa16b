package audio

import (
	"bytes"
	"fmt"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavDecoder decodes RIFF/WAVE PCM via go-audio.
type wavDecoder struct{}

func (d *wavDecoder) Extensions() []string { return []string{"wav", "wave"} }
func (d *wavDecoder) Format() string       { return "WAV" }

func (d *wavDecoder) Decode(data []byte) (*Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	return pcmToBuffer(pcm, bitDepth)
}

// pcmToBuffer normalizes a go-audio integer PCM buffer to float channels.
func pcmToBuffer(pcm *gaudio.IntBuffer, bitDepth int) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return nil, fmt.Errorf("missing format information")
	}

	scale := float64(int64(1) << uint(bitDepth-1))
	samples := make([]float64, len(pcm.Data))
	for i, s := range pcm.Data {
		samples[i] = float64(s) / scale
	}

	return &Buffer{
		Channels:   deinterleave(samples, pcm.Format.NumChannels),
		SampleRate: pcm.Format.SampleRate,
	}, nil
}
