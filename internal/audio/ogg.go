package audio

import (
	"bytes"
	"fmt"

	"github.com/jfreymuth/oggvorbis"
)

// oggDecoder decodes Ogg Vorbis via jfreymuth/oggvorbis.
type oggDecoder struct{}

func (d *oggDecoder) Extensions() []string { return []string{"ogg", "oga"} }
func (d *oggDecoder) Format() string       { return "OGG" }

func (d *oggDecoder) Decode(data []byte) (*Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding Ogg Vorbis stream: %w", err)
	}

	interleaved := make([]float64, len(samples))
	for i, s := range samples {
		interleaved[i] = float64(s)
	}

	return &Buffer{
		Channels:   deinterleave(interleaved, format.Channels),
		SampleRate: format.SampleRate,
	}, nil
}
