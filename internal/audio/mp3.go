package audio

import (
	"bytes"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Decoder decodes MPEG audio via go-mp3, which always emits 16-bit
// little-endian stereo regardless of the source channel layout.
type mp3Decoder struct{}

func (d *mp3Decoder) Extensions() []string { return []string{"mp3"} }
func (d *mp3Decoder) Format() string       { return "MP3" }

func (d *mp3Decoder) Decode(data []byte) (*Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing MP3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3 frames: %w", err)
	}

	const scale = 32768.0
	frames := len(raw) / 4 // 2 channels x 2 bytes
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		left[i] = float64(l) / scale
		right[i] = float64(r) / scale
	}

	return &Buffer{
		Channels:   [][]float64{left, right},
		SampleRate: dec.SampleRate(),
	}, nil
}
