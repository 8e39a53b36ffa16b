package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// flacDecoder decodes FLAC streams via mewkiz/flac.
type flacDecoder struct{}

func (d *flacDecoder) Extensions() []string { return []string{"flac"} }
func (d *flacDecoder) Format() string       { return "FLAC" }

func (d *flacDecoder) Decode(data []byte) (*Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing FLAC stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil {
		return nil, fmt.Errorf("missing STREAMINFO block")
	}

	channels := int(info.NChannels)
	scale := float64(int64(1) << uint(info.BitsPerSample-1))
	out := make([][]float64, channels)

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing FLAC frame: %w", err)
		}
		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				out[ch] = append(out[ch], float64(s)/scale)
			}
		}
	}

	return &Buffer{Channels: out, SampleRate: int(info.SampleRate)}, nil
}
