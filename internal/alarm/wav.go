package alarm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeWAV writes mono 16-bit PCM samples as a RIFF/WAVE stream.
func EncodeWAV(w io.Writer, samples []int16, sampleRate int) error {
	const (
		channels      = 1
		bitsPerSample = 16
		headerSize    = 36
	)
	dataSize := uint32(len(samples) * 2)
	blockAlign := uint16(channels * bitsPerSample / 8)

	hdr := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(headerSize) + dataSize,
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(channels),
		uint32(sampleRate),
		uint32(sampleRate) * uint32(blockAlign),
		blockAlign,
		uint16(bitsPerSample),
		[4]byte{'d', 'a', 't', 'a'},
		dataSize,
	}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing wav header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	return nil
}

// WAV renders a tone and returns it as a complete WAV file.
func WAV(t Tone, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, Render(t, sampleRate), sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
