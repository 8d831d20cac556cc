// Package wav decodes RIFF/WAV recordings into the mono 16 kHz float32
// samples the recogniser consumes. Only 16-bit PCM is accepted; anything
// else needs resampling before it reaches elocute.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/elocute/elocute/pkg/provider/asr"
)

// Decode reads a WAV stream and returns normalized float32 samples in
// [-1.0, 1.0]. The stream must be 16-bit PCM, mono, at [asr.SampleRate].
func Decode(r io.ReadSeeker) ([]float32, error) {
	if err := readTag(r, "RIFF"); err != nil {
		return nil, err
	}
	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return nil, fmt.Errorf("wav: read file size: %w", err)
	}
	if err := readTag(r, "WAVE"); err != nil {
		return nil, err
	}

	var (
		fmtSeen bool
		samples []float32
	)
	for samples == nil {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("wav: read chunk id: %w", err)
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, fmt.Errorf("wav: read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := readFormat(r, chunkSize); err != nil {
				return nil, err
			}
			fmtSeen = true
		case "data":
			if !fmtSeen {
				return nil, errors.New("wav: data chunk before fmt chunk")
			}
			pcm := make([]int16, int(chunkSize)/2)
			if err := binary.Read(r, binary.LittleEndian, pcm); err != nil {
				return nil, fmt.Errorf("wav: read pcm data: %w", err)
			}
			samples = make([]float32, len(pcm))
			for i, s := range pcm {
				samples[i] = float32(s) / 32768.0
			}
		default:
			// Unknown chunk; skip it, padded to an even boundary.
			skip := int64(chunkSize)
			if chunkSize%2 != 0 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("wav: skip chunk %q: %w", chunkID, err)
			}
		}
	}

	if samples == nil {
		return nil, errors.New("wav: missing data chunk")
	}
	return samples, nil
}

// DecodeFile is a convenience wrapper around [Decode] for a file path.
func DecodeFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: open %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

func readTag(r io.Reader, want string) error {
	var tag [4]byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return fmt.Errorf("wav: read %s tag: %w", want, err)
	}
	if string(tag[:]) != want {
		return fmt.Errorf("wav: missing %s tag", want)
	}
	return nil
}

func readFormat(r io.ReadSeeker, size uint32) error {
	var hdr struct {
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("wav: read fmt chunk: %w", err)
	}
	if hdr.AudioFormat != 1 {
		return fmt.Errorf("wav: unsupported audio format %d, want PCM", hdr.AudioFormat)
	}
	if hdr.NumChannels != 1 {
		return fmt.Errorf("wav: unsupported channel count %d, want mono", hdr.NumChannels)
	}
	if hdr.SampleRate != asr.SampleRate {
		return fmt.Errorf("wav: unsupported sample rate %d, want %d", hdr.SampleRate, asr.SampleRate)
	}
	if hdr.BitsPerSample != 16 {
		return fmt.Errorf("wav: unsupported bit depth %d, want 16", hdr.BitsPerSample)
	}
	// Extension bytes past the 16-byte PCM header are ignored.
	if size > 16 {
		if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
			return fmt.Errorf("wav: skip fmt extension: %w", err)
		}
	}
	return nil
}
