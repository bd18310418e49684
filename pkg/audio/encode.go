package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultMP3Bitrate = "192k"
	wavBitDepth       = 16
	wavPCMFormat      = 1
)

type Encoder interface {
	Encode(ctx context.Context, clip *Clip, w io.WriteSeeker) error
	Format() Format
}

// MP3Encoder pipes float PCM through an ffmpeg process.
type MP3Encoder struct {
	FFmpegPath string
	Bitrate    string
}

func NewMP3Encoder(ffmpegPath string, bitrate string) *MP3Encoder {
	return &MP3Encoder{FFmpegPath: ffmpegPath, Bitrate: bitrate}
}

func (e *MP3Encoder) Format() Format {
	return Format{Encoding: EncodingMP3}
}

func (e *MP3Encoder) Encode(ctx context.Context, clip *Clip, w io.WriteSeeker) error {
	ffmpeg := strings.TrimSpace(e.FFmpegPath)
	if ffmpeg == "" {
		ffmpeg = defaultFFmpegPath
	}
	bitrate := strings.TrimSpace(e.Bitrate)
	if bitrate == "" {
		bitrate = defaultMP3Bitrate
	}

	cmd := exec.CommandContext(ctx, ffmpeg, mp3EncodeArgs(clip, bitrate)...)
	cmd.Stdin = bytes.NewReader(encodeFloat32LE(clip.samples))
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			return err
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, message)
	}
	return nil
}

func mp3EncodeArgs(clip *Clip, bitrate string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "f32le",
		"-ar", strconv.Itoa(clip.sampleRate),
		"-ac", strconv.Itoa(clip.channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		"-f", "mp3",
		"pipe:1",
	}
}

func encodeFloat32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, sample := range samples {
		clamped := float32(math.Max(-1, math.Min(1, float64(sample))))
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(clamped))
	}
	return out
}

// WAVEncoder writes 16-bit PCM WAV files without external tools.
type WAVEncoder struct{}

func (WAVEncoder) Format() Format {
	return Format{Encoding: EncodingWAV}
}

func (WAVEncoder) Encode(_ context.Context, clip *Clip, w io.WriteSeeker) error {
	encoder := wav.NewEncoder(w, clip.sampleRate, wavBitDepth, clip.channels, wavPCMFormat)

	data := make([]int, len(clip.samples))
	for i, sample := range clip.samples {
		data[i] = int(toInt16(sample))
	}
	buffer := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.channels,
			SampleRate:  clip.sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	writeErr := encoder.Write(buffer)
	closeErr := encoder.Close()
	return errors.Join(writeErr, closeErr)
}

// NewEncoder picks an encoder by encoding name.
func NewEncoder(encoding Encoding, ffmpegPath string, bitrate string) (Encoder, error) {
	switch encoding {
	case EncodingMP3, "":
		return NewMP3Encoder(ffmpegPath, bitrate), nil
	case EncodingWAV:
		return WAVEncoder{}, nil
	default:
		return nil, fmt.Errorf("no encoder for %q", encoding)
	}
}
