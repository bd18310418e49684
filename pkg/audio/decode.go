package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const int16Scale = 32768

// Decode turns encoded bytes into a clip.
func Decode(data []byte, format Format) (*Clip, error) {
	if len(data) == 0 {
		return nil, errors.New("audio data is empty")
	}

	switch format.Encoding {
	case EncodingMP3:
		return decodeMP3(data)
	case EncodingWAV:
		return decodeWAV(data)
	case EncodingPCM16:
		return decodePCM16(data, format.SampleRate, format.Channels)
	default:
		return nil, fmt.Errorf("unsupported audio encoding %q", format.Encoding)
	}
}

// DecodeAny sniffs the container before decoding.
func DecodeAny(data []byte) (*Clip, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// go-mp3 always produces 16-bit little endian stereo.
func decodeMP3(data []byte) (*Clip, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, err
	}
	return decodePCM16(pcm, decoder.SampleRate(), 2)
}

func decodeWAV(data []byte) (*Clip, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buffer == nil || buffer.Format == nil {
		return nil, errors.New("wav file has no format chunk")
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(math.Pow(2, float64(bitDepth-1)))

	samples := make([]float32, len(buffer.Data))
	for i, value := range buffer.Data {
		samples[i] = float32(value) / scale
	}
	return NewClip(buffer.Format.SampleRate, buffer.Format.NumChannels, samples)
}

func decodePCM16(data []byte, sampleRate int, channels int) (*Clip, error) {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	frameBytes := 2 * channels
	if frameBytes > 0 && len(data)%frameBytes != 0 {
		data = data[:len(data)-len(data)%frameBytes]
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		value := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(value) / int16Scale
	}
	return NewClip(sampleRate, channels, samples)
}

// EncodePCM16 renders a clip as 16-bit little endian PCM, clipping out of range samples.
func EncodePCM16(clip *Clip) []byte {
	out := make([]byte, len(clip.samples)*2)
	for i, sample := range clip.samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(toInt16(sample)))
	}
	return out
}

func toInt16(sample float32) int16 {
	value := math.Round(float64(sample) * int16Scale)
	if value > math.MaxInt16 {
		return math.MaxInt16
	}
	if value < math.MinInt16 {
		return math.MinInt16
	}
	return int16(value)
}
