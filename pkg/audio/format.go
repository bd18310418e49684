package audio

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"
)

type Encoding string

const (
	EncodingMP3   Encoding = "mp3"
	EncodingWAV   Encoding = "wav"
	EncodingPCM16 Encoding = "pcm_s16le"
)

// Format describes encoded audio bytes. SampleRate and Channels are only
// required for raw PCM.
type Format struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
}

func (f Format) Extension() string {
	switch f.Encoding {
	case EncodingPCM16:
		return "pcm"
	default:
		return string(f.Encoding)
	}
}

func (f Format) MIMEType() string {
	switch f.Encoding {
	case EncodingMP3:
		return "audio/mpeg"
	case EncodingWAV:
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

var ErrUnknownFormat = errors.New("unrecognized audio format")

// Sniff detects the container of uploaded audio such as intro and outro clips.
func Sniff(data []byte) (Format, error) {
	if len(data) == 0 {
		return Format{}, errors.New("audio data is empty")
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return Format{}, err
	}

	switch kind.Extension {
	case "mp3":
		return Format{Encoding: EncodingMP3}, nil
	case "wav":
		return Format{Encoding: EncodingWAV}, nil
	}

	if looksLikeMPEGFrame(data) {
		return Format{Encoding: EncodingMP3}, nil
	}
	if kind == filetype.Unknown {
		return Format{}, ErrUnknownFormat
	}
	return Format{}, fmt.Errorf("%w: %s", ErrUnknownFormat, kind.MIME.Value)
}

// looksLikeMPEGFrame catches MPEG-1/2 layer III frame headers the sniffer does not list.
func looksLikeMPEGFrame(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == 0xFF && data[1]&0xE6 == 0xE2
}
