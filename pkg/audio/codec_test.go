package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CodecSuite struct {
	suite.Suite
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) TestPCM16RoundTrip() {
	clip, err := NewClip(24000, 1, []float32{0, 0.5, -0.5, 0.25})
	s.Require().NoError(err)

	decoded, err := Decode(EncodePCM16(clip), Format{Encoding: EncodingPCM16, SampleRate: 24000, Channels: 1})
	s.Require().NoError(err)

	s.Equal(24000, decoded.SampleRate())
	s.InDeltaSlice(clip.Samples(), decoded.Samples(), 1.0/32768)
}

func (s *CodecSuite) TestPCM16ClipsOutOfRange() {
	clip, err := NewClip(8000, 1, []float32{2, -2})
	s.Require().NoError(err)

	decoded, err := Decode(EncodePCM16(clip), Format{Encoding: EncodingPCM16, SampleRate: 8000, Channels: 1})
	s.Require().NoError(err)
	s.InDeltaSlice([]float32{32767.0 / 32768, -1}, decoded.Samples(), 1e-6)
}

func (s *CodecSuite) TestWAVRoundTripAndSniff() {
	clip := sineClip(16000, 1600, 300, 0.5)
	path := filepath.Join(s.T().TempDir(), "clip.wav")
	file, err := os.Create(path)
	s.Require().NoError(err)
	s.Require().NoError(WAVEncoder{}.Encode(context.Background(), clip, file))
	s.Require().NoError(file.Close())

	data, err := os.ReadFile(path)
	s.Require().NoError(err)

	format, err := Sniff(data)
	s.Require().NoError(err)
	s.Equal(EncodingWAV, format.Encoding)

	decoded, err := DecodeAny(data)
	s.Require().NoError(err)
	s.Equal(16000, decoded.SampleRate())
	s.Equal(1, decoded.Channels())
	s.Equal(clip.Frames(), decoded.Frames())
	s.InDeltaSlice(clip.Samples(), decoded.Samples(), 2.0/32768)
}

func (s *CodecSuite) TestSniffMP3Header() {
	format, err := Sniff([]byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 0, 0, 0})
	s.Require().NoError(err)
	s.Equal(EncodingMP3, format.Encoding)

	format, err = Sniff([]byte{0xFF, 0xF3, 0x64, 0xC4, 0x00})
	s.Require().NoError(err)
	s.Equal(EncodingMP3, format.Encoding)
}

func (s *CodecSuite) TestSniffRejectsUnknown() {
	_, err := Sniff([]byte("plain text, not audio"))
	s.ErrorIs(err, ErrUnknownFormat)

	_, err = Sniff(nil)
	s.Error(err)
}

func (s *CodecSuite) TestDecodeRejectsUnsupportedEncoding() {
	_, err := Decode([]byte{1, 2}, Format{Encoding: "flac"})
	s.Error(err)
}

func (s *CodecSuite) TestMP3EncodeArgs() {
	clip := constantClip(44100, 2, 10, 0)
	args := mp3EncodeArgs(clip, "128k")

	s.Equal([]string{
		"-hide_banner", "-loglevel", "error",
		"-f", "f32le", "-ar", "44100", "-ac", "2", "-i", "pipe:0",
		"-codec:a", "libmp3lame", "-b:a", "128k", "-f", "mp3", "pipe:1",
	}, args)
}

func (s *CodecSuite) TestMP3EncoderReportsMissingBinary() {
	encoder := NewMP3Encoder(filepath.Join(s.T().TempDir(), "no-ffmpeg-here"), "")
	var out bytes.Buffer

	err := encoder.Encode(context.Background(), constantClip(8000, 1, 8, 0.1), nopSeeker{&out})
	s.Error(err)
}

func (s *CodecSuite) TestExportWritesTempFile() {
	dir := s.T().TempDir()
	clip := sineClip(8000, 800, 200, 0.5)

	track, err := Export(context.Background(), clip, WAVEncoder{}, dir)
	s.Require().NoError(err)

	s.Equal(dir, filepath.Dir(track.Path))
	s.Equal(".wav", filepath.Ext(track.Path))
	s.Equal(clip.Duration(), track.Duration)
	s.Greater(track.Size, int64(44))

	data, err := track.ReadAll()
	s.Require().NoError(err)
	s.Equal(track.Size, int64(len(data)))

	s.Require().NoError(track.Remove())
	s.NoFileExists(track.Path)
	s.NoError(track.Remove())
}

func (s *CodecSuite) TestExportRemovesFileOnEncoderFailure() {
	dir := s.T().TempDir()

	_, err := Export(context.Background(), constantClip(8000, 1, 8, 0.1), failingEncoder{}, dir)
	s.Error(err)

	entries, readErr := os.ReadDir(dir)
	s.Require().NoError(readErr)
	s.Empty(entries)
}

func (s *CodecSuite) TestExportSilentClipHasFiniteLoudness() {
	track, err := Export(context.Background(), constantClip(8000, 1, 8, 0), WAVEncoder{}, s.T().TempDir())
	s.Require().NoError(err)
	s.Equal(silenceFloorDBFS, track.LoudnessDBFS)
}

func (s *CodecSuite) TestNewEncoder() {
	encoder, err := NewEncoder(EncodingWAV, "", "")
	s.Require().NoError(err)
	s.Equal(EncodingWAV, encoder.Format().Encoding)

	encoder, err = NewEncoder("", "ffmpeg", "192k")
	s.Require().NoError(err)
	s.Equal(EncodingMP3, encoder.Format().Encoding)

	_, err = NewEncoder(EncodingPCM16, "", "")
	s.Error(err)
}

type failingEncoder struct{}

func (failingEncoder) Format() Format {
	return Format{Encoding: EncodingWAV}
}

func (failingEncoder) Encode(_ context.Context, _ *Clip, w io.WriteSeeker) error {
	_, _ = w.Write([]byte("partial"))
	return errors.New("disk full")
}

type nopSeeker struct {
	io.Writer
}

func (nopSeeker) Seek(int64, int) (int64, error) {
	return 0, nil
}
