package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
)

// silenceFloorDBFS stands in for -Inf so track metadata stays JSON encodable.
const silenceFloorDBFS = -120.0

// GeneratedTrack is a stitched clip that has been written to disk. The caller owns
// the file at Path and is responsible for removing it.
type GeneratedTrack struct {
	ID           string        `json:"id"`
	Path         string        `json:"path"`
	Format       Format        `json:"format"`
	Duration     time.Duration `json:"duration"`
	SampleRate   int           `json:"sample_rate"`
	Channels     int           `json:"channels"`
	LoudnessDBFS float64       `json:"loudness_dbfs"`
	Size         int64         `json:"size"`
	Clip         *Clip         `json:"-"`
}

func (t *GeneratedTrack) ReadAll() ([]byte, error) {
	return os.ReadFile(t.Path)
}

func (t *GeneratedTrack) Remove() error {
	err := os.Remove(t.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Export encodes clip into a new temporary file under dir (os.TempDir when empty).
// A partially written file is removed on failure.
func Export(ctx context.Context, clip *Clip, encoder Encoder, dir string) (*GeneratedTrack, error) {
	if clip == nil {
		return nil, errors.New("nothing to export")
	}

	id := uuid.NewString()
	format := encoder.Format()
	file, err := os.CreateTemp(dir, "podcast-"+id+"-*."+format.Extension())
	if err != nil {
		return nil, err
	}
	path := file.Name()

	err = encoder.Encode(ctx, clip, file)
	if err == nil {
		err = file.Sync()
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	loudness := clip.DBFS()
	if math.IsInf(loudness, -1) {
		loudness = silenceFloorDBFS
	}

	return &GeneratedTrack{
		ID:           id,
		Path:         path,
		Format:       format,
		Duration:     clip.Duration(),
		SampleRate:   clip.sampleRate,
		Channels:     clip.channels,
		LoudnessDBFS: loudness,
		Size:         info.Size(),
		Clip:         clip,
	}, nil
}
