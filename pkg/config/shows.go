package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const ShowsFileVersion = 1

var ErrShowNotFound = errors.New("show not found")

type ShowsFile struct {
	Version int                 `yaml:"version"`
	Shows   []model.ShowProfile `yaml:"shows"`
}

func LoadShows(path string) ([]model.ShowProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	var file ShowsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, utils.WrapIfNotNil(err, path)
	}
	if file.Version != ShowsFileVersion {
		return nil, utils.WrapIfNotNil(fmt.Errorf("unsupported shows file version %d (want %d)", file.Version, ShowsFileVersion), path)
	}

	for i, show := range file.Shows {
		if strings.TrimSpace(show.Name) == "" {
			return nil, utils.WrapIfNotNil(fmt.Errorf("show %d has no name", i+1), path)
		}
	}
	return file.Shows, nil
}

func SaveShows(path string, shows []model.ShowProfile) error {
	data, err := yaml.Marshal(ShowsFile{Version: ShowsFileVersion, Shows: shows})
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(os.WriteFile(path, data, 0o644))
}

// FindShow matches name case-insensitively.
func FindShow(shows []model.ShowProfile, name string) (model.ShowProfile, error) {
	for _, show := range shows {
		if strings.EqualFold(strings.TrimSpace(show.Name), strings.TrimSpace(name)) {
			return show, nil
		}
	}
	return model.ShowProfile{}, fmt.Errorf("%w: %s", ErrShowNotFound, name)
}
