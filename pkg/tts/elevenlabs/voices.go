package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type Voice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// VoiceCatalog lists the voices available to an account.
type VoiceCatalog struct {
	client *apiClient
}

func NewVoiceCatalog(opts model.SpeechOptions) (*VoiceCatalog, error) {
	c, err := newAPIClient(opts)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &VoiceCatalog{client: c}, nil
}

func (v *VoiceCatalog) ListVoices(ctx context.Context) ([]Voice, error) {
	log := logging.NewLogger(ctx)

	request, err := v.client.newRequest(ctx, http.MethodGet, "/voices", nil)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	request.Header.Set("accept", "application/json")

	body, err := v.client.do(request)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	response := voicesResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	voices := response.Voices
	sort.SliceStable(voices, func(i, j int) bool {
		return strings.ToLower(voices[i].Name) < strings.ToLower(voices[j].Name)
	})
	log.Infof("elevenlabs_voices count=%d", len(voices))
	return voices, nil
}

// VoiceIDsByName indexes voices by display name. Later duplicates win.
func VoiceIDsByName(voices []Voice) map[string]string {
	ids := make(map[string]string, len(voices))
	for _, voice := range voices {
		ids[voice.Name] = voice.VoiceID
	}
	return ids
}

// VoiceMapFromNames builds a speaker voice map where each speaker was assigned a voice
// by display name, as a host picker does. Speakers with unknown voice names are left out.
func VoiceMapFromNames(voices []Voice, speakerVoiceNames map[string]string) model.VoiceMap {
	ids := VoiceIDsByName(voices)
	voiceMap := make(model.VoiceMap, len(speakerVoiceNames))
	for speaker, voiceName := range speakerVoiceNames {
		if id, ok := ids[voiceName]; ok {
			voiceMap[speaker] = id
			continue
		}
		// A raw voice id is accepted as well.
		for _, voice := range voices {
			if voice.VoiceID == voiceName {
				voiceMap[speaker] = voiceName
				break
			}
		}
	}
	return voiceMap
}
