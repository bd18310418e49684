package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
)

const testRate = 8000

func constantSynth() tts.Synthesizer {
	return tts.SynthesizerFunc(func(ctx context.Context, text string, voiceID string) (*tts.Audio, error) {
		samples := make([]float32, 160)
		for i := range samples {
			samples[i] = 0.3
		}
		clip, err := audio.NewClip(testRate, 1, samples)
		if err != nil {
			return nil, err
		}
		return &tts.Audio{
			Data:   audio.EncodePCM16(clip),
			Format: audio.Format{Encoding: audio.EncodingPCM16, SampleRate: testRate, Channels: 1},
		}, nil
	})
}

type ServerSuite struct {
	suite.Suite
	store  *store.Store
	server *Server
}

func TestServerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	ctx := context.Background()
	st, err := store.Open(ctx, fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()))
	s.Require().NoError(err)
	s.store = st

	st2, err := studio.New(studio.Deps{
		Store:       st,
		Synthesizer: constantSynth(),
		PipelineOptions: []pipeline.Option{
			pipeline.WithEncoder(audio.WAVEncoder{}),
			pipeline.WithOutputDir(s.T().TempDir()),
		},
	})
	s.Require().NoError(err)
	s.server = NewServer(st2)
}

func (s *ServerSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *ServerSuite) do(method string, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		bits, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(bits)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) createShow() store.Show {
	rec := s.do(http.MethodPost, "/shows", ShowRequest{
		Name: "Morning Brief",
		Hosts: []model.Host{
			{Name: "Ana", Voice: "v1"},
			{Name: "Ben", Voice: "v2"},
			{Name: "Cara", Voice: "v3"},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var show store.Show
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &show))
	return show
}

func (s *ServerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "healthy")
}

func (s *ServerSuite) TestShowLifecycle() {
	show := s.createShow()
	s.Len(show.Hosts, 3)

	rec := s.do(http.MethodPost, "/shows", ShowRequest{Name: "morning brief"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/shows/%d", show.ID), ShowRequest{Name: "Evening", Hosts: []model.Host{{Name: "Dee", Voice: "v4"}}})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"Dee"`)

	rec = s.do(http.MethodGet, "/shows", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Evening")

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/shows/99", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/shows/abc", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/shows", ShowRequest{}).Code)
}

func (s *ServerSuite) TestRenderStoredScript() {
	show := s.createShow()
	stored, err := s.store.GetShow(context.Background(), show.ID)
	s.Require().NoError(err)
	script, err := s.store.SaveDraft(context.Background(), stored, store.Draft{Content: "Ana: Hi\nBen: Hey"})
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, fmt.Sprintf("/scripts/%d/audio", script.ID), nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/scripts/%d/render", script.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var result pipeline.Result
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(model.RunStateDone, result.State)
	s.Equal(2, result.Synthesized)

	rec = s.do(http.MethodGet, fmt.Sprintf("/scripts/%d/audio", script.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("audio/wav", rec.Header().Get("Content-Type"))
	s.Equal(result.RunID, rec.Header().Get("X-Run-Id"))
	s.Equal("RIFF", rec.Body.String()[:4])

	rec = s.do(http.MethodGet, fmt.Sprintf("/shows/%d/scripts", show.ID), nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"audio_format":"wav"`)
}

func (s *ServerSuite) TestRenderStoredScriptWithoutAudio() {
	script, err := s.store.SaveDraft(context.Background(), nil, store.Draft{Content: "Zed: Nobody maps me"})
	s.Require().NoError(err)

	rec := s.do(http.MethodPost, fmt.Sprintf("/scripts/%d/render", script.ID), nil)
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), "no audio produced")
	s.Contains(rec.Body.String(), `"outcome":"no_audio_produced"`)

	rec = s.do(http.MethodGet, fmt.Sprintf("/scripts/%d/audio", script.ID), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestRenderAdHocJSON() {
	rec := s.do(http.MethodPost, "/render", RenderRequest{Script: "Ana: Hello\nZed: unknown", Voices: model.VoiceMap{"Ana": "v1"}})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("1", rec.Header().Get("X-Line-Warnings"))
	s.Contains(rec.Header().Get("X-Line-Warnings-Detail"), "Zed")
	s.Equal("RIFF", rec.Body.String()[:4])
}

func (s *ServerSuite) TestRenderAdHocNoSpeakerLines() {
	rec := s.do(http.MethodPost, "/render", RenderRequest{Script: "just narration"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), `"state":"failed"`)
}

func (s *ServerSuite) introWAV() []byte {
	introClip, err := audio.NewClip(testRate, 1, make([]float32, 80))
	s.Require().NoError(err)
	track, err := audio.Export(context.Background(), introClip, audio.WAVEncoder{}, s.T().TempDir())
	s.Require().NoError(err)
	introBits, err := track.ReadAll()
	s.Require().NoError(err)
	return introBits
}

func (s *ServerSuite) postRenderForm(intro []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	s.Require().NoError(form.WriteField("script", "Ana: Hello"))
	s.Require().NoError(form.WriteField("voices", `{"Ana":"v1"}`))
	part, err := form.CreateFormFile("intro", "intro.wav")
	s.Require().NoError(err)
	_, err = part.Write(intro)
	s.Require().NoError(err)
	s.Require().NoError(form.Close())

	req := httptest.NewRequest(http.MethodPost, "/render", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) TestRenderAdHocMultipartWithIntro() {
	rec := s.postRenderForm(s.introWAV())

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("0", rec.Header().Get("X-Line-Warnings"))
	s.Equal("[]", rec.Header().Get("X-Line-Warnings-Detail"))
}

func (s *ServerSuite) TestRenderAdHocRejectsOversizedIntro() {
	intro := s.introWAV()

	s.server.MaxUploadBytes = int64(len(intro)) - 1
	rec := s.postRenderForm(intro)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "upload too large")

	s.server.MaxUploadBytes = int64(len(intro))
	rec = s.postRenderForm(intro)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServerSuite) TestVoicesNotConfigured() {
	rec := s.do(http.MethodGet, "/voices", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *ServerSuite) TestDraftWithoutWriter() {
	show := s.createShow()
	rec := s.do(http.MethodPost, fmt.Sprintf("/shows/%d/episodes", show.ID), EpisodeRequest{Text: "notes"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}
