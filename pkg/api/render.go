package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
)

type RenderRequest struct {
	Script string         `json:"script" binding:"required"`
	Voices model.VoiceMap `json:"voices"`
	ShowID uint           `json:"show_id"`
}

// renderText accepts JSON, or a multipart form with script, voices (JSON) and optional
// intro and outro files. The encoded track is returned as the response body.
func (s *Server) renderText(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.NewLogger(ctx)

	req, intro, outro, err := s.bindRender(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voices := model.VoiceMap{}
	if req.ShowID != 0 {
		voices, err = s.Studio.ShowVoices(ctx, req.ShowID)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	for speaker, voice := range req.Voices {
		voices[speaker] = voice
	}

	result, err := s.Studio.RenderText(ctx, studio.RenderRequest{
		Script: req.Script,
		Voices: voices,
		Intro:  intro,
		Outro:  outro,
	}, nil)
	if err != nil {
		if result != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
			return
		}
		respondError(c, err)
		return
	}
	if result.Track == nil {
		c.JSON(http.StatusOK, result)
		return
	}
	defer func() {
		if removeErr := result.Track.Remove(); removeErr != nil {
			log.Warnf("could not remove track path=%s err=%v", result.Track.Path, removeErr)
		}
	}()

	data, err := result.Track.ReadAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="podcast-%s.%s"`, result.RunID, result.Track.Format.Extension()))
	c.Header("X-Run-Id", result.RunID)
	c.Header("X-Line-Warnings", strconv.Itoa(len(result.Warnings)))
	if warnings, marshalErr := json.Marshal(result.Warnings); marshalErr != nil {
		log.Errorf("error: %v", marshalErr)
	} else {
		c.Header("X-Line-Warnings-Detail", string(warnings))
	}
	c.Data(http.StatusOK, result.Track.Format.MIMEType(), data)
}

func (s *Server) bindRender(c *gin.Context) (RenderRequest, *audio.Clip, *audio.Clip, error) {
	var req RenderRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		err := c.ShouldBindJSON(&req)
		return req, nil, nil, err
	}

	req.Script = c.PostForm("script")
	if strings.TrimSpace(req.Script) == "" {
		return req, nil, nil, fmt.Errorf("script is required")
	}
	if raw := c.PostForm("voices"); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &req.Voices); err != nil {
			return req, nil, nil, fmt.Errorf("voices: %w", err)
		}
	}
	if raw := c.PostForm("show_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return req, nil, nil, fmt.Errorf("show_id: %w", err)
		}
		req.ShowID = uint(id)
	}

	intro, err := s.formClip(c, "intro")
	if err != nil {
		return req, nil, nil, err
	}
	outro, err := s.formClip(c, "outro")
	if err != nil {
		return req, nil, nil, err
	}
	return req, intro, outro, nil
}

func (s *Server) formClip(c *gin.Context, field string) (*audio.Clip, error) {
	header, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	data, err := readUpload(header, s.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	clip, err := audio.DecodeAny(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return clip, nil
}

func readUpload(header *multipart.FileHeader, limit int64) ([]byte, error) {
	if header.Size > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errUploadTooLarge, header.Size, limit)
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", errUploadTooLarge, limit)
	}
	return data, nil
}
