package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

func (s *Server) getScript(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	script, err := s.Studio.Store().GetScript(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"script": script, "has_audio": script.HasAudio()})
}

type RenderScriptRequest struct {
	Voices model.VoiceMap `json:"voices"`
}

func (s *Server) renderScript(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req RenderScriptRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	result, err := s.Studio.RenderScript(c.Request.Context(), id, req.Voices, nil)
	if err != nil {
		if result != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) scriptAudio(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	script, err := s.Studio.Store().GetScript(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !script.HasAudio() {
		c.JSON(http.StatusNotFound, gin.H{"error": "script has no audio yet"})
		return
	}

	format := audio.Format{Encoding: audio.Encoding(script.AudioFormat)}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="script-%d.%s"`, script.ID, format.Extension()))
	c.Header("X-Run-Id", script.RunID)
	c.Header("X-Line-Warnings", strconv.Itoa(len(script.Warnings)))
	c.Data(http.StatusOK, format.MIMEType(), script.Audio)
}
