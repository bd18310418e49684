package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
)

type ShowRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Hosts       []model.Host `json:"hosts" binding:"max=8"`
}

func (r ShowRequest) profile() model.ShowProfile {
	return model.ShowProfile{Name: r.Name, Description: r.Description, Hosts: r.Hosts}
}

func (s *Server) listShows(c *gin.Context) {
	shows, err := s.Studio.Store().ListShows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shows)
}

func (s *Server) createShow(c *gin.Context) {
	var req ShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	show, err := s.Studio.Store().CreateShow(c.Request.Context(), req.profile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, show)
}

func (s *Server) getShow(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	show, err := s.Studio.Store().GetShow(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, show)
}

func (s *Server) updateShow(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	show, err := s.Studio.Store().UpdateShow(c.Request.Context(), id, req.profile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, show)
}

func (s *Server) listShowScripts(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := s.Studio.Store().GetShow(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	scripts, err := s.Studio.Store().ListScripts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scripts)
}

type EpisodeRequest struct {
	URLs  []string `json:"urls"`
	Query string   `json:"query"`
	Text  string   `json:"text"`
}

func (s *Server) draftEpisode(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req EpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	script, err := s.Studio.DraftEpisode(c.Request.Context(), studio.DraftRequest{
		ShowID: id,
		URLs:   req.URLs,
		Query:  req.Query,
		Text:   req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, script)
}

func (s *Server) listVoices(c *gin.Context) {
	voices, err := s.Studio.ListVoices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voices)
}
