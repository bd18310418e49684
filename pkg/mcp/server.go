// Package mcp exposes the studio as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/script"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	serverName    = "polyglot-podcast"
	serverVersion = "1.0.0"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type ToolServer struct {
	studio *studio.Studio
	mcp    *server.MCPServer
}

func NewToolServer(s *studio.Studio) *ToolServer {
	t := &ToolServer{
		studio: s,
		mcp: server.NewMCPServer(serverName, serverVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	t.registerTools()
	return t
}

func (t *ToolServer) MCPServer() *server.MCPServer {
	return t.mcp
}

func (t *ToolServer) registerTools() {
	t.mcp.AddTool(mcp.NewTool("split_script",
		mcp.WithDescription("Split a podcast script into speaker lines. Lines without a colon are ignored."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script text, one 'Speaker: text' line per utterance")),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.splitScript)

	t.mcp.AddTool(mcp.NewTool("list_voices",
		mcp.WithDescription("List the voices available to the configured speech provider account."),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.listVoices)

	t.mcp.AddTool(mcp.NewTool("render_script",
		mcp.WithDescription("Render a script to audio. Pass script text with a voice map, or the id of a stored script."),
		mcp.WithString("script", mcp.Description("Script text to render")),
		mcp.WithNumber("script_id", mcp.Description("Id of a stored script; its show's voices are used")),
		mcp.WithObject("voices", mcp.Description("Speaker name to voice id")),
	), t.renderScript)

	t.mcp.AddTool(mcp.NewTool("draft_episode",
		mcp.WithDescription("Research a topic and draft a new episode script for a stored show."),
		mcp.WithNumber("show_id", mcp.Required(), mcp.Description("Show to write for")),
		mcp.WithString("query", mcp.Description("News search query")),
		mcp.WithArray("urls", mcp.Description("Article URLs to research"), mcp.WithStringItems()),
		mcp.WithString("text", mcp.Description("Research notes to use directly")),
	), t.draftEpisode)
}

type splitResult struct {
	Utterances []model.Utterance `json:"utterances"`
	Speakers   []string          `json:"speakers"`
}

func (t *ToolServer) splitScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return structured(splitResult{
		Utterances: script.Collect(text),
		Speakers:   script.Speakers(text),
	})
}

func (t *ToolServer) listVoices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	voices, err := t.studio.ListVoices(ctx)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return mcp.NewToolResultErrorFromErr("listing voices failed", err), nil
	}
	return structured(map[string]any{"voices": voices})
}

type renderArgs struct {
	Script   string         `json:"script"`
	ScriptID uint           `json:"script_id"`
	Voices   model.VoiceMap `json:"voices"`
}

func (t *ToolServer) renderScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := logging.NewLogger(ctx)
	var args renderArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	switch {
	case args.ScriptID != 0:
		result, err := t.studio.RenderScript(ctx, args.ScriptID, args.Voices, nil)
		if err != nil {
			log.Errorf("error: %v", err)
			return mcp.NewToolResultErrorFromErr("render failed", err), nil
		}
		return structured(result)
	case strings.TrimSpace(args.Script) != "":
		result, err := t.studio.RenderText(ctx, studio.RenderRequest{Script: args.Script, Voices: args.Voices}, nil)
		if err != nil {
			log.Errorf("error: %v", err)
			return mcp.NewToolResultErrorFromErr("render failed", err), nil
		}
		return structured(result)
	default:
		return mcp.NewToolResultError("either script or script_id is required"), nil
	}
}

type draftArgs struct {
	ShowID uint     `json:"show_id"`
	Query  string   `json:"query"`
	URLs   []string `json:"urls"`
	Text   string   `json:"text"`
}

func (t *ToolServer) draftEpisode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args draftArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	saved, err := t.studio.DraftEpisode(ctx, studio.DraftRequest{
		ShowID: args.ShowID,
		URLs:   args.URLs,
		Query:  args.Query,
		Text:   args.Text,
	})
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return mcp.NewToolResultErrorFromErr("draft failed", err), nil
	}
	return structured(saved)
}

func structured(value any) (*mcp.CallToolResult, error) {
	text, err := json.Marshal(value)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return mcp.NewToolResultStructured(value, string(text)), nil
}

// Serve blocks until ctx is done. stdio speaks on the process streams; http serves the
// streamable HTTP transport on addr.
func (t *ToolServer) Serve(ctx context.Context, transport string, addr string) error {
	log := logging.NewLogger(ctx)
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "", TransportStdio:
		err := server.NewStdioServer(t.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("error: %v", err)
			return utils.WrapIfNotNil(err)
		}
		return nil
	case TransportHTTP:
		httpServer := server.NewStreamableHTTPServer(t.mcp)
		errCh := make(chan error, 1)
		go func() {
			log.Infof("mcp listening addr=%s", addr)
			errCh <- httpServer.Start(addr)
		}()
		select {
		case err := <-errCh:
			return utils.WrapIfNotNil(err)
		case <-ctx.Done():
			return utils.WrapIfNotNil(httpServer.Shutdown(context.WithoutCancel(ctx)))
		}
	default:
		return utils.WrapIfNotNil(fmt.Errorf("unknown mcp transport %q", transport))
	}
}
