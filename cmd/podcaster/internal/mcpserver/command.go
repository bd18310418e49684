package mcpserver

import (
	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/mcp"
)

func NewMCPCommand(globals *internal.Globals) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the studio as MCP tools",
		Long: `Serve exposes split_script, list_voices, render_script and draft_episode to MCP
clients. The stdio transport logs to stderr so stdout stays a clean protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}

			s, closeStudio, err := internal.BuildStudio(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer closeStudio()

			return mcp.NewToolServer(s).Serve(cmd.Context(), transport, addr)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", mcp.TransportStdio, "stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (default PODCAST_LISTEN_ADDR)")
	return cmd
}
