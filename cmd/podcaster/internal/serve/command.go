package serve

import (
	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/api"
)

func NewServeCommand(globals *internal.Globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
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

			return api.NewServer(s).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default PODCAST_LISTEN_ADDR)")
	return cmd
}
