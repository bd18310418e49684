package voices

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
)

func NewVoicesCommand(globals *internal.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the ElevenLabs voices on this account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			catalog, err := internal.VoiceCatalog(cfg)
			if err != nil {
				return err
			}
			if catalog == nil {
				return errors.New("ELEVEN_LABS_API_KEY is not set")
			}

			voices, err := catalog.ListVoices(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVOICE ID\tCATEGORY")
			for _, voice := range voices {
				fmt.Fprintf(w, "%s\t%s\t%s\n", voice.Name, voice.VoiceID, voice.Category)
			}
			return w.Flush()
		},
	}
}
