package shows

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
)

func NewShowsCommand(globals *internal.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shows",
		Short: "Manage stored show profiles",
	}
	cmd.AddCommand(
		newListCommand(globals),
		newAddCommand(globals),
		newImportCommand(globals),
		newExportCommand(globals),
	)
	return cmd
}

func openStore(cmd *cobra.Command, globals *internal.Globals) (*store.Store, error) {
	cfg, err := globals.LoadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cmd.Context(), cfg.DatabaseURL)
}

func newListCommand(globals *internal.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shows and their hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore(cmd, globals)
			if err != nil {
				return err
			}
			defer db.Close()

			shows, err := db.ListShows(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tHOSTS")
			for _, show := range shows {
				names := make([]string, 0, len(show.Hosts))
				for _, host := range show.Hosts {
					names = append(names, host.Name)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", show.ID, show.Name, strings.Join(names, ", "))
			}
			return w.Flush()
		},
	}
}

// ParseHost reads "Name|voice_id|personality"; personality may be omitted.
func ParseHost(value string) (model.Host, error) {
	parts := strings.SplitN(value, "|", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return model.Host{}, fmt.Errorf("expected Name|voice_id|personality, got %q", value)
	}
	host := model.Host{Name: strings.TrimSpace(parts[0]), Voice: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		host.Personality = strings.TrimSpace(parts[2])
	}
	return host, nil
}

func newAddCommand(globals *internal.Globals) *cobra.Command {
	var (
		description string
		hosts       []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := model.ShowProfile{Name: args[0], Description: description}
			for _, value := range hosts {
				host, err := ParseHost(value)
				if err != nil {
					return err
				}
				profile.Hosts = append(profile.Hosts, host)
			}

			db, err := openStore(cmd, globals)
			if err != nil {
				return err
			}
			defer db.Close()

			show, err := db.CreateShow(cmd.Context(), profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created show %d %q\n", show.ID, show.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "what the show is about")
	cmd.Flags().StringArrayVar(&hosts, "host", nil, "host as Name|voice_id|personality (repeatable)")
	return cmd
}

func newImportCommand(globals *internal.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import [shows.yaml]",
		Short: "Create or update shows from a shows file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			path := cfg.ShowsFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("a shows file argument or PODCAST_SHOWS_FILE is required")
			}

			profiles, err := config.LoadShows(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := store.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, profile := range profiles {
				existing, err := db.GetShowByName(ctx, profile.Name)
				switch {
				case errors.Is(err, store.ErrNotFound):
					created, err := db.CreateShow(ctx, profile)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "created %d %s\n", created.ID, created.Name)
				case err != nil:
					return err
				default:
					if _, err := db.UpdateShow(ctx, existing.ID, profile); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "updated %d %s\n", existing.ID, profile.Name)
				}
			}
			return nil
		},
	}
}

func newExportCommand(globals *internal.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export <shows.yaml>",
		Short: "Write every stored show to a shows file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, globals)
			if err != nil {
				return err
			}
			defer db.Close()

			shows, err := db.ListShows(cmd.Context())
			if err != nil {
				return err
			}
			profiles := make([]model.ShowProfile, 0, len(shows))
			for i := range shows {
				profiles = append(profiles, shows[i].Profile())
			}
			if err := config.SaveShows(args[0], profiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d shows to %s\n", len(profiles), args[0])
			return nil
		},
	}
}
