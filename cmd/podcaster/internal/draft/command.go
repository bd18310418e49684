package draft

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
)

type options struct {
	show     string
	urls     []string
	query    string
	textFile string
	source   string
	output   string
}

func NewDraftCommand(globals *internal.Globals) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Research and write a new episode script for a stored show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.urls) == 0 && opts.query == "" && opts.textFile == "" {
				return errors.New("one of --url, --query or --text-file is required")
			}

			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, closeStudio, err := internal.BuildStudio(ctx, cfg, opts.source)
			if err != nil {
				return err
			}
			defer closeStudio()

			showID, err := resolveShow(cmd, s, opts.show)
			if err != nil {
				return err
			}

			req := studio.DraftRequest{ShowID: showID, URLs: opts.urls, Query: opts.query}
			if opts.textFile != "" {
				data, err := os.ReadFile(opts.textFile)
				if err != nil {
					return err
				}
				req.Text = string(data)
			}

			saved, err := s.DraftEpisode(ctx, req)
			if err != nil {
				return err
			}

			if opts.output != "" {
				if err := os.WriteFile(opts.output, []byte(saved.Content), 0o644); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), saved.Content)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved script %d (%d facts)\n", saved.ID, len(saved.Facts))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.show, "show", "", "show name or id (required)")
	cmd.Flags().StringArrayVar(&opts.urls, "url", nil, "article url to research (repeatable)")
	cmd.Flags().StringVar(&opts.query, "query", "", "search query used when no --url is given")
	cmd.Flags().StringVar(&opts.textFile, "text-file", "", "file with research notes")
	cmd.Flags().StringVar(&opts.source, "source", "", "search source: google or newsapi")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the script to this file")
	_ = cmd.MarkFlagRequired("show")
	return cmd
}

func resolveShow(cmd *cobra.Command, s *studio.Studio, nameOrID string) (uint, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 64); err == nil {
		return uint(id), nil
	}
	show, err := s.Store().GetShowByName(cmd.Context(), nameOrID)
	if err != nil {
		return 0, err
	}
	return show.ID, nil
}
