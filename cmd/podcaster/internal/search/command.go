package search

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
)

func NewSearchCommand(globals *internal.Globals) *cobra.Command {
	var (
		source string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search news articles to research an episode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			searcher, err := internal.Searcher(cfg, source)
			if err != nil {
				return err
			}

			articles, err := searcher.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if limit > 0 && len(articles) > limit {
				articles = articles[:limit]
			}
			for i, article := range articles {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n   %s\n", i+1, article.Title, article.URL)
				if article.Source != "" || article.PublishedAt != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n", article.Source, article.PublishedAt)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "google or newsapi (default newsapi when NEWS_API_KEY is set)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results to print")
	return cmd
}
