package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/draft"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/mcpserver"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/render"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/search"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/serve"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/shows"
	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal/voices"
)

func NewPodcasterCommand() *cobra.Command {
	globals := &internal.Globals{}

	cmd := &cobra.Command{
		Use:           "podcaster",
		Short:         "Turn multi-speaker scripts into podcast episodes",
		Version:       internal.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	globals.Bind(cmd)

	cmd.AddCommand(
		render.NewRenderCommand(globals),
		voices.NewVoicesCommand(globals),
		search.NewSearchCommand(globals),
		draft.NewDraftCommand(globals),
		shows.NewShowsCommand(globals),
		serve.NewServeCommand(globals),
		mcpserver.NewMCPCommand(globals),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewPodcasterCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
