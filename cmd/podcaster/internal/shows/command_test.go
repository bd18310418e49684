package shows

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type ShowsCommandSuite struct {
	suite.Suite
	dir     string
	globals *internal.Globals
}

func TestShowsCommandSuite(t *testing.T) {
	suite.Run(t, new(ShowsCommandSuite))
}

func (s *ShowsCommandSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.globals = &internal.Globals{DatabaseURL: "sqlite://" + filepath.Join(s.dir, "podcast.db")}
}

func (s *ShowsCommandSuite) run(args ...string) string {
	out := &bytes.Buffer{}
	cmd := NewShowsCommand(s.globals)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	s.Require().NoError(cmd.ExecuteContext(s.T().Context()), out.String())
	return out.String()
}

func (s *ShowsCommandSuite) TestParseHost() {
	host, err := ParseHost("Ana | v1 | curious, asks questions")
	s.Require().NoError(err)
	s.Equal(model.Host{Name: "Ana", Voice: "v1", Personality: "curious, asks questions"}, host)

	host, err = ParseHost("Ben|v2")
	s.Require().NoError(err)
	s.Empty(host.Personality)

	_, err = ParseHost("Ben")
	s.Error(err)
}

func (s *ShowsCommandSuite) TestAddAndList() {
	out := s.run("add", "Morning Brief", "--description", "Daily news", "--host", "Ana|v1|curious", "--host", "Ben|v2")
	s.Contains(out, `Created show 1 "Morning Brief"`)

	out = s.run("list")
	s.Contains(out, "Morning Brief")
	s.Contains(out, "Ana, Ben")
}

func (s *ShowsCommandSuite) TestImportCreatesThenUpdates() {
	path := filepath.Join(s.dir, "shows.yaml")
	s.Require().NoError(config.SaveShows(path, []model.ShowProfile{
		{Name: "Tech Talk", Hosts: []model.Host{{Name: "Ana", Voice: "v1"}}},
	}))

	s.Contains(s.run("import", path), "created 1 Tech Talk")

	s.Require().NoError(config.SaveShows(path, []model.ShowProfile{
		{Name: "tech talk", Description: "updated", Hosts: []model.Host{{Name: "Cy", Voice: "v3"}}},
	}))
	s.Contains(s.run("import", path), "updated 1 tech talk")

	exported := filepath.Join(s.dir, "export.yaml")
	s.Contains(s.run("export", exported), "Wrote 1 shows")

	shows, err := config.LoadShows(exported)
	s.Require().NoError(err)
	s.Require().Len(shows, 1)
	s.Equal("updated", shows[0].Description)
	s.Equal([]model.Host{{Name: "Cy", Voice: "v3"}}, shows[0].Hosts)
}

func (s *ShowsCommandSuite) TestImportNeedsFile() {
	s.T().Setenv("PODCAST_SHOWS_FILE", "")
	cmd := NewShowsCommand(s.globals)
	cmd.SetArgs([]string{"import"})
	cmd.SetOut(os.Stderr)
	s.Error(cmd.ExecuteContext(s.T().Context()))
}
