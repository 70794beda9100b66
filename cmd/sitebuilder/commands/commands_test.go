package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

func TestParseLogLevel(t *testing.T) {
	t.Setenv("SITEBUILDER_LOG_LEVEL", "warning")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("SITEBUILDER_LOG_LEVEL", "")
	require.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestCLI_ParsesSubcommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"watch", "--interval", "10m"})
	require.NoError(t, err)
	require.Equal(t, "watch", ctx.Command())
	require.Equal(t, 10*time.Minute, cli.Watch.Interval)
	require.Equal(t, "sitebuilder.yaml", filepath.Base(cli.Config))

	cli = CLI{}
	ctx, err = parser.Parse([]string{"-c", "site.yaml", "verify", "--json"})
	require.NoError(t, err)
	require.Equal(t, "verify", ctx.Command())
	require.True(t, cli.Verify.JSON)
	require.NotNil(t, cli.Logger())
}

func TestPrintReport(t *testing.T) {
	r := &build.Report{
		BuildID:  "b1",
		Status:   build.StatusPartial,
		Revision: workspace.Revision{Commit: "0123456789abcdef"},
		Duration: 1500 * time.Millisecond,
		Articles: 2,
		Changed:  2,
		Rendered: 1,
		Failed:   1,
		Index:    build.TaskRendered,
		Errors:   []build.Failure{{Task: "page:blog/post", Path: "blog/post", Kind: build.KindHook, Message: "boom"}},
	}

	var text bytes.Buffer
	require.NoError(t, printReport(&text, r, false))
	require.Contains(t, text.String(), "build b1")
	require.Contains(t, text.String(), "partial")
	require.Contains(t, text.String(), "boom")

	var raw bytes.Buffer
	require.NoError(t, printReport(&raw, r, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	require.Equal(t, "partial", decoded["status"])
}
