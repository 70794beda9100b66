// Package commands implements the sitebuilder command line.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command and its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" default:"withargs" help:"Build the site incrementally"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild on content changes"`
	Verify VerifyCmd `cmd:"" help:"Re-render cached pages and report drift"`
	Clean  CleanCmd  `cmd:"" help:"Remove the generated site and the render cache"`

	logger *slog.Logger
}

// AfterApply runs after flag parsing and sets up logging once.
func (c *CLI) AfterApply() error {
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(c.logger)
	return nil
}

// Logger returns the configured logger, or the default before parsing.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// parseLogLevel honours --verbose first, then SITEBUILDER_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch config.NormalizeLogLevel(os.Getenv("SITEBUILDER_LOG_LEVEL")) {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newService loads the configuration and wires a build service, including
// the NATS publisher when events are configured.
func newService(root *CLI, g *Global) (*build.Service, *config.Config, func(), error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := build.NewService(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	svc.WithLogger(g.Logger)

	cleanup := func() {}
	if cfg.Events.Enabled() {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			return nil, nil, nil, err
		}
		svc.WithPublisher(pub.WithLogger(g.Logger))
		cleanup = func() {
			if err := pub.Close(); err != nil {
				g.Logger.Warn("Failed to close NATS publisher", "error", err)
			}
		}
	}
	return svc, cfg, cleanup, nil
}
