// Package cli implements the bombase command-line interface.
//
// # Commands
//
//   - serve: run the REST API over the registry and its harvesters
//   - enrich: create packages, wait for their cascades and print the result
//   - show: print what the store knows about a package
//   - scan: run the license scanner over a directory and print the merge
//   - cache: manage the HTTP response cache
//   - version: print build information
//
// All commands read the TOML configuration from --config, or from
// ~/.config/bombase/config.toml when present, and support --verbose (-v)
// for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/philips-software/bom-base-sub000/internal/config"
	"github.com/philips-software/bom-base-sub000/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "bombase"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bombase fuses package metadata from untrusted sources",
		Long:         `bombase harvests package metadata (licenses, source locations, hashes, authorship) from package registries, repositories, license scans and curations, and keeps the most trustworthy value of every field.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (default ~/.config/bombase/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.enrichCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(appName + " " + buildinfo.String())
		},
	}
}
