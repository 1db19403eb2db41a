package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Raiwe17/ProektSite/internal/config"
	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/logging"
	"github.com/Raiwe17/ProektSite/internal/project"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "proektsite",
		Short:         "Export and preview node-graph driven sites",
		Long:          `ProektSite renders project snapshots into self-contained HTML pages and serves live previews that run the same node graphs on the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Path to config.yaml")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newExportCmd(g),
		newPreviewCmd(g),
		newValidateCmd(g),
		newVersionCmd(),
	)
	return root
}

func (g *globalFlags) loadConfig() (*config.SiteConfig, error) {
	if g.config == "" {
		return config.Default(), nil
	}
	return config.Load(g.config)
}

func (g *globalFlags) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadProject reads the snapshot named by the first argument, falling back
// to site.project from the config.
func loadProject(cfg *config.SiteConfig, args []string) (*project.Project, string, error) {
	path := cfg.Site.Project
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, "", errors.New("no project given: pass a path or set site.project in config.yaml")
	}
	p, err := project.Load(path)
	if err != nil {
		events.Emit("error", "project.invalid", err.Error(), map[string]interface{}{"path": path})
		return nil, path, err
	}
	events.Emit("info", "project.loaded", "", map[string]interface{}{
		"path":     path,
		"pages":    len(p.Pages),
		"elements": len(p.Elements),
	})
	return p, path, nil
}
