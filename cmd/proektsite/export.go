package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/site"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		output     string
		title      string
		noTailwind bool
	)
	cmd := &cobra.Command{
		Use:   "export [project]",
		Short: "Render a project as a standalone HTML file",
		Long:  `Renders every page of the project into one HTML document that carries the project data and the interaction runtime. Use -o - to write to stdout.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}
			p, path, err := loadProject(cfg, args)
			if err != nil {
				return err
			}

			if title == "" {
				title = cfg.Export.Title
			}
			if output == "" {
				output = cfg.ExportOutput()
			}
			html, err := site.Generate(p, site.Options{
				Title:      title,
				NoTailwind: noTailwind || !cfg.Tailwind(),
			})
			if err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}

			if output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			} else {
				err = os.WriteFile(output, []byte(html), 0o644)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			logger.Info("project exported", "project", path, "output", output, "bytes", len(html))
			events.Emit("info", "project.exported", "", map[string]interface{}{
				"project": path,
				"output":  output,
				"bytes":   len(html),
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from config, else index.html)")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().BoolVar(&noTailwind, "no-tailwind", false, "Do not load the Tailwind CDN script")
	return cmd
}
