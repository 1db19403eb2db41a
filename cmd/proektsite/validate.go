package main

import (
	"errors"
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Raiwe17/ProektSite/internal/project"
)

// errInvalid is returned after the issues have been printed.
var errInvalid = errors.New("project has issues")

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project]",
		Short: "Check a project for broken references and graph issues",
		Long:  `Reports elements that reference unknown pages, parents, components or scripts, and graph problems such as dangling connections or duplicate node ids. Exits non-zero when anything is found.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			p, path, err := loadProject(cfg, args)
			if err != nil {
				return err
			}

			out := termenv.NewOutput(cmd.OutOrStdout())
			var verr *project.ValidationError
			if err := project.Validate(p); errors.As(err, &verr) {
				fmt.Fprintln(out, out.String(fmt.Sprintf("%s: %d issue(s)", path, len(verr.Issues))).Bold().Foreground(out.Color("1")))
				for _, issue := range verr.Issues {
					fmt.Fprintf(out, "  %s %s\n", out.String(issue.Code).Foreground(out.Color("3")), issue.String())
				}
				return errInvalid
			} else if err != nil {
				return err
			}

			fmt.Fprintln(out, out.String(fmt.Sprintf("%s: ok (%d pages, %d elements)", path, len(p.Pages), len(p.Elements))).Foreground(out.Color("2")))
			return nil
		},
	}
}
