package cli

import (
	"fmt"
	"strconv"

	"slidecanvas/infrastructure/di"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect projects in the configured store",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored projects, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			c, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := c.Projects.ListProjects(ctx, limit)
			if err != nil {
				return err
			}
			heading(a.out, fmt.Sprintf("projects in %s store", cfg.Storage.Driver))
			if len(summaries) == 0 {
				subtle.Fprintln(a.out, "  no projects")
				return nil
			}
			rows := make([][]string, len(summaries))
			for i, s := range summaries {
				rows[i] = []string{
					s.ID, s.Name,
					strconv.Itoa(s.NodeCount), strconv.Itoa(s.ConnectionCount),
					s.UpdatedAt.Format("2006-01-02 15:04"),
				}
			}
			table(a.out, []string{"ID", "NAME", "NODES", "LINKS", "UPDATED"}, rows)
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of projects")

	export := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Print a stored project as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			c, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			project, err := c.Projects.GetProject(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(project.Serialize())
			if err != nil {
				return err
			}
			return a.writeOutput("", data)
		},
	}

	cmd.AddCommand(list, export)
	return cmd
}
