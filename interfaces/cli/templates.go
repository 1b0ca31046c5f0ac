package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in canvas templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := a.offlineContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			infos := c.TemplateSvc.List()
			heading(a.out, "templates")
			rows := make([][]string, len(infos))
			for i, t := range infos {
				rows[i] = []string{t.Name, strconv.Itoa(t.NodeCount), strconv.Itoa(t.ConnectionCount), t.Description}
			}
			table(a.out, []string{"NAME", "NODES", "LINKS", "DESCRIPTION"}, rows)
			return nil
		},
	}
}
