package cli

import (
	"fmt"

	"slidecanvas/application/render"
	"slidecanvas/infrastructure/render/svg"

	"github.com/spf13/cobra"
)

func (a *app) snapshotCommand() *cobra.Command {
	var (
		width, height float64
		fit, grid     bool
		output        string
	)
	cmd := &cobra.Command{
		Use:   "snapshot <project-file>",
		Short: "Draw the canvas as SVG",
		Long: `Draw the canvas through the stored viewport resized to --width x --height.
With --fit the viewport frames every node instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("width and height must be positive")
			}
			c, project, cleanup, err := a.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			canvas := project.Canvas()
			viewport := project.Viewport().Resize(width, height)
			if fit && canvas.NodeCount() > 0 {
				cfg := canvas.Config()
				viewport = viewport.FitTo(canvas.Bounds(), cfg.FitPadding, cfg.MinZoom, cfg.MaxZoom)
			}

			settings := project.Settings()
			surface := svg.NewSurface()
			stats := c.Renderer.Render(surface, canvas, viewport, render.Options{
				ShowGrid: grid && settings.ShowGrid,
				GridSize: settings.GridSize,
			})
			if output != "" && output != "-" {
				fmt.Fprintf(a.out, "%d nodes drawn, %d culled, %d connections\n",
					stats.NodesDrawn, stats.NodesCulled, stats.ConnectionsDrawn)
			}
			return a.writeOutput(output, surface.Finish())
		},
	}
	cmd.Flags().Float64Var(&width, "width", 1280, "image width in pixels")
	cmd.Flags().Float64Var(&height, "height", 720, "image height in pixels")
	cmd.Flags().BoolVar(&fit, "fit", true, "frame every node")
	cmd.Flags().BoolVar(&grid, "grid", true, "draw the grid when the project shows it")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file; stdout when empty")
	return cmd
}
