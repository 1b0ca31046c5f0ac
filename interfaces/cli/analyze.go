package cli

import (
	"fmt"
	"strconv"
	"strings"

	"slidecanvas/application/services"

	"github.com/spf13/cobra"
)

func (a *app) analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <project-file>",
		Short: "Classify the connection flow and recommend an engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, project, cleanup, err := a.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			flow := c.Presentations.Analyze(project)
			heading(a.out, "analysis of "+project.Name())
			table(a.out, []string{"PROPERTY", "VALUE"}, [][]string{
				{"flow", string(flow.Style)},
				{"density", strconv.FormatFloat(flow.Density, 'f', 2, 64)},
				{"complexity", string(flow.Complexity)},
				{"branching", statusIcon(flow.HasBranching)},
				{"cycles", statusIcon(flow.HasCycles)},
				{"nodes", strconv.Itoa(flow.NodeCount)},
				{"connections", strconv.Itoa(flow.ConnectionCount)},
			})

			order := c.Presentations.Order(project)
			fmt.Fprintf(a.out, "\n  slide order: %s\n", strings.Join(order, " → "))

			rec, err := c.Presentations.Recommend(project)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\n  recommended: %s (%s)\n\n", brand.Sprint(rec.EngineID), rec.Reason)
			rows := make([][]string, len(rec.Scores))
			for i, s := range rec.Scores {
				rows[i] = []string{s.EngineID, strconv.Itoa(s.Score), statusIcon(s.Valid), strconv.Itoa(s.Issues)}
			}
			table(a.out, []string{"ENGINE", "SCORE", "VALID", "ISSUES"}, rows)
			return nil
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	var engineID string
	cmd := &cobra.Command{
		Use:   "validate <project-file>",
		Short: "List nodes an engine cannot render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, project, cleanup, err := a.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			issues, err := c.Presentations.Validate(project, engineID)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Fprintf(a.out, "%s every node renders on %s\n", statusIcon(true), engineID)
				return nil
			}
			rows := make([][]string, len(issues))
			for i, issue := range issues {
				rows[i] = []string{issue.NodeID, issue.Issue, issue.Message}
			}
			table(a.out, []string{"NODE", "ISSUE", "MESSAGE"}, rows)
			return fmt.Errorf("%d node(s) unsupported by %s", len(issues), engineID)
		},
	}
	cmd.Flags().StringVar(&engineID, "engine", "reveal", "engine to validate against")
	return cmd
}

func (a *app) renderCommand() *cobra.Command {
	var (
		opts   services.GenerateOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "render <project-file>",
		Short: "Render a project as an HTML presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, project, cleanup, err := a.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			pres, err := c.Presentations.Generate(ctx, project, opts)
			if err != nil {
				return err
			}
			for _, issue := range pres.Issues {
				warn.Fprintf(a.out, "%s: %s\n", issue.NodeID, issue.Message)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(a.out, "%d slides on %s\n", pres.SlideCount, brand.Sprint(pres.EngineID))
			}
			return a.writeOutput(output, pres.Document)
		},
	}
	cmd.Flags().StringVar(&opts.EngineID, "engine", "", "engine id; empty picks the project preference or the recommendation")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title; defaults to the project name")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file; stdout when empty")
	return cmd
}
