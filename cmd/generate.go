package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/progress"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a workflow from a natural-language prompt",
	Long: `Sends the prompt to the configured chat model, turns the answer into
workflow blocks chained after the Start block, and prints the result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("format", "f", "text", "output format: text, json or mermaid")
	generateCmd.Flags().Bool("no-history", false, "do not record the generation in the history database")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "mermaid":
	default:
		return fmt.Errorf("unknown format %q: must be text, json or mermaid", format)
	}
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, !noHistory)
	if err != nil {
		return err
	}
	defer a.Close()

	indicator := progress.NewIndicator(os.Stderr)
	indicator.Start("Creating workflow...")
	out, err := a.workflow.Run(cmd.Context(), strings.Join(args, " "))
	indicator.Stop()
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.UserMessage(err), err)
	}

	return printWorkflow(cmd.OutOrStdout(), format, a.store.Graph(), out)
}

func printWorkflow(w io.Writer, format string, g workflow.Graph, out *pipeline.WorkflowOutcome) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case "mermaid":
		_, err := fmt.Fprint(w, workflow.Mermaid(g))
		return err
	}

	names := make(map[string]string, len(g.Blocks))
	for _, b := range g.Blocks {
		names[b.ID] = b.Name
	}

	fmt.Fprintf(w, "Workflow created (%d blocks, %d edges)\n\n", len(out.Result.BlockIDs), len(out.Result.EdgeIDs))
	for i, id := range out.Result.BlockIDs {
		for _, b := range g.Blocks {
			if b.ID == id {
				fmt.Fprintf(w, "  %d. %-30s %-14s (%.0f, %.0f)\n", i+1, b.Name, b.Type, b.Position.X, b.Position.Y)
			}
		}
	}
	if len(g.Edges) > 0 {
		fmt.Fprintln(w)
		for _, e := range g.Edges {
			fmt.Fprintf(w, "  %s -> %s\n", names[e.Source], names[e.Target])
		}
	}
	if out.Result.IgnoredEdges > 0 {
		fmt.Fprintf(w, "\n  %d edges proposed by the model were ignored\n", out.Result.IgnoredEdges)
	}
	fmt.Fprintf(w, "\nModel: %s  Tokens: %d in / %d out  Cost: $%.4f  Time: %s\n",
		out.Model, out.InputTokens, out.OutputTokens, out.CostUSD, out.Duration.Round(time.Millisecond))
	return nil
}
