package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/progress"
	"github.com/ziadkadry99/promptflow/internal/tools"
)

var embedCmd = &cobra.Command{
	Use:   "embed [text]",
	Short: "Generate embeddings for text with the OpenAI embeddings tool",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().String("model", "", "embedding model (overrides config)")
	embedCmd.Flags().Bool("json", false, "print the full tool output as JSON")
	embedCmd.Flags().Bool("no-history", false, "do not record the request in the history database")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	asJSON, _ := cmd.Flags().GetBool("json")
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

	params := map[string]string{tools.ParamInput: strings.Join(args, " ")}
	if model != "" {
		params[tools.ParamModel] = model
	}

	indicator := progress.NewIndicator(os.Stderr)
	indicator.Start("Generating embeddings...")
	out, err := a.embedding.Run(cmd.Context(), params)
	indicator.Stop()
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.UserMessage(err), err)
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, vec := range out.Embeddings {
		preview := vec
		if len(preview) > 5 {
			preview = preview[:5]
		}
		fmt.Fprintf(w, "vector %d: %d dimensions, starts %v\n", i, len(vec), preview)
	}
	fmt.Fprintf(w, "Model: %s  Tokens: %d\n", out.Model, out.Usage.TotalTokens)
	return nil
}
