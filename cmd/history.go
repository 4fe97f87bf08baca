package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptflow/internal/db"
	"github.com/ziadkadry99/promptflow/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generations",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("kind", "", "filter by kind: workflow or embedding")
	historyCmd.Flags().String("status", "", "filter by status: succeeded or failed")
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("summary", false, "show totals per kind instead of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	summary, _ := cmd.Flags().GetBool("summary")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet. Run `promptflow generate` first.")
		return nil
	}

	database, err := db.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer database.Close()
	store := history.NewStore(database)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if summary {
		sums, err := store.Summarize(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "KIND\tTOTAL\tFAILED\tTOKENS IN\tTOKENS OUT\tCOST")
		for _, s := range sums {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t$%.4f\n", s.Kind, s.Total, s.Failed, s.InputTokens, s.OutputTokens, s.CostUSD)
		}
		return nil
	}

	entries, err := store.List(cmd.Context(), history.Filter{
		Kind:   history.Kind(kind),
		Status: history.Status(status),
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching generations.")
		return nil
	}

	fmt.Fprintln(w, "CREATED\tKIND\tSTATUS\tBLOCKS\tEDGES\tCOST\tPROMPT")
	for _, e := range entries {
		p := e.Prompt
		if len(p) > 50 {
			p = p[:47] + "..."
		}
		st := string(e.Status)
		if e.ErrorKind != "" {
			st += " (" + e.ErrorKind + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t$%.4f\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, st, e.BlockCount, e.EdgeCount, e.CostUSD, p)
	}
	return nil
}
