// Package historycmder provides the history command for displaying past
// optimization runs persisted in the .keep directory.
package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemosyneco/keep/pkg/cliui"
	"github.com/mnemosyneco/keep/pkg/dotdir"
)

const historyLongDesc string = `Show past optimization runs.

Reads the optimization history persisted in the .keep/ directory and displays
the most recent runs: when they happened, what triggered them, and how many
memories they removed.

Examples:
  keep history
  keep history -n 25
  keep history clear`

const historyShortDesc string = "Show past optimization runs"

func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runHistory(limit, configDir)
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", 10, "Number of runs to show (0 for all)")

	cmd.AddCommand(newClearCmd())

	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the optimization history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			if err := dotdir.NewManager().ClearHistory(configDir); err != nil {
				return fmt.Errorf("clearing optimization history: %w", err)
			}
			fmt.Printf("  %s Cleared optimization history\n", cliui.SuccessMark)
			return nil
		},
	}

	return cmd
}

func runHistory(limit int, configDir string) error {
	records, err := dotdir.NewManager().LoadHistory(configDir)
	if err != nil {
		return fmt.Errorf("loading optimization history: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("  %s No optimization runs recorded yet.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	fmt.Printf("\n  %s  %d\n\n", cliui.KeyStyle.Render("Runs:"), len(records))

	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		fmt.Printf("  %s  %s  removed %s %s\n",
			cliui.DimStyle.Render(rec.Timestamp.Local().Format("2006-01-02 15:04:05")),
			cliui.ValueStyle.Render(fmt.Sprintf("%-17s", string(rec.Trigger))),
			cliui.ValueStyle.Render(fmt.Sprintf("%3d", rec.MemoriesRemoved)),
			cliui.DimStyle.Render(fmt.Sprintf("(%.2f MB, %s)", rec.SizeSavedMB, string(rec.Status))),
		)
	}

	fmt.Println()
	return nil
}
