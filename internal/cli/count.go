package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/rbx-ripper/internal/extract"
)

var countTopFlag int

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count <input>",
	Short: "Count the objects an extraction would produce",
	Long: `Count loads the input document and applies the same filters as extract,
without writing anything. It prints the total and a per-class breakdown.

Examples:
  rbxrip count place.rbxlx
  rbxrip count place.rbxlx --exclude-scripts --top 10
`,
	Args: cobra.ExactArgs(1),
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
	addFilterFlags(countCmd)
	countCmd.Flags().IntVar(&countTopFlag, "top", 0, "Only list the N most common classes (0 = all)")
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, filterFlagKeys)
	if err != nil {
		return err
	}

	settings, err := cfg.ToSettings()
	if err != nil {
		return err
	}

	report, err := extract.CountFile(args[0], settings)
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}

	type classCount struct {
		class string
		count int
	}
	rows := make([]classCount, 0, len(report.ByClass))
	for class, n := range report.ByClass {
		rows = append(rows, classCount{class, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].class < rows[j].class
	})
	if countTopFlag > 0 && len(rows) > countTopFlag {
		rows = rows[:countTopFlag]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s objects\n", formatNumber(report.Total))
	if len(rows) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tCOUNT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.class, formatNumber(r.count))
	}
	return w.Flush()
}
