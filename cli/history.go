package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"dailyledger/config"
	"dailyledger/connection"
	"dailyledger/model"
	"dailyledger/services"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		series      bool
		consistency bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the sealed days, the gap-filled series or task consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger()
			ctx := cmd.Context()

			kv, err := connection.OpenKV(ctx, cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer func() { _ = kv.Close() }()

			engine, err := connection.NewEngine(ctx, cfg, kv, services.EngineOptions{Logger: logger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case consistency:
				stats, _ := engine.Consistency()
				return printConsistency(out, stats, asJSON)
			case series:
				return printRecords(out, engine.Series(), asJSON)
			default:
				return printRecords(out, engine.History(), asJSON)
			}
		},
	}

	cmd.Flags().BoolVar(&series, "series", false, "Fill skipped days with zero-score placeholders")
	cmd.Flags().BoolVar(&consistency, "consistency", false, "Show per-task completion percentages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printRecords(w io.Writer, records []model.DailyRecord, asJSON bool) error {
	if asJSON {
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sealed days yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSCORE\tDONE")
	for _, r := range records {
		var done []string
		for name := range r.Tasks {
			if r.Tasks.Get(name) == 1 {
				done = append(done, name)
			}
		}
		sort.Strings(done)
		fmt.Fprintf(tw, "%s\t%d\t%v\n", r.Date, r.DailyScore, done)
	}
	return tw.Flush()
}

func printConsistency(w io.Writer, stats []services.TaskConsistency, asJSON bool) error {
	if asJSON {
		if stats == nil {
			stats = []services.TaskConsistency{}
		}
		return writeJSON(w, stats)
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "No sealed days yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tDAYS\tCONSISTENCY")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d%%\n", s.Name, s.Count, s.Percentage)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
