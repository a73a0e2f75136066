package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/site-scout/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scoring run history",
	Long:  "Commands for listing and viewing runs recorded with score --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scoring runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initRunStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		schema, _ := cmd.Flags().GetString("schema")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Schema: schema, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its top-ranked locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initRunStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		top, _ := cmd.Flags().GetInt("top")
		scores, err := st.GetRunScores(ctx, run.ID, top)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*store.Run
				Scores []store.RunScore `json:"scores"`
			}{run, scores})
		}

		formatRun(cmd.OutOrStdout(), run, scores)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("schema", "", "filter by schema variant")
	runsListCmd.Flags().Int("limit", 50, "maximum runs to list")

	runsShowCmd.Flags().Int("top", 20, "number of ranked locations to show (0 = all)")
	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSCHEMA\tSOURCE\tRECORDS\tRECOMMENDED\tCONFIG\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-------\t-----------\t------\t-------")

	for _, r := range runs {
		source := r.Source
		if len(source) > 30 {
			source = "..." + source[len(source)-27:]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Schema,
			source,
			r.Records,
			r.Recommended,
			truncateID(r.ConfigHash),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRun writes one run's header and its ranked scores to w.
func formatRun(out io.Writer, run *store.Run, scores []store.RunScore) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", run.ID)
	_, _ = fmt.Fprintf(w, "Schema:\t%s\n", run.Schema)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", run.Source)
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	_, _ = fmt.Fprintf(w, "Config:\t%s\n", run.ConfigHash)
	_, _ = fmt.Fprintf(w, "Records:\t%d (%d recommended)\n", run.Records, run.Recommended)

	parts := make([]string, 0, len(run.Weights))
	for _, k := range run.Weights.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%g", k, run.Weights[k]))
	}
	_, _ = fmt.Fprintf(w, "Weights:\t%s\n", strings.Join(parts, ", "))
	_ = w.Flush()

	if len(scores) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tID\tCITY\tAI_SCORE\tGRADE\tVERDICT")
	for _, s := range scores {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\n", s.Rank, s.LocationID, s.City, s.Score, s.Grade, s.Verdict)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of an ID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
