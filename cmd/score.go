package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/scorer"
	"github.com/sells-group/site-scout/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score [dataset]",
	Short: "Score a location dataset with weighted min-max scoring",
	Long: `Score every record of a CSV or XLSX dataset on a 0-100 scale.

Each scorable metric is min-max normalized across the working set, combined
with its weight (cost metrics such as rent or competitors count against a
site), and the weighted sum is rescaled so the best site in the set scores
100 and the worst 0. Narrowing the working set with --city, --region,
--grade or --flag therefore changes the scores of the sites that remain.
--verdict, --min-score and --top only narrow what is printed.

Examples:
  # Score with the default weights and print the top 20
  site-scout score data/sites.csv --top 20

  # Emphasise traffic, ignore rent, only Jakarta
  site-scout score data/sites.csv --weights traffic=1,rent=0 --city Jakarta

  # Halal-certified Malaysian sites, export recommended ones for GIS
  site-scout score data/my.csv --schema density --flag halal --verdict Recommended --out rec.geojson

  # Keep a record of the run
  site-scout score data/sites.csv --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("schema", "", "schema variant: generic or density (default from config)")
	f.String("weights", "", "weight overrides, e.g. traffic=1,rent=0.2")
	f.StringSlice("city", nil, "restrict the working set to these cities")
	f.StringSlice("region", nil, "restrict the working set to these regions")
	f.StringSlice("grade", nil, "restrict the working set to these input grades (A-D)")
	f.StringSlice("flag", nil, "require these flag metrics to be set, e.g. halal")
	f.StringSlice("verdict", nil, "only show these verdicts")
	f.Float64("min-score", 0, "only show scores >= this value")
	f.Float64("max-score", 100, "only show scores <= this value")
	f.Int("top", 0, "show only the N best scores (0 = all)")
	f.Int("workers", 0, "goroutines for the combine step (default from config)")
	f.String("format", "table", "stdout format: table, csv, geojson or none")
	f.StringP("out", "o", "", "also write the shown records to a file (.csv, .xlsx, .geojson, .shp)")
	f.Bool("save", false, "record the run in the run store")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f := cmd.Flags()

	path := cfg.Dataset.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return eris.New("score: a dataset path is required (argument or dataset.path)")
	}
	format, _ := f.GetString("format")
	switch format {
	case "table", "csv", "geojson", "none":
	default:
		return eris.Errorf("score: --format must be table, csv, geojson or none (got %q)", format)
	}
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	schemaName := cfg.Dataset.Schema
	if f.Changed("schema") {
		schemaName, _ = f.GetString("schema")
	}
	schema, err := model.LookupSchema(schemaName)
	if err != nil {
		return err
	}

	weightFlag, _ := f.GetString("weights")
	weights, err := resolveWeights(schema, cfg.Scoring.Weights, weightFlag)
	if err != nil {
		return err
	}
	ws, err := workingSetFromFlags(cmd)
	if err != nil {
		return err
	}
	view, err := viewFromFlags(cmd)
	if err != nil {
		return err
	}

	opts := scorer.Options{
		Workers:    cfg.Scoring.Workers,
		Thresholds: scorer.Thresholds{Recommended: cfg.Scoring.Recommended, Potential: cfg.Scoring.Potential},
		Ladder:     model.DefaultLadder(),
	}
	if f.Changed("workers") {
		opts.Workers, _ = f.GetInt("workers")
	}

	ds, err := store.Load(ctx, path, schema)
	if err != nil {
		return err
	}
	set, err := ws.Apply(ds)
	if err != nil {
		return err
	}
	res, err := scorer.Score(set, weights, opts)
	if err != nil {
		return eris.Wrap(err, "score")
	}
	shown := view.Apply(res.Dataset)

	zap.L().Info("score: complete",
		zap.String("path", path),
		zap.Int("loaded", ds.Len()),
		zap.Int("working_set", set.Len()),
		zap.Int("shown", shown.Len()),
		zap.Strings("degenerate_metrics", res.Scaled.DegenerateKeys()),
	)

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		writeScoreTable(out, shown)
	case "csv":
		if err := store.WriteCSV(out, shown); err != nil {
			return err
		}
	case "geojson":
		if err := store.WriteGeoJSON(out, shown); err != nil {
			return err
		}
	}
	printScoreSummary(cmd.ErrOrStderr(), res, shown.Len())

	if dest, _ := f.GetString("out"); dest != "" {
		if err := store.Save(dest, shown); err != nil {
			return err
		}
	}

	if save, _ := f.GetBool("save"); save {
		st, err := initRunStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, scores := store.NewRun(path, scorer.RunConfig{
			Schema:     schema.Name,
			Weights:    weights,
			Thresholds: opts.Thresholds,
			WorkingSet: ws,
		}, res.Dataset)
		if err := st.SaveRun(ctx, run, scores); err != nil {
			return eris.Wrap(err, "score: save run")
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s\n", run.ID)
	}
	return nil
}

// resolveWeights layers configured weights and flag overrides on top of the
// schema defaults.
func resolveWeights(schema *model.Schema, configured map[string]float64, flag string) (scorer.Weights, error) {
	w := scorer.DefaultWeights(schema).Merge(scorer.Weights(configured))
	if flag != "" {
		overrides, err := scorer.ParseWeights(flag)
		if err != nil {
			return nil, err
		}
		w = w.Merge(overrides)
	}
	if err := scorer.ValidateWeights(schema, w); err != nil {
		return nil, err
	}
	return w, nil
}

func workingSetFromFlags(cmd *cobra.Command) (scorer.WorkingSet, error) {
	f := cmd.Flags()
	var ws scorer.WorkingSet
	ws.Cities, _ = f.GetStringSlice("city")
	ws.Regions, _ = f.GetStringSlice("region")
	ws.Flags, _ = f.GetStringSlice("flag")
	grades, _ := f.GetStringSlice("grade")
	for _, g := range grades {
		grade := model.ParseGrade(strings.ToUpper(strings.TrimSpace(g)))
		if grade == "" {
			return ws, eris.Wrapf(model.ErrInvalidParams, "score: unknown grade %q", g)
		}
		ws.Grades = append(ws.Grades, grade)
	}
	return ws, nil
}

func viewFromFlags(cmd *cobra.Command) (scorer.View, error) {
	f := cmd.Flags()
	v := scorer.View{SortByScore: true}
	verdicts, _ := f.GetStringSlice("verdict")
	for _, s := range verdicts {
		vd := model.ParseVerdict(strings.TrimSpace(s))
		if vd == "" {
			return v, eris.Wrapf(model.ErrInvalidParams, "score: unknown verdict %q", s)
		}
		v.Verdicts = append(v.Verdicts, vd)
	}
	if f.Changed("min-score") {
		lo, _ := f.GetFloat64("min-score")
		v.MinScore = &lo
	}
	if f.Changed("max-score") {
		hi, _ := f.GetFloat64("max-score")
		v.MaxScore = &hi
	}
	v.Limit, _ = f.GetInt("top")
	return v, nil
}

// writeScoreTable prints scored records ranked as given.
func writeScoreTable(out io.Writer, ds *model.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tID\tCITY\tREGION\tAI_SCORE\tGRADE\tVERDICT")
	for i, r := range ds.Records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			i+1, r.ID, r.City, r.Region, r.Score, r.Grade, r.Verdict)
	}
	_ = w.Flush()
}

var verdictOrder = []model.Verdict{model.VerdictRecommended, model.VerdictPotential, model.VerdictNotRecommended}

// printScoreSummary writes the weights used and the verdict tally.
func printScoreSummary(out io.Writer, res *scorer.Result, shown int) {
	pr := message.NewPrinter(language.English)
	counts := res.Counts()
	n := res.Dataset.Len()

	_, _ = pr.Fprintf(out, "\nScored %d records (%d shown)\n", n, shown)
	_, _ = fmt.Fprintf(out, "Weights: %s\n", strings.Join(scorer.Describe(res.Dataset.Schema, res.Weights), ", "))
	for _, vd := range verdictOrder {
		_, _ = pr.Fprintf(out, "  %-16s %6d (%.1f%%)\n", vd, counts[vd], float64(counts[vd])/float64(n)*100)
	}
	if keys := res.Scaled.DegenerateKeys(); len(keys) > 0 {
		_, _ = fmt.Fprintf(out, "Constant metrics (contribute nothing): %s\n", strings.Join(keys, ", "))
	}
	if res.RawDegenerate {
		_, _ = fmt.Fprintln(out, "All records scored equally; every ai_score is 0.")
	}
}
