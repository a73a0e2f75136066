package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/site-scout/internal/anchor"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors [catalog]",
	Short: "List city anchor catalogs",
	Long: `List the anchors of a built-in catalog or a YAML catalog file, with each
anchor's share of weighted sampling. Without arguments, lists the built-in
catalog names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		out := cmd.OutOrStdout()

		var catalog anchor.Catalog
		var err error
		switch {
		case file != "":
			catalog, err = anchor.LoadFile(file)
		case len(args) == 1:
			catalog, err = anchor.Builtin(args[0])
		default:
			for _, name := range anchor.Names() {
				c, _ := anchor.Builtin(name)
				_, _ = fmt.Fprintf(out, "%s\t%d anchors\n", name, len(c))
			}
			return nil
		}
		if err != nil {
			return err
		}

		formatCatalog(out, catalog)
		return nil
	},
}

func init() {
	anchorsCmd.Flags().String("file", "", "YAML anchor catalog to list instead of a built-in one")
	rootCmd.AddCommand(anchorsCmd)
}

// formatCatalog writes one row per anchor with its sampling probability.
func formatCatalog(out io.Writer, c anchor.Catalog) {
	pr := message.NewPrinter(language.English)
	total := c.TotalWeight()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tREGION\tLAT\tLNG\tTIER\tWEIGHT\tSHARE")
	for _, a := range c {
		_, _ = pr.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\t%.0f\t%.2f%%\n",
			a.Name, a.Region, a.Latitude, a.Longitude, a.Tier, a.Weight, a.Weight/total*100)
	}
	_, _ = pr.Fprintf(w, "TOTAL\t\t\t\t\t%.0f\t100.00%%\n", total)
	_ = w.Flush()
}
