package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/logger"
	"github.com/newthinker/taengine/internal/series"
	"github.com/newthinker/taengine/internal/similarity"
)

var (
	similarQuery  string
	similarCurve  []float64
	similarWindow int
	similarTopK   int
	similarOutput string
)

var similarCmd = &cobra.Command{
	Use:   "similar <file>...",
	Short: "Rank bar files by how closely their recent closes match a curve",
	Long: `Index the most recent closes of every bar file and rank them by shape
against a query curve. The query is either a list of values (--curve) or the
closes of another bar file (--query). Shapes are compared after z-score
normalization, so price level and scale do not matter.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVar(&similarQuery, "query", "", "bar file whose closes form the query")
	similarCmd.Flags().Float64SliceVar(&similarCurve, "curve", nil, "query values, e.g. 10,12,11,15")
	similarCmd.Flags().IntVar(&similarWindow, "window", 0, "closes compared per file (default: from config)")
	similarCmd.Flags().IntVar(&similarTopK, "top-k", 0, "matches to print (default: from config)")
	similarCmd.Flags().StringVarP(&similarOutput, "output", "o", outputTable, "output format: table or json")

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	switch similarOutput {
	case outputTable, outputJSON:
	default:
		return fmt.Errorf("unknown output format %q", similarOutput)
	}
	if (similarQuery == "") == (len(similarCurve) == 0) {
		return fmt.Errorf("pass exactly one of --query or --curve")
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	sc := cfg.Similarity
	if similarWindow > 0 {
		sc.Window = similarWindow
	}
	if similarTopK > 0 {
		sc.TopK = similarTopK
	}

	query := similarCurve
	if similarQuery != "" {
		e, err := loadEntry(similarQuery)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		query = e.Closes
	}

	entries := make([]similarity.Entry, 0, len(args))
	for _, path := range args {
		e, err := loadEntry(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, e)
	}

	ix, err := similarity.NewIndex(sc.Window, entries, log.Named("similarity"))
	if err != nil {
		return err
	}
	matches, err := ix.Search(cmd.Context(), query, sc.Options())
	if err != nil {
		return err
	}
	return renderMatches(cmd.OutOrStdout(), matches, ix.Len(), similarOutput)
}

// loadEntry reads one bar file into a similarity entry.
func loadEntry(path string) (similarity.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return similarity.Entry{}, err
	}
	defer f.Close()

	fileSymbol, raw, err := readBars(f)
	if err != nil {
		return similarity.Entry{}, err
	}
	symbol, err := requireSymbol("", fileSymbol, path)
	if err != nil {
		return similarity.Entry{}, err
	}
	s, err := series.Normalize(raw)
	if err != nil {
		return similarity.Entry{}, err
	}
	return similarity.Entry{
		Symbol: symbol,
		AsOf:   s.Last().Date.Format(analysis.DateLayout),
		Closes: s.Closes(),
	}, nil
}

func renderMatches(w io.Writer, matches []similarity.Match, indexed int, format string) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	fmt.Fprintf(w, "Indexed %d curves\n\n", indexed)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSYMBOL\tAS OF\tDISTANCE\t")
	fmt.Fprintln(tw, "----\t------\t-----\t--------\t")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t\n", i+1, m.Symbol, dash(m.AsOf), m.Distance)
	}
	return tw.Flush()
}
