package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/logger"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// maxTableEvents caps the event list in table output.
const maxTableEvents = 10

var (
	analyzeSymbol string
	analyzeSeed   string
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a file of daily bars",
	Long: `Read daily bars from a JSON or CSV file ("-" for stdin), run the full
indicator pipeline and print the verdict.

JSON input is an array of {date, open, high, low, close, volume} records or
an object {"symbol": ..., "bars": [...]}. CSV input needs a header row naming
the date, open, high, low, close and volume columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSymbol, "symbol", "", "symbol to report (default: from the file)")
	analyzeCmd.Flags().StringVar(&analyzeSeed, "seed", "", "MACD EMA seeding: first or sma (default: from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", outputTable, "output format: table, json or yaml")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	switch analyzeOutput {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", analyzeOutput)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := cfg.AnalysisParams()
	if analyzeSeed != "" {
		params.Indicators.MACD.Seed = indicator.Seed(analyzeSeed)
	}

	engine, err := analysis.NewEngine(params, log.Named("engine"))
	if err != nil {
		return err
	}

	path := args[0]
	in := cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rep, err := analyzeInput(cmd.Context(), engine, in, analyzeSymbol, path)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), rep, analyzeOutput)
}

// analyzeInput reads bars from r and analyzes them. The symbol comes from
// the flag, then the file contents, then the file name.
func analyzeInput(ctx context.Context, engine *analysis.Engine, r io.Reader, symbolFlag, path string) (*analysis.Report, error) {
	fileSymbol, raw, err := readBars(r)
	if err != nil {
		return nil, err
	}
	symbol, err := requireSymbol(symbolFlag, fileSymbol, path)
	if err != nil {
		return nil, err
	}
	return engine.AnalyzeRaw(ctx, symbol, raw, nil)
}

func render(w io.Writer, rep *analysis.Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, rep)
	}
}

func renderTable(w io.Writer, rep *analysis.Report) error {
	v := rep.Verdict
	fmt.Fprintf(w, "Symbol:   %s\n", rep.Symbol)
	fmt.Fprintf(w, "As of:    %s (%d bars)\n", rep.AsOf, len(rep.Dates))
	fmt.Fprintf(w, "Verdict:  %s, %s (%d buy / %d sell)\n",
		strings.ToUpper(string(v.Verdict)), rep.Headline, v.BuyCount, v.SellCount)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDICATOR\tACTION\tSTRENGTH\tRULE\tREASON\t")
	fmt.Fprintln(tw, "---------\t------\t--------\t----\t------\t")
	for _, s := range append([]core.Signal{rep.Signals.MA}, rep.Signals.Voting()...) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Indicator, s.Action, dash(string(s.Strength)), dash(s.Rule), dash(s.Reason))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Events) > 0 {
		events := rep.Events
		if len(events) > maxTableEvents {
			events = events[len(events)-maxTableEvents:]
		}
		fmt.Fprintf(w, "\nRecent events (%d of %d):\n", len(events), len(rep.Events))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tEVENT\tLINES\tACTION\t")
		fmt.Fprintln(tw, "----\t-----\t-----\t------\t")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
				e.Date.Format(analysis.DateLayout), e.Kind, e.Label, e.Action)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(rep.Insufficient) > 0 {
		fmt.Fprintf(w, "\nNot enough history: %s\n", strings.Join(rep.Insufficient, ", "))
	}
	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
