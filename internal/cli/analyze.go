package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/model"
)

var (
	analyzeLang    string
	analyzeClaimID string
	analyzeTimeout time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Score how verifiable a claim is",
	Long: `Analyze scores a claim for vagueness and builds its verifiability checklist.

With text, the result is printed and nothing is stored. With --claim, the
stored claim is analyzed and the result is saved to it, keeping human-added
checklist items.

Example:
  pap analyze "Inflation will fall below 4% by July 2026."
  pap analyze --claim 2 --lang ne`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "en", "reasoning language (en, ne)")
	analyzeCmd.Flags().StringVar(&analyzeClaimID, "claim", "", "analyze and update a stored claim")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (analyzeClaimID == "") {
		return fmt.Errorf("give either claim text or --claim <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	a, err := openApp(ctx, zap.WarnLevel)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	lang := "en"
	if strings.EqualFold(analyzeLang, "ne") {
		lang = "ne"
	}

	var analysis model.Analysis
	if analyzeClaimID != "" {
		if err := a.requirePersistence(); err != nil {
			return err
		}
		var claim model.Claim
		claim, analysis, err = a.pipe.Enricher.AnalyzeClaim(ctx, analyzeClaimID, lang)
		if err != nil {
			return fmt.Errorf("analyze claim: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Updated claim %s\n", claim.ID)
	} else {
		analysis = a.pipe.Analyzer.Analyze(ctx, args[0], lang)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Scored by %s (vagueness %d/10)\n", analysis.Source, analysis.VaguenessIndex)
	}
	return printJSON(analysis)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
