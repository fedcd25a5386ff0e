package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/validate"
)

var (
	listQuery    string
	listCategory string
	listJSON     bool

	addClaimant string
	addCategory string
	addTarget   string
	addSource   string
	addAnalyze  bool
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List, add and delete claims",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims, optionally filtered",
	Example: `  pap claims list
  pap claims list --q ramesh
  pap claims list --category Economy --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			claims := model.FilterClaims(a.coord.Claims(), a.coord.Claimants(), listQuery, listCategory)
			if listJSON {
				return printJSON(claims)
			}

			names := claimantNames(a.coord.Claimants())
			for _, c := range claims {
				fmt.Printf("%-14s %-10s %-11s v%-2d %-22s %s\n", c.ID, c.Status, c.Category, c.VaguenessIndex, names[c.ClaimantID], truncate(c.Text, 70))
			}
			fmt.Fprintf(os.Stderr, "\n%d claim(s)\n", len(claims))
			return nil
		})
	},
}

var claimsAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Record a new claim",
	Example: `  pap claims add "Melamchi water will reach every Kathmandu household by 2026." \
    --claimant "Bikash Thapa" --category Infrastructure --target 2026-12-31 \
    --source https://kathmandupost.com/... --analyze`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.ClaimInput{
			ClaimantName: addClaimant,
			Text:         args[0],
			TargetDate:   addTarget,
			Category:     model.Category(addCategory),
		}
		if addSource != "" {
			in.Sources = []model.ClaimSource{{URL: addSource}}
		}
		if err := validate.ClaimInput(&in); err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app) error {
			if err := a.requirePersistence(); err != nil {
				return err
			}
			claim, err := a.coord.SaveClaim(in)
			if err != nil {
				return fmt.Errorf("save claim: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Recorded claim %s\n", claim.ID)

			if addAnalyze {
				claim, _, err = a.pipe.Enricher.AnalyzeClaim(ctx, claim.ID, "en")
				if err != nil {
					return fmt.Errorf("analyze claim: %w", err)
				}
				fmt.Fprintf(os.Stderr, "✓ Vagueness %d/10\n", claim.VaguenessIndex)
			}
			return printJSON(claim)
		})
	},
}

var claimsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete claims by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.requirePersistence(); err != nil {
				return err
			}
			for _, id := range args {
				a.pipe.Enricher.Cancel(id)
				if err := a.coord.DeleteClaim(id); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "✓ Deleted %s\n", id)
			}
			return nil
		})
	},
}

var claimsLinksCmd = &cobra.Command{
	Use:   "links <id>",
	Short: "Check that a claim's source and evidence links still resolve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			claim, ok := a.coord.Claim(args[0])
			if !ok {
				return fmt.Errorf("claim %s not found", args[0])
			}

			statuses := a.links.CheckClaim(ctx, claim)
			dead := 0
			for _, st := range statuses {
				mark := "✓"
				if !st.Accessible {
					mark = "✗"
					dead++
				}
				fmt.Fprintf(os.Stderr, "  %s %-10s %3d  %s\n", mark, st.Kind, st.StatusCode, st.URL)
			}
			fmt.Fprintf(os.Stderr, "\n%d link(s), %d unreachable\n", len(statuses), dead)
			return nil
		})
	},
}

var claimantsCmd = &cobra.Command{
	Use:   "claimants",
	Short: "Inspect and enrich claimants",
}

var claimantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claimants with their accuracy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			claimants := a.coord.Claimants()
			if listJSON {
				return printJSON(claimants)
			}
			for _, c := range claimants {
				fmt.Printf("%-14s %-28s %3d claims  %3d%% accurate  vagueness %.1f\n", c.ID, c.Name, c.TotalClaims, c.AccuracyRate, c.VaguenessScore)
			}
			return nil
		})
	},
}

var claimantsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a claimant profile and per-status counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			claimant, stats, ok := a.coord.Claimant(args[0])
			if !ok {
				return fmt.Errorf("claimant %s not found", args[0])
			}
			return printJSON(map[string]any{"claimant": claimant, "stats": stats})
		})
	},
}

var claimantsEnrichCmd = &cobra.Command{
	Use:   "enrich [id...]",
	Short: "Fill in claimant bios with the AI provider",
	Long: `Enrich looks up a short background and affiliation for each claimant.
Without ids, claimants with an empty or placeholder bio are enriched.
Needs an AI provider; without one nothing is changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.requirePersistence(); err != nil {
				return err
			}
			if !a.pipe.Analyzer.HasProvider() {
				fmt.Fprintf(os.Stderr, "No AI provider configured, skipping enrichment\n")
				return nil
			}
			results := a.pipe.Enricher.EnrichClaimants(ctx, args)
			failed := 0
			for _, r := range results {
				if r.Error != nil {
					failed++
					fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", r.Key, r.Error)
					continue
				}
				fmt.Fprintf(os.Stderr, "  ✓ %s\n", r.Key)
			}
			fmt.Fprintf(os.Stderr, "\n%d enriched, %d failed\n", len(results)-failed, failed)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write every claim to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			data, err := a.coord.ExportClaims()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Exported %d claims to %s\n", len(a.coord.Claims()), args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace every claim with the contents of a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.requirePersistence(); err != nil {
				return err
			}
			n, err := a.coord.ImportClaims(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Imported %d claims\n", n)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			claims := a.coord.Claims()
			if listJSON {
				return printJSON(map[string]any{"dashboard": model.Dashboard(claims), "topics": model.Topics(claims)})
			}

			d := model.Dashboard(claims)
			fmt.Printf("Claims:        %d (%d resolved)\n", d.TotalClaims, d.ResolvedClaims)
			fmt.Printf("Accuracy:      %d%%\n", d.OverallAccuracy)
			fmt.Printf("Vagueness:     %.1f\n", d.MeanVagueness)
			printBuckets("By status", d.ByStatus)
			printBuckets("By category", d.ByCategory)
			printBuckets("Topics", model.Topics(claims))
			return nil
		})
	},
}

func printBuckets(title string, buckets []model.Bucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, b := range buckets {
		fmt.Printf("  %-22s %d\n", b.Name, b.Count)
	}
}

// withApp opens the app, runs fn, then closes it so pending remote writes land
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := openApp(ctx, zap.WarnLevel)
	if err != nil {
		return err
	}
	if verbose {
		a.syncBanner()
	}

	runErr := fn(ctx, a)
	if err := a.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close: %w", err)
	}
	return runErr
}

func claimantNames(claimants []model.Claimant) map[string]string {
	names := make(map[string]string, len(claimants))
	for _, c := range claimants {
		names[c.ID] = c.Name
	}
	return names
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&listJSON, "json", false, "print JSON instead of text")

	claimsListCmd.Flags().StringVar(&listQuery, "q", "", "match claim text, claimant name or topic")
	claimsListCmd.Flags().StringVar(&listCategory, "category", "", "only this category")

	claimsAddCmd.Flags().StringVar(&addClaimant, "claimant", "", "claimant name (matched case-insensitively, created if new)")
	claimsAddCmd.Flags().StringVar(&addCategory, "category", "", "category (default Politics)")
	claimsAddCmd.Flags().StringVar(&addTarget, "target", "", "target date, YYYY-MM-DD")
	claimsAddCmd.Flags().StringVar(&addSource, "source", "", "source URL")
	claimsAddCmd.Flags().BoolVar(&addAnalyze, "analyze", false, "score the claim after saving")
	_ = claimsAddCmd.MarkFlagRequired("claimant")

	claimsCmd.AddCommand(claimsListCmd, claimsAddCmd, claimsDeleteCmd, claimsLinksCmd)
	claimantsCmd.AddCommand(claimantsListCmd, claimantsShowCmd, claimantsEnrichCmd)
	rootCmd.AddCommand(claimsCmd, claimantsCmd, exportCmd, importCmd, statsCmd)
}
