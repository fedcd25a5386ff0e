package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pap/internal/pipeline"
)

var (
	manifestoParty string
	manifestoYear  int
	manifestoList  bool
)

var manifestoCmd = &cobra.Command{
	Use:   "manifesto [file]",
	Short: "Extract and track the promises in a party manifesto",
	Long: `Manifesto reads a plain-text manifesto, extracts promise-like sentences with
a priority and category, and stores the document for progress tracking.

Example:
  pap manifesto manifesto-2022.txt --party "Nepali Congress" --year 2022
  pap manifesto --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if manifestoList {
			return withApp(func(ctx context.Context, a *app) error {
				for _, d := range a.pipe.Manifestos.List() {
					fmt.Printf("%-40s %-24s %d  %3d promises  %3d%% fulfilled\n", d.ID, d.Party, d.Year, len(d.ExtractedClaims), d.Completion)
				}
				return nil
			})
		}
		if len(args) != 1 {
			return fmt.Errorf("give a manifesto file or --list")
		}

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read manifesto: %w", err)
		}
		return withApp(func(ctx context.Context, a *app) error {
			doc, err := a.pipe.Manifestos.Add(manifestoParty, manifestoYear, string(text))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Stored %s with %d promises\n", doc.ID, len(doc.ExtractedClaims))
			return printJSON(pipeline.ManifestoSummary{ManifestoDocument: doc, Completion: doc.Completion()})
		})
	},
}

func init() {
	rootCmd.AddCommand(manifestoCmd)

	manifestoCmd.Flags().StringVar(&manifestoParty, "party", "", "party name")
	manifestoCmd.Flags().IntVar(&manifestoYear, "year", 0, "election year (default current year)")
	manifestoCmd.Flags().BoolVar(&manifestoList, "list", false, "list stored manifestos")
}
