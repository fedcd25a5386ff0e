package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/pipeline"
	"github.com/ppiankov/pap/internal/validate"
	"github.com/ppiankov/pap/internal/worker"
)

var (
	discoverFile        string
	discoverConcurrency int
	discoverTimeout     time.Duration
	discoverSave        bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [url]",
	Short: "Find candidate claims on web pages",
	Long: `Discover fetches pages (honoring robots.txt and per-host rate limits) and
extracts candidate predictions and promises from their visible text.

The AI provider extracts candidates when configured; otherwise a local
heuristic picks out promise-like sentences.

Example:
  pap discover https://example.com/manifesto
  pap discover --file urls.txt --concurrency 4
  pap discover https://example.com/speech --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverFile, "file", "", "read URLs from a file, one per line")
	discoverCmd.Flags().IntVar(&discoverConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent fetches")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 10*time.Minute, "total timeout")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "record every candidate as a claim")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	var urls []string
	switch {
	case discoverFile != "" && len(args) == 0:
		lines, err := worker.ReadLines(discoverFile)
		if err != nil {
			return fmt.Errorf("read urls: %w", err)
		}
		urls = lines
	case discoverFile == "" && len(args) == 1:
		urls = args
	default:
		return fmt.Errorf("give either a url or --file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	a, err := openApp(ctx, zap.WarnLevel)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if discoverSave {
		if err := a.requirePersistence(); err != nil {
			return err
		}
	}

	if len(urls) > 1 || verbose {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "  PAP Claim Discovery\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  URLs:         %d\n", len(urls))
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", discoverConcurrency)
		a.syncBanner()
		fmt.Fprintf(os.Stderr, "\n")
	}

	var (
		mu    sync.Mutex
		found = make(map[string]*pipeline.Discovery, len(urls))
	)
	start := time.Now()
	results := worker.NewBatch(discoverConcurrency, nil, "").Run(ctx, urls, func(ctx context.Context, u string) error {
		d, err := a.pipe.Discoverer.FromURL(ctx, u)
		if err != nil {
			return err
		}
		mu.Lock()
		found[u] = d
		mu.Unlock()
		return nil
	})

	out := make([]*pipeline.Discovery, 0, len(urls))
	failed, candidates, saved := 0, 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", r.Key, r.Error)
			continue
		}
		d := found[r.Key]
		candidates += len(d.Candidates)
		fmt.Fprintf(os.Stderr, "  ✓ %s: %d candidate(s)\n", r.Key, len(d.Candidates))
		out = append(out, d)

		if discoverSave {
			saved += saveCandidates(a, d)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Pages:        %d ok, %d failed\n", len(out), failed)
	fmt.Fprintf(os.Stderr, "  Candidates:   %d\n", candidates)
	if discoverSave {
		fmt.Fprintf(os.Stderr, "  Saved:        %d\n", saved)
	}
	fmt.Fprintf(os.Stderr, "  Elapsed:      %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")

	if err := printJSON(out); err != nil {
		return err
	}
	if failed == len(urls) {
		return fmt.Errorf("all %d page(s) failed", failed)
	}
	return nil
}

// saveCandidates records candidates as claims and returns how many were stored
func saveCandidates(a *app, d *pipeline.Discovery) int {
	n := 0
	for _, c := range d.Candidates {
		name := c.ClaimantName
		if name == "" {
			name = "Unknown"
		}
		target := c.TargetDate
		if _, err := time.Parse(model.DateLayout, target); err != nil {
			target = ""
		}
		in := model.ClaimInput{
			ClaimantName:   name,
			Text:           c.Text,
			Category:       model.Category(c.Category),
			TargetDate:     target,
			VaguenessIndex: c.VaguenessIndex,
			Sources:        []model.ClaimSource{{Type: model.SourceNews, URL: d.URL}},
		}
		if err := validate.ClaimInput(&in); err != nil {
			a.log.Warn("skip discovered claim", zap.String("url", d.URL), zap.Error(err))
			continue
		}
		if _, err := a.coord.SaveClaim(in); err != nil {
			a.log.Warn("skip discovered claim", zap.String("url", d.URL), zap.Error(err))
			continue
		}
		n++
	}
	return n
}
