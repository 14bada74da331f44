package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"promptforge/internal/component"
	"promptforge/internal/composer"
	"promptforge/internal/config"
	"promptforge/internal/library"
	"promptforge/internal/logging"
	"promptforge/internal/metrics"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	// Global flags
	verbose    bool
	corpusPath string
	configPath string

	// generate flags
	genCategory string
	genIntent   string
	genBrand    string
	genCount    int
	genBatches  int
	genJSON     bool

	// Runtime state built in PersistentPreRunE
	cfg       *config.Config
	workspace string
	logger    *zap.Logger
)

// Terminal styles for batch output
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(100)
	metricStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promptforge",
	Short: "promptforge - diversity-aware prompt composition engine",
	Long: `promptforge decomposes a corpus of reference creative prompts into typed,
reusable components (pose, outfit, location, lighting, camera, styling,
brand elements) and recombines them into new, internally-consistent prompts.

Every batch of N generated prompts is guaranteed mutually diverse: pairwise
similarity is bounded and component reuse within a batch is capped.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupRuntime()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// setupRuntime loads the file config, applies flag precedence (flags beat
// file, file beats defaults), and initializes both loggers.
func setupRuntime() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if corpusPath == "" {
		corpusPath = cfg.Corpus.Path
	}

	zcfg := zap.NewProductionConfig()
	if lvl, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose || cfg.Logging.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if workspace == "" {
		workspace, _ = os.Getwd()
	}
	if workspace != "" {
		_ = logging.Initialize(workspace)
	}
	return nil
}

// generateCmd composes one or more batches from an ingested corpus
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compose a batch of diverse prompts from a corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := ingestCorpus(ctx)
		if err != nil {
			return err
		}

		builder := composer.NewBuilder(db)
		builder.SetConfig(cfg.Composer)
		tracker := metrics.NewTracker()
		tracker.SetCorpusSize(db.Count())
		store := metrics.NewStore(workspace)

		req := component.BatchRequest{
			Category:   genCategory,
			UserIntent: genIntent,
			Brand:      genBrand,
			Count:      genCount,
		}

		// Batches are independent sessions sharing the read-safe
		// database; each gets its own diversity engine.
		results := make([][]*component.ComposedPrompt, genBatches)
		batchIDs := make([]string, genBatches)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < genBatches; i++ {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				prompts, err := builder.ComposeBatch(req)
				if err != nil {
					logger.Warn("Batch incomplete",
						zap.Int("batch", i),
						zap.Int("composed", len(prompts)),
						zap.Error(err))
					if len(prompts) == 0 {
						return err
					}
				}
				results[i] = prompts
				batchIDs[i] = uuid.NewString()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, prompts := range results {
			bundles := make([]*component.Bundle, len(prompts))
			for j, p := range prompts {
				bundles[j] = p.Bundle
			}
			bm := tracker.TrackBatch(batchIDs[i], genCategory, prompts, bundles)
			if err := store.SaveBatch(bm); err != nil {
				logger.Warn("Could not persist batch metrics", zap.Error(err))
			}

			if genJSON {
				if err := printJSON(prompts, bm); err != nil {
					return err
				}
				continue
			}
			renderBatch(i+1, prompts, bm)
		}

		if !genJSON && genBatches > 1 {
			renderAggregate(tracker.AggregatedMetrics())
		}
		return nil
	},
}

// corpusCmd inspects an ingested corpus
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the component corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := ingestCorpus(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Corpus summary"))
		fmt.Printf("%s %d\n", labelStyle.Render("Components:"), db.Count())
		fmt.Printf("%s %v\n", labelStyle.Render("Categories:"), db.Categories())
		if brands := db.Brands(); len(brands) > 0 {
			fmt.Printf("%s %v\n", labelStyle.Render("Brands:"), brands)
		}
		for _, slot := range component.AllSlotTypes() {
			if n := db.CountBySlot(slot); n > 0 {
				fmt.Printf("  %-14s %d\n", slot, n)
			}
		}
		return nil
	},
}

// metricsCmd renders persisted batch metrics from prior runs.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Aggregate metrics across previously composed batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := metrics.NewStore(workspace)
		batches, err := store.LoadAll()
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println(faintStyle.Render("No batch metrics recorded yet. Run generate first."))
			return nil
		}

		tracker := metrics.NewTracker()
		fmt.Println(titleStyle.Render("Batches"))
		for _, bm := range batches {
			tracker.ImportBatch(bm)
			fmt.Println(metricStyle.Render(fmt.Sprintf(
				"%s | size %d | avg similarity %.2f | detail %s | %s",
				bm.BatchID, bm.BatchSize,
				bm.Diversity.AvgPairwiseSimilarity,
				bm.Quality.DetailLevel,
				bm.TrackedAt.Format("2006-01-02 15:04"))))
		}
		renderAggregate(tracker.AggregatedMetrics())
		return nil
	},
}

func ingestCorpus(ctx context.Context) (*library.Database, error) {
	if corpusPath == "" {
		return nil, fmt.Errorf("no corpus configured: pass --corpus or set corpus.path in %s", configPath)
	}

	db := library.NewDatabase()
	db.SetConfig(cfg.Library)
	loader := library.NewLoader(db)
	n, err := loader.Initialize(ctx, corpusPath)
	if err != nil {
		return nil, fmt.Errorf("corpus ingestion failed: %w", err)
	}
	logger.Info("Corpus ingested", zap.String("path", corpusPath), zap.Int("components", n))
	return db, nil
}

func renderBatch(num int, prompts []*component.ComposedPrompt, bm metrics.BatchMetrics) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Batch %d (%s)", num, bm.BatchID)))
	for i, p := range prompts {
		fmt.Printf("\n%s %s\n", labelStyle.Render(fmt.Sprintf("%d. %s", i+1, p.Title)),
			faintStyle.Render(fmt.Sprintf("(diversity %.2f, %d words)", p.DiversityScore, p.WordCount)))
		fmt.Println(faintStyle.Render(p.Description))
		fmt.Println(promptStyle.Render(p.Prompt))
	}

	fmt.Println()
	fmt.Println(metricStyle.Render(fmt.Sprintf(
		"avg similarity %.2f | pose repetition %.0f%% | location repetition %.0f%% | detail %s",
		bm.Diversity.AvgPairwiseSimilarity,
		bm.Diversity.PoseRepetitionRate,
		bm.Diversity.LocationRepetitionRate,
		bm.Quality.DetailLevel)))
}

func renderAggregate(agg metrics.AggregatedMetrics) {
	fmt.Println()
	fmt.Println(titleStyle.Render("Aggregate"))
	fmt.Println(metricStyle.Render(fmt.Sprintf(
		"batches %d | avg similarity %.2f | avg words %.0f | detail levels %v",
		agg.BatchCount, agg.AvgPairwiseSimilarity, agg.AvgWordCount, agg.DetailLevels)))
}

func printJSON(prompts []*component.ComposedPrompt, bm metrics.BatchMetrics) error {
	out := struct {
		BatchID string                      `json:"batch_id"`
		Prompts []*component.ComposedPrompt `json:"prompts"`
		Metrics metrics.BatchMetrics        `json:"metrics"`
	}{bm.BatchID, prompts, bm}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "corpus path (YAML file, directory, or SQLite database)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(".promptforge", "config.yaml"), "path to the config file")

	generateCmd.Flags().StringVar(&genCategory, "category", "", "corpus category to draw from")
	generateCmd.Flags().StringVar(&genIntent, "intent", "", "free-text creative intent")
	generateCmd.Flags().StringVar(&genBrand, "brand", "", "brand to feature")
	generateCmd.Flags().IntVar(&genCount, "count", 4, "concepts per batch")
	generateCmd.Flags().IntVar(&genBatches, "batches", 1, "number of independent batches")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "emit JSON instead of styled output")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(metricsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
