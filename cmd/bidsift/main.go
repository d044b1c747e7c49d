// Package main is the bidsift CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/classify"
	"github.com/hyperjump/bidsift/internal/cli"
	"github.com/hyperjump/bidsift/internal/config"
	"github.com/hyperjump/bidsift/internal/embedding"
	"github.com/hyperjump/bidsift/internal/export"
	"github.com/hyperjump/bidsift/internal/extract"
	"github.com/hyperjump/bidsift/internal/fastpath"
	"github.com/hyperjump/bidsift/internal/ingest"
	"github.com/hyperjump/bidsift/internal/metrics"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
	"github.com/hyperjump/bidsift/internal/pipeline"
	"github.com/hyperjump/bidsift/internal/scoring"
	"github.com/hyperjump/bidsift/internal/server"
	"github.com/hyperjump/bidsift/internal/storage"
	"github.com/hyperjump/bidsift/internal/vocab"
	"github.com/hyperjump/bidsift/internal/watcher"
	"github.com/hyperjump/bidsift/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bidsift/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "bidsift serve" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "score":
		runScore()
	case "run":
		runPipeline()
	case "extract":
		runExtract()
	case "trades":
		runTrades()
	case "lint":
		runLint()
	case "search":
		runSearch()
	case "export":
		runExport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("bidsift version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// "bidsift score docs/ -trade signage" would otherwise ignore -trade.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseTrades splits a comma-separated -trades flag value into trade codes.
func parseTrades(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	trades := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			trades = append(trades, t)
		}
	}
	return trades
}

func mustFormat(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func mustLogger(debug bool) *zap.Logger {
	logger, err := utils.NewLogger(debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func mustLoadConfig(path string) (*config.Config, string) {
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved
}

// signalContext returns a context cancelled by SIGINT/SIGTERM, so an
// interrupted run aborts pending classifier batches and unstarted
// fast-path work while keeping already-computed scores valid.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (pattern reloads, request details, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath := mustLoadConfig(*configPath)
	debugMode := cfg.Debug || *debug
	logger := mustLogger(debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Patterns.Watch {
		watchOpts := []watcher.WatcherOption{
			watcher.WithOnChange(func() {
				components.Metrics.SetPatternsRegistered(components.Registry.Len())
			}),
		}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		patternWatch := watcher.NewWatcher(cfg.Patterns.Dir, components.Registry, watchOpts...)
		if err := patternWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start pattern watcher", zap.Error(err))
		}
		defer patternWatch.Stop()
	}

	srv := server.NewServer(
		components.Registry,
		components.Scorer,
		components.FastPath,
		components.Runner,
		components.Store,
		components.Metrics,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runScore() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	trade := fs.String("trade", "", "trade code to score against (required)")
	threshold := fs.Float64("threshold", 0, "only show non-excluded scores at or above this value (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 || *trade == "" {
		fmt.Println("Usage: bidsift score -trade <code> [flags] <file-or-directory>")
		os.Exit(1)
	}
	format := mustFormat(*outputFormat)

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := signalContext()
	defer cancel()

	docs, err := scanPath(ctx, components.Scanner, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	scores := components.Scorer.ScoreDocuments(docs, *trade)
	if *threshold > 0 {
		scores = scoring.HighPriorityDocuments(scores, *threshold)
	} else {
		ranked := make([]models.DocumentScore, len(scores))
		copy(ranked, scores)
		scoring.SortByRank(ranked)
		scores = ranked
	}
	if err := cli.WriteScores(os.Stdout, scores, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runPipeline() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	trades := fs.String("trades", "", "comma-separated trade codes (default: all registered)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: bidsift run [flags] <directory>")
		os.Exit(1)
	}
	format := mustFormat(*outputFormat)

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := signalContext()
	defer cancel()

	docs, err := scanPath(ctx, components.Scanner, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	result, err := components.Runner.Run(ctx, docs, parseTrades(*trades))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		// The partial result is still printed below when present.
		if result == nil {
			os.Exit(1)
		}
	}
	writeRunResult(result, format)
}

func writeRunResult(result *pipeline.RunResult, format cli.OutputFormat) {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	for _, trade := range sortedTrades(result.Decisions) {
		if err := cli.WriteDecisions(os.Stdout, trade, result.Decisions[trade], format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	}
	cli.WriteRunSummary(os.Stdout, &result.Summary)
}

func sortedTrades(decisions map[string][]models.Decision) []string {
	trades := make([]string, 0, len(decisions))
	for trade := range decisions {
		trades = append(trades, trade)
	}
	// Sorted so repeated runs print trades in a stable order.
	for i := 1; i < len(trades); i++ {
		for j := i; j > 0 && trades[j] < trades[j-1]; j-- {
			trades[j], trades[j-1] = trades[j-1], trades[j]
		}
	}
	return trades
}

func runExtract() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	trade := fs.String("trade", "", "trade code for sign-type tagging (optional)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: bidsift extract [flags] <file>")
		os.Exit(1)
	}
	format := mustFormat(*outputFormat)

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	path := fs.Arg(0)
	doc, err := components.Scanner.ScanFile(context.Background(), path, filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	var p patterns.TradePatterns
	if *trade != "" {
		p, _ = components.Registry.Get(*trade)
	}
	result := components.FastPath.TryFastPathExtraction(doc, p)
	if err := cli.WriteFastPathResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runTrades() {
	fs := flag.NewFlagSet("trades", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	registry := patterns.NewRegistry(patterns.WithLogger(logger))
	loadPatterns(cfg, registry, logger)

	trades := registry.Trades()
	if *outputFormat == "json" {
		out := make(map[string]patterns.TradePatterns, len(trades))
		for _, trade := range trades {
			p, _ := registry.Get(trade)
			out[trade] = p
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	for _, trade := range trades {
		p, _ := registry.Get(trade)
		fmt.Printf("%-16s priority %d, %d content pattern(s), %d sign type(s), %d filename keyword(s)\n",
			trade, p.Priority, len(p.Content), len(p.SignTypes), len(p.FilenameKeywords))
	}
}

func runLint() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: bidsift lint [flags] <bid-directory>")
		fmt.Println("Lints registered pattern files against the terms that actually occur in the bid set.")
		os.Exit(1)
	}

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	registry := patterns.NewRegistry(patterns.WithLogger(logger))
	loadPatterns(cfg, registry, logger)

	idx, err := vocab.NewIndex("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build term index: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	scanner := ingest.NewScanner(
		newExtractor(cfg, logger),
		ingest.WithLogger(logger),
		ingest.WithExtensions(cfg.Ingest.Extensions),
		ingest.WithMaxSampleBytes(cfg.Scoring.MaxContentSampleBytes),
		ingest.WithVocabIndex(idx),
	)
	ctx, cancel := signalContext()
	defer cancel()
	docs, err := scanner.ScanDirectory(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d document(s) from %s\n\n", len(docs), fs.Arg(0))

	linter := vocab.NewLinter(idx)
	clean := true
	for _, trade := range registry.Trades() {
		p, _ := registry.Get(trade)
		findings, err := linter.LintTrade(trade, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lint failed for trade %s: %v\n", trade, err)
			os.Exit(1)
		}
		for _, f := range findings {
			clean = false
			fmt.Printf("%s: %s term %q — word %q not found in corpus\n", f.Trade, f.Where, f.PatternTerm, f.Word)
			for _, sug := range f.Suggestions {
				fmt.Printf("    did you mean %q? (distance %d, %d doc(s))\n", sug.Term, sug.Distance, sug.Frequency)
			}
		}
	}
	if clean {
		fmt.Println("All pattern terms occur in the corpus.")
	}
}

func runSearch() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dir := fs.String("dir", "", "bid directory to index and search (required)")
	limit := fs.Int("limit", 10, "number of results")
	_ = fs.Parse(args)

	if fs.NArg() < 1 || *dir == "" {
		fmt.Println("Usage: bidsift search -dir <bid-directory> [flags] <term...>")
		fmt.Println("Shows which documents mention a term, for pattern authoring.")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	idx, err := vocab.NewIndex("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build term index: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	scanner := ingest.NewScanner(
		newExtractor(cfg, logger),
		ingest.WithLogger(logger),
		ingest.WithExtensions(cfg.Ingest.Extensions),
		ingest.WithMaxSampleBytes(cfg.Scoring.MaxContentSampleBytes),
		ingest.WithVocabIndex(idx),
	)
	ctx, cancel := signalContext()
	defer cancel()
	docs, err := scanner.ScanDirectory(ctx, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		names[doc.ID] = doc.Filename
	}

	hits, err := idx.Search(ctx, query, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if len(hits) == 0 {
		fmt.Printf("No documents mention %q\n", query)
		return
	}
	for _, hit := range hits {
		fmt.Printf("%8.4f  %s\n", hit.Score, names[hit.DocumentID])
	}
}

func runExport() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	trades := fs.String("trades", "", "comma-separated trade codes (default: all registered)")
	out := fs.String("out", "bidsift-results.xlsx", "output workbook path")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: bidsift export [flags] <directory>")
		os.Exit(1)
	}

	cfg, _ := mustLoadConfig(*configPath)
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := signalContext()
	defer cancel()

	docs, err := scanPath(ctx, components.Scanner, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	result, err := components.Runner.Run(ctx, docs, parseTrades(*trades))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}

	exporter := export.NewExporter(export.WithLogger(logger))
	if err := exporter.WriteWorkbook(*out, result); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	cli.WriteRunSummary(os.Stdout, &result.Summary)
	fmt.Printf("Workbook written to %s\n", *out)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Trades                int64                  `json:"trades"`
	ClassificationsCached int64                  `json:"classifications_cached"`
	Runs                  int64                  `json:"runs"`
	DiskUsageBytes        *int64                 `json:"disk_usage_bytes,omitempty"`
	Config                map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _ := mustLoadConfig(*configPath)
		logger := mustLogger(cfg.Debug)
		defer logger.Sync()

		registry := patterns.NewRegistry(patterns.WithLogger(logger))
		loadPatterns(cfg, registry, logger)

		store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx := context.Background()
		classifications, err := store.CountClassifications(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count classifications failed: %v\n", err)
			os.Exit(1)
		}
		runs, err := store.CountRuns(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count runs failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Trades:                int64(registry.Len()),
			ClassificationsCached: classifications,
			Runs:                  runs,
			Config: map[string]interface{}{
				"patterns_dir":        cfg.Patterns.Dir,
				"classifier_provider": cfg.Classifier.Provider,
				"database_path":       cfg.Storage.DatabasePath,
			},
		}
		if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Vocab.IndexPath); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("trades:                  %d   # registered trade pattern sets\n", status.Trades)
		fmt.Printf("runs:                    %d   # recorded pipeline runs\n", status.Runs)
		fmt.Printf("classifications_cached:  %d   # AI calls saved on repeat filenames\n", status.ClassificationsCached)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:        %d\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"patterns_dir", "classifier_provider", "database_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-24s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// scanPath scans a directory, or wraps a single file as a one-document batch.
func scanPath(ctx context.Context, scanner *ingest.Scanner, path string) ([]models.DocumentInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if info.IsDir() {
		return scanner.ScanDirectory(ctx, path)
	}
	doc, err := scanner.ScanFile(ctx, path, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return []models.DocumentInfo{doc}, nil
}

// Components holds initialized services.
type Components struct {
	Registry *patterns.Registry
	Scorer   *scoring.Scorer
	FastPath *fastpath.FastPath
	Runner   *pipeline.Runner
	Store    storage.Store
	Scanner  *ingest.Scanner
	Metrics  *metrics.Metrics
	embedder embedding.Embedder
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
}

func newExtractor(cfg *config.Config, logger *zap.Logger) *extract.Extractor {
	return extract.NewExtractor(
		extract.WithLogger(logger),
		extract.WithMaxSampleBytes(cfg.Scoring.MaxContentSampleBytes),
	)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	registry := patterns.NewRegistry(patterns.WithLogger(logger))
	loadPatterns(cfg, registry, logger)

	m := metrics.New()
	m.SetPatternsRegistered(registry.Len())

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	scorerOpts := []scoring.Option{}
	if debug {
		scorerOpts = append(scorerOpts, scoring.WithLogger(logger))
	}
	scorer := scoring.NewScorer(registry, &cfg.Scoring, scorerOpts...)

	fpOpts := []fastpath.Option{}
	if debug {
		fpOpts = append(fpOpts, fastpath.WithLogger(logger))
	}
	fp := fastpath.NewFastPath(&cfg.FastPath, fpOpts...)

	classifier, embedder := buildClassifier(cfg, registry, store, logger)

	runnerOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithStore(store),
		pipeline.WithMetrics(m),
		pipeline.WithBoostConfig(&cfg.Boost),
	}
	if classifier != nil {
		runnerOpts = append(runnerOpts, pipeline.WithClassifier(cfg.Classifier.Provider, classifier))
	}
	runner := pipeline.NewRunner(registry, scorer, fp, runnerOpts...)

	scanner := ingest.NewScanner(
		newExtractor(cfg, logger),
		ingest.WithLogger(logger),
		ingest.WithExtensions(cfg.Ingest.Extensions),
		ingest.WithMaxSampleBytes(cfg.Scoring.MaxContentSampleBytes),
	)

	return &Components{
		Registry: registry,
		Scorer:   scorer,
		FastPath: fp,
		Runner:   runner,
		Store:    store,
		Scanner:  scanner,
		Metrics:  m,
		embedder: embedder,
	}, nil
}

// loadPatterns loads the pattern directory into the registry, reporting
// bad files individually. One trade's broken file never blocks the rest.
func loadPatterns(cfg *config.Config, registry *patterns.Registry, logger *zap.Logger) {
	n, errs := patterns.LoadDirInto(cfg.Patterns.Dir, registry)
	for _, err := range errs {
		logger.Warn("pattern file skipped", zap.Error(err))
	}
	logger.Info("trade patterns loaded",
		zap.String("dir", cfg.Patterns.Dir),
		zap.Int("trades", n),
		zap.Int("rejected", len(errs)))
}

// buildClassifier assembles the classifier decorator stack for the
// configured provider: cache -> resilience -> provider, with batching
// outermost so one CLI invocation turns into few backend calls. A
// provider that fails to initialize degrades to heuristics-only scoring.
func buildClassifier(cfg *config.Config, registry *patterns.Registry, store storage.Store, logger *zap.Logger) (classify.Classifier, embedding.Embedder) {
	switch cfg.Classifier.Provider {
	case classify.ProviderGemini:
		gemini, err := classify.NewGeminiClassifier(context.Background(), &cfg.Classifier,
			classify.WithGeminiLogger(logger),
			classify.WithCandidateTrades(registry.Trades()))
		if err != nil {
			logger.Warn("gemini classifier unavailable, scoring is heuristics-only", zap.Error(err))
			return nil, nil
		}
		var c classify.Classifier = classify.NewResilientClassifier(gemini, &cfg.Classifier,
			classify.WithResilientLogger(logger))
		c = classify.NewCachedClassifier(c, store, classify.WithCachedLogger(logger))
		return classify.NewBatchClassifier(c, cfg.Classifier.BatchSize, classify.WithBatchLogger(logger)), nil

	case classify.ProviderLocal:
		var embedder embedding.Embedder
		onnxEmbedder, err := embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embeddings", zap.Error(err))
			embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		} else {
			embedder = onnxEmbedder
		}
		prototypes := embedding.NewPrototypes(embedder)
		for _, trade := range registry.Trades() {
			p, _ := registry.Get(trade)
			if err := prototypes.Build(context.Background(), trade, tradeExemplars(trade, p)); err != nil {
				logger.Warn("prototype build failed", zap.String("trade", trade), zap.Error(err))
			}
		}
		local := classify.NewLocalClassifier(prototypes, classify.WithLocalLogger(logger))
		return classify.NewBatchClassifier(local, cfg.Classifier.BatchSize, classify.WithBatchLogger(logger)), embedder

	default:
		return nil, nil
	}
}

// tradeExemplars collects representative phrases for a trade's embedding
// prototype from its registered patterns.
func tradeExemplars(trade string, p patterns.TradePatterns) []string {
	exemplars := []string{trade}
	exemplars = append(exemplars, p.FilenameKeywords...)
	for _, cp := range p.Content {
		if !cp.IsExclusion {
			exemplars = append(exemplars, cp.Term)
		}
	}
	for _, st := range p.SignTypes {
		exemplars = append(exemplars, st.Terms...)
	}
	return exemplars
}

func printUsage() {
	fmt.Println(`bidsift - construction bid document triage

Usage:
  bidsift serve [flags]                 Start the HTTP server
  bidsift score [flags] <path>          Score documents for one trade
  bidsift run [flags] <dir>             Run the full triage pipeline
  bidsift extract [flags] <file>        Attempt fast-path extraction on one file
  bidsift trades [flags]                List registered trades
  bidsift lint [flags] <dir>            Lint pattern terms against a bid set
  bidsift search [flags] <term...>      Find documents mentioning a term
  bidsift export [flags] <dir>          Run the pipeline and export to .xlsx
  bidsift status [flags]                Show store and registry status
  bidsift version                       Show version
  bidsift help                          Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/bidsift/config.yaml)
  --debug            Enable debug logging (pattern reloads, request details, etc.)

Score Flags:
  --config string     Config file path
  --trade string      Trade code to score against (required)
  --threshold float   Only show non-excluded scores at or above this value
  --output string     Output format: text, compact, or json (default: text)

Run/Export Flags:
  --config string    Config file path
  --trades string    Comma-separated trade codes (default: all registered)
  --output string    Output format (run only): text, compact, or json
  --out string       Output workbook path (export only)

Extract Flags:
  --config string    Config file path
  --trade string     Trade code for sign-type tagging (optional)
  --output string    Output format: text, compact, or json

Search Flags:
  --config string    Config file path
  --dir string       Bid directory to index and search (required)
  --limit int        Number of results (default: 10)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  bidsift serve
  bidsift score -trade signage ./bid-set
  bidsift run -trades signage,glazing ./bid-set
  bidsift extract -trade signage schedule.xlsx
  bidsift lint ./bid-set
  bidsift search -dir ./bid-set "exit sign"
  bidsift export -trades signage -out results.xlsx ./bid-set
  bidsift status --output json`)
}
