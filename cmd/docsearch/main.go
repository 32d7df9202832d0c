// Package main is the docsearch CLI entry point.
package main

import (
	"bytes"
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

	"github.com/docuvault/docsearch/internal/analytics"
	"github.com/docuvault/docsearch/internal/cli"
	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/maintenance"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/search"
	"github.com/docuvault/docsearch/internal/server"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/docuvault/docsearch/internal/vector"
	"github.com/docuvault/docsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so "docsearch server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
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
	case "server":
		runServer()
	case "search":
		runSearch()
	case "index":
		runIndexDocument()
	case "remove":
		runRemove()
	case "reindex":
		runReindex()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("docsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Engine,
		components.Maintainer,
		components.Storage,
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
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

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: docsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  docsearch search quarterly budget
  docsearch search --mode lexical "exact words"
  docsearch search --mode semantic --threshold 0.4 contract renewal
  docsearch search --category finance --limit 20 invoice
  docsearch search --output json invoice   # structured JSON for other apps
`)
}

func runSearch() {
	searchArgs := argsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 10, "number of results")
	threshold := fs.Float64("threshold", 0, "minimum result score (0..1)")
	mode := fs.String("mode", "hybrid", "search mode: semantic, lexical, or hybrid")
	category := fs.String("category", "", "filter by category")
	owner := fs.String("owner", "", "filter by owner id")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	query := &models.SearchQuery{
		Query:     queryStr,
		Limit:     *limit,
		Threshold: *threshold,
		Mode:      models.SearchMode(*mode),
	}
	if *category != "" || *owner != "" {
		query.Filters = &models.SearchFilters{Category: *category, OwnerID: *owner}
	}

	if *serverURL != "" {
		// Use the HTTP API when a server is running (avoids SQLite lock conflicts).
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	components, logger := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	response, err := components.Engine.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIndexDocument() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	force := fs.Bool("force", false, "re-embed even if already indexed")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: docsearch index [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	url := *serverURL + "/api/v1/index/" + docID
	if *force {
		url += "?force=true"
	}
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusAccepted:
		fmt.Printf("Indexing scheduled: %s\n", docID)
	case http.StatusOK:
		fmt.Printf("Already indexed: %s (use --force to re-embed)\n", docID)
	default:
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Index failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: docsearch remove [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/index/"+docID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Remove failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		Removed bool `json:"removed"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Removed {
		fmt.Printf("Removed from index: %s\n", docID)
	} else {
		fmt.Printf("Not in index: %s\n", docID)
	}
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Post(*serverURL+"/api/v1/index/reindex", "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	var ack maintenance.ReindexAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
		os.Exit(1)
	}
	switch resp.StatusCode {
	case http.StatusAccepted:
		fmt.Printf("Reindex started: %d documents\n", ack.TotalDocuments)
	case http.StatusConflict:
		fmt.Println("Reindex already running")
	default:
		fmt.Fprintf(os.Stderr, "Reindex failed (%d)\n", resp.StatusCode)
		os.Exit(1)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var out map[string]interface{}
	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/index/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Stats failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustInitialize(*configPath)
		defer logger.Sync()
		defer components.Close()

		ctx := context.Background()
		stats := components.Maintainer.Stats(ctx)
		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		out = map[string]interface{}{
			"index":            stats,
			"stored_documents": docCount,
			"reindexing":       components.Maintainer.Reindexing(),
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage    storage.DocumentStore
	Embedder   embedding.Embedder
	Index      *vector.Index
	Engine     *search.Engine
	Maintainer *maintenance.Maintainer
}

func (c *Components) Close() {
	if c.Maintainer != nil {
		c.Maintainer.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func mustInitialize(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return components, logger
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder := embedding.New(&cfg.Embedding, logger)

	index, err := vector.NewIndex(cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	maintainer, err := maintenance.NewMaintainer(
		store, embedder, index,
		cfg.Storage.VectorIndexPath,
		&cfg.Index,
		cfg.Search.ScanPageSize,
		logger,
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize maintainer: %w", err)
	}
	maintainer.Restore()

	var recorder analytics.Recorder
	if !cfg.Storage.AnalyticsDisabled {
		rec, err := analytics.NewSQLiteRecorder(store.DB())
		if err != nil {
			logger.Warn("analytics disabled, recorder init failed", zap.Error(err))
		} else {
			recorder = rec
		}
	}

	engine := search.NewEngine(store, embedder, index, recorder, &cfg.Search, logger)

	logger.Info("components initialized",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("embedder_ready", embedder.Ready()),
		zap.Int("indexed_documents", index.Size()),
	)

	return &Components{
		Storage:    store,
		Embedder:   embedder,
		Index:      index,
		Engine:     engine,
		Maintainer: maintainer,
	}, nil
}

func printUsage() {
	fmt.Println(`docsearch - Hybrid semantic document search

Usage:
  docsearch server [flags]            Start the HTTP server
  docsearch search [flags] <query>    Search documents
  docsearch index [flags] <doc-id>    Schedule (re)indexing of a document
  docsearch remove [flags] <doc-id>   Remove a document from the index
  docsearch reindex [flags]           Rebuild the whole vector index
  docsearch stats [flags]             Show index statistics
  docsearch version                   Show version
  docsearch help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/docsearch/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string     Config file path (for direct storage mode)
  --server string     Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int         Number of results (default: 10)
  --threshold float   Minimum result score 0..1 (default: 0)
  --mode string       semantic, lexical, or hybrid (default: hybrid)
  --category string   Filter by category
  --owner string      Filter by owner id
  --output string     text, compact, or json (default: text)

Examples:
  docsearch server
  docsearch search quarterly budget report
  docsearch search --mode semantic --threshold 0.4 "contract renewal"
  docsearch index doc-123 --force
  docsearch reindex
  docsearch stats --output json`)
}
