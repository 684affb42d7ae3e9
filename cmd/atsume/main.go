// Package main is the Atsume CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/embedding"
	"github.com/hyperjump/atsume/internal/ingest"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/search"
	"github.com/hyperjump/atsume/internal/server"
	"github.com/hyperjump/atsume/internal/storage"
	"github.com/hyperjump/atsume/internal/vectorstore"
	"github.com/hyperjump/atsume/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/atsume/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
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
	case "ingest":
		runIngest()
	case "search":
		runSearch()
	case "context":
		runContext()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("atsume version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: atsume <command> [flags]

Commands:
  server    Start the retrieval API server
  ingest    Ingest a text file into a running server
  search    Search a running server
  context   Assemble a RAG context block from a running server
  status    Show corpus status of a running server
  version   Print version`)
}

// components holds everything the server needs, for ordered shutdown.
type components struct {
	store    *storage.SQLiteStore
	vectors  *vectorstore.MemoryStore
	embedder embedding.Embedder
	engine   *search.Engine
	ingester *ingest.Ingester
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	vectors, err := vectorstore.NewMemoryStore(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	if err := vectors.Load(cfg.Storage.VectorStorePath); err != nil {
		return nil, fmt.Errorf("load vector store: %w", err)
	}

	var embedder embedding.Embedder
	if cfg.Embedding.Endpoint != "" {
		httpEmbedder, err := embedding.NewHTTPEmbedder(
			cfg.Embedding.Endpoint,
			cfg.Embedding.Model,
			cfg.Embedding.APIKey(),
			cfg.Embedding.Dimensions,
		)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		embedder = embedding.NewCachedEmbedder(httpEmbedder, cfg.Embedding.CacheSize)
	} else {
		logger.Warn("no embedding endpoint configured, using mock embedder")
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}

	stats := search.NewStats()
	var opts []search.EngineOption
	if cfg.Context.TokenEstimator == "tiktoken" {
		estimator, err := search.NewTiktokenEstimator(cfg.Context.TiktokenEncoding)
		if err != nil {
			return nil, fmt.Errorf("create token estimator: %w", err)
		}
		opts = append(opts, search.WithTokenEstimator(estimator))
	}
	engine := search.NewEngine(embedder, vectors, store, store, &cfg.Search, stats, logger, opts...)
	chunker := ingest.NewChunker(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	ingester := ingest.NewIngester(store, embedder, vectors, chunker, cfg.Embedding.Model, logger)

	return &components{
		store:    store,
		vectors:  vectors,
		embedder: embedder,
		engine:   engine,
		ingester: ingester,
	}, nil
}

func (c *components) close(cfg *config.Config, logger *zap.Logger) {
	if err := c.vectors.Save(cfg.Storage.VectorStorePath); err != nil {
		logger.Error("failed to save vector store", zap.Error(err))
	}
	_ = c.embedder.Close()
	_ = c.vectors.Close()
	_ = c.store.Close()
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

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("initialization failed", zap.Error(err))
	}
	defer comps.close(cfg, logger)

	srv := server.NewServer(comps.engine, comps.ingester, comps.store, &cfg.Server, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()
	<-done

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// serverURL resolves the base URL of a running server from config.
func serverURL(cfg *config.Config) string {
	return fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	title := fs.String("title", "", "document title")
	language := fs.String("language", "", "document language")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: atsume ingest [flags] <file>")
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}
	input := models.DocumentInput{
		Filename: filepath.Base(path),
		Title:    *title,
		Language: *language,
		Content:  string(content),
	}
	var result map[string]string
	if err := postJSON(serverURL(cfg)+"/api/v1/documents", input, &result); err != nil {
		fmt.Printf("Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested document %s\n", result["id"])
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	searchType := fs.String("type", "hybrid", "search type: semantic, hybrid, or lexical")
	topK := fs.Int("top-k", 10, "number of results")
	minSim := fs.Float64("min-similarity", 0, "minimum similarity threshold")
	highlight := fs.Bool("highlight", false, "highlight matched terms")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: atsume search [flags] <query>")
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	query := models.SearchQuery{
		Query:         fs.Arg(0),
		SearchType:    models.SearchType(*searchType),
		TopK:          *topK,
		MinSimilarity: *minSim,
		Highlight:     *highlight,
	}
	var resp models.SearchResponse
	if err := postJSON(serverURL(cfg)+"/api/v1/search", query, &resp); err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d results (%.3fs)\n\n", resp.TotalResults, resp.SearchTime)
	for _, result := range resp.Results {
		source := "unknown"
		if result.Document != nil {
			source = result.Document.Filename
		}
		fmt.Printf("%2d. [%.3f] %s\n    %s\n\n",
			result.Rank, result.SimilarityScore, source,
			utils.Truncate(result.Chunk.Content, 160))
	}
}

func runContext() {
	fs := flag.NewFlagSet("context", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	maxTokens := fs.Int("max-tokens", 0, "token budget (0 uses server default)")
	maxChunks := fs.Int("max-chunks", 0, "chunk budget (0 uses server default)")
	minSim := fs.Float64("min-similarity", 0, "minimum similarity threshold")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: atsume context [flags] <query>")
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	req := models.ContextRetrievalRequest{
		Query:         fs.Arg(0),
		MaxTokens:     *maxTokens,
		MaxChunks:     *maxChunks,
		MinSimilarity: *minSim,
	}
	var resp models.ContextRetrievalResponse
	if err := postJSON(serverURL(cfg)+"/api/v1/context", req, &resp); err != nil {
		fmt.Printf("Context assembly failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(resp.Context)
	fmt.Printf("--- %d chunks, ~%d tokens, truncated=%v\n",
		len(resp.ChunksUsed), resp.TotalTokens, resp.Truncated)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	u, err := url.JoinPath(serverURL(cfg), "status")
	if err != nil {
		fmt.Printf("Bad server URL: %v\n", err)
		os.Exit(1)
	}
	resp, err := http.Get(u)
	if err != nil {
		fmt.Printf("Status request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

// postJSON posts payload to u and decodes the JSON response into out.
func postJSON(u string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := http.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp["error"] != "" {
			return fmt.Errorf("%s", errResp["error"])
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
