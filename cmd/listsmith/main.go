// Command listsmith runs one listing-generation batch: it fans a product spec
// out to the content workers, merges their outputs, runs the review pass, and
// prints the merged listing with suggested improvements.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/config"
	"github.com/merchkit/listsmith/internal/export"
	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/logging"
	"github.com/merchkit/listsmith/internal/orchestrator"
	"github.com/merchkit/listsmith/internal/session"
	"github.com/merchkit/listsmith/internal/worker"
)

// CLI flags parsed from command line.
type cliFlags struct {
	SpecPath   string
	ConfigPath string
	Format     string
	Deadline   time.Duration
	SkipReview bool
	Verbose    bool
	Version    bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("listsmith", flag.ContinueOnError)
	fs.StringVar(&flags.SpecPath, "spec", "", "path to the product spec JSON file")
	fs.StringVar(&flags.ConfigPath, "config", "", "path to listsmith.yaml")
	fs.StringVar(&flags.Format, "format", "json", "output format: json or markdown")
	fs.DurationVar(&flags.Deadline, "deadline", 0, "batch deadline override (e.g. 90s)")
	fs.BoolVar(&flags.SkipReview, "skip-review", false, "skip the review pass")
	fs.BoolVar(&flags.Verbose, "verbose", false, "print per-worker progress")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if flags.Version {
		fmt.Println(version)
		return nil
	}
	if flags.SpecPath == "" {
		return fmt.Errorf("-spec is required")
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Deadline > 0 {
		cfg.Batch.Deadline = flags.Deadline
	}
	if flags.SkipReview {
		cfg.Batch.SkipReview = true
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	spec, err := loadSpec(flags.SpecPath)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, log)
	if err != nil {
		return err
	}

	workers := worker.NewRegistry().SpawnAll(client, log)
	runner := orchestrator.NewRunner(workers, client, orchestrator.Options{
		Deadline:        cfg.Batch.Deadline,
		ConfidenceFloor: cfg.Batch.ConfidenceFloor,
		SkipReview:      cfg.Batch.SkipReview,
		Log:             log,
	})
	defer runner.Close()

	if flags.Verbose {
		go func() {
			for ev := range runner.Progress() {
				fmt.Println(orchestrator.FormatProgress(ev))
			}
		}()
	}

	merged, _ := runner.RunBatch(context.Background(), spec)

	suggestions := session.BuildSuggestions(merged, spec)
	mgr := session.NewManager(
		buildStore(cfg),
		session.NewLLMRegenerator(client, log),
		log,
	)
	sessionID, err := mgr.Create(context.Background(), merged, suggestions)
	if err != nil {
		return err
	}

	report := export.Report{SessionID: sessionID, Listing: merged, Suggestions: suggestions}
	switch flags.Format {
	case "json":
		return export.WriteJSON(os.Stdout, report)
	case "markdown":
		_, err = fmt.Fprint(os.Stdout, export.RenderMarkdown(report))
		return err
	default:
		return fmt.Errorf("unknown output format %q", flags.Format)
	}
}

// loadSpec decodes the product spec from a JSON file.
func loadSpec(path string) (listing.ProductSpec, error) {
	var spec listing.ProductSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read spec: %w", err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("decode spec: %w", err)
	}
	if spec.Name == "" {
		return spec, fmt.Errorf("spec: name is required")
	}
	return spec, nil
}

// buildStore selects the session store backend from configuration.
func buildStore(cfg *config.Config) session.Store {
	if cfg.Session.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		return session.NewRedisStore(client, cfg.Session.TTL)
	}
	return session.NewMemoryStore(cfg.Session.TTL)
}

// buildClient selects the OpenAI backend, or the scripted mock for offline
// runs when no API key is configured.
func buildClient(cfg *config.Config, log *zap.Logger) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		log.Warn("no llm.api_key configured; using offline mock backend")
		return &llm.MockClient{}, nil
	}
	return llm.NewOpenAIClient(llm.Settings{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
}

