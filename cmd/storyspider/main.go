package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/storyspider/internal/config"
	"github.com/IshaanNene/storyspider/internal/engine"
	"github.com/IshaanNene/storyspider/internal/fetcher"
	"github.com/IshaanNene/storyspider/internal/ledger"
	"github.com/IshaanNene/storyspider/internal/parser"
	"github.com/IshaanNene/storyspider/internal/seeds"
)

var (
	cfgFile     string
	verbose     bool
	filterSpec  string
	dbHost      string
	dbPort      int
	dbName      string
	dbColl      string
	seedURLs    []string
	fetcherType string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storyspider",
		Short: "Incremental news-story crawler writing to a shared ^-delimited ledger",
		Long: `storyspider scans seed listing pages for story links, extracts each new
story's title and text, and appends one line per story to a ledger file.

Seeds come from a MongoDB collection (the "url" field of every document) or
from --seed flags. URLs already recorded in any file of the ledger directory
are never crawled again, and concurrent instances serialize on an exclusive
lock of the ledger file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(crawlCmd())
	root.AddCommand(ledgerCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(configCmd())
	return root
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <directory> <filename>",
		Short: "Crawl new stories into <directory>/<filename>",
		Args:  cobra.ExactArgs(2),
		RunE:  runCrawl,
	}

	cmd.Flags().StringVar(&filterSpec, "filter", "", "only crawl story URLs containing one of these comma-separated substrings (ex: --filter 'politics, finance')")
	cmd.Flags().StringVar(&dbHost, "host", "", "mongodb host")
	cmd.Flags().IntVar(&dbPort, "port", 0, "mongodb port")
	cmd.Flags().StringVar(&dbName, "database", "", "mongodb database holding the seed URLs")
	cmd.Flags().StringVar(&dbColl, "collection", "", "mongodb collection holding the seed URLs")
	cmd.Flags().StringSliceVar(&seedURLs, "seed", nil, "seed URL to scan instead of reading mongodb (repeatable)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "page fetcher: http or browser")

	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg, args)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, rawURL := range cfg.Seeds.URLs {
		if err := config.ValidateURL(rawURL); err != nil {
			return fmt.Errorf("invalid seed %q: %w", rawURL, err)
		}
	}

	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	known, err := ledger.LoadCrawled(cfg.Ledger.Directory, logger)
	if err != nil {
		return fmt.Errorf("load crawl state: %w", err)
	}

	source, err := newSeedSource(cfg, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	seedList, err := source.Seeds(ctx)
	if err != nil {
		return fmt.Errorf("read seeds: %w", err)
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	eng := engine.New(cfg,
		parser.NewLinkDiscoverer(f, logger),
		parser.NewContentExtractor(f, logger),
		engine.NewCrawledSet(known),
		logger,
	)
	if err := eng.Run(ctx, seedList); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	stats := eng.Stats().Snapshot()
	fmt.Printf("Crawl complete in %v: %v stories written, %v failed, %v seeds scanned\n",
		stats["elapsed"], stats["records_written"], stats["extractions_failed"], stats["seeds_scanned"])
	return nil
}

func newSeedSource(cfg *config.Config, logger *slog.Logger) (seeds.Source, error) {
	if len(cfg.Seeds.URLs) > 0 {
		return seeds.NewStaticSource(cfg.Seeds.URLs), nil
	}
	src, err := seeds.NewMongoSource(cfg.Seeds, logger)
	if err != nil {
		return nil, fmt.Errorf("connect seed store: %w", err)
	}
	return src, nil
}

// ledgerCmd creates the "ledger" subcommand for inspecting crawl state.
func ledgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <directory>",
		Short: "Count the story URLs already recorded in a ledger directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			known, err := ledger.LoadCrawled(args[0], setupLogger(cfg))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d URLs recorded in %s\n", len(known), args[0])
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storyspider %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetcher:\n")
			fmt.Fprintf(out, "  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Fprintf(out, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Fprintf(out, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Fprintf(out, "\nSeeds:\n")
			fmt.Fprintf(out, "  MongoDB:           %s:%d/%s.%s\n", cfg.Seeds.Host, cfg.Seeds.Port, cfg.Seeds.Database, cfg.Seeds.Collection)
			fmt.Fprintf(out, "  Static URLs:       %d\n", len(cfg.Seeds.URLs))
			fmt.Fprintf(out, "\nLedger:\n")
			fmt.Fprintf(out, "  Directory:         %s\n", cfg.Ledger.Directory)
			fmt.Fprintf(out, "  Filename:          %s\n", cfg.Ledger.Filename)
			fmt.Fprintf(out, "  Lock Retry:        %s\n", cfg.Ledger.LockRetry)
			fmt.Fprintf(out, "\nFilters:             %v\n", cfg.Filters)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies positional arguments and explicitly set flags to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config, args []string) {
	cfg.Ledger.Directory = args[0]
	cfg.Ledger.Filename = args[1]

	flags := cmd.Flags()
	if flags.Changed("filter") {
		cfg.Filters = config.ParseFilters(filterSpec)
	}
	if flags.Changed("host") {
		cfg.Seeds.Host = dbHost
	}
	if flags.Changed("port") {
		cfg.Seeds.Port = dbPort
	}
	if flags.Changed("database") {
		cfg.Seeds.Database = dbName
	}
	if flags.Changed("collection") {
		cfg.Seeds.Collection = dbColl
	}
	if flags.Changed("seed") {
		cfg.Seeds.URLs = seedURLs
	}
	if flags.Changed("fetcher") {
		cfg.Fetcher.Type = fetcherType
	}
}
