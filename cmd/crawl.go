package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brogergvhs/noveld/internal/assemble"
	"github.com/brogergvhs/noveld/internal/checkpoint"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/crawler"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/sites"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	// source
	flagURL string

	// crawl policy
	flagMaxChapters    int
	flagMaxRetries     int
	flagTimeoutSec     int
	flagRetryBackoffMs int
	flagMinDelayMs     int
	flagMaxDelayMs     int

	// storage
	flagOutput          string
	flagCheckpointDir   string
	flagDebugDir        string
	flagClearCheckpoint bool
	flagDryRun          bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	crawlCmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a novel's chapters and assemble them into a text file. Resumes from the checkpoint of a previous run",
		RunE:  runCrawl,
	}

	// source
	crawlCmd.Flags().StringVar(&flagURL, "url", "", "novel homepage / chapter index URL")

	// crawl policy
	crawlCmd.Flags().IntVar(&flagMaxChapters, "max-chapters", 0, "cap on chapters worked per run (0 = all pending)")
	crawlCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "fetch attempts per chapter before it is marked failed")
	crawlCmd.Flags().IntVar(&flagTimeoutSec, "timeout", 0, "per-request timeout in seconds")
	crawlCmd.Flags().IntVar(&flagRetryBackoffMs, "retry-backoff-ms", 0, "base retry backoff, scaled by attempt number")
	crawlCmd.Flags().IntVar(&flagMinDelayMs, "min-delay-ms", 0, "lower bound of the random inter-chapter delay")
	crawlCmd.Flags().IntVar(&flagMaxDelayMs, "max-delay-ms", 0, "upper bound of the random inter-chapter delay")

	// storage
	crawlCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the assembled text file")
	crawlCmd.Flags().StringVar(&flagCheckpointDir, "checkpoint-dir", "", "folder holding per-novel checkpoint files")
	crawlCmd.Flags().StringVar(&flagDebugDir, "debug-dir", "", "folder for raw HTML dumps (with --debug)")
	crawlCmd.Flags().BoolVar(&flagClearCheckpoint, "clear-checkpoint", false, "destroy the existing checkpoint and start over")
	crawlCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "discover and reconcile only, fetch nothing")

	// headers/auth
	crawlCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	crawlCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	crawlCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:    flagIgnoreConfig,
		Debug:           flagDebug,
		Output:          flagOutput,
		CheckpointDir:   flagCheckpointDir,
		DebugDir:        flagDebugDir,
		MaxChapters:     flagMaxChapters,
		MaxRetries:      flagMaxRetries,
		TimeoutSec:      flagTimeoutSec,
		RetryBackoffMs:  flagRetryBackoffMs,
		MinDelayMs:      flagMinDelayMs,
		MaxDelayMs:      flagMaxDelayMs,
		DefaultURL:      flagURL,
		ClearCheckpoint: flagClearCheckpoint,
		Cookie:          flagCookie,
		CookieFile:      flagCookieFile,
		UserAgent:       flagUserAgent,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if cfg.DefaultURL == "" {
		return fmt.Errorf("missing --url and no default_url in config")
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     cfg.Timeout(),
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := fetch.NewDebugSink(cfg.DebugDir, cfg.Debug, logSvc)
	fetcher := fetch.New(client, cfg.Timeout(), sink)
	adapter := sites.ForURL(cfg.DefaultURL, fetcher)
	store := checkpoint.NewStore(cfg.CheckpointDir)

	if flagDryRun {
		return dryRun(ctx, cfg, adapter, store)
	}

	pm := ui.NewProgressManager()
	metrics := crawler.NewMetrics()
	cr := crawler.New(cfg, adapter, store, logSvc, metrics, pm)

	summary, err := cr.Run(ctx)
	pm.Close()
	if err != nil {
		return err
	}

	logSvc.Debugf("Run metrics:\n%s", metrics.Render())

	// Assemble from the persisted state, not the in-memory copy.
	cp, err := store.Load(summary.NovelID)
	if err != nil {
		return err
	}

	artifact := filepath.Join(cfg.Output, assemble.ArtifactName(summary.NovelTitle, summary.NovelID))
	if err := os.WriteFile(artifact, []byte(assemble.Assemble(cp)), 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	fmt.Println()
	fmt.Println("Crawl Summary:")
	fmt.Printf("Novel:            %s\n", summary.NovelTitle)
	fmt.Printf("Fetched this run: %d\n", summary.FetchedThisRun)
	fmt.Printf("Already fetched:  %d\n", summary.AlreadyFetched)
	fmt.Printf("Failed:           %d\n", summary.FailedTerminal)
	fmt.Printf("Still pending:    %d\n", summary.PendingRemaining)
	fmt.Printf("Data:             %s\n", util.Human(summary.Bytes))
	fmt.Printf("Time:             %s\n", summary.Elapsed.Round(time.Second))
	fmt.Printf("Artifact:         %s\n", artifact)

	return nil
}

func dryRun(ctx context.Context, cfg *config.Config, adapter sites.Adapter, store *checkpoint.Store) error {
	novelID := checkpoint.NovelID(cfg.DefaultURL)

	cp, err := store.Load(novelID)
	if err != nil {
		return err
	}
	if cp == nil {
		cp = checkpoint.New(novelID, cfg.DefaultURL)
	}

	title, refs, err := adapter.ListChapters(ctx, cfg.DefaultURL)
	if err != nil {
		return err
	}

	entries := make([]checkpoint.IndexEntry, len(refs))
	for i, r := range refs {
		entries[i] = checkpoint.IndexEntry{Title: r.Title, URL: r.URL}
	}
	added := cp.Reconcile(title, entries)

	fetched, failed, pending := cp.Counts()
	fmt.Printf("Dry-run: %s\n", cp.NovelTitle)
	fmt.Printf("  chapters on site: %d (%d new)\n", len(refs), added)
	fmt.Printf("  fetched: %d, failed: %d, pending: %d\n", fetched, failed, pending)
	return nil
}
