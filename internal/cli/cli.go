package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hsv-vvk/internal/calendar"
	"github.com/pfrederiksen/hsv-vvk/internal/config"
	"github.com/pfrederiksen/hsv-vvk/internal/logger"
	"github.com/pfrederiksen/hsv-vvk/internal/scraper"
	"github.com/pfrederiksen/hsv-vvk/internal/web"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagLogLevel string
	flagPort     string
	flagFormat   string
	flagSort     string
	flagFile     string
	flagOutput   string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hsv-vvk",
		Short: "Publish HSV member pre-sale dates as a calendar feed",
		Long: `hsv-vvk reads the HSV ticket overview, extracts the member pre-sale
("Mitgl.-VVK") dates of upcoming fixtures and publishes them as an iCalendar feed.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(), newListCmd(), newExportCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar feed at /cal.ics",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default $PORT or 3000)")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the pre-sale dates found on the ticket page",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "page", "Sort order: page, presale or opponent")
	cmd.Flags().StringVar(&flagFile, "file", "", "Parse a saved HTML page instead of fetching")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the calendar document to a file or stdout",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagOutput, "output", "", "Output path (default <team>_Vorverkauf.ics, '-' for stdout)")
	cmd.Flags().StringVar(&flagFile, "file", "", "Parse a saved HTML page instead of fetching")
	return cmd
}

// loadConfig resolves defaults, config file, environment and flags, then
// installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagPort != "" {
		cfg.Server.Port = flagPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.SetDefault(logger.New(cfg.LogLevel(), os.Stderr))
	return cfg, nil
}

func newScraper(cfg *config.Config) (*scraper.Scraper, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	return scraper.New(
		scraper.WithURL(cfg.Source.URL),
		scraper.WithTimeout(cfg.GetFetchTimeout()),
		scraper.WithRules(rules),
	), nil
}

// collect runs one extraction pass, from --file when given.
func collect(ctx context.Context, cfg *config.Config) (*scraper.Result, error) {
	sc, err := newScraper(cfg)
	if err != nil {
		return nil, err
	}

	if flagFile == "" {
		return sc.FetchMatches(ctx), nil
	}

	f, err := os.Open(flagFile)
	if err != nil {
		return nil, fmt.Errorf("opening page file: %w", err)
	}
	defer f.Close()

	return sc.Extract(f)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sc, err := newScraper(cfg)
	if err != nil {
		return err
	}

	handler := web.New(sc, web.Options{
		CalendarName:   cfg.Feed.CalendarName,
		Team:           cfg.Feed.Team,
		RequestTimeout: cfg.GetRequestTimeout(),
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logger.Fields{
			"port":   cfg.Server.Port,
			"source": cfg.Source.URL,
			"team":   cfg.Feed.Team,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runList(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !order.valid() {
		return fmt.Errorf("invalid sort order: %s (must be 'page', 'presale' or 'opponent')", flagSort)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := collect(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	sortEvents(result.Events, order)

	return WriteOutput(cmd.OutOrStdout(), &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Source:     sourceName(cfg),
		Team:       cfg.Feed.Team,
		Events:     result.Events,
		EventCount: len(result.Events),
		Rows:       result.Rows,
		Skipped:    result.Skipped,
		Mismatched: result.Mismatched,
		Degraded:   result.Failed,
	}, format)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := collect(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	doc := calendar.Generate(cfg.Feed.CalendarName, result.Events)

	path := flagOutput
	if path == "" {
		path = calendar.Filename(cfg.Feed.Team)
	}

	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		logger.Info("Calendar written", logger.Fields{
			"path":   path,
			"events": len(result.Events),
		})
		return nil
	}

	_, err = io.WriteString(w, doc)
	return err
}

func sourceName(cfg *config.Config) string {
	if flagFile != "" {
		return flagFile
	}
	return cfg.Source.URL
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
