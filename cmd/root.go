// Package cmd implements the airbnb-analyzer command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"airbnb-price-analyzer/config"
	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/progress"
	"airbnb-price-analyzer/scraper"
	"airbnb-price-analyzer/scraper/airbnb"
	"airbnb-price-analyzer/services"
	"airbnb-price-analyzer/storage"
	"airbnb-price-analyzer/utils"
)

// app carries the collaborators a run needs. Tests swap them out.
type app struct {
	v           *viper.Viper
	stdin       io.Reader
	now         func() time.Time
	newProvider func(*config.Config, *utils.Logger) (scraper.Provider, error)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airbnb-analyzer [flags] <city>...",
		Short: "Analyze Airbnb nightly and monthly prices across cities",
		Long: `airbnb-analyzer searches Airbnb for entire homes in each city, parses the
listing prices and reports nightly, monthly and total stay statistics.

Examples:
  airbnb-analyzer Paris Lisbon Helsinki
  airbnb-analyzer "New York" London Tokyo --month 6
  airbnb-analyzer --interactive "New York" Paris Tokyo
  airbnb-analyzer Barcelona --fetcher static --format yaml -o barcelona.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.run,
	}

	defaults := config.DefaultConfig()
	flags := cmd.Flags()
	flags.IntP("month", "m", 0, "month to analyze, 1-12 (default: next month)")
	flags.BoolP("interactive", "i", false, "choose dates interactively")
	flags.String("config", "", "YAML config file")
	flags.StringP("output", "o", defaults.OutputPath, "output file")
	flags.String("format", defaults.OutputFormat, "output format: json, csv, yaml, all")
	flags.Int("concurrency", defaults.MaxConcurrency, "cities processed at once")
	flags.Duration("delay", defaults.CityDelay, "pause before each city after the first")
	flags.Int("max-listings", defaults.MaxListingsPerCity, "listings analyzed per city")
	flags.String("fetcher", defaults.Fetcher, "page fetcher: chrome, static")
	flags.Bool("headless", defaults.Headless, "run Chrome headless")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")

	a.v.SetEnvPrefix("ANALYZER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	return cmd
}

// Execute runs the root command against the process environment.
func Execute() error {
	a := &app{
		v:           viper.New(),
		stdin:       os.Stdin,
		now:         time.Now,
		newProvider: airbnb.NewProvider,
	}
	cmd := newRootCmd(a)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func (a *app) run(cmd *cobra.Command, cities []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}
	if err := a.applyFlags(cfg); err != nil {
		return err
	}

	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: cmd.ErrOrStderr(),
	})

	month, err := a.month()
	if err != nil {
		return err
	}
	dates, err := a.dates(cmd.OutOrStdout(), cities, month)
	if err != nil {
		return err
	}

	provider, err := a.newProvider(cfg, logger)
	if err != nil {
		return err
	}
	tg, err := progress.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Enabled, logger)
	if err != nil {
		return err
	}

	parser := services.NewPriceParser(cfg.Prices, logger)
	orch := services.NewOrchestrator(provider,
		services.NewExtractor(parser, cfg.MaxListingsPerCity, logger),
		services.NewAggregator(logger, a.now),
		services.OrchestratorOptions{Concurrency: cfg.MaxConcurrency, CityDelay: cfg.CityDelay, Now: a.now},
		logger)

	logger.Info("=== Airbnb price analysis starting: %d cities, fetcher %s ===", len(cities), cfg.Fetcher)
	result := orch.Run(ctx, cities, dates, progress.Multi(progress.NewLoggerSink(logger), tg))

	insights := services.NewInsightService(logger)
	report := insights.Generate(result)
	insights.Print(cmd.OutOrStdout(), result, report)

	writer, err := storage.NewResultWriter(cfg.OutputFormat, cfg.OutputPath)
	if err != nil {
		return err
	}
	if err := writer.Write(insights.Document(result, report, a.now())); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", strings.Join(writer.Paths(), ", "))
	return nil
}

// applyFlags overrides cfg with every flag or ANALYZER_* variable that was
// explicitly set, then revalidates.
func (a *app) applyFlags(cfg *config.Config) error {
	v := a.v
	if v.IsSet("output") {
		cfg.OutputPath = v.GetString("output")
	}
	if v.IsSet("format") {
		cfg.OutputFormat = strings.ToLower(v.GetString("format"))
	}
	if v.IsSet("concurrency") {
		cfg.MaxConcurrency = v.GetInt("concurrency")
	}
	if v.IsSet("delay") {
		cfg.CityDelay = v.GetDuration("delay")
	}
	if v.IsSet("max-listings") {
		cfg.MaxListingsPerCity = v.GetInt("max-listings")
	}
	if v.IsSet("fetcher") {
		cfg.Fetcher = v.GetString("fetcher")
	}
	if v.IsSet("headless") {
		cfg.Headless = v.GetBool("headless")
	}
	switch {
	case v.GetBool("debug"):
		cfg.LogLevel = "debug"
	case v.GetBool("quiet"):
		cfg.LogLevel = "error"
	}
	return cfg.Validate()
}

// month returns the --month value, or next month when unset.
func (a *app) month() (int, error) {
	if !a.v.IsSet("month") {
		return int(a.now().Month())%12 + 1, nil
	}
	m := a.v.GetInt("month")
	if _, err := models.NewMonthDates(m); err != nil {
		return 0, fmt.Errorf("%w: --month %w", config.ErrInvalidConfig, err)
	}
	return m, nil
}

func (a *app) dates(out io.Writer, cities []string, month int) (models.DateConfigs, error) {
	if a.v.GetBool("interactive") {
		return newPrompter(a.stdin, out, a.now).chooseDates(cities, month)
	}
	dc, err := models.NewMonthDates(month)
	if err != nil {
		return models.DateConfigs{}, err
	}
	return models.SameDates(dc), nil
}
