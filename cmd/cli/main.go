package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/honeycombo/combo-service/config"
	"github.com/honeycombo/combo-service/internal/catalogcache"
	"github.com/honeycombo/combo-service/internal/database"
	fetch "github.com/honeycombo/combo-service/internal/http"
	"github.com/honeycombo/combo-service/internal/http/ratelimit"
	"github.com/honeycombo/combo-service/internal/parsers/csv"
	"github.com/honeycombo/combo-service/internal/parsers/xlsx"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "combo-service",
	Short: "Combo Service CLI - convenience store promotion bundles",
	Long: `A CLI tool for preparing convenience store promotion catalogs and recommending
budget-bounded item combinations from them. Reads CSV and XLSX exports of 1+1, 2+1
and 3+1 promotions from CU, GS25, 7-Eleven and emart24.`,
	PersistentPreRunE: persistentPreRun,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for file-only commands
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()
	log.Logger = *logger

	if commandNeedsDB(cmd) {
		if cfg == nil {
			return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
		}
		if err := initDatabase(cmd.Context()); err != nil {
			return fmt.Errorf("database initialization failed: %w", err)
		}
		logger.Info().Msg("Database connected")
	}

	return nil
}

func commandNeedsDB(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "import":
		return !importDryRun
	case "recommend":
		return recommendCatalog == "" && cfg != nil && cfg.Catalog.Source == config.SourcePostgres
	}
	return false
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// CLI output goes to stdout; logs go to stderr
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	l := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &l
}

func initDatabase(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dbCfg := cfg.Database
	dbCfg.URL = config.GetDatabaseURL()
	if err := database.Connect(ctx, dbCfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// newLoader builds a loader for a local path or an http(s) URL, honouring
// the configured default brand.
func newLoader(source string) catalogcache.Loader {
	csvOpts := csv.DefaultOptions()
	xlsxOpts := xlsx.DefaultOptions()
	fetchCfg := ratelimit.DefaultConfig()
	if cfg != nil {
		csvOpts.DefaultBrand = cfg.Catalog.DefaultBrand
		xlsxOpts.DefaultBrand = cfg.Catalog.DefaultBrand
		fetchCfg = cfg.Catalog.Fetch
	}
	opts := []catalogcache.LoaderOption{
		catalogcache.WithCSVOptions(csvOpts),
		catalogcache.WithXLSXOptions(xlsxOpts),
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return catalogcache.NewURLLoader([]string{source}, fetch.NewClient(fetchCfg), opts...)
	}
	return catalogcache.NewFileLoader(source, opts...)
}

func main() {
	defer database.Close()
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		database.Close()
		os.Exit(1)
	}
}
