// Package main provides the poor CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reergymerej/poor-nosql/internal/config"
	"github.com/reergymerej/poor-nosql/internal/mirror"
	"github.com/reergymerej/poor-nosql/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	dbFlag      string
	mirrorFlag  string
	verbose     bool
)

// stdout is where command results are written.
var stdout io.Writer = os.Stdout

// logger is built in PersistentPreRunE from config and --verbose.
var logger = zap.NewNop()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "poor",
	Short: "A poor man's document store backed by one JSON file",
	Long: `poor stores schema-free JSON records in a single file.

Every record gets an integer "id". Records can be selected by id or by a
criteria object such as {"color": {"$in": ["red", "blue"]}}.

The file path comes from --db, POOR_DB (a .env file is honored), the global
config (~/.config/poor/config.yml), or ./db.json.
All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the dataset file")
	rootCmd.PersistentFlags().StringVar(&mirrorFlag, "mirror", "", "Path to the SQLite mirror (default: next to the dataset)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store operations to stderr")
	rootCmd.Version = Version
}

// setup loads .env and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	l, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		exitWithError(ExitConfigError, "building logger: %v", err)
	}
	logger = l
	return nil
}

// newLogger builds a production zap logger writing to stderr.
// verbose forces debug level; otherwise level defaults to warn.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return cfg.Build()
}

// mustResolveDBPath resolves the dataset path, exits on error.
func mustResolveDBPath() string {
	path, err := config.ResolveDBPath(dbFlag)
	if err != nil {
		exitWithError(ExitConfigError, "resolving database path: %v", err)
	}
	return path
}

// mustOpenStore opens a handle on the configured dataset file, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenStore() *store.DB {
	path := mustResolveDBPath()

	opts := []store.Option{store.WithLogger(logger)}
	if cfg, err := config.LoadGlobalConfig(); err == nil && cfg.Indent {
		opts = append(opts, store.WithIndent())
	}

	db, err := store.Open(path, opts...)
	if err != nil {
		exitWithError(ExitStorageError, "opening store: %v", err)
	}
	return db
}

// mustOpenMirror returns the SQLite mirror for the given dataset path.
func mustOpenMirror(dbPath string) *mirror.Mirror {
	path, err := config.ResolveMirrorPath(mirrorFlag, dbPath)
	if err != nil {
		exitWithError(ExitConfigError, "resolving mirror path: %v", err)
	}
	return mirror.New(path, logger)
}
