package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laptevshr/crLoadCSVData/internal/config"
	"github.com/laptevshr/crLoadCSVData/internal/ingest"
	"github.com/laptevshr/crLoadCSVData/internal/logging"
	mdb "github.com/laptevshr/crLoadCSVData/internal/mongo"
)

var (
	flagConfig     string
	flagCSVDir     string
	flagMongoURI   string
	flagMongoDB    string
	flagCollection string
	flagBatchSize  int
	flagSchedule   string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "loader",
	Short:         "Load OHLCVT data from CSV files into MongoDB",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	_ = godotenv.Load() // .env

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "path to a YAML config file")
	f.StringVar(&flagCSVDir, "csv-dir", "", "directory containing the CSV files")
	f.StringVar(&flagMongoURI, "mongo-uri", "", "MongoDB connection URI (default mongodb://localhost:27017/)")
	f.StringVar(&flagMongoDB, "db-name", "", "database name (default financial_data)")
	f.StringVar(&flagCollection, "collection", "", "collection name (default ohlcvt_data)")
	f.IntVar(&flagBatchSize, "batch-size", 0, "insert batch size (default 1000)")
	f.StringVar(&flagSchedule, "schedule", "", "cron spec to repeat the import, e.g. \"@every 24h\"")
	f.BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if cfg.CSVDir == "" {
		return errors.New("csv-dir is required (flag --csv-dir, env CSV_DIR or config file)")
	}

	log, err := logging.New(flagVerbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mc, err := mdb.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer mc.Close(context.Background())
	log.Info("connected to MongoDB", zap.String("db", cfg.MongoDB), zap.String("collection", cfg.Collection))

	if cfg.Schedule == "" {
		_, err := ingest.Run(ctx, cfg, mc, log)
		return err
	}
	return runScheduled(ctx, cfg, mc, log)
}

// runScheduled imports once right away, then again on every tick of the cron
// spec until the process is interrupted.
func runScheduled(ctx context.Context, cfg config.Config, mc *mdb.Client, log *zap.Logger) error {
	if _, err := ingest.Run(ctx, cfg, mc, log); err != nil {
		log.Error("import failed", zap.Error(err))
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		if _, err := ingest.Run(ctx, cfg, mc, log); err != nil {
			log.Error("import failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	log.Info("scheduler started", zap.String("schedule", cfg.Schedule))
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

// applyFlags overrides the config with flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("csv-dir") {
		cfg.CSVDir = flagCSVDir
	}
	if cmd.Flags().Changed("mongo-uri") {
		cfg.MongoURI = flagMongoURI
	}
	if cmd.Flags().Changed("db-name") {
		cfg.MongoDB = flagMongoDB
	}
	if cmd.Flags().Changed("collection") {
		cfg.Collection = flagCollection
	}
	if cmd.Flags().Changed("batch-size") && flagBatchSize > 0 {
		cfg.BatchSize = flagBatchSize
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Schedule = flagSchedule
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
