package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lk2023060901/dataset-builder/internal/conf"
	"github.com/lk2023060901/dataset-builder/internal/dataset/builder"
	"github.com/lk2023060901/dataset-builder/internal/pkg/logger"
	"github.com/lk2023060901/dataset-builder/internal/pkg/minio"
	"github.com/lk2023060901/dataset-builder/internal/pkg/tokenizer"
	"github.com/lk2023060901/dataset-builder/internal/pkg/workerpool"
)

var (
	configFile = flag.String("config", "", "config file path (built-in defaults when empty)")
	strict     = flag.Bool("strict", false, "exit non-zero when any input file fails")
	workers    = flag.Int("workers", 0, "override worker.workers")
	verbose    = flag.Bool("verbose", false, "debug logging with caller information")
	logFile    = flag.String("log-file", "", "also write logs to this file, rotated")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *strict {
		config.FailOnError = true
	}
	if *workers > 0 {
		config.Worker.Workers = *workers
	}

	var logOpts []logger.Option
	if *verbose {
		logOpts = append(logOpts, logger.Verbose())
	}
	if *logFile != "" {
		logOpts = append(logOpts, logger.ToFile(*logFile))
	}

	log, err := logger.New(config.Log.Apply(logOpts...))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("config loaded", zap.String("config", *configFile), zap.Int("jobs", len(config.Jobs)))

	pool, err := workerpool.New(&config.Worker, log.Named("pool").Logger)
	if err != nil {
		log.Error("failed to create worker pool", zap.Error(err))
		return 1
	}
	defer pool.Shutdown()

	opts := []builder.Option{builder.WithLogger(log)}

	if config.Tokens.Enabled {
		counter, err := tokenizer.NewTiktokenCounter(config.Tokens.Encoding)
		if err != nil {
			log.Error("failed to load token encoding", zap.Error(err))
			return 1
		}
		opts = append(opts, builder.WithCounter(counter))
	}

	if config.Upload.Enabled {
		client, err := minio.NewClient(&config.Upload.Config, log.Named("minio").Logger)
		if err != nil {
			log.Error("failed to create upload client", zap.Error(err))
			return 1
		}
		publisher := minio.NewPublisher(client)
		defer publisher.Close()
		opts = append(opts, builder.WithUploader(publisher))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports, err := builder.New(config, pool, opts...).Run(ctx)
	logSkipped(log, reports)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}

	stats := pool.Stats()
	log.Info("done",
		zap.Int("jobs", len(reports)),
		zap.Int64("tasks", stats.Completed),
		zap.Int64("failed_tasks", stats.Failed),
	)
	return 0
}

// logSkipped logs one skipped count per job; the builder already logged each file
func logSkipped(log *logger.Logger, reports []*builder.Report) {
	for _, r := range reports {
		if r.Failed() > 0 {
			log.Warn("job finished with skipped files", zap.String("job", r.Job), zap.Int("skipped", r.Failed()))
		}
	}
}
