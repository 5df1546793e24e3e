package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"pricematch/config"
	"pricematch/matching"
	"pricematch/models"
	"pricematch/report"
	"pricematch/scheduler"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()

	var observer matching.Observer
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
		observer = matching.NewLogObserver()
	}

	engine := matching.NewEngine(matching.Config{
		IgnoreColors: cfg.IgnoreColors,
		Workers:      cfg.Workers,
		Observer:     observer,
	})

	run := func() error {
		return runComparison(engine, cfg)
	}

	if cfg.WatchSchedule == "" {
		if err := run(); err != nil {
			log.WithError(err).Fatal("comparison failed")
		}
		return
	}

	// Watch mode: keep re-running until interrupted.
	sched := scheduler.NewComparisonScheduler(run)
	if err := sched.Start(cfg.WatchSchedule); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}

// runComparison performs one load → match → report cycle.
func runComparison(engine *matching.Engine, cfg *config.Config) error {
	started := time.Now()

	reference, err := loadRecords(cfg.ReferenceFile)
	if err != nil {
		return err
	}
	comparison, err := loadRecords(cfg.ComparisonFile)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"reference":  len(reference),
		"comparison": len(comparison),
	}).Info("starting comparison run")

	results := engine.Match(context.Background(), reference, comparison)

	if err := report.WriteFile(cfg.ReportFile, cfg.ReportFormat, results, len(comparison)); err != nil {
		return err
	}

	summary := report.Summarize(results, len(comparison))
	log.WithFields(log.Fields{
		"matched":  summary.Matched,
		"cheaper":  summary.Cheaper,
		"pricier":  summary.MoreExpensive,
		"report":   cfg.ReportFile,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("comparison run complete")

	return nil
}

// loadRecords reads one site's product records from a JSON array file.
func loadRecords(path string) ([]models.ProductRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records from %s: %w", path, err)
	}

	var records []models.ProductRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records from %s: %w", path, err)
	}
	return records, nil
}
