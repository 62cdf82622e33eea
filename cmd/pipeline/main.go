package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-co-op/gocron"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/fetch"
	"main/internal/normalize"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/pipeline"
	"main/internal/quality"
	"main/internal/store"
	"main/pkg/conn"
)

const defaultConfigPath = "config/pipeline.json"

func main() {
	if err := run(); err != nil {
		log.Printf("pipeline: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", defaultConfigPath, "path to JSON config file")
	modeFlag := flag.String("mode", "scheduled", "run mode: once or scheduled")
	profileFlag := flag.String("profile", "", "pyroscope server address (optional)")
	flag.Parse()

	cfg, err := ops.Load(*configFlag)
	if err != nil {
		return err
	}

	if *profileFlag != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "crypto-pipeline",
			ServerAddress:   *profileFlag,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	client, err := conn.New(cfg.Conn)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	sink := store.NewSink(client)
	if err := sink.Migrate(); err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	coordinator := pipeline.NewCoordinator(
		fetch.New(cfg.Source),
		sink,
		quality.NewInspector(cfg.Policy),
		normalize.New(cfg.Policy),
		metrics,
	)

	ctx := context.Background()
	switch *modeFlag {
	case "once":
		res := coordinator.Run(ctx)
		return res.Err
	case "scheduled":
		return runScheduled(ctx, coordinator, metrics, cfg.Interval)
	default:
		return fmt.Errorf("unknown mode %q; use once or scheduled", *modeFlag)
	}
}

func runScheduled(ctx context.Context, coordinator *pipeline.Coordinator, metrics *obs.Metrics, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)

	// Runs must not overlap against the same sink keyspace.
	_, err := scheduler.Every(interval).SingletonMode().Do(func() {
		res := coordinator.Run(ctx)
		if res.Err != nil {
			logs.Errorf("scheduled run %s: %s, err: %+v", res.RunID, res.Outcome, res.Err)
		}
	})
	if err != nil {
		return err
	}

	logs.Infof("scheduler started, interval %v", interval)
	scheduler.StartAsync()

	<-sys.Shutdown()
	scheduler.Stop()

	snap := metrics.Snapshot()
	logs.Infof("scheduler stopped; lifetime rows fetched %d, written %d, dropped %d, failed %d",
		snap.RowsFetched, snap.RowsWritten, snap.RowsDropped, snap.RowsFailed)
	return nil
}
