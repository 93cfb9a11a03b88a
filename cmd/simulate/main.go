// Command simulate drives a synthetic out-of-order write workload through
// one of the LSM, tLSM, or Hybrid engines and reports the resulting
// write-amplification statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/tlsm-writeamp/pkg/hybrid"
	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
	"github.com/dd0wney/tlsm-writeamp/pkg/resultsink"
	"github.com/dd0wney/tlsm-writeamp/pkg/runident"
	"github.com/dd0wney/tlsm-writeamp/pkg/simconfig"
	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
	"github.com/dd0wney/tlsm-writeamp/pkg/simmetrics"
	"github.com/dd0wney/tlsm-writeamp/pkg/simtui"
	"github.com/dd0wney/tlsm-writeamp/pkg/statpublish"
	"github.com/dd0wney/tlsm-writeamp/pkg/tlsm"
)

func main() {
	engineKind := flag.String("engine", "lsm", "engine to drive: lsm, tlsm, or hybrid")
	configPath := flag.String("config", "", "path to the engine's YAML config file")
	n := flag.Int("n", 100000, "number of synthetic points to write")
	interval := flag.Float64("interval", 1.0, "nominal spacing between generation times")
	maxDelay := flag.Int64("max-delay", 50, "maximum arrival jitter")
	seed := flag.Int64("seed", 1, "workload generator seed")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	tui := flag.Bool("tui", false, "show a live terminal dashboard instead of printing a final summary")
	statAddr := flag.String("stat-addr", "", "address to publish per-cycle stats on (e.g. :9400); empty disables")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on (e.g. :9464); empty disables")
	s3Bucket := flag.String("s3-bucket", "", "upload the final report to this S3 bucket; empty disables")
	s3Prefix := flag.String("s3-prefix", "writeamp-reports", "key prefix for S3 report uploads")
	pgURL := flag.String("pg-url", "", "insert the final report into this Postgres database; empty disables")
	flag.Parse()

	logger := simlog.NewJSONLogger(os.Stdout, simlog.ParseLevel(*logLevel))

	runner, configBytes, err := buildRunner(*engineKind, *configPath, logger)
	if err != nil {
		log.Fatalf("building engine: %v", err)
	}

	identity := runident.New(*engineKind, configBytes)
	logger = logger.With(simlog.Engine(*engineKind), simlog.RunID(identity.RunID)).(*simlog.JSONLogger)

	var publisher statpublish.Publisher
	if *statAddr != "" {
		publisher, err = statpublish.NewTCPPublisher(*statAddr, logger)
		if err != nil {
			log.Fatalf("starting stat publisher: %v", err)
		}
		defer publisher.Close()
	}

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, runner.metricsRegistry(), logger)
	}

	workload := generateWorkload(*n, *interval, *maxDelay, *seed)
	logger.Info("starting run", simlog.Int("points", len(workload)))

	if *tui {
		go drive(runner, workload, publisher, identity, logger)
		if err := simtui.Run(tuiProvider{runner}); err != nil {
			log.Fatalf("dashboard: %v", err)
		}
		return
	}

	drive(runner, workload, publisher, identity, logger)
	printSummary(runner)
	exportReport(context.Background(), runner, identity, *s3Bucket, *s3Prefix, *pgURL, logger)
}

func drive(runner engineRunner, workload []workloadPoint, publisher statpublish.Publisher, identity runident.Identity, logger simlog.Logger) {
	const publishEvery = 1000
	for i, p := range workload {
		if err := runner.write(p); err != nil {
			logger.Error("write failed", simlog.Gen(p.gen), simlog.Error(err))
			continue
		}
		if (i+1)%publishEvery == 0 {
			runner.recordMetrics()
			s := runner.snapshot()
			if publisher != nil {
				publisher.Publish(statpublish.CycleUpdate{
					RunID:                     identity.RunID,
					Engine:                    s.Engine,
					TotalPoints:               s.TotalPoints,
					TotalWrites:               s.TotalWrites,
					AverageWriteAmplification: s.AverageWriteAmplification,
					LastFanin:                 s.LastFanin,
				})
			}
		}
	}
	if err := runner.flush(); err != nil {
		logger.Error("final flush failed", simlog.Error(err))
	}
	runner.recordMetrics()
}

// serveMetrics exposes reg on addr's /metrics path in a background
// goroutine. A scrape failure is a deployment problem for the operator to
// notice, not something the simulation run itself should abort for.
func serveMetrics(addr string, reg *simmetrics.Registry, logger simlog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", simlog.Error(err))
		}
	}()
}

type tuiProvider struct{ runner engineRunner }

func (p tuiProvider) Snapshot() simtui.Snapshot { return p.runner.snapshot() }

func printSummary(runner engineRunner) {
	s := runner.snapshot()
	fmt.Printf("engine:                      %s\n", s.Engine)
	fmt.Printf("total points:                %d\n", s.TotalPoints)
	fmt.Printf("total physical writes:       %d\n", s.TotalWrites)
	fmt.Printf("average write amplification: %.4f\n", s.AverageWriteAmplification)
	fmt.Printf("compaction cycles:           %d\n", s.CyclesCompleted)
}

func exportReport(ctx context.Context, runner engineRunner, identity runident.Identity, bucket, prefix, pgURL string, logger simlog.Logger) {
	var sink resultsink.ResultSink = resultsink.Noop{}

	switch {
	case bucket != "":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("loading AWS config", simlog.Error(err))
			return
		}
		sink = resultsink.NewS3Sink(s3.NewFromConfig(awsCfg), bucket, prefix)
	case pgURL != "":
		pgSink, err := resultsink.NewPGSink(ctx, pgURL)
		if err != nil {
			logger.Error("connecting to Postgres", simlog.Error(err))
			return
		}
		defer pgSink.Close()
		sink = pgSink
	default:
		return
	}

	if err := sink.Export(ctx, runner.report(identity)); err != nil {
		logger.Error("exporting report", simlog.Error(err))
	}
}

func buildRunner(engineKind, configPath string, logger simlog.Logger) (engineRunner, []byte, error) {
	configBytes, err := readConfigBytes(configPath)
	if err != nil {
		return nil, nil, err
	}

	switch engineKind {
	case "lsm":
		cfg, err := simconfig.LoadLSMConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		metrics := simmetrics.NewRegistry("lsm")
		engine, err := lsmcore.NewEngine(cfg.ToEngineConfig(), metrics)
		if err != nil {
			return nil, nil, err
		}
		return &lsmRunner{engine: engine, metrics: metrics}, configBytes, nil

	case "tlsm":
		cfg, err := simconfig.LoadTLSMConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		metrics := simmetrics.NewRegistry("tlsm")
		engine, err := tlsm.NewEngine(cfg.ToEngineConfig(), metrics)
		if err != nil {
			return nil, nil, err
		}
		return &tlsmRunner{engine: engine, metrics: metrics}, configBytes, nil

	case "hybrid":
		cfg, err := simconfig.LoadHybridConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		metrics := simmetrics.NewRegistry("hybrid")
		engine, err := hybrid.NewEngine(cfg.ToEngineConfig(logger), metrics)
		if err != nil {
			return nil, nil, err
		}
		return &hybridRunner{engine: engine, metrics: metrics}, configBytes, nil

	default:
		return nil, nil, fmt.Errorf("unknown engine %q: want lsm, tlsm, or hybrid", engineKind)
	}
}

func readConfigBytes(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("-config is required")
	}
	return os.ReadFile(path)
}
