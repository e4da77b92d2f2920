package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nftdash/pkg/api"
	"nftdash/pkg/config"
	"nftdash/pkg/dashboard"
	"nftdash/pkg/logging"
	"nftdash/pkg/models"
	"nftdash/pkg/observability"
	"nftdash/pkg/server"
	"nftdash/pkg/tui"

	"go.uber.org/zap"
)

// Version should be set during build
var Version = "dev"

// prober is the part of the API client used by the configuration test.
type prober interface {
	Probe(ctx context.Context) []models.EndpointResult
}

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	configFlag := flag.String("config", "", "Path to configuration file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8080, "Port for API server")
	initFlag := flag.Bool("init", false, "Write a default configuration file and exit")
	restoreFlag := flag.Bool("restore-config", false, "Restore the most recent configuration backup and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("nftdash version %s\n", Version)
		os.Exit(0)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Printf("Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	if *initFlag {
		if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		os.Exit(0)
	}

	if *restoreFlag {
		if err := config.RestoreLastBackup(path); err != nil {
			fmt.Printf("Failed to restore backup: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Restored last backup of %s\n", path)
		os.Exit(0)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}
	cfg = config.ApplyEnv(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(nil)

	if *testFlag || *testLongFlag {
		client := newClient(cfg, zap.NewNop(), metrics)
		os.Exit(runProbe(ctx, os.Stdout, cfg, path, client, *jsonFlag))
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		fmt.Printf("Invalid configuration in %s:\n", path)
		for _, p := range problems {
			fmt.Printf(" - %s\n", p)
		}
		os.Exit(1)
	}

	var logger *zap.Logger
	if *serverFlag {
		logger, err = logging.New(cfg.LogLevel, cfg.LogFile)
	} else {
		logger, err = logging.ForTUI(cfg.LogLevel, cfg.LogFile)
	}
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctrl := newController(cfg, newClient(cfg, logger, metrics), logger, metrics)

	if *serverFlag {
		logger.Info("running in server mode", zap.Int("port", *portFlag), zap.String("api", cfg.APIBaseURL))
		srv := server.NewServer(ctrl, metrics, logger)
		if view, err := dashboard.ParseView(cfg.DefaultView); err == nil {
			go func() { _, _ = ctrl.Activate(ctx, view) }()
		}
		if err := srv.Start(ctx, *portFlag); err != nil {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := tui.Start(ctx, ctrl, cfg, path, Version); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newClient(cfg config.GlobalConfig, logger *zap.Logger, metrics *observability.Metrics) *api.Client {
	return api.NewClient(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout(),
		RateLimit: cfg.RateLimitPerSecond,
		RateBurst: cfg.RateLimitBurst,
		Logger:    logger,
		Metrics:   metrics,
	})
}

func newController(cfg config.GlobalConfig, source dashboard.DataSource, logger *zap.Logger, metrics *observability.Metrics) *dashboard.Controller {
	return dashboard.NewController(source, dashboard.Options{
		Locale:           cfg.Locale,
		PlaceholderImage: cfg.PlaceholderImage,
		DetailsTTL:       cfg.NFTCacheTTL(),
		Concurrency:      cfg.EnrichmentConcurrency,
		Logger:           logger,
		Metrics:          metrics,
	})
}

// runProbe validates cfg, calls every endpoint once and writes a report to
// out. It returns the process exit code.
func runProbe(ctx context.Context, out io.Writer, cfg config.GlobalConfig, path string, client prober, asJSON bool) int {
	report := models.ProbeReport{
		ConfigPath:     path,
		APIBaseURL:     cfg.APIBaseURL,
		ValidStructure: true,
	}

	if !asJSON {
		fmt.Fprintf(out, "Testing configuration at: %s\n", path)
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		report.ValidStructure = false
		report.ConfigErrors = problems
		if asJSON {
			writeReport(out, report)
		} else {
			for _, p := range problems {
				fmt.Fprintf(out, "Error: %s\n", p)
			}
		}
		return 1
	}

	if !asJSON {
		fmt.Fprintf(out, "Testing API: %s\n", cfg.APIBaseURL)
	}

	report.Endpoints = client.Probe(ctx)
	for _, r := range report.Endpoints {
		if r.Status == "error" {
			report.FailedCount++
		}
		if !asJSON {
			line := fmt.Sprintf("  %-26s %-6s %s", r.Path, r.Status, r.Latency.Round(time.Millisecond))
			if r.Error != "" {
				line += " - " + r.Error
			}
			fmt.Fprintln(out, line)
		}
	}

	if asJSON {
		writeReport(out, report)
	} else if report.FailedCount > 0 {
		fmt.Fprintf(out, "\n%d endpoint(s) failed.\n", report.FailedCount)
	} else {
		fmt.Fprintln(out, "\nAll endpoints reachable.")
	}

	if report.FailedCount > 0 {
		return 1
	}
	return 0
}

func writeReport(out io.Writer, report models.ProbeReport) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
