// Command stagesim computes per-stage delta-v, TWR and burn times for a
// vessel snapshot, either one-shot from a file or as a command server on
// stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/kspkit/stagesim/internal/api"
	"github.com/kspkit/stagesim/internal/cache"
	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/dispatcher"
	"github.com/kspkit/stagesim/internal/handlers"
	"github.com/kspkit/stagesim/internal/logging"
	"github.com/kspkit/stagesim/internal/monitor"
	intOtel "github.com/kspkit/stagesim/internal/otel"
	"github.com/kspkit/stagesim/internal/snapshot"
	"github.com/kspkit/stagesim/internal/storage"
	"github.com/kspkit/stagesim/internal/telemetry"
	"github.com/kspkit/stagesim/internal/worker"
	"github.com/kspkit/stagesim/pkg/stinfo"
)

// Version can be set at build time via ldflags.
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

var sessionStart = time.Now()

func main() {
	configDir := flag.String("config", ".", "directory containing stagesim.cfg.json")
	pressure := flag.String("pressure", "current", `ambient pressure in atmospheres, or "current" for the snapshot's`)
	export := flag.Bool("export", false, "write the run history export after computing")
	uploadURL := flag.String("upload", "", "web frontend base URL to upload the export to")
	apiKey := flag.String("api-key", "", "API key for the upload endpoint")
	serve := flag.Bool("serve", false, "read commands from stdin instead of computing one snapshot")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stagesim %s (built %s)\n", Version, BuildDate)
		return
	}

	if err := run(*configDir, *pressure, *export, *uploadURL, *apiKey, *serve, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configDir, pressure string, export bool, uploadURL, apiKey string, serve bool, args []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, "stagesim", sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	otelProvider, err := intOtel.New(intOtel.Config{
		Enabled:     viper.GetBool("otel.enabled"),
		ServiceName: "stagesim",
		LogWriter:   logFile,
		Endpoint:    viper.GetString("otel.endpoint"),
		Insecure:    viper.GetBool("otel.insecure"),
	})
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	defer otelProvider.Shutdown(context.Background())

	logManager := &logging.SlogManager{}
	logManager.Setup(logFile, viper.GetString("logLevel"), otelProvider.LoggerProvider())
	logger := logManager.Logger()
	logger.Info("stagesim starting", "version", Version, "buildDate", BuildDate)

	zl := zerolog.New(logFile).With().Timestamp().Logger()

	storageCfg, err := config.Storage()
	if err != nil {
		return err
	}
	simCfg, err := config.Sim()
	if err != nil {
		return err
	}
	backend, err := storage.NewBackend(storageCfg, zl)
	if err != nil {
		return err
	}

	var tm *telemetry.Manager
	if viper.GetBool("influx.enabled") {
		tm = telemetry.NewManager(zl, filepath.Join(logsDir, "telemetry-backup.gz"))
		if err := tm.Connect(); err != nil {
			logger.Warn("Telemetry disabled", "error", err)
			tm = nil
		}
	}

	workerManager := worker.NewManager(backend, tm, logManager)
	if err := workerManager.Init(); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer workerManager.Close()

	service := handlers.NewService(handlers.Dependencies{
		Codec:      snapshot.NewCodec(logger),
		Backend:    workerManager,
		LogManager: logManager,
		Cache:      cache.NewResultCache(),
		Sim:        simCfg,
		Version:    Version,
	}, handlers.NewVesselContext())

	d, err := dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		return fmt.Errorf("initializing dispatcher: %w", err)
	}
	service.RegisterAll(d)

	if serve {
		mon := monitor.NewService(monitor.Dependencies{
			LogManager:    logManager,
			WorkerManager: workerManager,
		})
		mon.Start()
		defer mon.Stop()
		return serveCommands(d, os.Stdin, os.Stdout)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one snapshot file argument")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if _, err := d.Dispatch(dispatcher.Event{
		Command: "vessel:load",
		Args:    []string{string(data)},
	}); err != nil {
		return err
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command: "stinfo",
		Args:    []string{pressure},
	})
	if err != nil {
		return err
	}
	summaries := result.([]stinfo.StageSummary)
	fmt.Print(handlers.FormatStageTable(summaries))

	if export || uploadURL != "" {
		pathAny, err := d.Dispatch(dispatcher.Event{Command: "runs:export"})
		if err != nil {
			return err
		}
		path := pathAny.(string)
		fmt.Println("exported:", path)

		if uploadURL != "" {
			client := api.New(uploadURL, apiKey)
			vesselName := service.VesselContext().Get().Name()
			if err := client.Upload(path, api.UploadMetadata{
				Vessel:   vesselName,
				RunCount: 1,
			}); err != nil {
				return fmt.Errorf("uploading export: %w", err)
			}
			fmt.Println("uploaded to", uploadURL)
		}
	}

	return logManager.Flush(context.Background())
}
