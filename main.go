package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smazurov/ledcycle/cmd"
	"github.com/smazurov/ledcycle/internal/api"
	"github.com/smazurov/ledcycle/internal/config"
	"github.com/smazurov/ledcycle/internal/crossfade"
	"github.com/smazurov/ledcycle/internal/events"
	"github.com/smazurov/ledcycle/internal/led"
	"github.com/smazurov/ledcycle/internal/logging"
	"github.com/smazurov/ledcycle/internal/metrics"
	"github.com/smazurov/ledcycle/internal/preset"
	"github.com/smazurov/ledcycle/internal/status"
	"github.com/smazurov/ledcycle/internal/version"
)

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Defaults and flags only; reloads reapply the file and env on top
		base := *opts

		// Load configuration; flags set on the command line win
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("config").Error("Failed to load config", "error", loadErr)
			os.Exit(1)
		}

		logging.Initialize(opts.Logging())
		logger := logging.GetLogger("main")
		configLogger := logging.GetLogger("config")

		engineCfg, err := opts.Engine()
		if err != nil {
			configLogger.Error("Invalid engine configuration", "error", err)
			os.Exit(1)
		}
		outputCfg, err := opts.Output()
		if err != nil {
			configLogger.Error("Invalid output configuration", "error", err)
			os.Exit(1)
		}

		table, err := preset.LoadFile(opts.Config, outputCfg.ChannelCount())
		if err != nil {
			configLogger.Error("Invalid preset table", "error", err, "config", opts.Config)
			os.Exit(1)
		}

		eventBus := events.New()

		tracker := status.NewTracker(eventBus, logging.GetLogger("api"))
		unsubscribeMetrics := metrics.Subscribe(eventBus)

		// Only logging levels follow the config file at runtime
		watcher := config.NewConfigWatcher(opts.Config,
			config.LoggingLoader(base, cli.Root()),
			configLogger,
		)
		watcher.OnReload(func(cfg logging.Config) {
			logging.UpdateLevels(cfg)
			configLogger.Info("Logging levels reloaded", "level", cfg.Level, "modules", cfg.Modules)
		})

		var server *api.Server
		if opts.ServerEnabled {
			server = api.NewServer(&api.Options{
				AuthUsername:      opts.AuthUsername,
				AuthPassword:      opts.AuthPassword,
				Table:             table,
				Tracker:           tracker,
				EventBus:          eventBus,
				PrometheusHandler: promhttp.Handler(),
			})
		}

		// Hardware is only touched when the daemon itself starts, not for subcommands
		hooks.OnStart(func() {
			output, outErr := led.New(outputCfg, logging.GetLogger("output"))
			if outErr != nil {
				logger.Error("Failed to open LED output", "error", outErr)
				os.Exit(1)
			}

			engine, engineErr := crossfade.New(table, led.Instrumented(output),
				crossfade.WithStepInterval(engineCfg.StepInterval),
				crossfade.WithHoldInterval(engineCfg.HoldInterval),
				crossfade.WithInitialLevel(engineCfg.InitialLevel),
				crossfade.WithLogger(logging.GetLogger("engine")),
				crossfade.WithEventBus(eventBus),
			)
			if engineErr != nil {
				logger.Error("Failed to create crossfade engine", "error", engineErr)
				os.Exit(1)
			}

			tracker.Start()

			if startErr := watcher.Start(); startErr != nil {
				configLogger.Warn("Config watcher not started, logging levels are fixed", "error", startErr)
			}

			go engine.Run()

			if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Warn("Failed to notify systemd", "error", notifyErr)
			} else if sent {
				logger.Debug("Notified systemd of readiness")
			}

			if server == nil {
				logger.Info("HTTP server disabled, running engine only")
				select {}
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if server != nil {
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			unsubscribeMetrics()
			tracker.Stop()
		})
	})

	cli.Root().Use = "ledcycle"
	cli.Root().Short = "Cycle LEDs through crossfaded color presets"
	cli.Root().Version = version.Get().String()

	cli.Root().AddCommand(cmd.CreateValidateCmd())
	cli.Root().AddCommand(cmd.CreateSimulateCmd())

	cli.Run()
}
