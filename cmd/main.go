package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenith_pc_control"
	_ "zenith_pc_control/docs"
	"zenith_pc_control/internal/broadcast"
	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/cloud"
	"zenith_pc_control/internal/config"
	"zenith_pc_control/internal/gpio"
	"zenith_pc_control/internal/handlers"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/netlink"
	"zenith_pc_control/internal/notify"
	"zenith_pc_control/internal/probe"
	"zenith_pc_control/internal/repository"
	"zenith_pc_control/internal/repository/db"
	"zenith_pc_control/internal/server"
	"zenith_pc_control/internal/service"
	"zenith_pc_control/internal/state"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// @title        Zenith PC Control API
// @version      1.0
// @description  Remote power control and reachability monitoring for a desktop PC.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.LoadApp("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	log.Infow("starting", "version", zenith_pc_control.Version, "device", zenith_pc_control.SerialNumber)

	sqlDB, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	logFile, err := repository.NewLogFile(cfg.Logs.Path, cfg.Logs.OldPath, cfg.Logs.MaxBytes)
	if err != nil {
		log.Fatalw("failed to open log file", "err", err)
	}
	repos := repository.NewRepository(sqlDB, logFile)

	settings := config.NewStore(cfg.SettingsPath, log.Named("settings"))
	if err := settings.Load(); err != nil {
		log.Warnw("settings unreadable, using defaults", "path", cfg.SettingsPath, "err", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	prober, err := probe.New(cfg.Probe.Method, cfg.Probe.Target, cfg.Probe.Port, cfg.Probe.Timeout, cfg.Probe.Privileged)
	if err != nil {
		log.Fatalw("invalid probe configuration", "err", err)
	}

	outputs, err := openOutputs(cfg.GPIO, log)
	if err != nil {
		log.Fatalw("failed to request gpio lines", "err", err)
	}
	defer outputs.close()

	store := state.New()
	hub := broadcast.NewHub()
	httpClient := notify.NewHTTPClient(cfg.Notify.Timeout)

	services := service.NewService(repos, service.Deps{
		Store:     store,
		Clock:     clock.New(),
		Settings:  settings,
		Prober:    prober,
		Link:      netlink.New(cfg.Network.Interface, cfg.Network.Nmcli, netlink.WithConnectWait(cfg.Network.ConnectWait)),
		PowerLine: outputs.power,
		Display:   gpio.NewLED(outputs.led),
		Channels: []notify.Channel{
			notify.NewTelegram(cfg.Notify.TelegramBaseURL, httpClient),
			notify.NewWebhook(httpClient),
		},
		Publisher:  hub,
		Metrics:    m,
		Log:        log,
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
		Intervals: service.Intervals{
			Health:       cfg.Timing.Health,
			Connectivity: cfg.Timing.Connectivity,
			Indicator:    cfg.Timing.Indicator,
			Aggregator:   cfg.Timing.Aggregator,
			Notifier:     cfg.Timing.Notifier,
		},
		TailBytes: cfg.Logs.TailBytes,
	})

	mqttClient := startCloudSync(cfg.MQTT, settings.Get().DeviceName, services, store, log.Named("cloud"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.RecoverPower(ctx); err != nil {
		log.Warnw("power recovery skipped", "err", err)
	}

	for _, w := range services.Workers() {
		go w.Run(ctx)
	}

	apiHandler := handlers.NewHandler(services, hub, metrics.Handler(reg), log.Named("http"))
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)

	hub.Close()
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.App, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening database", "path", cfg.DB.Path)
	return db.InitDB(cfg.DB.Path)
}

type lineOutputs struct {
	power gpio.Output
	led   gpio.Output
	chip  *gpio.Chip
}

func (o lineOutputs) close() {
	if o.chip != nil {
		_ = o.chip.Close()
	}
}

// openOutputs requests the power and indicator lines, or in-memory outputs
// when GPIO is disabled.
func openOutputs(cfg config.GPIO, log *logger.Logger) (lineOutputs, error) {
	if !cfg.Enabled {
		log.Infow("gpio disabled, using in-memory outputs")
		return lineOutputs{power: gpio.NewMemory(), led: gpio.NewMemory()}, nil
	}

	chip, err := gpio.OpenChip(cfg.Chip)
	if err != nil {
		return lineOutputs{}, err
	}
	power, err := chip.RequestOutput(cfg.PowerLine)
	if err != nil {
		_ = chip.Close()
		return lineOutputs{}, err
	}
	led, err := chip.RequestOutput(cfg.LEDLine)
	if err != nil {
		_ = chip.Close()
		return lineOutputs{}, err
	}
	return lineOutputs{power: power, led: led, chip: chip}, nil
}

// startCloudSync connects to the MQTT broker and mirrors pcPower and pcStatus.
// It returns nil when the cloud is disabled.
func startCloudSync(cfg config.MQTT, device string, services *service.Service, store *state.Store, log *logger.Logger) mqtt.Client {
	if !cfg.Enabled {
		return nil
	}

	var cs *cloud.Sync
	opts := cloud.ClientOptions(cloud.Options{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		Prefix:   cfg.Prefix,
		Device:   device,
	}, func() {
		if err := cs.Subscribe(); err != nil {
			log.Warnw("cloud_subscribe_failed", "err", err)
		}
		if err := cs.PublishPower(services.Actuator.Desired()); err != nil {
			log.Warnw("cloud_publish_failed", "err", err)
		}
		if err := cs.PublishStatus(store.Status()); err != nil {
			log.Warnw("cloud_publish_failed", "err", err)
		}
	})

	client := mqtt.NewClient(opts)
	cs = cloud.New(client, cloud.NewTopics(cfg.Prefix, device), services.Actuator, store.Maintenance, log)

	store.Subscribe(func(_, next models.DeviceStatus) {
		go func() {
			if err := cs.PublishStatus(next); err != nil {
				log.Warnw("cloud_publish_failed", "err", err)
			}
		}()
	})
	services.Actuator.OnApplied(func(on bool) {
		go func() {
			if err := cs.PublishPower(on); err != nil {
				log.Warnw("cloud_publish_failed", "err", err)
			}
		}()
	})

	// connect retries in the background
	client.Connect()
	log.Infow("cloud sync started", "broker", cfg.Broker, "device", device)
	return client
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
