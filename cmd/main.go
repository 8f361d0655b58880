package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/config"
	"valve_timer/internal/gpio"
	"valve_timer/internal/handlers"
	"valve_timer/internal/logger"
	"valve_timer/internal/mqtt"
	"valve_timer/internal/repository"
	"valve_timer/internal/repository/db"
	"valve_timer/internal/server"
	"valve_timer/internal/service"

	"github.com/coreos/go-systemd/v22/daemon"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	// load config.yml
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer closeDB(sqlDB, log)
	repos := repository.NewRepository(sqlDB)

	driver, err := gpio.New(cfg.GPIO.Driver)
	if err != nil {
		log.Fatalw("failed to init gpio", "driver", cfg.GPIO.Driver, "err", err)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	background := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	recorder := service.NewEventRecorder(repos.EventRepo, 0, log.Named("recorder"))
	actorOpts := []actuation.Option{
		actuation.WithLogger(log.Named("actuation")),
		actuation.WithQueueSize(cfg.GPIO.QueueSize),
		actuation.WithObserver(recorder),
	}

	var conn *mqtt.Conn
	if cfg.MQTT.Enabled() {
		conn, err = mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, log.Named("mqtt"))
		if err != nil {
			// state mirroring is optional; keep driving the valves without it
			log.Errorw("mqtt disabled", "err", err)
		} else {
			pub := mqtt.NewPublisher(conn, cfg.MQTT.TopicPrefix, log.Named("mqtt"))
			actorOpts = append(actorOpts, actuation.WithObserver(pub))
			background(pub.Run)
		}
	}

	actor, sink := actuation.NewActor(driver, actorOpts...)
	background(func(ctx context.Context) {
		if err := actor.Run(ctx); err != nil {
			log.Errorw("actuation actor failed", "err", err)
		}
	})
	background(recorder.Run)

	// wire dependencies
	clk := clock.NewReal()
	scheduler := service.NewScheduler(sink, clk, log.Named("scheduler"))
	services := service.NewService(repos, service.Deps{
		Sink:      sink,
		Stats:     actor.Stats(),
		Scheduler: scheduler,
		Clock:     clk,
		Log:       log,
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Manual: service.ManualConfig{
			RatePerSec: cfg.Manual.RatePerSec,
			Burst:      cfg.Manual.Burst,
		},
		DefaultChannel: cfg.GPIO.DefaultChannel,
	})

	restored, err := scheduler.Restore(ctx, repos.TimerRepo)
	if err != nil {
		log.Fatalw("failed to restore timers", "err", err)
	}
	log.Infow("timers restored", "count", restored)

	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	notify(log, daemon.SdNotifyReady)

	// graceful shutdown
	waitForShutdown(cancel, srv, scheduler, log)
	wg.Wait()
	if conn != nil {
		conn.Close()
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// notify reports lifecycle state to systemd when running under a
// Type=notify unit. Outside systemd it does nothing.
func notify(log *logger.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warnw("sd_notify failed", "state", state, "err", err)
		return
	}
	if sent {
		log.Debugw("sd_notify sent", "state", state)
	}
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, scheduler *service.Scheduler, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("shutting down server...", "signal", sig.String())
	notify(log, daemon.SdNotifyStopping)

	// no new commands once the controllers are gone
	scheduler.Shutdown()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop background goroutines
	cancel()
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}
