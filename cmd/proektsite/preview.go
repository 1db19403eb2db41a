package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Raiwe17/ProektSite/internal/config"
	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/mqtt"
	"github.com/Raiwe17/ProektSite/internal/preview"
	"github.com/Raiwe17/ProektSite/internal/project"
	"github.com/Raiwe17/ProektSite/internal/session"
	"github.com/Raiwe17/ProektSite/internal/storage/postgres"
)

func newPreviewCmd(g *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "preview [project]",
		Short: "Serve a live preview of a project",
		Long: `Starts the preview server. Each browser tab runs the project's node graphs on the server and receives document patches over a WebSocket.
Redis session storage, Postgres event logging and the MQTT kiosk bridge are enabled by their config.yaml sections.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}
			p, path, err := loadProject(cfg, args)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.PreviewPort()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPreview(ctx, cfg, logger, p, path, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config, else 8080)")
	return cmd
}

func runPreview(ctx context.Context, cfg *config.SiteConfig, logger *slog.Logger, p *project.Project, path string, port int) error {
	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "preview starting", map[string]interface{}{
		"service":  "preview",
		"hostname": hostname,
		"pid":      os.Getpid(),
		"project":  path,
	})
	defer events.Emit("info", "system.shutdown", "preview stopped", map[string]interface{}{"service": "preview"})

	auth, err := preview.AuthFromEnv()
	if err != nil {
		return err
	}
	metrics := preview.NewMetrics(cfg.SiteID())

	var store session.Store = session.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		password, err := config.ResolveSecret("PROEKTSITE_REDIS_PASSWORD")
		if err != nil {
			return err
		}
		rs := session.NewRedisStore(cfg.Redis.Addr, password, cfg.Redis.DB, session.WithTTL(cfg.SessionTTL()))
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rs.Ping(pingCtx)
		cancel()
		if err != nil {
			rs.Close()
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		defer rs.Close()
		store = rs
		logger.Info("redis session store", "addr", cfg.Redis.Addr, "ttl", cfg.SessionTTL())
	}

	var pgUp func() bool
	if cfg.Postgres.Enabled {
		password, err := config.ResolveSecret("PROEKTSITE_PG_PASSWORD")
		if err != nil {
			return err
		}
		pg, err := postgres.New(cfg.SiteID(), postgres.Options{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Database: cfg.Postgres.Database,
			Password: password,
			SSLMode:  cfg.Postgres.SSLMode,
		})
		if err != nil {
			// The event log is optional; the preview keeps running without it.
			logger.Warn("postgres unavailable, events stay in memory", "error", err)
		} else {
			events.SetPostgresClient(pg)
			defer func() {
				events.SetPostgresClient(nil)
				pg.Close()
			}()
			pgUp = pg.Healthy
		}
	}

	srv := preview.NewServer(p, preview.Options{
		Title:      cfg.Export.Title,
		NoTailwind: !cfg.Tailwind(),
		FPS:        cfg.FPS(),
		Store:      store,
		Auth:       auth,
		Metrics:    metrics,
		Logger:     logger,
	})

	var mqttUp func() bool
	if cfg.MQTT.Broker != "" {
		creds, err := config.ResolveCredentials("PROEKTSITE_MQTT")
		if err != nil {
			return err
		}
		client := mqtt.NewClient(mqtt.ClientOptions{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTTClientID(),
			Credentials: creds,
			Logger:      logger.With("component", "mqtt"),
		})
		// The client keeps retrying in the background and applies the bridge
		// subscriptions once the broker is reachable.
		client.Start()
		defer client.Disconnect()
		mqttUp = client.IsConnected

		registry := mqtt.NewKioskRegistry()
		bridge := mqtt.NewBridge(client, cfg.TopicPrefix(), srv,
			mqtt.WithRegistry(registry),
			mqtt.WithLogger(logger.With("component", "mqtt")),
		)
		if err := bridge.Start(); err != nil {
			return fmt.Errorf("mqtt bridge: %w", err)
		}
		sub := events.Subscribe(mqtt.Forwarded())
		defer events.Unsubscribe(sub)
		go bridge.Forward(ctx, sub)

		monitor := mqtt.NewMonitor(registry, 2)
		monitor.Start(time.Second)
		defer monitor.Stop()
	}
	metrics.SetProbes(mqttUp, pgUp)
	alerter := preview.AlerterFromEnv(cfg.SiteID(), logger, mqttUp, pgUp)
	go alerter.Run(ctx, 5*time.Second)

	tlsCfg := preview.ResolveTLS(cfg.Preview.TLSCert, cfg.Preview.TLSKey)
	if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port), tlsCfg); err != nil {
		events.Emit("error", "system.error", err.Error(), map[string]interface{}{"service": "preview"})
		return err
	}
	return nil
}
