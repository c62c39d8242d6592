package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/markb/sareeone/internal/db"
	"github.com/markb/sareeone/internal/log"
	"github.com/markb/sareeone/internal/realtime"
	"github.com/markb/sareeone/internal/seed"
	"github.com/markb/sareeone/internal/server"
	"github.com/markb/sareeone/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Saree One server",
	Long: `Migrates and seeds the database, then serves the HTTP API, the /ws
notification socket and /health until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, map[string]string{"host": "host", "port": "port"})
		if err != nil {
			return err
		}
		if err := log.Init(cfg.Logging()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		if err := database.CheckConnection(ctx); err != nil {
			return err
		}
		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if _, err := seed.New(store.New(database)).Run(ctx); err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := database.RegisterMetrics(reg); err != nil {
			return fmt.Errorf("failed to register database metrics: %w", err)
		}

		hub := realtime.NewHub(cfg.WSSendBuffer, realtime.NewMetrics(reg))
		hubCtx, stopHub := context.WithCancel(context.Background())
		defer stopHub()
		go hub.Run(hubCtx)

		srv := server.New(cfg, database, hub, reg)

		errc := make(chan error, 1)
		go func() {
			if cfg.HTTPSDomain != "" {
				errc <- srv.ListenAndServeTLS(server.HTTPSConfig{
					Domain:    cfg.HTTPSDomain,
					CertDir:   cfg.HTTPSCertDir,
					HTTPSAddr: fmt.Sprintf("%s:443", cfg.Host),
					HTTPAddr:  fmt.Sprintf("%s:80", cfg.Host),
				})
				return
			}
			errc <- srv.ListenAndServe(cfg.Addr())
		}()

		log.Info("sareeone: started", "version", Version, "env", cfg.Env, "addr", cfg.Addr())

		select {
		case err := <-errc:
			stopHub()
			<-hub.Done()
			return err
		case <-ctx.Done():
		}

		log.Info("sareeone: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = srv.Shutdown(shutdownCtx)
		stopHub()
		<-hub.Done()
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Host to bind to (default 0.0.0.0)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default 5000)")
}
