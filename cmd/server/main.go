package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_club_backend/internal/config"
	"gym_club_backend/internal/database"
	"gym_club_backend/internal/jobs"
	"gym_club_backend/internal/router"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var version = "dev"

const shutdownTimeout = 15 * time.Second

var (
	rootCmd = &cobra.Command{
		Use:           "gym-club",
		Short:         "Gym Club REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return errors.New("migrate requires STORAGE_DRIVER=postgres")
			}
			db, err := database.Open(cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer db.Close()
			return database.ApplySchema(db)
		},
	}

	checkExpiredCmd = &cobra.Command{
		Use:   "check-expired",
		Short: "Expire memberships past their end date and notify members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(func(a *app) (int, error) {
				list, err := a.services.Memberships.CheckExpired()
				return len(list), err
			})
		},
	}

	autoRenewCmd = &cobra.Command{
		Use:   "auto-renew",
		Short: "Renew expired memberships flagged for automatic renewal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(func(a *app) (int, error) {
				list, err := a.services.Memberships.AutoRenew()
				return len(list), err
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gym-club version %s\n", version)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, checkExpiredCmd, autoRenewCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.LogError(err, "command failed")
		os.Exit(1)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.InitLogger(utils.LoggerOptions{
		Level:    cfg.Log.Level,
		JSON:     cfg.Log.JSON,
		FilePath: cfg.Log.FilePath,
	})
	return cfg, nil
}

// runOnce executes a maintenance task and waits for its notifications.
func runOnce(task func(a *app) (int, error)) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close(shutdownTimeout)

	n, err := task(a)
	if err != nil {
		return err
	}
	utils.LogInfo("task finished", map[string]interface{}{"affected": n})
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close(shutdownTimeout)

	engine := router.New(a.services, a.routerOptions())

	var scheduler *jobs.Scheduler
	if cfg.Cron.Enabled {
		scheduler = jobs.NewScheduler()
		for _, job := range jobs.MembershipJobs(a.services.Memberships, cfg.Cron.ExpiredSpec, cfg.Cron.RenewSpec) {
			if err := scheduler.Add(job); err != nil {
				return err
			}
		}
		scheduler.Start()
	}

	ln, err := listen(cfg.Port, cfg.PortFallbacks)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"addr": ln.Addr().String(), "env": cfg.Env, "version": version})
		errCh <- srv.Serve(ln)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		utils.LogInfo("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}

// listen binds the preferred port and walks the fallbacks while the port is in use.
func listen(port string, fallbacks []string) (net.Listener, error) {
	var lastErr error
	for _, p := range append([]string{port}, fallbacks...) {
		ln, err := net.Listen("tcp", ":"+p)
		if err == nil {
			if p != port {
				utils.LogWarn(lastErr, "preferred port busy, using fallback", map[string]interface{}{"port": p})
			}
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listening on %s: %w", p, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port among %s and %v: %w", port, fallbacks, lastErr)
}
