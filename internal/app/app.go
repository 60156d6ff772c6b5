// Package app wires configuration, storage, services, and transports
// into a runnable application.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"worktime/internal/api"
	"worktime/internal/config"
	"worktime/internal/db"
	"worktime/internal/db/repository"
	"worktime/internal/service/worktime"
)

// App owns the full dependency graph.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	WriteDB   *sql.DB
	ReadDB    *sql.DB
	Store     *repository.Store
	Employees *repository.EmployeeRepo
	Devices   *repository.DeviceRepo
	Leaves    *repository.LeaveRepo
	Stats     *repository.StatsRepo
	Engine    *worktime.Engine
	Cleaner   *worktime.Cleaner
	Ingestor  *worktime.Ingestor
	Scheduler *worktime.Scheduler
}

// New loads configuration, opens storage, runs migrations, and builds
// every service.
func New() (*App, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the app over an already-loaded configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, warning := range cfg.Warnings {
		log.Warn("config", "warning", warning)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(writeDB); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, err
	}

	calendar := config.DefaultCalendar()
	if cfg.CalendarPath != "" {
		if calendar, err = config.LoadCalendar(cfg.CalendarPath); err != nil {
			_ = writeDB.Close()
			_ = readDB.Close()
			return nil, err
		}
	}

	store := repository.NewStore(writeDB)
	employees := repository.NewEmployeeRepo(readDB)
	devices := repository.NewDeviceRepo(readDB)
	leaves := repository.NewLeaveRepo(readDB)
	dir := worktime.NewDirectoryService(employees, leaves, calendar)
	engine := worktime.NewEngine(store, dir, log, cfg.DefaultBatchSize)

	return &App{
		Config:    cfg,
		Log:       log,
		WriteDB:   writeDB,
		ReadDB:    readDB,
		Store:     store,
		Employees: employees,
		Devices:   devices,
		Leaves:    leaves,
		Stats:     repository.NewStatsRepo(readDB),
		Engine:    engine,
		Cleaner:   worktime.NewCleaner(store, log, loc),
		Ingestor:  worktime.NewIngestor(store.Events(), devices, employees, log, loc),
		Scheduler: worktime.NewScheduler(engine, log, cfg.ProcessCron),
	}, nil
}

// Close releases storage handles.
func (a *App) Close() {
	if a.ReadDB != nil {
		_ = a.ReadDB.Close()
	}
	if a.WriteDB != nil {
		_ = a.WriteDB.Close()
	}
}

// Router assembles the HTTP handler over the app's services. shutdown
// signals background middleware goroutines to stop.
func (a *App) Router(shutdown <-chan struct{}) http.Handler {
	loc, _ := a.Config.Location()
	h := api.NewHandler(api.HandlerDeps{
		Engine:    a.Engine,
		Cleaner:   a.Cleaner,
		Ingest:    a.Ingestor,
		Stats:     a.Stats,
		Sessions:  a.Store.Sessions(),
		Summaries: a.Store.Summaries(),
		Audit:     a.Store.Audit(),
		Employees: a.Employees,
		Log:       a.Log,
		Location:  loc,
	})
	return api.NewRouter(h, api.RouterConfig{
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		RateLimitRPS:       a.Config.RateLimitRPS,
		RateLimitBurst:     a.Config.RateLimitBurst,
		Shutdown:           shutdown,
	})
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled,
// then shuts both down gracefully.
func (a *App) Serve(ctx context.Context) error {
	shutdown := make(chan struct{})
	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.Router(shutdown),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := a.Scheduler.Start(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Config.ListenAddr, "env", a.Config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		close(shutdown)
		a.Scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
