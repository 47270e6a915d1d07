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

	intconfig "habittracker/internal/config"
	intdb "habittracker/internal/db"
	router "habittracker/internal/http"
	"habittracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the command line and logs a failure. Until the config is
// loaded the fallback production logger is used.
func run(ctx context.Context, args []string) int {
	utils.EnsureLogger()
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		utils.L().Error("habittracker gagal", zap.Error(err))
		_ = utils.L().Sync()
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "habittracker",
		Short:         "habittracker serves the habit tracking REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	root.AddCommand(serveCmd(&configPath), migrateCmd(&configPath))
	return root
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(*cobra.Command, []string) error {
			return withDB(*configPath, intdb.MigrateUp)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(*cobra.Command, []string) error {
			return withDB(*configPath, func(db *sql.DB) error { return intdb.MigrateDown(db, steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

// setup loads the config and installs the process logger.
func setup(configPath string) (intconfig.Env, error) {
	env, err := intconfig.LoadEnv(configPath)
	if err != nil {
		return intconfig.Env{}, err
	}
	log, err := utils.NewLogger(env.LogLevel)
	if err != nil {
		return intconfig.Env{}, err
	}
	utils.SetLogger(log)
	return env, nil
}

func withDB(configPath string, fn func(*sql.DB) error) error {
	env, err := setup(configPath)
	if err != nil {
		return err
	}
	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()
	if err := fn(db); err != nil {
		return err
	}
	utils.LogEvent("", "db", "migrate", "migrasi selesai")
	return nil
}

func serve(ctx context.Context, configPath string) error {
	env, err := setup(configPath)
	if err != nil {
		return err
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	log := utils.L()
	defer func() { _ = log.Sync() }()

	if env.JWTSecret == "" {
		return errors.New("JWT_SECRET wajib diisi")
	}

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	deps, err := router.NewDeps(db, env)
	if err != nil {
		return err
	}
	r, err := router.NewRouter(env, deps, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server berjalan", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Mematikan server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server berhenti dengan aman.")
	return nil
}
