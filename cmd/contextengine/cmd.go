package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	contextengine "github.com/nucleusmind/contextengine"
	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/internal/mylog"
	"github.com/nucleusmind/contextengine/server"
)

func newCmd() *cobra.Command {
	var (
		plansFile  string
		sqlitePath string
	)

	cmd := &cobra.Command{
		Use:   "contextengine",
		Short: "Serve the contextual memory retrieval engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			logConfig := config.NewLogConfig()
			logger := mylog.NewLogger(logConfig.LogLevel, logConfig.LogHandler)

			engineConfig := config.NewEngineConfig()
			if sqlitePath != "" {
				engineConfig.SqlitePath = sqlitePath
			}

			var catalog config.PlanCatalog
			if plansFile != "" {
				var err error
				if catalog, err = config.LoadPlansFromFile(plansFile); err != nil {
					return err
				}
				logger.Info("loaded plan catalog", slog.String("file", plansFile), slog.Int("tiers", len(catalog)))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, err := contextengine.NewEngine(ctx,
				contextengine.WithLogger(logger),
				contextengine.WithEngineConfig(engineConfig),
				contextengine.WithPlanCatalog(catalog),
			)
			if err != nil {
				return err
			}
			defer func() {
				if err := engine.Close(); err != nil {
					logger.Warn("failed to close engine", slog.Any("error", err))
				}
			}()

			srv := server.New(engine, logger, config.NewServerConfig())
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&plansFile, "plans", "", "YAML file overriding per-tier plan limits")
	cmd.Flags().StringVar(&sqlitePath, "db", "", "path to the sqlite database file")

	return cmd
}
