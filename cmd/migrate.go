package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/m04kA/MHS-BookingService/internal/config"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage/migrate"
	"github.com/m04kA/MHS-BookingService/migrations"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate up|down|version|force N",
		Short: "Применить миграции схемы хранилища",
		Long: "Для postgres выполняет SQL миграции через golang-migrate.\n" +
			"Для neo4j команда up создает ограничения уникальности и индексы.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "version", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if cfg.Storage.Driver == config.DriverNeo4j {
				return migrateGraph(cmd, *configPath, args[0])
			}

			log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Close()

			if err := migrate.Run(log, cfg.Database.URL(), migrations.FS, args[0], args[1:]); err != nil {
				log.Error("Migration %s failed: %v", args[0], err)
				return err
			}
			return nil
		},
	}
}

func migrateGraph(cmd *cobra.Command, configPath, command string) error {
	if command != "up" {
		return fmt.Errorf("%w: %s is not supported for %s storage", migrate.ErrUnknownCommand, command, config.DriverNeo4j)
	}

	a, err := newApp(cmd.Context(), configPath, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.ensureSchema(cmd.Context())
}
