package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.toml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "mhs-booking",
		Short: "Запись лидов на консультацию по дизайну дома",
		Long: "MHS-BookingService принимает заявки лидов, ведет расписание слотов менеджеров\n" +
			"и бронирует консультации без двойной записи.",
		SilenceUsage: true,
		// без подкоманды запускается HTTP сервер
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "путь к TOML конфигурации")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newSlotsCmd(&configPath),
		newMaintainCmd(&configPath),
	)
	return root
}
