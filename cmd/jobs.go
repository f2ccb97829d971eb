package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	generateSlotsUC "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
)

func newSlotsCmd(configPath *string) *cobra.Command {
	slots := &cobra.Command{
		Use:   "slots",
		Short: "Управление расписанием слотов",
	}
	slots.AddCommand(newGenerateCmd(configPath), newDistributeCmd(configPath))
	return slots
}

func newGenerateCmd(configPath *string) *cobra.Command {
	var (
		strategy   string
		salesmanID string
		days       int
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Сгенерировать слоты на горизонт расписания",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := &generateSlotsUC.Request{
				Strategy: generateSlotsUC.Strategy(strategy),
				DryRun:   dryRun,
			}
			if salesmanID != "" {
				req.SalesmanID = &salesmanID
				if strategy == "" {
					req.Strategy = generateSlotsUC.StrategyExplicit
				}
			}
			if cmd.Flags().Changed("days") {
				req.Days = &days
			}

			a, err := newApp(cmd.Context(), *configPath, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.buildComponents()
			if err != nil {
				return err
			}

			resp, err := c.generate.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strategy=%s dry_run=%t candidates=%d created=%d existing=%d unassigned=%d\n",
				resp.Strategy, resp.DryRun, resp.Candidates, resp.Created, resp.Existing, resp.Unassigned)
			if dryRun {
				for _, s := range resp.Slots {
					salesman := "-"
					if s.SalesmanID != nil {
						salesman = *s.SalesmanID
					}
					fmt.Fprintf(out, "%s\t%s\n", s.WhenUTC.Format(time.RFC3339), salesman)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "default | round_robin | explicit (по умолчанию из конфигурации)")
	cmd.Flags().StringVar(&salesmanID, "salesman", "", "назначить все слоты менеджеру (стратегия explicit)")
	cmd.Flags().IntVar(&days, "days", 0, "горизонт в днях вместо slots.horizon_days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "только показать кандидатов")
	return cmd
}

func newDistributeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute",
		Short: "Распределить неназначенные будущие слоты по активным менеджерам по кругу",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.buildComponents()
			if err != nil {
				return err
			}

			available := domain.SlotAvailable
			now := time.Now().UTC()
			slots, err := c.slots.List(cmd.Context(), domain.SlotsFilter{
				Status:     &available,
				From:       &now,
				Unassigned: true,
			})
			if err != nil {
				return err
			}

			assigned, err := c.assigner.DistributeRoundRobin(cmd.Context(), slots)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "unassigned=%d assigned=%d\n", len(slots), assigned)
			return nil
		},
	}
}

func newMaintainCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Однократно удалить просроченные слоты и назначить неназначенные",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.buildComponents()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout := a.cfg.Maintenance.Timeout(); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			report, err := c.maintenance.PruneAndReconcile(ctx, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pruned=%d assigned=%d unassigned=%d duplicates_removed=%d\n",
				report.Pruned, report.Assigned, report.Unassigned, report.DuplicatesRemoved)
			return nil
		},
	}
}
