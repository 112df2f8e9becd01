package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"babycare-backend/internal/care"
	"babycare-backend/internal/db"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

// discard drops alerts; the project command never broadcasts.
type discard struct{}

func (discard) Broadcast(notification.Alert) {}

var projectCmd = &cobra.Command{
	Use:   "project TREATMENT_ID",
	Short: "Print the doses of a treatment that are left today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid treatment id %q", args[0])
		}

		gormDB, err := db.Open(&cfg.Database)
		if err != nil {
			return err
		}
		svc := care.NewService(store.NewGormStore(gormDB), discard{}, schedule.SystemClock{Location: cfg.Location}, cfg.Location, care.Options{})

		plan, err := svc.Plan(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		t := plan.Treatment
		fmt.Fprintf(out, "%s (%s) every %sh, %s\n", t.MedicineName, t.Dose,
			strconv.FormatFloat(t.FrequencyHours, 'f', -1, 64), status(t.Active))
		if len(plan.Today) == 0 {
			fmt.Fprintln(out, "No doses left today.")
		}
		for _, d := range plan.Today {
			mark := ""
			if d.Overdue {
				mark = " (overdue)"
			}
			fmt.Fprintf(out, "  %s%s\n", d.At.Format("15:04"), mark)
		}
		if plan.Next != nil && len(plan.Today) == 0 {
			fmt.Fprintf(out, "Next dose: %s\n", plan.Next.Format("02/01/2006 15:04"))
		}
		return nil
	},
}

func status(active bool) string {
	if active {
		return "active"
	}
	return "finished"
}

func init() {
	rootCmd.AddCommand(projectCmd)
}
