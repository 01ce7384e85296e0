package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/classifystack/drift-engine/internal/models"
)

const opTimeout = 30 * time.Second

func newCheckCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one drift analysis and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(false)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			report, alert := rt.service.RunAnalysis(ctx)
			if asJSON {
				return printJSON(map[string]any{"report": report, "alert": alert})
			}

			fmt.Printf("status:    %s\n", report.Status)
			fmt.Printf("severity:  %s\n", report.Severity)
			fmt.Printf("overall:   %.4f (data=%.4f prediction=%.4f confidence=%.4f)\n",
				report.OverallDriftScore, report.DataDriftScore,
				report.PredictionDriftScore, report.PerformanceDriftScore)
			fmt.Printf("samples:   ref=%d cur=%d total=%d\n",
				report.ReferenceSamples, report.CurrentSamples, report.TotalSamples)
			if report.Message != "" {
				fmt.Printf("message:   %s\n", report.Message)
			}
			if alert != nil {
				fmt.Printf("alert:     %s\n", alert.Message)
				fmt.Printf("action:    %s\n", alert.RecommendedAction)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func newAlertsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List active drift alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			alerts, err := rt.service.ActiveAlerts(ctx, limit)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Println("no active alerts")
				return nil
			}
			for _, alert := range alerts {
				ack := " "
				if alert.Acknowledged {
					ack = "*"
				}
				fmt.Printf("%s #%-4d %-8s %.4f  %s\n",
					ack, alert.ReportID, alert.Severity, alert.OverallDriftScore,
					alert.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of alerts to list")
	cmd.AddCommand(newAlertsAckCmd())
	return cmd
}

func newAlertsAckCmd() *cobra.Command {
	var actionType, performedBy string
	cmd := &cobra.Command{
		Use:   "ack <report-id>",
		Short: "Acknowledge an alert by recording an action against its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid report id %q", args[0])
			}

			rt, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			action, err := rt.service.Acknowledge(ctx, reportID, models.ActionType(actionType), nil, performedBy)
			if err != nil {
				return err
			}
			fmt.Printf("recorded action #%d (%s) for report #%d\n", action.ID, action.ActionType, reportID)
			return nil
		},
	}
	cmd.Flags().StringVar(&actionType, "action", string(models.ActionAcknowledge), "action type to record")
	cmd.Flags().StringVar(&performedBy, "by", "", "who performed the action")
	return cmd
}

func newReportsCmd() *cobra.Command {
	var limit int
	var summary bool
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List recent drift reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			if summary {
				s, err := rt.service.ReportSummary(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(s)
			}

			reports, err := rt.service.ReportHistory(ctx, limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no reports")
				return nil
			}
			for _, report := range reports {
				fmt.Printf("#%-4d %-18s %-8s %.4f  %s\n",
					report.ID, report.Status, report.Severity,
					report.OverallDriftScore, report.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of reports to list")
	cmd.Flags().BoolVar(&summary, "summary", false, "print an aggregate summary instead of the list")
	return cmd
}

func newActionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the recorded action audit trail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()

			actions, err := rt.service.ActionHistory(ctx, limit)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				fmt.Println("no actions recorded")
				return nil
			}
			for _, action := range actions {
				fmt.Printf("#%-4d report=%-4d %-18s by=%-12s %s\n",
					action.ID, action.DriftReportID, action.ActionType,
					action.PerformedBy, action.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of actions to list")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
