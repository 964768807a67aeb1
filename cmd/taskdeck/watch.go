package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/erptask/taskdeck/internal/core/service"
)

const renderInterval = 5 * time.Second

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard: tasks, notifications, and (for managers) the audit trail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			snap, err := a.requireSession(ctx)
			if err != nil {
				return err
			}

			dash := service.NewDashboardView(a.gateway, a.dialer, a.log)
			if err := dash.Start(ctx); err != nil {
				return err
			}
			defer dash.Close()

			notif := service.NewNotificationsView(a.gateway, a.dialer, snap.User.ID, a.cfg.UnreadPollInterval, a.log)
			if err := notif.Start(ctx); err != nil {
				return err
			}
			defer notif.Close()

			// The audit view mounts only when the guard would render the
			// route; the backend enforces the same allow-list server-side.
			var audit *service.AuditView
			if a.guard.Decide(snap, "/audit") == service.DecisionRender {
				audit = service.NewAuditView(a.gateway, a.dialer, a.log)
				if err := audit.Start(ctx); err != nil {
					return err
				}
				defer audit.Close()
			}

			if a.cfg.MetricsAddr != "" {
				e := echo.New()
				e.HideBanner = true
				e.HidePort = true
				e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
				go func() {
					if err := e.Start(a.cfg.MetricsAddr); err != nil {
						a.log.Debug().Err(err).Msg("metrics listener stopped")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = e.Shutdown(shutdownCtx)
				}()
			}

			fmt.Printf("Watching as %s (%s), Ctrl-C to quit\n", snap.User.Name, snap.User.Role)

			ticker := time.NewTicker(renderInterval)
			defer ticker.Stop()
			render(dash, notif, audit)
			for {
				select {
				case <-ctx.Done():
					fmt.Println("\nShutting down")
					return nil
				case <-ticker.C:
					// A force-expired session means every later render
					// would redirect to login; stop watching instead.
					if a.session.Current().State != service.StateAuthenticated {
						return fmt.Errorf("session expired, run `%s login` again", appName)
					}
					render(dash, notif, audit)
				}
			}
		},
	}
}

func render(dash *service.DashboardView, notif *service.NotificationsView, audit *service.AuditView) {
	stats := dash.Stats()
	fmt.Printf("\n[%s] tasks=%d in_progress=%d completed=%d overdue=%d high_risk=%d unread=%d\n",
		time.Now().Format("15:04:05"),
		stats.TotalTasks, stats.InProgress, stats.Completed, stats.Overdue, stats.HighRisk,
		notif.UnreadCount())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, t := range dash.Snapshot() {
		if i == 5 {
			break // headline rows only; the full list lives in `tasks`
		}
		fmt.Fprintf(w, "  task\t%d\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, t.Title)
	}
	if audit != nil {
		for i, e := range audit.Snapshot() {
			if i == 3 {
				break
			}
			fmt.Fprintf(w, "  audit\t%d\t%s\t%s\t%s\n", e.ID, e.Action, e.EntityType, e.Timestamp.Format("15:04:05"))
		}
	}
	w.Flush()
}
