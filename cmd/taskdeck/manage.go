package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/core/service"
	"github.com/erptask/taskdeck/internal/pkg/validate"
)

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and manage a single task",
	}
	cmd.AddCommand(taskShowCmd(), taskCreateCmd(), taskDoneCmd(), taskRemoveCmd())
	return cmd
}

func taskID(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := taskID(args)
			if err != nil {
				return err
			}

			t, err := a.gateway.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("#%d %s\n", t.ID, t.Title)
			if t.Description != "" {
				fmt.Println(t.Description)
			}
			fmt.Printf("status=%s priority=%s due=%s escalated=%t\n",
				t.Status, t.Priority, t.DueDate.Format("2006-01-02"), t.IsEscalated)
			if t.Assignee != nil {
				fmt.Printf("assignee: %s <%s>\n", t.Assignee.Name, t.Assignee.Email)
			}
			return nil
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var in ports.CreateTaskInput
	var due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			in.DueDate, err = time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid --due date %q (want YYYY-MM-DD)", due)
			}
			if err := validate.Struct(in); err != nil {
				return err
			}

			t, err := a.gateway.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Created task #%d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "task title")
	cmd.Flags().StringVar(&in.Description, "description", "", "task description")
	cmd.Flags().StringVar(&in.Priority, "priority", "medium", "low, medium, high, or critical")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&in.AssignedTo, "assign", 0, "assignee user id")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("assign")
	return cmd
}

func taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := taskID(args)
			if err != nil {
				return err
			}
			if err := a.gateway.UpdateTaskStatus(cmd.Context(), id, domain.StatusCompleted); err != nil {
				return err
			}
			fmt.Printf("Task #%d completed\n", id)
			return nil
		},
	}
}

func taskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := taskID(args)
			if err != nil {
				return err
			}
			if err := a.gateway.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Task #%d deleted\n", id)
			return nil
		},
	}
}

func notificationsCmd() *cobra.Command {
	var unreadOnly, markAllRead bool
	var remove int

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List your notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			if remove > 0 {
				if err := a.gateway.DeleteNotification(cmd.Context(), remove); err != nil {
					return err
				}
				fmt.Printf("Notification #%d deleted\n", remove)
				return nil
			}
			if markAllRead {
				if err := a.gateway.MarkAllRead(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("All notifications marked read")
				return nil
			}

			items, err := a.gateway.ListNotifications(cmd.Context(), unreadOnly)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREAD\tTYPE\tMESSAGE")
			for _, n := range items {
				read := " "
				if n.IsRead {
					read = "*"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, read, n.Type, n.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "unread notifications only")
	cmd.Flags().BoolVar(&markAllRead, "mark-all-read", false, "mark everything read instead of listing")
	cmd.Flags().IntVar(&remove, "rm", 0, "delete the notification with this id instead of listing")
	return cmd
}

func activityCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show your recent audit activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			entries, err := a.gateway.MyActivity(cmd.Context(), days)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tENTITY\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.Action, e.EntityType, e.Details)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "lookback window in days")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Team workload overview (manager or admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			snap, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if a.guard.Decide(snap, "/audit") != service.DecisionRender {
				return fmt.Errorf("requires the %s or %s role", domain.RoleManager, domain.RoleAdmin)
			}

			stats, err := a.gateway.ManagerStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("tasks=%d overdue=%d high_risk=%d overloaded_users=%d\n",
				stats.TotalTasks, stats.OverdueTasks, stats.HighRiskTasks, stats.OverloadedUsers)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			if risky, err := a.gateway.HighRiskTasks(cmd.Context()); err == nil {
				for _, t := range risky {
					fmt.Fprintf(w, "  high-risk\t%d\t%.2f\t%s\n", t.ID, t.ConfidenceScore, t.Title)
				}
			}
			if overdue, err := a.gateway.OverdueTasks(cmd.Context()); err == nil {
				for _, t := range overdue {
					fmt.Fprintf(w, "  overdue\t%d\t%s\t%s\n", t.ID, t.DueDate.Format("2006-01-02"), t.Title)
				}
			}
			return w.Flush()
		},
	}
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users [id]",
		Short: "List all user accounts, or show one (admin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			snap, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			// Same allow-list the backend enforces; failing fast saves the
			// round-trip and gives a clearer message than a raw 403.
			if a.guard.Decide(snap, "/users") != service.DecisionRender {
				return fmt.Errorf("requires the %s role", domain.RoleAdmin)
			}

			var users []domain.User
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid user id %q", args[0])
				}
				u, err := a.gateway.GetUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				users = []domain.User{*u}
			} else {
				if users, err = a.gateway.ListUsers(cmd.Context()); err != nil {
					return err
				}
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.IsActive)
			}
			return w.Flush()
		},
	}
}
