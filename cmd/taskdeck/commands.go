package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}

			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session credential",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			a.session.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			snap, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s> role=%s\n", snap.User.Name, snap.User.Email, snap.User.Role)
			return nil
		},
	}
}

func tasksCmd() *cobra.Command {
	var all bool
	var status string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks assigned to you (or all visible tasks with --all)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			var tasks []domain.Task
			if all {
				list, err := a.gateway.ListTasks(cmd.Context(), ports.TaskFilter{Status: status})
				if err != nil {
					return err
				}
				tasks = list
			} else {
				list, err := a.gateway.MyTasks(cmd.Context())
				if err != nil {
					return err
				}
				tasks = list
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
			for _, t := range tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.Status, t.Priority, t.DueDate.Format("2006-01-02"), t.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every visible task, not just yours")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (with --all)")
	return cmd
}

func broadcastCmd() *cobra.Command {
	var msgType, message, recipient string

	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Send a notification to all users, or one recipient with --to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			// Who may broadcast is the backend's call, not ours.
			err = a.gateway.Broadcast(cmd.Context(), ports.BroadcastInput{
				Type:           msgType,
				Message:        message,
				RecipientEmail: recipient,
			})
			if err != nil {
				return err
			}
			fmt.Println("Message sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&msgType, "type", "alert", "notification type")
	cmd.Flags().StringVar(&message, "message", "", "message body")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient email (empty = everyone)")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func prompt(label string) string {
	fmt.Print(label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
