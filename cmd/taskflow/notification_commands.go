package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/client"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show your notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotifications,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all notifications as read",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsReadAll,
}

func init() {
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
}

func runNotifications(cmd *cobra.Command, args []string) error {
	c, user, err := newSession()
	if err != nil {
		return err
	}

	ns, err := c.Notifications(cmd.Context())
	if err != nil {
		return sessionErr(err)
	}

	state := client.Apply(client.State{User: user},
		client.NotificationsFetched{Notifications: ns})

	if len(state.Notifications) == 0 {
		fmt.Println("no notifications")
		return nil
	}

	rows := make([][]string, 0, len(state.Notifications))
	for _, n := range state.Notifications {
		read := " "
		if !n.Read {
			read = "*"
		}
		rows = append(rows, []string{read, n.ID, string(n.Type), n.Message})
	}
	fmt.Print(renderTable([]string{"", "ID", "TYPE", "MESSAGE"}, rows))
	fmt.Printf("%d unread\n", state.UnreadCount())
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	n, err := c.MarkRead(cmd.Context(), args[0])
	if err != nil {
		return sessionErr(err)
	}

	fmt.Printf("marked %s read\n", n.ID)
	return nil
}

func runNotificationsReadAll(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	if err := c.MarkAllRead(cmd.Context()); err != nil {
		return sessionErr(err)
	}

	fmt.Println("all notifications marked as read")
	return nil
}
