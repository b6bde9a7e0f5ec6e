package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up users",
}

var userSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find users by name, username, or email",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserSearch,
}

func init() {
	userCmd.AddCommand(userSearchCmd)
}

func runUserSearch(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	users, err := c.SearchUsers(cmd.Context(), args[0])
	if err != nil {
		return sessionErr(err)
	}

	if len(users) == 0 {
		fmt.Println("no matching users")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Username, u.FullName, u.Email})
	}
	fmt.Print(renderTable([]string{"ID", "USERNAME", "NAME", "EMAIL"}, rows))
	return nil
}
