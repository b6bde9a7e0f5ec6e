package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login [identifier]",
	Short: "Log in with your email or username",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clearSession()
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, user, err := newSession()
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (@%s, %s)\n", user.FullName, user.Email, user.Username, user.Role)
		return nil
	},
}

func runLogin(cmd *cobra.Command, args []string) error {
	var identifier, password string
	if len(args) > 0 {
		identifier = args[0]
	}

	var fields []huh.Field
	if identifier == "" {
		fields = append(fields, huh.NewInput().
			Title("Email or username").
			Value(&identifier))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.Login(cmd.Context(), identifier, password)
	if err != nil {
		return err
	}
	if err := saveSession(resp.Token, resp.User); err != nil {
		return err
	}

	fmt.Printf("logged in as %s\n", resp.User.Username)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	var fullName, username, email, password string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Full name").Value(&fullName),
		huh.NewInput().Title("Username").Value(&username),
		huh.NewInput().Title("Email").Value(&email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
	))
	if err := form.Run(); err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.Register(cmd.Context(), api.RegisterRequest{
		FullName: fullName,
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	if err := saveSession(resp.Token, resp.User); err != nil {
		return err
	}

	fmt.Printf("registered as %s\n", resp.User.Username)
	return nil
}
