/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mams-ops/apiserver/config"
	"github.com/mams-ops/apiserver/internal/session"
	"github.com/spf13/cobra"
)

var sessionServerURL string

// sessionCmd represents the session command.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the local login session",
}

var sessionLoginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and save the session locally",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := sessionManager()
		if err != nil {
			return err
		}
		user, err := manager.Login(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.FullName(), user.Role)
		return nil
	},
}

var sessionRegisterCmd = &cobra.Command{
	Use:   "register <username> <password> <first-name> <last-name>",
	Short: "Register a new logistics officer account and log in",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := sessionManager()
		if err != nil {
			return err
		}
		user, err := manager.Register(session.RegisterInput{
			Username:  args[0],
			Password:  args[1],
			FirstName: args[2],
			LastName:  args[3],
		})
		if err != nil {
			return err
		}
		fmt.Printf("registered and logged in as %s (%s)\n", user.FullName(), user.Role)
		return nil
	},
}

var sessionWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := sessionManager()
		if err != nil {
			return err
		}
		user, err := manager.Current()
		if err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				fmt.Println("not logged in")
				return nil
			}
			return err
		}
		fmt.Printf("%s (%s)\n", user.FullName(), user.Username)
		fmt.Printf("role: %s\n", user.Role)
		if user.BaseName != "" {
			fmt.Printf("base: %s\n", user.BaseName)
		}
		return nil
	},
}

var sessionLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := sessionManager()
		if err != nil {
			return err
		}
		if err := manager.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

func sessionManager() (*session.Manager, error) {
	cfg := config.LoadConfig()
	statePath := filepath.Join(cfg.StateDir, "session.json")
	return session.NewManager(sessionServerURL, statePath)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLoginCmd)
	sessionCmd.AddCommand(sessionRegisterCmd)
	sessionCmd.AddCommand(sessionWhoamiCmd)
	sessionCmd.AddCommand(sessionLogoutCmd)

	sessionCmd.PersistentFlags().StringVar(&sessionServerURL, "server", "http://localhost:8080", "API server base URL")
}
