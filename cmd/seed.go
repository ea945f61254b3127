/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/mams-ops/apiserver/config"
	"github.com/mams-ops/apiserver/internal/db"
	"github.com/mams-ops/apiserver/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo accounts and ledger records into Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()

		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer conn.Close()

		users := store.NewUserRepository(conn)
		for _, account := range store.DemoAccounts() {
			hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := account.User
			user.PasswordHash = string(hash)
			if _, err := users.Create(ctx, user); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					continue
				}
				return fmt.Errorf("seed user %s failed: %w", user.Username, err)
			}
		}

		purchases := store.NewPurchaseRepository(conn)
		for _, p := range store.DemoPurchases() {
			if _, err := purchases.Create(ctx, p); err != nil {
				return fmt.Errorf("seed purchases failed: %w", err)
			}
		}
		transfers := store.NewTransferRepository(conn)
		for _, t := range store.DemoTransfers() {
			if _, err := transfers.Create(ctx, t); err != nil {
				return fmt.Errorf("seed transfers failed: %w", err)
			}
		}
		assignments := store.NewAssignmentRepository(conn)
		for _, a := range store.DemoAssignments() {
			if _, err := assignments.Create(ctx, a); err != nil {
				return fmt.Errorf("seed assignments failed: %w", err)
			}
		}
		expenditures := store.NewExpenditureRepository(conn)
		for _, e := range store.DemoExpenditures() {
			if _, err := expenditures.Create(ctx, e); err != nil {
				return fmt.Errorf("seed expenditures failed: %w", err)
			}
		}

		fmt.Println("seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
