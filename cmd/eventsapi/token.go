package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventsapi/config"
	"eventsapi/internal/adapters/auth"
	"eventsapi/internal/domain"
)

var (
	tokenUserID string
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token for local testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if tokenUserID == "" {
			tokenUserID = domain.NewID()
		}
		token, err := auth.NewJWTIssuer(cfg.JWTSecret, tokenTTL).Issue(domain.Identity{ID: tokenUserID, Role: tokenRole})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "id", "", "user id to embed (random if empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "user", "role to embed, e.g. user or guest")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime; 0 issues a token without expiry")
	rootCmd.AddCommand(tokenCmd)
}
