package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
)

var (
	subject    string
	role       string
	ttlMinutes int
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token",
		Long:  `Sign an HS256 token with AUTH_JWT_SECRET for use against PATCH and DELETE complaint routes.`,
		RunE:  runToken,
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Token subject, usually the operator's handle")
	cmd.Flags().StringVarP(&role, "role", "r", string(auth.RoleOperator), "Role claim (operator, viewer)")
	cmd.Flags().IntVar(&ttlMinutes, "ttl", 0, "Lifetime in minutes (default AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Auth.Enabled() {
		return errors.New("AUTH_JWT_SECRET is not set; the operator guard is disabled")
	}

	r := auth.Role(role)
	if !r.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	ttl := cfg.Auth.AccessTokenTTLMinutes
	if ttlMinutes > 0 {
		ttl = ttlMinutes
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl, cfg.App.Name)
	token, expiresAt, err := tokens.GenerateToken(subject, r)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
