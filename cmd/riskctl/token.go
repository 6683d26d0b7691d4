package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bibbank/riskcore/pkg/auth"
)

func tokenCmd() *cobra.Command {
	var (
		secret, privateKeyFile, issuer, tenant, subject string
		roles                                           []string
		ttl                                             time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT for riskd",
		Example: `  riskctl token --secret dev-secret --tenant 6f1c... --role underwriter
  riskctl token --private-key key.pem --tenant 6f1c... --role auditor --ttl 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			userID := uuid.New()
			if subject != "" {
				if userID, err = uuid.Parse(subject); err != nil {
					return fmt.Errorf("invalid --subject: %w", err)
				}
			}

			cfg := auth.JWTConfig{Secret: secret, Issuer: issuer, Expiration: ttl}
			if privateKeyFile != "" {
				pem, err := auth.LoadKeyFromFile(privateKeyFile)
				if err != nil {
					return err
				}
				cfg = auth.JWTConfig{PrivateKeyPEM: string(pem), Issuer: issuer, Expiration: ttl}
			}
			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(userID, tenantID, roles)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret")
	cmd.Flags().StringVar(&privateKeyFile, "private-key", "", "RSA private key PEM; overrides --secret")
	cmd.Flags().StringVar(&issuer, "issuer", "", "token issuer")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant UUID")
	cmd.Flags().StringVar(&subject, "subject", "", "user UUID (random when empty)")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleUnderwriter}, "roles to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
