package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/application/usecase"
	"github.com/bibbank/riskcore/internal/infrastructure/adapter"
	"github.com/bibbank/riskcore/internal/infrastructure/memory"
	grpcPresentation "github.com/bibbank/riskcore/internal/presentation/grpc"
	"github.com/bibbank/riskcore/pkg/tlsutil"
)

func evaluateCmd() *cobra.Command {
	var (
		file        string
		minimumWage string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a credit application",
		Long: `Score the application in --file (JSON, "-" for stdin) and print the assessment.

Without --server the engine runs in-process with the deterministic stub bureau.
With --server the request is sent to riskd over gRPC; the tenant comes from the token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req dto.EvaluateApplicationRequest
			if err := readJSON(file, &req); err != nil {
				return err
			}

			if server := viper.GetString("server.address"); server != "" {
				client, closeConn, err := dialRisk(server)
				if err != nil {
					return err
				}
				defer closeConn()
				ctx, cancel := authContext(cmd.Context())
				defer cancel()
				resp, err := client.EvaluateApplication(ctx, &req)
				if err != nil {
					return fmt.Errorf("evaluate application: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), resp)
			}

			wage, err := decimal.NewFromString(minimumWage)
			if err != nil {
				return fmt.Errorf("invalid --minimum-wage %q: %w", minimumWage, err)
			}
			resp, err := evaluateLocal(cmd.Context(), req, wage)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "application JSON file")
	cmd.Flags().StringVar(&minimumWage, "minimum-wage", "21000", "fallback monthly minimum wage for local runs")
	return cmd
}

// evaluateLocal runs the full pipeline in-process against in-memory
// persistence.
func evaluateLocal(ctx context.Context, req dto.EvaluateApplicationRequest, minimumWage decimal.Decimal) (dto.AssessmentResponse, error) {
	uc := usecase.NewEvaluateApplicationUseCase(
		memory.NewAssessmentRepo(),
		adapter.NewStubCreditBureauClient(),
		nil,
		slog.Default(),
		minimumWage,
	)
	resp, err := uc.Execute(ctx, req)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("evaluate application: %w", err)
	}
	return resp, nil
}

func addServerFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("server", "", "riskd gRPC address; empty runs locally")
	flags.String("token", "", "bearer token for riskd")
	flags.String("ca-file", "", "CA certificate for TLS to riskd")
	flags.String("cert-file", "", "client certificate for mutual TLS")
	flags.String("key-file", "", "client key for mutual TLS")
	flags.Bool("plaintext", false, "connect to riskd without TLS")
	flags.Duration("timeout", 30*time.Second, "request timeout")

	_ = viper.BindPFlag("server.address", flags.Lookup("server"))
	_ = viper.BindPFlag("server.token", flags.Lookup("token"))
	_ = viper.BindPFlag("server.ca_file", flags.Lookup("ca-file"))
	_ = viper.BindPFlag("server.cert_file", flags.Lookup("cert-file"))
	_ = viper.BindPFlag("server.key_file", flags.Lookup("key-file"))
	_ = viper.BindPFlag("server.plaintext", flags.Lookup("plaintext"))
	_ = viper.BindPFlag("server.timeout", flags.Lookup("timeout"))
}

func dialRisk(address string) (grpcPresentation.RiskServiceClient, func(), error) {
	var creds credentials.TransportCredentials
	if viper.GetBool("server.plaintext") {
		creds = insecure.NewCredentials()
	} else {
		var err error
		creds, err = tlsutil.ClientTLSConfig(tlsutil.ClientOptions{
			CAFile:   viper.GetString("server.ca_file"),
			CertFile: viper.GetString("server.cert_file"),
			KeyFile:  viper.GetString("server.key_file"),
		})
		if err != nil {
			return nil, nil, err
		}
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return grpcPresentation.NewRiskServiceClient(conn), func() { _ = conn.Close() }, nil
}

// authContext bounds ctx by the request timeout and attaches the bearer token.
func authContext(ctx context.Context) (context.Context, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if timeout := viper.GetDuration("server.timeout"); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	if token := viper.GetString("server.token"); token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	return ctx, cancel
}
