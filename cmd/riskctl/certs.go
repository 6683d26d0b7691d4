package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibbank/riskcore/pkg/tlsutil"
)

func certsCmd() *cobra.Command {
	var (
		hosts    []string
		outDir   string
		validity time.Duration
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a development CA with riskd server and riskctl client certificates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pki, err := tlsutil.GenerateDevPKI(hosts, outDir, validity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "GRPC_TLS_CERT_FILE=%s\n", pki.ServerCert)
			fmt.Fprintf(out, "GRPC_TLS_KEY_FILE=%s\n", pki.ServerKey)
			fmt.Fprintf(out, "GRPC_TLS_CLIENT_CA_FILE=%s\n", pki.CACert)
			fmt.Fprintf(out, "riskctl --ca-file %s --cert-file %s --key-file %s\n", pki.CACert, pki.ClientCert, pki.ClientKey)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs for the server certificate")
	cmd.Flags().StringVar(&outDir, "out", "certs", "output directory")
	cmd.Flags().DurationVar(&validity, "validity", 365*24*time.Hour, "leaf certificate lifetime")
	return cmd
}
