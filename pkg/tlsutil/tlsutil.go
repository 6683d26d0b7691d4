// Package tlsutil loads TLS credentials for the riskcore gRPC server and the
// riskctl client, and mints a development PKI for both.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// ServerTLSConfig loads the server key pair. A non-empty clientCAFile turns
// on mutual TLS: clients must present a certificate signed by that CA.
func ServerTLSConfig(certFile, keyFile, clientCAFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if clientCAFile != "" {
		pool, err := loadPool(clientCAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return credentials.NewTLS(cfg), nil
}

// ClientOptions configures riskctl's connection to riskd.
type ClientOptions struct {
	// CAFile pins the server's CA; empty uses the system pool.
	CAFile string
	// CertFile and KeyFile present a client certificate for mutual TLS.
	CertFile string
	KeyFile  string
}

// ClientTLSConfig builds gRPC client credentials from opts.
func ClientTLSConfig(opts ClientOptions) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if opts.CAFile != "" {
		pool, err := loadPool(opts.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if opts.CertFile != "" || opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsutil: load client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return credentials.NewTLS(cfg), nil
}

func loadPool(caFile string) (*x509.CertPool, error) {
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("tlsutil: no certificates in %s", caFile)
	}
	return pool, nil
}

// DevPKI lists the files written by GenerateDevPKI.
type DevPKI struct {
	CACert, CAKey         string
	ServerCert, ServerKey string
	ClientCert, ClientKey string
}

// GenerateDevPKI writes a throwaway CA plus a server certificate for hosts
// and a client certificate for mutual TLS into outDir. Leaf certificates are
// valid for validity; the CA for ten times as long.
func GenerateDevPKI(hosts []string, outDir string, validity time.Duration) (DevPKI, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevPKI{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}
	out := DevPKI{
		CACert:     filepath.Join(outDir, "ca.pem"),
		CAKey:      filepath.Join(outDir, "ca-key.pem"),
		ServerCert: filepath.Join(outDir, "server.pem"),
		ServerKey:  filepath.Join(outDir, "server-key.pem"),
		ClientCert: filepath.Join(outDir, "client.pem"),
		ClientKey:  filepath.Join(outDir, "client-key.pem"),
	}
	now := time.Now()

	caTemplate := &x509.Certificate{
		Subject:               pkix.Name{Organization: []string{"riskcore dev CA"}},
		NotBefore:             now,
		NotAfter:              now.Add(10 * validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	ca, caKey, err := issue(caTemplate, nil, nil, out.CACert, out.CAKey)
	if err != nil {
		return DevPKI{}, err
	}

	server := &x509.Certificate{
		Subject:     pkix.Name{Organization: []string{"riskcore"}, CommonName: "riskd"},
		NotBefore:   now,
		NotAfter:    now.Add(validity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			server.IPAddresses = append(server.IPAddresses, ip)
		} else {
			server.DNSNames = append(server.DNSNames, h)
		}
	}
	if _, _, err := issue(server, ca, caKey, out.ServerCert, out.ServerKey); err != nil {
		return DevPKI{}, err
	}

	client := &x509.Certificate{
		Subject:     pkix.Name{Organization: []string{"riskcore"}, CommonName: "riskctl"},
		NotBefore:   now,
		NotAfter:    now.Add(validity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	if _, _, err := issue(client, ca, caKey, out.ClientCert, out.ClientKey); err != nil {
		return DevPKI{}, err
	}
	return out, nil
}

// issue signs template with parent (self-signed when parent is nil) and
// writes the certificate and a fresh P-256 key as PEM.
func issue(template, parent *x509.Certificate, parentKey *ecdsa.PrivateKey, certPath, keyPath string) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: serial number: %w", err)
	}
	template.SerialNumber = serial
	if parent == nil {
		parent, parentKey = template, key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: create certificate %s: %w", certPath, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: parse certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: marshal key: %w", err)
	}
	if err := writePEM(certPath, "CERTIFICATE", der); err != nil {
		return nil, nil, err
	}
	if err := writePEM(keyPath, "EC PRIVATE KEY", keyDER); err != nil {
		return nil, nil, err
	}
	return cert, key, nil
}

func writePEM(path, blockType string, data []byte) error {
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: data}), 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	return nil
}
