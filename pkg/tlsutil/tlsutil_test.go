package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

func TestGenerateDevPKI(t *testing.T) {
	dir := t.TempDir()
	pki, err := GenerateDevPKI([]string{"localhost", "127.0.0.1"}, dir, 24*time.Hour)
	require.NoError(t, err)

	ca := readCert(t, pki.CACert)
	server := readCert(t, pki.ServerCert)
	client := readCert(t, pki.ClientCert)

	assert.True(t, ca.IsCA)
	assert.Equal(t, []string{"localhost"}, server.DNSNames)
	require.Len(t, server.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", server.IPAddresses[0].String())
	assert.NotEqual(t, server.SerialNumber, client.SerialNumber)

	roots := x509.NewCertPool()
	roots.AddCert(ca)
	_, err = server.Verify(x509.VerifyOptions{Roots: roots, DNSName: "localhost"})
	assert.NoError(t, err)
	_, err = client.Verify(x509.VerifyOptions{Roots: roots, KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}})
	assert.NoError(t, err)

	_, err = tls.LoadX509KeyPair(pki.ServerCert, pki.ServerKey)
	assert.NoError(t, err)

	info, err := os.Stat(pki.CAKey)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	pki, err := GenerateDevPKI([]string{"localhost"}, dir, time.Hour)
	require.NoError(t, err)

	creds, err := ServerTLSConfig(pki.ServerCert, pki.ServerKey, pki.CACert)
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	_, err = ClientTLSConfig(ClientOptions{CAFile: pki.CACert, CertFile: pki.ClientCert, KeyFile: pki.ClientKey})
	assert.NoError(t, err)

	_, err = ServerTLSConfig(pki.ServerCert, pki.ServerKey, filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)

	_, err = ClientTLSConfig(ClientOptions{CAFile: pki.ServerKey})
	assert.ErrorContains(t, err, "no certificates")
}
