package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/bibbank/riskcore/internal/domain/port"
)

// StubCreditBureauClient is a development/test adapter that returns a
// deterministic credit report derived from the national ID.
type StubCreditBureauClient struct{}

var _ port.CreditBureauClient = (*StubCreditBureauClient)(nil)

// NewStubCreditBureauClient creates a new stub adapter.
func NewStubCreditBureauClient() *StubCreditBureauClient {
	return &StubCreditBureauClient{}
}

// GetCreditReport returns a score between 300 and 850 based on a hash of the
// national ID. Scores under 500 carry a DELINQUENT flag.
func (c *StubCreditBureauClient) GetCreditReport(_ context.Context, nationalID string) (port.CreditReport, error) {
	if nationalID == "" {
		return port.CreditReport{}, fmt.Errorf("national ID is required")
	}

	h := sha256.Sum256([]byte(nationalID))
	score := 300 + int(binary.BigEndian.Uint32(h[:4])%551)

	report := port.CreditReport{Score: score}
	if score < 500 {
		report.Flags = []string{"DELINQUENT"}
	}
	return report, nil
}
