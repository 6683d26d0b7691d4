package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers and instant for deterministic tests.
var (
	TestTenantID    = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestApplicantID = "APP-0001"
	TestNow         = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
)
