package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

// ErrInvalidDeclaredSalary is returned when salary consistency is checked
// against a declared salary that is zero or negative.
var ErrInvalidDeclaredSalary = errors.New("declared salary must be positive")

var (
	fastWithdrawalMinCredit = decimal.NewFromInt(10000)
	fastWithdrawalRatio     = decimal.NewFromFloat(0.90)
	roundAmountUnit         = decimal.NewFromInt(1000)
	salaryVarianceLimitPct  = decimal.NewFromInt(20)
	hundred                 = decimal.NewFromInt(100)

	nsfKeywords = []string{
		"nsf",
		"insufficient",
		"overdraft",
		"sobregiro",
		"fondos insuficientes",
		"rechazado",
		"devuelto",
	}
	transferKeywords = []string{"transferencia", "transfer", "traspaso"}

	accountNumberPattern = regexp.MustCompile(`\d{4,}`)
)

const (
	fastWithdrawalWindowDays = 1
	informalLenderMinRepeats = 3
	informalLenderDescLen    = 20
	hiddenAccountMinRepeats  = 3
	dateLayout               = "2006-01-02"
)

// ---------------------------------------------------------------------------
// PatternDetector – behavioural red flags in bank-statement transactions
// ---------------------------------------------------------------------------

// PatternDetector runs the five independent statement detectors. It holds no
// state and is safe for concurrent use.
type PatternDetector struct{}

// NewPatternDetector creates a new PatternDetector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// DetectAllPatterns runs every detector and flattens their findings into an
// ordered list of risk flags. The only error is a non-positive declared
// salary when salary deposits were detected.
func (d *PatternDetector) DetectAllPatterns(
	txns []valueobject.Transaction,
	declaredSalary decimal.Decimal,
	detectedSalaryDeposits []decimal.Decimal,
) (model.DetectedPatterns, error) {
	inconsistent, variance, err := d.DetectSalaryInconsistency(declaredSalary, detectedSalaryDeposits)
	if err != nil {
		return model.DetectedPatterns{}, fmt.Errorf("detect salary inconsistency: %w", err)
	}

	result := model.DetectedPatterns{
		FastWithdrawalDates:    d.DetectFastWithdrawal(txns),
		InformalLenderDetected: d.DetectInformalLender(txns),
		NSFCount:               d.CountNSF(txns),
		SalaryInconsistent:     inconsistent,
		SalaryVariancePct:      variance,
		HiddenAccountsDetected: d.DetectHiddenAccounts(txns),
		Flags:                  make([]model.RiskFlag, 0),
	}

	if len(result.FastWithdrawalDates) > 0 {
		result.Flags = append(result.Flags, model.RiskFlag{
			Kind:    valueobject.EvidenceFastWithdrawal,
			Display: "FAST_WITHDRAWAL: Detected on " + strings.Join(result.FastWithdrawalDates, ", "),
		})
	}
	if result.InformalLenderDetected {
		result.Flags = append(result.Flags, model.RiskFlag{
			Kind:    valueobject.EvidenceInformalLender,
			Display: "INFORMAL_LENDER_DETECTED",
		})
	}
	if result.NSFCount > 0 {
		result.Flags = append(result.Flags, model.RiskFlag{
			Kind:    valueobject.EvidenceNSFOverdraft,
			Display: fmt.Sprintf("NSF_OVERDRAFT: %d occurrences", result.NSFCount),
		})
	}
	if result.SalaryInconsistent {
		result.Flags = append(result.Flags, model.RiskFlag{
			Kind:    valueobject.EvidenceSalaryInconsistency,
			Display: fmt.Sprintf("SALARY_INCONSISTENCY: %s%% variance", variance.StringFixed(1)),
		})
	}
	if result.HiddenAccountsDetected {
		result.Flags = append(result.Flags, model.RiskFlag{
			Kind:    valueobject.EvidenceHiddenAccounts,
			Display: "MULTIPLE_HIDDEN_ACCOUNTS",
		})
	}

	return result, nil
}

// DetectFastWithdrawal returns, in ascending order, every date on which a
// credit of at least 10,000 was followed by debits within one calendar day
// totalling more than 90% of it.
func (d *PatternDetector) DetectFastWithdrawal(txns []valueobject.Transaction) []string {
	byDate := make(map[time.Time][]valueobject.Transaction)
	var debits []valueobject.Transaction
	for _, t := range txns {
		byDate[t.Date()] = append(byDate[t.Date()], t)
		if t.IsDebit() {
			debits = append(debits, t)
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for day := range byDate {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	detected := make([]string, 0)
	for _, day := range dates {
		for _, credit := range byDate[day] {
			if !credit.IsCredit() || credit.Amount().LessThan(fastWithdrawalMinCredit) {
				continue
			}

			withdrawn := decimal.Zero
			for _, debit := range debits {
				if absDays(debit.Date(), credit.Date()) <= fastWithdrawalWindowDays {
					withdrawn = withdrawn.Add(debit.Amount().Abs())
				}
			}

			if withdrawn.GreaterThan(credit.Amount().Mul(fastWithdrawalRatio)) {
				detected = append(detected, day.Format(dateLayout))
				break
			}
		}
	}
	return detected
}

// DetectInformalLender reports repeated round-amount debits to the same
// counterparty, a typical pattern of informal loan repayments.
func (d *PatternDetector) DetectInformalLender(txns []valueobject.Transaction) bool {
	type paymentKey struct {
		description string
		amount      string
	}

	groups := make(map[paymentKey]int)
	for _, t := range txns {
		if !t.IsDebit() || !t.Amount().Mod(roundAmountUnit).IsZero() {
			continue
		}
		key := paymentKey{
			description: descriptionKey(t.Description()),
			amount:      t.Amount().Abs().String(),
		}
		groups[key]++
		if groups[key] >= informalLenderMinRepeats {
			return true
		}
	}
	return false
}

// CountNSF counts transactions whose description mentions insufficient funds
// or an overdraft.
func (d *PatternDetector) CountNSF(txns []valueobject.Transaction) int {
	count := 0
	for _, t := range txns {
		if containsAny(strings.ToLower(t.Description()), nsfKeywords) {
			count++
		}
	}
	return count
}

// DetectSalaryInconsistency compares the declared salary with the mean of the
// detected salary deposits. With no deposits the salary cannot be verified
// and is reported as inconsistent with a variance of 100%.
func (d *PatternDetector) DetectSalaryInconsistency(
	declaredSalary decimal.Decimal,
	detectedSalaryDeposits []decimal.Decimal,
) (bool, decimal.Decimal, error) {
	if len(detectedSalaryDeposits) == 0 {
		return true, hundred, nil
	}
	if !declaredSalary.IsPositive() {
		return false, decimal.Zero, ErrInvalidDeclaredSalary
	}

	mean := decimal.Avg(detectedSalaryDeposits[0], detectedSalaryDeposits[1:]...)
	variance := declaredSalary.Sub(mean).Abs().Div(declaredSalary).Mul(hundred)

	return variance.GreaterThan(salaryVarianceLimitPct), variance, nil
}

// DetectHiddenAccounts looks for the same account number appearing in three
// or more transfer descriptions.
func (d *PatternDetector) DetectHiddenAccounts(txns []valueobject.Transaction) bool {
	counts := make(map[string]int)
	for _, t := range txns {
		if !containsAny(strings.ToLower(t.Description()), transferKeywords) {
			continue
		}
		for _, number := range accountNumberPattern.FindAllString(t.Description(), -1) {
			counts[number]++
			if counts[number] >= hiddenAccountMinRepeats {
				return true
			}
		}
	}
	return false
}

// descriptionKey lower-cases a description, collapses whitespace runs and
// keeps the first 20 characters.
func descriptionKey(desc string) string {
	normalized := []rune(strings.Join(strings.Fields(strings.ToLower(desc)), " "))
	if len(normalized) > informalLenderDescLen {
		normalized = normalized[:informalLenderDescLen]
	}
	return string(normalized)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// absDays returns the absolute number of calendar days between two
// day-truncated dates.
func absDays(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
