package models

import "github.com/shopspring/decimal"

// CoherenceIssueType classifies a cross-report inconsistency
type CoherenceIssueType string

const (
	CoherenceEquilibrium           CoherenceIssueType = "EQUILIBRIUM"
	CoherenceResultMismatch        CoherenceIssueType = "RESULT_MISMATCH"
	CoherenceTaxResultMismatch     CoherenceIssueType = "TAX_RESULT_MISMATCH"
	CoherenceBalanceResultMismatch CoherenceIssueType = "BALANCE_RESULT_MISMATCH"
	CoherenceMissingNote           CoherenceIssueType = "MISSING_NOTE"
	CoherenceIncompleteNote        CoherenceIssueType = "INCOMPLETE_NOTE"
)

// CoherenceIssue is one failed coherence check
type CoherenceIssue struct {
	Type     CoherenceIssueType `json:"type"`
	Severity Severity           `json:"severity"`
	Message  string             `json:"message"`
	Expected *decimal.Decimal   `json:"expected,omitempty"`
	Actual   *decimal.Decimal   `json:"actual,omitempty"`
	Category string             `json:"category,omitempty"`
}

// HasBlockingIssue reports whether any issue has ERROR severity
func HasBlockingIssue(issues []CoherenceIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
