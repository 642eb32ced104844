package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType distinguishes the current exercise from the comparative one
type PeriodType string

const (
	PeriodCurrentYear  PeriodType = "CURRENT_YEAR"
	PeriodPreviousYear PeriodType = "PREVIOUS_YEAR"
)

// IsValid checks if the period type is known
func (p PeriodType) IsValid() bool {
	return p == PeriodCurrentYear || p == PeriodPreviousYear
}

// BalanceStatus is the lifecycle state of an uploaded balance
type BalanceStatus string

const (
	BalanceStatusPending    BalanceStatus = "PENDING"
	BalanceStatusInvalid    BalanceStatus = "INVALID"
	BalanceStatusUnbalanced BalanceStatus = "UNBALANCED"
	BalanceStatusProcessed  BalanceStatus = "PROCESSED"
)

// RawField names one column of a raw trial-balance row
type RawField string

const (
	FieldAccountNumber RawField = "accountNumber"
	FieldAccountName   RawField = "accountName"
	FieldOpeningDebit  RawField = "openingDebit"
	FieldOpeningCredit RawField = "openingCredit"
	FieldMovementDebit RawField = "movementDebit"
	FieldMovementCred  RawField = "movementCredit"
	FieldClosingDebit  RawField = "closingDebit"
	FieldClosingCredit RawField = "closingCredit"

	// FieldRowNumber holds the worksheet row the values were read from
	FieldRowNumber RawField = "rowNumber"
)

// AmountFields lists the six amount columns in display order
var AmountFields = []RawField{
	FieldOpeningDebit, FieldOpeningCredit,
	FieldMovementDebit, FieldMovementCred,
	FieldClosingDebit, FieldClosingCredit,
}

// RawRow is one parsed spreadsheet row before validation. Values are kept as text.
type RawRow map[RawField]string

// Get returns the trimmed value of a field and whether it is present and non-empty
func (r RawRow) Get(field RawField) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Number returns the worksheet row number recorded by the parser, if any
func (r RawRow) Number() (int, bool) {
	v, ok := r.Get(FieldRowNumber)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// TrialBalanceEntry is one validated account line of a trial balance
type TrialBalanceEntry struct {
	AccountNumber  string          `json:"accountNumber"`
	AccountName    string          `json:"accountName"`
	OpeningDebit   decimal.Decimal `json:"openingDebit"`
	OpeningCredit  decimal.Decimal `json:"openingCredit"`
	MovementDebit  decimal.Decimal `json:"movementDebit"`
	MovementCredit decimal.Decimal `json:"movementCredit"`
	ClosingDebit   decimal.Decimal `json:"closingDebit"`
	ClosingCredit  decimal.Decimal `json:"closingCredit"`
}

// Class returns the OHADA account class (leading digit), or -1 when the number is empty or not numeric
func (e TrialBalanceEntry) Class() int {
	if e.AccountNumber == "" {
		return -1
	}
	c := e.AccountNumber[0]
	if c < '0' || c > '9' {
		return -1
	}
	return int(c - '0')
}

// NetClosing returns closingDebit - closingCredit
func (e TrialBalanceEntry) NetClosing() decimal.Decimal {
	return e.ClosingDebit.Sub(e.ClosingCredit)
}

// NetMovement returns movementDebit - movementCredit
func (e TrialBalanceEntry) NetMovement() decimal.Decimal {
	return e.MovementDebit.Sub(e.MovementCredit)
}

// NetOpening returns openingDebit - openingCredit
func (e TrialBalanceEntry) NetOpening() decimal.Decimal {
	return e.OpeningDebit.Sub(e.OpeningCredit)
}

// HasPrefix reports whether the account number starts with prefix
func (e TrialBalanceEntry) HasPrefix(prefix string) bool {
	return strings.HasPrefix(e.AccountNumber, prefix)
}

// String returns a string representation of the entry
func (e TrialBalanceEntry) String() string {
	return fmt.Sprintf("Entry{%s %q D:%s C:%s}", e.AccountNumber, e.AccountName, e.ClosingDebit, e.ClosingCredit)
}

// EquilibriumResult holds the column totals of a balance and the double-entry verdict
type EquilibriumResult struct {
	TotalOpeningDebit   decimal.Decimal `json:"totalOpeningDebit"`
	TotalOpeningCredit  decimal.Decimal `json:"totalOpeningCredit"`
	TotalMovementDebit  decimal.Decimal `json:"totalMovementDebit"`
	TotalMovementCredit decimal.Decimal `json:"totalMovementCredit"`
	TotalClosingDebit   decimal.Decimal `json:"totalClosingDebit"`
	TotalClosingCredit  decimal.Decimal `json:"totalClosingCredit"`
	IsBalanced          bool            `json:"isBalanced"`
	Anomalies           []string        `json:"anomalies"`
}

// AnomalyText joins the anomalies the way they are shown to operators
func (r EquilibriumResult) AnomalyText() string {
	return strings.Join(r.Anomalies, "; ")
}

// Balance is an uploaded trial balance for one folder and period
type Balance struct {
	ID               string              `json:"id"`
	FolderID         string              `json:"folderId"`
	ExerciseID       string              `json:"exerciseId"`
	PeriodType       PeriodType          `json:"periodType"`
	Status           BalanceStatus       `json:"status"`
	FileName         string              `json:"fileName,omitempty"`
	Entries          []TrialBalanceEntry `json:"entries"`
	ValidationErrors []string            `json:"validationErrors,omitempty"`
	Equilibrium      *EquilibriumResult  `json:"equilibrium,omitempty"`
	Issues           []AccountIssue      `json:"issues,omitempty"`
	FixedAssets      []FixedAssetRecord  `json:"fixedAssets,omitempty"`
	UploadedAt       time.Time           `json:"uploadedAt"`
	ProcessedAt      *time.Time          `json:"processedAt,omitempty"`
}

// IsUsable reports whether the balance can feed report generation
func (b *Balance) IsUsable(allowUnbalanced bool) bool {
	if b == nil {
		return false
	}
	switch b.Status {
	case BalanceStatusProcessed:
		return true
	case BalanceStatusUnbalanced:
		return allowUnbalanced
	default:
		return false
	}
}

// IssueType classifies an account-level finding
type IssueType string

const (
	IssueNonCompliantAccount  IssueType = "NON_COMPLIANT_ACCOUNT"
	IssueWrongBalancePosition IssueType = "WRONG_BALANCE_POSITION"
	IssueMissingSpecification IssueType = "MISSING_SPECIFICATION"
)

// Severity ranks findings. Only ERROR blocks status transitions.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// AccountIssue is an advisory finding on one account
type AccountIssue struct {
	AccountNumber  string     `json:"accountNumber"`
	AccountName    string     `json:"accountName,omitempty"`
	Type           IssueType  `json:"issueType"`
	Severity       Severity   `json:"severity"`
	Message        string     `json:"message"`
	Resolved       bool       `json:"resolved"`
	ResolutionNote string     `json:"resolutionNote,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

// Key identifies an issue across re-detections
func (i AccountIssue) Key() string {
	return i.AccountNumber + "/" + string(i.Type)
}

// MovementType tells how a fixed asset moved during the exercise
type MovementType string

const (
	MovementAcquisition MovementType = "ACQUISITION"
	MovementDisposal    MovementType = "DISPOSAL"
	MovementNone        MovementType = "NONE"
)

// FixedAssetRecord is derived from a class 2 account and its depreciation accounts
type FixedAssetRecord struct {
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	GrossOpening  decimal.Decimal `json:"grossOpening"`
	Acquisitions  decimal.Decimal `json:"acquisitions"`
	Disposals     decimal.Decimal `json:"disposals"`
	GrossValue    decimal.Decimal `json:"grossValue"`
	Depreciation  decimal.Decimal `json:"depreciation"`
	NetValue      decimal.Decimal `json:"netValue"`
	MovementType  MovementType    `json:"movementType"`
}
