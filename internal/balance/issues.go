package balance

import (
	"fmt"
	"time"

	"golang-dsf-service/internal/models"
)

// DefaultSpecificationPrefixes are the two-digit prefixes whose accounts need a
// manual breakdown before they can feed the notes: capital and reserves,
// long-term debt, suppliers and customers, banks and cash.
var DefaultSpecificationPrefixes = []string{"10", "11", "16", "17", "40", "41", "52", "53", "57"}

// DefaultContraAssetPrefixes are depreciation and impairment accounts that
// legitimately carry credit balances inside asset classes.
var DefaultContraAssetPrefixes = []string{"28", "29", "39", "49", "59"}

// IssueDetectorConfig tunes account classification
type IssueDetectorConfig struct {
	SpecificationPrefixes []string `mapstructure:"specification_prefixes"`
	// ExcludeContraAssets stops contra-asset accounts from raising WRONG_BALANCE_POSITION.
	// Off by default: the leading-digit rule applies to every class 1-5 account.
	ExcludeContraAssets bool     `mapstructure:"exclude_contra_assets"`
	ContraAssetPrefixes []string `mapstructure:"contra_asset_prefixes"`
}

// DefaultIssueDetectorConfig returns the standard OHADA classification rules
func DefaultIssueDetectorConfig() IssueDetectorConfig {
	return IssueDetectorConfig{
		SpecificationPrefixes: DefaultSpecificationPrefixes,
		ContraAssetPrefixes:   DefaultContraAssetPrefixes,
	}
}

// IssueDetector classifies accounts against OHADA compliance rules
type IssueDetector struct {
	config      IssueDetectorConfig
	specPrefix  map[string]bool
	contraAsset map[string]bool
}

// NewIssueDetector creates a detector
func NewIssueDetector(config IssueDetectorConfig) *IssueDetector {
	d := &IssueDetector{
		config:      config,
		specPrefix:  make(map[string]bool),
		contraAsset: make(map[string]bool),
	}
	for _, p := range config.SpecificationPrefixes {
		d.specPrefix[p] = true
	}
	for _, p := range config.ContraAssetPrefixes {
		d.contraAsset[p] = true
	}
	return d
}

// Detect evaluates each rule independently per entry; one entry may yield several issues.
// Output order follows the entries.
func (d *IssueDetector) Detect(entries []models.TrialBalanceEntry) []models.AccountIssue {
	issues := []models.AccountIssue{}

	for _, e := range entries {
		if !compliantAccount.MatchString(e.AccountNumber) {
			issues = append(issues, models.AccountIssue{
				AccountNumber: e.AccountNumber,
				AccountName:   e.AccountName,
				Type:          models.IssueNonCompliantAccount,
				Severity:      models.SeverityError,
				Message:       fmt.Sprintf("Account %s does not follow the OHADA format (6 to 8 digits)", e.AccountNumber),
			})
		}

		if class := e.Class(); class >= 1 && class <= 5 &&
			e.ClosingCredit.GreaterThan(e.ClosingDebit) && !d.isExcludedContraAsset(e.AccountNumber) {
			issues = append(issues, models.AccountIssue{
				AccountNumber: e.AccountNumber,
				AccountName:   e.AccountName,
				Type:          models.IssueWrongBalancePosition,
				Severity:      models.SeverityWarning,
				Message: fmt.Sprintf("Account %s (class %d) has a credit closing balance of %s",
					e.AccountNumber, class, e.ClosingCredit.Sub(e.ClosingDebit).StringFixed(2)),
			})
		}

		if len(e.AccountNumber) >= 2 && d.specPrefix[e.AccountNumber[:2]] {
			issues = append(issues, models.AccountIssue{
				AccountNumber: e.AccountNumber,
				AccountName:   e.AccountName,
				Type:          models.IssueMissingSpecification,
				Severity:      models.SeverityInfo,
				Message:       fmt.Sprintf("Account %s needs a detailed breakdown for the notes", e.AccountNumber),
			})
		}
	}

	return issues
}

func (d *IssueDetector) isExcludedContraAsset(account string) bool {
	return d.config.ExcludeContraAssets && len(account) >= 2 && d.contraAsset[account[:2]]
}

// CarryResolutions copies resolution state from previous onto the freshly detected issues
func CarryResolutions(fresh, previous []models.AccountIssue) []models.AccountIssue {
	resolved := make(map[string]models.AccountIssue)
	for _, issue := range previous {
		if issue.Resolved {
			resolved[issue.Key()] = issue
		}
	}

	for i := range fresh {
		if old, ok := resolved[fresh[i].Key()]; ok {
			fresh[i].Resolved = true
			fresh[i].ResolutionNote = old.ResolutionNote
			fresh[i].ResolvedBy = old.ResolvedBy
			fresh[i].ResolvedAt = old.ResolvedAt
		}
	}
	return fresh
}

// ResolveIssue marks the issue identified by account and type as resolved.
// It reports whether an issue was found.
func ResolveIssue(issues []models.AccountIssue, account string, issueType models.IssueType, note, user string, at time.Time) bool {
	for i := range issues {
		if issues[i].AccountNumber == account && issues[i].Type == issueType {
			issues[i].Resolved = true
			issues[i].ResolutionNote = note
			issues[i].ResolvedBy = user
			resolvedAt := at
			issues[i].ResolvedAt = &resolvedAt
			return true
		}
	}
	return false
}
