package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

var (
	issueBalanceID string
	issueAccount   string
	issueType      string
	issueNote      string
	issueUser      string
)

// resolveIssueCmd marks an account issue of a stored balance as resolved
var resolveIssueCmd = &cobra.Command{
	Use:   "resolve-issue",
	Short: "Mark an account issue as resolved",
	Long: `Resolve-issue records that an account flagged on an uploaded balance has
been reviewed. The resolution survives later uploads of the same folder and
period as long as the account still raises the same issue.

Example:
  dsf resolve-issue --balance 7c1e... --account 401100 --type MISSING_SPECIFICATION \
    --note "Breakdown sent by the client" --user u1`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		t := models.IssueType(strings.ToUpper(issueType))
		switch t {
		case models.IssueNonCompliantAccount, models.IssueWrongBalancePosition, models.IssueMissingSpecification:
		default:
			return errors.ValidationError(errors.CodeInvalidData, "type", issueType, fmt.Errorf("unknown issue type")).
				WithSuggestion("Use NON_COMPLIANT_ACCOUNT, WRONG_BALANCE_POSITION or MISSING_SPECIFICATION")
		}
		issueType = string(t)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		b, err := app.service.ResolveIssue(context.Background(), issueBalanceID, issueAccount,
			models.IssueType(issueType), issueNote, issueUser)
		if err != nil {
			return err
		}
		printBalance(cmd.OutOrStdout(), b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveIssueCmd)

	resolveIssueCmd.Flags().StringVar(&issueBalanceID, "balance", "", "balance identifier (required)")
	resolveIssueCmd.Flags().StringVar(&issueAccount, "account", "", "account number (required)")
	resolveIssueCmd.Flags().StringVar(&issueType, "type", "", "issue type (required)")
	resolveIssueCmd.Flags().StringVar(&issueNote, "note", "", "resolution note")
	resolveIssueCmd.Flags().StringVar(&issueUser, "user", "", "user recording the resolution (required)")

	resolveIssueCmd.MarkFlagRequired("balance")
	resolveIssueCmd.MarkFlagRequired("account")
	resolveIssueCmd.MarkFlagRequired("type")
	resolveIssueCmd.MarkFlagRequired("user")
}
