package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"golang-dsf-service/internal/mapping"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
)

var (
	mappingsFile     string
	mappingsID       string
	mappingsCategory string
	mappingsUser     string
	mappingsRole     string
	mappingsClient   string
	mappingsExercise string
)

// mappingsCmd groups the account mapping commands
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage account mapping configurations",
	Long: `Mapping configurations tell the generator which accounts feed which report
lines. They are owned by the system, an administrator or an accountant and
scoped globally, to a client or to an exercise. For every report the most
specific active configuration wins:

  ACCOUNTANT/EXERCISE > ACCOUNTANT/CLIENT > ACCOUNTANT/GLOBAL > ADMIN/GLOBAL > SYSTEM/GLOBAL

Reports without any configuration use the built-in OHADA account rules.`,
}

var mappingsLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load mapping configurations from a JSON, YAML or TOML file",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFileExists(mappingsFile, "mapping file")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := mapping.LoadSeedFile(mappingsFile)
		if err != nil {
			return err
		}

		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		if err := mapping.NewLoader(app.mappings).Load(context.Background(), configs); err != nil {
			return err
		}
		for _, c := range configs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-16s %s/%s %s (%d mappings)\n",
				c.ID, c.Category, c.OwnerType, c.Scope, c.ScopeTargetID, len(c.Mappings))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d configurations\n", len(configs))
		return nil
	},
}

var mappingsDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate a mapping configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.mappings.Deactivate(context.Background(), mappingsID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration %s deactivated\n", mappingsID)
		return nil
	},
}

var mappingsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which configuration drives each report for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		rc := models.ResolutionContext{
			UserID:     mappingsUser,
			Role:       models.UserRole(strings.ToUpper(mappingsRole)),
			ClientID:   mappingsClient,
			ExerciseID: mappingsExercise,
		}
		ctx := context.Background()

		var resolutions []*mapping.Resolution
		if mappingsCategory != "" {
			res, err := app.resolver.Resolve(ctx, mappingsCategory, rc)
			if err != nil {
				return err
			}
			resolutions = append(resolutions, res)
		} else {
			all, err := app.resolver.ResolveAll(ctx, rc)
			if err != nil {
				return err
			}
			for _, c := range report.Categories() {
				resolutions = append(resolutions, all[c.ID])
			}
		}

		w := cmd.OutOrStdout()
		for _, res := range resolutions {
			tier := "default"
			if res.Tier != nil {
				tier = res.Tier.String()
			}
			fmt.Fprintf(w, "%-16s %-22s %-36s %d\n", res.Category, tier, res.Source(), len(res.Mappings))
		}
		return nil
	},
}

var mappingsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List report categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range report.Categories() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-16s %s\n", c.ID, c.Kind, c.Title)
		}
		return nil
	},
}

var mappingsFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the field identifiers legacy imports can match",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		for _, f := range report.Fields() {
			if mappingsCategory != "" && f.Category != mappingsCategory {
				continue
			}
			accounts := append([]string(nil), f.AccountPatterns...)
			sort.Strings(accounts)
			fmt.Fprintf(w, "%-40s %-60s %s\n", report.FieldID(f.Category, f.Path), truncateLabel(f.Label, 60),
				strings.Join(accounts, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsLoadCmd, mappingsDeactivateCmd, mappingsResolveCmd,
		mappingsCategoriesCmd, mappingsFieldsCmd)

	mappingsLoadCmd.Flags().StringVar(&mappingsFile, "file", "", "mapping seed file (required)")
	mappingsLoadCmd.MarkFlagRequired("file")

	mappingsDeactivateCmd.Flags().StringVar(&mappingsID, "id", "", "configuration identifier (required)")
	mappingsDeactivateCmd.MarkFlagRequired("id")

	mappingsResolveCmd.Flags().StringVar(&mappingsCategory, "category", "", "report category (default: all)")
	mappingsResolveCmd.Flags().StringVar(&mappingsUser, "user", "", "user identifier")
	mappingsResolveCmd.Flags().StringVar(&mappingsRole, "role", string(models.RoleAccountant), "user role")
	mappingsResolveCmd.Flags().StringVar(&mappingsClient, "client", "", "client identifier")
	mappingsResolveCmd.Flags().StringVar(&mappingsExercise, "exercise", "", "exercise identifier")

	mappingsFieldsCmd.Flags().StringVar(&mappingsCategory, "category", "", "report category (default: all)")
}

func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
