package mapping

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

var validate = validator.New()

// Validate checks a configuration before it is stored: struct constraints,
// a known category, and destinations that exist in that category's report
// and are not computed totals.
func Validate(cfg *models.MappingConfig) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	switch cfg.OwnerType {
	case models.OwnerSystem, models.OwnerAdmin:
		if cfg.Scope != models.ScopeGlobal {
			problems = append(problems, fmt.Sprintf("%s configurations must be GLOBAL", cfg.OwnerType))
		}
	}

	if cfg.Category != "" {
		scratch, err := report.NewEmpty(cfg.Category)
		if err != nil {
			return err
		}
		for i, m := range cfg.Mappings {
			if !m.Source.IsValid() {
				return errors.MappingError(errors.CodeUnknownSource, cfg.Category, string(m.Source), nil).
					WithContext("row", i+1)
			}
			if m.Destination == "" {
				continue
			}
			if err := report.Assign(scratch, m.Destination, report.Amount{}, report.AssignOptions{}); err != nil {
				problems = append(problems, fmt.Sprintf("mapping %d (%s -> %s): %s", i+1, m.AccountNumber, m.Destination, errMessage(err)))
			}
		}
	}

	if len(problems) > 0 {
		return errors.MappingError(errors.CodeInvalidMapping, cfg.Category, strings.Join(problems, "; "), nil).
			WithContext("problems", len(problems))
	}
	return nil
}

func errMessage(err error) string {
	if dsfErr, ok := errors.AsDSFError(err); ok {
		return dsfErr.Message
	}
	return err.Error()
}
