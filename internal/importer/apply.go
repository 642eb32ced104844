package importer

import (
	"fmt"
	"time"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

// Confirmation is a human decision on one entry. An empty FieldID rejects
// the proposed match.
type Confirmation struct {
	EntryID string
	FieldID string
	User    string
	Reason  string
}

// Confirm records a human decision. The previous match is kept in the
// entry's correction history, which is only ever appended to.
func Confirm(session *models.ImportSession, c Confirmation, at time.Time) (*models.ImportEntry, error) {
	entry := session.Entry(c.EntryID)
	if entry == nil {
		return nil, errors.ImportError(errors.CodeEntryNotFound, c.EntryID, nil)
	}
	if c.FieldID != "" {
		if _, ok := report.LookupField(c.FieldID); !ok {
			return nil, errors.ImportError(errors.CodeUnknownField, c.FieldID, nil).
				WithContext("entry_id", c.EntryID)
		}
	}

	entry.Corrections = append(entry.Corrections, models.Correction{
		OriginalMatch:  entry.MatchedFieldID,
		CorrectedMatch: c.FieldID,
		Reason:         c.Reason,
		CorrectedBy:    c.User,
		CorrectedAt:    at,
	})
	entry.MatchedFieldID = c.FieldID
	entry.IsManualMatch = true
	return entry, nil
}

// Eligible reports whether an entry may be applied: a human confirmed it or
// its confidence reaches threshold.
func Eligible(e *models.ImportEntry, threshold float64) bool {
	if e.MatchedFieldID == "" {
		return false
	}
	return e.IsManualMatch || e.MatchConfidence >= threshold
}

// ApplyResult summarises an Apply call
type ApplyResult struct {
	Applied  int      `json:"applied"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Apply writes the values of eligible entries into set: the first value as
// the current period, the second as the prior one. Computed totals are
// written as found in the legacy file; those the file does not carry are
// recomputed from the updated lines. Reports missing from set are created
// empty.
func Apply(set *report.Set, session *models.ImportSession, threshold float64) (*ApplyResult, error) {
	result := &ApplyResult{}
	touched := make(map[string][]string)
	for i := range session.Entries {
		e := &session.Entries[i]
		if !Eligible(e, threshold) {
			result.Skipped++
			continue
		}

		category, path, ok := report.SplitFieldID(e.MatchedFieldID)
		if !ok {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid field id %q", e.RowNumber, e.MatchedFieldID))
			continue
		}
		r, ok := set.Get(category)
		if !ok {
			var err error
			if r, err = report.NewEmpty(category); err != nil {
				result.Skipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", e.RowNumber, err))
				continue
			}
			set.Reports[category] = r
		}

		written := false
		for offset, period := range []report.Period{report.PeriodN, report.PeriodN1} {
			v, ok := e.Value(offset)
			if !ok {
				continue
			}
			err := report.Assign(r, path, v, report.AssignOptions{Period: period, AllowDerived: true})
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", e.RowNumber, err))
				continue
			}
			written = true
		}
		if written {
			result.Applied++
			touched[category] = append(touched[category], path)
		} else {
			result.Skipped++
		}
	}

	if result.Applied == 0 {
		return result, errors.ImportError(errors.CodeNothingToApply, session.FileName, nil)
	}
	if set.Sources == nil {
		set.Sources = make(map[string]string)
	}
	for category, paths := range touched {
		if r, ok := set.Get(category); ok {
			report.Finalize(r, paths...)
		}
		set.Sources[category] = "import:" + session.ID
	}
	return result, nil
}
