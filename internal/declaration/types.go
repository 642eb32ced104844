package declaration

import (
	"context"
	"time"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
)

// Status of a generated declaration
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusValid   Status = "VALID"
	StatusInvalid Status = "INVALID"
)

// Declaration is the latest generated report set of a folder with its coherence verdict
type Declaration struct {
	ID             string                  `json:"id"`
	FolderID       string                  `json:"folderId"`
	ExerciseID     string                  `json:"exerciseId"`
	Status         Status                  `json:"status"`
	BalanceID      string                  `json:"balanceId"`
	PriorBalanceID string                  `json:"priorBalanceId,omitempty"`
	Reports        *report.Set             `json:"reports"`
	Coherence      []models.CoherenceIssue `json:"coherence"`
	GeneratedBy    string                  `json:"generatedBy,omitempty"`
	GeneratedAt    time.Time               `json:"generatedAt"`
	Version        int                     `json:"version"`
}

// BalanceRepository persists uploaded trial balances
type BalanceRepository interface {
	// Save stores b; it supersedes any earlier balance of the same folder and period
	Save(ctx context.Context, b *models.Balance) error
	// UpdateIssues stores the issue list of an existing balance only
	UpdateIssues(ctx context.Context, b *models.Balance) error
	FindByID(ctx context.Context, id string) (*models.Balance, error)
	// FindCurrent returns the non-superseded balance of a folder and period
	FindCurrent(ctx context.Context, folderID string, period models.PeriodType) (*models.Balance, error)
}

// DeclarationRepository keeps the latest declaration of each folder
type DeclarationRepository interface {
	Save(ctx context.Context, d *Declaration) error
	FindLatest(ctx context.Context, folderID string) (*Declaration, error)
}

// ImportRepository persists legacy import sessions
type ImportRepository interface {
	Save(ctx context.Context, s *models.ImportSession) error
	FindByID(ctx context.Context, id string) (*models.ImportSession, error)
}
