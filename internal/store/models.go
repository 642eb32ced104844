package store

import (
	"time"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
)

// MappingConfigModel is the persistence model of a mapping configuration
type MappingConfigModel struct {
	ID            string                  `gorm:"type:varchar(36);primaryKey"`
	Category      string                  `gorm:"type:varchar(32);not null;index:idx_mapping_lookup"`
	Scope         string                  `gorm:"type:varchar(16);not null"`
	ScopeTargetID string                  `gorm:"type:varchar(64)"`
	OwnerType     string                  `gorm:"type:varchar(16);not null"`
	OwnerID       string                  `gorm:"type:varchar(64)"`
	Active        bool                    `gorm:"not null;index:idx_mapping_lookup"`
	Version       int                     `gorm:"not null;default:1"`
	Mappings      []models.AccountMapping `gorm:"serializer:json;type:text"`
	UpdatedAt     time.Time               `gorm:"autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (MappingConfigModel) TableName() string {
	return "mapping_configs"
}

// ToDomain converts the persistence model to a domain configuration
func (m *MappingConfigModel) ToDomain() models.MappingConfig {
	return models.MappingConfig{
		ID:            m.ID,
		Category:      m.Category,
		Scope:         models.Scope(m.Scope),
		ScopeTargetID: m.ScopeTargetID,
		OwnerType:     models.OwnerType(m.OwnerType),
		OwnerID:       m.OwnerID,
		Active:        m.Active,
		Version:       m.Version,
		Mappings:      m.Mappings,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain configuration
func (m *MappingConfigModel) FromDomain(c *models.MappingConfig) {
	m.ID = c.ID
	m.Category = c.Category
	m.Scope = string(c.Scope)
	m.ScopeTargetID = c.ScopeTargetID
	m.OwnerType = string(c.OwnerType)
	m.OwnerID = c.OwnerID
	m.Active = c.Active
	m.Version = c.Version
	m.Mappings = c.Mappings
	m.UpdatedAt = c.UpdatedAt
}

// BalanceModel is the persistence model of an uploaded trial balance
type BalanceModel struct {
	ID               string                     `gorm:"type:varchar(36);primaryKey"`
	FolderID         string                     `gorm:"type:varchar(64);not null;index:idx_balance_folder"`
	ExerciseID       string                     `gorm:"type:varchar(64)"`
	PeriodType       string                     `gorm:"type:varchar(16);not null;index:idx_balance_folder"`
	Status           string                     `gorm:"type:varchar(16);not null"`
	Superseded       bool                       `gorm:"not null;default:false;index:idx_balance_folder"`
	FileName         string                     `gorm:"type:varchar(255)"`
	Entries          []models.TrialBalanceEntry `gorm:"serializer:json;type:text"`
	ValidationErrors []string                   `gorm:"serializer:json;type:text"`
	Equilibrium      *models.EquilibriumResult  `gorm:"serializer:json;type:text"`
	Issues           []models.AccountIssue      `gorm:"serializer:json;type:text"`
	FixedAssets      []models.FixedAssetRecord  `gorm:"serializer:json;type:text"`
	UploadedAt       time.Time
	ProcessedAt      *time.Time
}

// TableName returns the table name for GORM
func (BalanceModel) TableName() string {
	return "balances"
}

// ToDomain converts the persistence model to a domain balance
func (m *BalanceModel) ToDomain() *models.Balance {
	return &models.Balance{
		ID:               m.ID,
		FolderID:         m.FolderID,
		ExerciseID:       m.ExerciseID,
		PeriodType:       models.PeriodType(m.PeriodType),
		Status:           models.BalanceStatus(m.Status),
		FileName:         m.FileName,
		Entries:          m.Entries,
		ValidationErrors: m.ValidationErrors,
		Equilibrium:      m.Equilibrium,
		Issues:           m.Issues,
		FixedAssets:      m.FixedAssets,
		UploadedAt:       m.UploadedAt,
		ProcessedAt:      m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain balance
func (m *BalanceModel) FromDomain(b *models.Balance) {
	m.ID = b.ID
	m.FolderID = b.FolderID
	m.ExerciseID = b.ExerciseID
	m.PeriodType = string(b.PeriodType)
	m.Status = string(b.Status)
	m.FileName = b.FileName
	m.Entries = b.Entries
	m.ValidationErrors = b.ValidationErrors
	m.Equilibrium = b.Equilibrium
	m.Issues = b.Issues
	m.FixedAssets = b.FixedAssets
	m.UploadedAt = b.UploadedAt
	m.ProcessedAt = b.ProcessedAt
}

// DeclarationModel is the persistence model of a folder's latest declaration
type DeclarationModel struct {
	ID             string                  `gorm:"type:varchar(36);primaryKey"`
	FolderID       string                  `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExerciseID     string                  `gorm:"type:varchar(64)"`
	Status         string                  `gorm:"type:varchar(16);not null"`
	BalanceID      string                  `gorm:"type:varchar(36)"`
	PriorBalanceID string                  `gorm:"type:varchar(36)"`
	Reports        *report.Set             `gorm:"serializer:json;type:text"`
	Coherence      []models.CoherenceIssue `gorm:"serializer:json;type:text"`
	GeneratedBy    string                  `gorm:"type:varchar(64)"`
	GeneratedAt    time.Time
	Version        int `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (DeclarationModel) TableName() string {
	return "declarations"
}

// ToDomain converts the persistence model to a domain declaration
func (m *DeclarationModel) ToDomain() *declaration.Declaration {
	return &declaration.Declaration{
		ID:             m.ID,
		FolderID:       m.FolderID,
		ExerciseID:     m.ExerciseID,
		Status:         declaration.Status(m.Status),
		BalanceID:      m.BalanceID,
		PriorBalanceID: m.PriorBalanceID,
		Reports:        m.Reports,
		Coherence:      m.Coherence,
		GeneratedBy:    m.GeneratedBy,
		GeneratedAt:    m.GeneratedAt,
		Version:        m.Version,
	}
}

// FromDomain populates the persistence model from a domain declaration
func (m *DeclarationModel) FromDomain(d *declaration.Declaration) {
	m.ID = d.ID
	m.FolderID = d.FolderID
	m.ExerciseID = d.ExerciseID
	m.Status = string(d.Status)
	m.BalanceID = d.BalanceID
	m.PriorBalanceID = d.PriorBalanceID
	m.Reports = d.Reports
	m.Coherence = d.Coherence
	m.GeneratedBy = d.GeneratedBy
	m.GeneratedAt = d.GeneratedAt
	m.Version = d.Version
}

// ImportSessionModel is the persistence model of a legacy import session
type ImportSessionModel struct {
	ID         string                  `gorm:"type:varchar(36);primaryKey"`
	FolderID   string                  `gorm:"type:varchar(64);index"`
	FileName   string                  `gorm:"type:varchar(255)"`
	Sheets     []models.SheetDetection `gorm:"serializer:json;type:text"`
	Entries    []models.ImportEntry    `gorm:"serializer:json;type:text"`
	ImportedAt time.Time
}

// TableName returns the table name for GORM
func (ImportSessionModel) TableName() string {
	return "import_sessions"
}

// ToDomain converts the persistence model to a domain import session
func (m *ImportSessionModel) ToDomain() *models.ImportSession {
	return &models.ImportSession{
		ID:         m.ID,
		FolderID:   m.FolderID,
		FileName:   m.FileName,
		Sheets:     m.Sheets,
		Entries:    m.Entries,
		ImportedAt: m.ImportedAt,
	}
}

// FromDomain populates the persistence model from a domain import session
func (m *ImportSessionModel) FromDomain(s *models.ImportSession) {
	m.ID = s.ID
	m.FolderID = s.FolderID
	m.FileName = s.FileName
	m.Sheets = s.Sheets
	m.Entries = s.Entries
	m.ImportedAt = s.ImportedAt
}
