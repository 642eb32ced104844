package models

import (
	"time"
)

// SourceCode selects which amount of a trial-balance row feeds a destination.
// The vocabulary is persisted as strings and must stay stable.
type SourceCode string

const (
	SourceOpeningDebit   SourceCode = "OD"
	SourceOpeningCredit  SourceCode = "OC"
	SourceMovementDebit  SourceCode = "MD"
	SourceMovementCredit SourceCode = "MC"
	SourceClosingDebit   SourceCode = "SD"
	SourceClosingCredit  SourceCode = "SC"
	SourceMovementNet    SourceCode = "MCD"
	SourceClosingNet     SourceCode = "SCD"
)

// SourceCodes lists the full source vocabulary
var SourceCodes = []SourceCode{
	SourceOpeningDebit, SourceOpeningCredit,
	SourceMovementDebit, SourceMovementCredit,
	SourceClosingDebit, SourceClosingCredit,
	SourceMovementNet, SourceClosingNet,
}

// IsValid checks the code against the vocabulary
func (s SourceCode) IsValid() bool {
	for _, c := range SourceCodes {
		if c == s {
			return true
		}
	}
	return false
}

// Scope is the breadth of a mapping configuration
type Scope string

const (
	ScopeGlobal   Scope = "GLOBAL"
	ScopeClient   Scope = "CLIENT"
	ScopeExercise Scope = "EXERCISE"
)

// OwnerType says who maintains a mapping configuration
type OwnerType string

const (
	OwnerSystem     OwnerType = "SYSTEM"
	OwnerAccountant OwnerType = "ACCOUNTANT"
	OwnerAdmin      OwnerType = "ADMIN"
)

// AccountMapping wires one account amount to one report field
type AccountMapping struct {
	AccountNumber string     `json:"accountNumber" validate:"required,numeric"`
	Source        SourceCode `json:"source" validate:"required,oneof=OD OC MD MC SD SC MCD SCD"`
	Destination   string     `json:"destination" validate:"required"`
	Label         string     `json:"label,omitempty"`
}

// MappingConfig groups the mappings that drive one report category
type MappingConfig struct {
	ID            string           `json:"id"`
	Category      string           `json:"category" validate:"required"`
	Scope         Scope            `json:"scope" validate:"required,oneof=GLOBAL CLIENT EXERCISE"`
	ScopeTargetID string           `json:"scopeTargetId,omitempty" validate:"required_unless=Scope GLOBAL"`
	OwnerType     OwnerType        `json:"ownerType" validate:"required,oneof=SYSTEM ACCOUNTANT ADMIN"`
	OwnerID       string           `json:"ownerId,omitempty" validate:"required_if=OwnerType ACCOUNTANT"`
	Active        bool             `json:"active"`
	Version       int              `json:"version"`
	Mappings      []AccountMapping `json:"mappings" validate:"dive"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// UserRole is the role carried by the resolution context
type UserRole string

const (
	RoleAccountant UserRole = "ACCOUNTANT"
	RoleAdmin      UserRole = "ADMIN"
)

// ResolutionContext identifies who asks for mappings and for which exercise
type ResolutionContext struct {
	UserID     string   `json:"userId"`
	Role       UserRole `json:"role"`
	ClientID   string   `json:"clientId"`
	ExerciseID string   `json:"exerciseId"`
}
