package store

import (
	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/mapping"
)

var (
	_ mapping.Store                     = (*GormMappingRepository)(nil)
	_ declaration.BalanceRepository     = (*GormBalanceRepository)(nil)
	_ declaration.DeclarationRepository = (*GormDeclarationRepository)(nil)
	_ declaration.ImportRepository      = (*GormImportRepository)(nil)
)
