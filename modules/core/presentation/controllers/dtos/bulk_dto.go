package dtos

import (
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
)

// BulkRunDTO carries the per-request knobs of one bulk reconciliation run.
type BulkRunDTO struct {
	Role         string `validate:"required,oneof=student staff faculty admin nurse"`
	DryRun       bool   `validate:"omitempty"`
	MaxBatchSize int    `validate:"omitempty,gt=0"`
}

func (dto *BulkRunDTO) Ok() (map[string]string, bool) {
	return validateStruct(dto)
}

// Overlay applies the request knobs on top of the deployment defaults.
func (dto *BulkRunDTO) Overlay(base reconcile.Options) reconcile.Options {
	base.TargetRole = account.Role(dto.Role)
	base.DryRun = dto.DryRun
	if dto.MaxBatchSize > 0 {
		base.MaxDeleteBatch = dto.MaxBatchSize
	}
	return base
}
