package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
)

type DeploymentRepository struct{ db *gorm.DB }

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{db: db}
}

func deploymentToRecord(d *model.Deployment) *DeploymentRecord {
	return &DeploymentRecord{
		UUID:              d.UUID,
		AppUUID:           d.AppUUID,
		SourceVersionType: d.SourceVersionType,
		SourceVersionName: d.SourceVersionName,
		SourceRevision:    d.SourceRevision,
		BuildID:           d.BuildID,
		ReleaseID:         d.ReleaseID,
		PreReleaseHook:    encodeJSON(d.PreReleaseHook),
		HookEnabled:       d.HookEnabled,
		Status:            d.Status,
		ErrorDetail:       d.ErrorDetail,
		Phases:            encodeJSON(d.Phases),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func deploymentToModel(r *DeploymentRecord) (*model.Deployment, error) {
	d := &model.Deployment{
		UUID:              r.UUID,
		AppUUID:           r.AppUUID,
		SourceVersionType: r.SourceVersionType,
		SourceVersionName: r.SourceVersionName,
		SourceRevision:    r.SourceRevision,
		BuildID:           r.BuildID,
		ReleaseID:         r.ReleaseID,
		HookEnabled:       r.HookEnabled,
		Status:            r.Status,
		ErrorDetail:       r.ErrorDetail,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if err := decodeJSON(r.PreReleaseHook, &d.PreReleaseHook); err != nil {
		return nil, fmt.Errorf("decode deployment %s: %w", r.UUID, err)
	}
	if err := decodeJSON(r.Phases, &d.Phases); err != nil {
		return nil, fmt.Errorf("decode deployment %s: %w", r.UUID, err)
	}
	return d, nil
}

func (r *DeploymentRepository) Create(ctx context.Context, d *model.Deployment) error {
	rec := deploymentToRecord(d)
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		d.UUID = rec.UUID
	}
	if rec.Status == "" {
		rec.Status = model.DeployStatusPending
		d.Status = rec.Status
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt, rec.UpdatedAt = now, now
		d.CreatedAt, d.UpdatedAt = now, now
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *DeploymentRepository) Get(ctx context.Context, id string) (*model.Deployment, error) {
	var rec DeploymentRecord
	if err := r.db.WithContext(ctx).First(&rec, "uuid = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return deploymentToModel(&rec)
}

func (r *DeploymentRepository) Update(ctx context.Context, d *model.Deployment) error {
	rec := deploymentToRecord(d)
	rec.UpdatedAt = time.Now()
	d.UpdatedAt = rec.UpdatedAt
	res := r.db.WithContext(ctx).Model(&DeploymentRecord{}).
		Where("uuid = ?", rec.UUID).
		Select("*").Omit("uuid", "created_at").
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

var _ domain.DeploymentRepository = (*DeploymentRepository)(nil)
