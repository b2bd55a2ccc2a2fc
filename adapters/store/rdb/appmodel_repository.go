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

type AppModelRepository struct{ db *gorm.DB }

func NewAppModelRepository(db *gorm.DB) *AppModelRepository { return &AppModelRepository{db: db} }

func (r *AppModelRepository) GetResource(ctx context.Context, appCode, moduleName string) (*model.AppModelResource, error) {
	var rec AppModelResourceRecord
	err := r.db.WithContext(ctx).First(&rec, "app_code = ? AND module_name = ?", appCode, moduleName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAppModelNotFound
		}
		return nil, err
	}
	return &model.AppModelResource{
		UUID:       rec.UUID,
		TenantID:   rec.TenantID,
		AppCode:    rec.AppCode,
		ModuleName: rec.ModuleName,
		Manifest:   rec.Manifest,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (r *AppModelRepository) SaveResource(ctx context.Context, res *model.AppModelResource) error {
	rec := &AppModelResourceRecord{
		UUID:       res.UUID,
		TenantID:   res.TenantID,
		AppCode:    res.AppCode,
		ModuleName: res.ModuleName,
		Manifest:   res.Manifest,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing AppModelResourceRecord
		err := tx.First(&existing, "app_code = ? AND module_name = ?", rec.AppCode, rec.ModuleName).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rec.UUID == "" {
				rec.UUID = uuid.NewString()
				res.UUID = rec.UUID
			}
			now := time.Now()
			rec.CreatedAt, rec.UpdatedAt = now, now
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		rec.UUID = existing.UUID
		res.UUID = existing.UUID
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = time.Now()
		return tx.Save(rec).Error
	})
}

// CreateRevision assigns the next version number per resource.
func (r *AppModelRepository) CreateRevision(ctx context.Context, rev *model.AppModelRevision) error {
	rec := &AppModelRevisionRecord{
		UUID:         rev.UUID,
		ResourceUUID: rev.ResourceUUID,
		Manifest:     rev.Manifest,
		CreatedAt:    rev.CreatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		rev.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		err := tx.Model(&AppModelRevisionRecord{}).
			Where("resource_uuid = ?", rec.ResourceUUID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&max).Error
		if err != nil {
			return err
		}
		rec.Version = max + 1
		rev.Version = rec.Version
		return tx.Create(rec).Error
	})
}

func (r *AppModelRepository) CreateDeploy(ctx context.Context, d *model.AppModelDeploy) error {
	rec := &AppModelDeployRecord{
		UUID:         d.UUID,
		ResourceUUID: d.ResourceUUID,
		RevisionUUID: d.RevisionUUID,
		Environment:  d.Environment,
		Status:       d.Status,
		Conditions:   encodeJSON(d.Conditions),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		d.UUID = rec.UUID
	}
	if rec.Status == "" {
		rec.Status = model.AppModelDeployPending
		d.Status = rec.Status
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt, rec.UpdatedAt = now, now
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AppModelRepository) UpdateDeploy(ctx context.Context, d *model.AppModelDeploy) error {
	res := r.db.WithContext(ctx).Model(&AppModelDeployRecord{}).
		Where("uuid = ?", d.UUID).
		Updates(map[string]any{
			"status":     d.Status,
			"conditions": encodeJSON(d.Conditions),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AppModelRepository) ListMounts(ctx context.Context, appCode, moduleName string) ([]*model.Mount, error) {
	var recs []MountRecord
	err := r.db.WithContext(ctx).
		Where("app_code = ? AND module_name = ?", appCode, moduleName).
		Order("name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.Mount, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		out = append(out, &model.Mount{
			UUID:        rec.UUID,
			AppCode:     rec.AppCode,
			ModuleName:  rec.ModuleName,
			Environment: rec.Environment,
			Name:        rec.Name,
			MountPath:   rec.MountPath,
			SourceType:  rec.SourceType,
			SourceName:  rec.SourceName,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}

func (r *AppModelRepository) SaveMount(ctx context.Context, m *model.Mount) error {
	switch m.SourceType {
	case model.MountSourceConfigMap, model.MountSourcePersistentStorage:
	default:
		return fmt.Errorf("%w: unknown mount source type %q", model.ErrValidationFailed, m.SourceType)
	}
	rec := &MountRecord{
		UUID:        m.UUID,
		AppCode:     m.AppCode,
		ModuleName:  m.ModuleName,
		Environment: m.Environment,
		Name:        m.Name,
		MountPath:   m.MountPath,
		SourceType:  m.SourceType,
		SourceName:  m.SourceName,
		CreatedAt:   m.CreatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		m.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *AppModelRepository) ListConfigVars(ctx context.Context, appCode, moduleName string) ([]*model.ConfigVar, error) {
	var recs []ConfigVarRecord
	err := r.db.WithContext(ctx).
		Where("app_code = ? AND module_name = ?", appCode, moduleName).
		Order("environment ASC, key ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.ConfigVar, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &model.ConfigVar{
			UUID:        rec.UUID,
			AppCode:     rec.AppCode,
			ModuleName:  rec.ModuleName,
			Environment: rec.Environment,
			Key:         rec.Key,
			Value:       rec.Value,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}

func (r *AppModelRepository) SaveConfigVar(ctx context.Context, v *model.ConfigVar) error {
	if v.Key == "" {
		return fmt.Errorf("%w: config var key is required", model.ErrValidationFailed)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ConfigVarRecord
		err := tx.First(&existing,
			"app_code = ? AND module_name = ? AND environment = ? AND key = ?",
			v.AppCode, v.ModuleName, v.Environment, v.Key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if v.UUID == "" {
				v.UUID = uuid.NewString()
			}
			if v.CreatedAt.IsZero() {
				v.CreatedAt = time.Now()
			}
		case err != nil:
			return err
		default:
			v.UUID = existing.UUID
			v.CreatedAt = existing.CreatedAt
		}
		return tx.Save(&ConfigVarRecord{
			UUID:        v.UUID,
			AppCode:     v.AppCode,
			ModuleName:  v.ModuleName,
			Environment: v.Environment,
			Key:         v.Key,
			Value:       v.Value,
			CreatedAt:   v.CreatedAt,
		}).Error
	})
}

var _ domain.AppModelRepository = (*AppModelRepository)(nil)
