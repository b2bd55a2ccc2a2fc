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

type AppRepository struct{ db *gorm.DB }

func NewAppRepository(db *gorm.DB) *AppRepository { return &AppRepository{db: db} }

func appToRecord(a *model.WlApp) *WlAppRecord {
	return &WlAppRecord{
		UUID:        a.UUID,
		Name:        a.Name,
		Region:      a.Region,
		TenantID:    a.TenantID,
		AppCode:     a.AppCode,
		ModuleName:  a.ModuleName,
		Environment: a.Environment,
		Type:        string(a.Type),
		Structure:   encodeJSON(a.Structure),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func appToModel(r *WlAppRecord) (*model.WlApp, error) {
	a := &model.WlApp{
		UUID:        r.UUID,
		Name:        r.Name,
		Region:      r.Region,
		TenantID:    r.TenantID,
		AppCode:     r.AppCode,
		ModuleName:  r.ModuleName,
		Environment: r.Environment,
		Type:        model.AppType(r.Type),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := decodeJSON(r.Structure, &a.Structure); err != nil {
		return nil, fmt.Errorf("decode app %s: %w", r.Name, err)
	}
	return a, nil
}

func configToRecord(c *model.Config) *ConfigRecord {
	return &ConfigRecord{
		UUID:            c.UUID,
		AppUUID:         c.AppUUID,
		ClusterName:     c.ClusterName,
		Image:           c.Image,
		RuntimeEndpoint: encodeJSON(c.RuntimeEndpoint),
		RuntimeCommand:  encodeJSON(c.RuntimeCommand),
		Resources:       encodeJSON(c.ResourceRequirements),
		Tolerations:     encodeJSON(c.Tolerations),
		Metadata:        encodeJSON(c.Metadata),
		MountLogToHost:  c.MountLogToHost,
		IsLatest:        c.IsLatest,
		CreatedAt:       c.CreatedAt,
	}
}

func configToModel(r *ConfigRecord) (*model.Config, error) {
	c := &model.Config{
		UUID:           r.UUID,
		AppUUID:        r.AppUUID,
		ClusterName:    r.ClusterName,
		Image:          r.Image,
		MountLogToHost: r.MountLogToHost,
		IsLatest:       r.IsLatest,
		CreatedAt:      r.CreatedAt,
	}
	for col, dst := range map[string]any{
		r.RuntimeEndpoint: &c.RuntimeEndpoint,
		r.RuntimeCommand:  &c.RuntimeCommand,
		r.Resources:       &c.ResourceRequirements,
		r.Tolerations:     &c.Tolerations,
		r.Metadata:        &c.Metadata,
	} {
		if err := decodeJSON(col, dst); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", r.UUID, err)
		}
	}
	return c, nil
}

func (r *AppRepository) Create(ctx context.Context, a *model.WlApp) error {
	rec := appToRecord(a)
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		a.UUID = rec.UUID
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AppRepository) Get(ctx context.Context, id string) (*model.WlApp, error) {
	var rec WlAppRecord
	if err := r.db.WithContext(ctx).First(&rec, "uuid = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAppNotFound
		}
		return nil, err
	}
	return appToModel(&rec)
}

func (r *AppRepository) GetByName(ctx context.Context, name string) (*model.WlApp, error) {
	var rec WlAppRecord
	if err := r.db.WithContext(ctx).First(&rec, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAppNotFound
		}
		return nil, err
	}
	return appToModel(&rec)
}

func (r *AppRepository) Update(ctx context.Context, a *model.WlApp) error {
	rec := appToRecord(a)
	res := r.db.WithContext(ctx).Model(&WlAppRecord{}).Where("uuid = ?", rec.UUID).Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrAppNotFound
	}
	return nil
}

// Delete removes the app and its config history.
func (r *AppRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ConfigRecord{}, "app_uuid = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&WlAppRecord{}, "uuid = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrAppNotFound
		}
		return nil
	})
}

func (r *AppRepository) LatestConfig(ctx context.Context, appUUID string) (*model.Config, error) {
	var rec ConfigRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ? AND is_latest = ?", appUUID, true).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrConfigNotFound
		}
		return nil, err
	}
	return configToModel(&rec)
}

// AppendConfig demotes the previous latest row and inserts the new one in
// a single transaction.
func (r *AppRepository) AppendConfig(ctx context.Context, c *model.Config) error {
	rec := configToRecord(c)
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		c.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
		c.CreatedAt = rec.CreatedAt
	}
	rec.IsLatest = true
	c.IsLatest = true
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ConfigRecord{}).
			Where("app_uuid = ? AND is_latest = ?", rec.AppUUID, true).
			Update("is_latest", false).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

func (r *AppRepository) CountConfigsByCluster(ctx context.Context, clusterName string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ConfigRecord{}).
		Where("cluster_name = ? AND is_latest = ?", clusterName, true).
		Count(&n).Error
	return n, err
}

var _ domain.AppRepository = (*AppRepository)(nil)
