package rdb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
)

type AddressRepository struct{ db *gorm.DB }

func NewAddressRepository(db *gorm.DB) *AddressRepository { return &AddressRepository{db: db} }

func (r *AddressRepository) ListAppDomains(ctx context.Context, appUUID string) ([]*model.AppDomain, error) {
	var recs []AppDomainRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("host ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.AppDomain, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		out = append(out, &model.AppDomain{
			UUID:         rec.UUID,
			AppUUID:      rec.AppUUID,
			TenantID:     rec.TenantID,
			Host:         rec.Host,
			HTTPSEnabled: rec.HTTPSEnabled,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out, nil
}

func (r *AddressRepository) SaveAppDomain(ctx context.Context, d *model.AppDomain) error {
	rec := &AppDomainRecord{
		UUID:         d.UUID,
		AppUUID:      d.AppUUID,
		TenantID:     d.TenantID,
		Host:         d.Host,
		HTTPSEnabled: d.HTTPSEnabled,
		CreatedAt:    d.CreatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		d.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *AddressRepository) DeleteAppDomain(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&AppDomainRecord{}, "uuid = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrDomainNotFound
	}
	return nil
}

func (r *AddressRepository) ListSubpaths(ctx context.Context, appUUID string) ([]*model.AppSubpath, error) {
	var recs []AppSubpathRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("subpath ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.AppSubpath, 0, len(recs))
	for i := range recs {
		out = append(out, subpathToModel(&recs[i]))
	}
	return out, nil
}

func subpathToModel(rec *AppSubpathRecord) *model.AppSubpath {
	return &model.AppSubpath{
		UUID:      rec.UUID,
		AppUUID:   rec.AppUUID,
		TenantID:  rec.TenantID,
		Subpath:   rec.Subpath,
		CreatedAt: rec.CreatedAt,
	}
}

func (r *AddressRepository) SaveSubpath(ctx context.Context, s *model.AppSubpath) error {
	rec := &AppSubpathRecord{
		UUID:      s.UUID,
		AppUUID:   s.AppUUID,
		TenantID:  s.TenantID,
		Subpath:   s.Subpath,
		CreatedAt: s.CreatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		s.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *AddressRepository) DeleteSubpath(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&AppSubpathRecord{}, "uuid = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrDomainNotFound
	}
	return nil
}

func (r *AddressRepository) GetSubpathByValue(ctx context.Context, subpath string) (*model.AppSubpath, error) {
	var rec AppSubpathRecord
	if err := r.db.WithContext(ctx).First(&rec, "subpath = ?", subpath).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrDomainNotFound
		}
		return nil, err
	}
	return subpathToModel(&rec), nil
}

func (r *AddressRepository) ListCustomDomains(ctx context.Context, appUUID string) ([]*model.CustomDomain, error) {
	var recs []CustomDomainRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("host ASC, path_prefix ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.CustomDomain, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		out = append(out, &model.CustomDomain{
			UUID:           rec.UUID,
			AppUUID:        rec.AppUUID,
			TenantID:       rec.TenantID,
			Host:           rec.Host,
			PathPrefix:     rec.PathPrefix,
			HTTPSEnabled:   rec.HTTPSEnabled,
			CertName:       rec.CertName,
			SharedCertName: rec.SharedCertName,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return out, nil
}

func (r *AddressRepository) SaveCustomDomain(ctx context.Context, d *model.CustomDomain) error {
	rec := &CustomDomainRecord{
		UUID:           d.UUID,
		AppUUID:        d.AppUUID,
		TenantID:       d.TenantID,
		Host:           d.Host,
		PathPrefix:     d.PathPrefix,
		HTTPSEnabled:   d.HTTPSEnabled,
		CertName:       d.CertName,
		SharedCertName: d.SharedCertName,
		CreatedAt:      d.CreatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		d.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *AddressRepository) DeleteCustomDomain(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&CustomDomainRecord{}, "uuid = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrDomainNotFound
	}
	return nil
}

var _ domain.AddressRepository = (*AddressRepository)(nil)
