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

type CertRepository struct{ db *gorm.DB }

func NewCertRepository(db *gorm.DB) *CertRepository { return &CertRepository{db: db} }

func (r *CertRepository) GetCert(ctx context.Context, tenantID, name string) (*model.Cert, error) {
	var rec CertRecord
	err := r.db.WithContext(ctx).First(&rec, "tenant_id = ? AND name = ?", tenantID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCertNotFound
		}
		return nil, err
	}
	return &model.Cert{
		UUID:      rec.UUID,
		TenantID:  rec.TenantID,
		Name:      rec.Name,
		CertData:  rec.CertData,
		KeyData:   rec.KeyData,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func sharedCertToModel(rec *SharedCertRecord) *model.SharedCert {
	return &model.SharedCert{
		UUID:         rec.UUID,
		TenantID:     rec.TenantID,
		Name:         rec.Name,
		CertData:     rec.CertData,
		KeyData:      rec.KeyData,
		AutoMatchCNs: rec.AutoMatchCNs,
		CreatedAt:    rec.CreatedAt,
	}
}

func (r *CertRepository) GetSharedCert(ctx context.Context, tenantID, name string) (*model.SharedCert, error) {
	var rec SharedCertRecord
	err := r.db.WithContext(ctx).First(&rec, "tenant_id = ? AND name = ?", tenantID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCertNotFound
		}
		return nil, err
	}
	return sharedCertToModel(&rec), nil
}

func (r *CertRepository) ListSharedCerts(ctx context.Context, tenantID string) ([]*model.SharedCert, error) {
	var recs []SharedCertRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.SharedCert, 0, len(recs))
	for i := range recs {
		out = append(out, sharedCertToModel(&recs[i]))
	}
	return out, nil
}

func (r *CertRepository) SaveSharedCert(ctx context.Context, c *model.SharedCert) error {
	rec := &SharedCertRecord{
		UUID:         c.UUID,
		TenantID:     c.TenantID,
		Name:         c.Name,
		CertData:     c.CertData,
		KeyData:      c.KeyData,
		AutoMatchCNs: c.AutoMatchCNs,
		CreatedAt:    c.CreatedAt,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SharedCertRecord
		err := tx.First(&existing, "tenant_id = ? AND name = ?", rec.TenantID, rec.Name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rec.UUID == "" {
				rec.UUID = uuid.NewString()
				c.UUID = rec.UUID
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = time.Now()
			}
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		rec.UUID = existing.UUID
		rec.CreatedAt = existing.CreatedAt
		return tx.Save(rec).Error
	})
}

func (r *CertRepository) DeleteSharedCert(ctx context.Context, tenantID, name string) error {
	res := r.db.WithContext(ctx).Delete(&SharedCertRecord{}, "tenant_id = ? AND name = ?", tenantID, name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrCertNotFound
	}
	return nil
}

var _ domain.CertRepository = (*CertRepository)(nil)
