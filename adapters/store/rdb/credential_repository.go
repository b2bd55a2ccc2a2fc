package rdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
)

type CredentialRepository struct{ db *gorm.DB }

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) ListImageCredentials(ctx context.Context, appUUID string) ([]*model.AppImageCredential, error) {
	var recs []ImageCredentialRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("registry ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.AppImageCredential, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		out = append(out, &model.AppImageCredential{
			UUID:     rec.UUID,
			AppUUID:  rec.AppUUID,
			Registry: rec.Registry,
			Username: rec.Username,
			Password: rec.Password,
		})
	}
	return out, nil
}

// SaveImageCredential upserts on (app, registry).
func (r *CredentialRepository) SaveImageCredential(ctx context.Context, c *model.AppImageCredential) error {
	rec := &ImageCredentialRecord{
		UUID:     c.UUID,
		AppUUID:  c.AppUUID,
		Registry: c.Registry,
		Username: c.Username,
		Password: c.Password,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ImageCredentialRecord
		err := tx.First(&existing, "app_uuid = ? AND registry = ?", rec.AppUUID, rec.Registry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rec.UUID == "" {
				rec.UUID = uuid.NewString()
				c.UUID = rec.UUID
			}
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		rec.UUID = existing.UUID
		return tx.Save(rec).Error
	})
}

var _ domain.CredentialRepository = (*CredentialRepository)(nil)
