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

type ProcessRepository struct{ db *gorm.DB }

func NewProcessRepository(db *gorm.DB) *ProcessRepository { return &ProcessRepository{db: db} }

func processToRecord(s *model.ProcessSpec) *ProcessSpecRecord {
	return &ProcessSpecRecord{
		UUID:           s.UUID,
		AppUUID:        s.AppUUID,
		Name:           s.Name,
		Command:        encodeJSON(s.Command),
		Args:           encodeJSON(s.Args),
		Image:          s.Image,
		TargetReplicas: s.TargetReplicas,
		TargetStatus:   s.TargetStatus,
		PlanName:       s.PlanName,
		Resources:      encodeJSON(s.Resources),
		TargetPort:     s.TargetPort,
		Probes:         encodeJSON(s.Probes),
		Autoscaling:    encodeJSON(s.Autoscaling),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func processToModel(r *ProcessSpecRecord) (*model.ProcessSpec, error) {
	s := &model.ProcessSpec{
		UUID:           r.UUID,
		AppUUID:        r.AppUUID,
		Name:           r.Name,
		Image:          r.Image,
		TargetReplicas: r.TargetReplicas,
		TargetStatus:   r.TargetStatus,
		PlanName:       r.PlanName,
		TargetPort:     r.TargetPort,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for col, dst := range map[string]any{
		r.Command:     &s.Command,
		r.Args:        &s.Args,
		r.Resources:   &s.Resources,
		r.Probes:      &s.Probes,
		r.Autoscaling: &s.Autoscaling,
	} {
		if err := decodeJSON(col, dst); err != nil {
			return nil, fmt.Errorf("decode process %s/%s: %w", r.AppUUID, r.Name, err)
		}
	}
	return s, nil
}

func (r *ProcessRepository) Upsert(ctx context.Context, s *model.ProcessSpec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	rec := processToRecord(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ProcessSpecRecord
		err := tx.First(&existing, "app_uuid = ? AND name = ?", rec.AppUUID, rec.Name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rec.UUID == "" {
				rec.UUID = uuid.NewString()
				s.UUID = rec.UUID
			}
			now := time.Now()
			rec.CreatedAt, rec.UpdatedAt = now, now
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		rec.UUID = existing.UUID
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = time.Now()
		return tx.Save(rec).Error
	})
}

func (r *ProcessRepository) Get(ctx context.Context, appUUID, name string) (*model.ProcessSpec, error) {
	var rec ProcessSpecRecord
	err := r.db.WithContext(ctx).First(&rec, "app_uuid = ? AND name = ?", appUUID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProcessNotFound
		}
		return nil, err
	}
	return processToModel(&rec)
}

func (r *ProcessRepository) ListByApp(ctx context.Context, appUUID string) ([]*model.ProcessSpec, error) {
	var recs []ProcessSpecRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.ProcessSpec, 0, len(recs))
	for i := range recs {
		s, err := processToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *ProcessRepository) Delete(ctx context.Context, appUUID, name string) error {
	res := r.db.WithContext(ctx).Delete(&ProcessSpecRecord{}, "app_uuid = ? AND name = ?", appUUID, name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProcessNotFound
	}
	return nil
}

var _ domain.ProcessRepository = (*ProcessRepository)(nil)
