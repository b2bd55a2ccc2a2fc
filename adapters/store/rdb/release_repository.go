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

type ReleaseRepository struct{ db *gorm.DB }

func NewReleaseRepository(db *gorm.DB) *ReleaseRepository { return &ReleaseRepository{db: db} }

func releaseToRecord(rel *model.Release) *ReleaseRecord {
	return &ReleaseRecord{
		UUID:       rel.UUID,
		AppUUID:    rel.AppUUID,
		Version:    rel.Version,
		BuildID:    rel.BuildID,
		Procfile:   encodeJSON(rel.Procfile),
		ConfigUUID: rel.ConfigUUID,
		Failed:     rel.Failed,
		Summary:    rel.Summary,
		CreatedAt:  rel.CreatedAt,
	}
}

func releaseToModel(r *ReleaseRecord) (*model.Release, error) {
	rel := &model.Release{
		UUID:       r.UUID,
		AppUUID:    r.AppUUID,
		Version:    r.Version,
		BuildID:    r.BuildID,
		ConfigUUID: r.ConfigUUID,
		Failed:     r.Failed,
		Summary:    r.Summary,
		CreatedAt:  r.CreatedAt,
	}
	if err := decodeJSON(r.Procfile, &rel.Procfile); err != nil {
		return nil, fmt.Errorf("decode release %s: %w", r.UUID, err)
	}
	return rel, nil
}

func buildToRecord(b *model.Build) *BuildRecord {
	return &BuildRecord{
		UUID:             b.UUID,
		AppUUID:          b.AppUUID,
		Image:            b.Image,
		SlugURL:          b.SlugURL,
		Procfile:         encodeJSON(b.Procfile),
		ArtifactMetadata: encodeJSON(b.ArtifactMetadata),
		Buildpacks:       encodeJSON(b.Buildpacks),
		CreatedAt:        b.CreatedAt,
	}
}

func buildToModel(r *BuildRecord) (*model.Build, error) {
	b := &model.Build{
		UUID:      r.UUID,
		AppUUID:   r.AppUUID,
		Image:     r.Image,
		SlugURL:   r.SlugURL,
		CreatedAt: r.CreatedAt,
	}
	for col, dst := range map[string]any{
		r.Procfile:         &b.Procfile,
		r.ArtifactMetadata: &b.ArtifactMetadata,
		r.Buildpacks:       &b.Buildpacks,
	} {
		if err := decodeJSON(col, dst); err != nil {
			return nil, fmt.Errorf("decode build %s: %w", r.UUID, err)
		}
	}
	return b, nil
}

// CreateRelease assigns the next contiguous version inside a transaction so
// two concurrent deploys cannot claim the same number.
func (r *ReleaseRepository) CreateRelease(ctx context.Context, rel *model.Release) error {
	rec := releaseToRecord(rel)
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		rel.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
		rel.CreatedAt = rec.CreatedAt
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		err := tx.Model(&ReleaseRecord{}).
			Where("app_uuid = ?", rec.AppUUID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&max).Error
		if err != nil {
			return err
		}
		rec.Version = max + 1
		rel.Version = rec.Version
		return tx.Create(rec).Error
	})
}

func (r *ReleaseRepository) GetRelease(ctx context.Context, id string) (*model.Release, error) {
	var rec ReleaseRecord
	if err := r.db.WithContext(ctx).First(&rec, "uuid = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrReleaseNotFound
		}
		return nil, err
	}
	return releaseToModel(&rec)
}

func (r *ReleaseRepository) LatestRelease(ctx context.Context, appUUID string, successfulOnly bool) (*model.Release, error) {
	q := r.db.WithContext(ctx).Where("app_uuid = ?", appUUID)
	if successfulOnly {
		q = q.Where("failed = ?", false)
	}
	var rec ReleaseRecord
	if err := q.Order("version DESC").First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrReleaseNotFound
		}
		return nil, err
	}
	return releaseToModel(&rec)
}

func (r *ReleaseRepository) ListReleases(ctx context.Context, appUUID string) ([]*model.Release, error) {
	var recs []ReleaseRecord
	err := r.db.WithContext(ctx).
		Where("app_uuid = ?", appUUID).
		Order("version ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.Release, 0, len(recs))
	for i := range recs {
		rel, err := releaseToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

func (r *ReleaseRepository) CreateBuild(ctx context.Context, b *model.Build) error {
	rec := buildToRecord(b)
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		b.UUID = rec.UUID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
		b.CreatedAt = rec.CreatedAt
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ReleaseRepository) GetBuild(ctx context.Context, id string) (*model.Build, error) {
	var rec BuildRecord
	if err := r.db.WithContext(ctx).First(&rec, "uuid = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBuildNotFound
		}
		return nil, err
	}
	return buildToModel(&rec)
}

func (r *ReleaseRepository) CreateBuildProcess(ctx context.Context, bp *model.BuildProcess) error {
	rec := &BuildProcessRecord{
		UUID:          bp.UUID,
		AppUUID:       bp.AppUUID,
		SourceTarPath: bp.SourceTarPath,
		Branch:        bp.Branch,
		Revision:      bp.Revision,
		Buildpacks:    encodeJSON(bp.Buildpacks),
		OutputBuildID: bp.OutputBuildID,
		Status:        bp.Status,
		CreatedAt:     bp.CreatedAt,
		UpdatedAt:     bp.UpdatedAt,
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		bp.UUID = rec.UUID
	}
	if rec.Status == "" {
		rec.Status = model.BuildStatusPending
		bp.Status = rec.Status
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt, rec.UpdatedAt = now, now
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ReleaseRepository) UpdateBuildProcess(ctx context.Context, bp *model.BuildProcess) error {
	updates := map[string]any{
		"status":          bp.Status,
		"output_build_id": bp.OutputBuildID,
		"updated_at":      time.Now(),
	}
	res := r.db.WithContext(ctx).Model(&BuildProcessRecord{}).
		Where("uuid = ?", bp.UUID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrBuildNotFound
	}
	return nil
}

var _ domain.ReleaseRepository = (*ReleaseRepository)(nil)
