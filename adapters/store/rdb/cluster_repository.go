package rdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/cryptor"
)

type ClusterRepository struct{ db *gorm.DB }

func NewClusterRepository(db *gorm.DB) *ClusterRepository { return &ClusterRepository{db: db} }

// auth material is encrypted at rest; everything else stays readable for
// operators poking at the database directly.
func clusterToRecord(c *model.Cluster) (*ClusterRecord, error) {
	caData, err := cryptor.Encrypt(c.CAData)
	if err != nil {
		return nil, err
	}
	certData, err := cryptor.Encrypt(c.CertData)
	if err != nil {
		return nil, err
	}
	keyData, err := cryptor.Encrypt(c.KeyData)
	if err != nil {
		return nil, err
	}
	token, err := cryptor.Encrypt(c.Token)
	if err != nil {
		return nil, err
	}
	return &ClusterRecord{
		UUID:               c.UUID,
		Name:               c.Name,
		Description:        c.Description,
		TenantID:           c.TenantID,
		Tenants:            encodeJSON(c.AvailableTenantIDs),
		Ingress:            encodeJSON(c.Ingress),
		APIServers:         encodeJSON(c.APIServers),
		CAData:             caData,
		CertData:           certData,
		KeyData:            keyData,
		Token:              token,
		FeatureFlags:       encodeJSON(c.FeatureFlags),
		Annotations:        encodeJSON(c.Annotations),
		NodeSelector:       encodeJSON(c.DefaultNodeSelector),
		Tolerations:        encodeJSON(c.DefaultTolerations),
		ElasticSearch:      encodeJSON(c.ElasticSearch),
		ExposedURLType:     string(c.ExposedURLType),
		ComponentRegistry:  c.ComponentRegistry,
		ComponentNamespace: c.ComponentNamespace,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}, nil
}

func clusterToModel(r *ClusterRecord) (*model.Cluster, error) {
	caData, err := cryptor.Decrypt(r.CAData)
	if err != nil {
		return nil, fmt.Errorf("decrypt cluster %s: %w", r.Name, err)
	}
	certData, err := cryptor.Decrypt(r.CertData)
	if err != nil {
		return nil, fmt.Errorf("decrypt cluster %s: %w", r.Name, err)
	}
	keyData, err := cryptor.Decrypt(r.KeyData)
	if err != nil {
		return nil, fmt.Errorf("decrypt cluster %s: %w", r.Name, err)
	}
	token, err := cryptor.Decrypt(r.Token)
	if err != nil {
		return nil, fmt.Errorf("decrypt cluster %s: %w", r.Name, err)
	}
	c := &model.Cluster{
		UUID:               r.UUID,
		Name:               r.Name,
		Description:        r.Description,
		TenantID:           r.TenantID,
		CAData:             caData,
		CertData:           certData,
		KeyData:            keyData,
		Token:              token,
		ExposedURLType:     model.ExposedURLType(r.ExposedURLType),
		ComponentRegistry:  r.ComponentRegistry,
		ComponentNamespace: r.ComponentNamespace,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	for col, dst := range map[string]any{
		r.Tenants:       &c.AvailableTenantIDs,
		r.Ingress:       &c.Ingress,
		r.APIServers:    &c.APIServers,
		r.FeatureFlags:  &c.FeatureFlags,
		r.Annotations:   &c.Annotations,
		r.NodeSelector:  &c.DefaultNodeSelector,
		r.Tolerations:   &c.DefaultTolerations,
		r.ElasticSearch: &c.ElasticSearch,
	} {
		if err := decodeJSON(col, dst); err != nil {
			return nil, fmt.Errorf("decode cluster %s: %w", r.Name, err)
		}
	}
	return c, nil
}

func (r *ClusterRepository) Create(ctx context.Context, c *model.Cluster) error {
	if err := c.Validate(); err != nil {
		return err
	}
	rec, err := clusterToRecord(c)
	if err != nil {
		return err
	}
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		c.UUID = rec.UUID
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ClusterRepository) Get(ctx context.Context, name string) (*model.Cluster, error) {
	var rec ClusterRecord
	if err := r.db.WithContext(ctx).First(&rec, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrClusterNotFound
		}
		return nil, err
	}
	return clusterToModel(&rec)
}

func (r *ClusterRepository) List(ctx context.Context) ([]*model.Cluster, error) {
	var recs []ClusterRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Cluster, 0, len(recs))
	for i := range recs {
		c, err := clusterToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ClusterRepository) Update(ctx context.Context, c *model.Cluster) error {
	if err := c.Validate(); err != nil {
		return err
	}
	rec, err := clusterToRecord(c)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&ClusterRecord{}).Where("name = ?", rec.Name).Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrClusterNotFound
	}
	return nil
}

// Delete removes a cluster unless workload configs or allocation policies
// still reference it.
func (r *ClusterRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var configs int64
		if err := tx.Model(&ConfigRecord{}).
			Where("cluster_name = ? AND is_latest = ?", name, true).
			Count(&configs).Error; err != nil {
			return err
		}
		if configs > 0 {
			return fmt.Errorf("%w: %d workload configs still bound to cluster %s",
				model.ErrValidationFailed, configs, name)
		}
		var policies []PolicyRecord
		if err := tx.Find(&policies).Error; err != nil {
			return err
		}
		for i := range policies {
			p, err := policyToModel(&policies[i])
			if err != nil {
				return err
			}
			if policyReferencesCluster(p, name) {
				return fmt.Errorf("%w: allocation policy of tenant %s references cluster %s",
					model.ErrValidationFailed, p.TenantID, name)
			}
		}
		res := tx.Delete(&ClusterRecord{}, "name = ?", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrClusterNotFound
		}
		return nil
	})
}

var _ domain.ClusterRepository = (*ClusterRepository)(nil)
