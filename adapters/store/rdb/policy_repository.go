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

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func policyToRecord(p *model.AllocationPolicy) *PolicyRecord {
	return &PolicyRecord{
		UUID:      p.UUID,
		TenantID:  p.TenantID,
		Type:      string(p.Type),
		Manual:    encodeJSON(p.Manual),
		Rules:     encodeJSON(p.Rules),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func policyToModel(r *PolicyRecord) (*model.AllocationPolicy, error) {
	p := &model.AllocationPolicy{
		UUID:      r.UUID,
		TenantID:  r.TenantID,
		Type:      model.AllocationPolicyType(r.Type),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := decodeJSON(r.Manual, &p.Manual); err != nil {
		return nil, fmt.Errorf("decode policy of tenant %s: %w", r.TenantID, err)
	}
	if err := decodeJSON(r.Rules, &p.Rules); err != nil {
		return nil, fmt.Errorf("decode policy of tenant %s: %w", r.TenantID, err)
	}
	return p, nil
}

// policyReferencesCluster reports whether any branch of the policy can
// yield the cluster.
func policyReferencesCluster(p *model.AllocationPolicy, clusterName string) bool {
	manualRefs := func(m *model.ManualAllocation) bool {
		if m == nil {
			return false
		}
		for _, c := range m.Clusters {
			if c == clusterName {
				return true
			}
		}
		for _, clusters := range m.EnvClusters {
			for _, c := range clusters {
				if c == clusterName {
					return true
				}
			}
		}
		return false
	}
	if manualRefs(p.Manual) {
		return true
	}
	for _, rule := range p.Rules {
		if manualRefs(&rule.Policy) {
			return true
		}
	}
	return false
}

func (r *PolicyRepository) GetByTenant(ctx context.Context, tenantID string) (*model.AllocationPolicy, error) {
	var rec PolicyRecord
	if err := r.db.WithContext(ctx).First(&rec, "tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPolicyNotFound
		}
		return nil, err
	}
	return policyToModel(&rec)
}

// Save validates and upserts the single policy row of a tenant.
func (r *PolicyRepository) Save(ctx context.Context, p *model.AllocationPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	rec := policyToRecord(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PolicyRecord
		err := tx.First(&existing, "tenant_id = ?", rec.TenantID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rec.UUID == "" {
				rec.UUID = uuid.NewString()
				p.UUID = rec.UUID
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

func (r *PolicyRepository) List(ctx context.Context) ([]*model.AllocationPolicy, error) {
	var recs []PolicyRecord
	if err := r.db.WithContext(ctx).Order("tenant_id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.AllocationPolicy, 0, len(recs))
	for i := range recs {
		p, err := policyToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PolicyRepository) ListReferencingCluster(ctx context.Context, clusterName string) ([]*model.AllocationPolicy, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.AllocationPolicy
	for _, p := range all {
		if policyReferencesCluster(p, clusterName) {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ domain.PolicyRepository = (*PolicyRepository)(nil)
