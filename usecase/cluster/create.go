package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// CreateInput contains data to register a cluster.
type CreateInput struct {
	Name        string `json:"name" validate:"required,hostname_rfc1123"`
	Description string `json:"description"`
	TenantID    string `json:"tenant_id" validate:"required"`
	// AvailableTenantIDs defaults to the owning tenant when empty.
	AvailableTenantIDs []string `json:"available_tenant_ids"`

	APIServers []APIServerInput `json:"api_servers" validate:"required,min=1,dive"`

	CAData   string `json:"ca_data"`
	CertData string `json:"cert_data"`
	KeyData  string `json:"key_data"`
	Token    string `json:"token"`

	Ingress model.IngressConfig `json:"ingress"`

	FeatureFlags        map[string]bool      `json:"feature_flags"`
	Annotations         map[string]string    `json:"annotations"`
	DefaultNodeSelector map[string]string    `json:"default_node_selector"`
	DefaultTolerations  []model.Toleration   `json:"default_tolerations"`
	ExposedURLType      model.ExposedURLType `json:"exposed_url_type" validate:"omitempty,oneof=subpath subdomain"`

	ComponentRegistry  string `json:"component_registry"`
	ComponentNamespace string `json:"component_namespace"`

	ElasticSearch *model.ElasticSearchConfig `json:"elastic_search"`
}

// APIServerInput is one endpoint of the cluster being registered.
type APIServerInput struct {
	Host               string `json:"host" validate:"required,url"`
	OverriddenHostname string `json:"overridden_hostname" validate:"omitempty,hostname_rfc1123"`
}

// CreateOutput wraps the registered cluster.
type CreateOutput struct {
	Cluster *model.Cluster `json:"cluster"`
}

// Create registers a new cluster.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil {
		return nil, model.ErrValidationFailed
	}
	if err := u.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidationFailed, err)
	}
	tenants := in.AvailableTenantIDs
	if len(tenants) == 0 {
		tenants = []string{in.TenantID}
	}
	servers := make([]model.APIServer, 0, len(in.APIServers))
	for _, s := range in.APIServers {
		servers = append(servers, model.APIServer{Host: s.Host, OverriddenHostname: s.OverriddenHostname})
	}
	now := time.Now().UTC()
	c := &model.Cluster{
		Name:                in.Name,
		Description:         in.Description,
		TenantID:            in.TenantID,
		AvailableTenantIDs:  tenants,
		APIServers:          servers,
		CAData:              in.CAData,
		CertData:            in.CertData,
		KeyData:             in.KeyData,
		Token:               in.Token,
		Ingress:             in.Ingress,
		FeatureFlags:        in.FeatureFlags,
		Annotations:         in.Annotations,
		DefaultNodeSelector: in.DefaultNodeSelector,
		DefaultTolerations:  in.DefaultTolerations,
		ExposedURLType:      in.ExposedURLType,
		ComponentRegistry:   in.ComponentRegistry,
		ComponentNamespace:  in.ComponentNamespace,
		ElasticSearch:       in.ElasticSearch,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if c.ExposedURLType == "" {
		c.ExposedURLType = model.ExposedURLTypeSubPath
	}
	if err := u.Repos.Cluster.Create(ctx, c); err != nil {
		return nil, err
	}
	return &CreateOutput{Cluster: c}, nil
}
