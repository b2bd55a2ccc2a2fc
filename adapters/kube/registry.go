package kube

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
)

// Do runs fn with the typed clientset of an elected endpoint, retrying
// across endpoints on transport errors. Results are captured by fn's
// closure.
func (c *Client) Do(ctx context.Context, fn func(cs kubernetes.Interface) error) error {
	return c.each(ctx, func(ep *endpointClient) error { return fn(ep.clientset) })
}

// DoDynamic is Do for the dynamic client.
func (c *Client) DoDynamic(ctx context.Context, fn func(dy dynamic.Interface) error) error {
	return c.each(ctx, func(ep *endpointClient) error { return fn(ep.dynamic) })
}

// Registry hands out pooled clients keyed by cluster name. It is process
// global: clients are built once per cluster and rebuilt after cluster
// mutations through Invalidate.
type Registry struct {
	repo domain.ClusterRepository
	opts *Options

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry builds a registry over the cluster repository.
func NewRegistry(repo domain.ClusterRepository, opts *Options) *Registry {
	return &Registry{repo: repo, opts: opts, clients: map[string]*Client{}}
}

// ListClusterNames returns the names of every registered cluster.
func (r *Registry) ListClusterNames(ctx context.Context) ([]string, error) {
	clusters, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(clusters))
	for _, c := range clusters {
		names = append(names, c.Name)
	}
	return names, nil
}

// GetClient returns the pooled client of a cluster, building it on first
// use. Unknown names fail with model.ErrClusterNotFound.
func (r *Registry) GetClient(ctx context.Context, clusterName string) (*Client, error) {
	r.mu.RLock()
	client, ok := r.clients[clusterName]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	cluster, err := r.repo.Get(ctx, clusterName)
	if err != nil {
		return nil, err
	}
	client, err = NewClient(cluster, r.opts)
	if err != nil {
		return nil, fmt.Errorf("build client for cluster %s: %w", clusterName, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.clients[clusterName]; ok {
		return existing, nil
	}
	r.clients[clusterName] = client
	return client, nil
}

// Invalidate drops the cached client of a cluster. Called on every cluster
// mutation so the next GetClient rebuilds from fresh records.
func (r *Registry) Invalidate(clusterName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clusterName)
}

// ClientForApp resolves the cluster bound to an app's latest config and
// returns its client.
func (r *Registry) ClientForApp(ctx context.Context, apps domain.AppRepository, app *model.WlApp) (*Client, error) {
	cfg, err := apps.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	if cfg.ClusterName == "" {
		return nil, fmt.Errorf("%w: app %s has no cluster binding", model.ErrClusterNotFound, app.Name)
	}
	return r.GetClient(ctx, cfg.ClusterName)
}
