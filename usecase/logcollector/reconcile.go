package logcollector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/naming"
)

// ConfigAPI is the slice of the log platform API the reconciler needs.
type ConfigAPI interface {
	GetConfig(ctx context.Context, name string) (*CollectorConfig, error)
	CreateConfig(ctx context.Context, cfg *CollectorConfig) error
	UpdateConfig(ctx context.Context, cfg *CollectorConfig) error
}

// Repos holds repositories needed for collector reconciliation.
type Repos struct {
	App     domain.AppRepository
	Cluster domain.ClusterRepository
}

// UseCase keeps the remote collector config of each module in sync with
// its log-path configuration.
type UseCase struct {
	Repos *Repos
	API   ConfigAPI
}

// New builds a logcollector UseCase.
func New(repos *Repos, api ConfigAPI) *UseCase {
	return &UseCase{Repos: repos, API: api}
}

// Reconcile registers or updates the collector config of an app
// environment: get-or-create, then an unconditional update so drifted
// fields converge. Clusters without the BK-Log feature are skipped.
func (u *UseCase) Reconcile(ctx context.Context, appName string, logPaths []string) (*CollectorConfig, error) {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return nil, err
	}
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	cluster, err := u.Repos.Cluster.Get(ctx, cfg.ClusterName)
	if err != nil {
		return nil, err
	}
	if !cluster.HasFeature(model.FeatureEnableBKLogCollector) {
		logging.FromContext(ctx).Info(ctx, "bk-log collector disabled on cluster",
			"app", app.Name, "cluster", cluster.Name)
		return nil, nil
	}

	desired := DesiredConfig(app, cluster, logPaths)
	current, err := u.API.GetConfig(ctx, desired.Name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		if err := u.API.CreateConfig(ctx, desired); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		desired.ID = current.ID
	}
	if err := u.API.UpdateConfig(ctx, desired); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info(ctx, "collector config reconciled",
		"app", app.Name, "collector", desired.Name, "paths", len(desired.LogPaths))
	return desired, nil
}

// DesiredConfig renders the collector registration for one app
// environment. Paths are deduplicated and sorted so repeated reconciles
// are stable.
func DesiredConfig(app *model.WlApp, cluster *model.Cluster, logPaths []string) *CollectorConfig {
	seen := map[string]bool{}
	paths := make([]string, 0, len(logPaths))
	for _, p := range logPaths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	sort.Strings(paths)

	c := &CollectorConfig{
		Name:        CollectorName(app),
		AppCode:     app.AppCode,
		ModuleName:  app.ModuleName,
		Environment: app.Environment,
		LogPaths:    paths,
	}
	if cluster.ElasticSearch != nil {
		c.ESIndex = fmt.Sprintf("bkapp_%s_%s", naming.DNSSafe(app.AppCode), app.Environment)
	}
	return c
}

// CollectorName is the stable registration name of an app environment.
func CollectorName(app *model.WlApp) string {
	return fmt.Sprintf("bkapp_%s_%s_%s", naming.DNSSafe(app.AppCode), naming.DNSSafe(app.ModuleName), app.Environment)
}
