package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/adapters/store/rdb"
	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/internal/poller"
	"github.com/bkpaas/workloads/internal/ratelimit"
	ucbuild "github.com/bkpaas/workloads/usecase/build"
	uccluster "github.com/bkpaas/workloads/usecase/cluster"
	uccnative "github.com/bkpaas/workloads/usecase/cnative"
	ucnetwork "github.com/bkpaas/workloads/usecase/network"
	ucprocess "github.com/bkpaas/workloads/usecase/process"
	ucrelease "github.com/bkpaas/workloads/usecase/release"
	ucsandbox "github.com/bkpaas/workloads/usecase/sandbox"
)

// lockTTL bounds how long a crashed release or build holder blocks the
// next one.
const lockTTL = 15 * time.Minute

// findFlag recursively searches parents for a flag.
func findFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for c := cmd; c != nil; c = c.Parent() {
		if f := c.Flags().Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

// getDBURL extracts the db-url flag value from command hierarchy.
func getDBURL(cmd *cobra.Command) string {
	f := findFlag(cmd, "db-url")
	if f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return "sqlite://workloads.db"
}

// buildRepos creates repositories based on db-url. "memory:" keeps
// everything in process, useful for smoke runs.
func buildRepos(cmd *cobra.Command) (*domain.Repositories, error) {
	dbURL := getDBURL(cmd)

	switch {
	case dbURL == "memory:" || dbURL == "memory":
		return inmem.NewStore().Repositories(), nil

	case strings.HasPrefix(dbURL, "sqlite:") || strings.HasPrefix(dbURL, "sqlite3:"):
		db, err := rdb.OpenFromURL(dbURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.AutoMigrate(db); err != nil {
			return nil, err
		}
		return rdb.NewRepositories(db), nil

	default:
		return nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
}

var (
	kvOnce  sync.Once
	kvStore kv.Store
	kvErr   error
)

// buildKVStore returns the key-value store the poller and locks run on.
// Opened once per invocation and shared by every consumer: badger holds
// an exclusive directory lock, so a second open would fail.
func buildKVStore(cmd *cobra.Command) (kv.Store, error) {
	kvOnce.Do(func() { kvStore, kvErr = openKVStore(cmd) })
	return kvStore, kvErr
}

func openKVStore(cmd *cobra.Command) (kv.Store, error) {
	var kvURL string
	if f := findFlag(cmd, "kv-url"); f != nil {
		kvURL = f.Value.String()
	}
	switch {
	case kvURL == "" || kvURL == "memory:" || kvURL == "memory":
		return kv.NewMemoryStore(), nil
	case strings.HasPrefix(kvURL, "badger:"):
		return kv.OpenBadger(strings.TrimPrefix(kvURL, "badger:"))
	default:
		return nil, fmt.Errorf("unsupported kv scheme: %s", kvURL)
	}
}

// buildSettings loads platform settings from the --settings file plus
// environment overrides.
func buildSettings(cmd *cobra.Command) (*config.Settings, error) {
	var path string
	if f := findFlag(cmd, "settings"); f != nil {
		path = f.Value.String()
	}
	return config.Load(path)
}

// buildScheduler creates a poller scheduler over the shared KV store.
// Tasks enqueued here are picked up by any worker on the same store.
func buildScheduler(cmd *cobra.Command) (*poller.Scheduler, error) {
	store, err := buildKVStore(cmd)
	if err != nil {
		return nil, err
	}
	return poller.NewScheduler(store), nil
}

func buildRegistry(repos *domain.Repositories) *kube.Registry {
	return kube.NewRegistry(repos.Cluster, &kube.Options{UserAgent: "bkwl/" + version})
}

func buildClusterUseCase(cmd *cobra.Command) (*uccluster.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return uccluster.New(&uccluster.Repos{
		Cluster: repos.Cluster,
		Policy:  repos.Policy,
		App:     repos.App,
	}), nil
}

func buildProcessUseCase(cmd *cobra.Command) (*ucprocess.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return ucprocess.New(&ucprocess.Repos{
		App:     repos.App,
		Process: repos.Process,
	}, buildRegistry(repos)), nil
}

func buildNetworkUseCase(cmd *cobra.Command) (*ucnetwork.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return newNetworkUseCase(repos), nil
}

func newNetworkUseCase(repos *domain.Repositories) *ucnetwork.UseCase {
	return ucnetwork.New(&ucnetwork.Repos{
		App:     repos.App,
		Address: repos.Address,
		Cert:    repos.Cert,
		Cluster: repos.Cluster,
	}, buildRegistry(repos))
}

func buildBuildUseCase(cmd *cobra.Command) (*ucbuild.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	settings, err := buildSettings(cmd)
	if err != nil {
		return nil, err
	}
	store, err := buildKVStore(cmd)
	if err != nil {
		return nil, err
	}
	u := ucbuild.New(&ucbuild.Repos{
		App:     repos.App,
		Release: repos.Release,
		Cluster: repos.Cluster,
	}, buildRegistry(repos), &settings.Build)
	u.Lock = &ratelimit.Lock{Store: store, TTL: lockTTL}
	return u, nil
}

func buildReleaseUseCase(cmd *cobra.Command) (*ucrelease.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	settings, err := buildSettings(cmd)
	if err != nil {
		return nil, err
	}
	store, err := buildKVStore(cmd)
	if err != nil {
		return nil, err
	}
	net := newNetworkUseCase(repos)
	u := ucrelease.New(&ucrelease.Repos{
		App:        repos.App,
		Release:    repos.Release,
		Deployment: repos.Deployment,
		Process:    repos.Process,
		Cluster:    repos.Cluster,
		Credential: repos.Credential,
		AppModel:   repos.AppModel,
	}, net.Registry, net, settings)
	u.Lock = &ratelimit.Lock{Store: store, TTL: lockTTL}
	return u, nil
}

func buildCNativeUseCase(cmd *cobra.Command) (*uccnative.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return uccnative.New(&uccnative.Repos{AppModel: repos.AppModel}), nil
}

func buildSandboxUseCase(cmd *cobra.Command) (*ucsandbox.UseCase, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return ucsandbox.New(&ucsandbox.Repos{
		App:     repos.App,
		Cluster: repos.Cluster,
	}, buildRegistry(repos)), nil
}
