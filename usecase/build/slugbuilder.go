package build

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain/model"
)

// SlugbuilderInfo is everything needed to run one builder: the image, the
// ordered buildpacks and the merged environment.
type SlugbuilderInfo struct {
	Image      string
	Buildpacks []model.Buildpack
	Envs       map[string]string
	UseCNB     bool
}

// NewSlugbuilderInfo resolves the builder for one run: the configured
// slugbuilder image and the union of every buildpack's env vars. Later
// buildpacks win on conflicting names.
func NewSlugbuilderInfo(buildpacks []model.Buildpack, useCNB bool, settings *config.BuildSettings) *SlugbuilderInfo {
	info := &SlugbuilderInfo{
		Image:      settings.DefaultSlugbuilderImage,
		Buildpacks: buildpacks,
		Envs:       map[string]string{},
		UseCNB:     useCNB,
	}
	for _, bp := range buildpacks {
		for k, v := range bp.Env {
			info.Envs[k] = v
		}
	}
	return info
}

// BlobStorePaths locates the source tarball and the artifact destinations
// in the blob store.
type BlobStorePaths struct {
	// TarPath is where the builder fetches the source tarball.
	TarPath string
	// PutPath is where the finished slug is uploaded.
	PutPath string
	// CachePath persists the build cache between runs.
	CachePath string
}

// RequiredBuildpacksEnv encodes the ordered buildpack list for the builder
// as "{type} {name} {url} {version}" entries joined by semicolons.
func RequiredBuildpacksEnv(buildpacks []model.Buildpack) string {
	parts := make([]string, 0, len(buildpacks))
	for _, bp := range buildpacks {
		parts = append(parts, strings.Join([]string{bp.Type, bp.Name, bp.URL, bp.Version}, " "))
	}
	return strings.Join(parts, ";")
}

// SplitPipIndexURL derives the PIP_INDEX_URL / PIP_INDEX_HOST pair from
// one configured index URL. An unparseable URL yields empty values.
func SplitPipIndexURL(raw string) (indexURL, host string) {
	if raw == "" {
		return "", ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ""
	}
	return raw, u.Hostname()
}

// CNBRegistryAuth encodes basic-auth credentials for the platform registry
// in the JSON form the CNB lifecycle expects.
func CNBRegistryAuth(host, username, password string) (string, error) {
	if host == "" || username == "" {
		return "", nil
	}
	basic := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	b, err := json.Marshal(map[string]string{host: "Basic " + basic})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ComposeBuilderEnv assembles the full builder environment: blob-store
// paths, the buildpack list, pip index plumbing, platform extras and the
// app's own config vars. App vars never override platform-owned names.
func ComposeBuilderEnv(info *SlugbuilderInfo, paths BlobStorePaths, settings *config.BuildSettings, appEnvs map[string]string) (map[string]string, error) {
	env := map[string]string{}
	for k, v := range appEnvs {
		env[k] = v
	}
	for k, v := range info.Envs {
		env[k] = v
	}
	for k, v := range settings.ExtraEnvVars {
		env[k] = v
	}

	env["TAR_PATH"] = paths.TarPath
	env["PUT_PATH"] = paths.PutPath
	env["CACHE_PATH"] = paths.CachePath
	if len(info.Buildpacks) > 0 {
		env["REQUIRED_BUILDPACKS"] = RequiredBuildpacksEnv(info.Buildpacks)
	}
	if indexURL, host := SplitPipIndexURL(settings.PipIndexURL); indexURL != "" {
		env["PIP_INDEX_URL"] = indexURL
		env["PIP_INDEX_HOST"] = host
	}
	if info.UseCNB {
		auth, err := CNBRegistryAuth(settings.RegistryHost, settings.RegistryUsername, settings.RegistryPassword)
		if err != nil {
			return nil, fmt.Errorf("encoding CNB registry auth: %w", err)
		}
		if auth != "" {
			env["CNB_REGISTRY_AUTH"] = auth
		}
	}
	return env, nil
}
