package cnative

import (
	"context"

	"github.com/bkpaas/workloads/crd/paasv1alpha2"
	"github.com/bkpaas/workloads/domain/model"
)

// EnvVarReader resolves effective environment variables of a BkApp.
type EnvVarReader struct {
	res *paasv1alpha2.BkApp
}

// NewEnvVarReader wraps a resource for env var resolution.
func NewEnvVarReader(res *paasv1alpha2.BkApp) *EnvVarReader {
	return &EnvVarReader{res: res}
}

// ReadAll returns app-scope vars overridden by any overlay entries
// matching the environment, preserving first-declaration order.
func (r *EnvVarReader) ReadAll(envName string) []paasv1alpha2.AppEnvVar {
	idx := map[string]int{}
	var out []paasv1alpha2.AppEnvVar
	for _, v := range r.res.Spec.Configuration.Env {
		idx[v.Name] = len(out)
		out = append(out, v)
	}
	if overlay := r.res.Spec.EnvOverlay; overlay != nil {
		for _, o := range overlay.EnvVariables {
			if o.EnvName != envName {
				continue
			}
			if i, ok := idx[o.Name]; ok {
				out[i].Value = o.Value
				continue
			}
			idx[o.Name] = len(out)
			out = append(out, paasv1alpha2.AppEnvVar{Name: o.Name, Value: o.Value})
		}
	}
	return out
}

// ImportEnvVars copies every env var declared in the module's manifest
// into the relational store and blanks them in the manifest, making the
// database the single source of truth. Used during migrations.
func (u *UseCase) ImportEnvVars(ctx context.Context, appCode, moduleName string) (int, error) {
	res, err := u.Repos.AppModel.GetResource(ctx, appCode, moduleName)
	if err != nil {
		return 0, err
	}
	bkapp, err := DecodeManifest(res.Manifest)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, v := range bkapp.Spec.Configuration.Env {
		err := u.Repos.AppModel.SaveConfigVar(ctx, &model.ConfigVar{
			AppCode: appCode, ModuleName: moduleName, Key: v.Name, Value: v.Value,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	if overlay := bkapp.Spec.EnvOverlay; overlay != nil {
		for _, o := range overlay.EnvVariables {
			err := u.Repos.AppModel.SaveConfigVar(ctx, &model.ConfigVar{
				AppCode: appCode, ModuleName: moduleName,
				Environment: o.EnvName, Key: o.Name, Value: o.Value,
			})
			if err != nil {
				return imported, err
			}
			imported++
		}
		overlay.EnvVariables = nil
	}
	bkapp.Spec.Configuration.Env = nil

	manifest, err := EncodeManifest(bkapp)
	if err != nil {
		return imported, err
	}
	res.Manifest = manifest
	return imported, u.Repos.AppModel.SaveResource(ctx, res)
}
