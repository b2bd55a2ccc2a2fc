package cnative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bkpaas/workloads/crd/paasv1alpha1"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
	"github.com/bkpaas/workloads/domain/model"
)

// DecodeManifest parses a stored manifest into the v1alpha2 shape,
// converting v1alpha1 content on the fly.
func DecodeManifest(manifest string) (*paasv1alpha2.BkApp, error) {
	var probe struct {
		APIVersion string `json:"apiVersion"`
	}
	if err := json.Unmarshal([]byte(manifest), &probe); err != nil {
		return nil, fmt.Errorf("%w: manifest is not valid JSON: %v", model.ErrValidationFailed, err)
	}
	switch probe.APIVersion {
	case paasv1alpha1.APIVersion:
		var old paasv1alpha1.BkApp
		if err := json.Unmarshal([]byte(manifest), &old); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrValidationFailed, err)
		}
		return ConvertBkAppResource(&old).Resource, nil
	case paasv1alpha2.APIVersion, "":
		var cur paasv1alpha2.BkApp
		if err := json.Unmarshal([]byte(manifest), &cur); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrValidationFailed, err)
		}
		return &cur, nil
	}
	return nil, fmt.Errorf("%w: unsupported apiVersion %q", model.ErrValidationFailed, probe.APIVersion)
}

// EncodeManifest serialises a resource for storage.
func EncodeManifest(res *paasv1alpha2.BkApp) (string, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportManifestInput carries one manifest to store as the module's
// current model.
type ImportManifestInput struct {
	TenantID   string
	AppCode    string
	ModuleName string
	Manifest   string
}

// ImportManifestOutput reports what the import did.
type ImportManifestOutput struct {
	Resource *model.AppModelResource
	Revision *model.AppModelRevision
	// Converted is true when the manifest arrived in an older API
	// version and was normalised.
	Converted bool
}

// ImportManifest validates and normalises a manifest to the latest API
// version, stores it as the module's current resource and records an
// immutable revision.
func (u *UseCase) ImportManifest(ctx context.Context, in *ImportManifestInput) (*ImportManifestOutput, error) {
	bkapp, err := DecodeManifest(in.Manifest)
	if err != nil {
		return nil, err
	}
	// DecodeManifest already normalised the version; sniff the original
	// to report whether a conversion happened.
	var probe struct {
		APIVersion string `json:"apiVersion"`
	}
	_ = json.Unmarshal([]byte(in.Manifest), &probe)
	converted := probe.APIVersion != paasv1alpha2.APIVersion
	bkapp.APIVersion = paasv1alpha2.APIVersion
	bkapp.Kind = paasv1alpha2.KindBkApp

	normalised, err := EncodeManifest(bkapp)
	if err != nil {
		return nil, err
	}

	res, err := u.Repos.AppModel.GetResource(ctx, in.AppCode, in.ModuleName)
	if err != nil {
		if !errors.Is(err, model.ErrAppModelNotFound) {
			return nil, err
		}
		res = &model.AppModelResource{
			TenantID:   in.TenantID,
			AppCode:    in.AppCode,
			ModuleName: in.ModuleName,
		}
	}
	res.Manifest = normalised
	if err := u.Repos.AppModel.SaveResource(ctx, res); err != nil {
		return nil, err
	}
	rev := &model.AppModelRevision{ResourceUUID: res.UUID, Manifest: normalised}
	if err := u.Repos.AppModel.CreateRevision(ctx, rev); err != nil {
		return nil, err
	}
	return &ImportManifestOutput{Resource: res, Revision: rev, Converted: converted}, nil
}
