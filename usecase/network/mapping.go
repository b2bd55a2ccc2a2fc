package network

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
	"github.com/bkpaas/workloads/domain/model"
)

// BuildDomainGroupMapping renders the DomainGroupMapping resource of a
// cloud-native app from its addresses. Hosts repeated across addresses of
// one source type merge their path prefixes; the per-host TLS secret is
// the last one resolved.
func BuildDomainGroupMapping(app *model.WlApp, addrs []model.Address) *paasv1alpha2.DomainGroupMapping {
	groups := map[string]*paasv1alpha2.DomainGroup{}
	groupOrder := []string{
		paasv1alpha2.SourceTypeSubDomain,
		paasv1alpha2.SourceTypeSubPath,
		paasv1alpha2.SourceTypeCustom,
	}
	for _, st := range groupOrder {
		groups[st] = &paasv1alpha2.DomainGroup{SourceType: st}
	}

	hostIdx := map[string]map[string]int{}
	for _, a := range addrs {
		st := string(a.Type)
		group, ok := groups[st]
		if !ok {
			continue
		}
		if hostIdx[st] == nil {
			hostIdx[st] = map[string]int{}
		}
		idx, seen := hostIdx[st][a.Host]
		if !seen {
			group.Domains = append(group.Domains, paasv1alpha2.MappedDomain{Host: a.Host})
			idx = len(group.Domains) - 1
			hostIdx[st][a.Host] = idx
		}
		d := &group.Domains[idx]
		d.PathPrefixList = append(d.PathPrefixList, a.PathPrefix)
		if a.CertSecretName != "" {
			d.TLSSecretName = a.CertSecretName
		}
	}

	var data []paasv1alpha2.DomainGroup
	for _, st := range groupOrder {
		if len(groups[st].Domains) > 0 {
			data = append(data, *groups[st])
		}
	}
	return &paasv1alpha2.DomainGroupMapping{
		TypeMeta: metav1.TypeMeta{
			APIVersion: paasv1alpha2.APIVersion,
			Kind:       paasv1alpha2.KindDomainGroupMapping,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      app.SchedulerSafeName(),
			Namespace: app.Namespace(),
			Labels: map[string]string{
				kube.LabelWlAppName: app.SchedulerSafeName(),
			},
		},
		Spec: paasv1alpha2.DomainGroupMappingSpec{
			Ref: paasv1alpha2.MappingRef{
				APIVersion: paasv1alpha2.APIVersion,
				Kind:       paasv1alpha2.KindBkApp,
				Name:       app.SchedulerSafeName(),
			},
			Data: data,
		},
	}
}

// SyncDomainGroupMapping publishes the current addresses of a cloud-native
// app for the in-cluster operator.
func (u *UseCase) SyncDomainGroupMapping(ctx context.Context, appName string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	if app.Type != model.AppTypeCloudNative {
		return fmt.Errorf("%w: app %s is not cloud-native", model.ErrValidationFailed, appName)
	}
	addrs, err := u.ListAddresses(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	if err := u.ensureCertSecrets(ctx, client, app, addrs); err != nil {
		return err
	}
	mapping := BuildDomainGroupMapping(app, addrs)
	obj, err := kube.ToUnstructured(mapping)
	if err != nil {
		return fmt.Errorf("render domain group mapping: %w", err)
	}
	return kube.NewEntityManager(client, kube.TypeDomainGroupMapping).Save(ctx, obj)
}
