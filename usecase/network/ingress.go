package network

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/naming"
)

// Ingress annotations consumed by the cluster's nginx controller.
const (
	annotationRewriteTarget = "nginx.ingress.kubernetes.io/rewrite-target"
	annotationSSLRedirect   = "nginx.ingress.kubernetes.io/ssl-redirect"
)

// SyncIngresses reconciles the subdomain, subpath and custom-domain
// Ingresses of an app environment against the stored addresses. An address
// class with no entries gets its Ingress deleted rather than saved empty.
func (u *UseCase) SyncIngresses(ctx context.Context, appName, serviceName string, servicePort int32) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	addrs, err := u.ListAddresses(ctx, appName)
	if err != nil {
		return err
	}
	if err := u.ensureCertSecrets(ctx, client, app, addrs); err != nil {
		return err
	}

	byType := map[model.AddressType][]model.Address{}
	for _, a := range addrs {
		byType[a.Type] = append(byType[a.Type], a)
	}
	mgr := kube.NewEntityManager(client, kube.TypeIngress)
	for _, class := range []struct {
		typ  model.AddressType
		name string
	}{
		{model.AddressTypeSubDomain, app.SchedulerSafeName()},
		{model.AddressTypeSubPath, app.SchedulerSafeName() + "-subpath"},
		{model.AddressTypeCustom, app.SchedulerSafeName() + "-custom"},
	} {
		if err := u.syncIngressClass(ctx, mgr, app, class.name, serviceName, servicePort, byType[class.typ]); err != nil {
			return err
		}
	}
	return nil
}

func (u *UseCase) syncIngressClass(ctx context.Context, mgr *kube.EntityManager, app *model.WlApp,
	name, serviceName string, servicePort int32, addrs []model.Address) error {
	if len(addrs) == 0 {
		err := mgr.Delete(ctx, app.Namespace(), name, nil)
		if errors.Is(err, model.ErrAppEntityNotFound) {
			return nil
		}
		return err
	}

	// One rule per host; subpath entries of the same host merge their paths.
	byHost := map[string]*kube.IngressRule{}
	var order []string
	for _, a := range addrs {
		rule, ok := byHost[a.Host]
		if !ok {
			rule = &kube.IngressRule{
				Host:        a.Host,
				ServiceName: serviceName,
				ServicePort: servicePort,
			}
			byHost[a.Host] = rule
			order = append(order, a.Host)
		}
		rule.Paths = append(rule.Paths, a.PathPrefix)
		if a.CertSecretName != "" {
			rule.TLSSecretName = a.CertSecretName
		}
	}
	rules := make([]kube.IngressRule, 0, len(order))
	for _, host := range order {
		rules = append(rules, *byHost[host])
	}

	labels := map[string]string{
		kube.LabelWlAppName: app.SchedulerSafeName(),
		kube.LabelAppCode:   naming.DNSSafe(app.AppCode),
	}
	annotations := map[string]string{
		annotationRewriteTarget: "/",
		annotationSSLRedirect:   "false",
	}
	ing := kube.BuildIngress(name, app.Namespace(), labels, annotations, rules)
	obj, err := kube.ToUnstructured(ing)
	if err != nil {
		return fmt.Errorf("render ingress %s: %w", name, err)
	}
	return mgr.Save(ctx, obj)
}

// ensureCertSecrets materialises the TLS Secrets the addresses reference.
func (u *UseCase) ensureCertSecrets(ctx context.Context, client *kube.Client, app *model.WlApp, addrs []model.Address) error {
	mgr := kube.NewEntityManager(client, kube.TypeSecret)
	done := map[string]bool{}
	for _, a := range addrs {
		if a.CertSecretName == "" || done[a.CertSecretName] {
			continue
		}
		done[a.CertSecretName] = true
		certName := strings.TrimPrefix(a.CertSecretName, "eng-tls-")
		certData, keyData, err := u.certMaterial(ctx, app.TenantID, certName, a.Host)
		if err != nil {
			return err
		}
		secret := kube.BuildTLSSecret(app.Namespace(), certName, certData, keyData, map[string]string{
			kube.LabelWlAppName: app.SchedulerSafeName(),
		})
		obj, err := kube.ToUnstructured(secret)
		if err != nil {
			return fmt.Errorf("render tls secret %s: %w", a.CertSecretName, err)
		}
		if err := mgr.Save(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

func (u *UseCase) certMaterial(ctx context.Context, tenantID, certName, host string) (string, string, error) {
	if c, err := u.Repos.Cert.GetCert(ctx, tenantID, certName); err == nil {
		return c.CertData, c.KeyData, nil
	} else if !errors.Is(err, model.ErrCertNotFound) {
		return "", "", err
	}
	if c, err := u.Repos.Cert.GetSharedCert(ctx, tenantID, certName); err == nil {
		return c.CertData, c.KeyData, nil
	} else if !errors.Is(err, model.ErrCertNotFound) {
		return "", "", err
	}
	c, err := u.PickSharedCert(ctx, tenantID, host)
	if err != nil {
		return "", "", fmt.Errorf("certificate %s for host %s: %w", certName, host, err)
	}
	return c.CertData, c.KeyData, nil
}

// TransferSubpath moves a subpath reservation between apps. The old app's
// Ingress drops the path before the new one claims it, so the shared
// sub-path domain never serves two owners at once.
func (u *UseCase) TransferSubpath(ctx context.Context, subpath, toAppName, serviceName string, servicePort int32) error {
	owner, err := u.Repos.Address.GetSubpathByValue(ctx, subpath)
	if err != nil {
		return err
	}
	to, err := u.Repos.App.GetByName(ctx, toAppName)
	if err != nil {
		return err
	}
	if owner.AppUUID == to.UUID {
		return nil
	}
	from, err := u.Repos.App.Get(ctx, owner.AppUUID)
	if err != nil {
		return err
	}

	if err := u.Repos.Address.DeleteSubpath(ctx, owner.UUID); err != nil {
		return err
	}
	// Step one: release the path from the previous owner's Ingress.
	if err := u.SyncIngresses(ctx, from.Name, serviceName, servicePort); err != nil {
		return err
	}
	// Step two: claim it for the new owner.
	err = u.Repos.Address.SaveSubpath(ctx, &model.AppSubpath{
		AppUUID:  to.UUID,
		TenantID: to.TenantID,
		Subpath:  subpath,
	})
	if err != nil {
		return err
	}
	return u.SyncIngresses(ctx, toAppName, serviceName, servicePort)
}

// DeleteIngresses removes every Ingress class of the app environment.
func (u *UseCase) DeleteIngresses(ctx context.Context, appName string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	mgr := kube.NewEntityManager(client, kube.TypeIngress)
	for _, name := range []string{
		app.SchedulerSafeName(),
		app.SchedulerSafeName() + "-subpath",
		app.SchedulerSafeName() + "-custom",
	} {
		err := mgr.Delete(ctx, app.Namespace(), name, nil)
		if err != nil && !errors.Is(err, model.ErrAppEntityNotFound) {
			return err
		}
	}
	return nil
}
