package kube

import (
	netv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// IngressRule is one host with its service-backed paths.
type IngressRule struct {
	Host string
	// Paths lists URL path prefixes routed to the backend.
	Paths         []string
	ServiceName   string
	ServicePort   int32
	TLSSecretName string
}

// BuildIngress renders an Ingress from computed rules. Callers delete the
// object instead when the rule list is empty.
func BuildIngress(name, namespace string, labels, annotations map[string]string, rules []IngressRule) *netv1.Ingress {
	pathType := netv1.PathTypeImplementationSpecific
	var ingressRules []netv1.IngressRule
	var tls []netv1.IngressTLS
	var tlsOrder []string
	tlsHosts := map[string][]string{}

	for _, rule := range rules {
		paths := make([]netv1.HTTPIngressPath, 0, len(rule.Paths))
		for _, p := range rule.Paths {
			paths = append(paths, netv1.HTTPIngressPath{
				Path:     p,
				PathType: &pathType,
				Backend: netv1.IngressBackend{
					Service: &netv1.IngressServiceBackend{
						Name: rule.ServiceName,
						Port: netv1.ServiceBackendPort{Number: rule.ServicePort},
					},
				},
			})
		}
		ingressRules = append(ingressRules, netv1.IngressRule{
			Host: rule.Host,
			IngressRuleValue: netv1.IngressRuleValue{
				HTTP: &netv1.HTTPIngressRuleValue{Paths: paths},
			},
		})
		if rule.TLSSecretName != "" {
			if _, seen := tlsHosts[rule.TLSSecretName]; !seen {
				tlsOrder = append(tlsOrder, rule.TLSSecretName)
			}
			tlsHosts[rule.TLSSecretName] = append(tlsHosts[rule.TLSSecretName], rule.Host)
		}
	}
	for _, secretName := range tlsOrder {
		tls = append(tls, netv1.IngressTLS{Hosts: tlsHosts[secretName], SecretName: secretName})
	}

	return &netv1.Ingress{
		TypeMeta: metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: netv1.IngressSpec{Rules: ingressRules, TLS: tls},
	}
}
