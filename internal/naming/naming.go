// Package naming centralizes generation of Kubernetes resource names, label
// values and hostnames derived from workload app identifiers. Keeping the
// logic here allows changing length/algorithm without touching call sites.
package naming

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// underscoreSub replaces "_" in names that must be DNS-1123 safe. The value
// is stable and must never change: live namespaces depend on it.
const underscoreSub = "0us0"

// SafeName converts a workload app name to a DNS-1123 safe identifier by
// transliterating underscores. The conversion is injective for names that do
// not already contain the substitution token.
func SafeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", underscoreSub)
}

// Namespace returns the Kubernetes namespace for a workload app.
func Namespace(appName string) string {
	return SafeName(appName)
}

// WlAppName derives the workload app name for an (app code, module,
// environment) triple. The default module omits the module segment for
// compatibility with apps created before multi-module support.
func WlAppName(appCode, moduleName, environment string, defaultModule bool) string {
	if defaultModule {
		return fmt.Sprintf("bkapp-%s-%s", appCode, environment)
	}
	return fmt.Sprintf("bkapp-%s-m-%s-%s", appCode, moduleName, environment)
}

// ShortHash returns the hex SHA1 prefix of length n (clamped to digest size).
func ShortHash(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	h := fmt.Sprintf("%x", sum)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// DNSSafe lowercases a value and replaces characters outside [a-z0-9-]
// with "-", trimming leading/trailing dashes. Used for label values and
// host name segments built from user input.
func DNSSafe(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// SubDomainHost computes the platform-generated host for an environment
// under a cluster root domain, e.g. "stag-dot-mymodule-dot-myapp.example.com".
// The default module and the production environment omit their segments.
func SubDomainHost(appCode, moduleName, environment, rootDomain string, defaultModule bool) string {
	code := DNSSafe(appCode)
	module := DNSSafe(moduleName)
	var prefix string
	switch {
	case defaultModule && environment == "prod":
		prefix = code
	case defaultModule:
		prefix = fmt.Sprintf("%s-dot-%s", environment, code)
	case environment == "prod":
		prefix = fmt.Sprintf("%s-dot-%s", module, code)
	default:
		prefix = fmt.Sprintf("%s-dot-%s-dot-%s", environment, module, code)
	}
	return prefix + "." + rootDomain
}

// SubPath computes the platform-generated subpath for an environment,
// e.g. "/stag--mymodule--myapp/".
func SubPath(appCode, moduleName, environment string, defaultModule bool) string {
	code := DNSSafe(appCode)
	if defaultModule && environment == "prod" {
		return fmt.Sprintf("/%s/", code)
	}
	if defaultModule {
		return fmt.Sprintf("/%s--%s/", environment, code)
	}
	return fmt.Sprintf("/%s--%s--%s/", environment, DNSSafe(moduleName), code)
}

// SandboxHost computes the ingress hostname of a dev sandbox,
// e.g. "dev-dot-mymodule-dot-myapp.example.com".
func SandboxHost(appCode, moduleName, rootDomain string) string {
	return fmt.Sprintf("dev-dot-%s-dot-%s.%s", DNSSafe(moduleName), DNSSafe(appCode), rootDomain)
}

// CertSecretName returns the deterministic Secret name holding the TLS
// material of a certificate. One Secret per certificate, shared by all
// ingresses that reference it.
func CertSecretName(certName string) string {
	return "eng-tls-" + DNSSafe(certName)
}

// ImagePullSecretName returns the Secret name holding registry credentials
// for a workload app namespace.
func ImagePullSecretName(appName string) string {
	return SafeName(appName) + "--dockerconfigjson"
}
