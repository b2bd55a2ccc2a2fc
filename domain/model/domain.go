package model

import (
	"strconv"
	"strings"
	"time"
)

// AddressType classifies how an exposed address was produced.
type AddressType string

const (
	AddressTypeSubDomain AddressType = "subdomain"
	AddressTypeSubPath   AddressType = "subpath"
	AddressTypeCustom    AddressType = "custom"
)

// AppDomain is a platform-generated host assigned to an app environment.
type AppDomain struct {
	UUID         string
	AppUUID      string
	TenantID     string
	Host         string
	HTTPSEnabled bool
	CreatedAt    time.Time
}

// AppSubpath is a subpath reservation of an app environment under the
// cluster's shared sub-path domains.
type AppSubpath struct {
	UUID      string
	AppUUID   string
	TenantID  string
	Subpath   string
	CreatedAt time.Time
}

// CustomDomain is a user-declared host+path bound to an app environment.
type CustomDomain struct {
	UUID         string
	AppUUID      string
	TenantID     string
	Host         string
	PathPrefix   string
	HTTPSEnabled bool

	// CertName references a cert attached directly to this domain.
	CertName string
	// SharedCertName references a stored shared cert; resolved lazily when
	// both cert fields are empty.
	SharedCertName string

	CreatedAt time.Time
}

// Cert is TLS material attached directly to domains.
type Cert struct {
	UUID      string
	TenantID  string
	Name      string
	CertData  string
	KeyData   string
	CreatedAt time.Time
}

// SharedCert is a TLS certificate matched to hostnames at render time by
// its AutoMatchCNs glob patterns (semicolon separated).
type SharedCert struct {
	UUID         string
	TenantID     string
	Name         string
	CertData     string
	KeyData      string
	AutoMatchCNs string
	CreatedAt    time.Time
}

// MatchesHost reports whether any AutoMatchCNs glob matches the host.
// Globs support a single leading "*." wildcard matching one label.
func (c *SharedCert) MatchesHost(host string) bool {
	for _, cn := range strings.Split(c.AutoMatchCNs, ";") {
		cn = strings.TrimSpace(cn)
		if cn == "" {
			continue
		}
		if matchCN(cn, host) {
			return true
		}
	}
	return false
}

func matchCN(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		rest, found := strings.CutSuffix(host, "."+suffix)
		return found && rest != "" && !strings.Contains(rest, ".")
	}
	return false
}

// Address is the deterministic exposed form of one host+path of an app
// environment.
type Address struct {
	Type         AddressType
	Host         string
	PathPrefix   string
	HTTPSEnabled bool
	// CertSecretName is the namespace-local Secret holding the resolved TLS
	// material; empty when no cert matched.
	CertSecretName string
}

// URL renders the address as "scheme://host[:port][path]". Default ports
// are omitted.
func (a Address) URL(portMap PortMap) string {
	scheme := "http"
	if a.HTTPSEnabled {
		scheme = "https"
	}
	host := a.Host
	port := portMap.PortFor(a.HTTPSEnabled)
	if (a.HTTPSEnabled && port != 443) || (!a.HTTPSEnabled && port != 80) {
		host = host + ":" + strconv.Itoa(port)
	}
	p := a.PathPrefix
	if p == "" || p == "/" {
		p = "/"
	} else {
		p = "/" + strings.Trim(p, "/") + "/"
	}
	return scheme + "://" + host + p
}
