package kube

import (
	"context"
	"net"
	"net/url"
	"strings"
)

// overrideDialer rewrites the connect address of one endpoint while the
// HTTP client keeps using the overridden hostname, so TLS SNI and the Host
// header stay on the hostname the API server's certificate was issued for.
type overrideDialer struct {
	// fromHost is the hostname the rest config advertises.
	fromHost string
	// toAddr is the "host:port" actually connected to.
	toAddr string
	dialer *net.Dialer
}

func (d *overrideDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err == nil && host == d.fromHost {
		target := d.toAddr
		if _, _, err := net.SplitHostPort(target); err != nil {
			target = net.JoinHostPort(target, port)
		}
		addr = target
	}
	return d.dialer.DialContext(ctx, network, addr)
}

// splitServerURL breaks an API server URL into hostname and "host:port".
func splitServerURL(raw string) (hostname, hostport string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	hostname = u.Hostname()
	port := u.Port()
	if port == "" {
		if strings.EqualFold(u.Scheme, "http") {
			port = "80"
		} else {
			port = "443"
		}
	}
	return hostname, net.JoinHostPort(hostname, port), nil
}
